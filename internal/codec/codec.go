package codec

import (
	"encoding/base64"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/prodcheck/prodcheck-go/internal/errors"
)

// extensionMIME backs up content sniffing for formats whose magic bytes
// http.DetectContentType does not recognize.
var extensionMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// Encode reads the image from r and returns a data-URI string
// ("data:<mime>;base64,<payload>") suitable for JSON transport. The
// contents are read into memory exactly once; name is used only as a
// fallback for MIME detection.
func Encode(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", apperrors.NewCodecError("failed to read image data", err)
	}
	if len(data) == 0 {
		return "", apperrors.NewCodecError("image data is empty", nil)
	}

	mimeType := detectMIME(name, data)

	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}

// EncodeFile opens and encodes the image at path.
func EncodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.NewCodecError("failed to open image file", err)
	}
	defer f.Close()
	return Encode(filepath.Base(path), f)
}

// StripDataURI returns the raw base64 payload of a data-URI string. Input
// without a data-URI prefix is returned unchanged, so both forms are
// accepted on the wire.
func StripDataURI(encoded string) string {
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		return encoded[idx+1:]
	}
	return encoded
}

func detectMIME(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if mime, ok := extensionMIME[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}
