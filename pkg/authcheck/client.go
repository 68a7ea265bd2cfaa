package authcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/prodcheck/prodcheck-go/internal/errors"
	"github.com/prodcheck/prodcheck-go/pkg/models"
)

const (
	defaultBaseURL = "http://localhost:5000"

	// The upstream model call can be slow, so the default timeout leaves
	// generous room while still preventing indefinite hangs.
	defaultTimeout = 60 * time.Second

	// Non-JSON error bodies are truncated to this many bytes before being
	// surfaced in a message.
	maxErrorBodyExcerpt = 200
)

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// Client talks to the authenticity-check backend. A single Client is safe
// for concurrent use; each check owns its own state.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client (e.g. with a proxy or custom
// transport).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds each network exchange.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient constructs a Client for the given backend base URL. A URL
// without a scheme is normalized to https. An empty URL falls back to the
// local development default.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: normalizeBaseURL(baseURL),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the normalized endpoint address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckAuthenticity performs one exchange with the backend: a single
// attempt, no retries. Transport failures, application failures reported by
// the backend, and malformed envelopes map to distinct error types.
func (c *Client) CheckAuthenticity(ctx context.Context, encodedImage, fileName string) (*models.AnalysisResult, error) {
	resp, err := c.send(ctx, encodedImage, fileName)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return c.decodeEnvelope(resp)
}

// send dispatches the analysis request and returns the raw response. All
// failures to reach the endpoint surface as transport errors naming it.
func (c *Client) send(ctx context.Context, encodedImage, fileName string) (*http.Response, error) {
	payload, err := json.Marshal(models.AnalysisRequest{
		ImageBase64: encodedImage,
		FileName:    fileName,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode analysis request", err)
	}

	endpoint := c.baseURL + "/api/check-authenticity"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewTransportError(
			fmt.Sprintf("invalid backend endpoint %s", c.baseURL), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(
			fmt.Sprintf("cannot connect to backend server at %s; make sure the backend is running", c.baseURL), err)
	}
	return resp, nil
}

// decodeEnvelope parses the {success, data?, error?} wrapper. The server's
// own error string is surfaced verbatim; everything else becomes a
// transport-level failure.
func (c *Client) decodeEnvelope(resp *http.Response) (*models.AnalysisResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to read backend response", err)
	}

	var envelope models.AnalysisResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, apperrors.NewTransportError(
				fmt.Sprintf("backend error: HTTP %d: %s", resp.StatusCode, bodyExcerpt(body)), nil)
		}
		return nil, apperrors.NewTransportError("backend returned a malformed response", err)
	}

	if !envelope.Success {
		message := envelope.Error
		if message == "" {
			message = "Analysis failed"
		}
		return nil, apperrors.NewApplicationError(message)
	}
	if envelope.Data == nil {
		return nil, apperrors.NewSchemaError("backend response is missing result data", nil)
	}
	return envelope.Data, nil
}

func bodyExcerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyExcerpt {
		s = s[:maxErrorBodyExcerpt]
	}
	if s == "" {
		s = "(empty body)"
	}
	return s
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(strings.TrimRight(u, "/"))
	if u == "" {
		return defaultBaseURL
	}
	if !schemePattern.MatchString(u) {
		u = "https://" + u
	}
	return u
}
