package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prodcheck/prodcheck-go/internal/codec"
	apperrors "github.com/prodcheck/prodcheck-go/internal/errors"
	"github.com/prodcheck/prodcheck-go/internal/logger"
	"github.com/prodcheck/prodcheck-go/pkg/models"
	"github.com/prodcheck/prodcheck-go/pkg/validation"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// prompt is the fixed instruction contract sent with every image. The model
// must answer with a single JSON object carrying exactly the result fields.
const prompt = `You are an expert product authentication specialist. Analyze this product image and provide:

1. A similarity score (0-100) indicating authenticity likelihood
2. The official product link (estimate based on image)
3. 3 related marketplace links with trust ratings (high/medium/low)
4. A detailed technical analysis

Respond ONLY with valid JSON (no markdown, no code blocks):
{
  "originalLink": "https://...",
  "similarityScore": 0-100,
  "otherLinks": [
    {"url": "https://...", "trustRating": "high"},
    {"url": "https://...", "trustRating": "medium"},
    {"url": "https://...", "trustRating": "low"}
  ],
  "explanation": "Detailed authenticity analysis..."
}`

// Analyzer produces an authenticity assessment for an encoded product image.
type Analyzer interface {
	AnalyzeProductImage(ctx context.Context, imageBase64, fileName string) (*models.AnalysisResult, error)
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client calls the Gemini generateContent endpoint, or substitutes a
// deterministic mock result when mock mode is on or no credential is set.
type Client struct {
	apiKey    string
	model     string
	baseURL   string
	useMock   bool
	http      *http.Client
	validator *validation.ResultValidator
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (useful for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithMockMode forces the deterministic mock result regardless of credential.
func WithMockMode(enabled bool) Option {
	return func(c *Client) { c.useMock = enabled }
}

// NewClient constructs a Gemini client. timeout bounds the whole upstream
// exchange; model calls can be slow, so callers should allow generous room.
func NewClient(apiKey, model string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		apiKey:    apiKey,
		model:     model,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: timeout},
		validator: validation.NewResultValidator(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// AnalyzeProductImage runs one authenticity analysis. It returns either a
// schema-valid result or a single descriptive error; no partial result is
// ever returned.
func (c *Client) AnalyzeProductImage(ctx context.Context, imageBase64, fileName string) (*models.AnalysisResult, error) {
	if fileName == "" {
		fileName = "uploaded-image"
	}

	logger.WithFields(logrus.Fields{
		"file_name": fileName,
		"mock_mode": c.useMock,
		"key_set":   c.apiKey != "",
	}).Info("Analyzing product image")

	if c.useMock || c.apiKey == "" {
		if c.useMock {
			logger.Warn("Mock mode enabled. Set USE_MOCK=false for real Gemini analysis")
		} else {
			logger.Warn("GEMINI_API_KEY not set. Returning mock response")
		}
		return MockResult(fileName), nil
	}

	imageBytes, mimeType, err := decodeImagePayload(imageBase64)
	if err != nil {
		return nil, apperrors.NewUpstreamError("image data is not valid base64", err)
	}

	text, err := c.generateContent(ctx, imageBytes, mimeType)
	if err != nil {
		return nil, err
	}

	jsonStr, ok := ExtractJSONObject(text)
	if !ok {
		return nil, apperrors.NewUpstreamError("no JSON object found in model response", nil)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, apperrors.NewUpstreamError("failed to parse model response as JSON", err)
	}

	if err := c.validator.ValidateResult(&result); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"file_name":        fileName,
		"similarity_score": result.SimilarityScore,
		"other_links":      len(result.OtherLinks),
	}).Info("Product analysis complete")

	return &result, nil
}

func (c *Client) generateContent(ctx context.Context, imageBytes []byte, mimeType string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{InlineData: &inlineData{
						MimeType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(imageBytes),
					}},
					{Text: prompt},
				},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.4,
			TopK:            32,
			TopP:            1,
			MaxOutputTokens: 1024,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.NewUpstreamError("failed to marshal model request", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", apperrors.NewUpstreamError("failed to create model request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperrors.NewUpstreamError("failed to reach Gemini API", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUpstreamError("failed to read Gemini API response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			return "", apperrors.NewUpstreamError(fmt.Sprintf("Gemini API error: %s", ae.Error.Message), nil)
		}
		return "", apperrors.NewUpstreamError(fmt.Sprintf("Gemini API error: HTTP %d", resp.StatusCode), nil)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", apperrors.NewUpstreamError("failed to parse Gemini API response", err)
	}
	if len(gr.Candidates) == 0 {
		return "", apperrors.NewUpstreamError("invalid response structure from Gemini API", nil)
	}
	for _, p := range gr.Candidates[0].Content.Parts {
		if p.Text != "" {
			return strings.TrimSpace(p.Text), nil
		}
	}
	return "", apperrors.NewUpstreamError("no text part in Gemini API response", nil)
}

// decodeImagePayload validates the incoming encoded image and returns the
// raw bytes plus the MIME type declared in an optional data-URI prefix.
func decodeImagePayload(imageBase64 string) ([]byte, string, error) {
	mimeType := "image/jpeg"
	if strings.HasPrefix(imageBase64, "data:") {
		if semi := strings.Index(imageBase64, ";"); semi > len("data:") {
			mimeType = imageBase64[len("data:"):semi]
		}
	}

	raw := codec.StripDataURI(imageBase64)
	imageBytes, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", err
	}
	return imageBytes, mimeType, nil
}

// MockResult is the deterministic placeholder returned without any external
// call when mock mode is active or no credential is configured.
func MockResult(fileName string) *models.AnalysisResult {
	if fileName == "" {
		fileName = "uploaded-image"
	}
	return &models.AnalysisResult{
		OriginalLink:    "https://apple.com/products/airpods-pro",
		SimilarityScore: 87,
		OtherLinks: []models.LinkEntry{
			{URL: "https://amazon.com/Apple-AirPods-Latest-Model/dp/B08EXAMPLE", TrustRating: models.TrustHigh},
			{URL: "https://bestbuy.com/site/apple-airpods-pro/1234567.p", TrustRating: models.TrustHigh},
			{URL: "https://aliexpress.com/item/32123456789.html", TrustRating: models.TrustLow},
		},
		Explanation: "[MOCK DATA] The product shows authentic branding and packaging design. " +
			"Serial number format matches official products. Recommended to verify hologram " +
			"and purchase from official retailers. Real analysis: Enable GEMINI_API_KEY in " +
			".env for actual AI analysis.",
	}
}
