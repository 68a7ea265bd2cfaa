package models

// TrustRating is the three-valued confidence label attached to a marketplace link.
type TrustRating string

const (
	TrustHigh   TrustRating = "high"
	TrustMedium TrustRating = "medium"
	TrustLow    TrustRating = "low"
)

// IsValid reports whether the rating is one of the permitted values.
func (r TrustRating) IsValid() bool {
	switch r {
	case TrustHigh, TrustMedium, TrustLow:
		return true
	}
	return false
}

// LinkEntry is a comparable marketplace listing with a trust rating.
type LinkEntry struct {
	URL         string      `json:"url" validate:"required"`
	TrustRating TrustRating `json:"trustRating" validate:"required,oneof=high medium low"`
}

// AnalysisResult is the validated outcome of one authenticity check.
// OtherLinks preserves the relevance order produced by the model.
type AnalysisResult struct {
	OriginalLink    string      `json:"originalLink" validate:"required"`
	SimilarityScore float64     `json:"similarityScore" validate:"gte=0,lte=100"`
	OtherLinks      []LinkEntry `json:"otherLinks" validate:"dive"`
	Explanation     string      `json:"explanation" validate:"required"`
}

// AnalysisRequest is the wire payload sent to the backend. It exists only
// for the duration of one HTTP exchange.
type AnalysisRequest struct {
	ImageBase64 string `json:"imageBase64"`
	FileName    string `json:"fileName"`
}

// AnalysisResponse is the envelope returned by the backend.
type AnalysisResponse struct {
	Success bool            `json:"success"`
	Data    *AnalysisResult `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
