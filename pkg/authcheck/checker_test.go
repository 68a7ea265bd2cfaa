package authcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/prodcheck/prodcheck-go/internal/errors"
	"github.com/prodcheck/prodcheck-go/pkg/models"
)

func successBackend(t *testing.T, result models.AnalysisResult) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/check-authenticity" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req models.AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !strings.HasPrefix(req.ImageBase64, "data:") {
			t.Errorf("expected data-URI image payload, got prefix %q", req.ImageBase64[:min(len(req.ImageBase64), 10)])
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.AnalysisResponse{Success: true, Data: &result})
	}
}

func sampleResult() models.AnalysisResult {
	return models.AnalysisResult{
		OriginalLink:    "https://apple.com/products/airpods-pro",
		SimilarityScore: 87,
		OtherLinks: []models.LinkEntry{
			{URL: "https://amazon.com/item/1", TrustRating: models.TrustHigh},
			{URL: "https://aliexpress.com/item/2", TrustRating: models.TrustLow},
		},
		Explanation: "Packaging and branding match official photos.",
	}
}

func TestCheckProductAuthenticity_ProgressOrder(t *testing.T) {
	srv := httptest.NewServer(successBackend(t, sampleResult()))
	defer srv.Close()

	var updates []models.ProgressUpdate
	client := NewClient(srv.URL)
	result, err := client.CheckProductAuthenticityFrom(context.Background(), "shoe.jpg",
		strings.NewReader("fake image bytes"), func(u models.ProgressUpdate) {
			updates = append(updates, u)
		})
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}

	wantStages := []models.Stage{
		models.StageEncoding,
		models.StageSending,
		models.StageProcessing,
		models.StageParsing,
		models.StageComplete,
	}
	if len(updates) != len(wantStages) {
		t.Fatalf("got %d updates, want %d: %+v", len(updates), len(wantStages), updates)
	}
	last := -1
	for i, u := range updates {
		if u.Stage != wantStages[i] {
			t.Errorf("update %d stage = %q, want %q", i, u.Stage, wantStages[i])
		}
		if u.Percentage < last {
			t.Errorf("percentage decreased at %d: %d -> %d", i, last, u.Percentage)
		}
		last = u.Percentage
	}
	if updates[len(updates)-1].Percentage != 100 {
		t.Errorf("terminal percentage = %d, want 100", last)
	}
}

func TestCheckProductAuthenticity_RoundTripValues(t *testing.T) {
	want := sampleResult()
	srv := httptest.NewServer(successBackend(t, want))
	defer srv.Close()

	client := NewClient(srv.URL)
	got, err := client.CheckProductAuthenticityFrom(context.Background(), "shoe.jpg",
		strings.NewReader("fake image bytes"), nil)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}

	if got.OriginalLink != want.OriginalLink {
		t.Errorf("originalLink = %q", got.OriginalLink)
	}
	if got.SimilarityScore != want.SimilarityScore {
		t.Errorf("similarityScore = %v", got.SimilarityScore)
	}
	if len(got.OtherLinks) != len(want.OtherLinks) {
		t.Fatalf("otherLinks length = %d", len(got.OtherLinks))
	}
	for i := range want.OtherLinks {
		if got.OtherLinks[i] != want.OtherLinks[i] {
			t.Errorf("otherLinks[%d] = %+v, want %+v", i, got.OtherLinks[i], want.OtherLinks[i])
		}
	}
	if got.Explanation != want.Explanation {
		t.Errorf("explanation = %q", got.Explanation)
	}
}

func TestCheckProductAuthenticity_TransportError(t *testing.T) {
	// A closed server is unreachable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client := NewClient(endpoint)
	var updates []models.ProgressUpdate
	result, err := client.CheckProductAuthenticityFrom(context.Background(), "shoe.jpg",
		strings.NewReader("img"), func(u models.ProgressUpdate) { updates = append(updates, u) })

	if result != nil {
		t.Error("expected no result on transport failure")
	}
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeTransport) {
		t.Fatalf("expected transport error type, got %v", err)
	}
	// The message must name the configured endpoint and hint that the
	// backend may be down.
	appErr := err.(*apperrors.AppError)
	if !strings.Contains(appErr.Message, endpoint) {
		t.Errorf("message %q does not name endpoint %q", appErr.Message, endpoint)
	}
	if !strings.Contains(appErr.Message, "backend is running") {
		t.Errorf("message %q lacks backend hint", appErr.Message)
	}
	// Pipeline stopped at sending; complete never emitted.
	for _, u := range updates {
		if u.Stage == models.StageComplete {
			t.Error("complete must not be emitted on failure")
		}
	}
}

func TestCheckProductAuthenticity_ApplicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.AnalysisResponse{
			Success: false,
			Error:   "Gemini API key is not configured on the server",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.CheckProductAuthenticityFrom(context.Background(), "shoe.jpg",
		strings.NewReader("img"), nil)
	if err == nil {
		t.Fatal("expected application error")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeApplication) {
		t.Fatalf("expected application error type, got %v", err)
	}
	// Server-supplied message is surfaced verbatim.
	if got := err.(*apperrors.AppError).Message; got != "Gemini API key is not configured on the server" {
		t.Errorf("message = %q", got)
	}
}

func TestCheckProductAuthenticity_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>502 Bad Gateway</html>")
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.CheckProductAuthenticityFrom(context.Background(), "shoe.jpg",
		strings.NewReader("img"), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeTransport) {
		t.Fatalf("expected transport error type, got %v", err)
	}
	if got := err.(*apperrors.AppError).Message; !strings.Contains(got, "502") {
		t.Errorf("message %q lacks status detail", got)
	}
}

func TestCheckProductAuthenticity_PanickingReporter(t *testing.T) {
	srv := httptest.NewServer(successBackend(t, sampleResult()))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.CheckProductAuthenticityFrom(context.Background(), "shoe.jpg",
		strings.NewReader("img"), func(models.ProgressUpdate) { panic("observer bug") })
	if err != nil {
		t.Fatalf("reporter panic must not fail the pipeline: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result despite panicking reporter")
	}
}

func TestCheckProductAuthenticity_NilReporter(t *testing.T) {
	srv := httptest.NewServer(successBackend(t, sampleResult()))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.CheckProductAuthenticityFrom(context.Background(), "shoe.jpg",
		strings.NewReader("img"), nil); err != nil {
		t.Fatalf("nil reporter must be accepted: %v", err)
	}
}

func TestCheckProductAuthenticity_ConcurrentChecksIsolated(t *testing.T) {
	srv := httptest.NewServer(successBackend(t, sampleResult()))
	defer srv.Close()

	client := NewClient(srv.URL)
	const workers = 8

	var wg sync.WaitGroup
	errs := make([]error, workers)
	progress := make([][]models.ProgressUpdate, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var mine []models.ProgressUpdate
			_, err := client.CheckProductAuthenticityFrom(context.Background(),
				fmt.Sprintf("img-%d.jpg", i), strings.NewReader("img"),
				func(u models.ProgressUpdate) { mine = append(mine, u) })
			errs[i] = err
			progress[i] = mine
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Errorf("worker %d: %v", i, errs[i])
		}
		if len(progress[i]) != 5 {
			t.Errorf("worker %d saw %d updates, want 5", i, len(progress[i]))
		}
	}
}

func TestCheckProductAuthenticity_MissingFile(t *testing.T) {
	client := NewClient("http://localhost:5000")
	_, err := client.CheckProductAuthenticity(context.Background(), "/does/not/exist.jpg", nil)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeCodec) {
		t.Errorf("expected codec error, got %v", err)
	}
}
