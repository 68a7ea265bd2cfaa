package authcheck

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/prodcheck/prodcheck-go/internal/codec"
	apperrors "github.com/prodcheck/prodcheck-go/internal/errors"
	"github.com/prodcheck/prodcheck-go/pkg/models"
)

// CheckProductAuthenticity runs the full pipeline for the image file at
// path: encode, transmit, await, parse, validate. It produces exactly one
// result or exactly one error, emitting stage updates to report along the
// way. Invocations are independent; concurrent checks on the same Client
// share no mutable state.
func (c *Client) CheckProductAuthenticity(ctx context.Context, path string, report Reporter) (*models.AnalysisResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewCodecError("failed to open image file", err)
	}
	defer f.Close()
	return c.CheckProductAuthenticityFrom(ctx, filepath.Base(path), f, report)
}

// CheckProductAuthenticityFrom is CheckProductAuthenticity for an already
// open image stream. fileName travels to the backend for logging only.
func (c *Client) CheckProductAuthenticityFrom(ctx context.Context, fileName string, image io.Reader, report Reporter) (*models.AnalysisResult, error) {
	emit(report, models.StageEncoding, "Preparing image...")
	encoded, err := codec.Encode(fileName, image)
	if err != nil {
		return nil, err
	}

	emit(report, models.StageSending, "Sending to analysis backend...")
	resp, err := c.send(ctx, encoded, fileName)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	emit(report, models.StageProcessing, "Analyzing product...")

	emit(report, models.StageParsing, "Processing results...")
	result, err := c.decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	emit(report, models.StageComplete, "Analysis complete!")
	return result, nil
}
