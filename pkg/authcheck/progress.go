package authcheck

import (
	"github.com/sirupsen/logrus"

	"github.com/prodcheck/prodcheck-go/internal/logger"
	"github.com/prodcheck/prodcheck-go/pkg/models"
)

// Reporter receives progress updates at each pipeline stage boundary.
// Reporting is best-effort and fire-and-forget: the pipeline never changes
// behavior based on whether a reporter is attached, and a nil Reporter
// drops updates silently.
type Reporter func(models.ProgressUpdate)

// emit delivers one stage update. Reporter panics are isolated here so a
// misbehaving observer cannot fail the pipeline.
func emit(report Reporter, stage models.Stage, message string) {
	if report == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Warn("Progress reporter panicked; update dropped")
		}
	}()
	report(models.ProgressUpdate{
		Stage:      stage,
		Message:    message,
		Percentage: models.StagePercentage[stage],
	})
}

// LogReporter returns a Reporter that logs each update.
func LogReporter() Reporter {
	return func(u models.ProgressUpdate) {
		logger.WithFields(logrus.Fields{
			"stage":      u.Stage,
			"percentage": u.Percentage,
		}).Info(u.Message)
	}
}
