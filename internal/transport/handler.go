package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/prodcheck/prodcheck-go/internal/config"
	apperrors "github.com/prodcheck/prodcheck-go/internal/errors"
	"github.com/prodcheck/prodcheck-go/internal/gemini"
	"github.com/prodcheck/prodcheck-go/internal/logger"
	"github.com/prodcheck/prodcheck-go/internal/metrics"
	"github.com/prodcheck/prodcheck-go/pkg/models"
)

// NewHandler builds the API router: health, authenticity check, metrics.
func NewHandler(analyzer gemini.Analyzer, cfg *config.Config) http.Handler {
	metrics.Register()

	r := gin.New()
	r.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.WithField("panic", recovered).Error("Unhandled panic in request handler")
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.AnalysisResponse{
				Success: false,
				Error:   "Internal server error",
			})
		}),
		corsMiddleware(cfg),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		gzip.Gzip(gzip.DefaultCompression),
	)

	r.GET("/api/health", healthCheck(cfg))
	r.POST("/api/check-authenticity", checkAuthenticity(analyzer, cfg))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.AnalysisResponse{
			Success: false,
			Error:   "Endpoint not found",
		})
	})

	return r
}

func checkAuthenticity(analyzer gemini.Analyzer, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		// An empty body falls through to the missing-image check below; a
		// body we cannot parse at all does not.
		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.WithError(err).WithField("ip", c.ClientIP()).Warn("Invalid request body")
			c.JSON(http.StatusBadRequest, models.AnalysisResponse{
				Success: false,
				Error:   "Invalid request body",
			})
			return
		}

		if strings.TrimSpace(req.ImageBase64) == "" {
			c.JSON(http.StatusBadRequest, models.AnalysisResponse{
				Success: false,
				Error:   "Image is required",
			})
			return
		}

		mockActive := cfg.UseMock || !cfg.HasAPIKey()
		if !cfg.HasAPIKey() && !cfg.UseMock {
			c.JSON(http.StatusInternalServerError, models.AnalysisResponse{
				Success: false,
				Error:   "Gemini API key is not configured on the server",
			})
			return
		}

		logger.WithFields(logrus.Fields{
			"file_name": req.FileName,
			"ip":        c.ClientIP(),
			"mock_mode": mockActive,
		}).Info("Processing authenticity check")

		result, err := analyzer.AnalyzeProductImage(ctx, req.ImageBase64, req.FileName)
		duration := time.Since(startTime)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeUpstream) {
				metrics.UpstreamErrorsTotal.Inc()
			}
			metrics.ChecksTotal.WithLabelValues("error").Inc()
			metrics.CheckDurationSeconds.WithLabelValues("error").Observe(duration.Seconds())

			logger.WithError(err).WithFields(logrus.Fields{
				"file_name":          req.FileName,
				"processing_time_ms": duration.Milliseconds(),
			}).Error("Authenticity check failed")

			// Only the message crosses the boundary; causes stay in logs.
			message := "An error occurred while analyzing the image"
			if appErr, ok := err.(*apperrors.AppError); ok {
				message = appErr.UserMessage()
			}
			c.JSON(http.StatusInternalServerError, models.AnalysisResponse{
				Success: false,
				Error:   message,
			})
			return
		}

		if mockActive {
			metrics.MockResponsesTotal.Inc()
		}
		metrics.ChecksTotal.WithLabelValues("success").Inc()
		metrics.CheckDurationSeconds.WithLabelValues("success").Observe(duration.Seconds())

		logger.WithFields(logrus.Fields{
			"file_name":          req.FileName,
			"similarity_score":   result.SimilarityScore,
			"processing_time_ms": duration.Milliseconds(),
		}).Info("Authenticity check completed")

		c.JSON(http.StatusOK, models.AnalysisResponse{
			Success: true,
			Data:    result,
		})
	}
}

func healthCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "ok",
			"message":          "Backend is running",
			"time":             time.Now().UTC().Format(time.RFC3339),
			"apiKeyConfigured": cfg.HasAPIKey(),
		})
	}
}

// corsMiddleware allows the configured origin list plus preview-deployment
// hostname suffixes to call with credentials. Other origins get no CORS
// headers at all.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && originAllowed(cfg, origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Origin, Cache-Control, X-Requested-With")
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originAllowed(cfg *config.Config, origin string) bool {
	for _, allowed := range cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return false
	}
	for _, suffix := range cfg.AllowedOriginSuffixes {
		if strings.HasSuffix(u.Hostname(), suffix) {
			return true
		}
	}
	return false
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
