// Package transport exposes the verification pipeline over HTTP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/coa-verifier-go/internal/config"
	apperrors "github.com/anime-shed/coa-verifier-go/internal/errors"
	"github.com/anime-shed/coa-verifier-go/internal/imageio"
	"github.com/anime-shed/coa-verifier-go/internal/logger"
	"github.com/anime-shed/coa-verifier-go/internal/service"
	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

// RequestIDHeader carries the caller's correlation id
const RequestIDHeader = "X-Request-ID"

// multipart framing allowance on top of the image limit
const formOverhead = 1 << 20

// HealthChecker reports the recognizer lifecycle state
type HealthChecker interface {
	Status() string
}

// MetricsProvider returns a snapshot of verification counters
type MetricsProvider interface {
	GetMetrics() map[string]interface{}
}

func NewHandler(svc service.VerificationService, health HealthChecker, metrics MetricsProvider, cfg *config.Config) http.Handler {
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestID(),
		requestSizeLimiter(cfg.MaxUploadBytes+formOverhead),
		errorHandler(),
	)

	r.GET("/health", healthCheck(health))
	r.GET("/metrics", metricsSnapshot(metrics))
	r.POST("/verify", verify(svc, cfg))

	return r
}

func verify(svc service.VerificationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		reqID := c.GetString(RequestIDHeader)
		log := logger.WithFields(logrus.Fields{
			"request_id": reqID,
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		})
		log.Info("Processing verification request")

		var (
			result *models.VerificationResult
			err    error
		)
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			result, err = verifyUpload(ctx, c, svc, cfg.MaxUploadBytes, reqID)
		} else {
			result, err = verifyURL(ctx, c, svc, reqID)
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = apperrors.NewTimeoutError("verification timed out", err)
			}
			respondError(c, statusFor(err), "verification failed", err)
			return
		}

		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnprocessableEntity
		}

		log.WithFields(logrus.Fields{
			"status":             status,
			"is_authentic":       result.IsAuthentic,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Verification request completed")

		c.JSON(status, result)
	}
}

func verifyUpload(ctx context.Context, c *gin.Context, svc service.VerificationService, limit int64, reqID string) (*models.VerificationResult, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, apperrors.NewValidationError("multipart field \"image\" is required", err)
	}
	if header.Size > limit {
		return nil, apperrors.NewValidationError(fmt.Sprintf("image exceeds %d bytes", limit), nil)
	}

	raw, err := readUpload(header)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read uploaded image", err)
	}
	if len(raw) == 0 {
		return nil, apperrors.NewValidationError("uploaded image is empty", nil)
	}

	logger.WithFields(logrus.Fields{
		"request_id": reqID,
		"filename":   header.Filename,
		"bytes":      len(raw),
		"format":     imageio.Sniff(raw),
	}).Debug("Received image upload")

	return svc.Verify(ctx, raw, service.VerifyOptions{
		RequestID:          reqID,
		ExpectedCertNumber: c.PostForm("expected_cert_number"),
		ExpectedText:       c.PostForm("expected_text"),
	}), nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func verifyURL(ctx context.Context, c *gin.Context, svc service.VerificationService, reqID string) (*models.VerificationResult, error) {
	var req models.VerifyURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid request format", err)
	}

	logger.WithFields(logrus.Fields{
		"request_id": reqID,
		"url":        req.ImageURL,
	}).Debug("Fetching image")

	return svc.VerifyURL(ctx, req.ImageURL, service.VerifyOptions{
		RequestID:          reqID,
		ExpectedCertNumber: req.ExpectedCertNumber,
		ExpectedText:       req.ExpectedText,
	})
}

func healthCheck(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := health.Status()
		status, code := "available", http.StatusOK
		if state == "error" || state == "terminated" {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		c.JSON(code, models.HealthResponse{
			Status:     status,
			Recognizer: state,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func metricsSnapshot(metrics MetricsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

// Middleware and helper functions
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, statusFor(err), "request processing failed", err)
		}
	}
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"request_id":  c.GetString(RequestIDHeader),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
