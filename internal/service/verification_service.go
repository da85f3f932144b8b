// Package service sequences the verification pipeline and owns its failure policy.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/coa-verifier-go/internal/analyzer"
	apperrors "github.com/anime-shed/coa-verifier-go/internal/errors"
	"github.com/anime-shed/coa-verifier-go/internal/imageio"
	"github.com/anime-shed/coa-verifier-go/internal/logger"
	"github.com/anime-shed/coa-verifier-go/internal/matching"
	"github.com/anime-shed/coa-verifier-go/internal/observer"
	"github.com/anime-shed/coa-verifier-go/internal/repository"
	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

// Pipeline stage names used in logs, events and details.degradedStages
const (
	StagePreprocess = "preprocess"
	StageTexture    = "texture"
	StageInk        = "ink"
)

// Preprocessor prepares an image for recognition. It must never fail.
type Preprocessor interface {
	Preprocess(raw []byte) ([]byte, bool)
}

// Recognizer is the serialized text recognition resource
type Recognizer interface {
	Recognize(image []byte) (models.RecognizedText, error)
}

type FieldExtractor interface {
	Extract(text string) models.CertificateFields
}

type TextureAnalyzer interface {
	Analyze(raw []byte) models.TextureReport
}

type InkAnalyzer interface {
	Analyze(raw []byte) models.InkReport
}

type Scorer interface {
	Score(ocrConfidence float64, fields models.CertificateFields, texture models.TextureReport, ink models.InkReport) models.AuthenticityScore
}

// Thresholds drive the final decision and the details summary
type Thresholds struct {
	Authentic   float64
	TextClarity float64
	QualityHigh float64
}

// DefaultThresholds returns overall > 0.8, confidence > 80 and quality >= 0.7
func DefaultThresholds() Thresholds {
	return Thresholds{Authentic: 0.8, TextClarity: 80, QualityHigh: 0.7}
}

// Dependencies groups the collaborators of the verification service.
// Repository and Publisher are optional.
type Dependencies struct {
	Repository   repository.ImageRepository
	Preprocessor Preprocessor
	Recognizer   Recognizer
	Extractor    FieldExtractor
	Texture      TextureAnalyzer
	Ink          InkAnalyzer
	Scorer       Scorer
	Publisher    observer.Subject
	Thresholds   Thresholds
}

// VerifyOptions carries per-request inputs that do not affect the score
type VerifyOptions struct {
	RequestID          string
	ExpectedCertNumber string
	ExpectedText       string
}

// VerificationService verifies certificate images
type VerificationService interface {
	// Verify runs the pipeline on raw bytes. Recognition failure is reported in the
	// result, never as a panic or error.
	Verify(ctx context.Context, raw []byte, opts VerifyOptions) *models.VerificationResult

	// VerifyURL fetches the image first. Invalid or unreachable URLs return an error.
	VerifyURL(ctx context.Context, imageURL string, opts VerifyOptions) (*models.VerificationResult, error)
}

type verificationService struct {
	deps Dependencies
}

// NewVerificationService creates a new verification service
func NewVerificationService(deps Dependencies) VerificationService {
	if deps.Thresholds == (Thresholds{}) {
		deps.Thresholds = DefaultThresholds()
	}
	return &verificationService{deps: deps}
}

func (s *verificationService) VerifyURL(ctx context.Context, imageURL string, opts VerifyOptions) (*models.VerificationResult, error) {
	if s.deps.Repository == nil {
		return nil, apperrors.NewInternalError("no image repository configured", nil)
	}
	if err := s.deps.Repository.ValidateImageURL(imageURL); err != nil {
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	raw, err := s.deps.Repository.FetchRaw(ctx, imageURL)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	return s.Verify(ctx, raw, opts), nil
}

func (s *verificationService) Verify(ctx context.Context, raw []byte, opts VerifyOptions) *models.VerificationResult {
	start := time.Now()
	requestID := opts.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"bytes":      len(raw),
	})
	s.publish(ctx, observer.VerificationEvent{EventType: observer.VerificationStarted, RequestID: requestID})

	var degraded []string
	processed, applied := s.deps.Preprocessor.Preprocess(raw)
	if !applied {
		degraded = append(degraded, StagePreprocess)
		s.publishDegraded(ctx, requestID, StagePreprocess)
	}

	if err := ctx.Err(); err != nil {
		return s.fail(ctx, requestID, start, apperrors.NewTimeoutError("verification cancelled before recognition", err))
	}

	recognized, err := s.deps.Recognizer.Recognize(processed)
	if err != nil {
		return s.fail(ctx, requestID, start, err)
	}

	var (
		wg      sync.WaitGroup
		fields  models.CertificateFields
		texture models.TextureReport
		ink     models.InkReport
		texOK   bool
		inkOK   bool
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		fields = s.deps.Extractor.Extract(recognized.Text)
	}()
	go func() {
		defer wg.Done()
		texture, texOK = s.analyzeTexture(raw)
	}()
	go func() {
		defer wg.Done()
		ink, inkOK = s.analyzeInk(raw)
	}()
	wg.Wait()

	if !texOK {
		degraded = append(degraded, StageTexture)
		s.publishDegraded(ctx, requestID, StageTexture)
	}
	if !inkOK {
		degraded = append(degraded, StageInk)
		s.publishDegraded(ctx, requestID, StageInk)
	}

	score := s.deps.Scorer.Score(recognized.Confidence, fields, texture, ink)
	isAuthentic := score.Overall > s.deps.Thresholds.Authentic

	details := s.buildDetails(raw, recognized, texture, ink, inkOK, applied, degraded)
	s.applyExpectations(details, fields, recognized.Text, opts)

	result := &models.VerificationResult{
		RequestID:    requestID,
		Success:      true,
		Text:         recognized.Text,
		Confidence:   recognized.Confidence,
		Fields:       &fields,
		Texture:      &texture,
		Ink:          &ink,
		Authenticity: &score,
		IsAuthentic:  isAuthentic,
		Details:      details,
	}

	elapsed := time.Since(start)
	log.WithFields(logrus.Fields{
		"overall":      score.Overall,
		"is_authentic": isAuthentic,
		"confidence":   recognized.Confidence,
		"duration_ms":  elapsed.Milliseconds(),
	}).Info("Verification finished")

	s.publish(ctx, observer.VerificationEvent{
		EventType:      observer.VerificationCompleted,
		RequestID:      requestID,
		ProcessingTime: elapsed,
		Success:        true,
		IsAuthentic:    isAuthentic,
		Overall:        score.Overall,
	})
	return result
}

func (s *verificationService) fail(ctx context.Context, requestID string, start time.Time, err error) *models.VerificationResult {
	elapsed := time.Since(start)
	logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"duration_ms": elapsed.Milliseconds(),
	}).WithError(err).Error("Verification failed")

	s.publish(ctx, observer.VerificationEvent{
		EventType:      observer.VerificationFailed,
		RequestID:      requestID,
		ProcessingTime: elapsed,
		ErrorMessage:   err.Error(),
	})
	return &models.VerificationResult{
		RequestID:   requestID,
		Success:     false,
		IsAuthentic: false,
		Error:       err.Error(),
	}
}

// analyzeTexture reports ok=false when the analyzer fell back to its neutral report
func (s *verificationService) analyzeTexture(raw []byte) (report models.TextureReport, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithStage(StageTexture).WithField("panic", r).Warn("Texture analyzer panicked")
			report, ok = analyzer.NeutralTextureReport(), false
		}
	}()
	report = s.deps.Texture.Analyze(raw)
	return report, report != analyzer.NeutralTextureReport()
}

func (s *verificationService) analyzeInk(raw []byte) (report models.InkReport, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithStage(StageInk).WithField("panic", r).Warn("Ink analyzer panicked")
			report, ok = analyzer.NeutralInkReport(), false
		}
	}()
	report = s.deps.Ink.Analyze(raw)
	return report, report.Bleeding != models.BleedingUnknown
}

func (s *verificationService) buildDetails(raw []byte, text models.RecognizedText, texture models.TextureReport, ink models.InkReport, inkOK, preprocessed bool, degraded []string) *models.VerificationDetails {
	t := s.deps.Thresholds

	watermark := "not detected"
	if texture.HasWatermark {
		watermark = "detected"
	}
	clarity := "low"
	if text.Confidence > t.TextClarity {
		clarity = "high"
	}
	inkQuality := "unknown"
	if inkOK {
		inkQuality = level(ink.Quality, t.QualityHigh)
	}

	return &models.VerificationDetails{
		Watermark:      watermark,
		PaperQuality:   level(texture.QualityScore, t.QualityHigh),
		InkQuality:     inkQuality,
		TextClarity:    clarity,
		PrintMethod:    ink.PrintMethod,
		Bleeding:       ink.Bleeding,
		LineCount:      len(text.Lines),
		WordCount:      len(text.Words),
		ImageFormat:    imageio.Sniff(raw),
		Preprocessed:   preprocessed,
		DegradedStages: degraded,
	}
}

func (s *verificationService) applyExpectations(details *models.VerificationDetails, fields models.CertificateFields, text string, opts VerifyOptions) {
	if opts.ExpectedCertNumber != "" {
		actual := ""
		if fields.CertNumber != nil {
			actual = *fields.CertNumber
		}
		sim := matching.CertNumberSimilarity(opts.ExpectedCertNumber, actual)
		details.CertNumberSimilarity = &sim
	}
	if opts.ExpectedText != "" {
		rate := matching.WordErrorRate(opts.ExpectedText, text)
		details.TextWordErrorRate = &rate
		cer := matching.CharacterErrorRate(opts.ExpectedText, text)
		details.TextCharErrorRate = &cer
	}
}

func (s *verificationService) publish(ctx context.Context, event observer.VerificationEvent) {
	if s.deps.Publisher == nil {
		return
	}
	// Observers run after the request returns
	s.deps.Publisher.NotifyObservers(context.WithoutCancel(ctx), event)
}

func (s *verificationService) publishDegraded(ctx context.Context, requestID, stage string) {
	s.publish(ctx, observer.VerificationEvent{
		EventType:    observer.StageDegraded,
		RequestID:    requestID,
		Stage:        stage,
		ErrorMessage: fmt.Sprintf("%s fell back to default output", stage),
	})
}

func level(score, high float64) string {
	if score >= high {
		return "high"
	}
	return "low"
}
