package container

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/anime-shed/coa-verifier-go/internal/analyzer"
	"github.com/anime-shed/coa-verifier-go/internal/config"
	"github.com/anime-shed/coa-verifier-go/internal/extractor"
	"github.com/anime-shed/coa-verifier-go/internal/logger"
	"github.com/anime-shed/coa-verifier-go/internal/observer"
	"github.com/anime-shed/coa-verifier-go/internal/preprocess"
	"github.com/anime-shed/coa-verifier-go/internal/recognition"
	"github.com/anime-shed/coa-verifier-go/internal/repository"
	"github.com/anime-shed/coa-verifier-go/internal/scoring"
	"github.com/anime-shed/coa-verifier-go/internal/service"
	"github.com/anime-shed/coa-verifier-go/internal/storage"
	"github.com/anime-shed/coa-verifier-go/internal/transport"
	"github.com/anime-shed/coa-verifier-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config     *config.Config
	recognizer *recognition.Pool
	metrics    *observer.MetricsObserver
	publisher  *observer.EventPublisher
	service    service.VerificationService
	handler    http.Handler

	closeOnce sync.Once
	closeErr  error
}

// NewContainer builds the dependency graph. The recognizer starts lazily on first use;
// call Warm to initialize it eagerly and Close exactly once on exit.
func NewContainer(cfg *config.Config, backend recognition.BackendFactory) (*Container, error) {
	logger.SetLevel(cfg.LogLevel)

	scorer, err := scoring.New(scoring.Weights{
		OCR:     cfg.Scoring.WeightOCR,
		Data:    cfg.Scoring.WeightData,
		Texture: cfg.Scoring.WeightTexture,
		Ink:     cfg.Scoring.WeightInk,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid score weights: %w", err)
	}

	repo, err := newRepository(cfg)
	if err != nil {
		return nil, err
	}

	recognizer := recognition.NewPool(cfg.OCR.PoolSize, recognition.Config{
		Languages: cfg.OCR.Languages,
		DataDir:   cfg.OCR.DataDir,
		CacheDir:  cfg.OCR.CacheDir,
	}, backend)

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	svc := service.NewVerificationService(service.Dependencies{
		Repository:   repo,
		Preprocessor: preprocess.New(preprocessOptions(cfg.Preprocess)),
		Recognizer:   recognizer,
		Extractor:    extractor.NewDefault(),
		Texture:      analyzer.NewTextureAnalyzer(textureOptions(cfg.Texture)),
		Ink:          analyzer.NewInkAnalyzer(inkOptions(cfg.Ink)),
		Scorer:       scorer,
		Publisher:    publisher,
		Thresholds: service.Thresholds{
			Authentic:   cfg.Scoring.AuthenticThreshold,
			TextClarity: cfg.Scoring.TextClarityThreshold,
			QualityHigh: cfg.Scoring.QualityHighThreshold,
		},
	})

	return &Container{
		config:     cfg,
		recognizer: recognizer,
		metrics:    metrics,
		publisher:  publisher,
		service:    svc,
		handler:    transport.NewHandler(svc, recognizer, metrics, cfg),
	}, nil
}

func newRepository(cfg *config.Config) (repository.ImageRepository, error) {
	httpOpts := storage.DefaultHTTPFetcherOptions()
	httpOpts.MaxBytes = cfg.MaxUploadBytes
	httpOpts.Timeout = cfg.RequestTimeout

	var blob storage.RawFetcher
	if cfg.Azure.Enabled() {
		f, err := storage.NewAzureFetcher(cfg.Azure.AccountName, cfg.Azure.AccountKey, cfg.MaxUploadBytes)
		if err != nil {
			return nil, err
		}
		blob = f
	}

	validator := validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedImageHosts)
	return repository.NewSourceRepository(storage.NewHTTPFetcher(httpOpts), blob, validator), nil
}

func preprocessOptions(c config.PreprocessConfig) preprocess.Options {
	opts := preprocess.DefaultOptions()
	opts.MaxWidth = c.MaxWidth
	opts.MaxHeight = c.MaxHeight
	opts.BinarizeThreshold = uint8(c.BinarizeThreshold)
	opts.SharpenSigma = c.SharpenSigma
	return opts
}

func textureOptions(c config.TextureConfig) analyzer.TextureOptions {
	return analyzer.TextureOptions{
		BandLow:         c.BandLow,
		BandHigh:        c.BandHigh,
		ChannelAward:    c.ChannelAward,
		WatermarkCutoff: c.WatermarkCutoff,
		WatermarkBonus:  c.WatermarkBonus,
	}
}

func inkOptions(c config.InkConfig) analyzer.InkOptions {
	opts := analyzer.DefaultInkOptions()
	opts.EdgeThreshold = uint8(c.EdgeThreshold)
	opts.SharpnessGain = c.SharpnessGain
	opts.Windows = c.Windows
	opts.VarianceScale = c.VarianceScale
	opts.ProfessionalSharpness = c.ProfessionalSharpness
	return opts.WithBleedingThresholds(c.HighBleedingSharpness, c.MediumBleedingSharpness)
}

// Warm initializes every recognizer engine. Failures are returned but not fatal:
// engines retry initialization on the next request.
func (c *Container) Warm() error {
	return c.recognizer.EnsureReady()
}

// Close shuts the recognizer down. Later calls return the first result.
func (c *Container) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.recognizer.Shutdown()
		logger.WithField("recognizer", c.recognizer.Status()).Info("Recognizer shut down")
	})
	return c.closeErr
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the verification pipeline
func (c *Container) Service() service.VerificationService {
	return c.service
}

// Metrics returns the aggregated verification counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
