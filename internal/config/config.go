package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Host            string
	Port            string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64

	OCR        OCRConfig
	Preprocess PreprocessConfig
	Texture    TextureConfig
	Ink        InkConfig
	Scoring    ScoringConfig
	Azure      AzureConfig

	AllowedImageHosts []string
}

type OCRConfig struct {
	Languages []string
	DataDir   string
	CacheDir  string
	PoolSize  int
}

type PreprocessConfig struct {
	MaxWidth          int
	MaxHeight         int
	BinarizeThreshold int
	SharpenSigma      float64
}

type TextureConfig struct {
	BandLow         float64
	BandHigh        float64
	ChannelAward    float64
	WatermarkCutoff float64
	WatermarkBonus  float64
}

type InkConfig struct {
	EdgeThreshold           int
	SharpnessGain           float64
	Windows                 int
	VarianceScale           float64
	ProfessionalSharpness   float64
	HighBleedingSharpness   float64
	MediumBleedingSharpness float64
}

type ScoringConfig struct {
	WeightOCR            float64
	WeightData           float64
	WeightTexture        float64
	WeightInk            float64
	AuthenticThreshold   float64
	TextClarityThreshold float64
	QualityHighThreshold float64
}

type AzureConfig struct {
	AccountName string
	AccountKey  string
}

// Enabled reports whether blob credentials were supplied
func (a AzureConfig) Enabled() bool {
	return a.AccountName != "" && a.AccountKey != ""
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv reads .env (if present), the optional CONFIG_FILE and the process environment.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load builds a Config from defaults, an optional YAML file and environment overrides.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Host:            v.GetString("host"),
		Port:            v.GetString("port"),
		LogLevel:        v.GetString("log.level"),
		RequestTimeout:  v.GetDuration("request.timeout"),
		ShutdownTimeout: v.GetDuration("shutdown.timeout"),
		MaxUploadBytes:  v.GetInt64("max.upload.bytes"),
		OCR: OCRConfig{
			Languages: ParseLanguages(v.GetString("ocr.languages")),
			DataDir:   v.GetString("ocr.data.dir"),
			CacheDir:  v.GetString("ocr.cache.dir"),
			PoolSize:  v.GetInt("ocr.pool.size"),
		},
		Preprocess: PreprocessConfig{
			MaxWidth:          v.GetInt("preprocess.max.width"),
			MaxHeight:         v.GetInt("preprocess.max.height"),
			BinarizeThreshold: v.GetInt("preprocess.binarize.threshold"),
			SharpenSigma:      v.GetFloat64("preprocess.sharpen.sigma"),
		},
		Texture: TextureConfig{
			BandLow:         v.GetFloat64("texture.band.low"),
			BandHigh:        v.GetFloat64("texture.band.high"),
			ChannelAward:    v.GetFloat64("texture.channel.award"),
			WatermarkCutoff: v.GetFloat64("texture.watermark.cutoff"),
			WatermarkBonus:  v.GetFloat64("texture.watermark.bonus"),
		},
		Ink: InkConfig{
			EdgeThreshold:           v.GetInt("ink.edge.threshold"),
			SharpnessGain:           v.GetFloat64("ink.sharpness.gain"),
			Windows:                 v.GetInt("ink.windows"),
			VarianceScale:           v.GetFloat64("ink.variance.scale"),
			ProfessionalSharpness:   v.GetFloat64("ink.professional.sharpness"),
			HighBleedingSharpness:   v.GetFloat64("ink.bleeding.high"),
			MediumBleedingSharpness: v.GetFloat64("ink.bleeding.medium"),
		},
		Scoring: ScoringConfig{
			WeightOCR:            v.GetFloat64("score.weight.ocr"),
			WeightData:           v.GetFloat64("score.weight.data"),
			WeightTexture:        v.GetFloat64("score.weight.texture"),
			WeightInk:            v.GetFloat64("score.weight.ink"),
			AuthenticThreshold:   v.GetFloat64("authentic.threshold"),
			TextClarityThreshold: v.GetFloat64("text.clarity.threshold"),
			QualityHighThreshold: v.GetFloat64("quality.high.threshold"),
		},
		Azure: AzureConfig{
			AccountName: v.GetString("azure.storage.account"),
			AccountKey:  v.GetString("azure.storage.key"),
		},
		AllowedImageHosts: splitList(v.GetString("allowed.image.hosts")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("request.timeout", "60s")
	v.SetDefault("shutdown.timeout", "30s")
	v.SetDefault("max.upload.bytes", 15*1024*1024)

	v.SetDefault("ocr.languages", "eng+kor")
	v.SetDefault("ocr.data.dir", "")
	v.SetDefault("ocr.cache.dir", "")
	v.SetDefault("ocr.pool.size", 1)

	v.SetDefault("preprocess.max.width", 2000)
	v.SetDefault("preprocess.max.height", 2000)
	v.SetDefault("preprocess.binarize.threshold", 128)
	v.SetDefault("preprocess.sharpen.sigma", 1.0)

	v.SetDefault("texture.band.low", 10.0)
	v.SetDefault("texture.band.high", 30.0)
	v.SetDefault("texture.channel.award", 0.33)
	v.SetDefault("texture.watermark.cutoff", 0.66)
	v.SetDefault("texture.watermark.bonus", 0.3)

	v.SetDefault("ink.edge.threshold", 128)
	v.SetDefault("ink.sharpness.gain", 10.0)
	v.SetDefault("ink.windows", 10)
	v.SetDefault("ink.variance.scale", 10000.0)
	v.SetDefault("ink.professional.sharpness", 0.7)
	v.SetDefault("ink.bleeding.high", 0.05)
	v.SetDefault("ink.bleeding.medium", 0.1)

	v.SetDefault("score.weight.ocr", 0.25)
	v.SetDefault("score.weight.data", 0.25)
	v.SetDefault("score.weight.texture", 0.25)
	v.SetDefault("score.weight.ink", 0.25)
	v.SetDefault("authentic.threshold", 0.8)
	v.SetDefault("text.clarity.threshold", 80.0)
	v.SetDefault("quality.high.threshold", 0.7)

	v.SetDefault("azure.storage.account", "")
	v.SetDefault("azure.storage.key", "")
	v.SetDefault("allowed.image.hosts", "")
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0 (got %d)", c.MaxUploadBytes)
	}
	if c.RequestTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, shutdown=%s)",
			c.RequestTimeout, c.ShutdownTimeout)
	}
	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("OCR_LANGUAGES must name at least one language")
	}
	if c.OCR.PoolSize < 1 {
		return fmt.Errorf("OCR_POOL_SIZE must be >= 1 (got %d)", c.OCR.PoolSize)
	}
	if c.Preprocess.MaxWidth <= 0 || c.Preprocess.MaxHeight <= 0 {
		return fmt.Errorf("preprocess bounds must be > 0 (got %dx%d)",
			c.Preprocess.MaxWidth, c.Preprocess.MaxHeight)
	}
	if c.Preprocess.BinarizeThreshold < 0 || c.Preprocess.BinarizeThreshold > 255 {
		return fmt.Errorf("PREPROCESS_BINARIZE_THRESHOLD out of range: %d", c.Preprocess.BinarizeThreshold)
	}
	if c.Texture.BandLow >= c.Texture.BandHigh {
		return fmt.Errorf("texture band is empty: (%g, %g)", c.Texture.BandLow, c.Texture.BandHigh)
	}
	if c.Ink.Windows < 1 {
		return fmt.Errorf("INK_WINDOWS must be >= 1 (got %d)", c.Ink.Windows)
	}
	if c.Ink.VarianceScale <= 0 {
		return fmt.Errorf("INK_VARIANCE_SCALE must be > 0 (got %g)", c.Ink.VarianceScale)
	}
	s := c.Scoring
	if sum := s.WeightOCR + s.WeightData + s.WeightTexture + s.WeightInk; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("score weights must sum to 1.0 (got %g)", sum)
	}
	return nil
}

// ParseLanguages splits a Tesseract-style language list such as "eng+kor" or "eng, kor".
func ParseLanguages(raw string) []string {
	return splitList(strings.ReplaceAll(raw, "+", ","))
}

func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
