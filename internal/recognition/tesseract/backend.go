// Package tesseract adapts gosseract to the recognition.Backend interface.
package tesseract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"

	"github.com/anime-shed/coa-verifier-go/internal/recognition"
	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

type Backend struct {
	client *gosseract.Client
}

// New creates a Tesseract client for cfg.Languages. Missing language data fails here
// instead of on the first recognition.
func New(cfg recognition.Config) (recognition.Backend, error) {
	if len(cfg.Languages) == 0 {
		return nil, fmt.Errorf("no recognition languages configured")
	}

	dataDir, err := resolveDataDir(cfg)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		if err := checkLanguageData(dataDir, cfg.Languages); err != nil {
			return nil, err
		}
	}

	client := gosseract.NewClient()
	if dataDir != "" {
		if err := client.SetTessdataPrefix(dataDir); err != nil {
			client.Close()
			return nil, fmt.Errorf("set tessdata prefix %s: %w", dataDir, err)
		}
	}
	if err := client.SetLanguage(cfg.Languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("set languages %v: %w", cfg.Languages, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	return &Backend{client: client}, nil
}

func (b *Backend) Recognize(image []byte) (models.RecognizedText, error) {
	if err := b.client.SetImageFromBytes(image); err != nil {
		return models.RecognizedText{}, fmt.Errorf("load image: %w", err)
	}
	text, err := b.client.Text()
	if err != nil {
		return models.RecognizedText{}, fmt.Errorf("read text: %w", err)
	}
	lines, err := b.boxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return models.RecognizedText{}, fmt.Errorf("read lines: %w", err)
	}
	words, err := b.boxes(gosseract.RIL_WORD)
	if err != nil {
		return models.RecognizedText{}, fmt.Errorf("read words: %w", err)
	}
	return recognition.Assemble(text, lines, words), nil
}

func (b *Backend) boxes(level gosseract.PageIteratorLevel) ([]recognition.Box, error) {
	found, err := b.client.GetBoundingBoxes(level)
	if err != nil {
		return nil, err
	}
	out := make([]recognition.Box, 0, len(found))
	for _, f := range found {
		out = append(out, recognition.Box{Text: f.Word, Confidence: f.Confidence, Rect: f.Box})
	}
	return out, nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}

// resolveDataDir picks the language data directory: DataDir, then CacheDir, then
// TESSDATA_PREFIX. An empty result leaves Tesseract on its compiled-in default.
func resolveDataDir(cfg recognition.Config) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return "", fmt.Errorf("create cache dir %s: %w", cfg.CacheDir, err)
		}
		return cfg.CacheDir, nil
	}
	return os.Getenv("TESSDATA_PREFIX"), nil
}

func checkLanguageData(dir string, languages []string) error {
	for _, lang := range languages {
		path := filepath.Join(dir, lang+".traineddata")
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("language data for %q not found at %s: %w", lang, path, err)
		}
	}
	return nil
}
