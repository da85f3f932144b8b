// Package recognition owns the long-lived text recognizer and serializes access to it.
package recognition

import (
	"errors"

	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

// ErrTerminated is wrapped by every error returned after Shutdown
var ErrTerminated = errors.New("recognizer terminated")

// Config selects languages and data locations for a backend
type Config struct {
	Languages []string
	// DataDir holds <lang>.traineddata files
	DataDir string
	// CacheDir is used for language data when DataDir is empty
	CacheDir string
}

// DefaultConfig recognizes English and Korean
func DefaultConfig() Config {
	return Config{Languages: []string{"eng", "kor"}}
}

// Backend is a single recognizer instance. Implementations are not safe for concurrent use.
type Backend interface {
	Recognize(image []byte) (models.RecognizedText, error)
	Close() error
}

// BackendFactory creates a ready backend or reports why it cannot start
type BackendFactory func(cfg Config) (Backend, error)

// TextRecognizer is the only surface the verification pipeline sees.
type TextRecognizer interface {
	EnsureReady() error
	Recognize(image []byte) (models.RecognizedText, error)
	Shutdown() error
}

// State is the lifecycle position of an Engine
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateError
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
