package recognition

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/coa-verifier-go/internal/errors"
	"github.com/anime-shed/coa-verifier-go/internal/logger"
	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

// Engine guards one Backend with a mutex and drives its lifecycle:
// Uninitialized -> Initializing -> Ready, Ready -> Error on a failed call,
// Error -> Initializing on the next call, and Terminated after Shutdown.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	factory BackendFactory
	backend Backend
	state   State
	lastErr error
}

func NewEngine(cfg Config, factory BackendFactory) *Engine {
	return &Engine{cfg: cfg, factory: factory}
}

// State returns the current lifecycle state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastError returns the cause of the most recent transition to Error
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// EnsureReady initializes the backend if it is not already running.
func (e *Engine) EnsureReady() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureReadyLocked()
}

func (e *Engine) ensureReadyLocked() error {
	switch e.state {
	case StateReady:
		return nil
	case StateTerminated:
		return apperrors.NewTerminatedError("recognizer used after shutdown", ErrTerminated)
	}

	e.state = StateInitializing
	start := time.Now()
	backend, err := e.factory(e.cfg)
	if err != nil {
		e.state = StateError
		e.lastErr = err
		return apperrors.NewInitializationError("recognizer failed to initialize", err)
	}

	e.backend = backend
	e.state = StateReady
	e.lastErr = nil
	logger.WithFields(logrus.Fields{
		"languages":   strings.Join(e.cfg.Languages, "+"),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Recognizer ready")
	return nil
}

// Recognize runs the backend on a preprocessed image. Calls are serialized.
// A panicking backend is treated like a failed call.
func (e *Engine) Recognize(image []byte) (text models.RecognizedText, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			cause := fmt.Errorf("recognizer panicked: %v", r)
			logger.WithError(cause).Error("Recovered from recognizer panic")
			e.failLocked(cause)
			text = models.RecognizedText{}
			err = apperrors.NewRecognitionError("text recognition failed", cause)
		}
	}()

	if err := e.ensureReadyLocked(); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeTerminated) {
			return models.RecognizedText{}, err
		}
		return models.RecognizedText{}, apperrors.NewRecognitionError("recognizer is not ready", err)
	}

	text, err = e.backend.Recognize(image)
	if err != nil {
		e.failLocked(err)
		return models.RecognizedText{}, apperrors.NewRecognitionError("text recognition failed", err)
	}
	return text, nil
}

// failLocked drops the backend so the next call initializes a fresh one.
func (e *Engine) failLocked(cause error) {
	e.state = StateError
	e.lastErr = cause
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close recognizer backend after error")
		}
		e.backend = nil
	}
}

// Shutdown releases the backend. It succeeds once; later calls report ErrTerminated.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateTerminated {
		return apperrors.NewTerminatedError("recognizer already shut down", ErrTerminated)
	}
	e.state = StateTerminated

	if e.backend == nil {
		return nil
	}
	err := e.backend.Close()
	e.backend = nil
	if err != nil {
		return apperrors.NewInternalError("failed to release recognizer", err)
	}
	return nil
}
