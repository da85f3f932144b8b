package recognition

import (
	"errors"
	"sync"

	apperrors "github.com/anime-shed/coa-verifier-go/internal/errors"
	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

type job struct {
	image []byte
	reply chan<- jobResult
}

type jobResult struct {
	text models.RecognizedText
	err  error
}

// Pool is a bounded set of engines. Each worker goroutine exclusively owns one engine,
// so a pool of size one behaves as a single serialized recognizer.
type Pool struct {
	engines  []*Engine
	jobQueue chan job
	wg       sync.WaitGroup
	once     sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewPool creates size independently initialized engines and starts their workers.
func NewPool(size int, cfg Config, factory BackendFactory) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		engines:  make([]*Engine, size),
		jobQueue: make(chan job, size*2),
	}
	for i := range p.engines {
		p.engines[i] = NewEngine(cfg, factory)
	}
	p.start()
	return p
}

func (p *Pool) start() {
	p.once.Do(func() {
		for _, e := range p.engines {
			p.wg.Add(1)
			go p.worker(e)
		}
	})
}

func (p *Pool) worker(e *Engine) {
	defer p.wg.Done()
	for j := range p.jobQueue {
		text, err := e.Recognize(j.image)
		j.reply <- jobResult{text: text, err: err}
	}
}

// Size returns the number of engines
func (p *Pool) Size() int {
	return len(p.engines)
}

// States reports the lifecycle state of every engine
func (p *Pool) States() []State {
	states := make([]State, len(p.engines))
	for i, e := range p.engines {
		states[i] = e.State()
	}
	return states
}

// Status summarizes the pool for health checks
func (p *Pool) Status() string {
	ready, failed := 0, 0
	for _, s := range p.States() {
		switch s {
		case StateTerminated:
			return StateTerminated.String()
		case StateReady:
			ready++
		case StateError:
			failed++
		}
	}
	switch {
	case ready == len(p.engines):
		return StateReady.String()
	case ready > 0:
		return "degraded"
	case failed > 0:
		return StateError.String()
	default:
		return StateUninitialized.String()
	}
}

// EnsureReady initializes every engine
func (p *Pool) EnsureReady() error {
	var errs []error
	for _, e := range p.engines {
		if err := e.EnsureReady(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recognize hands the image to the next free engine and waits for its result.
func (p *Pool) Recognize(image []byte) (models.RecognizedText, error) {
	reply := make(chan jobResult, 1)

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return models.RecognizedText{}, apperrors.NewTerminatedError("recognizer pool used after shutdown", ErrTerminated)
	}
	p.jobQueue <- job{image: image, reply: reply}
	p.mu.RUnlock()

	r := <-reply
	return r.text, r.err
}

// Shutdown waits for queued work, then terminates every engine. It succeeds once.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return apperrors.NewTerminatedError("recognizer pool already shut down", ErrTerminated)
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()

	var errs []error
	for _, e := range p.engines {
		if err := e.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
