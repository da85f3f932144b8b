package recognition

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/anime-shed/coa-verifier-go/internal/errors"
)

func TestPool_RecognizeAndShutdown(t *testing.T) {
	factory := &fakeFactory{}
	pool := NewPool(2, DefaultConfig(), factory.create)

	if pool.Size() != 2 {
		t.Fatalf("expected pool size 2, got %d", pool.Size())
	}
	if pool.Status() != "uninitialized" {
		t.Errorf("expected uninitialized status, got %s", pool.Status())
	}
	if err := pool.EnsureReady(); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if pool.Status() != "ready" {
		t.Errorf("expected ready status, got %s", pool.Status())
	}

	text, err := pool.Recognize([]byte("Brand: Chanel"))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if text.Text != "Brand: Chanel" {
		t.Errorf("unexpected text %q", text.Text)
	}

	if err := pool.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	for i, b := range factory.created {
		if atomic.LoadInt32(&b.closed) != 1 {
			t.Errorf("backend %d was not closed", i)
		}
	}
	for _, s := range pool.States() {
		if s != StateTerminated {
			t.Errorf("expected terminated engine, got %s", s)
		}
	}

	if _, err := pool.Recognize([]byte("x")); !errors.Is(err, ErrTerminated) {
		t.Errorf("expected ErrTerminated after shutdown, got %v", err)
	}
	if err := pool.Shutdown(); !errors.Is(err, ErrTerminated) {
		t.Errorf("expected second shutdown to fail, got %v", err)
	}
}

func TestPool_EachEngineServesOneCallAtATime(t *testing.T) {
	var total, totalMax int32
	var mu sync.Mutex
	var backends []*fakeBackend
	factory := &fakeFactory{next: func() *fakeBackend {
		b := &fakeBackend{delay: 2 * time.Millisecond, inFlight: new(int32), maxInFlight: new(int32)}
		mu.Lock()
		backends = append(backends, b)
		mu.Unlock()
		return b
	}}
	pool := NewPool(3, DefaultConfig(), factory.create)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := atomic.AddInt32(&total, 1)
			for {
				max := atomic.LoadInt32(&totalMax)
				if n <= max || atomic.CompareAndSwapInt32(&totalMax, max, n) {
					break
				}
			}
			if _, err := pool.Recognize([]byte("x")); err != nil {
				t.Errorf("Recognize() error = %v", err)
			}
			atomic.AddInt32(&total, -1)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(backends) > 3 {
		t.Errorf("expected at most 3 backends, got %d", len(backends))
	}
	for i, b := range backends {
		if got := atomic.LoadInt32(b.maxInFlight); got > 1 {
			t.Errorf("backend %d served %d concurrent calls", i, got)
		}
	}
}

func TestPool_EnsureReadyJoinsFailures(t *testing.T) {
	factory := &fakeFactory{failInit: 2}
	pool := NewPool(2, DefaultConfig(), factory.create)
	defer pool.Shutdown()

	if err := pool.EnsureReady(); err == nil {
		t.Fatal("expected initialization errors")
	}
	if err := pool.EnsureReady(); err != nil {
		t.Errorf("expected retry to succeed, got %v", err)
	}
}

func TestNewPool_ClampsSize(t *testing.T) {
	pool := NewPool(0, DefaultConfig(), (&fakeFactory{}).create)
	defer pool.Shutdown()
	if pool.Size() != 1 {
		t.Errorf("expected size 1, got %d", pool.Size())
	}
}

func TestPool_BackendPanicIsReturnedAsRecognitionError(t *testing.T) {
	first := true
	factory := &fakeFactory{next: func() *fakeBackend {
		if first {
			first = false
			return &fakeBackend{panicWith: "boom"}
		}
		return &fakeBackend{}
	}}
	pool := NewPool(1, DefaultConfig(), factory.create)
	defer pool.Shutdown()

	_, err := pool.Recognize([]byte("x"))
	if !apperrors.IsType(err, apperrors.ErrorTypeRecognition) {
		t.Fatalf("expected recognition error, got %v", err)
	}
	if s := pool.States()[0]; s != StateError {
		t.Errorf("expected error state after panic, got %s", s)
	}
	if atomic.LoadInt32(&factory.created[0].closed) != 1 {
		t.Error("expected panicking backend to be closed")
	}

	text, err := pool.Recognize([]byte("again"))
	if err != nil {
		t.Fatalf("expected a fresh backend on the next call, got %v", err)
	}
	if text.Text != "again" {
		t.Errorf("unexpected text %q", text.Text)
	}
}
