package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// VerificationEvent describes one step of a verification
type VerificationEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	IsAuthentic    bool                   `json:"is_authentic"`
	Overall        float64                `json:"overall"`
	Stage          string                 `json:"stage,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of verification event
type EventType string

const (
	VerificationStarted   EventType = "verification_started"
	VerificationCompleted EventType = "verification_completed"
	VerificationFailed    EventType = "verification_failed"
	// StageDegraded is emitted when a non-essential stage falls back to its default
	StageDegraded EventType = "stage_degraded"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event VerificationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event VerificationEvent)
}

// LoggingObserver logs verification events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles verification events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event VerificationEvent) {
	fields := logrus.Fields{
		"event_type":  event.EventType,
		"request_id":  event.RequestID,
		"duration_ms": event.ProcessingTime.Milliseconds(),
		"success":     event.Success,
	}
	if event.Stage != "" {
		fields["stage"] = event.Stage
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case VerificationStarted:
		entry.Debug("Verification started")
	case VerificationCompleted:
		entry.WithFields(logrus.Fields{
			"overall":      event.Overall,
			"is_authentic": event.IsAuthentic,
		}).Info("Verification completed")
	case VerificationFailed:
		entry.Error("Verification failed")
	case StageDegraded:
		entry.Warn("Verification stage degraded")
	default:
		entry.Info("Verification event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver aggregates verification counters
type MetricsObserver struct {
	mu                  sync.RWMutex
	started             int64
	completed           int64
	failed              int64
	authentic           int64
	degraded            map[string]int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{degraded: make(map[string]int64)}
}

// OnEvent handles verification events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event VerificationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case VerificationStarted:
		o.started++
	case VerificationCompleted:
		o.completed++
		o.totalProcessingTime += event.ProcessingTime
		if event.IsAuthentic {
			o.authentic++
		}
	case VerificationFailed:
		o.failed++
	case StageDegraded:
		o.degraded[event.Stage]++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	authenticRatio := 0.0
	if o.completed > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.completed)
		authenticRatio = float64(o.authentic) / float64(o.completed)
	}

	degraded := make(map[string]int64, len(o.degraded))
	for k, v := range o.degraded {
		degraded[k] = v
	}

	return map[string]interface{}{
		"verifications_started":   o.started,
		"verifications_completed": o.completed,
		"verifications_failed":    o.failed,
		"authentic_ratio":         authenticRatio,
		"avg_processing_ms":       avgProcessingTime.Milliseconds(),
		"degraded_stages":         degraded,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event without blocking the caller
func (p *EventPublisher) NotifyObservers(ctx context.Context, event VerificationEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
