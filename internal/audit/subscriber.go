package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nfrund/portcullis/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors fed by the Subscriber.
type Metrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portcullis",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Identity provider calls by flow, federated provider and result.",
		}, []string{"flow", "provider", "result", "error_kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portcullis",
			Subsystem: "auth",
			Name:      "attempt_duration_seconds",
			Help:      "Time spent waiting on the identity provider.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"flow"}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register auth metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observe(ev AttemptEvent) {
	m.attempts.WithLabelValues(ev.Flow, ev.Provider, ev.Result(), ev.ErrorKind).Inc()
	m.duration.WithLabelValues(ev.Flow).Observe(time.Duration(ev.DurationMS * int64(time.Millisecond)).Seconds())
}

// Subscriber consumes AttemptFinished events.
type Subscriber struct {
	sub     pubsub.Subscriber
	metrics *Metrics
	logger  *slog.Logger
}

// NewSubscriber creates a Subscriber. logger may be nil to use slog's default.
func NewSubscriber(sub pubsub.Subscriber, metrics *Metrics, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{sub: sub, metrics: metrics, logger: logger.With("component", "audit")}
}

// Start subscribes; events are handled until ctx is canceled.
func (s *Subscriber) Start(ctx context.Context) error {
	return pubsub.Subscribe(ctx, s.sub, AttemptFinished, s.handle)
}

func (s *Subscriber) handle(ctx context.Context, ev AttemptEvent, msg pubsub.Message) error {
	attrs := []any{
		slog.String("flow", ev.Flow),
		slog.Bool("success", ev.Success),
		slog.Int64("duration_ms", ev.DurationMS),
	}
	if ev.Provider != "" {
		attrs = append(attrs, slog.String("provider", ev.Provider))
	}
	if msg.UserID != "" {
		attrs = append(attrs, slog.String("user_id", msg.UserID))
	}
	if id := msg.Metadata["request_id"]; id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	if ev.Success {
		s.logger.InfoContext(ctx, "Auth attempt", attrs...)
	} else {
		s.logger.WarnContext(ctx, "Auth attempt", append(attrs, slog.String("error_kind", kindOf(ev.ErrorKind)))...)
	}

	if s.metrics != nil {
		s.metrics.observe(ev)
	}
	return nil
}
