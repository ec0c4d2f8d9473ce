// Package audit carries finished auth attempts over the bus and turns them
// into structured logs and Prometheus metrics.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/nfrund/portcullis/internal/authform"
	"github.com/nfrund/portcullis/internal/domain"
	"github.com/nfrund/portcullis/internal/middleware"
	"github.com/nfrund/portcullis/internal/pubsub"
)

// AttemptFinished is published once per provider call.
var AttemptFinished = pubsub.NewEvent[AttemptEvent]("auth.attempt.finished", "an identity provider call completed")

// AttemptEvent is the wire form of authform.Attempt.
type AttemptEvent struct {
	Flow       string    `json:"flow"`
	Provider   string    `json:"provider,omitempty"`
	Success    bool      `json:"success"`
	UserID     string    `json:"user_id,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

func newAttemptEvent(a authform.Attempt, at time.Time) AttemptEvent {
	ev := AttemptEvent{
		Flow:       string(a.Flow),
		Provider:   string(a.Provider),
		Success:    a.Success,
		UserID:     a.UserID,
		DurationMS: a.Duration.Milliseconds(),
		At:         at.UTC(),
	}
	if !a.Success {
		ev.ErrorKind = a.ErrorKind.String()
	}
	return ev
}

// Result is the metric label for the outcome.
func (e AttemptEvent) Result() string {
	if e.Success {
		return "success"
	}
	return "failure"
}

// Publisher implements authform.AttemptRecorder by publishing AttemptFinished.
type Publisher struct {
	pub pubsub.Publisher
	now func() time.Time
}

// NewPublisher creates a Publisher writing to pub.
func NewPublisher(pub pubsub.Publisher) *Publisher {
	return &Publisher{pub: pub, now: time.Now}
}

// RecordAttempt publishes a. Publishing failures are logged and dropped so
// they never change the outcome the visitor sees.
func (p *Publisher) RecordAttempt(ctx context.Context, a authform.Attempt) {
	var metadata map[string]string
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		metadata = map[string]string{"request_id": id}
	}
	if err := pubsub.PublishFor(ctx, p.pub, AttemptFinished, a.UserID, newAttemptEvent(a, p.now()), metadata); err != nil {
		slog.WarnContext(ctx, "Failed to publish auth attempt", "flow", a.Flow, "error", err)
	}
}

var _ authform.AttemptRecorder = (*Publisher)(nil)

// kindOf maps a wire error kind back for logging; unknown strings stay as is.
func kindOf(s string) string {
	if s == "" {
		return domain.ErrorUnknown.String()
	}
	return s
}
