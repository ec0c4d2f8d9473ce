package audit

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/portcullis/internal/authform"
	"github.com/nfrund/portcullis/internal/domain"
	"github.com/nfrund/portcullis/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	msgs []pubsub.Message
}

func (c *capturePublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

// lockedBuffer is written by the subscriber goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewAttemptEvent(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	ok := newAttemptEvent(authform.Attempt{Flow: authform.FlowSignIn, Success: true, Duration: 250 * time.Millisecond}, at)
	assert.Equal(t, AttemptEvent{Flow: "sign-in", Success: true, DurationMS: 250, At: at}, ok)
	assert.Equal(t, "success", ok.Result())

	failed := newAttemptEvent(authform.Attempt{
		Flow:      authform.FlowFederated,
		Provider:  domain.ProviderGitHub,
		ErrorKind: domain.ErrorFederated,
	}, at)
	assert.Equal(t, "github", failed.Provider)
	assert.Equal(t, "federated", failed.ErrorKind)
	assert.Equal(t, "failure", failed.Result())
}

func TestPublisher(t *testing.T) {
	capture := &capturePublisher{}
	p := NewPublisher(capture)

	p.RecordAttempt(context.Background(), authform.Attempt{Flow: authform.FlowSignUp, Success: true})

	require.Len(t, capture.msgs, 1)
	assert.Equal(t, AttemptFinished.Name(), capture.msgs[0].Topic)
	assert.Contains(t, string(capture.msgs[0].Payload), `"flow":"sign-up"`)
	assert.Empty(t, capture.msgs[0].UserID)
}

func TestPublisherCarriesUserID(t *testing.T) {
	capture := &capturePublisher{}
	p := NewPublisher(capture)

	p.RecordAttempt(context.Background(), authform.Attempt{Flow: authform.FlowSignIn, Success: true, UserID: "uid-7"})
	p.RecordAttempt(context.Background(), authform.Attempt{Flow: authform.FlowSignIn, ErrorKind: domain.ErrorInvalidCredential})

	require.Len(t, capture.msgs, 2)
	assert.Equal(t, "uid-7", capture.msgs[0].UserID)
	assert.Contains(t, string(capture.msgs[0].Payload), `"user_id":"uid-7"`)
	assert.Empty(t, capture.msgs[1].UserID)
	assert.NotContains(t, string(capture.msgs[1].Payload), "user_id")
}

func TestSubscriberRecordsMetricsAndLogs(t *testing.T) {
	var buf lockedBuffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	bridge := pubsub.NewWatermillBridge()
	t.Cleanup(func() { _ = bridge.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, NewSubscriber(bridge, metrics, logger).Start(ctx))

	p := NewPublisher(bridge)
	p.RecordAttempt(ctx, authform.Attempt{Flow: authform.FlowSignIn, Success: true, UserID: "uid-7", Duration: time.Second})
	p.RecordAttempt(ctx, authform.Attempt{Flow: authform.FlowSignIn, ErrorKind: domain.ErrorInvalidCredential})

	require.Eventually(t, func() bool {
		return testutil.CollectAndCount(metrics.duration) == 1 &&
			testutil.ToFloat64(metrics.attempts.WithLabelValues("sign-in", "", "failure", "invalid_credential")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.attempts.WithLabelValues("sign-in", "", "success", "")))
	require.Eventually(t, func() bool { return strings.Count(buf.String(), "Auth attempt") == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, buf.String(), "error_kind=invalid_credential")
	assert.Equal(t, 1, strings.Count(buf.String(), "user_id=uid-7"))
	assert.NotContains(t, buf.String(), "password")
}

func TestNewMetricsRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
