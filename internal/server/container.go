package server

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/nfrund/portcullis/internal/audit"
	"github.com/nfrund/portcullis/internal/config"
	"github.com/nfrund/portcullis/internal/federated"
	"github.com/nfrund/portcullis/internal/handlers"
	"github.com/nfrund/portcullis/internal/identity"
	"github.com/nfrund/portcullis/internal/pubsub"
	"github.com/nfrund/portcullis/internal/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"
)

// tracing is the tracer setup together with its flush function.
type tracing struct {
	cfg     pubsub.TracingConfig
	cleanup func()
}

// Shutdown flushes pending spans when the container shuts down.
func (t *tracing) Shutdown() {
	t.cleanup()
}

// newContainer registers every service the HTTP layer needs. Services are
// built lazily on first Invoke.
func newContainer(ctx context.Context, cfg *config.Config, version string) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	do.Provide(injector, func(i do.Injector) (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg, nil
	})

	do.Provide(injector, func(i do.Injector) (*tracing, error) {
		tc := pubsub.TracingConfig{
			Enabled:        cfg.Tracing.Enabled,
			ServiceName:    cfg.Tracing.ServiceName,
			ServiceVersion: version,
			ZipkinURL:      cfg.Tracing.ZipkinURL,
		}
		return &tracing{cfg: tc, cleanup: func() {}}, nil
	})

	do.Provide(injector, func(i do.Injector) (*pubsub.WatermillBridge, error) {
		t := do.MustInvoke[*tracing](i)
		tracer, cleanup, err := pubsub.SetupOTel(ctx, t.cfg)
		if err != nil {
			return nil, fmt.Errorf("setup tracing: %w", err)
		}
		t.cleanup = cleanup
		return pubsub.NewWatermillBridge(
			pubsub.WithTracer(tracer),
			pubsub.WithLogger(watermill.NewStdLogger(false, false)),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*audit.Metrics, error) {
		return audit.NewMetrics(do.MustInvoke[*prometheus.Registry](i))
	})

	do.Provide(injector, func(i do.Injector) (*audit.Publisher, error) {
		return audit.NewPublisher(do.MustInvoke[*pubsub.WatermillBridge](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*audit.Subscriber, error) {
		return audit.NewSubscriber(
			do.MustInvoke[*pubsub.WatermillBridge](i),
			do.MustInvoke[*audit.Metrics](i),
			nil,
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*federated.Broker, error) {
		return federated.NewBroker(ctx, cfg), nil
	})

	do.Provide(injector, func(i do.Injector) (*identity.Provider, error) {
		return identity.New(ctx, cfg, do.MustInvoke[*federated.Broker](i))
	})

	do.Provide(injector, func(i do.Injector) (*view.Toaster, error) {
		return view.NewToaster(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.AppHandler, error) {
		return handlers.NewAppHandler(do.MustInvoke[*view.Toaster](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.AuthHandler, error) {
		provider, err := do.Invoke[*identity.Provider](i)
		if err != nil {
			return nil, err
		}
		return handlers.NewAuthHandler(
			provider,
			do.MustInvoke[*federated.Broker](i),
			do.MustInvoke[*view.Toaster](i),
			do.MustInvoke[*audit.Publisher](i),
		), nil
	})

	return injector
}
