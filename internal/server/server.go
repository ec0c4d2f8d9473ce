package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/portcullis/internal/audit"
	"github.com/nfrund/portcullis/internal/config"
	"github.com/nfrund/portcullis/internal/handlers"
	"github.com/nfrund/portcullis/internal/middleware"
	"github.com/nfrund/portcullis/internal/pubsub"
	"github.com/nfrund/portcullis/internal/rendering"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      *config.Config
	injector *do.RootScope
	cancel   context.CancelFunc
}

// New creates a new Server instance. The audit subscriber runs until
// Shutdown is called.
func New(ctx context.Context, cfg *config.Config, version string) (*Server, error) {
	ctx, cancel := context.WithCancel(ctx)
	injector := newContainer(ctx, cfg, version)

	s := &Server{
		E:        echo.New(),
		Cfg:      cfg,
		injector: injector,
		cancel:   cancel,
	}

	if err := s.setup(ctx); err != nil {
		cancel()
		injector.Shutdown()
		return nil, err
	}
	return s, nil
}

func (s *Server) setup(ctx context.Context) error {
	subscriber, err := do.Invoke[*audit.Subscriber](s.injector)
	if err != nil {
		return fmt.Errorf("build audit subscriber: %w", err)
	}
	if err := subscriber.Start(ctx); err != nil {
		return fmt.Errorf("start audit subscriber: %w", err)
	}

	reg := do.MustInvoke[*prometheus.Registry](s.injector)

	e := s.E
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Renderer = rendering.NewUniversalRenderer()

	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portcullis",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	store := sessions.NewCookieStore([]byte(s.Cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   strings.HasPrefix(s.Cfg.BaseURL, "https://"),
		// Lax keeps the cookie on the provider's redirect back to the callback.
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	return s.RegisterRoutes()
}

// Shutdown stops the audit subscriber and releases the container's services.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.E.Shutdown(ctx)
	s.cancel()
	if bridge, ierr := do.Invoke[*pubsub.WatermillBridge](s.injector); ierr == nil {
		_ = bridge.Close()
	}
	s.injector.Shutdown()
	return err
}
