package server

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/portcullis/internal/handlers"
	"github.com/nfrund/portcullis/internal/middleware"
	"github.com/nfrund/portcullis/internal/ui"
	"github.com/nfrund/portcullis/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() error {
	appHandler, err := do.Invoke[*handlers.AppHandler](s.injector)
	if err != nil {
		return err
	}
	authHandler, err := do.Invoke[*handlers.AuthHandler](s.injector)
	if err != nil {
		return err
	}
	reg := do.MustInvoke[*prometheus.Registry](s.injector)
	rateLimiter := middleware.RateLimiter(s.Cfg.RateLimit)

	s.E.StaticFS("/static", echo.MustSubFS(web.FS, "static"))

	s.E.GET("/", appHandler.AppGet)
	s.E.POST(ui.ModePath, appHandler.ModePost)

	s.E.POST(ui.SubmitPath, authHandler.SubmitPost, rateLimiter)
	s.E.GET("/auth/federated/:provider", authHandler.FederatedBegin, rateLimiter)
	s.E.GET("/auth/federated/:provider/callback", authHandler.FederatedCallback)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	s.E.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	return nil
}
