package server

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/frontinsight/loginpage/internal/config"
	"github.com/frontinsight/loginpage/internal/form"
	"github.com/frontinsight/loginpage/internal/logger"
	"github.com/frontinsight/loginpage/internal/metrics"
	"github.com/frontinsight/loginpage/internal/services"
	"github.com/frontinsight/loginpage/internal/validation"
	"github.com/frontinsight/loginpage/internal/views"
)

type Server struct {
	Cfg     config.AppConfig
	Log     logger.Logger
	Auth    services.Authenticator
	Forms   *FormRegistry
	Metrics *metrics.Metrics
	Schema  *validation.Schema
	Views   *views.Renderer
}

// Deps are the collaborators of the server. Auth is required; a nil Log
// or Metrics gets a default.
type Deps struct {
	Auth    services.Authenticator
	Log     logger.Logger
	Metrics *metrics.Metrics
}

func New(e *echo.Echo, cfg config.AppConfig, deps Deps) (*Server, error) {
	if deps.Auth == nil {
		return nil, fmt.Errorf("server: authenticator is required")
	}
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Cfg:     cfg,
		Log:     deps.Log,
		Auth:    deps.Auth,
		Metrics: deps.Metrics,
		Schema:  validation.LoginSchema(),
		Views:   renderer,
	}
	formLog := deps.Log.With("component", "form")
	s.Forms = NewFormRegistry(cfg.FormCacheSize, cfg.FormTTL, func() *form.Form {
		return form.New(s.Auth,
			form.WithSchema(s.Schema),
			form.WithObserver(s.Metrics),
			form.WithLogger(formLog),
		)
	})

	e.Renderer = renderer

	// Security middleware
	e.Use(RequestLogger(deps.Log))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))

	// Health
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	// Login page
	e.GET("/", s.LoginPage, NoStore())
	e.POST("/login", s.Login, NoStore())

	// JSON API
	e.POST("/api/login/validate", s.ValidateLogin, NoStore())
	e.POST("/api/login", s.LoginJSON, NoStore())

	return s, nil
}

// Close disposes every live form, canceling submissions still in flight.
func (s *Server) Close() {
	s.Forms.Purge()
}
