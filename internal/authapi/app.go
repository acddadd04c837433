package authapi

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"tenantgate/internal/auth"
	"tenantgate/pkg/config"
	"tenantgate/pkg/middleware"
	"tenantgate/pkg/problems"
)

// Authenticator exchanges client credentials for a token.
type Authenticator interface {
	Authenticate(ctx context.Context, clientID, secret string) (auth.Result, error)
}

// App is the auth-service application container. Handlers and middleware
// have methods on this type; request-scoped work uses the request context.
type App struct {
	cfg      config.Config
	log      *zap.SugaredLogger
	auth     Authenticator
	guard    *middleware.Guard
	render   *problems.Renderer
	validate *validator.Validate
	started  time.Time
}

// New wires the application. v verifies bearer tokens on protected routes.
func New(cfg config.Config, log *zap.SugaredLogger, authn Authenticator, v middleware.Verifier) *App {
	render := &problems.Renderer{Base: cfg.ProblemBaseURL, Dev: cfg.IsDevelopment(), Log: log}
	return &App{
		cfg:      cfg,
		log:      log,
		auth:     authn,
		guard:    middleware.NewGuard(v, render),
		render:   render,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		started:  time.Now(),
	}
}
