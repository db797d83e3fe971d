// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates auth setup and route
// registration.
package auth

import (
	"github.com/Awarix/Farc-mini-app-auth/internal/auth/handler"
	"github.com/Awarix/Farc-mini-app-auth/internal/auth/quickauth"
	"github.com/Awarix/Farc-mini-app-auth/internal/auth/service"
	"github.com/Awarix/Farc-mini-app-auth/internal/farcaster"
	apphttp "github.com/Awarix/Farc-mini-app-auth/internal/http"
	"github.com/Awarix/Farc-mini-app-auth/internal/users/repository"
	"github.com/Awarix/Farc-mini-app-auth/platform/config"
	"github.com/Awarix/Farc-mini-app-auth/platform/logger"
	"github.com/Awarix/Farc-mini-app-auth/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
// The profile resolver is injected by the composition root so the optional
// cache layer stays out of this module's concern.
func NewModule(pool *pgxpool.Pool, profiles farcaster.ProfileResolver, cfg *config.Config, log *logger.Logger, val *validator.Validator) *Module {
	verifier := quickauth.NewVerifier(cfg, log)
	repo := repository.New(pool)
	svc := service.New(verifier, profiles, repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.API.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
