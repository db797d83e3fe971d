// Package users provides the user bounded context module: persistence keyed
// by fid and the public bootstrap read endpoint.
package users

import (
	apphttp "github.com/Awarix/Farc-mini-app-auth/internal/http"
	"github.com/Awarix/Farc-mini-app-auth/internal/users/handler"
	"github.com/Awarix/Farc-mini-app-auth/internal/users/repository"
	"github.com/Awarix/Farc-mini-app-auth/internal/users/service"
	"github.com/Awarix/Farc-mini-app-auth/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the users bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	repository *repository.Repository
}

// NewModule creates and initializes the users module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc)

	return &Module{
		handler:    h,
		repository: repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "users"
}

// Repository exposes the user store for the auth module's upsert path.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes mounts user routes on the provided router context.
// The bootstrap read is deliberately public: the client calls it before it
// holds a verified token.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.API)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
