// Package contacts provides the contact record module: fulfillment tracking
// for confirmed external casts.
package contacts

import (
	"casting_ops_backend/internal/contacts/handler"
	"casting_ops_backend/internal/contacts/repository"
	"casting_ops_backend/internal/contacts/service"
	apphttp "casting_ops_backend/internal/http"
	"casting_ops_backend/platform/logger"
	"casting_ops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the contacts domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new contacts module
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{
		handler: handler.New(svc, val),
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "contacts"
}

// RegisterRoutes registers the module's routes under /api/v1
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
