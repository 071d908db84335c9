// Package casting provides the casting domain module: orders, bookings,
// their lifecycle and the cast roster.
package casting

import (
	"casting_ops_backend/internal/casting/handler"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/casting/service"
	"casting_ops_backend/internal/events"
	apphttp "casting_ops_backend/internal/http"
	"casting_ops_backend/platform/logger"
	"casting_ops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the casting domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new casting module with all dependencies wired. The
// booking activity timeline subscribes to the event bus here.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, eventBus events.Bus, adminRole string, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	service.NewActivityRecorder(repo).Subscribe(eventBus)

	return &Module{
		handler: handler.New(svc, val, adminRole),
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "casting"
}

// RegisterRoutes registers the module's routes under /api/v1
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
	m.handler.RegisterAdminRoutes(ctx.Admin, ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
