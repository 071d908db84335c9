// Package reconcile provides the reconciliation module: shoot-detail and
// drive-link sources plus the jobs that copy them onto contact records.
package reconcile

import (
	apphttp "casting_ops_backend/internal/http"
	"casting_ops_backend/internal/reconcile/handler"
	"casting_ops_backend/internal/reconcile/repository"
	"casting_ops_backend/internal/reconcile/service"
	"casting_ops_backend/platform/logger"
	"casting_ops_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the reconcile domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new reconcile module
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{
		handler: handler.New(svc, val),
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "reconcile"
}

// RegisterRoutes registers the module's routes under /api/v1
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	var limit []gin.HandlerFunc
	if ctx.JobTriggerLimiter != nil {
		limit = append(limit, ctx.JobTriggerLimiter.RateLimit())
	}
	m.handler.RegisterRoutes(ctx.Protected, limit...)
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
