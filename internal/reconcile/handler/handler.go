package handler

import (
	"net/http"

	"casting_ops_backend/internal/reconcile/service"
	"casting_ops_backend/internal/reconcile/transport"
	"casting_ops_backend/platform/httpkit"
	"casting_ops_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for shoot details, drive links and the sync jobs
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new reconcile handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the authenticated routes. jobLimit guards the
// routes that start a sync run.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, jobLimit ...gin.HandlerFunc) {
	rg.POST("/shoot-details/lookup", h.LookupShootDetails)

	sync := rg.Group("/sync", jobLimit...)
	sync.POST("/drive-links", h.SyncDriveLinks)
	sync.POST("/shoot-details", h.SyncShootDetails)
}

// RegisterAdminRoutes registers the ingestion routes
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.PUT("/drive-links", h.UpsertDriveLinks)
	admin.PUT("/shoot-details", h.UpsertShootDetails)
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

// LookupShootDetails handles POST /api/v1/shoot-details/lookup
func (h *Handler) LookupShootDetails(c *gin.Context) {
	var req transport.LookupShootDetailsRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.LookupShootDetails(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// SyncDriveLinks handles POST /api/v1/sync/drive-links
func (h *Handler) SyncDriveLinks(c *gin.Context) {
	var req transport.SyncDriveLinksRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.SyncDriveLinks(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// SyncShootDetails handles POST /api/v1/sync/shoot-details
func (h *Handler) SyncShootDetails(c *gin.Context) {
	var req transport.SyncShootDetailsRequest
	if !h.bind(c, &req) {
		return
	}
	if req.PageKey == "" && req.ProjectName == "" {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "externalPageKey or projectName is required")
		return
	}
	resp, err := h.svc.SyncShootDetails(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// UpsertDriveLinks handles PUT /api/v1/admin/drive-links
func (h *Handler) UpsertDriveLinks(c *gin.Context) {
	var req transport.UpsertDriveLinksRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.UpsertDriveLinks(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// UpsertShootDetails handles PUT /api/v1/admin/shoot-details
func (h *Handler) UpsertShootDetails(c *gin.Context) {
	var req transport.UpsertShootDetailsRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.svc.UpsertShootDetails(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
