package handler

import (
	"net/http"

	"casting_ops_backend/internal/casting/service"
	"casting_ops_backend/internal/casting/transport"
	"casting_ops_backend/platform/httpkit"
	"casting_ops_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Handler handles HTTP requests for orders, bookings and the cast roster
type Handler struct {
	svc       *service.Service
	val       *validator.Validator
	adminRole string
}

// New creates a new casting handler
func New(svc *service.Service, val *validator.Validator, adminRole string) *Handler {
	return &Handler{svc: svc, val: val, adminRole: adminRole}
}

// RegisterRoutes registers the authenticated casting routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders", h.CreateOrder)

	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.PATCH("/bookings/:id", h.EditBooking)
	rg.POST("/bookings/:id/status", h.UpdateStatus)
	rg.GET("/bookings/:id/transitions", h.Transitions)
	rg.GET("/bookings/:id/activity", h.Activity)
	rg.POST("/bookings/:id/inquiry-email", h.SendInquiryEmail)

	rg.GET("/casts", h.ListCasts)
	rg.GET("/casts/:id", h.GetCast)
	rg.GET("/casts/:id/availability", h.CastAvailability)
}

// RegisterAdminRoutes registers the admin-only casting routes
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup, protected *gin.RouterGroup) {
	admin.PUT("/casts", h.UpsertCast)
	protected.DELETE("/bookings/:id", httpkit.RequireRole(h.adminRole), h.DeleteBooking)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
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

func (h *Handler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

// CreateOrder handles POST /api/v1/orders
func (h *Handler) CreateOrder(c *gin.Context) {
	var req transport.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.CreateOrder(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

// ListBookings handles GET /api/v1/bookings
func (h *Handler) ListBookings(c *gin.Context) {
	var req transport.ListBookingsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.svc.ListBookings(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": resp})
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetBooking(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// UpdateStatus handles POST /api/v1/bookings/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.UpdateStatus(c.Request.Context(), identity.UserID(), identity.HasRole(h.adminRole), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// EditBooking handles PATCH /api/v1/bookings/:id
func (h *Handler) EditBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.EditBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.EditBookingFields(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteBooking(c.Request.Context(), identity.UserID(), id)) {
		return
	}
	httpkit.OK(c, transport.OKResponse{OK: true})
}

// Transitions handles GET /api/v1/bookings/:id/transitions
func (h *Handler) Transitions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.AllowedTransitions(c.Request.Context(), identity.HasRole(h.adminRole), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Activity handles GET /api/v1/bookings/:id/activity
func (h *Handler) Activity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	items, err := h.svc.Activity(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

// SendInquiryEmail handles POST /api/v1/bookings/:id/inquiry-email
func (h *Handler) SendInquiryEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.SendInquiryEmail(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, transport.OKResponse{OK: true})
}

// ListCasts handles GET /api/v1/casts
func (h *Handler) ListCasts(c *gin.Context) {
	var req transport.ListCastsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.svc.ListCasts(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": resp})
}

// GetCast handles GET /api/v1/casts/:id
func (h *Handler) GetCast(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetCast(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// CastAvailability handles GET /api/v1/casts/:id/availability
func (h *Handler) CastAvailability(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.AvailabilityRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.svc.CastAvailability(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// UpsertCast handles PUT /api/v1/admin/casts
func (h *Handler) UpsertCast(c *gin.Context) {
	var req transport.UpsertCastRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.UpsertCast(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
