package handler

import (
	"errors"

	"order-webhook-service/internal/adapter/http/dto"
	"order-webhook-service/internal/adapter/http/middleware"
	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"
	"order-webhook-service/pkg/apperror"
	"order-webhook-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles the operator API.
type AdminHandler struct {
	authSvc     ports.AdminAuthService
	bundleSvc   ports.OrderBundleService
	notifierSvc ports.NotificationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	authSvc ports.AdminAuthService,
	bundleSvc ports.OrderBundleService,
	notifierSvc ports.NotificationService,
) *AdminHandler {
	return &AdminHandler{
		authSvc:     authSvc,
		bundleSvc:   bundleSvc,
		notifierSvc: notifierSvc,
	}
}

// Login handles POST /api/v1/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	token, session, err := h.authSvc.Login(c.Request.Context(), req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxAuditSessionID, session.ID)
	response.OK(c, dto.LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

// Logout handles POST /api/v1/admin/logout.
func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), c.GetString(middleware.CtxAdminToken)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"status": "logged_out"})
}

// GetOrder handles GET /api/v1/admin/orders/:id.
func (h *AdminHandler) GetOrder(c *gin.Context) {
	orderID, ok := bindOrderID(c)
	if !ok {
		return
	}

	bundle, err := h.bundleSvc.Fetch(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, mapLookupError(err))
		return
	}

	response.OK(c, dto.NewOrderBundleResponse(bundle))
}

// PreviewConfirmation handles GET /api/v1/admin/orders/:id/preview. It
// returns the confirmation e-mail as HTML without sending it.
func (h *AdminHandler) PreviewConfirmation(c *gin.Context) {
	orderID, ok := bindOrderID(c)
	if !ok {
		return
	}

	n, err := h.notifierSvc.Preview(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, mapLookupError(err))
		return
	}

	response.HTML(c, n.HTMLBody)
}

// ResendConfirmation handles POST /api/v1/admin/orders/:id/resend-confirmation.
func (h *AdminHandler) ResendConfirmation(c *gin.Context) {
	orderID, ok := bindOrderID(c)
	if !ok {
		return
	}

	if err := h.notifierSvc.SendOrderConfirmation(c.Request.Context(), orderID); err != nil {
		response.Error(c, mapLookupError(err))
		return
	}

	response.OK(c, dto.ResendResponse{OrderID: orderID, Status: "sent"})
}

func bindOrderID(c *gin.Context) (int64, bool) {
	var uri dto.OrderURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.Validation("order id must be a non-negative integer"))
		return 0, false
	}
	id, _ := dto.ParseOrderID(uri.ID)
	return id, true
}

// mapLookupError turns aggregation misses into 404s; everything else is a
// confirmation failure.
func mapLookupError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return apperror.ErrNotFound("order")
	case errors.Is(err, domain.ErrPurchaserNotFound):
		return apperror.ErrNotFound("purchaser")
	case errors.Is(err, domain.ErrAddressNotFound):
		return apperror.ErrNotFound("shipping address")
	case errors.Is(err, domain.ErrItemsNotFound):
		return apperror.ErrNotFound("order items")
	}
	return apperror.ErrConfirmationFailed(err)
}
