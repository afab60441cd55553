package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"
	"order-webhook-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware for the admin surface. It runs
// after the handler and maps the matched route to an audit action.
// Failed logins are recorded too; other actions only on 2xx.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method, status)
		if action == "" {
			return
		}

		var sessionID *string
		if s, ok := AdminSession(c); ok {
			id := s.ID
			sessionID = &id
		} else if id := c.GetString(CtxAuditSessionID); id != "" {
			sessionID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": c.GetString(response.RequestIDKey),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			SessionID:    sessionID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(route, method string, status int) (domain.AuditAction, string) {
	ok := status >= 200 && status < 300

	switch {
	case route == "/api/v1/admin/login" && method == http.MethodPost:
		if ok {
			return domain.AuditActionLogin, "session"
		}
		if status == http.StatusUnauthorized {
			return domain.AuditActionLoginFailed, "session"
		}
	case !ok:
		return "", ""
	case route == "/api/v1/admin/logout" && method == http.MethodPost:
		return domain.AuditActionLogout, "session"
	case route == "/api/v1/admin/orders/:id" && method == http.MethodGet:
		return domain.AuditActionViewOrder, "order"
	case route == "/api/v1/admin/orders/:id/preview" && method == http.MethodGet:
		return domain.AuditActionPreviewConfirmation, "order"
	case route == "/api/v1/admin/orders/:id/resend-confirmation" && method == http.MethodPost:
		return domain.AuditActionResendConfirmation, "order"
	}
	return "", ""
}
