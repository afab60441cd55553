package middleware

import (
	"net/http"
	"strings"
	"time"

	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"
	"order-webhook-service/pkg/apperror"
	"order-webhook-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"

	// Context keys
	CtxAdminSession = "admin_session"
	CtxAdminToken   = "admin_token"

	// CtxAuditSessionID carries a session created by the handler itself
	// (login) to the audit middleware.
	CtxAuditSessionID = "audit_session_id"
)

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// AdminAuth requires a Bearer token backed by a live admin session.
func AdminAuth(authSvc ports.AdminAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(HeaderAuthorization))
		if !ok {
			response.Abort(c, apperror.ErrInvalidToken())
			return
		}

		session, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(CtxAdminSession, session)
		c.Set(CtxAdminToken, token)
		c.Next()
	}
}

// AdminSession returns the session set by AdminAuth, if any.
func AdminSession(c *gin.Context) (*domain.AdminSession, bool) {
	v, exists := c.Get(CtxAdminSession)
	if !exists {
		return nil, false
	}
	s, ok := v.(*domain.AdminSession)
	return s, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("request_id", c.GetString(response.RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("request_id", c.GetString(response.RequestIDKey)).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				response.Abort(c, apperror.InternalError(nil))
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
