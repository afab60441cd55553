// Package response writes the service's HTTP replies. Webhook deliveries get
// a bare {"status": ...} acknowledgement the gateway understands; admin and
// error replies use the enveloped form carrying the request ID.
package response

import (
	"errors"
	"net/http"
	"time"

	"order-webhook-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// SuccessResponse is the admin API success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the error envelope shared by every route.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// AckResponse is the body returned to the gateway for a handled delivery.
type AckResponse struct {
	Status string `json:"status"`
}

// Ack acknowledges a webhook delivery with its outcome.
func Ack(c *gin.Context, status string) {
	c.JSON(http.StatusOK, AckResponse{Status: status})
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: RequestID(c),
		Timestamp: now(),
	})
}

// HTML sends a 200 response with a pre-rendered HTML document.
func HTML(c *gin.Context, body string) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

// Error writes err as an error envelope. Anything that is not an
// *apperror.AppError becomes an opaque 500.
func Error(c *gin.Context, err error) {
	status, body := errorBody(c, err)
	c.JSON(status, body)
}

// Abort writes err like Error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	status, body := errorBody(c, err)
	c.AbortWithStatusJSON(status, body)
}

func errorBody(c *gin.Context, err error) (int, ErrorResponse) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, ErrorResponse{
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			RequestID: RequestID(c),
			Timestamp: now(),
		}
	}
	return http.StatusInternalServerError, ErrorResponse{
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
		RequestID: RequestID(c),
		Timestamp: now(),
	}
}

// RequestID returns the ID set by the request ID middleware, or a fresh one
// when the handler runs without it.
func RequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return uuid.New().String()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
