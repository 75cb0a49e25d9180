package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform JSON shape for every API response: a success flag
// plus a human-readable message, with optional data/meta/error details.
type Envelope struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

// Success writes a success envelope.
func Success(c *gin.Context, status int, data any, message string, meta any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	})
}

// Error writes an error envelope. Details should be safe to show to callers;
// internal failures must be mapped to a stable message before reaching here.
func Error(c *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, envelopeError(c, status, message, details))
}

// Abort writes an error envelope and stops the handler chain. Used by
// middleware.
func Abort(c *gin.Context, status int, message string, details any) {
	c.AbortWithStatusJSON(status, envelopeError(c, status, message, details))
}

func envelopeError(c *gin.Context, status int, message string, details any) Envelope {
	return Envelope{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     details,
	}
}
