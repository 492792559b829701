package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every JSON reply.
type APIResponse[T any] struct {
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	RequestID  string `json:"requestId,omitempty"`
	Errors     any    `json:"errors,omitempty"`
}

// Success writes a successful envelope and returns it.
func Success[T any](c *gin.Context, status int, data T, message string) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
		RequestID:  c.GetString("request_id"),
	}
	c.JSON(status, resp)
	return resp
}

// Error writes a failure envelope. details is optional, for field errors.
func Error(c *gin.Context, status int, message string, details any) APIResponse[any] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[any]{
		StatusCode: status,
		Message:    message,
		Success:    false,
		RequestID:  c.GetString("request_id"),
		Errors:     details,
	}
	c.JSON(status, resp)
	return resp
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	Error(c, status, message, nil)
	c.Abort()
}
