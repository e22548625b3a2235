package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body shape of every API response, success or failure.
type Envelope struct {
	Success    bool          `json:"success"`
	StatusCode int           `json:"status_code"`
	Message    string        `json:"message"`
	Data       interface{}   `json:"data"`
	Errors     []ErrorDetail `json:"errors,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func Success(ctx *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, Envelope{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

func Error(ctx *gin.Context, status int, message string, details ...ErrorDetail) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, Envelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Errors:     details,
	})
}

// AbortError writes the failure envelope and stops the handler chain.
// Middleware uses this so downstream handlers never run on a rejected request.
func AbortError(ctx *gin.Context, status int, message string, details ...ErrorDetail) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, Envelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Errors:     details,
	})
}

func OK(ctx *gin.Context, message string, data interface{}) {
	Success(ctx, http.StatusOK, message, data)
}

func Created(ctx *gin.Context, message string, data interface{}) {
	Success(ctx, http.StatusCreated, message, data)
}
