package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an API error carrying the HTTP status it maps to.
type Error struct {
	Code    int
	Message string
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, message string) Error {
	return Error{
		Code:    code,
		Message: message,
	}
}

// AbortWithError writes err in the error envelope and stops the handler chain.
// Errors that are not an Error are reported as 500.
func AbortWithError(c *gin.Context, err error) {
	var apiErr Error
	if !errors.As(err, &apiErr) {
		apiErr = NewError(http.StatusInternalServerError, err.Error())
	}
	_ = c.Error(err)
	ErrorResponse(c, apiErr.Code, apiErr.Message)
	c.Abort()
}
