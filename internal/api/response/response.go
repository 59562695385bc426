package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API reply.
type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

// MessageBody is the extras of replies that carry only a message.
type MessageBody struct {
	Message string `json:"message"`
}

func NewResponse(success bool, code int, extras any) Response {
	return Response{Success: success, Code: code, Extras: extras}
}

// SuccessResponse writes extras with 200 OK.
func SuccessResponse(c *gin.Context, extras any) {
	c.JSON(http.StatusOK, NewResponse(true, http.StatusOK, extras))
}

// CreatedResponse writes extras with 201 Created.
func CreatedResponse(c *gin.Context, extras any) {
	c.JSON(http.StatusCreated, NewResponse(true, http.StatusCreated, extras))
}

// ErrorResponse writes message in the error envelope with the given status.
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, NewResponse(false, code, MessageBody{Message: message}))
}
