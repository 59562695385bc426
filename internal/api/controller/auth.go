package controller

import (
	"errors"
	"net/http"
	"strings"

	"ctchen222/minimax-tictactoe/internal/api/response"
	"ctchen222/minimax-tictactoe/internal/api/service"

	"github.com/gin-gonic/gin"
)

// RequirePlayer only lets a request through when its bearer token may act as
// the :playerId of the route.
func RequirePlayer(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			token = ""
		}

		if err := users.AuthorizePlayer(token, c.Param("playerId")); err != nil {
			code := http.StatusUnauthorized
			if errors.Is(err, service.ErrPlayerMismatch) {
				code = http.StatusForbidden
			}
			response.AbortWithError(c, response.NewError(code, err.Error()))
			return
		}
		c.Next()
	}
}
