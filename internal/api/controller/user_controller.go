package controller

import (
	"errors"
	"net/http"

	"ctchen222/minimax-tictactoe/internal/api/models"
	"ctchen222/minimax-tictactoe/internal/api/response"
	"ctchen222/minimax-tictactoe/internal/api/service"

	"github.com/gin-gonic/gin"
)

// UserController handles user-related HTTP requests.
type UserController struct {
	userService service.UserService
}

// NewUserController creates a new UserController.
func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// Register handles the user registration endpoint.
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := uc.userService.Register(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			response.AbortWithError(c, response.NewError(http.StatusConflict, err.Error()))
			return
		}
		response.AbortWithError(c, err)
		return
	}

	response.CreatedResponse(c, response.MessageBody{Message: "user created"})
}

// Login handles the user login endpoint.
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := uc.userService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.AbortWithError(c, response.NewError(http.StatusUnauthorized, err.Error()))
			return
		}
		response.AbortWithError(c, err)
		return
	}

	response.SuccessResponse(c, res)
}

// GuestLogin handles guest login, returning a generated player ID.
func (uc *UserController) GuestLogin(c *gin.Context) {
	playerID, err := uc.userService.GuestLogin(c.Request.Context())
	if err != nil {
		response.AbortWithError(c, err)
		return
	}

	response.SuccessResponse(c, gin.H{"player_id": playerID})
}
