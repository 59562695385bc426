package controller

import (
	"errors"
	"net/http"

	"ctchen222/minimax-tictactoe/internal/api/models"
	"ctchen222/minimax-tictactoe/internal/api/response"
	"ctchen222/minimax-tictactoe/internal/api/service"
	"ctchen222/minimax-tictactoe/internal/game"

	"github.com/gin-gonic/gin"
)

// GameController exposes board evaluation and move selection over HTTP.
type GameController struct {
	gameService service.GameService
}

// NewGameController creates a new GameController.
func NewGameController(gameService service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// Evaluate handles POST /api/evaluate.
func (gc *GameController) Evaluate(c *gin.Context) {
	var req models.BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := gc.gameService.Evaluate(c.Request.Context(), req.Board)
	if err != nil {
		response.AbortWithError(c, gameError(err))
		return
	}

	response.SuccessResponse(c, res)
}

// Move handles POST /api/move.
func (gc *GameController) Move(c *gin.Context) {
	var req models.BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := gc.gameService.SuggestMove(c.Request.Context(), req.Board)
	if err != nil {
		response.AbortWithError(c, gameError(err))
		return
	}

	response.SuccessResponse(c, res)
}

func gameError(err error) error {
	switch {
	case errors.Is(err, game.ErrMalformedBoard):
		return response.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrInvalidState):
		return response.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return err
	}
}
