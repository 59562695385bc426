package controller

import (
	"net/http"

	"ctchen222/minimax-tictactoe/internal/api/models"
	"ctchen222/minimax-tictactoe/internal/api/response"
	"ctchen222/minimax-tictactoe/internal/api/service"

	"github.com/gin-gonic/gin"
)

// PreferenceController handles player preference requests.
type PreferenceController struct {
	prefService service.PreferenceService
}

// NewPreferenceController creates a new PreferenceController.
func NewPreferenceController(prefService service.PreferenceService) *PreferenceController {
	return &PreferenceController{prefService: prefService}
}

// Get handles GET /api/preferences/:playerId.
func (pc *PreferenceController) Get(c *gin.Context) {
	pref, err := pc.prefService.Get(c.Request.Context(), c.Param("playerId"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}

	response.SuccessResponse(c, pref)
}

// Update handles PUT /api/preferences/:playerId.
func (pc *PreferenceController) Update(c *gin.Context) {
	var req models.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	pref, err := pc.prefService.Update(c.Request.Context(), c.Param("playerId"), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}

	response.SuccessResponse(c, pref)
}
