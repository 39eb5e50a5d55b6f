package handlers

import (
	"net/http"

	"github.com/fencerow/fencerow/internal/services"
	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	statsService *services.StatsService
}

func NewPublicHandler(statsService *services.StatsService) *PublicHandler {
	return &PublicHandler{statsService: statsService}
}

// GetStats godoc
// @Summary System stats
// @Description Field, user, and adjacency pair counts (cached)
// @Tags public
// @Produce json
// @Success 200 {object} services.Stats
// @Failure 500 {object} ErrorResponse
// @Router /stats [get]
func (h *PublicHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
