package handlers

import (
	"net/http"

	"github.com/fencerow/fencerow/internal/middleware"
	"github.com/fencerow/fencerow/internal/services"
	"github.com/gin-gonic/gin"
)

type NearbyHandler struct {
	fieldService *services.FieldService
}

func NewNearbyHandler(fieldService *services.FieldService) *NearbyHandler {
	return &NearbyHandler{fieldService: fieldService}
}

// GetNearbyFields godoc
// @Summary Nearby fields
// @Description Every field adjacent to any of your fields, filtered through your visibility on each
// @Tags nearby
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.FieldView
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /nearby [get]
func (h *NearbyHandler) GetNearbyFields(c *gin.Context) {
	username := middleware.GetUsername(c)

	views, err := h.fieldService.GetNearbyFields(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load nearby fields"})
		return
	}
	c.JSON(http.StatusOK, views)
}
