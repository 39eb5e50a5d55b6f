package handlers

import (
	"net/http"
	"time"

	"github.com/fencerow/fencerow/internal/repository"
	"github.com/fencerow/fencerow/internal/services"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userRepo         *repository.UserRepository
	fieldRepo        *repository.FieldRepository
	proximityService *services.ProximityService
}

func NewAdminHandler(userRepo *repository.UserRepository, fieldRepo *repository.FieldRepository, proximityService *services.ProximityService) *AdminHandler {
	return &AdminHandler{
		userRepo:         userRepo,
		fieldRepo:        fieldRepo,
		proximityService: proximityService,
	}
}

type UserListResponse struct {
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type AdminFieldResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	Crop      string `json:"crop"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type RecomputeResponse struct {
	Recomputed int    `json:"recomputed"`
	Failed     []uint `json:"failed,omitempty"`
}

// ListUsers godoc
// @Summary List all users (Admin)
// @Description Get a list of all registered users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list users"})
		return
	}

	response := make([]UserListResponse, len(users))
	for i, user := range users {
		response[i] = UserListResponse{
			Username:  user.Username,
			CreatedAt: user.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, response)
}

// ListAllFields godoc
// @Summary List all fields (Admin)
// @Description Get every registered field across all users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AdminFieldResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/fields [get]
func (h *AdminHandler) ListAllFields(c *gin.Context) {
	fields, err := h.fieldRepo.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list fields"})
		return
	}

	response := make([]AdminFieldResponse, len(fields))
	for i, field := range fields {
		response[i] = AdminFieldResponse{
			ID:        field.ID,
			Name:      field.Name,
			Owner:     field.Owner.Username,
			Crop:      field.Crop,
			Status:    string(field.Status),
			CreatedAt: field.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, response)
}

// RecomputeAll godoc
// @Summary Recompute adjacency for every field (Admin)
// @Description Re-run adjacency computation per field; idempotent, safe to repeat
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RecomputeResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/recompute [post]
func (h *AdminHandler) RecomputeAll(c *gin.Context) {
	fields, err := h.fieldRepo.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list fields"})
		return
	}

	response := RecomputeResponse{}
	for _, field := range fields {
		if err := h.proximityService.RecomputeAdjacency(field.ID); err != nil {
			response.Failed = append(response.Failed, field.ID)
			continue
		}
		response.Recomputed++
	}

	c.JSON(http.StatusOK, response)
}
