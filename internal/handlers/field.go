package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fencerow/fencerow/internal/middleware"
	"github.com/fencerow/fencerow/internal/services"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type OverlapErrorResponse struct {
	Error             string `json:"error"`
	OverlappingFields []uint `json:"overlapping_fields"`
}

type FieldHandler struct {
	fieldService *services.FieldService
}

func NewFieldHandler(fieldService *services.FieldService) *FieldHandler {
	return &FieldHandler{fieldService: fieldService}
}

type CreateFieldRequest struct {
	Name        string     `json:"name" binding:"required"`
	Boundary    string     `json:"boundary" binding:"required"`
	Crop        string     `json:"crop"`
	Variety     string     `json:"variety"`
	SprayType   string     `json:"spray_type"`
	Status      string     `json:"status"`
	Acres       float64    `json:"acres"`
	Season      string     `json:"season"`
	PlantedAt   *time.Time `json:"planted_at"`
	HarvestedAt *time.Time `json:"harvested_at"`
	Notes       string     `json:"notes"`
}

type UpdateFieldRequest struct {
	Name        *string    `json:"name"`
	Boundary    *string    `json:"boundary"`
	Crop        *string    `json:"crop"`
	Variety     *string    `json:"variety"`
	SprayType   *string    `json:"spray_type"`
	Status      *string    `json:"status"`
	Acres       *float64   `json:"acres"`
	Season      *string    `json:"season"`
	PlantedAt   *time.Time `json:"planted_at"`
	HarvestedAt *time.Time `json:"harvested_at"`
	Notes       *string    `json:"notes"`
}

type FieldHistoryResponse struct {
	ID          uint   `json:"id"`
	UpdateType  string `json:"update_type"`
	Description string `json:"description"`
	OldValue    string `json:"old_value,omitempty"`
	NewValue    string `json:"new_value,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// CreateField godoc
// @Summary Register a field
// @Description Register a field boundary; rejects malformed polygons and overlap with your own fields
// @Tags fields
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateFieldRequest true "Field registration request"
// @Success 201 {object} services.FieldView
// @Failure 400 {object} OverlapErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /fields [post]
func (h *FieldHandler) CreateField(c *gin.Context) {
	username := middleware.GetUsername(c)

	var req CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	field, overlap, err := h.fieldService.CreateField(username, services.FieldInput{
		Name:        req.Name,
		Boundary:    req.Boundary,
		Crop:        req.Crop,
		Variety:     req.Variety,
		SprayType:   req.SprayType,
		Status:      req.Status,
		Acres:       req.Acres,
		Season:      req.Season,
		PlantedAt:   req.PlantedAt,
		HarvestedAt: req.HarvestedAt,
		Notes:       req.Notes,
	})
	if err != nil {
		respondFieldError(c, err, overlap)
		return
	}

	view := services.ProjectField(field, services.VisibilityOwner)
	c.JSON(http.StatusCreated, view)
}

// ListFields godoc
// @Summary List your fields
// @Description List every field you own, full detail
// @Tags fields
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.FieldView
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /fields [get]
func (h *FieldHandler) ListFields(c *gin.Context) {
	username := middleware.GetUsername(c)

	views, err := h.fieldService.ListOwnFields(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list fields"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetField godoc
// @Summary Get one field
// @Description Get a field projected through your visibility level
// @Tags fields
// @Produce json
// @Security BearerAuth
// @Param id path int true "Field ID"
// @Success 200 {object} services.FieldView
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /fields/{id} [get]
func (h *FieldHandler) GetField(c *gin.Context) {
	username := middleware.GetUsername(c)

	id, ok := bindID(c)
	if !ok {
		return
	}

	view, err := h.fieldService.GetField(username, id)
	if err != nil {
		respondFieldError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateField godoc
// @Summary Update a field
// @Description Patch attributes and/or replace the boundary; boundary changes recompute adjacency
// @Tags fields
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Field ID"
// @Param request body UpdateFieldRequest true "Field patch"
// @Success 200 {object} services.FieldView
// @Failure 400 {object} OverlapErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /fields/{id} [put]
func (h *FieldHandler) UpdateField(c *gin.Context) {
	username := middleware.GetUsername(c)

	id, ok := bindID(c)
	if !ok {
		return
	}

	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	field, overlap, err := h.fieldService.UpdateField(username, id, services.FieldPatch{
		Name:        req.Name,
		Boundary:    req.Boundary,
		Crop:        req.Crop,
		Variety:     req.Variety,
		SprayType:   req.SprayType,
		Status:      req.Status,
		Acres:       req.Acres,
		Season:      req.Season,
		PlantedAt:   req.PlantedAt,
		HarvestedAt: req.HarvestedAt,
		Notes:       req.Notes,
	})
	if err != nil {
		respondFieldError(c, err, overlap)
		return
	}

	view := services.ProjectField(field, services.VisibilityOwner)
	c.JSON(http.StatusOK, view)
}

// DeleteField godoc
// @Summary Delete a field
// @Description Delete a field and every adjacency record and grant referencing it
// @Tags fields
// @Produce json
// @Security BearerAuth
// @Param id path int true "Field ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /fields/{id} [delete]
func (h *FieldHandler) DeleteField(c *gin.Context) {
	username := middleware.GetUsername(c)

	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.fieldService.DeleteField(username, id); err != nil {
		respondFieldError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "field deleted"})
}

// GetFieldHistory godoc
// @Summary Field audit trail
// @Description Get the append-only update log of your field
// @Tags fields
// @Produce json
// @Security BearerAuth
// @Param id path int true "Field ID"
// @Success 200 {array} FieldHistoryResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /fields/{id}/history [get]
func (h *FieldHandler) GetFieldHistory(c *gin.Context) {
	username := middleware.GetUsername(c)

	id, ok := bindID(c)
	if !ok {
		return
	}

	entries, err := h.fieldService.GetFieldHistory(username, id)
	if err != nil {
		respondFieldError(c, err, nil)
		return
	}

	response := make([]FieldHistoryResponse, len(entries))
	for i, entry := range entries {
		response[i] = FieldHistoryResponse{
			ID:          entry.ID,
			UpdateType:  string(entry.UpdateType),
			Description: entry.Description,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			Timestamp:   entry.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, response)
}

func bindID(c *gin.Context) (uint, bool) {
	var idParam struct {
		ID uint `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&idParam); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return idParam.ID, true
}

// respondFieldError maps service sentinels to HTTP statuses. Store
// errors surface as a generic 500 with no internal detail.
func respondFieldError(c *gin.Context, err error, overlap *services.OverlapResult) {
	switch {
	case errors.Is(err, services.ErrInvalidGeometry):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrFieldOverlap):
		resp := OverlapErrorResponse{Error: err.Error()}
		if overlap != nil {
			resp.OverlappingFields = overlap.OverlappingFields
		}
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, services.ErrFieldNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "field not found"})
	case errors.Is(err, services.ErrNotFieldOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "you do not own this field"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
