package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fencerow/fencerow/internal/middleware"
	"github.com/fencerow/fencerow/internal/models"
	"github.com/fencerow/fencerow/internal/services"
	"github.com/gin-gonic/gin"
)

type AccessHandler struct {
	accessService *services.AccessService
}

func NewAccessHandler(accessService *services.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

type RequestAccessRequest struct {
	OwnerFieldID  uint  `json:"owner_field_id" binding:"required"`
	ViewerFieldID *uint `json:"viewer_field_id"`
}

type DecideRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve deny"`
}

type GrantResponse struct {
	ID            uint   `json:"id"`
	OwnerFieldID  uint   `json:"owner_field_id"`
	OwnerField    string `json:"owner_field,omitempty"`
	ViewerUser    string `json:"viewer,omitempty"`
	ViewerFieldID *uint  `json:"viewer_field_id,omitempty"`
	Status        string `json:"status"`
	RequestedAt   string `json:"requested_at"`
	DecidedAt     string `json:"decided_at,omitempty"`
}

type GrantListResponse struct {
	Incoming []GrantResponse `json:"incoming"`
	Outgoing []GrantResponse `json:"outgoing"`
}

// RequestAccess godoc
// @Summary Request field access
// @Description File an access request for a field; repeating an active request returns the existing grant
// @Tags access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RequestAccessRequest true "Access request"
// @Success 200 {object} GrantResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /access/requests [post]
func (h *AccessHandler) RequestAccess(c *gin.Context) {
	username := middleware.GetUsername(c)

	var req RequestAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	grant, err := h.accessService.RequestAccess(username, req.OwnerFieldID, req.ViewerFieldID)
	if err != nil {
		respondAccessError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapGrantToResponse(grant))
}

// ListRequests godoc
// @Summary List access requests
// @Description Incoming requests on your fields and your outgoing requests
// @Tags access
// @Produce json
// @Security BearerAuth
// @Success 200 {object} GrantListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /access/requests [get]
func (h *AccessHandler) ListRequests(c *gin.Context) {
	username := middleware.GetUsername(c)

	incoming, err := h.accessService.ListIncoming(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list requests"})
		return
	}
	outgoing, err := h.accessService.ListOutgoing(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list requests"})
		return
	}

	response := GrantListResponse{
		Incoming: make([]GrantResponse, len(incoming)),
		Outgoing: make([]GrantResponse, len(outgoing)),
	}
	for i := range incoming {
		response.Incoming[i] = mapGrantToResponse(&incoming[i])
	}
	for i := range outgoing {
		response.Outgoing[i] = mapGrantToResponse(&outgoing[i])
	}
	c.JSON(http.StatusOK, response)
}

// Decide godoc
// @Summary Decide an access request
// @Description Approve or deny a pending request on a field you own
// @Tags access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grant ID"
// @Param request body DecideRequest true "Decision: approve or deny"
// @Success 200 {object} GrantResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /access/requests/{id}/decision [post]
func (h *AccessHandler) Decide(c *gin.Context) {
	username := middleware.GetUsername(c)

	id, ok := bindID(c)
	if !ok {
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	grant, err := h.accessService.Decide(username, id, req.Decision == "approve")
	if err != nil {
		respondAccessError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapGrantToResponse(grant))
}

// Revoke godoc
// @Summary Revoke an approved grant
// @Description Either party may revoke an approved grant
// @Tags access
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grant ID"
// @Success 200 {object} GrantResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /access/requests/{id}/revoke [post]
func (h *AccessHandler) Revoke(c *gin.Context) {
	username := middleware.GetUsername(c)

	id, ok := bindID(c)
	if !ok {
		return
	}

	grant, err := h.accessService.Revoke(username, id)
	if err != nil {
		respondAccessError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapGrantToResponse(grant))
}

func mapGrantToResponse(grant *models.AccessGrant) GrantResponse {
	resp := GrantResponse{
		ID:            grant.ID,
		OwnerFieldID:  grant.OwnerFieldID,
		OwnerField:    grant.OwnerField.Name,
		ViewerUser:    grant.ViewerUser.Username,
		ViewerFieldID: grant.ViewerFieldID,
		Status:        string(grant.Status),
		RequestedAt:   grant.CreatedAt.Format(time.RFC3339),
	}
	if grant.DecidedAt != nil {
		resp.DecidedAt = grant.DecidedAt.Format(time.RFC3339)
	}
	return resp
}

func respondAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFieldNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "field not found"})
	case errors.Is(err, services.ErrGrantNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "access request not found"})
	case errors.Is(err, services.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot request access to your own field"})
	case errors.Is(err, services.ErrNotFieldOwner), errors.Is(err, services.ErrNotGrantParty):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not allowed"})
	case errors.Is(err, services.ErrInvalidGrantState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "request is not in a state that allows this"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
