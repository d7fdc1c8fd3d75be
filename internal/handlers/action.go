package handlers

import (
	"errors"
	"net/http"

	"mailpilot-be/internal/repository"
	"mailpilot-be/internal/services"

	"github.com/gin-gonic/gin"
)

// ActionHandler is the review surface over proposed actions.
type ActionHandler struct {
	actions *services.ActionService
}

// NewActionHandler creates a new action handler
func NewActionHandler(actions *services.ActionService) *ActionHandler {
	return &ActionHandler{actions: actions}
}

// ApproveActionRequest is the payload for approving an action.
type ApproveActionRequest struct {
	ActionID string         `json:"action_id" binding:"required"`
	Result   map[string]any `json:"result"`
}

// RejectActionRequest is the payload for rejecting an action.
type RejectActionRequest struct {
	ActionID string         `json:"action_id" binding:"required"`
	Result   map[string]any `json:"result"`
}

// ModifyActionRequest is the payload for modifying an action before sending.
type ModifyActionRequest struct {
	ActionID                  string         `json:"action_id" binding:"required"`
	Payload                   map[string]any `json:"payload" binding:"required"`
	RecordPreferences         *bool          `json:"record_preferences"`
	ApplyToGeneralPreferences bool           `json:"apply_to_general_preferences"`
	Result                    map[string]any `json:"result"`
}

// Approve godoc
// @Summary Approve a proposed action
// @Description Marks the action executed and stores the outbound email for send-type actions
// @Tags actions
// @Accept json
// @Produce json
// @Param payload body ApproveActionRequest true "Action to approve"
// @Success 200 {object} models.Action
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /action/approve [post]
func (h *ActionHandler) Approve(c *gin.Context) {
	var req ApproveActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action, err := h.actions.Approve(c.Request.Context(), req.ActionID, req.Result)
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, action)
}

// Reject godoc
// @Summary Reject a proposed action
// @Tags actions
// @Accept json
// @Produce json
// @Param payload body RejectActionRequest true "Action to reject"
// @Success 200 {object} models.Action
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /action/reject [post]
func (h *ActionHandler) Reject(c *gin.Context) {
	var req RejectActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action, err := h.actions.Reject(c.Request.Context(), req.ActionID, req.Result)
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, action)
}

// Modify godoc
// @Summary Modify and execute a proposed action
// @Description Replaces the payload with the user's edit, executes the action, and optionally derives writing preferences from the edit
// @Tags actions
// @Accept json
// @Produce json
// @Param payload body ModifyActionRequest true "Action modification"
// @Success 200 {object} models.Action
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /action/modify [post]
func (h *ActionHandler) Modify(c *gin.Context) {
	var req ModifyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// record_preferences defaults to true when omitted
	recordPreferences := true
	if req.RecordPreferences != nil {
		recordPreferences = *req.RecordPreferences
	}

	action, err := h.actions.Modify(c.Request.Context(), req.ActionID, req.Payload, recordPreferences, req.ApplyToGeneralPreferences, req.Result)
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, action)
}

func respondActionError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrActionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
