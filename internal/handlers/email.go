package handlers

import (
	"errors"
	"net/http"
	"time"

	"mailpilot-be/internal/models"
	"mailpilot-be/internal/repository"
	"mailpilot-be/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EmailHandler accepts incoming emails and runs them through triage.
type EmailHandler struct {
	triage *services.TriageService
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(triage *services.TriageService) *EmailHandler {
	return &EmailHandler{triage: triage}
}

// NewEmailRequest is the payload for submitting an incoming email.
type NewEmailRequest struct {
	MailID     string     `json:"mail_id"`
	ExternalID string     `json:"external_id"`
	ThreadID   string     `json:"thread_id" binding:"required"`
	FromName   string     `json:"from_name"`
	FromEmail  string     `json:"from_email" binding:"required"`
	To         []string   `json:"to"`
	Cc         []string   `json:"cc"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body" binding:"required"`
	ReceivedAt *time.Time `json:"received_at"`
}

// NewEmail godoc
// @Summary Triage an incoming email
// @Description Stores the email, classifies its thread, and returns any generated summary and proposed actions
// @Tags emails
// @Accept json
// @Produce json
// @Param payload body NewEmailRequest true "Incoming email"
// @Success 200 {object} services.TriageResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /new_email [post]
func (h *EmailHandler) NewEmail(c *gin.Context) {
	var req NewEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mailID := req.MailID
	if mailID == "" {
		mailID = uuid.NewString()
	}
	receivedAt := time.Now().UTC()
	if req.ReceivedAt != nil {
		receivedAt = req.ReceivedAt.UTC()
	}

	email := &models.Email{
		MailID:     mailID,
		ExternalID: req.ExternalID,
		ThreadID:   req.ThreadID,
		FromName:   req.FromName,
		FromEmail:  req.FromEmail,
		To:         req.To,
		Cc:         req.Cc,
		Subject:    req.Subject,
		Body:       req.Body,
		ReceivedAt: receivedAt,
	}

	result, err := h.triage.ProcessNewEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Triage failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
