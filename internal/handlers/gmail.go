package handlers

import (
	"errors"
	"net/http"

	"mailpilot-be/internal/repository"
	"mailpilot-be/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GmailHandler pulls recent inbox messages and feeds new ones through triage.
type GmailHandler struct {
	gmail   *services.GmailService
	triage  *services.TriageService
	store   *repository.Store
	maxSync int
	logger  *zap.Logger
}

// NewGmailHandler creates a new gmail handler
func NewGmailHandler(gmail *services.GmailService, triage *services.TriageService, store *repository.Store, maxSync int, logger *zap.Logger) *GmailHandler {
	return &GmailHandler{gmail: gmail, triage: triage, store: store, maxSync: maxSync, logger: logger}
}

// GmailSyncResponse reports the outcome of one sync pass.
type GmailSyncResponse struct {
	Fetched int                     `json:"fetched"`
	Skipped int                     `json:"skipped"`
	Results []services.TriageResult `json:"results"`
}

// Sync godoc
// @Summary Sync recent Gmail inbox messages
// @Description Fetches recent inbox messages, skips ones already stored, and triages each new one
// @Tags gmail
// @Produce json
// @Success 200 {object} GmailSyncResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /gmail/sync [post]
func (h *GmailHandler) Sync(c *gin.Context) {
	ctx := c.Request.Context()

	emails, err := h.gmail.FetchInbox(ctx, h.maxSync)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Gmail fetch failed: " + err.Error()})
		return
	}

	resp := GmailSyncResponse{Results: []services.TriageResult{}}
	resp.Fetched = len(emails)

	for i := range emails {
		email := emails[i]

		exists, err := h.store.HasExternalID(ctx, email.ExternalID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check stored messages: " + err.Error()})
			return
		}
		if exists {
			resp.Skipped++
			continue
		}

		email.MailID = uuid.NewString()
		result, err := h.triage.ProcessNewEmail(ctx, &email)
		if err != nil {
			// A concurrent sync may have stored the same message between the
			// existence check and the insert.
			if errors.Is(err, repository.ErrDuplicateEmail) {
				resp.Skipped++
				continue
			}
			h.logger.Warn("triage failed for synced message",
				zap.String("externalId", email.ExternalID),
				zap.Error(err))
			continue
		}
		resp.Results = append(resp.Results, *result)
	}

	c.JSON(http.StatusOK, resp)
}
