package services

import (
	"context"
	"strings"
	"time"

	"mailpilot-be/internal/models"
	"mailpilot-be/internal/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SenderIdentity is the configured identity stamped on outbound replies. It
// is an explicit value passed in at construction rather than read from
// ambient environment state.
type SenderIdentity struct {
	Name  string
	Email string
}

// ActionService is the approve/reject/modify surface over proposed actions.
type ActionService struct {
	store  Store
	index  *search.Index
	gen    GenerationService
	sender SenderIdentity
	logger *zap.Logger
}

func NewActionService(store Store, index *search.Index, gen GenerationService, sender SenderIdentity, logger *zap.Logger) *ActionService {
	return &ActionService{
		store:  store,
		index:  index,
		gen:    gen,
		sender: sender,
		logger: logger,
	}
}

// Approve marks the action executed and, for send-type actions, materializes
// the outbound email in the same thread.
func (s *ActionService) Approve(ctx context.Context, actionID string, result map[string]any) (*models.Action, error) {
	action, err := s.store.FetchAction(ctx, actionID)
	if err != nil {
		return nil, err
	}

	status := models.StatusExecuted
	if err := s.store.UpdateAction(ctx, actionID, &status, nil, result); err != nil {
		return nil, err
	}
	action.Status = status
	if result != nil {
		action.Result = result
	}

	s.storeSentEmail(ctx, action, action.Payload)
	return action, nil
}

// Reject marks the action rejected. Nothing else happens.
func (s *ActionService) Reject(ctx context.Context, actionID string, result map[string]any) (*models.Action, error) {
	action, err := s.store.FetchAction(ctx, actionID)
	if err != nil {
		return nil, err
	}

	status := models.StatusRejected
	if err := s.store.UpdateAction(ctx, actionID, &status, nil, result); err != nil {
		return nil, err
	}
	action.Status = status
	if result != nil {
		action.Result = result
	}
	return action, nil
}

// Modify replaces the action's payload with the user's edit, executes it, and
// optionally derives writing preferences from the diff between the original
// and edited payloads. With applyToGeneral the preferences land in the
// general profile; otherwise each recipient of the edited draft gets them.
func (s *ActionService) Modify(ctx context.Context, actionID string, updatedPayload map[string]any, recordPreferences, applyToGeneral bool, result map[string]any) (*models.Action, error) {
	action, err := s.store.FetchAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	originalPayload := action.Payload

	status := models.StatusExecuted
	if err := s.store.UpdateAction(ctx, actionID, &status, updatedPayload, result); err != nil {
		return nil, err
	}
	action.Status = status
	action.Payload = updatedPayload
	if result != nil {
		action.Result = result
	}

	s.storeSentEmail(ctx, action, updatedPayload)

	if recordPreferences {
		if err := s.recordPreferences(ctx, action, originalPayload, updatedPayload, applyToGeneral); err != nil {
			return nil, err
		}
	}
	return action, nil
}

// storeSentEmail appends the approved or edited draft to the original
// thread as an outbound email from the configured sender. Failures are
// logged and swallowed: the action's status transition already happened and
// the simulated send must not be rolled back by bookkeeping.
func (s *ActionService) storeSentEmail(ctx context.Context, action *models.Action, payload map[string]any) {
	if action.Type != models.ActionSendEmail || action.MailID == "" {
		return
	}

	original, err := s.store.FetchEmail(ctx, action.MailID)
	if err != nil {
		s.logger.Warn("unable to store sent email: source mail not found",
			zap.String("action_id", action.ActionID),
			zap.String("mail_id", action.MailID),
			zap.Error(err))
		return
	}

	subject, _ := payload["subject"].(string)
	body, _ := payload["body"].(string)

	sent := models.Email{
		MailID:     uuid.NewString(),
		ThreadID:   original.ThreadID,
		FromName:   s.sender.Name,
		FromEmail:  s.sender.Email,
		To:         normalizeRecipients(payload["to"]),
		Cc:         normalizeRecipients(payload["cc"]),
		Subject:    subject,
		Body:       body,
		ReceivedAt: time.Now().UTC(),
	}

	if err := s.store.InsertEmail(ctx, &sent); err != nil {
		s.logger.Error("failed to store sent email",
			zap.String("action_id", action.ActionID),
			zap.Error(err))
		return
	}

	if s.index != nil {
		if err := s.index.Add(ctx, []models.Email{sent}); err != nil {
			s.logger.Warn("failed to index sent email",
				zap.String("mail_id", sent.MailID),
				zap.Error(err))
		}
	}
}

// recordPreferences extracts preferences from the payload diff and upserts
// them, either into the general profile or per recipient of the edited
// draft.
func (s *ActionService) recordPreferences(ctx context.Context, action *models.Action, originalPayload, updatedPayload map[string]any, applyToGeneral bool) error {
	if action.Type != models.ActionSendEmail {
		return nil
	}

	extraction, err := s.gen.ExtractPreferences(ctx, originalPayload, updatedPayload)
	if err != nil {
		return err
	}
	preferences := extraction.ToMap()
	if len(preferences) == 0 {
		return nil
	}

	if applyToGeneral {
		for key, value := range preferences {
			if err := s.store.UpsertGeneralPreference(ctx, key, value); err != nil {
				return err
			}
		}
		return nil
	}

	recipients := normalizeRecipients(updatedPayload["to"])
	for _, recipient := range recipients {
		for key, value := range preferences {
			if err := s.store.UpsertActionPreference(ctx, strings.ToLower(recipient), key, value, action.ActionID); err != nil {
				return err
			}
		}
	}
	return nil
}

// normalizeRecipients accepts the payload's recipient field as either a
// string of comma-separated addresses or a list, and returns trimmed,
// non-empty addresses.
func normalizeRecipients(raw any) []string {
	var candidates []string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		candidates = strings.Split(v, ",")
	case []string:
		candidates = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	default:
		return nil
	}

	var out []string
	for _, c := range candidates {
		if addr := strings.TrimSpace(c); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
