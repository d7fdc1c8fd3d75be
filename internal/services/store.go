package services

import (
	"context"

	"mailpilot-be/internal/models"
)

// Store is the slice of the store of record the services consume. Implemented
// by repository.Store; tests substitute in-memory fakes.
type Store interface {
	InsertEmail(ctx context.Context, email *models.Email) error
	FetchEmail(ctx context.Context, mailID string) (*models.Email, error)
	FetchEmailsForThread(ctx context.Context, threadID string) ([]models.Email, error)
	FetchThreadByMailID(ctx context.Context, mailID string) ([]models.Email, error)

	InsertAction(ctx context.Context, action *models.Action) error
	FetchAction(ctx context.Context, actionID string) (*models.Action, error)
	UpdateAction(ctx context.Context, actionID string, status *string, payload map[string]any, result map[string]any) error

	InsertSummary(ctx context.Context, summary *models.Summary) error

	FetchGeneralPreferences(ctx context.Context) (map[string]string, error)
	FetchPreferencesForRecipient(ctx context.Context, recipientEmail string) ([]models.ActionPreference, error)
	UpsertGeneralPreference(ctx context.Context, key, value string) error
	UpsertActionPreference(ctx context.Context, recipientEmail, key, value, sourceActionID string) error
}
