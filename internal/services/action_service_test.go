package services

import (
	"context"
	"testing"
	"time"

	"mailpilot-be/internal/models"
	"mailpilot-be/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestActionService(store Store, gen GenerationService) *ActionService {
	return NewActionService(store, nil, gen, SenderIdentity{
		Name:  "Adrian",
		Email: "adrian@example.com",
	}, zap.NewNop())
}

func seedSendAction(t *testing.T, store *fakeStore) models.Action {
	t.Helper()
	require.NoError(t, store.InsertEmail(context.Background(), testEmail("m1", "t1", time.Now().Add(-time.Minute))))
	action := models.Action{
		ActionID: "a1",
		MailID:   "m1",
		Type:     models.ActionSendEmail,
		Status:   models.StatusPending,
		Payload: map[string]any{
			"to":      "dana@example.com",
			"subject": "Re: Quarterly report",
			"body":    "Numbers attached.",
		},
	}
	require.NoError(t, store.InsertAction(context.Background(), &action))
	return action
}

func TestApproveStoresOutboundEmail(t *testing.T) {
	store := newFakeStore()
	seedSendAction(t, store)
	svc := newTestActionService(store, &fakeGeneration{})

	action, err := svc.Approve(context.Background(), "a1", map[string]any{"delivered": true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusExecuted, action.Status)
	assert.Equal(t, true, action.Result["delivered"])

	// the approved draft joined the original thread as an outbound message
	thread, err := store.FetchEmailsForThread(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, thread, 2)

	sent := thread[1]
	assert.Equal(t, "adrian@example.com", sent.FromEmail)
	assert.Equal(t, "Adrian", sent.FromName)
	assert.Equal(t, []string{"dana@example.com"}, sent.To)
	assert.Equal(t, "Numbers attached.", sent.Body)
	assert.NotEqual(t, "m1", sent.MailID)
}

func TestApproveEventActionDoesNotStoreEmail(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.InsertEmail(context.Background(), testEmail("m1", "t1", time.Now())))
	action := models.Action{
		ActionID: "a2",
		MailID:   "m1",
		Type:     models.ActionCreateEvent,
		Status:   models.StatusPending,
		Payload:  map[string]any{"title": "Budget review"},
	}
	require.NoError(t, store.InsertAction(context.Background(), &action))
	svc := newTestActionService(store, &fakeGeneration{})

	got, err := svc.Approve(context.Background(), "a2", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExecuted, got.Status)

	thread, err := store.FetchEmailsForThread(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, thread, 1)
}

func TestApproveUnknownAction(t *testing.T) {
	svc := newTestActionService(newFakeStore(), &fakeGeneration{})

	_, err := svc.Approve(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, repository.ErrActionNotFound)
}

func TestRejectLeavesThreadUntouched(t *testing.T) {
	store := newFakeStore()
	seedSendAction(t, store)
	svc := newTestActionService(store, &fakeGeneration{})

	action, err := svc.Reject(context.Background(), "a1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, action.Status)

	thread, err := store.FetchEmailsForThread(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, thread, 1, "rejecting must not materialize the draft")
}

func TestModifyRecordsRecipientPreferences(t *testing.T) {
	store := newFakeStore()
	seedSendAction(t, store)
	gen := &fakeGeneration{
		extract: func(original, updated map[string]any) (models.PreferenceExtraction, error) {
			assert.Equal(t, "Numbers attached.", original["body"])
			return models.PreferenceExtraction{Tone: "formal", Signature: "Kind regards, Adrian"}, nil
		},
	}
	svc := newTestActionService(store, gen)

	updated := map[string]any{
		"to":      "Dana@example.com, lee@example.com",
		"subject": "Re: Quarterly report",
		"body":    "Please find the figures attached.\n\nKind regards, Adrian",
	}
	action, err := svc.Modify(context.Background(), "a1", updated, true, false, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExecuted, action.Status)
	assert.Equal(t, updated, action.Payload)

	// both recipients of the edited draft got the extracted preferences,
	// keyed by lowercased address
	for _, recipient := range []string{"dana@example.com", "lee@example.com"} {
		prefs, err := store.FetchPreferencesForRecipient(context.Background(), recipient)
		require.NoError(t, err)
		require.Len(t, prefs, 2, recipient)
		byKey := map[string]models.ActionPreference{}
		for _, p := range prefs {
			byKey[p.Key] = p
		}
		assert.Equal(t, "formal", byKey["tone"].Value)
		assert.Equal(t, "a1", byKey["tone"].SourceActionID)
	}
	assert.Empty(t, store.general)

	// the edited draft, not the original, was stored as the outbound email
	thread, err := store.FetchEmailsForThread(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, []string{"Dana@example.com", "lee@example.com"}, thread[1].To)
}

func TestModifyAppliesToGeneralPreferences(t *testing.T) {
	store := newFakeStore()
	seedSendAction(t, store)
	gen := &fakeGeneration{
		extract: func(_, _ map[string]any) (models.PreferenceExtraction, error) {
			return models.PreferenceExtraction{Length: "concise"}, nil
		},
	}
	svc := newTestActionService(store, gen)

	_, err := svc.Modify(context.Background(), "a1", map[string]any{
		"to": "dana@example.com", "subject": "s", "body": "b",
	}, true, true, nil)
	require.NoError(t, err)

	assert.Equal(t, "concise", store.general["length"])
	assert.Empty(t, store.recipientPrefs)
}

func TestModifyWithoutRecordingPreferences(t *testing.T) {
	store := newFakeStore()
	seedSendAction(t, store)
	extracted := false
	gen := &fakeGeneration{
		extract: func(_, _ map[string]any) (models.PreferenceExtraction, error) {
			extracted = true
			return models.PreferenceExtraction{Tone: "formal"}, nil
		},
	}
	svc := newTestActionService(store, gen)

	_, err := svc.Modify(context.Background(), "a1", map[string]any{
		"to": "dana@example.com", "subject": "s", "body": "b",
	}, false, false, nil)
	require.NoError(t, err)

	assert.False(t, extracted, "extraction must be skipped when recording is off")
	assert.Empty(t, store.general)
	assert.Empty(t, store.recipientPrefs)
}

func TestNormalizeRecipients(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, nil},
		{"comma string", "a@x.com, b@x.com ,", []string{"a@x.com", "b@x.com"}},
		{"string slice", []string{" a@x.com ", ""}, []string{"a@x.com"}},
		{"any slice", []any{"a@x.com", 42, "b@x.com"}, []string{"a@x.com", "b@x.com"}},
		{"unsupported", 7, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRecipients(tt.in))
		})
	}
}
