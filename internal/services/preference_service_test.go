package services

import (
	"context"
	"testing"
	"time"

	"mailpilot-be/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func threadTo(to, cc []string) []models.Email {
	return []models.Email{{
		MailID:     "m1",
		ThreadID:   "t1",
		FromEmail:  "sender@example.com",
		To:         to,
		Cc:         cc,
		Body:       "hello",
		ReceivedAt: time.Now(),
	}}
}

func TestBuildDraftingPreferencesEmpty(t *testing.T) {
	store := newFakeStore()
	svc := NewPreferenceService(store, zap.NewNop())

	prefs, err := svc.BuildDraftingPreferences(context.Background(), threadTo(nil, nil))
	require.NoError(t, err)
	assert.Nil(t, prefs, "no stored preferences must yield nil, not an empty struct")
}

func TestBuildDraftingPreferencesGeneralOnly(t *testing.T) {
	store := newFakeStore()
	store.general["tone"] = "casual"
	store.general["signature"] = "Cheers, Adrian"
	svc := NewPreferenceService(store, zap.NewNop())

	prefs, err := svc.BuildDraftingPreferences(context.Background(), threadTo(nil, nil))
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, "casual", prefs.Tone)
	assert.Equal(t, "Cheers, Adrian", prefs.Signature)
}

func TestBuildDraftingPreferencesRecipientOverridesGeneral(t *testing.T) {
	store := newFakeStore()
	store.general["greeting"] = "Hi"
	store.recipientPrefs["sender@example.com"] = []models.ActionPreference{
		{RecipientEmail: "sender@example.com", Key: "greeting", Value: "Dear Dana"},
	}
	svc := NewPreferenceService(store, zap.NewNop())

	prefs, err := svc.BuildDraftingPreferences(context.Background(), threadTo(nil, nil))
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, "Dear Dana", prefs.Greeting)
}

func TestBuildDraftingPreferencesLastAppliedWins(t *testing.T) {
	store := newFakeStore()
	store.recipientPrefs["sender@example.com"] = []models.ActionPreference{
		{Key: "length", Value: "concise"},
	}
	store.recipientPrefs["second@example.com"] = []models.ActionPreference{
		{Key: "length", Value: "detailed"},
	}
	svc := NewPreferenceService(store, zap.NewNop())

	prefs, err := svc.BuildDraftingPreferences(context.Background(), threadTo([]string{"second@example.com"}, nil))
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, "detailed", prefs.Length)
}

func TestBuildDraftingPreferencesFormalToneWins(t *testing.T) {
	store := newFakeStore()
	store.general["tone"] = "casual"
	// the sender asks for formality, a later recipient prefers playful
	store.recipientPrefs["sender@example.com"] = []models.ActionPreference{
		{Key: "tone", Value: "Formal, please"},
	}
	store.recipientPrefs["second@example.com"] = []models.ActionPreference{
		{Key: "tone", Value: "playful"},
	}
	svc := NewPreferenceService(store, zap.NewNop())

	prefs, err := svc.BuildDraftingPreferences(context.Background(), threadTo([]string{"second@example.com"}, nil))
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, "Formal, please", prefs.Tone, "formality must not be downgraded by a later recipient")
}

func TestBuildDraftingPreferencesUnknownKeysLandInAdditional(t *testing.T) {
	store := newFakeStore()
	store.recipientPrefs["sender@example.com"] = []models.ActionPreference{
		{Key: "emoji", Value: "never"},
	}
	svc := NewPreferenceService(store, zap.NewNop())

	prefs, err := svc.BuildDraftingPreferences(context.Background(), threadTo(nil, nil))
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, "never", prefs.Additional["emoji"])
}

func TestReplyRecipients(t *testing.T) {
	thread := []models.Email{
		{FromEmail: "old@example.com", ReceivedAt: time.Now().Add(-time.Hour)},
		{
			FromEmail: "Dana@Example.com",
			To:        []string{"adrian@example.com", " dana@example.com "},
			Cc:        []string{"lee@example.com", ""},
		},
	}

	got := replyRecipients(thread)
	assert.Equal(t, []string{"dana@example.com", "adrian@example.com", "lee@example.com"}, got)
}

func TestReplyRecipientsEmptyThread(t *testing.T) {
	assert.Nil(t, replyRecipients(nil))
}
