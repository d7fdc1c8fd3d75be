package services

import (
	"testing"
	"time"

	"mailpilot-be/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatThreadEmpty(t *testing.T) {
	assert.Equal(t, "No emails were provided in this thread.\n", formatThread(nil))
}

func TestFormatThreadSingleMessage(t *testing.T) {
	out := formatThread([]models.Email{{
		FromName:   "Dana Cruz",
		FromEmail:  "dana@example.com",
		To:         []string{"adrian@example.com"},
		Subject:    "Hello",
		Body:       "Hi there",
		ReceivedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}})

	// a lone message keeps its ordinal label
	assert.Contains(t, out, "--- Message 1 ---")
	assert.NotContains(t, out, "Latest message")
	assert.Contains(t, out, "From: Dana Cruz <dana@example.com>")
	assert.Contains(t, out, "Received: 2026-08-01T10:00:00Z")
}

func TestFormatThreadLabelsLatest(t *testing.T) {
	out := formatThread([]models.Email{
		{FromEmail: "a@x.com", Body: "first"},
		{FromEmail: "b@x.com", Body: "second"},
		{FromEmail: "c@x.com", Body: "third"},
	})

	assert.Contains(t, out, "--- Message 1 ---")
	assert.Contains(t, out, "--- Message 2 ---")
	assert.Contains(t, out, "--- Latest message ---")
	assert.NotContains(t, out, "--- Message 3 ---")
}

func TestFormatEmailPlaceholders(t *testing.T) {
	out := formatEmail(&models.Email{FromEmail: "a@x.com", Body: "hi"})

	assert.Contains(t, out, "To: (not provided)")
	assert.Contains(t, out, "Cc: (none)")
	assert.Contains(t, out, "Subject: (no subject)")
}
