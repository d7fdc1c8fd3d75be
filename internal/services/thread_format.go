package services

import (
	"fmt"
	"strings"

	"mailpilot-be/internal/models"
)

// formatEmail renders one email as the prompt block every generation
// capability consumes.
func formatEmail(email *models.Email) string {
	toAddresses := "(not provided)"
	if len(email.To) > 0 {
		toAddresses = strings.Join(email.To, ", ")
	}
	ccAddresses := "(none)"
	if len(email.Cc) > 0 {
		ccAddresses = strings.Join(email.Cc, ", ")
	}
	subject := email.Subject
	if subject == "" {
		subject = "(no subject)"
	}

	return fmt.Sprintf(
		"From: %s\nTo: %s\nCc: %s\nSubject: %s\nReceived: %s\nBody:\n%s\n",
		email.Sender(), toAddresses, ccAddresses, subject,
		email.ReceivedAt.Format("2006-01-02T15:04:05Z07:00"), email.Body,
	)
}

// formatThread renders a whole thread oldest-first, labeling the newest
// message so the model knows which one needs attention. An empty thread
// renders as an explicit "no information available" block rather than an
// empty string.
func formatThread(thread []models.Email) string {
	if len(thread) == 0 {
		return "No emails were provided in this thread.\n"
	}

	total := len(thread)
	parts := make([]string, 0, total)
	for i := range thread {
		label := fmt.Sprintf("Message %d", i+1)
		if total > 1 && i == total-1 {
			label = "Latest message"
		}
		parts = append(parts, fmt.Sprintf("--- %s ---\n%s", label, formatEmail(&thread[i])))
	}
	return strings.Join(parts, "\n\n")
}
