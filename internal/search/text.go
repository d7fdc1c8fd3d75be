package search

import (
	"strings"

	"mailpilot-be/internal/models"
)

const snippetLength = 240

// CanonicalText renders an email into the fixed textual form that gets
// embedded: subject, sender, recipients, cc, body, each on its own line.
func CanonicalText(email *models.Email) string {
	subject := email.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	toPart := "(no recipients)"
	if len(email.To) > 0 {
		toPart = strings.Join(email.To, ", ")
	}
	ccPart := "(no cc)"
	if len(email.Cc) > 0 {
		ccPart = strings.Join(email.Cc, ", ")
	}

	lines := []string{
		"Subject: " + subject,
		"From: " + email.Sender(),
		"To: " + toPart,
		"Cc: " + ccPart,
		"Body:",
		email.Body,
	}
	return strings.Join(lines, "\n")
}

// Snippet truncates body to at most length characters, breaking at the last
// whitespace boundary before the limit and appending an ellipsis marker.
func Snippet(body string, length int) string {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "\r\n", " ")
	body = strings.ReplaceAll(body, "\n", " ")
	if len(body) <= length {
		return body
	}

	truncated := body[:length]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
