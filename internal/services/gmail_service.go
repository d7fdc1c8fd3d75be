package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/mail"
	"strings"
	"time"

	"mailpilot-be/config"
	"mailpilot-be/internal/models"
	"mailpilot-be/internal/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailService pulls recent inbox messages from the configured Gmail account
// and maps them into stored emails for the triage pipeline.
type GmailService struct {
	cfg *config.Config
}

func NewGmailService(cfg *config.Config) *GmailService {
	return &GmailService{cfg: cfg}
}

func (s *GmailService) getOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		Scopes: []string{
			gmail.GmailReadonlyScope,
		},
		Endpoint: google.Endpoint,
	}
}

func (s *GmailService) getClient(ctx context.Context) (*gmail.Service, error) {
	if s.cfg.GoogleRefreshToken == "" {
		return nil, errors.New("no google refresh token configured")
	}

	token := &oauth2.Token{
		RefreshToken: s.cfg.GoogleRefreshToken,
		TokenType:    "Bearer",
	}
	tokenSource := s.getOAuthConfig().TokenSource(ctx, token)

	return gmail.NewService(ctx, option.WithTokenSource(tokenSource))
}

// FetchInbox returns up to max recent inbox messages mapped to emails. The
// Gmail message id lands in ExternalID so callers can skip already-ingested
// messages; a fresh MailID is minted at insert time by the caller.
func (s *GmailService) FetchInbox(ctx context.Context, max int) ([]models.Email, error) {
	srv, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Users.Messages.List("me").LabelIds("INBOX").MaxResults(int64(max)).Do()
	if err != nil {
		return nil, err
	}

	var emails []models.Email
	for _, header := range resp.Messages {
		msg, err := srv.Users.Messages.Get("me", header.Id).Format("full").Do()
		if err != nil {
			continue
		}
		emails = append(emails, s.mapMessage(msg))
	}
	return emails, nil
}

func (s *GmailService) mapMessage(msg *gmail.Message) models.Email {
	var subject, from, to, cc string

	// InternalDate (epoch ms) is a reliable fallback when the Date header is
	// missing or unparsable.
	date := time.Now().UTC()
	if msg.InternalDate > 0 {
		date = time.Unix(msg.InternalDate/1000, (msg.InternalDate%1000)*1000000).UTC()
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "Subject":
			subject = header.Value
		case "From":
			from = header.Value
		case "To":
			to = header.Value
		case "Cc":
			cc = header.Value
		case "Date":
			if d, err := mail.ParseDate(header.Value); err == nil {
				date = d.UTC()
			}
		}
	}

	fromName, fromEmail := splitAddress(from)
	body := utils.SanitizeHTML(getBody(msg.Payload))

	return models.Email{
		ExternalID: msg.Id,
		ThreadID:   msg.ThreadId,
		FromName:   utils.ToValidUTF8(fromName),
		FromEmail:  utils.ToValidUTF8(fromEmail),
		To:         splitAddressList(to),
		Cc:         splitAddressList(cc),
		Subject:    utils.ToValidUTF8(subject),
		Body:       utils.ToValidUTF8(body),
		ReceivedAt: date,
	}
}

// getBody walks the message parts and returns the best text representation,
// preferring text/plain over text/html.
func getBody(part *gmail.MessagePart) string {
	decode := func(data string) ([]byte, error) {
		// Try RawURLEncoding first (no padding)
		decoded, err := base64.RawURLEncoding.DecodeString(data)
		if err == nil {
			return decoded, nil
		}
		return base64.URLEncoding.DecodeString(data)
	}

	if part.Body != nil && part.Body.Data != "" {
		if data, err := decode(part.Body.Data); err == nil {
			return string(data)
		}
	}

	var htmlBody, plainBody string
	for _, p := range part.Parts {
		switch p.MimeType {
		case "text/plain":
			if p.Body != nil && p.Body.Data != "" {
				if data, err := decode(p.Body.Data); err == nil {
					plainBody = string(data)
				}
			}
		case "text/html":
			if p.Body != nil && p.Body.Data != "" {
				if data, err := decode(p.Body.Data); err == nil {
					htmlBody = string(data)
				}
			}
		default:
			if len(p.Parts) > 0 && plainBody == "" && htmlBody == "" {
				if sub := getBody(p); sub != "" {
					htmlBody = sub
				}
			}
		}
	}

	if plainBody != "" {
		return plainBody
	}
	return htmlBody
}

// splitAddress parses "Name <addr>" into its parts, falling back to the raw
// string as the address.
func splitAddress(raw string) (name, email string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if addr, err := mail.ParseAddress(raw); err == nil {
		return addr.Name, addr.Address
	}
	return "", raw
}

// splitAddressList parses a comma-separated header value into addresses.
func splitAddressList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if list, err := mail.ParseAddressList(raw); err == nil {
		out := make([]string, 0, len(list))
		for _, addr := range list {
			out = append(out, addr.Address)
		}
		return out
	}

	var out []string
	for _, piece := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(piece); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
