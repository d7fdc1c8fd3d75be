package services

import (
	"context"
	"strings"

	"mailpilot-be/internal/models"

	"go.uber.org/zap"
)

// PreferenceService resolves the effective drafting preferences for a thread
// by merging general preferences with recipient-scoped ones.
type PreferenceService struct {
	store  Store
	logger *zap.Logger
}

func NewPreferenceService(store Store, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{store: store, logger: logger}
}

// BuildDraftingPreferences merges preferences for a reply to the thread's
// latest email. General preferences apply first, then each candidate
// recipient's preferences in reply order, last-applied-wins per key — except
// tone: the first tone value found containing "formal" wins over whatever the
// walk produced, so formality is never downgraded by a later casual-tone
// recipient. Returns nil when nothing is set, which downstream drafting uses
// to omit the preferences block entirely.
func (s *PreferenceService) BuildDraftingPreferences(ctx context.Context, thread []models.Email) (*models.DraftingPreferences, error) {
	general, err := s.store.FetchGeneralPreferences(ctx)
	if err != nil {
		return nil, err
	}

	prefs := &models.DraftingPreferences{}
	prefs.ApplyAll(general)

	var formalTone string
	for _, recipient := range replyRecipients(thread) {
		recipientPrefs, err := s.store.FetchPreferencesForRecipient(ctx, recipient)
		if err != nil {
			return nil, err
		}
		if len(recipientPrefs) == 0 {
			continue
		}

		for _, p := range recipientPrefs {
			prefs.Apply(p.Key, p.Value)
		}

		if formalTone == "" {
			for _, p := range recipientPrefs {
				if p.Key == "tone" && strings.Contains(strings.ToLower(p.Value), "formal") {
					formalTone = p.Value
					s.logger.Debug("formal tone preference pinned",
						zap.String("recipient", recipient),
						zap.String("tone", p.Value))
					break
				}
			}
		}
	}

	if formalTone != "" {
		prefs.Tone = formalTone
	}

	if prefs.IsEmpty() {
		return nil, nil
	}
	return prefs, nil
}

// replyRecipients lists the candidate recipients of a reply to the thread's
// latest email: its sender first, then to, then cc, deduplicated
// case-insensitively while preserving first-seen order.
func replyRecipients(thread []models.Email) []string {
	if len(thread) == 0 {
		return nil
	}

	latest := thread[len(thread)-1]
	var candidates []string
	if latest.FromEmail != "" {
		candidates = append(candidates, latest.FromEmail)
	}
	candidates = append(candidates, latest.To...)
	candidates = append(candidates, latest.Cc...)

	seen := map[string]struct{}{}
	var out []string
	for _, addr := range candidates {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
