package services

import (
	"context"
	"fmt"
	"time"

	"mailpilot-be/internal/models"
	"mailpilot-be/internal/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TriageResult is what ProcessNewEmail hands back to the caller.
type TriageResult struct {
	MailID          string               `json:"mail_id"`
	Summary         *SummaryPayload      `json:"summary"`
	ProposedActions []models.Action      `json:"proposed_actions"`
	Classification  ClassificationResult `json:"classification"`
}

type SummaryPayload struct {
	Text string `json:"text"`
}

type ClassificationResult struct {
	Probabilities models.Classification `json:"probabilities"`
	Decisions     models.Decisions      `json:"decisions"`
}

// TriageService is the orchestrator: it persists an incoming email,
// classifies the full thread, and fans out the decision-gated generation
// tasks.
type TriageService struct {
	store       Store
	index       *search.Index
	gen         GenerationService
	preferences *PreferenceService
	threshold   float64
	logger      *zap.Logger
}

// NewTriageService validates the decision threshold and wires the dispatcher.
// The index may be nil, in which case insertion skips the secondary-index
// update.
func NewTriageService(store Store, index *search.Index, gen GenerationService, preferences *PreferenceService, threshold float64, logger *zap.Logger) (*TriageService, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("decision threshold %v must be between 0 and 1", threshold)
	}
	return &TriageService{
		store:       store,
		index:       index,
		gen:         gen,
		preferences: preferences,
		threshold:   threshold,
		logger:      logger,
	}, nil
}

// Decisions thresholds a classification with the service's cutoff.
func (s *TriageService) Decisions(c models.Classification) models.Decisions {
	return c.Decide(s.threshold)
}

// ProcessNewEmail runs the whole triage flow for one incoming email:
//
//  1. Persist the email (duplicate mail ids are an integrity error).
//  2. Load the full thread; this snapshot is the context for every
//     downstream capability.
//  3. Classify once and threshold into three decisions.
//  4. Run the needed generation tasks concurrently against the identical
//     snapshot. A decision that is false costs no capability call.
//  5. Persist the artifacts only after every task succeeded; a failing task
//     fails the whole call with nothing persisted beyond the input email.
func (s *TriageService) ProcessNewEmail(ctx context.Context, email *models.Email) (*TriageResult, error) {
	if err := s.store.InsertEmail(ctx, email); err != nil {
		return nil, err
	}
	s.updateIndex(ctx, email)

	thread, err := s.store.FetchEmailsForThread(ctx, email.ThreadID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched thread", zap.String("thread_id", email.ThreadID), zap.Int("emails", len(thread)))

	classification, err := s.gen.Classify(ctx, thread)
	if err != nil {
		return nil, err
	}
	decisions := s.Decisions(classification)

	var (
		summaryText string
		draft       *models.EmailDraft
		event       *models.ProposedEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	if decisions.NeedsSummary {
		g.Go(func() error {
			text, err := s.gen.Summarize(gctx, thread)
			if err != nil {
				return err
			}
			summaryText = text
			return nil
		})
	}
	if decisions.NeedsDraft {
		g.Go(func() error {
			prefs, err := s.preferences.BuildDraftingPreferences(gctx, thread)
			if err != nil {
				return err
			}
			d, err := s.gen.Draft(gctx, thread, prefs)
			if err != nil {
				return err
			}
			draft = &d
			return nil
		})
	}
	if decisions.NeedsSchedule {
		g.Go(func() error {
			e, err := s.gen.ProposeEvent(gctx, thread)
			if err != nil {
				return err
			}
			event = &e
			return nil
		})
	}
	// Nothing is persisted until every task came back clean, so a single
	// failure discards completed siblings instead of committing a partial
	// action set.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &TriageResult{
		MailID:          email.MailID,
		ProposedActions: []models.Action{},
		Classification: ClassificationResult{
			Probabilities: classification,
			Decisions:     decisions,
		},
	}

	if decisions.NeedsSummary {
		summary := &models.Summary{
			SummaryID: uuid.NewString(),
			ThreadID:  email.ThreadID,
			Text:      summaryText,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.InsertSummary(ctx, summary); err != nil {
			return nil, err
		}
		result.Summary = &SummaryPayload{Text: summaryText}
	}

	if draft != nil {
		action := models.Action{
			ActionID: uuid.NewString(),
			MailID:   email.MailID,
			Type:     models.ActionSendEmail,
			Status:   models.StatusPending,
			Payload:  draft.ToPayload(),
		}
		if err := s.store.InsertAction(ctx, &action); err != nil {
			return nil, err
		}
		result.ProposedActions = append(result.ProposedActions, action)
	}

	if event != nil {
		action := models.Action{
			ActionID: uuid.NewString(),
			MailID:   email.MailID,
			Type:     models.ActionCreateEvent,
			Status:   models.StatusPending,
			Payload:  event.ToPayload(),
		}
		if err := s.store.InsertAction(ctx, &action); err != nil {
			return nil, err
		}
		result.ProposedActions = append(result.ProposedActions, action)
	}

	return result, nil
}

// updateIndex keeps the semantic index in sync with a freshly stored email.
// The index is a best-effort secondary structure: a failure here is logged
// and swallowed so it never blocks the primary storage path.
func (s *TriageService) updateIndex(ctx context.Context, email *models.Email) {
	if s.index == nil {
		return
	}
	if err := s.index.Add(ctx, []models.Email{*email}); err != nil {
		s.logger.Warn("failed to update semantic index",
			zap.String("mail_id", email.MailID),
			zap.Error(err))
	}
}
