package services

import (
	"context"
	"sort"
	"sync"

	"mailpilot-be/internal/models"
	"mailpilot-be/internal/repository"
)

// fakeStore is an in-memory Store with the same error semantics as the
// MongoDB-backed implementation.
type fakeStore struct {
	mu             sync.Mutex
	emails         map[string]models.Email
	actions        map[string]models.Action
	summaries      []models.Summary
	general        map[string]string
	recipientPrefs map[string][]models.ActionPreference

	insertEmailErr   error
	insertActionErr  error
	insertSummaryErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		emails:         map[string]models.Email{},
		actions:        map[string]models.Action{},
		general:        map[string]string{},
		recipientPrefs: map[string][]models.ActionPreference{},
	}
}

func (f *fakeStore) InsertEmail(_ context.Context, email *models.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertEmailErr != nil {
		return f.insertEmailErr
	}
	if _, ok := f.emails[email.MailID]; ok {
		return repository.ErrDuplicateEmail
	}
	f.emails[email.MailID] = *email
	return nil
}

func (f *fakeStore) FetchEmail(_ context.Context, mailID string) (*models.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.emails[mailID]
	if !ok {
		return nil, repository.ErrEmailNotFound
	}
	return &email, nil
}

func (f *fakeStore) FetchEmailsForThread(_ context.Context, threadID string) ([]models.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Email
	for _, email := range f.emails {
		if email.ThreadID == threadID {
			out = append(out, email)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out, nil
}

func (f *fakeStore) FetchThreadByMailID(ctx context.Context, mailID string) ([]models.Email, error) {
	email, err := f.FetchEmail(ctx, mailID)
	if err == repository.ErrEmailNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f.FetchEmailsForThread(ctx, email.ThreadID)
}

func (f *fakeStore) InsertAction(_ context.Context, action *models.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertActionErr != nil {
		return f.insertActionErr
	}
	f.actions[action.ActionID] = *action
	return nil
}

func (f *fakeStore) FetchAction(_ context.Context, actionID string) (*models.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	action, ok := f.actions[actionID]
	if !ok {
		return nil, repository.ErrActionNotFound
	}
	return &action, nil
}

func (f *fakeStore) UpdateAction(_ context.Context, actionID string, status *string, payload, result map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	action, ok := f.actions[actionID]
	if !ok {
		return repository.ErrActionNotFound
	}
	if status != nil {
		action.Status = *status
	}
	if payload != nil {
		action.Payload = payload
	}
	if result != nil {
		action.Result = result
	}
	f.actions[actionID] = action
	return nil
}

func (f *fakeStore) InsertSummary(_ context.Context, summary *models.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertSummaryErr != nil {
		return f.insertSummaryErr
	}
	found := false
	for _, email := range f.emails {
		if email.ThreadID == summary.ThreadID {
			found = true
			break
		}
	}
	if !found {
		return repository.ErrUnknownThread
	}
	f.summaries = append(f.summaries, *summary)
	return nil
}

func (f *fakeStore) FetchGeneralPreferences(_ context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.general))
	for k, v := range f.general {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) FetchPreferencesForRecipient(_ context.Context, recipientEmail string) ([]models.ActionPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ActionPreference(nil), f.recipientPrefs[recipientEmail]...), nil
}

func (f *fakeStore) UpsertGeneralPreference(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.general[key] = value
	return nil
}

func (f *fakeStore) UpsertActionPreference(_ context.Context, recipientEmail, key, value, sourceActionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefs := f.recipientPrefs[recipientEmail]
	for i, p := range prefs {
		if p.Key == key {
			prefs[i].Value = value
			prefs[i].SourceActionID = sourceActionID
			f.recipientPrefs[recipientEmail] = prefs
			return nil
		}
	}
	f.recipientPrefs[recipientEmail] = append(prefs, models.ActionPreference{
		RecipientEmail: recipientEmail,
		Key:            key,
		Value:          value,
		SourceActionID: sourceActionID,
	})
	return nil
}

// fakeGeneration implements GenerationService with per-method hooks; unset
// hooks return zero values.
type fakeGeneration struct {
	classify    func(thread []models.Email) (models.Classification, error)
	summarize   func(thread []models.Email) (string, error)
	draft       func(thread []models.Email, prefs *models.DraftingPreferences) (models.EmailDraft, error)
	propose     func(thread []models.Email) (models.ProposedEvent, error)
	extract     func(original, updated map[string]any) (models.PreferenceExtraction, error)
	summarized  int
	drafted     int
	proposed    int
	draftThread []models.Email
}

func (f *fakeGeneration) Classify(_ context.Context, thread []models.Email) (models.Classification, error) {
	if f.classify == nil {
		return models.Classification{}, nil
	}
	return f.classify(thread)
}

func (f *fakeGeneration) Summarize(_ context.Context, thread []models.Email) (string, error) {
	f.summarized++
	if f.summarize == nil {
		return "", nil
	}
	return f.summarize(thread)
}

func (f *fakeGeneration) Draft(_ context.Context, thread []models.Email, prefs *models.DraftingPreferences) (models.EmailDraft, error) {
	f.drafted++
	f.draftThread = thread
	if f.draft == nil {
		return models.EmailDraft{}, nil
	}
	return f.draft(thread, prefs)
}

func (f *fakeGeneration) ProposeEvent(_ context.Context, thread []models.Email) (models.ProposedEvent, error) {
	f.proposed++
	if f.propose == nil {
		return models.ProposedEvent{}, nil
	}
	return f.propose(thread)
}

func (f *fakeGeneration) ExtractPreferences(_ context.Context, original, updated map[string]any) (models.PreferenceExtraction, error) {
	if f.extract == nil {
		return models.PreferenceExtraction{}, nil
	}
	return f.extract(original, updated)
}
