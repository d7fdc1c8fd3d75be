package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mailpilot-be/config"
	"mailpilot-be/internal/models"
)

// GenerationService is the set of opaque generation capabilities the triage
// pipeline depends on. Each method is a pure function from an ordered message
// sequence (plus optional hints) to a typed result; tests substitute
// deterministic fixtures.
type GenerationService interface {
	Classify(ctx context.Context, thread []models.Email) (models.Classification, error)
	Summarize(ctx context.Context, thread []models.Email) (string, error)
	Draft(ctx context.Context, thread []models.Email, prefs *models.DraftingPreferences) (models.EmailDraft, error)
	ProposeEvent(ctx context.Context, thread []models.Email) (models.ProposedEvent, error)
	ExtractPreferences(ctx context.Context, originalPayload, updatedPayload map[string]any) (models.PreferenceExtraction, error)
}

const classifyInstructions = `You estimate how an email should be triaged.
Reply with JSON containing these keys only:
{
  "needs_summary": number 0-1,
  "needs_draft": number 0-1,
  "needs_schedule": number 0-1
}
Each value is the probability the action is useful.
Use these guidelines:
- needs_summary: likelihood the email thread benefits from a concise recap (too long subject or too many message turns).
- needs_draft: likelihood the recipient must answer soon and would appreciate a suggested reply.
- needs_schedule: likelihood there is a meeting or time-sensitive event to add to the calendar.
Consider subject, body, sender, recipients, and timing for your reasoning.`

const summarizeInstructions = `You're an email summarizer. You'll receive an email or thread of emails.
Summarize the information to the email receiver.
Consider subject, body, sender, recipients, and timing for your reasoning.
Address the user as if you were reading the summary of their email inbox to them.
Reply with JSON containing only one key:
{
  "summary": summary of the email/thread
}`

const draftInstructions = `You write helpful reply drafts for incoming emails. Do not add placeholders or extra comments, your draft will be sent directly.
Assume the last message in the thread is the one that needs a response.
If a "User writing preferences" section is provided, incorporate every preference faithfully.
Reply with JSON containing only these keys:
{
  "to": string of comma-separated recipients (this should include the sender of the email you're responding to),
  "subject": subject line for the reply,
  "body": body text of the reply email
}
Keep the tone polite and concise unless instructed otherwise by the preferences.`

const scheduleInstructions = `You help schedule follow-up meetings or tasks triggered by incoming emails.
Reply with JSON using only these keys:
{
  "title": string describing the event,
  "proposed_time": ISO-8601 timestamp for the suggested time,
  "notes": optional string with additional context or next steps
}
If timing is unclear, suggest a reasonable default and explain in notes.`

const extractInstructions = `You analyse how a user modified an email draft suggested by another agent.
Return structured JSON with any inferred preferences for future drafts to the
same recipient. Only include a field when you can clearly infer a preference.
Fields:
- tone: overall tone preference (e.g. formal, casual)
- greeting: preferred opening (e.g. "Hi team", "Dear Alex")
- signature: preferred closing signature (e.g. "Best", "Thanks, Priya")
- length: short description of desired length (e.g. "concise", "detailed")
- extra_field: free-form notes for other reusable patterns`

// jsonCompleter runs one instruction+input exchange and decodes the model's
// JSON reply into out. Both provider clients implement it.
type jsonCompleter interface {
	completeJSON(ctx context.Context, instructions, input string, out any) error
}

// llmGenerationService implements GenerationService on top of a JSON-mode
// chat provider.
type llmGenerationService struct {
	llm       jsonCompleter
	userName  string
	userEmail string
}

// NewGenerationService creates a generation service backed by the configured
// provider ("gemini", or OpenAI by default).
func NewGenerationService(cfg *config.Config) GenerationService {
	var llm jsonCompleter
	if strings.ToLower(cfg.LLMProvider) == "gemini" {
		llm = newGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		llm = newOpenAIClient(cfg.LLMAPIKey, cfg.LLMModel)
	}
	return &llmGenerationService{
		llm:       llm,
		userName:  cfg.SenderName,
		userEmail: cfg.SenderEmail,
	}
}

// Classify estimates the three triage probabilities for the thread.
func (s *llmGenerationService) Classify(ctx context.Context, thread []models.Email) (models.Classification, error) {
	var c models.Classification
	if err := s.llm.completeJSON(ctx, classifyInstructions, formatThread(thread), &c); err != nil {
		return models.Classification{}, fmt.Errorf("classification failed: %w", err)
	}
	for _, p := range []float64{c.NeedsSummary, c.NeedsDraft, c.NeedsSchedule} {
		if p < 0 || p > 1 {
			return models.Classification{}, fmt.Errorf("classification probability %v outside [0,1]", p)
		}
	}
	return c, nil
}

// Summarize produces a recap of the thread addressed to the configured user.
func (s *llmGenerationService) Summarize(ctx context.Context, thread []models.Email) (string, error) {
	input := fmt.Sprintf("%s\n\nUser's data:\nName: %s\nEmail: %s",
		formatThread(thread), s.userName, s.userEmail)

	var out struct {
		Summary string `json:"summary"`
	}
	if err := s.llm.completeJSON(ctx, summarizeInstructions, input, &out); err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return out.Summary, nil
}

// Draft writes a reply to the thread's latest message, honoring the effective
// drafting preferences when present. A nil or empty preference set leaves the
// prompt untouched.
func (s *llmGenerationService) Draft(ctx context.Context, thread []models.Email, prefs *models.DraftingPreferences) (models.EmailDraft, error) {
	input := formatThread(thread)
	if prefs != nil && !prefs.IsEmpty() {
		lines := prefs.PromptLines()
		bullets := make([]string, len(lines))
		for i, line := range lines {
			bullets[i] = "- " + line
		}
		input = input + "\n\nUser writing preferences:\n" + strings.Join(bullets, "\n")
	}

	var draft models.EmailDraft
	if err := s.llm.completeJSON(ctx, draftInstructions, input, &draft); err != nil {
		return models.EmailDraft{}, fmt.Errorf("drafting failed: %w", err)
	}
	return draft, nil
}

// ProposeEvent suggests a calendar event for the thread.
func (s *llmGenerationService) ProposeEvent(ctx context.Context, thread []models.Email) (models.ProposedEvent, error) {
	var event models.ProposedEvent
	if err := s.llm.completeJSON(ctx, scheduleInstructions, formatThread(thread), &event); err != nil {
		return models.ProposedEvent{}, fmt.Errorf("event proposal failed: %w", err)
	}
	return event, nil
}

// ExtractPreferences derives reusable writing preferences from the diff
// between a suggested draft payload and the user's edited version.
func (s *llmGenerationService) ExtractPreferences(ctx context.Context, originalPayload, updatedPayload map[string]any) (models.PreferenceExtraction, error) {
	original, err := json.MarshalIndent(originalPayload, "", "  ")
	if err != nil {
		return models.PreferenceExtraction{}, err
	}
	updated, err := json.MarshalIndent(updatedPayload, "", "  ")
	if err != nil {
		return models.PreferenceExtraction{}, err
	}

	input := fmt.Sprintf(
		"The model draft was modified by the user.\nOriginal model draft (JSON):\n%s\n\nUser-modified draft (JSON):\n%s\n\nIdentify reusable preferences gleaned from the user's edits.",
		original, updated,
	)

	var extraction models.PreferenceExtraction
	if err := s.llm.completeJSON(ctx, extractInstructions, input, &extraction); err != nil {
		return models.PreferenceExtraction{}, fmt.Errorf("preference extraction failed: %w", err)
	}
	return extraction, nil
}
