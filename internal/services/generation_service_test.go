package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"mailpilot-be/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter returns a canned JSON document and records the exchange.
type stubCompleter struct {
	response     string
	instructions string
	input        string
	err          error
}

func (s *stubCompleter) completeJSON(_ context.Context, instructions, input string, out any) error {
	s.instructions = instructions
	s.input = input
	if s.err != nil {
		return s.err
	}
	return json.Unmarshal([]byte(s.response), out)
}

func newStubGeneration(response string) (*llmGenerationService, *stubCompleter) {
	stub := &stubCompleter{response: response}
	return &llmGenerationService{
		llm:       stub,
		userName:  "Adrian",
		userEmail: "adrian@example.com",
	}, stub
}

func TestClassifyParsesProbabilities(t *testing.T) {
	svc, _ := newStubGeneration(`{"needs_summary":0.8,"needs_draft":0.3,"needs_schedule":0.05}`)

	c, err := svc.Classify(context.Background(), []models.Email{{FromEmail: "a@x.com", Body: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, models.Classification{NeedsSummary: 0.8, NeedsDraft: 0.3, NeedsSchedule: 0.05}, c)
}

func TestClassifyRejectsOutOfRangeProbability(t *testing.T) {
	svc, _ := newStubGeneration(`{"needs_summary":1.4,"needs_draft":0.3,"needs_schedule":0.05}`)

	_, err := svc.Classify(context.Background(), []models.Email{{FromEmail: "a@x.com", Body: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside [0,1]")
}

func TestSummarizeIncludesUserData(t *testing.T) {
	svc, stub := newStubGeneration(`{"summary":"Dana wants the report."}`)

	text, err := svc.Summarize(context.Background(), []models.Email{{FromEmail: "dana@example.com", Body: "report?"}})
	require.NoError(t, err)
	assert.Equal(t, "Dana wants the report.", text)
	assert.Contains(t, stub.input, "Name: Adrian")
	assert.Contains(t, stub.input, "Email: adrian@example.com")
}

func TestDraftOmitsPreferenceBlockWhenEmpty(t *testing.T) {
	svc, stub := newStubGeneration(`{"to":"dana@example.com","subject":"Re: hi","body":"Hello"}`)
	thread := []models.Email{{FromEmail: "dana@example.com", Body: "hi"}}

	_, err := svc.Draft(context.Background(), thread, nil)
	require.NoError(t, err)
	assert.NotContains(t, stub.input, "User writing preferences")

	_, err = svc.Draft(context.Background(), thread, &models.DraftingPreferences{})
	require.NoError(t, err)
	assert.NotContains(t, stub.input, "User writing preferences")
}

func TestDraftIncludesPreferenceBullets(t *testing.T) {
	svc, stub := newStubGeneration(`{"to":"dana@example.com","subject":"Re: hi","body":"Hello"}`)
	prefs := &models.DraftingPreferences{Tone: "formal", Signature: "Kind regards, Adrian"}

	draft, err := svc.Draft(context.Background(), []models.Email{{FromEmail: "dana@example.com", Body: "hi"}}, prefs)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", draft.To)
	assert.Contains(t, stub.input, "User writing preferences:")
	assert.Contains(t, stub.input, "- tone: formal")
	assert.Contains(t, stub.input, "- signature: Kind regards, Adrian")
}

func TestExtractPreferencesInputCarriesBothPayloads(t *testing.T) {
	svc, stub := newStubGeneration(`{"tone":"formal"}`)

	extraction, err := svc.ExtractPreferences(context.Background(),
		map[string]any{"body": "original text"},
		map[string]any{"body": "edited text"},
	)
	require.NoError(t, err)
	assert.Equal(t, "formal", extraction.Tone)
	assert.Contains(t, stub.input, "original text")
	assert.Contains(t, stub.input, "edited text")
	assert.True(t, strings.Index(stub.input, "original text") < strings.Index(stub.input, "edited text"))
}
