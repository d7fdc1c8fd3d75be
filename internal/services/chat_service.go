package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mailpilot-be/config"
	"mailpilot-be/internal/models"
	"mailpilot-be/internal/search"

	"go.uber.org/zap"
)

const chatInstructions = `You are the conversational front for the email assistant.
Use the tools provided to look up stored emails, draft replies, or schedule events when helpful.

Available tools:
- search_emails(query, limit): Retrieve candidate messages with metadata so you can respond to queries or identify the correct mail_id.
- draft_reply(mail_id): Generate a reply draft for the conversation identified by mail_id. Call only after you know the precise mail_id.
- schedule_event(mail_id): Produce a calendar event proposal based on the thread identified by mail_id. Call only when the relevant mail_id is confirmed.

If you are unsure about the correct mail_id for a follow-up action, call search_emails first to narrow it down before drafting or scheduling.`

// maxToolRounds bounds how many tool-call rounds one user turn may trigger.
const maxToolRounds = 5

// ErrEmptyTranscript is returned when a chat request carries no usable turns.
var ErrEmptyTranscript = errors.New("conversation transcript is empty")

// toolCaller runs one tool-augmented chat round trip. Implemented by
// openAIClient; tests substitute a scripted fake.
type toolCaller interface {
	chat(ctx context.Context, req oaRequest) (oaMessage, error)
}

// ChatService is the turn-taking responder over the stored mail corpus. It
// resolves ambiguous references through semantic search before drafting or
// scheduling.
type ChatService struct {
	llm    toolCaller
	model  string
	store  Store
	index  *search.Index
	gen    GenerationService
	logger *zap.Logger
}

// NewChatService wires the responder. Tool calling runs through the OpenAI
// chat API regardless of which provider backs generation.
func NewChatService(cfg *config.Config, store Store, index *search.Index, gen GenerationService, logger *zap.Logger) *ChatService {
	llm := newOpenAIClient(cfg.LLMAPIKey, cfg.LLMModel)
	return &ChatService{
		llm:    llm,
		model:  llm.model,
		store:  store,
		index:  index,
		gen:    gen,
		logger: logger,
	}
}

// Respond answers the newest user turn in the transcript, invoking tools as
// needed. An empty transcript fails fast.
func (s *ChatService) Respond(ctx context.Context, transcript []models.ChatMessage) (*models.ChatReply, error) {
	messages := []oaMessage{{Role: "system", Content: chatInstructions}}
	turns := 0
	for _, m := range transcript {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		if role != "assistant" {
			role = "user"
		}
		messages = append(messages, oaMessage{Role: role, Content: content})
		turns++
	}
	if turns == 0 {
		return nil, ErrEmptyTranscript
	}

	reply := &models.ChatReply{References: []models.ChatSource{}}

	for round := 0; round < maxToolRounds; round++ {
		msg, err := s.llm.chat(ctx, oaRequest{
			Model:       s.model,
			Messages:    messages,
			Tools:       chatTools(),
			Temperature: 0.2,
		})
		if err != nil {
			return nil, err
		}

		if len(msg.ToolCalls) == 0 {
			reply.Answer = strings.TrimSpace(msg.Content)
			return reply, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			output := s.runTool(ctx, call, reply)
			messages = append(messages, oaMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    output,
			})
		}
	}

	return nil, fmt.Errorf("no final answer after %d tool rounds", maxToolRounds)
}

// runTool dispatches one tool call, recording references and artifacts on
// the reply as a side effect. Tool failures are reported back to the model
// as tool output rather than aborting the turn.
func (s *ChatService) runTool(ctx context.Context, call oaToolCall, reply *models.ChatReply) string {
	s.logger.Info("chat tool invoked", zap.String("tool", call.Function.Name))

	var args struct {
		Query  string `json:"query"`
		Limit  int    `json:"limit"`
		MailID string `json:"mail_id"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return toolError(fmt.Errorf("invalid tool arguments: %w", err))
	}

	switch call.Function.Name {
	case "search_emails":
		limit := args.Limit
		if limit <= 0 {
			limit = 5
		}
		results, err := s.index.Search(ctx, args.Query, limit)
		if err != nil {
			return toolError(err)
		}
		for _, r := range results {
			reply.References = append(reply.References, models.ChatSource{
				MailID:   r.MailID,
				ThreadID: r.ThreadID,
				Subject:  r.Subject,
				Snippet:  r.Snippet,
				Score:    r.Score,
			})
		}
		out, _ := json.Marshal(results)
		return string(out)

	case "draft_reply":
		thread, err := s.store.FetchThreadByMailID(ctx, args.MailID)
		if err != nil {
			return toolError(err)
		}
		if len(thread) == 0 {
			return `{"status":"not_found","mail_id":"` + args.MailID + `"}`
		}
		draft, err := s.gen.Draft(ctx, thread, nil)
		if err != nil {
			return toolError(err)
		}
		reply.Draft = &draft
		out, _ := json.Marshal(map[string]any{
			"status":    "ok",
			"mail_id":   args.MailID,
			"thread_id": thread[len(thread)-1].ThreadID,
			"draft":     draft,
		})
		return string(out)

	case "schedule_event":
		thread, err := s.store.FetchThreadByMailID(ctx, args.MailID)
		if err != nil {
			return toolError(err)
		}
		if len(thread) == 0 {
			return `{"status":"not_found","mail_id":"` + args.MailID + `"}`
		}
		event, err := s.gen.ProposeEvent(ctx, thread)
		if err != nil {
			return toolError(err)
		}
		reply.Event = &event
		out, _ := json.Marshal(map[string]any{
			"status":    "ok",
			"mail_id":   args.MailID,
			"thread_id": thread[len(thread)-1].ThreadID,
			"event":     event,
		})
		return string(out)
	}

	return toolError(fmt.Errorf("unknown tool %q", call.Function.Name))
}

func toolError(err error) string {
	out, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(out)
}

func chatTools() []oaTool {
	return []oaTool{
		{
			Type: "function",
			Function: oaToolFunction{
				Name:        "search_emails",
				Description: "Search stored emails by meaning and return candidate messages with metadata and similarity scores.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{"type": "string", "description": "Natural language search query"},
						"limit": map[string]any{"type": "integer", "description": "Maximum number of results (default 5)"},
					},
					"required": []string{"query"},
				},
			},
		},
		{
			Type: "function",
			Function: oaToolFunction{
				Name:        "draft_reply",
				Description: "Generate a reply draft for the conversation identified by mail_id.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"mail_id": map[string]any{"type": "string", "description": "Identifier of the email whose thread needs a reply"},
					},
					"required": []string{"mail_id"},
				},
			},
		},
		{
			Type: "function",
			Function: oaToolFunction{
				Name:        "schedule_event",
				Description: "Produce a calendar event proposal for the thread identified by mail_id.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"mail_id": map[string]any{"type": "string", "description": "Identifier of the email whose thread needs an event"},
					},
					"required": []string{"mail_id"},
				},
			},
		},
	}
}
