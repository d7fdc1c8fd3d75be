package models

// ChatMessage is one role-tagged turn in a conversation transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatSource points at an email the responder used to ground its answer.
type ChatSource struct {
	MailID   string  `json:"mail_id"`
	ThreadID string  `json:"thread_id"`
	Subject  string  `json:"subject,omitempty"`
	Snippet  string  `json:"snippet"`
	Score    float64 `json:"score"`
}

// ChatReply is the responder's answer for the newest user turn, plus any
// artifacts produced along the way.
type ChatReply struct {
	Answer     string         `json:"answer"`
	References []ChatSource   `json:"references"`
	Draft      *EmailDraft    `json:"draft,omitempty"`
	Event      *ProposedEvent `json:"event,omitempty"`
}
