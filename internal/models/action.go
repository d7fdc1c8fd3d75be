package models

// Action types
const (
	ActionSendEmail   = "send_email"
	ActionCreateEvent = "create_event"
)

// Action statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusModified  = "modified"
	StatusExecuted  = "executed"
	StatusFailed    = "failed"
)

// Action is a proposed, reviewable side effect awaiting or past human
// approval. The payload is the sole editable surface.
type Action struct {
	ActionID string         `json:"action_id" bson:"_id"`
	MailID   string         `json:"mail_id,omitempty" bson:"mailId,omitempty"`
	Type     string         `json:"type" bson:"type"`
	Status   string         `json:"status" bson:"status"`
	Payload  map[string]any `json:"payload" bson:"payload"`
	Result   map[string]any `json:"result,omitempty" bson:"result,omitempty"`
}

// EmailDraft is the draft capability's output.
type EmailDraft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ToPayload converts the draft into an action payload.
func (d EmailDraft) ToPayload() map[string]any {
	return map[string]any{
		"to":      d.To,
		"subject": d.Subject,
		"body":    d.Body,
	}
}

// ProposedEvent is the propose-event capability's output. ProposedTime is an
// ISO-8601 timestamp string.
type ProposedEvent struct {
	Title        string `json:"title"`
	ProposedTime string `json:"proposed_time"`
	Notes        string `json:"notes"`
}

// ToPayload converts the event into an action payload.
func (p ProposedEvent) ToPayload() map[string]any {
	return map[string]any{
		"title":         p.Title,
		"proposed_time": p.ProposedTime,
		"notes":         p.Notes,
	}
}
