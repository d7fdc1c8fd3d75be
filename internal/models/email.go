package models

import (
	"time"
)

// Email is one stored message. Immutable once inserted; thread membership is
// by shared ThreadID and ordering within a thread is by ReceivedAt ascending.
type Email struct {
	MailID     string    `json:"mail_id" bson:"_id"`
	ExternalID string    `json:"external_id,omitempty" bson:"externalId,omitempty"`
	ThreadID   string    `json:"thread_id" bson:"threadId"`
	FromName   string    `json:"from_name,omitempty" bson:"fromName,omitempty"`
	FromEmail  string    `json:"from_email" bson:"fromEmail"`
	To         []string  `json:"to" bson:"to"`
	Cc         []string  `json:"cc" bson:"cc"`
	Subject    string    `json:"subject,omitempty" bson:"subject,omitempty"`
	Body       string    `json:"body" bson:"body"`
	ReceivedAt time.Time `json:"received_at" bson:"receivedAt"`
}

// Sender renders the From header the way prompts and index entries expect it.
func (e *Email) Sender() string {
	if e.FromName != "" {
		return e.FromName + " <" + e.FromEmail + ">"
	}
	return e.FromEmail
}

// Summary is a generated recap of a thread. Inserting one requires the thread
// to already have at least one stored email.
type Summary struct {
	SummaryID string    `json:"summary_id" bson:"_id"`
	ThreadID  string    `json:"thread_id" bson:"threadId"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}
