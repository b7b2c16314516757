package model

import "time"

const DefaultChannel = "email"

type Interaction struct {
	ID         int64     `json:"id" bson:"_id"`
	AccountID  int64     `json:"account_id" bson:"accountId"`
	ContactID  *int64    `json:"contact_id" bson:"contactId,omitempty"`
	Channel    string    `json:"channel" bson:"channel"` // "email", "call", "chat", "meeting"
	Content    string    `json:"content" bson:"content"`
	Summary    string    `json:"summary" bson:"summary"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	SourceFile string    `json:"source_file" bson:"sourceFile"`
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updatedAt"`

	// Populated by the service layer, never stored with the interaction.
	Insight *Insight `json:"insight" bson:"-"`
}

// InteractionCreate is the request body for POST /interactions.
type InteractionCreate struct {
	AccountID int64      `json:"account_id"`
	ContactID *int64     `json:"contact_id"`
	Channel   string     `json:"channel"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp"`
}
