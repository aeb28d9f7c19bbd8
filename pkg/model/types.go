package model

import (
	"time"
)

// Role of a ledger entry. Only the two chat roles are accepted on the wire.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type User struct {
	ID        string    `db:"id"         json:"id"`
	Username  string    `db:"username"   json:"username"`
	Password  string    `db:"password"   json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// MessageMetadata carries optional client- and pipeline-derived flags.
type MessageMetadata struct {
	IsVoice  bool    `json:"isVoice,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Emotion  string  `json:"emotion,omitempty"`
	Memory   bool    `json:"memory,omitempty"`
	AudioURL string  `json:"audioUrl,omitempty"`
}

// MemoryFact is one key/value pair inside a context snapshot.
type MemoryFact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MessageContext is the snapshot of conversational state taken when the
// model call was issued. PreviousTopics is reserved for topic modeling and
// always serializes as an empty list for schema compatibility with stored
// snapshots.
type MessageContext struct {
	EmotionalState string       `json:"emotionalState"`
	PreviousTopics []string     `json:"previousTopics"`
	Memories       []MemoryFact `json:"memories,omitempty"`
}

// Message is one immutable ledger entry.
type Message struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Content   string           `json:"content"`
	Role      Role             `json:"role"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
	Context   *MessageContext  `json:"context,omitempty"`
}

// Memory is one stored user fact. Append-only; duplicate keys are allowed
// and later rows never overwrite earlier ones.
type Memory struct {
	ID        string    `db:"id"         json:"id"`
	UserID    string    `db:"user_id"    json:"userId"`
	Key       string    `db:"key"        json:"key"`
	Value     string    `db:"value"      json:"value"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AssistantProperty is a global self-description fact of the assistant,
// written when the extractor sees a negated property ("you are not X").
type AssistantProperty struct {
	ID        string    `db:"id"         json:"id"`
	Key       string    `db:"key"        json:"key"`
	Value     string    `db:"value"      json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
