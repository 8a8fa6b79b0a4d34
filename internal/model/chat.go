package model

import "time"

// Conversation stage tags.  Only one multi-turn flow exists today.
const (
	StageModificationConfirm = "appointment_modification_confirmation"
)

// ConversationState is the durable record of a pending multi-turn chat
// operation, keyed by user id.  At most one open state exists per user;
// saving a new state overwrites any prior one.  Attempts counts
// unrecognized replies while awaiting confirmation; CreatedAt drives the
// staleness check on read.
type ConversationState struct {
	UserID    uint64    // conversation_states.user_id
	Stage     string    // conversation_states.stage
	Payload   []byte    // conversation_states.payload (JSON)
	Attempts  int       // conversation_states.attempts
	CreatedAt time.Time // conversation_states.created_at
}

// ChatMessage is one turn of the assistant conversation: the user's message,
// the generated response and routing metadata.  The table is append-only and
// doubles as the substrate conversation context is rebuilt from (the last N
// rows) on every request; there is no server-side session object.
type ChatMessage struct {
	ID        uint64    // chat_messages.id
	GarageID  uint64    // chat_messages.garage_id
	UserID    uint64    // chat_messages.user_id
	Message   string    // chat_messages.message
	Response  string    // chat_messages.response
	Intent    string    // chat_messages.intent
	Entities  []byte    // chat_messages.entities (JSON)
	RequestID string    // chat_messages.request_id
	CreatedAt time.Time // chat_messages.created_at
}
