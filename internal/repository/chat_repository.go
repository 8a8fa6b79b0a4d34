// This file holds the persistence behind the chat router: the append-only
// chat_messages audit log and the conversation_states table that carries a
// pending multi-turn flow across stateless requests.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/garage-hub/internal/model"
)

// ChatMessageRepo appends and replays assistant conversation turns.
type ChatMessageRepo struct{ DB *sql.DB }

func NewChatMessageRepo(db *sql.DB) *ChatMessageRepo { return &ChatMessageRepo{DB: db} }

// Insert appends one conversation turn. The log is append-only; there is no
// update or delete path.
func (r *ChatMessageRepo) Insert(ctx context.Context, m *model.ChatMessage) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO chat_messages (garage_id, user_id, message, response, intent, entities, request_id)
		 VALUES (?,?,?,?,?,?,?)`,
		m.GarageID, m.UserID, m.Message, m.Response, m.Intent, m.Entities, m.RequestID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListRecent returns the user's last n turns, newest first. Conversation
// context is rebuilt from these rows on every request; no session object
// exists server-side.
func (r *ChatMessageRepo) ListRecent(ctx context.Context, userID uint64, n int) ([]*model.ChatMessage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, garage_id, user_id, message, response, intent, entities, request_id, created_at
		 FROM chat_messages WHERE user_id=? ORDER BY id DESC LIMIT ?`, userID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.ChatMessage
	for rows.Next() {
		m := new(model.ChatMessage)
		if err := rows.Scan(&m.ID, &m.GarageID, &m.UserID, &m.Message, &m.Response,
			&m.Intent, &m.Entities, &m.RequestID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ConversationStateRepo is the durable store for pending multi-turn chat
// operations. One row per user; Save overwrites any prior state so nested
// flows cannot stack.
type ConversationStateRepo struct{ DB *sql.DB }

func NewConversationStateRepo(db *sql.DB) *ConversationStateRepo {
	return &ConversationStateRepo{DB: db}
}

// Get returns the user's pending state, or nil when none exists.
func (r *ConversationStateRepo) Get(ctx context.Context, userID uint64) (*model.ConversationState, error) {
	var s model.ConversationState
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id, stage, payload, attempts, created_at
		 FROM conversation_states WHERE user_id=? LIMIT 1`, userID).
		Scan(&s.UserID, &s.Stage, &s.Payload, &s.Attempts, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save upserts the user's pending state, resetting the attempt counter and
// the creation time.
func (r *ConversationStateRepo) Save(ctx context.Context, userID uint64, stage string, payload []byte) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO conversation_states (user_id, stage, payload, attempts, created_at)
		 VALUES (?,?,?,0,UTC_TIMESTAMP())
		 ON DUPLICATE KEY UPDATE stage=VALUES(stage), payload=VALUES(payload), attempts=0, created_at=UTC_TIMESTAMP()`,
		userID, stage, payload)
	return err
}

// IncrementAttempts bumps the unrecognized-reply counter and returns the new
// value.
func (r *ConversationStateRepo) IncrementAttempts(ctx context.Context, userID uint64) (int, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE conversation_states SET attempts=attempts+1 WHERE user_id=?", userID); err != nil {
		return 0, err
	}
	var attempts int
	err := r.DB.QueryRowContext(ctx,
		"SELECT attempts FROM conversation_states WHERE user_id=?", userID).Scan(&attempts)
	return attempts, err
}

// Clear removes the user's pending state. Clearing an absent state is not
// an error.
func (r *ConversationStateRepo) Clear(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM conversation_states WHERE user_id=?", userID)
	return err
}
