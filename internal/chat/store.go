package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Message is one line of a patient chat session. The conversation agent
// itself lives outside this service; we only persist the transcript.
type Message struct {
	ID        int64
	SessionID string
	Sender    string
	Body      string
	CreatedAt time.Time
}

// Store persists chat transcripts keyed by session.
type Store interface {
	AddMessage(ctx context.Context, sessionID, sender, body string) (*Message, error)
	ListMessages(ctx context.Context, sessionID string) ([]Message, error)
}

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) AddMessage(ctx context.Context, sessionID, sender, body string) (*Message, error) {
	msg := Message{
		SessionID: sessionID,
		Sender:    sender,
		Body:      body,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (session_id, sender, body, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING message_id, created_at
	`, sessionID, sender, body).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}

	return &msg, nil
}

func (s *PgStore) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT message_id, session_id, sender, body, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var result []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}

	return result, rows.Err()
}
