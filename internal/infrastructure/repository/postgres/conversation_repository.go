package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/partdesk/parts-assistant/internal/core/domain"
)

// ConversationRepository persists chat threads and their messages.
type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082902)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS conversation_threads (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_messages (
	id TEXT PRIMARY KEY,
	thread_id TEXT NOT NULL REFERENCES conversation_threads(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversation_messages_thread ON conversation_messages(thread_id, created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ConversationRepository) EnsureThread(ctx context.Context, threadID string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversation_threads (id, created_at)
VALUES ($1, $2)
ON CONFLICT (id) DO NOTHING
`, threadID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ensure thread: %w", err)
	}
	return nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, message domain.ChatMessage) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversation_messages (id, thread_id, role, content, created_at)
VALUES ($1,$2,$3,$4,$5)
`, message.ID, message.ThreadID, message.Role, message.Content, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ListMessages returns the last limit messages of the thread in
// chronological order.
func (r *ConversationRepository) ListMessages(ctx context.Context, threadID string, limit int) ([]domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, thread_id, role, content, created_at FROM (
	SELECT id, thread_id, role, content, created_at
	FROM conversation_messages
	WHERE thread_id = $1
	ORDER BY created_at DESC
	LIMIT $2
) recent
ORDER BY created_at ASC
`, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (r *ConversationRepository) ResetThread(ctx context.Context, threadID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM conversation_messages WHERE thread_id = $1`, threadID)
	if err != nil {
		return fmt.Errorf("reset thread: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		var exists bool
		err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM conversation_threads WHERE id = $1)`, threadID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check thread: %w", err)
		}
		if !exists {
			return domain.WrapError(domain.ErrThreadNotFound, "reset_thread", fmt.Errorf("thread %s", threadID))
		}
	}
	return nil
}
