package resolution

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals no session exists for the dispute.
	ErrNotFound = errors.New("resolution: session not found")
)

// Repository provides access to resolution sessions and their append-only
// transcripts. Mutations take the caller's transaction.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSession opens a session for a freshly created dispute.
func (r *Repository) CreateSession(ctx context.Context, tx pgx.Tx, sessionID, disputeID string) (Session, error) {
	const query = `
		INSERT INTO resolution_sessions (id, dispute_id, state)
		VALUES ($1, $2, 'opened')
		RETURNING id, dispute_id, state::text, created_at, updated_at
	`

	var s Session
	if err := tx.QueryRow(ctx, query, sessionID, disputeID).Scan(&s.ID, &s.DisputeID, &s.State, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Session{}, fmt.Errorf("resolution: create session: %w", err)
	}
	return s, nil
}

// LockByDispute locks the dispute's session row for the duration of the
// caller's transaction so concurrent turns serialize.
func (r *Repository) LockByDispute(ctx context.Context, tx pgx.Tx, disputeID string) (Session, error) {
	const query = `
		SELECT id, dispute_id, state::text, created_at, updated_at
		FROM resolution_sessions
		WHERE dispute_id = $1
		FOR UPDATE
	`

	var s Session
	err := tx.QueryRow(ctx, query, disputeID).Scan(&s.ID, &s.DisputeID, &s.State, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("resolution: lock session: %w", err)
	}
	return s, nil
}

// SetState advances the session state.
func (r *Repository) SetState(ctx context.Context, tx pgx.Tx, sessionID string, state State) error {
	if _, err := tx.Exec(ctx, `
		UPDATE resolution_sessions
		SET state = $1::session_state, updated_at = now()
		WHERE id = $2
	`, string(state), sessionID); err != nil {
		return fmt.Errorf("resolution: set state: %w", err)
	}
	return nil
}

// AppendMessage inserts one transcript entry. Intent is recorded for
// candidate turns so each templated reply stays explainable after the fact.
func (r *Repository) AppendMessage(ctx context.Context, tx pgx.Tx, sessionID string, sender Sender, text string, intent *Intent) (Message, error) {
	const query = `
		INSERT INTO session_messages (session_id, sender, text, intent)
		VALUES ($1, $2::message_sender, $3, $4)
		RETURNING id, session_id, sender::text, text, intent, created_at
	`

	var (
		m         Message
		intentVal any
	)
	if intent != nil {
		intentVal = string(*intent)
	}
	if err := tx.QueryRow(ctx, query, sessionID, string(sender), text, intentVal).Scan(
		&m.ID, &m.SessionID, &m.Sender, &m.Text, &m.Intent, &m.CreatedAt,
	); err != nil {
		return Message{}, fmt.Errorf("resolution: append message: %w", err)
	}
	return m, nil
}

// Transcript returns the full ordered transcript for a session.
func (r *Repository) Transcript(ctx context.Context, sessionID string) ([]Message, error) {
	const query = `
		SELECT id, session_id, sender::text, text, intent, created_at
		FROM session_messages
		WHERE session_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolution: transcript: %w", err)
	}
	defer rows.Close()

	out := make([]Message, 0, 16)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Text, &m.Intent, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("resolution: scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolution: iterate messages: %w", err)
	}
	return out, nil
}
