package offer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals no pending or historical offer exists for the employee.
	ErrNotFound = errors.New("offer: not found")
	// ErrAlreadyDecided signals the offer has left the pending state; a decided
	// offer is immutable.
	ErrAlreadyDecided = errors.New("offer: already decided")
)

// Repository provides access to offer rows. Reads go against the pool so they
// always reflect the latest committed state; decision writes take the
// caller's transaction and lock the row first.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetReview returns the active offer's categorized terms for display. It is
// side-effect free and safe to call repeatedly.
func (r *Repository) GetReview(ctx context.Context, employeeID string) (Record, error) {
	const query = `
		SELECT id, employee_id, categories, decision::text, decided_at, created_at, updated_at
		FROM offers
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		rec  Record
		body []byte
	)
	err := r.pool.QueryRow(ctx, query, employeeID).Scan(
		&rec.ID,
		&rec.EmployeeID,
		&body,
		&rec.Decision,
		&rec.DecidedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("offer: query review: %w", err)
	}

	if err := json.Unmarshal(body, &rec.Categories); err != nil {
		return Record{}, fmt.Errorf("offer: decode categories: %w", err)
	}
	return rec, nil
}

// LockPending locks the employee's latest offer row and returns its id,
// failing when the offer has already been decided. The lock is held until the
// surrounding transaction completes, so a racing decision blocks here and
// then observes the terminal state.
func (r *Repository) LockPending(ctx context.Context, tx pgx.Tx, employeeID string) (string, error) {
	const query = `
		SELECT id, decision::text
		FROM offers
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`

	var (
		offerID  string
		decision Decision
	)
	if err := tx.QueryRow(ctx, query, employeeID).Scan(&offerID, &decision); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("offer: lock pending: %w", err)
	}
	if decision != DecisionPending {
		return "", fmt.Errorf("%w: offer %s is %s", ErrAlreadyDecided, offerID, decision)
	}
	return offerID, nil
}

// MarkDecided records the terminal decision on a locked offer.
func (r *Repository) MarkDecided(ctx context.Context, tx pgx.Tx, offerID string, decision Decision) error {
	if decision != DecisionAccepted && decision != DecisionDisputed {
		return fmt.Errorf("offer: %q is not a terminal decision", decision)
	}
	tag, err := tx.Exec(ctx, `
		UPDATE offers
		SET decision = $1::offer_decision, decided_at = now(), updated_at = now()
		WHERE id = $2 AND decision = 'pending'
	`, string(decision), offerID)
	if err != nil {
		return fmt.Errorf("offer: mark decided: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

// Insert stores a freshly generated offer in the pending state. Used when an
// external re-review regenerates terms after a resolved dispute.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, id, employeeID string, categories []ReviewCategory) (Record, error) {
	body, err := json.Marshal(categories)
	if err != nil {
		return Record{}, fmt.Errorf("offer: encode categories: %w", err)
	}

	const query = `
		INSERT INTO offers (id, employee_id, categories, decision)
		VALUES ($1, $2, $3::jsonb, 'pending')
		RETURNING id, employee_id, decision::text, decided_at, created_at, updated_at
	`

	var rec Record
	if err := tx.QueryRow(ctx, query, id, employeeID, body).Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.Decision,
		&rec.DecidedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return Record{}, fmt.Errorf("offer: insert: %w", err)
	}
	rec.Categories = categories
	return rec, nil
}
