package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the employee record does not exist.
	ErrNotFound = errors.New("employee: not found")
	// ErrInvalidTransition signals the requested edge is not in the journey table.
	ErrInvalidTransition = errors.New("employee: invalid status transition")
)

// StaleStatusError reports a compare-and-transition mismatch: the persisted
// status no longer matches what the caller expected.
type StaleStatusError struct {
	EmployeeID string
	Expected   Status
	Current    Status
}

func (e *StaleStatusError) Error() string {
	return fmt.Sprintf("employee: stale status for %s: expected %s, have %s", e.EmployeeID, e.Expected, e.Current)
}

// Repository provides row-level access to employee records. All mutations run
// inside a caller-owned transaction so they commit atomically with the
// timeline and outbox writes that accompany every journey step.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID fetches the latest committed employee record.
func (r *Repository) GetByID(ctx context.Context, id string) (Record, error) {
	const query = `
		SELECT id, full_name, email, phone, jurisdiction, employment_type, status::text, onboarded_at, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var rec Record
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.FullName,
		&rec.Email,
		&rec.Phone,
		&rec.Jurisdiction,
		&rec.EmploymentType,
		&rec.Status,
		&rec.OnboardedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("employee: query by id: %w", err)
	}

	return rec, nil
}

// Transition moves the employee from the expected status to the next one.
// The row is locked, the persisted status re-checked against the expectation,
// and the edge validated against the journey table before the write happens,
// so two racing callers cannot both advance the same record.
func (r *Repository) Transition(ctx context.Context, tx pgx.Tx, employeeID string, from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	var current Status
	if err := tx.QueryRow(ctx, `SELECT status::text FROM employees WHERE id = $1 FOR UPDATE`, employeeID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("employee: fetch current status: %w", err)
	}
	if current != from {
		return &StaleStatusError{EmployeeID: employeeID, Expected: from, Current: current}
	}

	const updateSQL = `
		UPDATE employees
		SET status = $1::employee_status,
		    onboarded_at = CASE WHEN $1 IN ('onboarding_complete','already_onboarded')
		                        THEN COALESCE(onboarded_at, now())
		                        ELSE onboarded_at END,
		    updated_at = now()
		WHERE id = $2
	`
	if _, err := tx.Exec(ctx, updateSQL, string(to), employeeID); err != nil {
		return fmt.Errorf("employee: update status: %w", err)
	}

	return nil
}
