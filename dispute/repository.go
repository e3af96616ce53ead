package dispute

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the dispute does not exist.
	ErrNotFound = errors.New("dispute: not found")
	// ErrAlreadyResolved signals the case reached its terminal status.
	ErrAlreadyResolved = errors.New("dispute: already resolved")
	// ErrDetailRequired signals the "other" reason was submitted without detail.
	ErrDetailRequired = errors.New("dispute: detail text required for reason other")
	// ErrInvalidReason signals an unknown reason code.
	ErrInvalidReason = errors.New("dispute: invalid reason code")
)

// CreateParams carries the immutable content of a new dispute case.
type CreateParams struct {
	ID         string
	EmployeeID string
	OfferID    string
	ReasonCode ReasonCode
	DetailText string
}

// Validate enforces the reason taxonomy before any row is written.
func (p CreateParams) Validate() error {
	if !p.ReasonCode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidReason, p.ReasonCode)
	}
	if p.ReasonCode == ReasonOther && strings.TrimSpace(p.DetailText) == "" {
		return ErrDetailRequired
	}
	return nil
}

// Repository provides access to dispute cases. Creation and resolution take
// the caller's transaction so they commit together with the offer decision
// and the session writes.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new open case. No dedup is attempted here: a second case
// for the same offer is the caller's decision to make.
func (r *Repository) Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Record, error) {
	if err := params.Validate(); err != nil {
		return Record{}, err
	}

	const query = `
		INSERT INTO disputes (id, employee_id, offer_id, reason_code, detail_text, status)
		VALUES ($1, $2, $3, $4::dispute_reason, $5, 'open')
		RETURNING id, employee_id, offer_id, reason_code::text, detail_text, status::text, created_at, updated_at, resolved_at
	`

	var rec Record
	if err := tx.QueryRow(ctx, query,
		params.ID, params.EmployeeID, params.OfferID, string(params.ReasonCode), params.DetailText,
	).Scan(
		&rec.ID, &rec.EmployeeID, &rec.OfferID, &rec.ReasonCode, &rec.DetailText,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt, &rec.ResolvedAt,
	); err != nil {
		return Record{}, fmt.Errorf("dispute: create: %w", err)
	}
	return rec, nil
}

// GetByID fetches the latest committed case.
func (r *Repository) GetByID(ctx context.Context, disputeID string) (Record, error) {
	const query = `
		SELECT id, employee_id, offer_id, reason_code::text, detail_text, status::text, created_at, updated_at, resolved_at
		FROM disputes
		WHERE id = $1
	`

	var rec Record
	err := r.pool.QueryRow(ctx, query, disputeID).Scan(
		&rec.ID, &rec.EmployeeID, &rec.OfferID, &rec.ReasonCode, &rec.DetailText,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt, &rec.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("dispute: query by id: %w", err)
	}
	return rec, nil
}

// Resolve marks an open case resolved inside the caller's transaction. A case
// that is already resolved stays untouched and reports ErrAlreadyResolved.
func (r *Repository) Resolve(ctx context.Context, tx pgx.Tx, disputeID string) (Record, error) {
	const query = `
		UPDATE disputes
		SET status = 'resolved', resolved_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'open'
		RETURNING id, employee_id, offer_id, reason_code::text, detail_text, status::text, created_at, updated_at, resolved_at
	`

	var rec Record
	err := tx.QueryRow(ctx, query, disputeID).Scan(
		&rec.ID, &rec.EmployeeID, &rec.OfferID, &rec.ReasonCode, &rec.DetailText,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt, &rec.ResolvedAt,
	)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("dispute: resolve: %w", err)
	}

	var status Status
	if err := tx.QueryRow(ctx, `SELECT status::text FROM disputes WHERE id = $1`, disputeID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("dispute: resolve fetch: %w", err)
	}
	if status == StatusResolved {
		return Record{}, ErrAlreadyResolved
	}
	return Record{}, ErrNotFound
}
