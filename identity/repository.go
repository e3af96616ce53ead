package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"onboardflow/employee"
)

// PGStore resolves claims against the employees table. One query returns the
// record together with its completion flag so existence and completeness are
// read from the same snapshot.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Lookup(ctx context.Context, identifierType IdentifierType, value, jurisdiction string) (employee.Record, error) {
	var column string
	switch identifierType {
	case IdentifierNationalID:
		column = "national_id"
	case IdentifierPassport:
		column = "passport_no"
	default:
		return employee.Record{}, fmt.Errorf("%w: %q", ErrInvalidIdentifierType, identifierType)
	}

	query := fmt.Sprintf(`
		SELECT id, full_name, email, phone, jurisdiction, employment_type, status::text, onboarded_at, created_at, updated_at
		FROM employees
		WHERE %s = $1 AND jurisdiction = $2
	`, column)

	var rec employee.Record
	err := s.pool.QueryRow(ctx, query, value, jurisdiction).Scan(
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
			return employee.Record{}, employee.ErrNotFound
		}
		return employee.Record{}, fmt.Errorf("identity: lookup %s: %w", identifierType, err)
	}

	return rec, nil
}
