package identity

import (
	"context"
	"errors"
	"fmt"

	"onboardflow/employee"
)

var (
	// ErrEmptyIdentifier signals the claim value was empty after normalization.
	// Callers reject these before the gate performs any lookup.
	ErrEmptyIdentifier = errors.New("identity: empty identifier value")
	// ErrInvalidIdentifierType signals an unknown document type.
	ErrInvalidIdentifierType = errors.New("identity: invalid identifier type")
)

// Store resolves an identity claim against the employee directory. A missing
// record is employee.ErrNotFound; anything else is a transport failure.
type Store interface {
	Lookup(ctx context.Context, identifierType IdentifierType, value, jurisdiction string) (employee.Record, error)
}

// Gate resolves identity claims to verification outcomes. It performs exactly
// one store lookup per call and never retries; resubmission is the caller's
// affordance.
type Gate struct {
	store Store
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// Verify normalizes and validates the claim, then resolves it. A lookup
// transport failure comes back as an error so callers never mistake "could
// not check" for "no record". AlreadyOnboarded is decided by the completion
// flag on the returned record, not by a second query.
func (g *Gate) Verify(ctx context.Context, claim Claim) (Outcome, error) {
	claim = claim.Normalize()

	if claim.IdentifierValue == "" {
		return Outcome{}, ErrEmptyIdentifier
	}
	switch claim.IdentifierType {
	case IdentifierNationalID, IdentifierPassport:
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidIdentifierType, claim.IdentifierType)
	}

	rec, err := g.store.Lookup(ctx, claim.IdentifierType, claim.IdentifierValue, claim.Jurisdiction)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return Outcome{Kind: OutcomeNotFound}, nil
		}
		return Outcome{}, fmt.Errorf("identity: lookup: %w", err)
	}

	if rec.Onboarded() {
		return Outcome{Kind: OutcomeAlreadyOnboarded, Record: rec}, nil
	}
	return Outcome{Kind: OutcomeFound, Record: rec}, nil
}
