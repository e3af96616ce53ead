package identity

import (
	"strings"

	"onboardflow/employee"
)

// IdentifierType enumerates the documents a candidate may verify with.
type IdentifierType string

const (
	IdentifierNationalID IdentifierType = "national_id"
	IdentifierPassport   IdentifierType = "passport"
)

// Claim is the candidate's ephemeral identity submission. It exists only for
// the duration of a verification call and is never persisted by the engine.
type Claim struct {
	IdentifierType  IdentifierType
	IdentifierValue string
	Jurisdiction    string
}

// Normalize returns the claim with the identifier value trimmed and
// uppercased. Callers validate the normalized value before any lookup.
func (c Claim) Normalize() Claim {
	c.IdentifierValue = strings.ToUpper(strings.TrimSpace(c.IdentifierValue))
	c.Jurisdiction = strings.ToUpper(strings.TrimSpace(c.Jurisdiction))
	return c
}

// OutcomeKind discriminates the verification result.
type OutcomeKind string

const (
	OutcomeFound            OutcomeKind = "found"
	OutcomeNotFound         OutcomeKind = "not_found"
	OutcomeAlreadyOnboarded OutcomeKind = "already_onboarded"
)

// Outcome carries the verification result. Record is populated for Found and
// AlreadyOnboarded.
type Outcome struct {
	Kind   OutcomeKind
	Record employee.Record
}
