package employee

import "time"

// Status is the canonical journey state of an employee record. Only the
// onboarding orchestrator advances it; every other component reads it as a
// precondition and never caches it beyond a single operation.
type Status string

const (
	StatusAwaitingVerification Status = "awaiting_verification"
	StatusOfferPendingReview   Status = "offer_pending_review"
	StatusOfferAccepted        Status = "offer_accepted"
	StatusOfferDisputed        Status = "offer_disputed"
	StatusDocumentsSigning     Status = "documents_signing"
	StatusOnboardingComplete   Status = "onboarding_complete"
	StatusAlreadyOnboarded     Status = "already_onboarded"
)

// validNext enumerates the legal forward edges of the journey state machine.
// Terminal states have no entry.
var validNext = map[Status][]Status{
	StatusAwaitingVerification: {StatusOfferPendingReview, StatusAlreadyOnboarded},
	StatusOfferPendingReview:   {StatusOfferAccepted, StatusOfferDisputed},
	StatusOfferAccepted:        {StatusDocumentsSigning},
	StatusOfferDisputed:        {StatusOfferPendingReview},
	StatusDocumentsSigning:     {StatusOnboardingComplete},
}

// CanTransition reports whether from -> to is a legal journey edge.
func CanTransition(from, to Status) bool {
	for _, next := range validNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing edges.
func (s Status) Terminal() bool {
	return len(validNext[s]) == 0
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusAwaitingVerification, StatusOfferPendingReview, StatusOfferAccepted,
		StatusOfferDisputed, StatusDocumentsSigning, StatusOnboardingComplete,
		StatusAlreadyOnboarded:
		return true
	default:
		return false
	}
}

// Record mirrors the employees table columns touched by the engine. It stays
// free of JSON annotations so different presentation layers can reuse it.
type Record struct {
	ID             string
	FullName       string
	Email          string
	Phone          *string
	Jurisdiction   string
	EmploymentType string
	Status         Status
	OnboardedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Onboarded is the completion flag the identity gate inspects. It is carried
// on the record itself so "exists" and "is complete" come from one lookup.
func (r Record) Onboarded() bool {
	return r.OnboardedAt != nil && !r.OnboardedAt.IsZero()
}
