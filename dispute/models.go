package dispute

import "time"

// Status represents the lifecycle of a dispute case.
type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// ReasonCode is the structured reason a candidate contests offer terms.
type ReasonCode string

const (
	ReasonIncorrectPersonalInfo ReasonCode = "incorrect_personal_info"
	ReasonIncorrectCompensation ReasonCode = "incorrect_compensation"
	ReasonIncorrectPosition     ReasonCode = "incorrect_position"
	ReasonIncorrectStartDate    ReasonCode = "incorrect_start_date"
	ReasonOther                 ReasonCode = "other"
)

// Valid reports whether the code is one of the enumerated reasons.
func (c ReasonCode) Valid() bool {
	switch c {
	case ReasonIncorrectPersonalInfo, ReasonIncorrectCompensation,
		ReasonIncorrectPosition, ReasonIncorrectStartDate, ReasonOther:
		return true
	default:
		return false
	}
}

// Record mirrors the disputes table. Reason and detail are immutable after
// creation; only status moves, and only to resolved.
type Record struct {
	ID         string
	EmployeeID string
	OfferID    string
	ReasonCode ReasonCode
	DetailText string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}
