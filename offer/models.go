package offer

import "time"

// Decision is the candidate's one-time choice on an offer.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionAccepted Decision = "accepted"
	DecisionDisputed Decision = "disputed"
)

// Field is one label/value pair inside a review category. Values arrive from
// the offer content service and are treated as opaque display data.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ReviewCategory groups contractual terms for human review. Order is fixed by
// the content service and preserved end to end.
type ReviewCategory struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Record mirrors the offers table. Categories are stored as a jsonb projection
// and never recomputed by the engine.
type Record struct {
	ID         string
	EmployeeID string
	Categories []ReviewCategory
	Decision   Decision
	DecidedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
