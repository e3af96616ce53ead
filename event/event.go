// Package event provides the append-only timeline and the transactional
// outbox every journey mutation writes to. Timeline rows are the audit trail;
// outbox rows feed the notification dispatcher. Both are written inside the
// caller's transaction so they commit or vanish together with the state change.
package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Outbox topics consumed by the notification collaborator.
const (
	TopicCandidateNotFound      = "onboarding.candidate_not_found"
	TopicDisputeOpened          = "onboarding.dispute_opened"
	TopicDisputeResolved        = "onboarding.dispute_resolved"
	TopicDocumentsUpdatePending = "onboarding.documents_update_pending"
	TopicOnboardingComplete     = "onboarding.complete"
)

// Timeline event types.
const (
	TypeCandidateVerified  = "CANDIDATE_VERIFIED"
	TypeOfferAccepted      = "OFFER_ACCEPTED"
	TypeOfferDisputed      = "OFFER_DISPUTED"
	TypeOfferReopened      = "OFFER_REOPENED"
	TypeDisputeResolved    = "DISPUTE_RESOLVED"
	TypePackageCreated     = "PACKAGE_CREATED"
	TypeDocumentSigned     = "DOCUMENT_SIGNED"
	TypeDocumentCorrected  = "DOCUMENT_CORRECTED"
	TypeOnboardingComplete = "ONBOARDING_COMPLETE"
)

// TimelineWriter appends immutable business events for an employee.
type TimelineWriter struct{}

func NewTimelineWriter() *TimelineWriter {
	return &TimelineWriter{}
}

// Append inserts one timeline event inside the active transaction. Events are
// never updated or deleted.
func (w *TimelineWriter) Append(ctx context.Context, tx pgx.Tx, employeeID, eventType string, actorID *string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("event: marshal timeline payload: %w", err)
	}

	var actor any
	if actorID != nil && *actorID != "" {
		actor = *actorID
	}

	const q = `
		INSERT INTO timeline_events (employee_id, type, payload, actor_id)
		VALUES ($1, $2, $3::jsonb, $4::uuid)
	`
	if _, err := tx.Exec(ctx, q, employeeID, eventType, body, actor); err != nil {
		return fmt.Errorf("event: insert timeline event: %w", err)
	}
	return nil
}

// OutboxWriter enqueues notification messages for asynchronous delivery.
type OutboxWriter struct{}

func NewOutboxWriter() *OutboxWriter {
	return &OutboxWriter{}
}

// Enqueue inserts one outbox row inside the active transaction.
func (w *OutboxWriter) Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("event: marshal outbox payload: %w", err)
	}

	const q = `INSERT INTO outbox (topic, payload) VALUES ($1, $2::jsonb)`
	if _, err := tx.Exec(ctx, q, topic, body); err != nil {
		return fmt.Errorf("event: enqueue outbox: %w", err)
	}
	return nil
}
