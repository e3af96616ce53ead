package resolution

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"onboardflow/dispute"
	"onboardflow/event"
)

var (
	// ErrSessionResolved signals a turn arrived after the session closed.
	ErrSessionResolved = errors.New("resolution: session already resolved")
	// ErrEmptyMessage signals a blank candidate turn.
	ErrEmptyMessage = errors.New("resolution: empty message")
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SessionRepository is the session data access the service needs.
type SessionRepository interface {
	LockByDispute(ctx context.Context, tx pgx.Tx, disputeID string) (Session, error)
	SetState(ctx context.Context, tx pgx.Tx, sessionID string, state State) error
	AppendMessage(ctx context.Context, tx pgx.Tx, sessionID string, sender Sender, text string, intent *Intent) (Message, error)
	Transcript(ctx context.Context, sessionID string) ([]Message, error)
}

// DisputeResolver closes the dispute case when the session resolves.
type DisputeResolver interface {
	Resolve(ctx context.Context, tx pgx.Tx, disputeID string) (dispute.Record, error)
}

// TimelineWriter appends audit events inside the turn's transaction.
type TimelineWriter interface {
	Append(ctx context.Context, tx pgx.Tx, employeeID, eventType string, actorID *string, payload map[string]any) error
}

// OutboxWriter enqueues notification events inside the turn's transaction.
type OutboxWriter interface {
	Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error
}

// Service runs the turn-based dispute conversation. Each candidate turn is
// classified, answered with a templated reply, and, on a confirmation intent,
// closes the dispute — all inside one transaction.
type Service struct {
	pool       TxBeginner
	sessions   SessionRepository
	disputes   DisputeResolver
	classifier Classifier
	timeline   TimelineWriter
	outbox     OutboxWriter
}

func NewService(pool TxBeginner, sessions SessionRepository, disputes DisputeResolver, classifier Classifier, timeline TimelineWriter, outbox OutboxWriter) *Service {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &Service{
		pool:       pool,
		sessions:   sessions,
		disputes:   disputes,
		classifier: classifier,
		timeline:   timeline,
		outbox:     outbox,
	}
}

// AppendCandidateMessage processes one candidate turn for the dispute.
// The session moves opened -> in_conversation on the first turn and to
// resolved only when the turn classifies as a confirmation. Decline or defer
// turns keep the conversation open indefinitely; human HR follow-up is the
// escape hatch, not a timeout.
func (s *Service) AppendCandidateMessage(ctx context.Context, disputeID, text string) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return TurnResult{}, fmt.Errorf("resolution: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := s.sessions.LockByDispute(ctx, tx, disputeID)
	if err != nil {
		return TurnResult{}, err
	}
	if session.State == StateResolved {
		return TurnResult{}, ErrSessionResolved
	}

	intent := s.classifier.Classify(text)
	if _, err := s.sessions.AppendMessage(ctx, tx, session.ID, SenderCandidate, text, &intent); err != nil {
		return TurnResult{}, err
	}

	reply := ReplyFor(intent)
	if _, err := s.sessions.AppendMessage(ctx, tx, session.ID, SenderAgent, reply, nil); err != nil {
		return TurnResult{}, err
	}

	result := TurnResult{Intent: intent, Reply: reply}

	// The first turn enters conversation before anything else, so the
	// recorded walk is always opened -> in_conversation -> resolved.
	if session.State == StateOpened {
		if err := s.sessions.SetState(ctx, tx, session.ID, StateInConversation); err != nil {
			return TurnResult{}, err
		}
		session.State = StateInConversation
	}

	if intent == IntentConfirmation {
		rec, err := s.disputes.Resolve(ctx, tx, disputeID)
		if err != nil {
			return TurnResult{}, err
		}
		if err := s.sessions.SetState(ctx, tx, session.ID, StateResolved); err != nil {
			return TurnResult{}, err
		}
		if err := s.timeline.Append(ctx, tx, rec.EmployeeID, event.TypeDisputeResolved, nil, map[string]any{
			"dispute_id": rec.ID,
			"offer_id":   rec.OfferID,
			"reason":     string(rec.ReasonCode),
		}); err != nil {
			return TurnResult{}, err
		}
		if err := s.outbox.Enqueue(ctx, tx, event.TopicDisputeResolved, map[string]any{
			"dispute_id":  rec.ID,
			"employee_id": rec.EmployeeID,
		}); err != nil {
			return TurnResult{}, err
		}
		if err := s.outbox.Enqueue(ctx, tx, event.TopicDocumentsUpdatePending, map[string]any{
			"dispute_id":  rec.ID,
			"employee_id": rec.EmployeeID,
		}); err != nil {
			return TurnResult{}, err
		}
		result.Resolved = true
	}

	if err := tx.Commit(ctx); err != nil {
		return TurnResult{}, fmt.Errorf("resolution: commit turn: %w", err)
	}
	return result, nil
}

// Transcript exposes the ordered session transcript for a dispute.
func (s *Service) Transcript(ctx context.Context, disputeID string) ([]Message, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolution: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := s.sessions.LockByDispute(ctx, tx, disputeID)
	if err != nil {
		return nil, err
	}
	messages, err := s.sessions.Transcript(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("resolution: commit read: %w", err)
	}
	return messages, nil
}
