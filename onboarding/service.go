// Package onboarding hosts the lifecycle orchestrator: the only component
// that advances an employee's canonical journey state. Every mutation is one
// transaction built as lock, precondition check, write, timeline append,
// outbox enqueue, commit — so concurrent tabs, retried requests, and HR-side
// actions cannot produce lost updates.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"onboardflow/dispute"
	"onboardflow/employee"
	"onboardflow/event"
	"onboardflow/identity"
	"onboardflow/offer"
	"onboardflow/resolution"
	"onboardflow/signing"
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// IdentityGate resolves identity claims (identity.Gate).
type IdentityGate interface {
	Verify(ctx context.Context, claim identity.Claim) (identity.Outcome, error)
}

// EmployeeStore is the journey-state access the orchestrator needs.
type EmployeeStore interface {
	GetByID(ctx context.Context, id string) (employee.Record, error)
	Transition(ctx context.Context, tx pgx.Tx, employeeID string, from, to employee.Status) error
}

// OfferStore is the offer access the orchestrator needs.
type OfferStore interface {
	GetReview(ctx context.Context, employeeID string) (offer.Record, error)
	LockPending(ctx context.Context, tx pgx.Tx, employeeID string) (string, error)
	MarkDecided(ctx context.Context, tx pgx.Tx, offerID string, decision offer.Decision) error
	Insert(ctx context.Context, tx pgx.Tx, id, employeeID string, categories []offer.ReviewCategory) (offer.Record, error)
}

// DisputeStore creates and reads dispute cases.
type DisputeStore interface {
	Create(ctx context.Context, tx pgx.Tx, params dispute.CreateParams) (dispute.Record, error)
	GetByID(ctx context.Context, disputeID string) (dispute.Record, error)
}

// SessionStore opens resolution sessions alongside dispute creation.
type SessionStore interface {
	CreateSession(ctx context.Context, tx pgx.Tx, sessionID, disputeID string) (resolution.Session, error)
}

// PackageStore is the document-package access the orchestrator needs.
type PackageStore interface {
	CreatePackage(ctx context.Context, tx pgx.Tx, packageID, employeeID string, specs []signing.ItemSpec) (signing.Package, error)
	ItemsLocked(ctx context.Context, tx pgx.Tx, packageID string) ([]signing.DocumentItem, error)
	PackageEmployee(ctx context.Context, tx pgx.Tx, packageID string) (string, error)
	PackageForEmployee(ctx context.Context, employeeID string) (string, error)
	MarkSigned(ctx context.Context, tx pgx.Tx, itemID string) (signing.DocumentItem, error)
	ResetPending(ctx context.Context, tx pgx.Tx, itemID string) (signing.DocumentItem, error)
	Snapshot(ctx context.Context, packageID string) ([]signing.DocumentItem, error)
}

// PackageGenerator is the external document generation collaborator, invoked
// exactly once per acceptance (plus explicit retries after a failure).
type PackageGenerator interface {
	GeneratePackage(ctx context.Context, employeeID string) ([]signing.ItemSpec, error)
}

// TimelineWriter appends audit events inside the orchestrator's transactions.
type TimelineWriter interface {
	Append(ctx context.Context, tx pgx.Tx, employeeID, eventType string, actorID *string, payload map[string]any) error
}

// OutboxWriter enqueues notification events inside the orchestrator's
// transactions.
type OutboxWriter interface {
	Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error
}

// Service is the lifecycle orchestrator.
type Service struct {
	pool      TxBeginner
	gate      IdentityGate
	employees EmployeeStore
	offers    OfferStore
	disputes  DisputeStore
	sessions  SessionStore
	packages  PackageStore
	generator PackageGenerator
	timeline  TimelineWriter
	outbox    OutboxWriter

	idGenerator func() string
	now         func() time.Time
}

func NewService(
	pool TxBeginner,
	gate IdentityGate,
	employees EmployeeStore,
	offers OfferStore,
	disputes DisputeStore,
	sessions SessionStore,
	packages PackageStore,
	generator PackageGenerator,
	timeline TimelineWriter,
	outbox OutboxWriter,
) *Service {
	return &Service{
		pool:        pool,
		gate:        gate,
		employees:   employees,
		offers:      offers,
		disputes:    disputes,
		sessions:    sessions,
		packages:    packages,
		generator:   generator,
		timeline:    timeline,
		outbox:      outbox,
		idGenerator: uuid.NewString,
		now:         time.Now,
	}
}

// WithIDGenerator overrides id generation, for tests.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGenerator = gen
	return s
}

// VerifyCandidate resolves an identity claim and advances the journey.
// Found moves awaiting_verification to offer_pending_review; a record whose
// completion flag is set lands in the terminal already_onboarded state.
// NotFound leaves the journey untouched and emits the candidate-not-found
// notification exactly once per call.
func (s *Service) VerifyCandidate(ctx context.Context, claim identity.Claim) (identity.Outcome, error) {
	outcome, err := s.gate.Verify(ctx, claim)
	if err != nil {
		if errors.Is(err, identity.ErrEmptyIdentifier) || errors.Is(err, identity.ErrInvalidIdentifierType) {
			return identity.Outcome{}, translate(err)
		}
		return identity.Outcome{}, &Error{Kind: KindTransport, Message: "identity check unavailable; try again", cause: err}
	}

	switch outcome.Kind {
	case identity.OutcomeNotFound:
		if err := s.emitCandidateNotFound(ctx, claim); err != nil {
			return identity.Outcome{}, translate(err)
		}
		return outcome, nil

	case identity.OutcomeFound:
		if outcome.Record.Status != employee.StatusAwaitingVerification {
			// Re-verification from a second tab or a resumed session: the
			// journey already advanced, nothing to transition.
			return outcome, nil
		}
		if err := s.advanceVerified(ctx, outcome.Record.ID, employee.StatusOfferPendingReview); err != nil {
			return identity.Outcome{}, translate(err)
		}
		return outcome, nil

	case identity.OutcomeAlreadyOnboarded:
		if outcome.Record.Status == employee.StatusAwaitingVerification {
			if err := s.advanceVerified(ctx, outcome.Record.ID, employee.StatusAlreadyOnboarded); err != nil {
				return identity.Outcome{}, translate(err)
			}
		}
		return outcome, nil
	}

	return identity.Outcome{}, &Error{Kind: KindInternal, Message: "internal error", cause: fmt.Errorf("onboarding: unknown verification outcome %q", outcome.Kind)}
}

func (s *Service) emitCandidateNotFound(ctx context.Context, claim identity.Claim) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("onboarding: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// The claim itself is ephemeral and never persisted; the notification
	// carries only what HR needs to follow up.
	if err := s.outbox.Enqueue(ctx, tx, event.TopicCandidateNotFound, map[string]any{
		"identifier_type": string(claim.IdentifierType),
		"jurisdiction":    claim.Normalize().Jurisdiction,
		"submitted_at":    s.now().UTC(),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("onboarding: commit not-found event: %w", err)
	}
	return nil
}

func (s *Service) advanceVerified(ctx context.Context, employeeID string, to employee.Status) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("onboarding: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.employees.Transition(ctx, tx, employeeID, employee.StatusAwaitingVerification, to); err != nil {
		var stale *employee.StaleStatusError
		if errors.As(err, &stale) {
			// A concurrent verification already advanced the record; the
			// outcome is unchanged, so this race is benign.
			return nil
		}
		return err
	}
	if err := s.timeline.Append(ctx, tx, employeeID, event.TypeCandidateVerified, nil, map[string]any{
		"to_status": string(to),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("onboarding: commit verification: %w", err)
	}
	return nil
}

// LoadReview returns the offer's categorized terms for display. Read-only,
// idempotent, always the latest committed projection.
func (s *Service) LoadReview(ctx context.Context, employeeID string) ([]offer.ReviewCategory, error) {
	rec, err := s.offers.GetReview(ctx, employeeID)
	if err != nil {
		return nil, translate(err)
	}
	return rec.Categories, nil
}

// AcceptanceResult reports the accept flow's outcome.
type AcceptanceResult struct {
	OfferID   string
	PackageID string
	Status    employee.Status
}

// Accept records the candidate's acceptance and provisions the document
// package. The decision and the offer_accepted transition commit first; the
// generation collaborator is then invoked, and the package plus the
// documents_signing transition commit together. A failed or empty generation
// leaves the journey at offer_accepted and returns a retryable error; calling
// Accept again resumes from the generation step without re-deciding.
func (s *Service) Accept(ctx context.Context, employeeID string, actorID *string) (AcceptanceResult, error) {
	offerID, err := s.decideAccept(ctx, employeeID, actorID)
	if err != nil {
		resume, rerr := s.acceptResumable(ctx, employeeID, err)
		if rerr != nil {
			return AcceptanceResult{}, rerr
		}
		offerID = resume
	}

	if existing, err := s.packages.PackageForEmployee(ctx, employeeID); err == nil {
		// Package already provisioned by an earlier attempt.
		return AcceptanceResult{OfferID: offerID, PackageID: existing, Status: employee.StatusDocumentsSigning}, nil
	} else if !errors.Is(err, signing.ErrPackageNotFound) {
		return AcceptanceResult{}, translate(err)
	}

	specs, err := s.generator.GeneratePackage(ctx, employeeID)
	if err != nil {
		return AcceptanceResult{}, &Error{
			Kind:    KindTransport,
			Message: "offer accepted; documents are still being prepared, try again shortly",
			cause:   err,
		}
	}
	if len(specs) == 0 {
		return AcceptanceResult{}, translate(signing.ErrEmptyPackage)
	}

	pkg, err := s.provisionPackage(ctx, employeeID, offerID, specs, actorID)
	if err != nil {
		return AcceptanceResult{}, translate(err)
	}
	return AcceptanceResult{OfferID: offerID, PackageID: pkg.ID, Status: employee.StatusDocumentsSigning}, nil
}

// decideAccept is the first transaction of the accept flow: the terminal
// decision and the offer_accepted transition.
func (s *Service) decideAccept(ctx context.Context, employeeID string, actorID *string) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("onboarding: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	offerID, err := s.offers.LockPending(ctx, tx, employeeID)
	if err != nil {
		return "", err
	}
	if err := s.offers.MarkDecided(ctx, tx, offerID, offer.DecisionAccepted); err != nil {
		return "", err
	}
	if err := s.employees.Transition(ctx, tx, employeeID, employee.StatusOfferPendingReview, employee.StatusOfferAccepted); err != nil {
		return "", err
	}
	if err := s.timeline.Append(ctx, tx, employeeID, event.TypeOfferAccepted, actorID, map[string]any{
		"offer_id": offerID,
	}); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("onboarding: commit acceptance: %w", err)
	}
	return offerID, nil
}

// acceptResumable decides whether a failed decideAccept is actually a retry
// of an acceptance whose package provisioning did not finish. Only the
// accepted-without-documents window resumes; everything else surfaces.
func (s *Service) acceptResumable(ctx context.Context, employeeID string, decideErr error) (string, error) {
	if !errors.Is(decideErr, offer.ErrAlreadyDecided) {
		return "", translate(decideErr)
	}
	rec, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return "", translate(err)
	}
	if rec.Status != employee.StatusOfferAccepted {
		return "", translate(decideErr)
	}
	current, err := s.offers.GetReview(ctx, employeeID)
	if err != nil {
		return "", translate(err)
	}
	if current.Decision != offer.DecisionAccepted {
		return "", translate(decideErr)
	}
	return current.ID, nil
}

// provisionPackage is the second transaction of the accept flow: the package
// rows and the documents_signing transition commit together, so the journey
// only shows documents_signing once a non-empty package exists.
func (s *Service) provisionPackage(ctx context.Context, employeeID, offerID string, specs []signing.ItemSpec, actorID *string) (signing.Package, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return signing.Package{}, fmt.Errorf("onboarding: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	pkg, err := s.packages.CreatePackage(ctx, tx, s.idGenerator(), employeeID, specs)
	if err != nil {
		return signing.Package{}, err
	}
	if err := s.employees.Transition(ctx, tx, employeeID, employee.StatusOfferAccepted, employee.StatusDocumentsSigning); err != nil {
		return signing.Package{}, err
	}
	if err := s.timeline.Append(ctx, tx, employeeID, event.TypePackageCreated, actorID, map[string]any{
		"offer_id":   offerID,
		"package_id": pkg.ID,
		"documents":  len(pkg.Items),
	}); err != nil {
		return signing.Package{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return signing.Package{}, fmt.Errorf("onboarding: commit package: %w", err)
	}
	return pkg, nil
}

// DisputeParams carries a dispute submission.
type DisputeParams struct {
	EmployeeID string
	ReasonCode dispute.ReasonCode
	DetailText string
	ActorID    *string
}

// DisputeOpened reports the dispute flow's outcome.
type DisputeOpened struct {
	Dispute   dispute.Record
	SessionID string
}

// Dispute records the candidate's dispute decision: the offer becomes
// disputed, a case opens, a resolution session is created, and the journey
// moves to offer_disputed — one transaction, one notification.
func (s *Service) Dispute(ctx context.Context, params DisputeParams) (DisputeOpened, error) {
	create := dispute.CreateParams{
		ID:         s.idGenerator(),
		EmployeeID: params.EmployeeID,
		ReasonCode: params.ReasonCode,
		DetailText: params.DetailText,
	}
	if err := create.Validate(); err != nil {
		return DisputeOpened{}, translate(err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return DisputeOpened{}, fmt.Errorf("onboarding: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	offerID, err := s.offers.LockPending(ctx, tx, params.EmployeeID)
	if err != nil {
		return DisputeOpened{}, translate(err)
	}
	if err := s.offers.MarkDecided(ctx, tx, offerID, offer.DecisionDisputed); err != nil {
		return DisputeOpened{}, translate(err)
	}

	create.OfferID = offerID
	rec, err := s.disputes.Create(ctx, tx, create)
	if err != nil {
		return DisputeOpened{}, translate(err)
	}

	session, err := s.sessions.CreateSession(ctx, tx, s.idGenerator(), rec.ID)
	if err != nil {
		return DisputeOpened{}, translate(err)
	}

	if err := s.employees.Transition(ctx, tx, params.EmployeeID, employee.StatusOfferPendingReview, employee.StatusOfferDisputed); err != nil {
		return DisputeOpened{}, translate(err)
	}
	if err := s.timeline.Append(ctx, tx, params.EmployeeID, event.TypeOfferDisputed, params.ActorID, map[string]any{
		"offer_id":   offerID,
		"dispute_id": rec.ID,
		"reason":     string(rec.ReasonCode),
	}); err != nil {
		return DisputeOpened{}, translate(err)
	}
	if err := s.outbox.Enqueue(ctx, tx, event.TopicDisputeOpened, map[string]any{
		"dispute_id":  rec.ID,
		"employee_id": params.EmployeeID,
		"offer_id":    offerID,
		"reason":      string(rec.ReasonCode),
	}); err != nil {
		return DisputeOpened{}, translate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return DisputeOpened{}, translate(fmt.Errorf("onboarding: commit dispute: %w", err))
	}
	return DisputeOpened{Dispute: rec, SessionID: session.ID}, nil
}

// ReopenOffer is the callback an external re-review action invokes after a
// resolved dispute: the collaborator regenerates the terms and hands them in;
// the engine records the fresh pending offer and returns the journey to
// offer_pending_review. The engine never regenerates terms itself.
func (s *Service) ReopenOffer(ctx context.Context, employeeID string, categories []offer.ReviewCategory, actorID *string) (offer.Record, error) {
	if len(categories) == 0 {
		return offer.Record{}, &Error{Kind: KindValidation, Message: "regenerated offer has no review categories"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return offer.Record{}, translate(fmt.Errorf("onboarding: begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	if err := s.employees.Transition(ctx, tx, employeeID, employee.StatusOfferDisputed, employee.StatusOfferPendingReview); err != nil {
		return offer.Record{}, translate(err)
	}
	rec, err := s.offers.Insert(ctx, tx, s.idGenerator(), employeeID, categories)
	if err != nil {
		return offer.Record{}, translate(err)
	}
	if err := s.timeline.Append(ctx, tx, employeeID, event.TypeOfferReopened, actorID, map[string]any{
		"offer_id": rec.ID,
	}); err != nil {
		return offer.Record{}, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return offer.Record{}, translate(fmt.Errorf("onboarding: commit reopen: %w", err))
	}
	return rec, nil
}

// SignDocument signs the document at the current sequence position. Signing
// an already-signed document succeeds with no side effects and no second
// completion event; signing out of order is rejected against the persisted
// item order regardless of what the client believed. When the last item
// signs, the journey completes in the same transaction.
func (s *Service) SignDocument(ctx context.Context, packageID, documentID string, actorID *string) (signing.SignResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return signing.SignResult{}, translate(fmt.Errorf("onboarding: begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	items, err := s.packages.ItemsLocked(ctx, tx, packageID)
	if err != nil {
		return signing.SignResult{}, translate(err)
	}

	item, already, err := signing.CheckSignable(items, documentID)
	if err != nil {
		return signing.SignResult{}, translate(err)
	}
	if already {
		// Idempotent retry: nothing to write, nothing to emit.
		return signing.SignResult{
			Item:          item,
			AlreadySigned: true,
			Progress:      signing.CountProgress(items),
		}, nil
	}

	signed, err := s.packages.MarkSigned(ctx, tx, item.ID)
	if err != nil {
		return signing.SignResult{}, translate(err)
	}
	for i := range items {
		if items[i].ID == signed.ID {
			items[i] = signed
		}
	}

	employeeID, err := s.packages.PackageEmployee(ctx, tx, packageID)
	if err != nil {
		return signing.SignResult{}, translate(err)
	}
	if err := s.timeline.Append(ctx, tx, employeeID, event.TypeDocumentSigned, actorID, map[string]any{
		"package_id":  packageID,
		"document_id": signed.ID,
		"doc_type":    signed.Type,
	}); err != nil {
		return signing.SignResult{}, translate(err)
	}

	result := signing.SignResult{Item: signed, Progress: signing.CountProgress(items)}

	if signing.AllSigned(items) {
		if err := s.employees.Transition(ctx, tx, employeeID, employee.StatusDocumentsSigning, employee.StatusOnboardingComplete); err != nil {
			return signing.SignResult{}, translate(err)
		}
		if err := s.timeline.Append(ctx, tx, employeeID, event.TypeOnboardingComplete, actorID, map[string]any{
			"package_id": packageID,
		}); err != nil {
			return signing.SignResult{}, translate(err)
		}
		if err := s.outbox.Enqueue(ctx, tx, event.TopicOnboardingComplete, map[string]any{
			"employee_id": employeeID,
			"package_id":  packageID,
		}); err != nil {
			return signing.SignResult{}, translate(err)
		}
		result.PackageComplete = true
	}

	if err := tx.Commit(ctx); err != nil {
		return signing.SignResult{}, translate(fmt.Errorf("onboarding: commit sign: %w", err))
	}
	return result, nil
}

// CorrectDocument reverts a signed document to pending under an explicit
// correction event with its own audit trail. Corrections are rejected once
// the package is complete; completion is terminal.
func (s *Service) CorrectDocument(ctx context.Context, packageID, documentID, reason string, actorID *string) (signing.DocumentItem, error) {
	if reason == "" {
		return signing.DocumentItem{}, &Error{Kind: KindValidation, Message: "a correction requires a reason"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return signing.DocumentItem{}, translate(fmt.Errorf("onboarding: begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	items, err := s.packages.ItemsLocked(ctx, tx, packageID)
	if err != nil {
		return signing.DocumentItem{}, translate(err)
	}
	if signing.AllSigned(items) {
		return signing.DocumentItem{}, &Error{Kind: KindConflict, Message: "the package is already complete; corrections go through HR"}
	}

	var target *signing.DocumentItem
	for i := range items {
		if items[i].ID == documentID {
			target = &items[i]
			break
		}
	}
	if target == nil {
		return signing.DocumentItem{}, translate(fmt.Errorf("%w: %s", signing.ErrUnknownDocument, documentID))
	}
	if target.Status != signing.ItemSigned {
		return signing.DocumentItem{}, &Error{Kind: KindConflict, Message: "only a signed document can be corrected"}
	}

	reverted, err := s.packages.ResetPending(ctx, tx, target.ID)
	if err != nil {
		return signing.DocumentItem{}, translate(err)
	}

	employeeID, err := s.packages.PackageEmployee(ctx, tx, packageID)
	if err != nil {
		return signing.DocumentItem{}, translate(err)
	}
	if err := s.timeline.Append(ctx, tx, employeeID, event.TypeDocumentCorrected, actorID, map[string]any{
		"package_id":  packageID,
		"document_id": reverted.ID,
		"reason":      reason,
	}); err != nil {
		return signing.DocumentItem{}, translate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return signing.DocumentItem{}, translate(fmt.Errorf("onboarding: commit correction: %w", err))
	}
	return reverted, nil
}

// CurrentDocument returns the item at the current signing position, or nil
// when the package is fully signed.
func (s *Service) CurrentDocument(ctx context.Context, packageID string) (*signing.DocumentItem, error) {
	items, err := s.packages.Snapshot(ctx, packageID)
	if err != nil {
		return nil, translate(err)
	}
	return signing.NextPending(items), nil
}

// SigningProgress returns the display-only signed/total ratio.
func (s *Service) SigningProgress(ctx context.Context, packageID string) (signing.Progress, error) {
	items, err := s.packages.Snapshot(ctx, packageID)
	if err != nil {
		return signing.Progress{}, translate(err)
	}
	return signing.CountProgress(items), nil
}

// Employee exposes the latest committed journey state.
func (s *Service) Employee(ctx context.Context, employeeID string) (employee.Record, error) {
	rec, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Record{}, translate(err)
	}
	return rec, nil
}

// PackageOwner resolves the employee a document package belongs to, so the
// transport layer can confine candidate tokens to their own packages.
func (s *Service) PackageOwner(ctx context.Context, packageID string) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", translate(fmt.Errorf("onboarding: begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	owner, err := s.packages.PackageEmployee(ctx, tx, packageID)
	if err != nil {
		return "", translate(err)
	}
	return owner, nil
}

// DisputeOwner resolves the employee a dispute case belongs to.
func (s *Service) DisputeOwner(ctx context.Context, disputeID string) (string, error) {
	rec, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		return "", translate(err)
	}
	return rec.EmployeeID, nil
}
