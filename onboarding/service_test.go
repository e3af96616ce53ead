package onboarding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"

	"onboardflow/dispute"
	"onboardflow/employee"
	"onboardflow/event"
	"onboardflow/identity"
	"onboardflow/offer"
	"onboardflow/resolution"
	"onboardflow/signing"
)

type fakePool struct {
	begun int
}

func (f *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	f.begun++
	return &fakeTx{}, nil
}

// fakeTx embeds pgx.Tx; only Commit/Rollback are exercised by the service.
type fakeTx struct {
	pgx.Tx
}

func (f *fakeTx) Commit(context.Context) error   { return nil }
func (f *fakeTx) Rollback(context.Context) error { return nil }

type fakeGate struct {
	outcome identity.Outcome
	err     error
}

func (f *fakeGate) Verify(ctx context.Context, claim identity.Claim) (identity.Outcome, error) {
	return f.outcome, f.err
}

type fakeEmployees struct {
	records     map[string]employee.Record
	transitions []string
}

func newFakeEmployees(recs ...employee.Record) *fakeEmployees {
	m := make(map[string]employee.Record, len(recs))
	for _, r := range recs {
		m[r.ID] = r
	}
	return &fakeEmployees{records: m}
}

func (f *fakeEmployees) GetByID(ctx context.Context, id string) (employee.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return employee.Record{}, employee.ErrNotFound
	}
	return rec, nil
}

func (f *fakeEmployees) Transition(ctx context.Context, tx pgx.Tx, employeeID string, from, to employee.Status) error {
	rec, ok := f.records[employeeID]
	if !ok {
		return employee.ErrNotFound
	}
	if !employee.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", employee.ErrInvalidTransition, from, to)
	}
	if rec.Status != from {
		return &employee.StaleStatusError{EmployeeID: employeeID, Expected: from, Current: rec.Status}
	}
	rec.Status = to
	f.records[employeeID] = rec
	f.transitions = append(f.transitions, fmt.Sprintf("%s->%s", from, to))
	return nil
}

type fakeOffers struct {
	byEmployee map[string]*offer.Record
}

func newFakeOffers(recs ...offer.Record) *fakeOffers {
	m := make(map[string]*offer.Record, len(recs))
	for i := range recs {
		rec := recs[i]
		m[rec.EmployeeID] = &rec
	}
	return &fakeOffers{byEmployee: m}
}

func (f *fakeOffers) GetReview(ctx context.Context, employeeID string) (offer.Record, error) {
	rec, ok := f.byEmployee[employeeID]
	if !ok {
		return offer.Record{}, offer.ErrNotFound
	}
	return *rec, nil
}

func (f *fakeOffers) LockPending(ctx context.Context, tx pgx.Tx, employeeID string) (string, error) {
	rec, ok := f.byEmployee[employeeID]
	if !ok {
		return "", offer.ErrNotFound
	}
	if rec.Decision != offer.DecisionPending {
		return "", fmt.Errorf("%w: offer %s is %s", offer.ErrAlreadyDecided, rec.ID, rec.Decision)
	}
	return rec.ID, nil
}

func (f *fakeOffers) MarkDecided(ctx context.Context, tx pgx.Tx, offerID string, decision offer.Decision) error {
	for _, rec := range f.byEmployee {
		if rec.ID == offerID {
			if rec.Decision != offer.DecisionPending {
				return offer.ErrAlreadyDecided
			}
			rec.Decision = decision
			return nil
		}
	}
	return offer.ErrNotFound
}

func (f *fakeOffers) Insert(ctx context.Context, tx pgx.Tx, id, employeeID string, categories []offer.ReviewCategory) (offer.Record, error) {
	rec := offer.Record{ID: id, EmployeeID: employeeID, Categories: categories, Decision: offer.DecisionPending}
	f.byEmployee[employeeID] = &rec
	return rec, nil
}

type fakeDisputes struct {
	created []dispute.Record
}

func (f *fakeDisputes) Create(ctx context.Context, tx pgx.Tx, params dispute.CreateParams) (dispute.Record, error) {
	if err := params.Validate(); err != nil {
		return dispute.Record{}, err
	}
	rec := dispute.Record{
		ID:         params.ID,
		EmployeeID: params.EmployeeID,
		OfferID:    params.OfferID,
		ReasonCode: params.ReasonCode,
		DetailText: params.DetailText,
		Status:     dispute.StatusOpen,
	}
	f.created = append(f.created, rec)
	return rec, nil
}

func (f *fakeDisputes) GetByID(ctx context.Context, disputeID string) (dispute.Record, error) {
	for _, rec := range f.created {
		if rec.ID == disputeID {
			return rec, nil
		}
	}
	return dispute.Record{}, dispute.ErrNotFound
}

type fakeSessions struct {
	created []resolution.Session
}

func (f *fakeSessions) CreateSession(ctx context.Context, tx pgx.Tx, sessionID, disputeID string) (resolution.Session, error) {
	s := resolution.Session{ID: sessionID, DisputeID: disputeID, State: resolution.StateOpened}
	f.created = append(f.created, s)
	return s, nil
}

type fakePackages struct {
	byID       map[string][]signing.DocumentItem
	employeeOf map[string]string
	nextItem   int
}

func newFakePackages() *fakePackages {
	return &fakePackages{byID: map[string][]signing.DocumentItem{}, employeeOf: map[string]string{}}
}

func (f *fakePackages) CreatePackage(ctx context.Context, tx pgx.Tx, packageID, employeeID string, specs []signing.ItemSpec) (signing.Package, error) {
	if len(specs) == 0 {
		return signing.Package{}, signing.ErrEmptyPackage
	}
	items := make([]signing.DocumentItem, len(specs))
	for i, spec := range specs {
		f.nextItem++
		items[i] = signing.DocumentItem{
			ID:        fmt.Sprintf("doc-%d", f.nextItem),
			PackageID: packageID,
			Type:      spec.Type,
			Required:  spec.Required,
			Position:  i,
			Status:    signing.ItemPending,
		}
	}
	f.byID[packageID] = items
	f.employeeOf[packageID] = employeeID
	return signing.Package{ID: packageID, EmployeeID: employeeID, Items: items}, nil
}

func (f *fakePackages) ItemsLocked(ctx context.Context, tx pgx.Tx, packageID string) ([]signing.DocumentItem, error) {
	items, ok := f.byID[packageID]
	if !ok {
		return nil, signing.ErrPackageNotFound
	}
	out := make([]signing.DocumentItem, len(items))
	copy(out, items)
	return out, nil
}

func (f *fakePackages) PackageEmployee(ctx context.Context, tx pgx.Tx, packageID string) (string, error) {
	employeeID, ok := f.employeeOf[packageID]
	if !ok {
		return "", signing.ErrPackageNotFound
	}
	return employeeID, nil
}

func (f *fakePackages) PackageForEmployee(ctx context.Context, employeeID string) (string, error) {
	for pkgID, emp := range f.employeeOf {
		if emp == employeeID {
			return pkgID, nil
		}
	}
	return "", signing.ErrPackageNotFound
}

func (f *fakePackages) MarkSigned(ctx context.Context, tx pgx.Tx, itemID string) (signing.DocumentItem, error) {
	for pkgID, items := range f.byID {
		for i := range items {
			if items[i].ID == itemID && items[i].Status == signing.ItemPending {
				items[i].Status = signing.ItemSigned
				f.byID[pkgID] = items
				return items[i], nil
			}
		}
	}
	return signing.DocumentItem{}, signing.ErrPackageNotFound
}

func (f *fakePackages) ResetPending(ctx context.Context, tx pgx.Tx, itemID string) (signing.DocumentItem, error) {
	for pkgID, items := range f.byID {
		for i := range items {
			if items[i].ID == itemID && items[i].Status == signing.ItemSigned {
				items[i].Status = signing.ItemPending
				items[i].SignedAt = nil
				f.byID[pkgID] = items
				return items[i], nil
			}
		}
	}
	return signing.DocumentItem{}, signing.ErrPackageNotFound
}

func (f *fakePackages) Snapshot(ctx context.Context, packageID string) ([]signing.DocumentItem, error) {
	return f.ItemsLocked(ctx, nil, packageID)
}

type fakeGenerator struct {
	specs []signing.ItemSpec
	err   error
	calls int
}

func (f *fakeGenerator) GeneratePackage(ctx context.Context, employeeID string) ([]signing.ItemSpec, error) {
	f.calls++
	return f.specs, f.err
}

type fakeTimeline struct {
	types []string
}

func (f *fakeTimeline) Append(ctx context.Context, tx pgx.Tx, employeeID, eventType string, actorID *string, payload map[string]any) error {
	f.types = append(f.types, eventType)
	return nil
}

type fakeOutbox struct {
	topics []string
}

func (f *fakeOutbox) Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error {
	f.topics = append(f.topics, topic)
	return nil
}

func (f *fakeOutbox) count(topic string) int {
	n := 0
	for _, t := range f.topics {
		if t == topic {
			n++
		}
	}
	return n
}

type fixture struct {
	svc       *Service
	gate      *fakeGate
	employees *fakeEmployees
	offers    *fakeOffers
	disputes  *fakeDisputes
	sessions  *fakeSessions
	packages  *fakePackages
	generator *fakeGenerator
	timeline  *fakeTimeline
	outbox    *fakeOutbox
}

func newFixture(emp employee.Record, off *offer.Record) *fixture {
	f := &fixture{
		gate:      &fakeGate{},
		employees: newFakeEmployees(emp),
		offers:    newFakeOffers(),
		disputes:  &fakeDisputes{},
		sessions:  &fakeSessions{},
		packages:  newFakePackages(),
		generator: &fakeGenerator{},
		timeline:  &fakeTimeline{},
		outbox:    &fakeOutbox{},
	}
	if off != nil {
		f.offers = newFakeOffers(*off)
	}
	counter := 0
	f.svc = NewService(
		&fakePool{}, f.gate, f.employees, f.offers, f.disputes, f.sessions,
		f.packages, f.generator, f.timeline, f.outbox,
	).WithIDGenerator(func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	})
	return f
}

func pendingOffer(employeeID string) *offer.Record {
	return &offer.Record{
		ID:         "off-1",
		EmployeeID: employeeID,
		Decision:   offer.DecisionPending,
		Categories: []offer.ReviewCategory{{Name: "Compensation", Fields: []offer.Field{{Label: "Base salary", Value: "MYR 96,000"}}}},
	}
}

// Scenario A: unknown claim leaves the journey untouched and emits the
// not-found notification exactly once.
func TestVerifyCandidate_NotFound(t *testing.T) {
	f := newFixture(employee.Record{ID: "emp-1", Status: employee.StatusAwaitingVerification}, nil)
	f.gate.outcome = identity.Outcome{Kind: identity.OutcomeNotFound}

	out, err := f.svc.VerifyCandidate(context.Background(), identity.Claim{
		IdentifierType:  identity.IdentifierNationalID,
		IdentifierValue: "901015101234",
		Jurisdiction:    "MY",
	})
	if err != nil {
		t.Fatalf("verify: unexpected error: %v", err)
	}
	if out.Kind != identity.OutcomeNotFound {
		t.Fatalf("expected not_found, got %s", out.Kind)
	}
	if got := f.employees.records["emp-1"].Status; got != employee.StatusAwaitingVerification {
		t.Fatalf("status must be unchanged, got %s", got)
	}
	if n := f.outbox.count(event.TopicCandidateNotFound); n != 1 {
		t.Fatalf("expected exactly one not-found event, got %d", n)
	}
}

func TestVerifyCandidate_FoundAdvancesJourney(t *testing.T) {
	rec := employee.Record{ID: "emp-1", Status: employee.StatusAwaitingVerification}
	f := newFixture(rec, nil)
	f.gate.outcome = identity.Outcome{Kind: identity.OutcomeFound, Record: rec}

	out, err := f.svc.VerifyCandidate(context.Background(), identity.Claim{
		IdentifierType:  identity.IdentifierNationalID,
		IdentifierValue: "901015101234",
		Jurisdiction:    "MY",
	})
	if err != nil {
		t.Fatalf("verify: unexpected error: %v", err)
	}
	if out.Kind != identity.OutcomeFound {
		t.Fatalf("expected found, got %s", out.Kind)
	}
	if got := f.employees.records["emp-1"].Status; got != employee.StatusOfferPendingReview {
		t.Fatalf("expected offer_pending_review, got %s", got)
	}
}

func TestVerifyCandidate_AlreadyOnboardedTerminal(t *testing.T) {
	rec := employee.Record{ID: "emp-1", Status: employee.StatusAwaitingVerification}
	f := newFixture(rec, nil)
	f.gate.outcome = identity.Outcome{Kind: identity.OutcomeAlreadyOnboarded, Record: rec}

	out, err := f.svc.VerifyCandidate(context.Background(), identity.Claim{
		IdentifierType:  identity.IdentifierPassport,
		IdentifierValue: "A1234567",
		Jurisdiction:    "MY",
	})
	if err != nil {
		t.Fatalf("verify: unexpected error: %v", err)
	}
	if out.Kind != identity.OutcomeAlreadyOnboarded {
		t.Fatalf("expected already_onboarded, got %s", out.Kind)
	}
	if got := f.employees.records["emp-1"].Status; got != employee.StatusAlreadyOnboarded {
		t.Fatalf("expected terminal already_onboarded, got %s", got)
	}
}

func TestVerifyCandidate_TransportErrorSurfaces(t *testing.T) {
	f := newFixture(employee.Record{ID: "emp-1", Status: employee.StatusAwaitingVerification}, nil)
	f.gate.err = errors.New("identity: lookup: connection refused")

	_, err := f.svc.VerifyCandidate(context.Background(), identity.Claim{
		IdentifierType:  identity.IdentifierNationalID,
		IdentifierValue: "901015101234",
	})
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport kind, got %v (%s)", err, KindOf(err))
	}
	if n := f.outbox.count(event.TopicCandidateNotFound); n != 0 {
		t.Fatal("transport failure must not look like not-found")
	}
}

// Scenario B: accept, generate three documents, sign them in order, land in
// onboarding_complete with exactly one completion event.
func TestAcceptAndSignToCompletion(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))
	f.generator.specs = []signing.ItemSpec{
		{Type: "employment_contract", Required: true},
		{Type: "nda", Required: true},
		{Type: "benefits_enrollment", Required: false},
	}

	res, err := f.svc.Accept(context.Background(), "emp-1", nil)
	if err != nil {
		t.Fatalf("accept: unexpected error: %v", err)
	}
	if res.Status != employee.StatusDocumentsSigning {
		t.Fatalf("expected documents_signing, got %s", res.Status)
	}
	if f.generator.calls != 1 {
		t.Fatalf("generation must be invoked exactly once, got %d", f.generator.calls)
	}

	items, _ := f.packages.Snapshot(context.Background(), res.PackageID)
	if len(items) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(items))
	}

	for i, item := range items {
		sr, err := f.svc.SignDocument(context.Background(), res.PackageID, item.ID, nil)
		if err != nil {
			t.Fatalf("sign %d: unexpected error: %v", i, err)
		}
		wantComplete := i == len(items)-1
		if sr.PackageComplete != wantComplete {
			t.Fatalf("sign %d: PackageComplete = %v, want %v", i, sr.PackageComplete, wantComplete)
		}
		if sr.Progress.Signed != i+1 || sr.Progress.Total != 3 {
			t.Fatalf("sign %d: progress %d/%d", i, sr.Progress.Signed, sr.Progress.Total)
		}
	}

	if got := f.employees.records["emp-1"].Status; got != employee.StatusOnboardingComplete {
		t.Fatalf("expected onboarding_complete, got %s", got)
	}
	if n := f.outbox.count(event.TopicOnboardingComplete); n != 1 {
		t.Fatalf("expected exactly one completion event, got %d", n)
	}
}

// P3: signing out of order is rejected server-side.
func TestSignDocument_OutOfOrder(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))
	f.generator.specs = []signing.ItemSpec{{Type: "contract", Required: true}, {Type: "nda", Required: true}}

	res, err := f.svc.Accept(context.Background(), "emp-1", nil)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	items, _ := f.packages.Snapshot(context.Background(), res.PackageID)

	_, err = f.svc.SignDocument(context.Background(), res.PackageID, items[1].ID, nil)
	if KindOf(err) != KindSequence {
		t.Fatalf("expected sequence kind, got %v (%s)", err, KindOf(err))
	}
	current, _ := f.svc.CurrentDocument(context.Background(), res.PackageID)
	if current == nil || current.ID != items[0].ID {
		t.Fatalf("current document must stay at position 0")
	}
}

// Scenario D / P2: a retried sign succeeds without side effects or a second
// completion event.
func TestSignDocument_IdempotentRetry(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))
	f.generator.specs = []signing.ItemSpec{{Type: "contract", Required: true}}

	res, err := f.svc.Accept(context.Background(), "emp-1", nil)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	items, _ := f.packages.Snapshot(context.Background(), res.PackageID)

	first, err := f.svc.SignDocument(context.Background(), res.PackageID, items[0].ID, nil)
	if err != nil {
		t.Fatalf("first sign: %v", err)
	}
	if !first.PackageComplete {
		t.Fatal("single-document package must complete on first sign")
	}

	second, err := f.svc.SignDocument(context.Background(), res.PackageID, items[0].ID, nil)
	if err != nil {
		t.Fatalf("retried sign must succeed, got %v", err)
	}
	if !second.AlreadySigned {
		t.Fatal("expected already-signed marker on retry")
	}
	if second.PackageComplete {
		t.Fatal("retry must not fire completion again")
	}
	if n := f.outbox.count(event.TopicOnboardingComplete); n != 1 {
		t.Fatalf("expected exactly one completion event, got %d", n)
	}
}

// P1 / P5: after one decision lands, any further decision on the same offer
// is a conflict and leaves everything unchanged.
func TestDecide_SecondDecisionConflicts(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))

	if _, err := f.svc.Dispute(context.Background(), DisputeParams{
		EmployeeID: "emp-1",
		ReasonCode: dispute.ReasonIncorrectCompensation,
		DetailText: "salary mismatch",
	}); err != nil {
		t.Fatalf("dispute: unexpected error: %v", err)
	}

	_, err := f.svc.Accept(context.Background(), "emp-1", nil)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict on accept-after-dispute, got %v (%s)", err, KindOf(err))
	}
	if got := f.employees.records["emp-1"].Status; got != employee.StatusOfferDisputed {
		t.Fatalf("losing decision must not move the journey, got %s", got)
	}
	if len(f.disputes.created) != 1 {
		t.Fatalf("expected a single dispute case, got %d", len(f.disputes.created))
	}

	_, err = f.svc.Dispute(context.Background(), DisputeParams{
		EmployeeID: "emp-1",
		ReasonCode: dispute.ReasonIncorrectPosition,
	})
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict on re-dispute, got %v (%s)", err, KindOf(err))
	}
}

func TestDispute_OpensCaseSessionAndEvent(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))

	opened, err := f.svc.Dispute(context.Background(), DisputeParams{
		EmployeeID: "emp-1",
		ReasonCode: dispute.ReasonIncorrectCompensation,
		DetailText: "salary mismatch",
	})
	if err != nil {
		t.Fatalf("dispute: unexpected error: %v", err)
	}
	if opened.Dispute.Status != dispute.StatusOpen {
		t.Fatalf("expected open case, got %s", opened.Dispute.Status)
	}
	if opened.SessionID == "" {
		t.Fatal("expected a resolution session")
	}
	if got := f.employees.records["emp-1"].Status; got != employee.StatusOfferDisputed {
		t.Fatalf("expected offer_disputed, got %s", got)
	}
	if n := f.outbox.count(event.TopicDisputeOpened); n != 1 {
		t.Fatalf("expected one dispute-opened event, got %d", n)
	}
}

func TestDispute_OtherRequiresDetail(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))

	_, err := f.svc.Dispute(context.Background(), DisputeParams{
		EmployeeID: "emp-1",
		ReasonCode: dispute.ReasonOther,
	})
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation kind, got %v (%s)", err, KindOf(err))
	}
	if got := f.employees.records["emp-1"].Status; got != employee.StatusOfferPendingReview {
		t.Fatalf("rejected dispute must not move the journey, got %s", got)
	}
}

// Failed package generation leaves the journey at offer_accepted; a retried
// Accept resumes from the generation step without re-deciding.
func TestAccept_GenerationFailureIsRecoverable(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))
	f.generator.err = errors.New("document service timeout")

	_, err := f.svc.Accept(context.Background(), "emp-1", nil)
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport kind, got %v (%s)", err, KindOf(err))
	}
	if got := f.employees.records["emp-1"].Status; got != employee.StatusOfferAccepted {
		t.Fatalf("expected offer_accepted after failed generation, got %s", got)
	}

	f.generator.err = nil
	f.generator.specs = []signing.ItemSpec{{Type: "contract", Required: true}}

	res, err := f.svc.Accept(context.Background(), "emp-1", nil)
	if err != nil {
		t.Fatalf("retried accept: unexpected error: %v", err)
	}
	if res.Status != employee.StatusDocumentsSigning {
		t.Fatalf("expected documents_signing after retry, got %s", res.Status)
	}
	if f.generator.calls != 2 {
		t.Fatalf("expected two generation attempts, got %d", f.generator.calls)
	}
}

func TestAccept_EmptyPackageIsRecoverable(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))
	f.generator.specs = nil

	_, err := f.svc.Accept(context.Background(), "emp-1", nil)
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport kind for empty package, got %v (%s)", err, KindOf(err))
	}
	if got := f.employees.records["emp-1"].Status; got != employee.StatusOfferAccepted {
		t.Fatalf("expected offer_accepted, got %s", got)
	}
}

func TestReopenOffer_AfterDispute(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferDisputed}
	f := newFixture(emp, pendingOffer("emp-1"))

	rec, err := f.svc.ReopenOffer(context.Background(), "emp-1", []offer.ReviewCategory{
		{Name: "Compensation", Fields: []offer.Field{{Label: "Base salary", Value: "MYR 102,000"}}},
	}, nil)
	if err != nil {
		t.Fatalf("reopen: unexpected error: %v", err)
	}
	if rec.Decision != offer.DecisionPending {
		t.Fatalf("reopened offer must be pending, got %s", rec.Decision)
	}
	if got := f.employees.records["emp-1"].Status; got != employee.StatusOfferPendingReview {
		t.Fatalf("expected offer_pending_review, got %s", got)
	}
}

func TestCorrectDocument_AuditedReversal(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))
	f.generator.specs = []signing.ItemSpec{{Type: "contract", Required: true}, {Type: "nda", Required: true}}

	res, err := f.svc.Accept(context.Background(), "emp-1", nil)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	items, _ := f.packages.Snapshot(context.Background(), res.PackageID)
	if _, err := f.svc.SignDocument(context.Background(), res.PackageID, items[0].ID, nil); err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := f.svc.CorrectDocument(context.Background(), res.PackageID, items[0].ID, "", nil); KindOf(err) != KindValidation {
		t.Fatalf("correction without reason must be rejected, got %v", err)
	}

	reverted, err := f.svc.CorrectDocument(context.Background(), res.PackageID, items[0].ID, "wrong middle name on contract", nil)
	if err != nil {
		t.Fatalf("correct: unexpected error: %v", err)
	}
	if reverted.Status != signing.ItemPending {
		t.Fatalf("expected pending after correction, got %s", reverted.Status)
	}
	found := false
	for _, typ := range f.timeline.types {
		if typ == event.TypeDocumentCorrected {
			found = true
		}
	}
	if !found {
		t.Fatal("correction must leave its own audit event")
	}
}

func TestCorrectDocument_RejectedOnceComplete(t *testing.T) {
	emp := employee.Record{ID: "emp-1", Status: employee.StatusOfferPendingReview}
	f := newFixture(emp, pendingOffer("emp-1"))
	f.generator.specs = []signing.ItemSpec{{Type: "contract", Required: true}}

	res, err := f.svc.Accept(context.Background(), "emp-1", nil)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	items, _ := f.packages.Snapshot(context.Background(), res.PackageID)
	if _, err := f.svc.SignDocument(context.Background(), res.PackageID, items[0].ID, nil); err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = f.svc.CorrectDocument(context.Background(), res.PackageID, items[0].ID, "typo", nil)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict after completion, got %v (%s)", err, KindOf(err))
	}
}

func TestPackageAndDisputeOwners(t *testing.T) {
	f := newFixture(employee.Record{ID: "emp-1", Status: employee.StatusDocumentsSigning}, nil)
	if _, err := f.packages.CreatePackage(context.Background(), nil, "pkg-1", "emp-1", []signing.ItemSpec{{Type: "nda", Required: true}}); err != nil {
		t.Fatalf("seed package: %v", err)
	}
	f.disputes.created = append(f.disputes.created, dispute.Record{ID: "dis-1", EmployeeID: "emp-1", Status: dispute.StatusOpen})

	owner, err := f.svc.PackageOwner(context.Background(), "pkg-1")
	if err != nil || owner != "emp-1" {
		t.Fatalf("package owner: got %q, %v", owner, err)
	}
	if _, err := f.svc.PackageOwner(context.Background(), "pkg-404"); KindOf(err) != KindNotFound {
		t.Fatalf("unknown package: expected not_found, got %v (%s)", err, KindOf(err))
	}

	owner, err = f.svc.DisputeOwner(context.Background(), "dis-1")
	if err != nil || owner != "emp-1" {
		t.Fatalf("dispute owner: got %q, %v", owner, err)
	}
	if _, err := f.svc.DisputeOwner(context.Background(), "dis-404"); KindOf(err) != KindNotFound {
		t.Fatalf("unknown dispute: expected not_found, got %v (%s)", err, KindOf(err))
	}
}
