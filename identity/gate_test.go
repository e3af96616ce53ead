package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"onboardflow/employee"
)

type fakeStore struct {
	record  employee.Record
	err     error
	calls   int
	gotType IdentifierType
	gotVal  string
	gotJur  string
}

func (f *fakeStore) Lookup(ctx context.Context, identifierType IdentifierType, value, jurisdiction string) (employee.Record, error) {
	f.calls++
	f.gotType = identifierType
	f.gotVal = value
	f.gotJur = jurisdiction
	return f.record, f.err
}

func TestVerify_NormalizesBeforeLookup(t *testing.T) {
	store := &fakeStore{record: employee.Record{ID: "emp-1", Status: employee.StatusAwaitingVerification}}
	gate := NewGate(store)

	out, err := gate.Verify(context.Background(), Claim{
		IdentifierType:  IdentifierPassport,
		IdentifierValue: "  a1234567  ",
		Jurisdiction:    "my",
	})
	if err != nil {
		t.Fatalf("verify: unexpected error: %v", err)
	}
	if out.Kind != OutcomeFound {
		t.Fatalf("expected found, got %s", out.Kind)
	}
	if store.gotVal != "A1234567" {
		t.Errorf("expected uppercased trimmed value, got %q", store.gotVal)
	}
	if store.gotJur != "MY" {
		t.Errorf("expected uppercased jurisdiction, got %q", store.gotJur)
	}
	if store.calls != 1 {
		t.Errorf("expected exactly one lookup, got %d", store.calls)
	}
}

func TestVerify_EmptyIdentifierRejectedWithoutLookup(t *testing.T) {
	store := &fakeStore{}
	gate := NewGate(store)

	_, err := gate.Verify(context.Background(), Claim{
		IdentifierType:  IdentifierNationalID,
		IdentifierValue: "   ",
		Jurisdiction:    "MY",
	})
	if !errors.Is(err, ErrEmptyIdentifier) {
		t.Fatalf("expected ErrEmptyIdentifier, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no lookup for empty identifier, got %d calls", store.calls)
	}
}

func TestVerify_InvalidType(t *testing.T) {
	gate := NewGate(&fakeStore{})
	_, err := gate.Verify(context.Background(), Claim{
		IdentifierType:  IdentifierType("drivers_license"),
		IdentifierValue: "X",
	})
	if !errors.Is(err, ErrInvalidIdentifierType) {
		t.Fatalf("expected ErrInvalidIdentifierType, got %v", err)
	}
}

func TestVerify_NotFoundIsOutcomeNotError(t *testing.T) {
	store := &fakeStore{err: employee.ErrNotFound}
	gate := NewGate(store)

	out, err := gate.Verify(context.Background(), Claim{
		IdentifierType:  IdentifierNationalID,
		IdentifierValue: "901015101234",
		Jurisdiction:    "MY",
	})
	if err != nil {
		t.Fatalf("missing record must not be an error, got %v", err)
	}
	if out.Kind != OutcomeNotFound {
		t.Fatalf("expected not_found outcome, got %s", out.Kind)
	}
}

func TestVerify_TransportFailureDistinctFromNotFound(t *testing.T) {
	store := &fakeStore{err: errors.New("dial tcp: connection refused")}
	gate := NewGate(store)

	out, err := gate.Verify(context.Background(), Claim{
		IdentifierType:  IdentifierNationalID,
		IdentifierValue: "901015101234",
		Jurisdiction:    "MY",
	})
	if err == nil {
		t.Fatalf("expected transport error, got outcome %s", out.Kind)
	}
	if errors.Is(err, employee.ErrNotFound) {
		t.Fatal("transport failure must not look like not-found")
	}
}

func TestVerify_AlreadyOnboardedByCompletionFlag(t *testing.T) {
	ts := time.Now()
	store := &fakeStore{record: employee.Record{
		ID:          "emp-2",
		Status:      employee.StatusOnboardingComplete,
		OnboardedAt: &ts,
	}}
	gate := NewGate(store)

	out, err := gate.Verify(context.Background(), Claim{
		IdentifierType:  IdentifierNationalID,
		IdentifierValue: "880101105678",
		Jurisdiction:    "MY",
	})
	if err != nil {
		t.Fatalf("verify: unexpected error: %v", err)
	}
	if out.Kind != OutcomeAlreadyOnboarded {
		t.Fatalf("expected already_onboarded, got %s", out.Kind)
	}
	if out.Record.ID != "emp-2" {
		t.Fatalf("expected record to be carried on outcome")
	}
	if store.calls != 1 {
		t.Fatalf("completion must come from the single lookup, got %d calls", store.calls)
	}
}
