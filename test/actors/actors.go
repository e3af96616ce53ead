// Package actors holds the concurrent workers of the stress harness. Each
// actor replays one journey behavior with the same SQL shape the services
// use, so the oracles observe the invariants under real contention.
package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Decider battles to record the one terminal decision on the employee's
// pending offer. Roughly one in four wins is an acceptance; the rest open
// disputes, which the Resolver later reopens into fresh pending offers.
func Decider(ctx context.Context, pool *pgxpool.Pool, employeeID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		accept := rand.Intn(4) == 0
		if err := decideOnce(ctx, pool, employeeID, accept); err != nil {
			return fmt.Errorf("decider: %w", err)
		}
		time.Sleep(time.Duration(10+rand.Intn(30)) * time.Millisecond)
	}
}

func decideOnce(ctx context.Context, pool *pgxpool.Pool, employeeID string, accept bool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var offerID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM offers
		WHERE employee_id = $1 AND decision = 'pending'
		ORDER BY created_at DESC LIMIT 1
		FOR UPDATE
	`, employeeID).Scan(&offerID)
	if errors.Is(err, pgx.ErrNoRows) {
		// lost the race, expected under contention
		return nil
	}
	if err != nil {
		return err
	}

	var current string
	if err := tx.QueryRow(ctx, `SELECT status::text FROM employees WHERE id = $1 FOR UPDATE`, employeeID).Scan(&current); err != nil {
		return err
	}
	if current != "offer_pending_review" {
		return nil
	}

	if accept {
		if _, err := tx.Exec(ctx, `UPDATE offers SET decision='accepted', decided_at=now(), updated_at=now() WHERE id=$1`, offerID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE employees SET status='offer_accepted', updated_at=now() WHERE id=$1`, employeeID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO timeline_events (employee_id, type, payload) VALUES ($1,'OFFER_ACCEPTED','{}'::jsonb)`, employeeID); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx, `UPDATE offers SET decision='disputed', decided_at=now(), updated_at=now() WHERE id=$1`, offerID); err != nil {
			return err
		}
		disputeID := uuid.NewString()
		if _, err := tx.Exec(ctx, `
			INSERT INTO disputes (id, employee_id, offer_id, reason_code, detail_text, status)
			VALUES ($1,$2,$3,'incorrect_compensation','stress mismatch','open')
		`, disputeID, employeeID, offerID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO resolution_sessions (id, dispute_id, state) VALUES ($1,$2,'opened')`, uuid.NewString(), disputeID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE employees SET status='offer_disputed', updated_at=now() WHERE id=$1`, employeeID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO timeline_events (employee_id, type, payload) VALUES ($1,'OFFER_DISPUTED','{}'::jsonb)`, employeeID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO outbox (topic, payload) VALUES ('onboarding.dispute_opened', jsonb_build_object('employee_id',$1::text))`, employeeID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Resolver closes open disputes and reopens a fresh pending offer, feeding
// the Deciders another round.
func Resolver(ctx context.Context, pool *pgxpool.Pool, employeeID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if err := resolveOnce(ctx, pool, employeeID); err != nil {
			return fmt.Errorf("resolver: %w", err)
		}
		time.Sleep(time.Duration(40+rand.Intn(60)) * time.Millisecond)
	}
}

func resolveOnce(ctx context.Context, pool *pgxpool.Pool, employeeID string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var disputeID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM disputes
		WHERE employee_id = $1 AND status = 'open'
		ORDER BY created_at LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, employeeID).Scan(&disputeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE disputes SET status='resolved', resolved_at=now(), updated_at=now() WHERE id=$1`, disputeID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE resolution_sessions SET state='resolved', updated_at=now() WHERE dispute_id=$1`, disputeID); err != nil {
		return err
	}

	var current string
	if err := tx.QueryRow(ctx, `SELECT status::text FROM employees WHERE id = $1 FOR UPDATE`, employeeID).Scan(&current); err != nil {
		return err
	}
	if current == "offer_disputed" {
		if _, err := tx.Exec(ctx, `
			INSERT INTO offers (id, employee_id, categories, decision)
			VALUES ($1,$2,'[]'::jsonb,'pending')
		`, uuid.NewString(), employeeID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE employees SET status='offer_pending_review', updated_at=now() WHERE id=$1`, employeeID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO timeline_events (employee_id, type, payload) VALUES ($1,'OFFER_REOPENED','{}'::jsonb)`, employeeID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Signer provisions the package once the offer is accepted, then signs
// documents strictly in package order, completing the journey when the last
// one lands. Retries of already-signed items are no-ops.
func Signer(ctx context.Context, pool *pgxpool.Pool, employeeID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if err := signOnce(ctx, pool, employeeID); err != nil {
			return fmt.Errorf("signer: %w", err)
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

func signOnce(ctx context.Context, pool *pgxpool.Pool, employeeID string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var current string
	if err := tx.QueryRow(ctx, `SELECT status::text FROM employees WHERE id = $1 FOR UPDATE`, employeeID).Scan(&current); err != nil {
		return err
	}

	switch current {
	case "offer_accepted":
		packageID := uuid.NewString()
		if _, err := tx.Exec(ctx, `INSERT INTO document_packages (id, employee_id) VALUES ($1,$2)`, packageID, employeeID); err != nil {
			return err
		}
		for pos, docType := range []string{"employment_contract", "nda", "tax_declaration"} {
			if _, err := tx.Exec(ctx, `
				INSERT INTO document_items (package_id, doc_type, required, position, status)
				VALUES ($1,$2,true,$3,'pending')
			`, packageID, docType, pos); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE employees SET status='documents_signing', updated_at=now() WHERE id=$1`, employeeID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO timeline_events (employee_id, type, payload) VALUES ($1,'PACKAGE_CREATED','{}'::jsonb)`, employeeID); err != nil {
			return err
		}

	case "documents_signing":
		var itemID string
		err = tx.QueryRow(ctx, `
			SELECT di.id FROM document_items di
			JOIN document_packages dp ON dp.id = di.package_id
			WHERE dp.employee_id = $1 AND di.status = 'pending'
			ORDER BY di.position LIMIT 1
			FOR UPDATE
		`, employeeID).Scan(&itemID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE document_items SET status='signed', signed_at=now() WHERE id=$1`, itemID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO timeline_events (employee_id, type, payload) VALUES ($1,'DOCUMENT_SIGNED','{}'::jsonb)`, employeeID); err != nil {
			return err
		}

		var remaining int
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM document_items di
			JOIN document_packages dp ON dp.id = di.package_id
			WHERE dp.employee_id = $1 AND di.status = 'pending'
		`, employeeID).Scan(&remaining); err != nil {
			return err
		}
		if remaining == 0 {
			if _, err := tx.Exec(ctx, `UPDATE employees SET status='onboarding_complete', onboarded_at=now(), updated_at=now() WHERE id=$1`, employeeID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO timeline_events (employee_id, type, payload) VALUES ($1,'ONBOARDING_COMPLETE','{}'::jsonb)`, employeeID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO outbox (topic, payload) VALUES ('onboarding.complete', jsonb_build_object('employee_id',$1::text))`, employeeID); err != nil {
				return err
			}
		}

	default:
		return nil
	}

	return tx.Commit(ctx)
}

// OutboxWorker drains pending outbox rows with SKIP LOCKED, simulating the
// occasional publish failure by bumping attempts instead of marking sent.
func OutboxWorker(ctx context.Context, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		rows, err := tx.Query(ctx, `SELECT id FROM outbox WHERE status='pending' ORDER BY created_at FOR UPDATE SKIP LOCKED LIMIT 10`)
		if err != nil {
			_ = tx.Rollback(ctx)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		ids := make([]string, 0, 10)
		for rows.Next() {
			var id string
			_ = rows.Scan(&id)
			ids = append(ids, id)
		}
		rows.Close()
		for _, id := range ids {
			if rand.Intn(10) == 0 {
				_, _ = tx.Exec(ctx, `UPDATE outbox SET attempts=attempts+1 WHERE id=$1`, id)
				continue
			}
			_, _ = tx.Exec(ctx, `UPDATE outbox SET status='sent', sent_at=now() WHERE id=$1`, id)
		}
		_ = tx.Commit(ctx)
		time.Sleep(100 * time.Millisecond)
	}
}
