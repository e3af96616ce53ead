// Package oracles contains invariant checks run against the live database
// while the actors churn. Each oracle is a single SQL query that must return
// zero rows; any row is a violation.
package oracles

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name  string
	Query string
}

// All returns the full oracle suite. Every query selects violating rows, so
// an empty result set means the invariant held at that instant.
func All() []Oracle {
	return []Oracle{
		{
			Name: "decided offers carry a decision timestamp",
			Query: `
				SELECT id FROM offers
				WHERE decision <> 'pending' AND decided_at IS NULL
			`,
		},
		{
			Name: "at most one pending offer per employee",
			Query: `
				SELECT employee_id FROM offers
				WHERE decision = 'pending'
				GROUP BY employee_id HAVING COUNT(*) > 1
			`,
		},
		{
			Name: "post-decision statuses imply an accepted offer",
			Query: `
				SELECT e.id FROM employees e
				WHERE e.status IN ('offer_accepted', 'documents_signing', 'onboarding_complete')
				  AND NOT EXISTS (
					SELECT 1 FROM offers o
					WHERE o.employee_id = e.id AND o.decision = 'accepted'
				  )
			`,
		},
		{
			Name: "disputed status implies an open dispute",
			Query: `
				SELECT e.id FROM employees e
				WHERE e.status = 'offer_disputed'
				  AND NOT EXISTS (
					SELECT 1 FROM disputes d
					WHERE d.employee_id = e.id AND d.status = 'open'
				  )
			`,
		},
		{
			Name: "every dispute has a resolution session",
			Query: `
				SELECT d.id FROM disputes d
				WHERE NOT EXISTS (
					SELECT 1 FROM resolution_sessions s WHERE s.dispute_id = d.id
				)
			`,
		},
		{
			Name: "resolved disputes carry a resolution timestamp",
			Query: `
				SELECT id FROM disputes
				WHERE status = 'resolved' AND resolved_at IS NULL
			`,
		},
		{
			Name: "completed employees have no pending documents",
			Query: `
				SELECT e.id FROM employees e
				JOIN document_packages dp ON dp.employee_id = e.id
				JOIN document_items di ON di.package_id = dp.id
				WHERE e.status = 'onboarding_complete' AND di.status = 'pending'
			`,
		},
		{
			Name: "signed documents form a position prefix",
			Query: `
				SELECT signed.package_id FROM document_items signed
				JOIN document_items earlier
				  ON earlier.package_id = signed.package_id
				 AND earlier.position < signed.position
				WHERE signed.status = 'signed' AND earlier.status = 'pending'
			`,
		},
		{
			Name: "at most one completion event per employee",
			Query: `
				SELECT employee_id FROM timeline_events
				WHERE type = 'ONBOARDING_COMPLETE'
				GROUP BY employee_id HAVING COUNT(*) > 1
			`,
		},
		{
			Name: "sent outbox rows carry a sent timestamp",
			Query: `
				SELECT id FROM outbox
				WHERE status = 'sent' AND sent_at IS NULL
			`,
		},
		{
			Name: "no stale pending outbox rows",
			Query: `
				SELECT id FROM outbox
				WHERE status = 'pending' AND created_at < now() - interval '5 minutes'
			`,
		},
	}
}

// Check runs every oracle and returns a combined error describing all
// violations found in this pass.
func Check(ctx context.Context, pool *pgxpool.Pool) error {
	var violations []string
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.Query)
		if err != nil {
			return fmt.Errorf("oracle %q: %w", o.Name, err)
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("oracle %q scan: %w", o.Name, err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("oracle %q: %w", o.Name, err)
		}
		if len(ids) > 0 {
			violations = append(violations, fmt.Sprintf("%s: %v", o.Name, ids))
		}
	}
	if len(violations) > 0 {
		return fmt.Errorf("oracle violations:\n%s", strings.Join(violations, "\n"))
	}
	return nil
}
