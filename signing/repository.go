package signing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrPackageNotFound signals the package does not exist.
	ErrPackageNotFound = errors.New("signing: package not found")
	// ErrEmptyPackage signals document generation produced no items.
	ErrEmptyPackage = errors.New("signing: package has no documents")
)

// Repository provides access to document packages. Sign and correction writes
// take the caller's transaction; the item rows are locked first so concurrent
// sign attempts on the same package serialize.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreatePackage persists a freshly generated package with its items in the
// order the generation collaborator produced them.
func (r *Repository) CreatePackage(ctx context.Context, tx pgx.Tx, packageID, employeeID string, specs []ItemSpec) (Package, error) {
	if len(specs) == 0 {
		return Package{}, ErrEmptyPackage
	}

	var pkg Package
	if err := tx.QueryRow(ctx, `
		INSERT INTO document_packages (id, employee_id)
		VALUES ($1, $2)
		RETURNING id, employee_id, created_at
	`, packageID, employeeID).Scan(&pkg.ID, &pkg.EmployeeID, &pkg.CreatedAt); err != nil {
		return Package{}, fmt.Errorf("signing: insert package: %w", err)
	}

	for pos, spec := range specs {
		var item DocumentItem
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_items (package_id, doc_type, required, position, status)
			VALUES ($1, $2, $3, $4, 'pending')
			RETURNING id, package_id, doc_type, required, position, status::text, signed_at
		`, pkg.ID, spec.Type, spec.Required, pos).Scan(
			&item.ID, &item.PackageID, &item.Type, &item.Required, &item.Position, &item.Status, &item.SignedAt,
		); err != nil {
			return Package{}, fmt.Errorf("signing: insert item %d: %w", pos, err)
		}
		pkg.Items = append(pkg.Items, item)
	}

	return pkg, nil
}

// ItemsLocked returns the package's items in signing order with their rows
// locked for the duration of the caller's transaction.
func (r *Repository) ItemsLocked(ctx context.Context, tx pgx.Tx, packageID string) ([]DocumentItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, package_id, doc_type, required, position, status::text, signed_at
		FROM document_items
		WHERE package_id = $1
		ORDER BY position
		FOR UPDATE
	`, packageID)
	if err != nil {
		return nil, fmt.Errorf("signing: lock items: %w", err)
	}
	defer rows.Close()

	items := make([]DocumentItem, 0, 8)
	for rows.Next() {
		var item DocumentItem
		if err := rows.Scan(&item.ID, &item.PackageID, &item.Type, &item.Required, &item.Position, &item.Status, &item.SignedAt); err != nil {
			return nil, fmt.Errorf("signing: scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("signing: iterate items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrPackageNotFound
	}
	return items, nil
}

// PackageEmployee resolves the owning employee for a package.
func (r *Repository) PackageEmployee(ctx context.Context, tx pgx.Tx, packageID string) (string, error) {
	var employeeID string
	if err := tx.QueryRow(ctx, `SELECT employee_id FROM document_packages WHERE id = $1`, packageID).Scan(&employeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPackageNotFound
		}
		return "", fmt.Errorf("signing: package employee: %w", err)
	}
	return employeeID, nil
}

// PackageForEmployee resolves the employee's package id.
func (r *Repository) PackageForEmployee(ctx context.Context, employeeID string) (string, error) {
	var packageID string
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM document_packages WHERE employee_id = $1 ORDER BY created_at DESC LIMIT 1
	`, employeeID).Scan(&packageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPackageNotFound
		}
		return "", fmt.Errorf("signing: package for employee: %w", err)
	}
	return packageID, nil
}

// MarkSigned flips one pending item to signed.
func (r *Repository) MarkSigned(ctx context.Context, tx pgx.Tx, itemID string) (DocumentItem, error) {
	const query = `
		UPDATE document_items
		SET status = 'signed', signed_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, package_id, doc_type, required, position, status::text, signed_at
	`

	var item DocumentItem
	if err := tx.QueryRow(ctx, query, itemID).Scan(
		&item.ID, &item.PackageID, &item.Type, &item.Required, &item.Position, &item.Status, &item.SignedAt,
	); err != nil {
		return DocumentItem{}, fmt.Errorf("signing: mark signed: %w", err)
	}
	return item, nil
}

// ResetPending reverts a signed item for correction. Callers append the
// correction audit event in the same transaction.
func (r *Repository) ResetPending(ctx context.Context, tx pgx.Tx, itemID string) (DocumentItem, error) {
	const query = `
		UPDATE document_items
		SET status = 'pending', signed_at = NULL
		WHERE id = $1 AND status = 'signed'
		RETURNING id, package_id, doc_type, required, position, status::text, signed_at
	`

	var item DocumentItem
	if err := tx.QueryRow(ctx, query, itemID).Scan(
		&item.ID, &item.PackageID, &item.Type, &item.Required, &item.Position, &item.Status, &item.SignedAt,
	); err != nil {
		return DocumentItem{}, fmt.Errorf("signing: reset pending: %w", err)
	}
	return item, nil
}

// Snapshot returns the package's items in signing order without locking,
// reflecting the latest committed state. Used for display reads only.
func (r *Repository) Snapshot(ctx context.Context, packageID string) ([]DocumentItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, package_id, doc_type, required, position, status::text, signed_at
		FROM document_items
		WHERE package_id = $1
		ORDER BY position
	`, packageID)
	if err != nil {
		return nil, fmt.Errorf("signing: snapshot: %w", err)
	}
	defer rows.Close()

	items := make([]DocumentItem, 0, 8)
	for rows.Next() {
		var item DocumentItem
		if err := rows.Scan(&item.ID, &item.PackageID, &item.Type, &item.Required, &item.Position, &item.Status, &item.SignedAt); err != nil {
			return nil, fmt.Errorf("signing: scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("signing: iterate items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrPackageNotFound
	}
	return items, nil
}
