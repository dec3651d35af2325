// repository/inventory/repo.go
package inventoryrepo

import (
	"context"
	"database/sql"

	"pkgrental/model"
)

type Repo interface {
	// Units
	InsertUnits(ctx context.Context, tx *sql.Tx, customerID int64, packageType string, n int) ([]int64, error)
	LockAvailable(ctx context.Context, tx *sql.Tx, customerID int64, limit int) ([]int64, error)
	LockAvailableNewest(ctx context.Context, tx *sql.Tx, customerID int64, limit int) ([]int64, error)
	LockRented(ctx context.Context, tx *sql.Tx, customerID int64, limit int) ([]int64, error)
	LockUnit(ctx context.Context, tx *sql.Tx, unitID int64) (*model.PackageUnit, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, unitIDs []int64, status model.UnitStatus) error
	DeleteUnits(ctx context.Context, tx *sql.Tx, unitIDs []int64) error
	ResetAll(ctx context.Context, tx *sql.Tx, customerID int64) error
	DeleteAllFor(ctx context.Context, tx *sql.Tx, customerID int64) (int64, error)

	// Aggregates
	SummaryTx(ctx context.Context, tx *sql.Tx, customerID int64) (model.PackageSummary, error)
	Summary(ctx context.Context, customerID int64) (model.PackageSummary, error)
	List(ctx context.Context, customerID int64) ([]model.PackageUnit, error)
	CountByStatus(ctx context.Context) (total, available, rented int, err error)

	// Customer status is derived from the unit aggregate, written in the
	// same transaction that mutates units.
	SetRentalStatus(ctx context.Context, tx *sql.Tx, customerID int64, st model.RentalStatus) error
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

// Units

func (r *repo) InsertUnits(ctx context.Context, tx *sql.Tx, customerID int64, packageType string, n int) ([]int64, error) {
	// One row per unit so independent checkout state survives later purchases.
	const q = `
		INSERT INTO package_units (customer_id, package_type, status)
		SELECT $1, $2, 'available' FROM generate_series(1, $3)
		RETURNING id`
	rows, err := tx.QueryContext(ctx, q, customerID, packageType, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *repo) LockAvailable(ctx context.Context, tx *sql.Tx, customerID int64, limit int) ([]int64, error) {
	return r.lockByStatus(ctx, tx, customerID, model.UnitAvailable, limit, "package_type, id")
}

func (r *repo) LockAvailableNewest(ctx context.Context, tx *sql.Tx, customerID int64, limit int) ([]int64, error) {
	// Removal takes the most recently added units first.
	return r.lockByStatus(ctx, tx, customerID, model.UnitAvailable, limit, "id DESC")
}

func (r *repo) LockRented(ctx context.Context, tx *sql.Tx, customerID int64, limit int) ([]int64, error) {
	return r.lockByStatus(ctx, tx, customerID, model.UnitRentedOut, limit, "package_type, id")
}

func (r *repo) lockByStatus(ctx context.Context, tx *sql.Tx, customerID int64, st model.UnitStatus, limit int, order string) ([]int64, error) {
	q := `
		SELECT id FROM package_units
		WHERE customer_id = $1 AND status = $2
		ORDER BY ` + order + `
		FOR UPDATE`
	args := []any{customerID, st}
	if limit > 0 {
		q += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *repo) LockUnit(ctx context.Context, tx *sql.Tx, unitID int64) (*model.PackageUnit, error) {
	const q = `
		SELECT id, customer_id, package_type, status, last_activity_at
		FROM package_units
		WHERE id = $1
		FOR UPDATE`
	var u model.PackageUnit
	err := tx.QueryRowContext(ctx, q, unitID).Scan(
		&u.ID, &u.CustomerID, &u.PackageType, &u.Status, &u.LastActivityAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, unitIDs []int64, status model.UnitStatus) error {
	const q = `
		UPDATE package_units
		SET status = $2, last_activity_at = NOW()
		WHERE id = ANY($1)`
	_, err := tx.ExecContext(ctx, q, unitIDs, status)
	return err
}

func (r *repo) DeleteUnits(ctx context.Context, tx *sql.Tx, unitIDs []int64) error {
	const q = `DELETE FROM package_units WHERE id = ANY($1)`
	_, err := tx.ExecContext(ctx, q, unitIDs)
	return err
}

func (r *repo) ResetAll(ctx context.Context, tx *sql.Tx, customerID int64) error {
	const q = `
		UPDATE package_units
		SET status = 'available', last_activity_at = NOW()
		WHERE customer_id = $1`
	_, err := tx.ExecContext(ctx, q, customerID)
	return err
}

func (r *repo) DeleteAllFor(ctx context.Context, tx *sql.Tx, customerID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM package_units WHERE customer_id = $1`, customerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Aggregates

const summaryQuery = `
	SELECT COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN status = 'available' THEN 1 ELSE 0 END), 0) AS available,
		COALESCE(SUM(CASE WHEN status = 'rented_out' THEN 1 ELSE 0 END), 0) AS rented
	FROM package_units
	WHERE customer_id = $1`

func (r *repo) SummaryTx(ctx context.Context, tx *sql.Tx, customerID int64) (model.PackageSummary, error) {
	return scanSummary(tx.QueryRowContext(ctx, summaryQuery, customerID))
}

func (r *repo) Summary(ctx context.Context, customerID int64) (model.PackageSummary, error) {
	return scanSummary(r.db.QueryRowContext(ctx, summaryQuery, customerID))
}

func scanSummary(row *sql.Row) (model.PackageSummary, error) {
	var total, available, rented int
	if err := row.Scan(&total, &available, &rented); err != nil {
		return model.NewSummary(0, 0, 0), err
	}
	return model.NewSummary(total, available, rented), nil
}

func (r *repo) List(ctx context.Context, customerID int64) ([]model.PackageUnit, error) {
	const q = `
		SELECT id, customer_id, package_type, status, last_activity_at
		FROM package_units
		WHERE customer_id = $1
		ORDER BY package_type, status, id`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PackageUnit
	for rows.Next() {
		var u model.PackageUnit
		if err := rows.Scan(&u.ID, &u.CustomerID, &u.PackageType, &u.Status, &u.LastActivityAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) CountByStatus(ctx context.Context) (int, int, int, error) {
	const q = `
		SELECT COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'available' THEN 1 ELSE 0 END), 0) AS available,
			COALESCE(SUM(CASE WHEN status = 'rented_out' THEN 1 ELSE 0 END), 0) AS rented
		FROM package_units`
	var total, available, rented int
	err := r.db.QueryRowContext(ctx, q).Scan(&total, &available, &rented)
	return total, available, rented, err
}

func (r *repo) SetRentalStatus(ctx context.Context, tx *sql.Tx, customerID int64, st model.RentalStatus) error {
	const q = `
		UPDATE customers
		SET rental_status = $2, updated_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, customerID, st)
	return err
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
