// repository/customer/repo.go
package customerrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pkgrental/model"
)

var ErrNotFound = errors.New("customer not found")

// SearchHit is the flat row shape for lookup and filter listings.
type SearchHit struct {
	CustomerID   int64              `json:"customer_id"`
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	Email        string             `json:"email"`
	RentalStatus model.RentalStatus `json:"rental_status"`
	PackageType  string             `json:"package_type,omitempty"`
	Code         *string            `json:"qr_code,omitempty"` // active code, if any
	UpdatedAt    time.Time          `json:"updated_at"`
}

type Counts struct {
	TotalCustomers int `json:"total_customers"`
	ActiveRentals  int `json:"active_rentals"`
}

type Repo interface {
	Upsert(ctx context.Context, first, last, email, city, packageType string) (int64, error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
	Search(ctx context.Context, term string) ([]SearchHit, error)
	FilterByStatus(ctx context.Context, st model.RentalStatus) ([]SearchHit, error) // "" means all
	SaveNotes(ctx context.Context, id int64, notes string) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
	Counts(ctx context.Context) (Counts, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

// Upsert matches on email: a repeat submission updates the identity fields
// and the last-known package type but never touches the unit inventory.
func (r *repo) Upsert(ctx context.Context, first, last, email, city, packageType string) (int64, error) {
	const q = `
		INSERT INTO customers (first_name, last_name, email, city, package_type, rental_status)
		VALUES ($1, $2, $3, $4, $5, 'not_active')
		ON CONFLICT (email) DO UPDATE
		SET first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			city = EXCLUDED.city,
			package_type = EXCLUDED.package_type,
			updated_at = NOW()
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, first, last, email, city, packageType).Scan(&id)
	return id, err
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Customer, error) {
	const q = `
		SELECT id, first_name, last_name, email, city, package_type,
			rental_status, notes, notes_updated_at, created_at, updated_at
		FROM customers
		WHERE id = $1`
	var c model.Customer
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.City, &c.PackageType,
		&c.RentalStatus, &c.Notes, &c.NotesUpdatedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) Search(ctx context.Context, term string) ([]SearchHit, error) {
	const q = `
		SELECT c.id, c.first_name, c.last_name, c.email, c.rental_status,
			c.package_type, qr.code, c.updated_at
		FROM customers c
		LEFT JOIN qr_codes qr ON qr.customer_id = c.id AND qr.is_active
		WHERE c.first_name ILIKE '%' || $1 || '%'
			OR c.last_name ILIKE '%' || $1 || '%'
			OR c.email ILIKE '%' || $1 || '%'
		ORDER BY c.last_name, c.first_name
		LIMIT 50`
	return r.queryHits(ctx, q, term)
}

func (r *repo) FilterByStatus(ctx context.Context, st model.RentalStatus) ([]SearchHit, error) {
	q := `
		SELECT c.id, c.first_name, c.last_name, c.email, c.rental_status,
			c.package_type, qr.code, c.updated_at
		FROM customers c
		LEFT JOIN qr_codes qr ON qr.customer_id = c.id AND qr.is_active`
	var args []any
	if st != "" {
		q += ` WHERE c.rental_status = $1`
		args = append(args, st)
	}
	q += ` ORDER BY c.last_name, c.first_name`
	return r.queryHits(ctx, q, args...)
}

func (r *repo) queryHits(ctx context.Context, q string, args ...any) ([]SearchHit, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(
			&h.CustomerID, &h.FirstName, &h.LastName, &h.Email,
			&h.RentalStatus, &h.PackageType, &h.Code, &h.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *repo) SaveNotes(ctx context.Context, id int64, notes string) error {
	const q = `
		UPDATE customers
		SET notes = $2, notes_updated_at = NOW()
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, notes)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Counts(ctx context.Context) (Counts, error) {
	const q = `
		SELECT COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN rental_status = 'active' THEN 1 ELSE 0 END), 0) AS active
		FROM customers`
	var c Counts
	err := r.db.QueryRowContext(ctx, q).Scan(&c.TotalCustomers, &c.ActiveRentals)
	return c, err
}
