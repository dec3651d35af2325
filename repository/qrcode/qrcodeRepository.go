// repository/qrcode/repo.go
package qrcoderepo

import (
	"context"
	"database/sql"
	"errors"

	"pkgrental/model"
)

var ErrNoActiveCode = errors.New("no active code")

// Resolution is the active-code join used at pickup and return time.
type Resolution struct {
	Customer model.Customer `json:"customer"`
	CodeID   int64          `json:"qr_code_id"`
	Code     string         `json:"qr_code"`
}

type Repo interface {
	ActiveExists(ctx context.Context, tx *sql.Tx, code string) (bool, error)
	DeactivateFor(ctx context.Context, tx *sql.Tx, customerID int64) error
	Insert(ctx context.Context, tx *sql.Tx, customerID int64, code string, image []byte) (int64, error)

	// ResolveActive matches active codes only: a superseded code must not
	// resolve even though its row is retained.
	ResolveActive(ctx context.Context, code string) (*Resolution, error)
	ActiveCodeID(ctx context.Context, customerID int64) (*int64, error)
	DeleteAllFor(ctx context.Context, tx *sql.Tx, customerID int64) (int64, error)
	Count(ctx context.Context) (int, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) ActiveExists(ctx context.Context, tx *sql.Tx, code string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM qr_codes WHERE code = $1 AND is_active)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, code).Scan(&exists)
	return exists, err
}

func (r *repo) DeactivateFor(ctx context.Context, tx *sql.Tx, customerID int64) error {
	const q = `UPDATE qr_codes SET is_active = FALSE WHERE customer_id = $1 AND is_active`
	_, err := tx.ExecContext(ctx, q, customerID)
	return err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, customerID int64, code string, image []byte) (int64, error) {
	const q = `
		INSERT INTO qr_codes (customer_id, code, image, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, q, customerID, code, image).Scan(&id)
	return id, err
}

func (r *repo) ResolveActive(ctx context.Context, code string) (*Resolution, error) {
	const q = `
		SELECT c.id, c.first_name, c.last_name, c.email, c.city, c.package_type,
			c.rental_status, c.notes, c.notes_updated_at, c.created_at, c.updated_at,
			qr.id, qr.code
		FROM customers c
		JOIN qr_codes qr ON qr.customer_id = c.id
		WHERE qr.code = $1 AND qr.is_active`
	var res Resolution
	c := &res.Customer
	err := r.db.QueryRowContext(ctx, q, code).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.City, &c.PackageType,
		&c.RentalStatus, &c.Notes, &c.NotesUpdatedAt, &c.CreatedAt, &c.UpdatedAt,
		&res.CodeID, &res.Code,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveCode
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repo) ActiveCodeID(ctx context.Context, customerID int64) (*int64, error) {
	const q = `SELECT id FROM qr_codes WHERE customer_id = $1 AND is_active LIMIT 1`
	var id int64
	err := r.db.QueryRowContext(ctx, q, customerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *repo) DeleteAllFor(ctx context.Context, tx *sql.Tx, customerID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM qr_codes WHERE customer_id = $1`, customerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qr_codes`).Scan(&n)
	return n, err
}
