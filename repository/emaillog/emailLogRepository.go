// repository/emaillog/repo.go
package emaillogrepo

import (
	"context"
	"database/sql"

	"pkgrental/model"
)

type Repo interface {
	Append(ctx context.Context, customerID int64, qrCodeID *int64, kind model.EmailKind, status model.EmailStatus, detail *string) error
	ListFor(ctx context.Context, customerID int64) ([]model.EmailLog, error)
	DeleteAllFor(ctx context.Context, tx *sql.Tx, customerID int64) (int64, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Append(ctx context.Context, customerID int64, qrCodeID *int64, kind model.EmailKind, status model.EmailStatus, detail *string) error {
	const q = `
		INSERT INTO email_logs (customer_id, qr_code_id, kind, status, error_detail)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, customerID, qrCodeID, kind, status, detail)
	return err
}

func (r *repo) ListFor(ctx context.Context, customerID int64) ([]model.EmailLog, error) {
	const q = `
		SELECT id, customer_id, qr_code_id, kind, status, error_detail, created_at
		FROM email_logs
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EmailLog
	for rows.Next() {
		var l model.EmailLog
		if err := rows.Scan(&l.ID, &l.CustomerID, &l.QRCodeID, &l.Kind, &l.Status, &l.ErrorDetail, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) DeleteAllFor(ctx context.Context, tx *sql.Tx, customerID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM email_logs WHERE customer_id = $1`, customerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
