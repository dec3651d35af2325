package qrcodesvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"

	qrcoderepo "pkgrental/repository/qrcode"
	"pkgrental/util/qr"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrCapacityExhausted means no unique candidate was found within the attempt
// budget: the 0001-9999 active code space is effectively saturated.
var ErrCapacityExhausted = errors.New("active code space exhausted")

var errCollision = errors.New("code collision")

const maxAttempts = 100

type Issued struct {
	CodeID int64  `json:"qr_code_id"`
	Code   string `json:"qr_code"`
	Image  []byte `json:"-"`
}

type Service interface {
	// Issue draws a fresh 4-digit code, retires the customer's previous
	// active code, and stores the new binding with its QR image.
	Issue(ctx context.Context, customerID int64) (*Issued, error)
}

type service struct {
	db *sql.DB
	r  qrcoderepo.Repo
}

func New(db *sql.DB, r qrcoderepo.Repo) Service {
	return &service{db: db, r: r}
}

func (s *service) Issue(ctx context.Context, customerID int64) (*Issued, error) {
	// Random draws, not a counter: sequential codes would be guessable at
	// the pickup table. This is convenience, not a security boundary.
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := fmt.Sprintf("%04d", rand.IntN(9999)+1)
		issued, err := s.tryIssue(ctx, customerID, code)
		if errors.Is(err, errCollision) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return issued, nil
	}
	return nil, ErrCapacityExhausted
}

func (s *service) tryIssue(ctx context.Context, customerID int64, code string) (issued *Issued, err error) {
	img, err := qr.Encode(code)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exists, err := s.r.ActiveExists(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		err = errCollision
		return nil, err
	}

	// one active code per customer
	if err = s.r.DeactivateFor(ctx, tx, customerID); err != nil {
		return nil, err
	}

	id, err := s.r.Insert(ctx, tx, customerID, code, img)
	if err != nil {
		// a concurrent issue can win the partial unique index race;
		// treat it like a collision and redraw
		if isUniqueViolation(err) {
			err = errCollision
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &Issued{CodeID: id, Code: code, Image: img}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
