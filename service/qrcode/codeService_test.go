package qrcodesvc

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	qrcoderepo "pkgrental/repository/qrcode"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type repoMock struct {
	activeExistsFn func(code string) (bool, error)
	deactivateFn   func(customerID int64) error
	insertFn       func(customerID int64, code string, image []byte) (int64, error)
}

func (m *repoMock) ActiveExists(_ context.Context, _ *sql.Tx, code string) (bool, error) {
	if m.activeExistsFn == nil {
		return false, nil
	}
	return m.activeExistsFn(code)
}

func (m *repoMock) DeactivateFor(_ context.Context, _ *sql.Tx, customerID int64) error {
	if m.deactivateFn == nil {
		return nil
	}
	return m.deactivateFn(customerID)
}

func (m *repoMock) Insert(_ context.Context, _ *sql.Tx, customerID int64, code string, image []byte) (int64, error) {
	if m.insertFn == nil {
		return 1, nil
	}
	return m.insertFn(customerID, code, image)
}

// the rest of the interface is never reached from Issue

func (m *repoMock) ResolveActive(context.Context, string) (*qrcoderepo.Resolution, error) {
	panic("not used")
}
func (m *repoMock) ActiveCodeID(context.Context, int64) (*int64, error) { panic("not used") }
func (m *repoMock) DeleteAllFor(context.Context, *sql.Tx, int64) (int64, error) {
	panic("not used")
}
func (m *repoMock) Count(context.Context) (int, error) { panic("not used") }

func newIssueService(t *testing.T, m *repoMock) (Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, m), mock
}

var codeRe = regexp.MustCompile(`^\d{4}$`)

func TestIssue_Success(t *testing.T) {
	var deactivated, inserted bool
	m := &repoMock{
		deactivateFn: func(customerID int64) error {
			deactivated = true
			if inserted {
				t.Fatal("old code must be retired before the new one is stored")
			}
			return nil
		},
		insertFn: func(customerID int64, code string, image []byte) (int64, error) {
			inserted = true
			if customerID != 7 || len(image) == 0 {
				t.Fatalf("insert customer=%d image=%d bytes", customerID, len(image))
			}
			return 42, nil
		},
	}
	s, mock := newIssueService(t, m)
	mock.ExpectBegin()
	mock.ExpectCommit()

	out, err := s.Issue(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if out.CodeID != 42 || !codeRe.MatchString(out.Code) || out.Code == "0000" {
		t.Fatalf("issued = %+v", out)
	}
	if !deactivated {
		t.Fatal("previous active code was not retired")
	}
}

func TestIssue_CollisionRedraw(t *testing.T) {
	attempts := 0
	m := &repoMock{
		activeExistsFn: func(code string) (bool, error) {
			attempts++
			return attempts == 1, nil // first draw collides
		},
	}
	s, mock := newIssueService(t, m)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	if _, err := s.Issue(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d; want 2", attempts)
	}
}

func TestIssue_UniqueViolationRedraw(t *testing.T) {
	// a concurrent issuer can win the unique index race after our existence
	// check passed; that must count as a collision, not an error
	calls := 0
	m := &repoMock{
		insertFn: func(int64, string, []byte) (int64, error) {
			calls++
			if calls == 1 {
				return 0, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
			}
			return 5, nil
		},
	}
	s, mock := newIssueService(t, m)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	out, err := s.Issue(context.Background(), 1)
	if err != nil || out.CodeID != 5 {
		t.Fatalf("out=%+v err=%v", out, err)
	}
}

func TestIssue_CapacityExhausted(t *testing.T) {
	attempts := 0
	m := &repoMock{
		activeExistsFn: func(string) (bool, error) {
			attempts++
			return true, nil
		},
	}
	s, mock := newIssueService(t, m)
	for i := 0; i < maxAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	_, err := s.Issue(context.Background(), 1)
	if !errors.Is(err, ErrCapacityExhausted) {
		t.Fatalf("got %v; want capacity exhausted", err)
	}
	if attempts != maxAttempts {
		t.Fatalf("attempts = %d; want %d", attempts, maxAttempts)
	}
}
