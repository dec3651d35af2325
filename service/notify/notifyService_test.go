package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"pkgrental/model"
	"pkgrental/repository/mailer"
)

type mailerMock struct {
	sent []mailer.Request
	ok   bool
	fail string
}

func (m *mailerMock) Send(_ context.Context, req mailer.Request) (bool, string) {
	m.sent = append(m.sent, req)
	if m.ok {
		return true, ""
	}
	return false, m.fail
}

type logEntry struct {
	customerID int64
	codeID     *int64
	kind       model.EmailKind
	status     model.EmailStatus
	detail     *string
}

type logMock struct {
	rows []logEntry
	err  error
}

func (m *logMock) Append(_ context.Context, customerID int64, codeID *int64, kind model.EmailKind, status model.EmailStatus, detail *string) error {
	m.rows = append(m.rows, logEntry{customerID, codeID, kind, status, detail})
	return m.err
}

type custMock struct {
	c   *model.Customer
	err error
}

func (m *custMock) Get(context.Context, int64) (*model.Customer, error) { return m.c, m.err }

type codeMock struct {
	id  *int64
	err error
}

func (m *codeMock) ActiveCodeID(context.Context, int64) (*int64, error) { return m.id, m.err }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCodeIssued_LogsSuccess(t *testing.T) {
	mm := &mailerMock{ok: true}
	lm := &logMock{}
	s := New(&custMock{}, &codeMock{}, lm, mm, discard())

	c := &model.Customer{ID: 4, Email: "ada@example.com", FirstName: "Ada"}
	ok := s.CodeIssued(context.Background(), c, 11, "0420", []byte{1}, "Standard", 2)
	if !ok {
		t.Fatal("send reported as failed")
	}

	if len(mm.sent) != 1 || mm.sent[0].Kind != model.EmailIssuance || mm.sent[0].Code != "0420" {
		t.Fatalf("sent = %+v", mm.sent)
	}
	if len(lm.rows) != 1 {
		t.Fatalf("log rows = %d", len(lm.rows))
	}
	row := lm.rows[0]
	if row.customerID != 4 || row.status != model.EmailSuccess || row.codeID == nil || *row.codeID != 11 {
		t.Fatalf("row = %+v", row)
	}
}

func TestCodeIssued_FailureLoggedNotFatal(t *testing.T) {
	mm := &mailerMock{ok: false, fail: "smtp timeout"}
	lm := &logMock{}
	s := New(&custMock{}, &codeMock{}, lm, mm, discard())

	ok := s.CodeIssued(context.Background(), &model.Customer{ID: 4}, 11, "0420", nil, "", 1)
	if ok {
		t.Fatal("failed send reported as ok")
	}
	row := lm.rows[0]
	if row.status != model.EmailFailed || row.detail == nil || *row.detail != "smtp timeout" {
		t.Fatalf("row = %+v", row)
	}
}

func TestAllReturned_SendsThankYou(t *testing.T) {
	id := int64(77)
	mm := &mailerMock{ok: true}
	lm := &logMock{}
	cm := &custMock{c: &model.Customer{ID: 6, Email: "ada@example.com", PackageType: "Premium"}}
	s := New(cm, &codeMock{id: &id}, lm, mm, discard())

	if !s.AllReturned(context.Background(), 6) {
		t.Fatal("send reported as failed")
	}
	if mm.sent[0].Kind != model.EmailThankYou || mm.sent[0].Recipient != "ada@example.com" {
		t.Fatalf("sent = %+v", mm.sent[0])
	}
	if lm.rows[0].codeID == nil || *lm.rows[0].codeID != 77 {
		t.Fatalf("row = %+v", lm.rows[0])
	}
}

func TestAllReturned_CustomerLoadFailure(t *testing.T) {
	mm := &mailerMock{ok: true}
	s := New(&custMock{err: errors.New("boom")}, &codeMock{}, &logMock{}, mm, discard())

	if s.AllReturned(context.Background(), 6) {
		t.Fatal("reported ok without a recipient")
	}
	if len(mm.sent) != 0 {
		t.Fatal("mail sent without a recipient")
	}
}

// Losing an audit row must not turn a delivered email into a failure.
func TestRecord_AppendErrorIgnored(t *testing.T) {
	mm := &mailerMock{ok: true}
	lm := &logMock{err: errors.New("insert failed")}
	s := New(&custMock{c: &model.Customer{ID: 6}}, &codeMock{}, lm, mm, discard())

	if !s.AllReturned(context.Background(), 6) {
		t.Fatal("log append failure leaked into the result")
	}
}
