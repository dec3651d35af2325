package notify

import (
	"context"
	"log/slog"

	"pkgrental/model"
	"pkgrental/repository/mailer"
)

type CustomerGetter interface {
	Get(ctx context.Context, id int64) (*model.Customer, error)
}

type CodeLookup interface {
	ActiveCodeID(ctx context.Context, customerID int64) (*int64, error)
}

type LogRepo interface {
	Append(ctx context.Context, customerID int64, qrCodeID *int64, kind model.EmailKind, status model.EmailStatus, detail *string) error
}

// Service shapes notification requests and records every attempt. It never
// returns errors: a failed send is logged and reported as false, because the
// inventory change that triggered it has already committed. Whether to call
// at all is the caller's decision (the transition controller's edge rule).
type Service interface {
	CodeIssued(ctx context.Context, c *model.Customer, codeID int64, code string, image []byte, packageType string, quantity int) bool
	AllReturned(ctx context.Context, customerID int64) bool
}

type service struct {
	cust CustomerGetter
	code CodeLookup
	logs LogRepo
	m    mailer.Mailer
	log  *slog.Logger
}

func New(cust CustomerGetter, code CodeLookup, logs LogRepo, m mailer.Mailer, log *slog.Logger) Service {
	return &service{cust: cust, code: code, logs: logs, m: m, log: log}
}

func (s *service) CodeIssued(ctx context.Context, c *model.Customer, codeID int64, code string, image []byte, packageType string, quantity int) bool {
	req := mailer.Request{
		Recipient:   c.Email,
		Kind:        model.EmailIssuance,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		City:        c.City,
		PackageType: packageType,
		Quantity:    quantity,
		Code:        code,
		Attachment:  image,
	}
	ok, detail := s.m.Send(ctx, req)
	s.record(ctx, c.ID, &codeID, model.EmailIssuance, ok, detail)
	return ok
}

func (s *service) AllReturned(ctx context.Context, customerID int64) bool {
	c, err := s.cust.Get(ctx, customerID)
	if err != nil {
		s.log.Error("thank-you email skipped, customer load failed", "customer_id", customerID, "err", err)
		return false
	}

	req := mailer.Request{
		Recipient:   c.Email,
		Kind:        model.EmailThankYou,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		City:        c.City,
		PackageType: c.PackageType,
	}
	ok, detail := s.m.Send(ctx, req)

	codeID, err := s.code.ActiveCodeID(ctx, customerID)
	if err != nil {
		s.log.Warn("active code lookup failed for email log", "customer_id", customerID, "err", err)
		codeID = nil
	}
	s.record(ctx, c.ID, codeID, model.EmailThankYou, ok, detail)
	return ok
}

func (s *service) record(ctx context.Context, customerID int64, codeID *int64, kind model.EmailKind, ok bool, detail string) {
	status := model.EmailSuccess
	var errDetail *string
	if !ok {
		status = model.EmailFailed
		errDetail = &detail
	}
	if err := s.logs.Append(ctx, customerID, codeID, kind, status, errDetail); err != nil {
		// the log is audit-only; losing a row must not fail the operation
		s.log.Error("email log append failed", "customer_id", customerID, "kind", kind, "err", err)
	}
}
