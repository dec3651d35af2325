package ingest

import (
	"context"
	"errors"
	"strings"

	"pkgrental/model"
	qrcodesvc "pkgrental/service/qrcode"
)

// ErrMissingFields rejects a submission without name or email. Field
// extraction heuristics live upstream; by the time a tuple reaches this
// service it is expected to be complete.
var ErrMissingFields = errors.New("missing required fields")

// Submission is the already-extracted form tuple.
type Submission struct {
	FirstName   string
	LastName    string
	Email       string
	City        string
	PackageType string
	Quantity    int
}

type Result struct {
	CustomerID int64   `json:"customer_id"`
	Code       string  `json:"qr_code"`
	UnitIDs    []int64 `json:"unit_ids,omitempty"`
	EmailSent  bool    `json:"email_sent"`
}

type CustomerRepo interface {
	Upsert(ctx context.Context, first, last, email, city, packageType string) (int64, error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
}

type Inventory interface {
	AddUnits(ctx context.Context, customerID int64, packageType string, quantity int) ([]int64, error)
	Summary(ctx context.Context, customerID int64) (model.PackageSummary, error)
}

type CodeIssuer interface {
	Issue(ctx context.Context, customerID int64) (*qrcodesvc.Issued, error)
}

type Notifier interface {
	CodeIssued(ctx context.Context, c *model.Customer, codeID int64, code string, image []byte, packageType string, quantity int) bool
}

type Service interface {
	// Process handles one form submission: upsert the customer, extend the
	// inventory, issue a fresh code, send the issuance email.
	Process(ctx context.Context, sub Submission) (*Result, error)

	// Reissue regenerates a customer's code and re-sends the issuance email
	// without touching the inventory.
	Reissue(ctx context.Context, customerID int64) (*Result, error)
}

type service struct {
	cust  CustomerRepo
	inv   Inventory
	codes CodeIssuer
	n     Notifier
}

func New(cust CustomerRepo, inv Inventory, codes CodeIssuer, n Notifier) Service {
	return &service{cust: cust, inv: inv, codes: codes, n: n}
}

func (s *service) Process(ctx context.Context, sub Submission) (*Result, error) {
	sub.FirstName = strings.TrimSpace(sub.FirstName)
	sub.LastName = strings.TrimSpace(sub.LastName)
	sub.Email = strings.TrimSpace(strings.ToLower(sub.Email))
	if sub.FirstName == "" || sub.LastName == "" || sub.Email == "" {
		return nil, ErrMissingFields
	}
	if sub.PackageType == "" {
		sub.PackageType = "Not specified"
	}
	if sub.Quantity < 1 {
		sub.Quantity = 1
	}

	customerID, err := s.cust.Upsert(ctx, sub.FirstName, sub.LastName, sub.Email, sub.City, sub.PackageType)
	if err != nil {
		return nil, err
	}

	unitIDs, err := s.inv.AddUnits(ctx, customerID, sub.PackageType, sub.Quantity)
	if err != nil {
		return nil, err
	}

	issued, err := s.codes.Issue(ctx, customerID)
	if err != nil {
		return nil, err
	}

	c, err := s.cust.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	sent := s.n.CodeIssued(ctx, c, issued.CodeID, issued.Code, issued.Image, sub.PackageType, sub.Quantity)

	return &Result{
		CustomerID: customerID,
		Code:       issued.Code,
		UnitIDs:    unitIDs,
		EmailSent:  sent,
	}, nil
}

func (s *service) Reissue(ctx context.Context, customerID int64) (*Result, error) {
	c, err := s.cust.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	issued, err := s.codes.Issue(ctx, customerID)
	if err != nil {
		return nil, err
	}

	sum, err := s.inv.Summary(ctx, customerID)
	if err != nil {
		return nil, err
	}
	sent := s.n.CodeIssued(ctx, c, issued.CodeID, issued.Code, issued.Image, c.PackageType, sum.Total)

	return &Result{CustomerID: customerID, Code: issued.Code, EmailSent: sent}, nil
}
