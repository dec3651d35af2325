package redeem

import (
	"context"
	"errors"

	"pkgrental/model"
	customerrepo "pkgrental/repository/customer"
	qrcoderepo "pkgrental/repository/qrcode"
)

var ErrNotFound = errors.New("code not found")

// Redemption is what the scanning UI gets back for a presented code.
type Redemption struct {
	Customer model.Customer       `json:"customer"`
	CodeID   int64                `json:"qr_code_id"`
	Code     string               `json:"qr_code"`
	Summary  model.PackageSummary `json:"package_summary"`
	Units    []model.PackageUnit  `json:"packages"`
}

// Hit is a search result row with its live summary attached.
type Hit struct {
	customerrepo.SearchHit
	Summary model.PackageSummary `json:"package_summary"`
}

type CodeResolver interface {
	ResolveActive(ctx context.Context, code string) (*qrcoderepo.Resolution, error)
}

type CustomerSearcher interface {
	Search(ctx context.Context, term string) ([]customerrepo.SearchHit, error)
}

type Inventory interface {
	Summary(ctx context.Context, customerID int64) (model.PackageSummary, error)
	ListUnits(ctx context.Context, customerID int64) ([]model.PackageUnit, error)
}

type Service interface {
	// Resolve is read-only: it never mutates inventory and only matches the
	// currently active binding.
	Resolve(ctx context.Context, code string) (*Redemption, error)
	Search(ctx context.Context, term string) ([]Hit, error)
}

type service struct {
	codes CodeResolver
	cust  CustomerSearcher
	inv   Inventory
}

func New(codes CodeResolver, cust CustomerSearcher, inv Inventory) Service {
	return &service{codes: codes, cust: cust, inv: inv}
}

func (s *service) Resolve(ctx context.Context, code string) (*Redemption, error) {
	res, err := s.codes.ResolveActive(ctx, code)
	if errors.Is(err, qrcoderepo.ErrNoActiveCode) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sum, err := s.inv.Summary(ctx, res.Customer.ID)
	if err != nil {
		return nil, err
	}
	units, err := s.inv.ListUnits(ctx, res.Customer.ID)
	if err != nil {
		return nil, err
	}

	return &Redemption{
		Customer: res.Customer,
		CodeID:   res.CodeID,
		Code:     res.Code,
		Summary:  sum,
		Units:    units,
	}, nil
}

func (s *service) Search(ctx context.Context, term string) ([]Hit, error) {
	rows, err := s.cust.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	out := make([]Hit, 0, len(rows))
	for _, row := range rows {
		sum, err := s.inv.Summary(ctx, row.CustomerID)
		if err != nil {
			return nil, err
		}
		out = append(out, Hit{SearchHit: row, Summary: sum})
	}
	return out, nil
}
