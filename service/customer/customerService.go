package customersvc

import (
	"context"
	"database/sql"
	"errors"

	"pkgrental/model"
	customerrepo "pkgrental/repository/customer"
	emaillogrepo "pkgrental/repository/emaillog"
	inventoryrepo "pkgrental/repository/inventory"
	qrcoderepo "pkgrental/repository/qrcode"
)

var (
	ErrNotFound  = customerrepo.ErrNotFound
	ErrBadFilter = errors.New("invalid status filter")
)

type Detail struct {
	Customer *model.Customer      `json:"customer"`
	Units    []model.PackageUnit  `json:"packages"`
	Summary  model.PackageSummary `json:"package_summary"`
}

// Row is a listing entry with the live summary attached.
type Row struct {
	customerrepo.SearchHit
	Summary model.PackageSummary `json:"package_summary"`
}

type Stats struct {
	TotalCustomers    int `json:"total_customers"`
	ActiveRentals     int `json:"active_rentals"`
	TotalQRCodes      int `json:"total_qr_codes"`
	TotalPackages     int `json:"total_packages"`
	AvailablePackages int `json:"available_packages"`
	RentedPackages    int `json:"rented_packages"`
}

type Service interface {
	Detail(ctx context.Context, id int64) (*Detail, error)
	Filter(ctx context.Context, status string) ([]Row, error) // "all" or a rental status
	SaveNotes(ctx context.Context, id int64, notes string) error
	Emails(ctx context.Context, id int64) ([]model.EmailLog, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	db    *sql.DB
	cust  customerrepo.Repo
	inv   inventoryrepo.Repo
	codes qrcoderepo.Repo
	logs  emaillogrepo.Repo
}

func New(db *sql.DB, cust customerrepo.Repo, inv inventoryrepo.Repo, codes qrcoderepo.Repo, logs emaillogrepo.Repo) Service {
	return &service{db: db, cust: cust, inv: inv, codes: codes, logs: logs}
}

func (s *service) Detail(ctx context.Context, id int64) (*Detail, error) {
	c, err := s.cust.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	units, err := s.inv.List(ctx, id)
	if err != nil {
		return nil, err
	}
	sum, err := s.inv.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Customer: c, Units: units, Summary: sum}, nil
}

func (s *service) Filter(ctx context.Context, status string) ([]Row, error) {
	var st model.RentalStatus
	switch status {
	case "all", "":
		st = ""
	case string(model.StatusNotActive), string(model.StatusActive), string(model.StatusReturned):
		st = model.RentalStatus(status)
	default:
		return nil, ErrBadFilter
	}

	hits, err := s.cust.FilterByStatus(ctx, st)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(hits))
	for _, h := range hits {
		sum, err := s.inv.Summary(ctx, h.CustomerID)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{SearchHit: h, Summary: sum})
	}
	return out, nil
}

func (s *service) SaveNotes(ctx context.Context, id int64, notes string) error {
	return s.cust.SaveNotes(ctx, id, notes)
}

// Emails is the per-customer notification history, newest first.
func (s *service) Emails(ctx context.Context, id int64) ([]model.EmailLog, error) {
	if _, err := s.cust.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.logs.ListFor(ctx, id)
}

// Delete removes the customer and everything hanging off them, in foreign
// key order, inside one transaction.
func (s *service) Delete(ctx context.Context, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.logs.DeleteAllFor(ctx, tx, id); err != nil {
		return err
	}
	if _, err = s.inv.DeleteAllFor(ctx, tx, id); err != nil {
		return err
	}
	if _, err = s.codes.DeleteAllFor(ctx, tx, id); err != nil {
		return err
	}
	if err = s.cust.Delete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.cust.Counts(ctx)
	if err != nil {
		return Stats{}, err
	}
	codes, err := s.codes.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	total, available, rented, err := s.inv.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalCustomers:    counts.TotalCustomers,
		ActiveRentals:     counts.ActiveRentals,
		TotalQRCodes:      codes,
		TotalPackages:     total,
		AvailablePackages: available,
		RentedPackages:    rented,
	}, nil
}
