package inventory

import (
	"context"
	"database/sql"
	"errors"

	"pkgrental/model"
	inventoryrepo "pkgrental/repository/inventory"
)

// All selects every eligible unit (the "checkout_all"/"checkin_all" paths).
const All = -1

// Notifier is the thank-you hook. The decision to call it is owned here
// (edge-triggered on the transition into all-returned); the notifier itself
// never deduplicates. The returned bool reports delivery only.
type Notifier interface {
	AllReturned(ctx context.Context, customerID int64) bool
}

// ActionResult is returned by every mutating operation; Summary is the state
// after commit, EmailSent reports the decoupled thank-you delivery.
type ActionResult struct {
	UnitIDs   []int64              `json:"unit_ids"`
	Summary   model.PackageSummary `json:"package_summary"`
	Notified  bool                 `json:"notified"`
	EmailSent bool                 `json:"email_sent"`
}

type Service interface {
	// Ledger
	AddUnits(ctx context.Context, customerID int64, packageType string, quantity int) ([]int64, error)
	RemoveUnits(ctx context.Context, customerID int64, quantity int) ([]int64, error)
	Summary(ctx context.Context, customerID int64) (model.PackageSummary, error)
	ListUnits(ctx context.Context, customerID int64) ([]model.PackageUnit, error)

	// Transitions. count is a positive number or All.
	Checkout(ctx context.Context, customerID int64, count int) (*ActionResult, error)
	Checkin(ctx context.Context, customerID int64, count int) (*ActionResult, error)
	Reset(ctx context.Context, customerID int64) (*ActionResult, error)
	SetUnitStatus(ctx context.Context, unitID int64, status model.UnitStatus) (*ActionResult, error)
}

// ----- Service implementation -----

type service struct {
	db *sql.DB
	r  inventoryrepo.Repo
	n  Notifier
}

func New(db *sql.DB, r inventoryrepo.Repo, n Notifier) Service {
	return &service{db: db, r: r, n: n}
}

// AddUnits is purely additive: quantity new rows, each available, existing
// units untouched. A later purchase can never reset a rented unit.
func (s *service) AddUnits(ctx context.Context, customerID int64, packageType string, quantity int) (ids []int64, err error) {
	if quantity <= 0 {
		return nil, makeErr(ErrInvalidQuantity)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapDB(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids, err = s.r.InsertUnits(ctx, tx, customerID, packageType, quantity)
	if err != nil {
		return nil, wrapDB(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, wrapDB(err)
	}
	return ids, nil
}

// RemoveUnits deletes available units only, newest first, all or nothing.
func (s *service) RemoveUnits(ctx context.Context, customerID int64, quantity int) (ids []int64, err error) {
	if quantity <= 0 {
		return nil, makeErr(ErrInvalidQuantity)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapDB(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids, err = s.r.LockAvailableNewest(ctx, tx, customerID, quantity)
	if err != nil {
		return nil, wrapDB(err)
	}
	if len(ids) < quantity {
		err = makeErr(ErrInsufficientAvailable)
		return nil, err
	}
	if err = s.r.DeleteUnits(ctx, tx, ids); err != nil {
		return nil, wrapDB(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, wrapDB(err)
	}
	return ids, nil
}

func (s *service) Summary(ctx context.Context, customerID int64) (model.PackageSummary, error) {
	sum, err := s.r.Summary(ctx, customerID)
	return sum, wrapDB(err)
}

func (s *service) ListUnits(ctx context.Context, customerID int64) ([]model.PackageUnit, error) {
	units, err := s.r.List(ctx, customerID)
	return units, wrapDB(err)
}

func (s *service) Checkout(ctx context.Context, customerID int64, count int) (res *ActionResult, err error) {
	if count != All && count <= 0 {
		return nil, makeErr(ErrInvalidCount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapDB(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids, err := s.r.LockAvailable(ctx, tx, customerID, limitOf(count))
	if err != nil {
		return nil, wrapDB(err)
	}
	if len(ids) == 0 {
		err = makeErr(ErrNoAvailableUnits)
		return nil, err
	}

	if err = s.r.UpdateStatus(ctx, tx, ids, model.UnitRentedOut); err != nil {
		return nil, wrapDB(err)
	}
	// something is rented out now, so the customer is active
	if err = s.r.SetRentalStatus(ctx, tx, customerID, model.StatusActive); err != nil {
		return nil, wrapDB(err)
	}
	sum, err := s.r.SummaryTx(ctx, tx, customerID)
	if err != nil {
		return nil, wrapDB(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, wrapDB(err)
	}

	return &ActionResult{UnitIDs: ids, Summary: sum}, nil
}

func (s *service) Checkin(ctx context.Context, customerID int64, count int) (res *ActionResult, err error) {
	if count != All && count <= 0 {
		return nil, makeErr(ErrInvalidCount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapDB(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids, err := s.r.LockRented(ctx, tx, customerID, limitOf(count))
	if err != nil {
		return nil, wrapDB(err)
	}
	if len(ids) == 0 {
		// already fully returned: no-op, and no re-notification
		err = makeErr(ErrNoRentedUnits)
		return nil, err
	}

	if err = s.r.UpdateStatus(ctx, tx, ids, model.UnitAvailable); err != nil {
		return nil, wrapDB(err)
	}

	sum, err := s.r.SummaryTx(ctx, tx, customerID)
	if err != nil {
		return nil, wrapDB(err)
	}
	// Aggregate transition rule: the last outstanding unit just came back.
	// At least one unit flipped above, so reaching all_returned here is
	// always an edge, never a level.
	allBack := sum.AllReturned && sum.Total > 0
	if allBack {
		err = s.r.SetRentalStatus(ctx, tx, customerID, model.StatusReturned)
	} else {
		err = s.r.SetRentalStatus(ctx, tx, customerID, model.StatusActive)
	}
	if err != nil {
		return nil, wrapDB(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, wrapDB(err)
	}

	res = &ActionResult{UnitIDs: ids, Summary: sum}
	if allBack {
		res.Notified = true
		if s.n != nil {
			// fire-and-record: the checkin above is already committed
			res.EmailSent = s.n.AllReturned(ctx, customerID)
		}
	}
	return res, nil
}

// Reset is a manual correction, not a return: every unit becomes available
// and the customer drops to not_active without a thank-you email.
func (s *service) Reset(ctx context.Context, customerID int64) (res *ActionResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapDB(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.r.ResetAll(ctx, tx, customerID); err != nil {
		return nil, wrapDB(err)
	}
	if err = s.r.SetRentalStatus(ctx, tx, customerID, model.StatusNotActive); err != nil {
		return nil, wrapDB(err)
	}
	sum, err := s.r.SummaryTx(ctx, tx, customerID)
	if err != nil {
		return nil, wrapDB(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, wrapDB(err)
	}
	return &ActionResult{Summary: sum}, nil
}

// SetUnitStatus is the direct single-unit edit. It funnels through the same
// aggregate check as Checkin so a manual flip of the last rented unit still
// fires the thank-you exactly once.
func (s *service) SetUnitStatus(ctx context.Context, unitID int64, status model.UnitStatus) (res *ActionResult, err error) {
	if status != model.UnitAvailable && status != model.UnitRentedOut {
		return nil, makeErr(ErrInvalidStatus)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapDB(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	unit, err := s.r.LockUnit(ctx, tx, unitID)
	if errors.Is(err, sql.ErrNoRows) {
		err = makeErr(ErrNotFound)
		return nil, err
	}
	if err != nil {
		return nil, wrapDB(err)
	}

	if unit.Status == status {
		// no state change, no notification
		sum, serr := s.r.SummaryTx(ctx, tx, unit.CustomerID)
		if serr != nil {
			err = wrapDB(serr)
			return nil, err
		}
		if err = tx.Commit(); err != nil {
			return nil, wrapDB(err)
		}
		return &ActionResult{Summary: sum}, nil
	}

	if err = s.r.UpdateStatus(ctx, tx, []int64{unitID}, status); err != nil {
		return nil, wrapDB(err)
	}
	sum, err := s.r.SummaryTx(ctx, tx, unit.CustomerID)
	if err != nil {
		return nil, wrapDB(err)
	}
	// The no-op case is filtered above, so all_returned here means this edit
	// flipped the last rented unit back.
	allBack := sum.AllReturned && sum.Total > 0
	if allBack {
		err = s.r.SetRentalStatus(ctx, tx, unit.CustomerID, model.StatusReturned)
	} else {
		err = s.r.SetRentalStatus(ctx, tx, unit.CustomerID, model.StatusActive)
	}
	if err != nil {
		return nil, wrapDB(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, wrapDB(err)
	}

	res = &ActionResult{UnitIDs: []int64{unitID}, Summary: sum}
	if allBack {
		res.Notified = true
		if s.n != nil {
			res.EmailSent = s.n.AllReturned(ctx, unit.CustomerID)
		}
	}
	return res, nil
}

func limitOf(count int) int {
	if count == All {
		return 0
	}
	return count
}
