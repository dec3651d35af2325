package inventory

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"pkgrental/model"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

// stateFake is an in-memory unit store. The *sql.Tx arguments come from
// sqlmock and are ignored; only Begin/Commit/Rollback ordering is asserted
// through the mock.
type stateFake struct {
	nextID int64
	units  map[int64]model.UnitStatus
	owner  map[int64]int64

	rentalStatus map[int64]model.RentalStatus
}

func newStateFake() *stateFake {
	return &stateFake{
		units:        map[int64]model.UnitStatus{},
		owner:        map[int64]int64{},
		rentalStatus: map[int64]model.RentalStatus{},
	}
}

func (f *stateFake) InsertUnits(_ context.Context, _ *sql.Tx, customerID int64, _ string, n int) ([]int64, error) {
	var ids []int64
	for i := 0; i < n; i++ {
		f.nextID++
		f.units[f.nextID] = model.UnitAvailable
		f.owner[f.nextID] = customerID
		ids = append(ids, f.nextID)
	}
	return ids, nil
}

func (f *stateFake) idsByStatus(customerID int64, st model.UnitStatus, limit int, desc bool) []int64 {
	var ids []int64
	for id, got := range f.units {
		if f.owner[id] == customerID && got == st {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if desc {
			return ids[i] > ids[j]
		}
		return ids[i] < ids[j]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func (f *stateFake) LockAvailable(_ context.Context, _ *sql.Tx, customerID int64, limit int) ([]int64, error) {
	return f.idsByStatus(customerID, model.UnitAvailable, limit, false), nil
}

func (f *stateFake) LockAvailableNewest(_ context.Context, _ *sql.Tx, customerID int64, limit int) ([]int64, error) {
	return f.idsByStatus(customerID, model.UnitAvailable, limit, true), nil
}

func (f *stateFake) LockRented(_ context.Context, _ *sql.Tx, customerID int64, limit int) ([]int64, error) {
	return f.idsByStatus(customerID, model.UnitRentedOut, limit, false), nil
}

func (f *stateFake) LockUnit(_ context.Context, _ *sql.Tx, unitID int64) (*model.PackageUnit, error) {
	st, ok := f.units[unitID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &model.PackageUnit{ID: unitID, CustomerID: f.owner[unitID], Status: st}, nil
}

func (f *stateFake) UpdateStatus(_ context.Context, _ *sql.Tx, unitIDs []int64, status model.UnitStatus) error {
	for _, id := range unitIDs {
		f.units[id] = status
	}
	return nil
}

func (f *stateFake) DeleteUnits(_ context.Context, _ *sql.Tx, unitIDs []int64) error {
	for _, id := range unitIDs {
		delete(f.units, id)
		delete(f.owner, id)
	}
	return nil
}

func (f *stateFake) ResetAll(_ context.Context, _ *sql.Tx, customerID int64) error {
	for id := range f.units {
		if f.owner[id] == customerID {
			f.units[id] = model.UnitAvailable
		}
	}
	return nil
}

func (f *stateFake) DeleteAllFor(_ context.Context, _ *sql.Tx, customerID int64) (int64, error) {
	var n int64
	for id := range f.units {
		if f.owner[id] == customerID {
			delete(f.units, id)
			delete(f.owner, id)
			n++
		}
	}
	return n, nil
}

func (f *stateFake) summary(customerID int64) model.PackageSummary {
	var total, available, rented int
	for id, st := range f.units {
		if f.owner[id] != customerID {
			continue
		}
		total++
		if st == model.UnitAvailable {
			available++
		} else {
			rented++
		}
	}
	return model.NewSummary(total, available, rented)
}

func (f *stateFake) SummaryTx(_ context.Context, _ *sql.Tx, customerID int64) (model.PackageSummary, error) {
	return f.summary(customerID), nil
}

func (f *stateFake) Summary(_ context.Context, customerID int64) (model.PackageSummary, error) {
	return f.summary(customerID), nil
}

func (f *stateFake) List(_ context.Context, customerID int64) ([]model.PackageUnit, error) {
	var out []model.PackageUnit
	for _, id := range f.idsByStatus(customerID, model.UnitAvailable, 0, false) {
		out = append(out, model.PackageUnit{ID: id, CustomerID: customerID, Status: model.UnitAvailable})
	}
	for _, id := range f.idsByStatus(customerID, model.UnitRentedOut, 0, false) {
		out = append(out, model.PackageUnit{ID: id, CustomerID: customerID, Status: model.UnitRentedOut})
	}
	return out, nil
}

func (f *stateFake) CountByStatus(_ context.Context) (int, int, int, error) {
	var total, available, rented int
	for _, st := range f.units {
		total++
		if st == model.UnitAvailable {
			available++
		} else {
			rented++
		}
	}
	return total, available, rented, nil
}

func (f *stateFake) SetRentalStatus(_ context.Context, _ *sql.Tx, customerID int64, st model.RentalStatus) error {
	f.rentalStatus[customerID] = st
	return nil
}

type notifierMock struct {
	calls int
	sent  bool
}

func (n *notifierMock) AllReturned(context.Context, int64) bool {
	n.calls++
	return n.sent
}

func newTestService(t *testing.T) (Service, *stateFake, *notifierMock, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := newStateFake()
	n := &notifierMock{sent: true}
	return New(db, f, n), f, n, mock
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestAddUnits(t *testing.T) {
	s, f, _, mock := newTestService(t)
	ctx := context.Background()

	if _, err := s.AddUnits(ctx, 1, "Standard", 0); Code(err) != ErrInvalidQuantity {
		t.Fatalf("got %v; want INVALID_QUANTITY", err)
	}

	expectTx(mock, true)
	ids, err := s.AddUnits(ctx, 1, "Standard", 3)
	if err != nil || len(ids) != 3 {
		t.Fatalf("got ids=%v err=%v; want 3 ids", ids, err)
	}

	// additive: a second purchase never touches existing units
	expectTx(mock, true)
	_ = mustCheckout(t, s, mock, 1, 2)
	expectTx(mock, true)
	if _, err := s.AddUnits(ctx, 1, "Premium", 2); err != nil {
		t.Fatal(err)
	}
	sum := f.summary(1)
	if sum.Total != 5 || sum.RentedOut != 2 || sum.Available != 3 {
		t.Fatalf("summary after add = %+v", sum)
	}
}

func mustCheckout(t *testing.T, s Service, mock sqlmock.Sqlmock, customerID int64, count int) *ActionResult {
	t.Helper()
	out, err := s.Checkout(context.Background(), customerID, count)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return out
}

func TestRemoveUnits_AllOrNothing(t *testing.T) {
	s, f, _, mock := newTestService(t)
	ctx := context.Background()

	expectTx(mock, true)
	if _, err := s.AddUnits(ctx, 1, "Standard", 3); err != nil {
		t.Fatal(err)
	}
	expectTx(mock, true)
	mustCheckout(t, s, mock, 1, 2) // 1 available left

	expectTx(mock, false)
	_, err := s.RemoveUnits(ctx, 1, 2)
	if Code(err) != ErrInsufficientAvailable {
		t.Fatalf("got %v; want INSUFFICIENT_AVAILABLE", err)
	}
	if f.summary(1).Total != 3 {
		t.Fatal("partial removal happened")
	}

	expectTx(mock, true)
	ids, err := s.RemoveUnits(ctx, 1, 1)
	if err != nil || len(ids) != 1 {
		t.Fatalf("got ids=%v err=%v", ids, err)
	}
	// rented units never deleted
	sum := f.summary(1)
	if sum.Total != 2 || sum.RentedOut != 2 {
		t.Fatalf("summary after remove = %+v", sum)
	}
}

func TestCheckout_NoAvailable(t *testing.T) {
	s, _, _, mock := newTestService(t)

	expectTx(mock, false)
	_, err := s.Checkout(context.Background(), 1, All)
	if Code(err) != ErrNoAvailableUnits {
		t.Fatalf("got %v; want NO_AVAILABLE_UNITS", err)
	}

	if _, err := s.Checkout(context.Background(), 1, 0); Code(err) != ErrInvalidCount {
		t.Fatalf("got %v; want INVALID_COUNT", err)
	}
}

// The single-notification round trip: the thank-you fires exactly once, on
// the transition into all-returned, and a repeat checkin cannot re-fire it.
func TestCheckinRoundTrip_SingleNotification(t *testing.T) {
	s, f, n, mock := newTestService(t)
	ctx := context.Background()

	expectTx(mock, true)
	if _, err := s.AddUnits(ctx, 1, "Standard", 3); err != nil {
		t.Fatal(err)
	}

	expectTx(mock, true)
	out := mustCheckout(t, s, mock, 1, All)
	if len(out.UnitIDs) != 3 || out.Notified {
		t.Fatalf("checkout all = %+v", out)
	}
	if f.rentalStatus[1] != model.StatusActive {
		t.Fatalf("rental status = %v; want active", f.rentalStatus[1])
	}

	// partial return: no notification yet
	expectTx(mock, true)
	out, err := s.Checkin(ctx, 1, 1)
	if err != nil || out.Notified || n.calls != 0 {
		t.Fatalf("partial checkin out=%+v calls=%d err=%v", out, n.calls, err)
	}
	if f.rentalStatus[1] != model.StatusActive {
		t.Fatal("still-outstanding customer must stay active")
	}

	// last units back: exactly one notification
	expectTx(mock, true)
	out, err = s.Checkin(ctx, 1, All)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Notified || !out.EmailSent || n.calls != 1 {
		t.Fatalf("final checkin out=%+v calls=%d", out, n.calls)
	}
	if !out.Summary.AllReturned || out.Summary.Available != 3 {
		t.Fatalf("summary = %+v", out.Summary)
	}
	if f.rentalStatus[1] != model.StatusReturned {
		t.Fatalf("rental status = %v; want returned", f.rentalStatus[1])
	}

	// conservation: nothing created or destroyed along the way
	if f.summary(1).Total != 3 {
		t.Fatal("unit count drifted")
	}

	// repeat checkin: rejected, and no second notification
	expectTx(mock, false)
	_, err = s.Checkin(ctx, 1, 1)
	if Code(err) != ErrNoRentedUnits {
		t.Fatalf("got %v; want NO_RENTED_UNITS", err)
	}
	if n.calls != 1 {
		t.Fatalf("notifier fired %d times; want 1", n.calls)
	}
}

// Notification delivery failure must not affect the committed transition.
func TestCheckin_EmailFailureKeepsState(t *testing.T) {
	s, f, n, mock := newTestService(t)
	n.sent = false
	ctx := context.Background()

	expectTx(mock, true)
	if _, err := s.AddUnits(ctx, 1, "Standard", 1); err != nil {
		t.Fatal(err)
	}
	expectTx(mock, true)
	mustCheckout(t, s, mock, 1, 1)

	expectTx(mock, true)
	out, err := s.Checkin(ctx, 1, All)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Notified || out.EmailSent {
		t.Fatalf("out = %+v; want notified, email failed", out)
	}
	if f.summary(1).Available != 1 || f.rentalStatus[1] != model.StatusReturned {
		t.Fatal("inventory change rolled back on email failure")
	}
}

func TestReset_NoNotification(t *testing.T) {
	s, f, n, mock := newTestService(t)
	ctx := context.Background()

	expectTx(mock, true)
	if _, err := s.AddUnits(ctx, 1, "Standard", 2); err != nil {
		t.Fatal(err)
	}
	expectTx(mock, true)
	mustCheckout(t, s, mock, 1, All)

	expectTx(mock, true)
	out, err := s.Reset(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if out.Notified || n.calls != 0 {
		t.Fatal("reset must not fire the thank-you")
	}
	if !out.Summary.AllReturned || f.rentalStatus[1] != model.StatusNotActive {
		t.Fatalf("after reset: summary=%+v status=%v", out.Summary, f.rentalStatus[1])
	}
}

func TestSetUnitStatus(t *testing.T) {
	s, f, n, mock := newTestService(t)
	ctx := context.Background()

	if _, err := s.SetUnitStatus(ctx, 1, "lost"); Code(err) != ErrInvalidStatus {
		t.Fatalf("got %v; want INVALID_STATUS", err)
	}

	expectTx(mock, false)
	if _, err := s.SetUnitStatus(ctx, 99, model.UnitAvailable); Code(err) != ErrNotFound {
		t.Fatalf("got %v; want NOT_FOUND", err)
	}

	expectTx(mock, true)
	ids, err := s.AddUnits(ctx, 1, "Standard", 2)
	if err != nil {
		t.Fatal(err)
	}
	expectTx(mock, true)
	mustCheckout(t, s, mock, 1, All)

	// same-status write is a no-op and must not notify
	expectTx(mock, true)
	out, err := s.SetUnitStatus(ctx, ids[0], model.UnitRentedOut)
	if err != nil || out.Notified || len(out.UnitIDs) != 0 {
		t.Fatalf("no-op edit out=%+v err=%v", out, err)
	}

	// first unit back: still one rented, no notification
	expectTx(mock, true)
	out, err = s.SetUnitStatus(ctx, ids[0], model.UnitAvailable)
	if err != nil || out.Notified || n.calls != 0 {
		t.Fatalf("first flip out=%+v calls=%d err=%v", out, n.calls, err)
	}
	if f.rentalStatus[1] != model.StatusActive {
		t.Fatal("customer with outstanding unit must stay active")
	}

	// manual flip of the last rented unit behaves like the final checkin
	expectTx(mock, true)
	out, err = s.SetUnitStatus(ctx, ids[1], model.UnitAvailable)
	if err != nil || !out.Notified || n.calls != 1 {
		t.Fatalf("last flip out=%+v calls=%d err=%v", out, n.calls, err)
	}
	if f.rentalStatus[1] != model.StatusReturned {
		t.Fatalf("rental status = %v; want returned", f.rentalStatus[1])
	}
}
