// model/customer.go
package model

import "time"

type RentalStatus string

const (
	StatusNotActive RentalStatus = "not_active"
	StatusActive    RentalStatus = "active"
	StatusReturned  RentalStatus = "returned"
)

// Customer is matched by email on upsert; rental_status is derived from the
// package units and never set directly by callers.
type Customer struct {
	ID             int64        `json:"id"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Email          string       `json:"email"`
	City           string       `json:"city,omitempty"`
	PackageType    string       `json:"package_type,omitempty"` // last known, informational
	RentalStatus   RentalStatus `json:"rental_status"`
	Notes          *string      `json:"notes,omitempty"`
	NotesUpdatedAt *time.Time   `json:"notes_updated_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
