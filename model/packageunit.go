// model/packageunit.go
package model

import "time"

type UnitStatus string

const (
	UnitAvailable UnitStatus = "available"
	UnitRentedOut UnitStatus = "rented_out"
)

// PackageUnit is one discrete rentable item. Quantity N means N rows, so a
// later purchase can never reset an already rented unit.
type PackageUnit struct {
	ID             int64      `json:"id"`
	CustomerID     int64      `json:"customer_id"`
	PackageType    string     `json:"package_type"`
	Status         UnitStatus `json:"status"`
	LastActivityAt time.Time  `json:"last_activity_at"`
}

// PackageSummary is derived from the unit rows and always well-formed:
// a customer with zero units gets {0,0,0,false,true}.
type PackageSummary struct {
	Total       int  `json:"total_packages"`
	Available   int  `json:"available_packages"`
	RentedOut   int  `json:"rented_packages"`
	HasPackages bool `json:"has_packages"`
	AllReturned bool `json:"all_returned"`
}

func NewSummary(total, available, rented int) PackageSummary {
	return PackageSummary{
		Total:       total,
		Available:   available,
		RentedOut:   rented,
		HasPackages: total > 0,
		AllReturned: rented == 0,
	}
}
