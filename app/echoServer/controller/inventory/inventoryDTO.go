package inventory

type AddUnitsReq struct {
	PackageType string `json:"package_type"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

type RemoveUnitsReq struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ActionReq drives the four scanner buttons. Count only matters for the
// *_one variants and defaults to 1.
type ActionReq struct {
	Action string `json:"action" validate:"required,oneof=checkout_one checkout_all checkin_one checkin_all"`
	Count  int    `json:"count" validate:"omitempty,gt=0"`
}

type SetStatusReq struct {
	Status string `json:"status" validate:"required,oneof=available rented_out"`
}
