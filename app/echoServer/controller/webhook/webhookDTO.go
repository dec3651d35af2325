package webhook

type SubmissionReq struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	City        string `json:"city"`
	PackageType string `json:"package_type"`
	Quantity    int    `json:"quantity"`
}
