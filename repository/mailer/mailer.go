package mailer

import (
	"context"

	"pkgrental/model"
)

// Request carries everything the transport needs; the notify service shapes
// it, the mailer renders and delivers it.
type Request struct {
	Recipient   string
	Kind        model.EmailKind
	FirstName   string
	LastName    string
	City        string
	PackageType string
	Quantity    int
	Code        string
	Attachment  []byte // QR PNG, issuance only
}

type Mailer interface {
	// Send reports delivery as (success, detail); it never returns an error
	// because a failed send must not disturb the inventory transition that
	// triggered it.
	Send(ctx context.Context, req Request) (bool, string)
}
