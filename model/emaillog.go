// model/emaillog.go
package model

import "time"

type EmailKind string

const (
	EmailIssuance EmailKind = "issuance"
	EmailThankYou EmailKind = "thank_you"
)

type EmailStatus string

const (
	EmailSuccess EmailStatus = "success"
	EmailFailed  EmailStatus = "failed"
)

// EmailLog is append-only; rows are never updated and never drive control flow.
type EmailLog struct {
	ID          int64       `json:"id"`
	CustomerID  int64       `json:"customer_id"`
	QRCodeID    *int64      `json:"qr_code_id,omitempty"`
	Kind        EmailKind   `json:"kind"`
	Status      EmailStatus `json:"status"`
	ErrorDetail *string     `json:"error_detail,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
