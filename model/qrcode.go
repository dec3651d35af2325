// model/qrcode.go
package model

import "time"

// QRCode binds a 4-digit redemption code to a customer. At most one row per
// customer is active; superseded codes are kept for audit but never resolve.
type QRCode struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Code       string    `json:"code"` // 0001..9999, zero padded
	Image      []byte    `json:"-"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
