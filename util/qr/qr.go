package qr

import qrcode "github.com/skip2/go-qrcode"

// Encode renders a redemption code as a PNG suitable for email attachment.
func Encode(code string) ([]byte, error) {
	return qrcode.Encode(code, qrcode.Low, 256)
}
