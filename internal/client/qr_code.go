package client

import (
	"github.com/skip2/go-qrcode"

	"payos/internal/pkg/errors"
)

const defaultQRSize = 512

// GenerateQRCode renders content as a PNG of size×size pixels.
// Size 0 means 512; otherwise it must be within 128..2048.
func GenerateQRCode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, errors.New(errors.KindValidation, "payment link has no QR content")
	}
	if size == 0 {
		size = defaultQRSize
	}
	if size < 128 || size > 2048 {
		return nil, errors.New(errors.KindValidation, "invalid size: must be between 128 and 2048")
	}

	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, errors.Wrap(errors.KindValidation, "cannot encode QR content", err)
	}
	return qr.PNG(size)
}
