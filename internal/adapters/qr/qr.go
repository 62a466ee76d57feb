package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"eventgate/internal/domain"
)

type pngEncoder struct{}

// NewPNGEncoder returns a QREncoder that renders PNG images with medium
// error correction.
func NewPNGEncoder() domain.QREncoder {
	return &pngEncoder{}
}

func (e *pngEncoder) Encode(content string, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
