package util

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// GenerateQRCodePNG encodes link as a PNG of size x size pixels.
func GenerateQRCodePNG(link string, size int) ([]byte, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}
