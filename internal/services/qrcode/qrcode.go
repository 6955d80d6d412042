package qrcode

import (
	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

// PNG encodes content as a QR code image.
func PNG(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, imageSize)
}
