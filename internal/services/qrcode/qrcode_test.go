package qrcode

import (
	"bytes"
	"image/png"
	"testing"
)

func TestPNG(t *testing.T) {
	data, err := PNG("http://127.0.0.1:8000/pay/status?orderId=abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}

	if b := img.Bounds(); b.Dx() != imageSize || b.Dy() != imageSize {
		t.Fatalf("unexpected image size %v", b)
	}
}
