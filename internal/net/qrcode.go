package net

import (
	"image"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSize = 256

// QRCode returns a QR code image of the share link. An empty payload
// yields (nil, nil).
func QRCode(payload string, size int) (image.Image, error) {
	if payload == "" {
		return nil, nil
	}
	if size <= 0 {
		size = defaultQRCodeSize
	}
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return code.Image(size), nil
}

// QRCodePNG is QRCode encoded as PNG.
func QRCodePNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultQRCodeSize
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}
