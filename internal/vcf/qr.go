package vcf

import (
	stderrors "errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the side length in pixels of a QR code when none is given.
const DefaultQRSize = 256

// MaxQRSize bounds the side length of a generated QR code.
const MaxQRSize = 2048

var (
	// ErrEmptyCard is returned when there is no vCard text to encode.
	ErrEmptyCard = stderrors.New("vcard text is empty")

	// ErrInvalidQRSize is returned for sizes above MaxQRSize.
	ErrInvalidQRSize = stderrors.New("invalid QR code size")
)

// QRCode renders vCard text as a PNG QR code that phones can scan to add the
// contact. Cards with embedded photos rarely fit; callers should encode
// without the photo.
func QRCode(cardText []byte, size int) ([]byte, error) {
	if len(cardText) == 0 {
		return nil, ErrEmptyCard
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	if size > MaxQRSize {
		return nil, ErrInvalidQRSize
	}

	qr, err := qrcode.New(string(cardText), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return qr.PNG(size)
}
