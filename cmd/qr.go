package cmd

import (
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// WriteQRPNG renders text as a QR code PNG at path. The payload is
// expected to be a wg-quick document small enough for one code.
func WriteQRPNG(path string, text string) error {
	qrc, err := qrcode.New(text)
	if err != nil {
		return err
	}
	w, err := standard.New(path)
	if err != nil {
		return err
	}
	// Save closes the writer.
	return qrc.Save(w)
}
