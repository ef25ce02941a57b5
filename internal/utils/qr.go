package utils

import (
	"encoding/base64"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// VerificationURL is the front-end page staff open when scanning a code.
func VerificationURL(clientURL, code string) string {
	return strings.TrimRight(clientURL, "/") + "/verify/" + code
}

// QRDataURL renders content as a 256px PNG QR code wrapped in a data URL.
func QRDataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
