package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// ReservationCodePrefix starts every reservation code.
const ReservationCodePrefix = "OUTY-"

// NewReservationCode returns OUTY- followed by six upper-case hex digits
// taken from crypto/rand.
func NewReservationCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return ReservationCodePrefix + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// NormalizeReservationCode trims and upper-cases user input so codes typed
// by hand match the stored form.
func NormalizeReservationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
