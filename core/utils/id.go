package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const codeAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// GenerateBookingCode returns a 7 character confirmation code without
// easily confused characters (I, O).
func GenerateBookingCode() (string, error) {
	return gonanoid.Generate(codeAlphabet, 7)
}
