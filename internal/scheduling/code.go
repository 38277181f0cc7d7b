package scheduling

import "math/rand"

// codeAlphabet leaves out I, O, 0 and 1 so codes read back over the phone
// unambiguously.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 8

// NewConfirmationCode returns a human-presentable 8-character code. It is not
// globally unique by construction; the unique constraint on
// appointments.confirmation_code plus the service retry loop covers the rare
// collision.
func NewConfirmationCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(buf)
}
