// Package totp implements RFC 6238 time-based one-time passwords with the
// parameters the bulletin board protocol fixes: HMAC-SHA1, 6 digits, a
// 30-second time step and one step of clock skew in each direction.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	// Digits is the fixed code width.
	Digits = 6
	// StepSeconds is the length of one time step.
	StepSeconds = 30
	// Skew is the number of adjacent steps accepted on each side of now.
	Skew = 1
	// SecretSize is the byte length of a generated shared secret (160 bits).
	SecretSize = 20
)

// GenerateSecret returns a fresh random 160-bit shared secret.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// Code derives the decimal code for one time step. The counter is encoded
// big-endian into 8 bytes and keyed-hashed with the secret; dynamic
// truncation (RFC 4226 §5.3) reduces the hash to a digits-wide string.
func Code(secret []byte, timeStep uint64, digits int) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], timeStep)

	mac := hmac.New(sha1.New, secret)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0F
	trunc := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7FFFFFFF

	modulo := uint32(1)
	for i := 0; i < digits; i++ {
		modulo *= 10
	}

	return fmt.Sprintf("%0*d", digits, trunc%modulo)
}

// CurrentCode returns the code for the step containing now.
func CurrentCode(secret []byte, now time.Time) string {
	return Code(secret, uint64(now.Unix()/StepSeconds), Digits)
}

// IsValid reports whether the submitted code matches any step within the
// skew window around now. Whitespace anywhere in the submission is ignored;
// anything that is not exactly six digits is rejected outright.
//
// A code is not invalidated after first use, so replay inside the window
// succeeds. That is a known limitation of the protocol.
func IsValid(secret []byte, submitted string, now time.Time) bool {
	submitted = strings.Join(strings.Fields(submitted), "")

	if len(submitted) != Digits {
		return false
	}
	for _, r := range submitted {
		if r < '0' || r > '9' {
			return false
		}
	}

	step := now.Unix() / StepSeconds
	for i := int64(-Skew); i <= Skew; i++ {
		cur := step + i
		if cur < 0 {
			continue
		}
		if Code(secret, uint64(cur), Digits) == submitted {
			return true
		}
	}
	return false
}
