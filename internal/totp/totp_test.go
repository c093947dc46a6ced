package totp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 4226 Appendix D reference values for the ASCII secret
// "12345678901234567890"; TOTP at step N equals HOTP at counter N.
func TestCode_RFC4226Vectors(t *testing.T) {
	secret := []byte("12345678901234567890")

	want := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}

	for step, expected := range want {
		assert.Equal(t, expected, Code(secret, uint64(step), Digits), "step %d", step)
	}
}

func TestCode_WidthAndDeterminism(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	require.Len(t, secret, SecretSize)

	c1 := Code(secret, 12345, Digits)
	c2 := Code(secret, 12345, Digits)

	assert.Equal(t, c1, c2)
	assert.Len(t, c1, Digits)
	assert.Regexp(t, `^\d{6}$`, c1)
}

func TestIsValid_Window(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	step := now.Unix() / StepSeconds

	tests := []struct {
		name   string
		offset int64
		want   bool
	}{
		{"current step", 0, true},
		{"one step behind", -1, true},
		{"one step ahead", 1, true},
		{"two steps behind", -2, false},
		{"two steps ahead", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Code(secret, uint64(step+tt.offset), Digits)
			assert.Equal(t, tt.want, IsValid(secret, code, now))
		})
	}
}

func TestIsValid_Normalization(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)

	now := time.Now()
	code := CurrentCode(secret, now)

	assert.True(t, IsValid(secret, "  "+code+" \t", now))
	assert.True(t, IsValid(secret, code[:3]+" "+code[3:], now))
}

func TestIsValid_Malformed(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	now := time.Now()

	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"too short", "12345"},
		{"too long", "1234567"},
		{"letters", "12a456"},
		{"negative-looking", "-12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, IsValid(secret, tt.code, now))
		})
	}
}

func TestIsValid_StaleCodeRejected(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)

	now := time.Now()
	fiveMinAgo := now.Add(-5 * time.Minute)

	stale := CurrentCode(secret, fiveMinAgo)

	// Guard against the one-in-a-million collision with a code that is
	// still inside the acceptance window.
	step := now.Unix() / StepSeconds
	for i := int64(-Skew); i <= Skew; i++ {
		if stale == Code(secret, uint64(step+i), Digits) {
			t.Skip("stale code collided with an in-window code")
		}
	}

	assert.False(t, IsValid(secret, stale, now))
}
