// Package models holds the server-side domain records.
package models

// User is one credential record. Username is unique and immutable; Salt and
// TotpSecret are generated once at creation and never rotated. PublicKey is
// exactly the key material the client registered; the server stores it
// opaquely and never validates it cryptographically.
type User struct {
	Username     string
	PasswordHash []byte
	Salt         []byte
	TotpSecret   []byte
	PublicKey    []byte
}
