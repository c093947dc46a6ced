package models

// Post is one sealed message addressed to a single recipient. The server
// never attempts to interpret Ciphertext, WrappedKey or IV; posts are
// appended once and never mutated or deleted.
type Post struct {
	Recipient  string
	Ciphertext []byte
	WrappedKey []byte
	IV         []byte
}
