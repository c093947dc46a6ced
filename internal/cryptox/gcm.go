package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// encryptGCM encrypts plaintext under AES-GCM with a 128-bit tag appended
// to the ciphertext.
func encryptGCM(key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key, len(nonce))
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// decryptGCM reverses encryptGCM, verifying the tag.
func decryptGCM(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newGCM(key, len(nonce))
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte, nonceSize int) (cipher.AEAD, error) {
	if nonceSize != NonceSize {
		return nil, fmt.Errorf("bad nonce size: got %d, want %d", nonceSize, NonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
