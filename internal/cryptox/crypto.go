// Package cryptox implements the client-side hybrid encryption scheme: the
// message body is sealed under a one-time AES-256-GCM key and the key itself
// is wrapped with RSA-OAEP for the recipient's public key. The server only
// ever sees the sealed artifact.
package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/dmitrijs2005/boardkeeper/internal/common"
)

const (
	// KeySize is the byte length of the one-time symmetric key (AES-256).
	KeySize = 32
	// NonceSize is the byte length of the GCM nonce.
	NonceSize = 12
	// RSABits is the modulus size of generated key pairs.
	RSABits = 2048
)

// Sealed is a hybrid-encrypted message. All three parts travel together;
// none of them is secret on its own.
type Sealed struct {
	// Ciphertext is the AES-GCM output, authentication tag included.
	Ciphertext []byte
	// WrappedKey is the RSA-OAEP encryption of the one-time AES key.
	WrappedKey []byte
	// Nonce is the GCM nonce used for Ciphertext. Unique per key.
	Nonce []byte
}

// GenerateKeyPair creates a fresh RSA-2048 key pair for key wrapping.
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, RSABits)
	if err != nil {
		return nil, fmt.Errorf("generating key pair: %w", err)
	}
	return key, nil
}

// MarshalPublicKey encodes a public key into PKIX DER bytes, the form
// carried (base64) in protocol messages and the credential store.
func MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("marshaling public key: %w", err)
	}
	return der, nil
}

// ParsePublicKey decodes PKIX DER bytes into an RSA public key.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("parsing public key: not an RSA key")
	}
	return pub, nil
}

// MarshalPrivateKey encodes a private key into PKCS#8 DER bytes for the
// client keyring. Private keys never leave the client.
func MarshalPrivateKey(priv *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("marshaling private key: %w", err)
	}
	return der, nil
}

// ParsePrivateKey decodes PKCS#8 DER bytes into an RSA private key.
func ParsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("parsing private key: not an RSA key")
	}
	return priv, nil
}

// Seal encrypts plaintext for the recipient. Every call draws an
// independent random key and nonce; reusing either across posts would break
// the scheme, so nothing here is cached or derived.
func Seal(plaintext []byte, recipient *rsa.PublicKey) (*Sealed, error) {
	key := common.GenerateRandByteArray(KeySize)
	defer common.WipeByteArray(key)

	nonce := common.GenerateRandByteArray(NonceSize)

	ciphertext, err := encryptGCM(key, nonce, plaintext)
	if err != nil {
		return nil, fmt.Errorf("sealing message: %w", err)
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, recipient, key, nil)
	if err != nil {
		return nil, fmt.Errorf("wrapping key: %w", err)
	}

	return &Sealed{Ciphertext: ciphertext, WrappedKey: wrapped, Nonce: nonce}, nil
}

// Open recovers the plaintext of a sealed message with the holder's private
// key. Any failure (key unwrap or tag mismatch) comes back as
// common.ErrorDecryptFailed so batch retrieval can substitute a placeholder
// for the one bad post and keep going.
func Open(s *Sealed, priv *rsa.PrivateKey) ([]byte, error) {
	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, s.WrappedKey, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrapping key", common.ErrorDecryptFailed)
	}
	defer common.WipeByteArray(key)

	plaintext, err := decryptGCM(key, s.Nonce, s.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: opening ciphertext", common.ErrorDecryptFailed)
	}

	return plaintext, nil
}
