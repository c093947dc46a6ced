package keyring

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/boardkeeper/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// The current supported version of the encrypted blob format stored in the
// accounts table.
const envelopeVersion = 1

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// stored blob has been modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted keyring entry")

// envelope is the stored JSON structure holding the ciphertext and KDF
// parameters. Parameters travel with the blob so they can be raised later
// without breaking existing entries.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// seal derives a key from passphrase and encrypts raw into a JSON envelope.
func seal(passphrase string, raw []byte) ([]byte, error) {
	N, r, p := scryptParamsDefault()

	salt := common.GenerateRandByteArray(16)
	key, err := scrypt.Key([]byte(passphrase), salt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(chacha20poly1305.NonceSize)
	ct := aead.Seal(nil, nonce, raw, salt)

	return json.Marshal(envelope{
		V:      envelopeVersion,
		Salt:   salt,
		N:      N,
		R:      r,
		P:      p,
		Nonce:  nonce,
		Cipher: ct,
	})
}

// open decrypts a JSON envelope using a key derived from passphrase.
func open(passphrase string, b []byte) ([]byte, error) {
	var e envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decoding keyring entry: %w", err)
	}
	if e.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported keyring entry version %d", e.V)
	}

	key, err := scrypt.Key([]byte(passphrase), e.Salt, e.N, e.R, e.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	pt, err := aead.Open(nil, e.Nonce, e.Cipher, e.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
