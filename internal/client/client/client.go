// Package client implements the user-facing side of the bulletin board
// protocol: one connection per exchange, sealing outgoing messages to the
// recipient's published key and opening incoming ones with the local private
// key.
package client

import (
	"bufio"
	"context"
	"crypto/rsa"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"

	"github.com/dmitrijs2005/boardkeeper/internal/common"
	"github.com/dmitrijs2005/boardkeeper/internal/cryptox"
	"github.com/dmitrijs2005/boardkeeper/internal/protocol"
)

// maxLineSize bounds one response line, matching the server's request bound.
const maxLineSize = 8 * 1024 * 1024

// PlaceholderUndecryptable stands in for a post that could not be opened
// with the local private key. The post itself is left untouched on the
// server.
const PlaceholderUndecryptable = "[Encrypted message - cannot decrypt]"

// Registration is what a successful account creation yields. The TOTP
// secret is only ever transmitted this once; the caller must store it.
type Registration struct {
	TotpSecret []byte
	PrivateKey []byte // PKCS #8 DER
}

type Client struct {
	addr      string
	tlsConfig *tls.Config // nil means plain TCP
}

func NewClient(addr string, tlsConfig *tls.Config) *Client {
	return &Client{addr: addr, tlsConfig: tlsConfig}
}

// exchange runs one request-response round trip on a fresh connection.
func (c *Client) exchange(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	out, err := protocol.EncodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, err
		}
	}

	if _, err := conn.Write(append(out, '\n')); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		return nil, fmt.Errorf("reading response: connection closed")
	}

	resp, err := protocol.ParseResponse(scanner.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return resp, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	if c.tlsConfig != nil {
		d := &tls.Dialer{Config: c.tlsConfig}
		return d.DialContext(ctx, "tcp", c.addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", c.addr)
}

// Register creates an account: a fresh key pair is generated locally, the
// public half is sent with the request, and the server answers with the TOTP
// secret for the new account. The private key never leaves this process.
func (c *Client) Register(ctx context.Context, username, password string) (*Registration, error) {
	priv, err := cryptox.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generating key pair: %w", err)
	}

	pubDER, err := cryptox.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encoding public key: %w", err)
	}

	resp, err := c.exchange(ctx, protocol.Create{
		User:   username,
		Pass:   password,
		Pubkey: base64.StdEncoding.EncodeToString(pubDER),
	})
	if err != nil {
		return nil, err
	}

	status, err := asStatus(resp)
	if err != nil {
		return nil, err
	}
	if !status.OK {
		return nil, fmt.Errorf("%w: %s", common.ErrorAlreadyExists, status.Payload)
	}

	secret, err := base64.StdEncoding.DecodeString(status.Payload)
	if err != nil {
		return nil, fmt.Errorf("decoding totp secret: %w", err)
	}

	privDER, err := cryptox.MarshalPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("encoding private key: %w", err)
	}

	return &Registration{TotpSecret: secret, PrivateKey: privDER}, nil
}

// Authenticate verifies a password and one-time code with the server.
func (c *Client) Authenticate(ctx context.Context, username, password, otp string) error {
	resp, err := c.exchange(ctx, protocol.Authenticate{User: username, Pass: password, Otp: otp})
	if err != nil {
		return err
	}

	status, err := asStatus(resp)
	if err != nil {
		return err
	}
	if !status.OK {
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, status.Payload)
	}
	return nil
}

// PublicKey fetches and parses a user's registered public key.
func (c *Client) PublicKey(ctx context.Context, username string) (*rsa.PublicKey, error) {
	resp, err := c.exchange(ctx, protocol.PubKeyRequest{User: username})
	if err != nil {
		return nil, err
	}

	status, err := asStatus(resp)
	if err != nil {
		return nil, err
	}
	if !status.OK {
		return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, status.Payload)
	}

	der, err := base64.StdEncoding.DecodeString(status.Payload)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	return cryptox.ParsePublicKey(der)
}

// Send seals a message to the recipient's published key and posts it.
func (c *Client) Send(ctx context.Context, recipient, message string) error {
	pub, err := c.PublicKey(ctx, recipient)
	if err != nil {
		return err
	}

	sealed, err := cryptox.Seal([]byte(message), pub)
	if err != nil {
		return fmt.Errorf("sealing message: %w", err)
	}

	resp, err := c.exchange(ctx, protocol.Post{
		User:       recipient,
		Message:    base64.StdEncoding.EncodeToString(sealed.Ciphertext),
		WrappedKey: base64.StdEncoding.EncodeToString(sealed.WrappedKey),
		IV:         base64.StdEncoding.EncodeToString(sealed.Nonce),
	})
	if err != nil {
		return err
	}

	status, err := asStatus(resp)
	if err != nil {
		return err
	}
	if !status.OK {
		return fmt.Errorf("posting message: %s", status.Payload)
	}
	return nil
}

// Inbox fetches and opens every post addressed to username. Posts that
// cannot be opened with priv are returned as PlaceholderUndecryptable
// rather than failing the whole fetch. An account with no posts gets an
// empty slice.
func (c *Client) Inbox(ctx context.Context, username string, privDER []byte) ([]string, error) {
	priv, err := cryptox.ParsePrivateKey(privDER)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	resp, err := c.exchange(ctx, protocol.GetMessages{User: username})
	if err != nil {
		return nil, err
	}

	get, ok := resp.(protocol.GetResponse)
	if !ok {
		// The server answers a Status for empty mailboxes.
		return []string{}, nil
	}

	messages := make([]string, 0, len(get.Posts))
	for _, p := range get.Posts {
		messages = append(messages, openWirePost(p, priv))
	}
	return messages, nil
}

func openWirePost(p protocol.WirePost, priv *rsa.PrivateKey) string {
	ciphertext, err := base64.StdEncoding.DecodeString(p.Message)
	if err != nil {
		return PlaceholderUndecryptable
	}
	wrapped, err := base64.StdEncoding.DecodeString(p.WrappedKey)
	if err != nil {
		return PlaceholderUndecryptable
	}
	nonce, err := base64.StdEncoding.DecodeString(p.IV)
	if err != nil {
		return PlaceholderUndecryptable
	}

	plaintext, err := cryptox.Open(&cryptox.Sealed{
		Ciphertext: ciphertext,
		WrappedKey: wrapped,
		Nonce:      nonce,
	}, priv)
	if err != nil {
		return PlaceholderUndecryptable
	}
	return string(plaintext)
}

func asStatus(resp protocol.Response) (protocol.Status, error) {
	status, ok := resp.(protocol.Status)
	if !ok {
		return protocol.Status{}, fmt.Errorf("unexpected response kind")
	}
	return status, nil
}
