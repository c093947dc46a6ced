package dispatch

import (
	"bufio"
	"context"
	"encoding/base64"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/boardkeeper/internal/cryptox"
	"github.com/dmitrijs2005/boardkeeper/internal/protocol"
	"github.com/dmitrijs2005/boardkeeper/internal/server/credstore"
	"github.com/dmitrijs2005/boardkeeper/internal/server/mailbox"
	"github.com/dmitrijs2005/boardkeeper/internal/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer runs a Server on a loopback listener and returns its
// address. The server stops when the test finishes.
func startTestServer(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dir := t.TempDir()
	creds, err := credstore.NewService(ctx, credstore.NewFileRepository(filepath.Join(dir, "users.json")))
	require.NoError(t, err)
	board, err := mailbox.NewService(ctx, mailbox.NewFileRepository(filepath.Join(dir, "board.json")))
	require.NoError(t, err)

	srv := NewServer("127.0.0.1:0", nil, NewDispatcher(creds, board, testLogger()), testLogger())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = srv.Serve(ctx, listener) }()

	return listener.Addr().String()
}

// exchange performs one full request/response round trip on a fresh
// connection, the way real clients do.
func exchange(t *testing.T, addr string, req protocol.Request) protocol.Response {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	require.NoError(t, err)
	defer conn.Close()

	line, err := protocol.EncodeRequest(req)
	require.NoError(t, err)
	_, err = conn.Write(append(line, '\n'))
	require.NoError(t, err)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	require.True(t, scanner.Scan(), "expected one response line, got: %v", scanner.Err())

	resp, err := protocol.ParseResponse(scanner.Bytes())
	require.NoError(t, err)
	return resp
}

func rawExchange(t *testing.T, addr, line string) string {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(line + "\n"))
	require.NoError(t, err)

	scanner := bufio.NewScanner(conn)
	require.True(t, scanner.Scan())
	return scanner.Text()
}

func TestServer_EndToEndAuthentication(t *testing.T) {
	addr := startTestServer(t)

	alice, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	pubDER, err := cryptox.MarshalPublicKey(&alice.PublicKey)
	require.NoError(t, err)

	// Create returns the 160-bit TOTP secret.
	resp := exchange(t, addr, protocol.Create{
		User:   "alice",
		Pass:   "pw1",
		Pubkey: base64.StdEncoding.EncodeToString(pubDER),
	})
	status, ok := resp.(protocol.Status)
	require.True(t, ok)
	require.True(t, status.OK)

	secret, err := base64.StdEncoding.DecodeString(status.Payload)
	require.NoError(t, err)
	require.Len(t, secret, totp.SecretSize)

	// A current code authenticates.
	resp = exchange(t, addr, protocol.Authenticate{
		User: "alice", Pass: "pw1", Otp: totp.CurrentCode(secret, time.Now()),
	})
	status, ok = resp.(protocol.Status)
	require.True(t, ok)
	assert.True(t, status.OK)

	// A code from five minutes ago does not.
	resp = exchange(t, addr, protocol.Authenticate{
		User: "alice", Pass: "pw1", Otp: totp.CurrentCode(secret, time.Now().Add(-5*time.Minute)),
	})
	status, ok = resp.(protocol.Status)
	require.True(t, ok)
	assert.False(t, status.OK)
}

func TestServer_EndToEndSealedExchange(t *testing.T) {
	addr := startTestServer(t)

	bob, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	bobPubDER, err := cryptox.MarshalPublicKey(&bob.PublicKey)
	require.NoError(t, err)

	alicePriv, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	alicePubDER, err := cryptox.MarshalPublicKey(&alicePriv.PublicKey)
	require.NoError(t, err)

	for user, der := range map[string][]byte{"alice": alicePubDER, "bob": bobPubDER} {
		resp := exchange(t, addr, protocol.Create{
			User: user, Pass: "pw-" + user, Pubkey: base64.StdEncoding.EncodeToString(der),
		})
		status, ok := resp.(protocol.Status)
		require.True(t, ok)
		require.True(t, status.OK)
	}

	// Alice fetches bob's key from the server and seals a message for it.
	resp := exchange(t, addr, protocol.PubKeyRequest{User: "bob"})
	status, ok := resp.(protocol.Status)
	require.True(t, ok)
	require.True(t, status.OK)

	fetchedDER, err := base64.StdEncoding.DecodeString(status.Payload)
	require.NoError(t, err)
	bobPub, err := cryptox.ParsePublicKey(fetchedDER)
	require.NoError(t, err)

	sealed, err := cryptox.Seal([]byte("hello"), bobPub)
	require.NoError(t, err)

	resp = exchange(t, addr, protocol.Post{
		User:       "bob",
		Message:    base64.StdEncoding.EncodeToString(sealed.Ciphertext),
		WrappedKey: base64.StdEncoding.EncodeToString(sealed.WrappedKey),
		IV:         base64.StdEncoding.EncodeToString(sealed.Nonce),
	})
	status, ok = resp.(protocol.Status)
	require.True(t, ok)
	require.True(t, status.OK)

	// Bob retrieves and opens it.
	resp = exchange(t, addr, protocol.GetMessages{User: "bob"})
	get, ok := resp.(protocol.GetResponse)
	require.True(t, ok)
	require.Len(t, get.Posts, 1)

	ciphertext, err := base64.StdEncoding.DecodeString(get.Posts[0].Message)
	require.NoError(t, err)
	wrapped, err := base64.StdEncoding.DecodeString(get.Posts[0].WrappedKey)
	require.NoError(t, err)
	iv, err := base64.StdEncoding.DecodeString(get.Posts[0].IV)
	require.NoError(t, err)

	opened, err := cryptox.Open(&cryptox.Sealed{
		Ciphertext: ciphertext, WrappedKey: wrapped, Nonce: iv,
	}, bob)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), opened)
}

func TestServer_MalformedAndUnknownInput(t *testing.T) {
	addr := startTestServer(t)

	t.Run("garbage line", func(t *testing.T) {
		out := rawExchange(t, addr, "this is not json")
		assert.Contains(t, out, `"status":false`)
		assert.Contains(t, out, "Invalid request.")
	})

	t.Run("unknown type", func(t *testing.T) {
		out := rawExchange(t, addr, `{"type":"Teleport","user":"bob"}`)
		assert.Contains(t, out, "Unknown message type")
	})

	t.Run("server keeps serving afterwards", func(t *testing.T) {
		resp := exchange(t, addr, protocol.PubKeyRequest{User: "nobody"})
		status, ok := resp.(protocol.Status)
		require.True(t, ok)
		assert.False(t, status.OK)
	})

	t.Run("dropped connection is tolerated", func(t *testing.T) {
		conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, conn.Close())

		resp := exchange(t, addr, protocol.PubKeyRequest{User: "nobody"})
		_, ok := resp.(protocol.Status)
		assert.True(t, ok)
	})
}
