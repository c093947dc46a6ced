// Package dispatch routes decoded protocol requests to the credential and
// mailbox stores and produces exactly one response per request. It holds no
// session state: every request carries all the identity it needs.
package dispatch

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/dmitrijs2005/boardkeeper/internal/common"
	"github.com/dmitrijs2005/boardkeeper/internal/logging"
	"github.com/dmitrijs2005/boardkeeper/internal/protocol"
	"github.com/dmitrijs2005/boardkeeper/internal/server/credstore"
	"github.com/dmitrijs2005/boardkeeper/internal/server/mailbox"
	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
)

// Response payloads. The texts are part of the protocol surface observed by
// existing clients.
const (
	msgUserExists     = "User already exists."
	msgAuthOK         = "Authentication successful."
	msgAuthFailed     = "Authentication failed."
	msgUserNotFound   = "User not found."
	msgPosted         = "Message posted."
	msgTargetNotFound = "Target user not found."
	msgPostFailed     = "Failed to store message."
	msgNoMessages     = "No such user or no messages."
	msgUnknownType    = "Unknown message type"
	msgBadEncoding    = "Invalid message encoding."
	msgInternal       = "Internal server error."
)

type Dispatcher struct {
	creds  *credstore.Service
	board  *mailbox.Service
	logger logging.Logger
}

func NewDispatcher(creds *credstore.Service, board *mailbox.Service, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		creds:  creds,
		board:  board,
		logger: logger.With("module", "dispatch"),
	}
}

// Dispatch handles one request and always returns a response; request-level
// failures become failure Status replies, never errors that could take down
// the accept loop.
func (d *Dispatcher) Dispatch(ctx context.Context, req protocol.Request) protocol.Response {
	switch r := req.(type) {
	case protocol.Create:
		return d.create(ctx, r)
	case protocol.Authenticate:
		return d.authenticate(ctx, r)
	case protocol.PubKeyRequest:
		return d.publicKey(ctx, r)
	case protocol.Post:
		return d.post(ctx, r)
	case protocol.GetMessages:
		return d.getMessages(ctx, r)
	case protocol.Unknown:
		d.logger.Warn(ctx, "unknown message type", "type", r.Type)
		return protocol.Status{OK: false, Payload: msgUnknownType}
	default:
		// Unreachable while protocol.Request stays a closed union.
		d.logger.Error(ctx, "unhandled request kind")
		return protocol.Status{OK: false, Payload: msgUnknownType}
	}
}

func (d *Dispatcher) create(ctx context.Context, r protocol.Create) protocol.Response {
	pubkey, err := base64.StdEncoding.DecodeString(r.Pubkey)
	if err != nil {
		return protocol.Status{OK: false, Payload: msgBadEncoding}
	}

	secret, err := d.creds.Create(ctx, r.User, r.Pass, pubkey)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return protocol.Status{OK: false, Payload: msgUserExists}
		}
		d.logger.Error(ctx, "create failed", "user", r.User, "error", err.Error())
		return protocol.Status{OK: false, Payload: msgInternal}
	}

	d.logger.Info(ctx, "user created", "user", r.User)
	return protocol.Status{OK: true, Payload: base64.StdEncoding.EncodeToString(secret)}
}

func (d *Dispatcher) authenticate(ctx context.Context, r protocol.Authenticate) protocol.Response {
	passOK := d.creds.ValidatePassword(r.User, r.Pass)
	totpOK := d.creds.ValidateTotp(r.User, r.Otp)

	if passOK && totpOK {
		d.logger.Info(ctx, "authentication succeeded", "user", r.User)
		return protocol.Status{OK: true, Payload: msgAuthOK}
	}

	d.logger.Info(ctx, "authentication failed", "user", r.User)
	return protocol.Status{OK: false, Payload: msgAuthFailed}
}

func (d *Dispatcher) publicKey(ctx context.Context, r protocol.PubKeyRequest) protocol.Response {
	key, ok := d.creds.PublicKey(r.User)
	if !ok {
		return protocol.Status{OK: false, Payload: msgUserNotFound}
	}
	return protocol.Status{OK: true, Payload: base64.StdEncoding.EncodeToString(key)}
}

func (d *Dispatcher) post(ctx context.Context, r protocol.Post) protocol.Response {
	if !d.creds.Exists(r.User) {
		return protocol.Status{OK: false, Payload: msgTargetNotFound}
	}

	post, err := decodePost(r)
	if err != nil {
		return protocol.Status{OK: false, Payload: msgBadEncoding}
	}

	if err := d.board.Append(ctx, post); err != nil {
		d.logger.Error(ctx, "post failed", "recipient", r.User, "error", err.Error())
		return protocol.Status{OK: false, Payload: msgPostFailed}
	}

	d.logger.Info(ctx, "post stored", "recipient", r.User)
	return protocol.Status{OK: true, Payload: msgPosted}
}

func (d *Dispatcher) getMessages(ctx context.Context, r protocol.GetMessages) protocol.Response {
	posts := d.board.List(r.User)
	if len(posts) == 0 {
		return protocol.Status{OK: false, Payload: msgNoMessages}
	}

	out := make([]protocol.WirePost, 0, len(posts))
	for _, p := range posts {
		out = append(out, protocol.WirePost{
			User:       p.Recipient,
			Message:    base64.StdEncoding.EncodeToString(p.Ciphertext),
			WrappedKey: base64.StdEncoding.EncodeToString(p.WrappedKey),
			IV:         base64.StdEncoding.EncodeToString(p.IV),
		})
	}
	return protocol.GetResponse{Posts: out}
}

// decodePost validates the base64 fields once at the boundary; past here
// the payload is raw opaque bytes.
func decodePost(r protocol.Post) (*models.Post, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(r.Message)
	if err != nil {
		return nil, err
	}
	wrapped, err := base64.StdEncoding.DecodeString(r.WrappedKey)
	if err != nil {
		return nil, err
	}
	iv, err := base64.StdEncoding.DecodeString(r.IV)
	if err != nil {
		return nil, err
	}

	return &models.Post{
		Recipient:  r.User,
		Ciphertext: ciphertext,
		WrappedKey: wrapped,
		IV:         iv,
	}, nil
}
