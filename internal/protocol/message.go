// Package protocol defines the wire messages of the bulletin-board protocol
// and total, validating codecs for them. One exchange is one JSON object per
// line in each direction; the "type" field discriminates the message kind.
//
// Field names (user, pass, pubkey, otp, message, wrappedkey, iv, status,
// payload, posts) are fixed for compatibility with existing deployments.
package protocol

// Message type tags.
const (
	TypeCreate        = "Create"
	TypeAuthenticate  = "Authenticate"
	TypePubKeyRequest = "PubKeyRequest"
	TypePost          = "Post"
	TypeGetMessage    = "GetMessage"
	TypeStatus        = "Status"
	TypeGetResponse   = "GetResponseMessage"
)

// Request is the closed union of client request kinds. The dispatcher
// switches over the concrete types; Unknown carries anything with an
// unrecognized type tag so the documented "Unknown message type" response
// can be produced instead of an error.
type Request interface {
	isRequest()
}

// Create asks the server to register a new account. Pubkey is the base64
// PKIX encoding of the public key the client wants others to encrypt to;
// the server stores it opaquely.
type Create struct {
	User   string
	Pass   string
	Pubkey string
}

// Authenticate carries a password and a one-time code. Every request is
// self-contained; there are no session tokens in this protocol.
type Authenticate struct {
	User string
	Pass string
	Otp  string
}

// PubKeyRequest asks for a user's stored public key.
type PubKeyRequest struct {
	User string
}

// Post submits a sealed message for a recipient. The three base64 fields
// are opaque to the server.
type Post struct {
	User       string // recipient
	Message    string // ciphertext, base64
	WrappedKey string // wrapped one-time key, base64
	IV         string // nonce, base64
}

// GetMessages asks for every post addressed to the user.
type GetMessages struct {
	User string
}

// Unknown is any syntactically valid message whose type tag is not part of
// the protocol.
type Unknown struct {
	Type string
}

func (Create) isRequest()        {}
func (Authenticate) isRequest()  {}
func (PubKeyRequest) isRequest() {}
func (Post) isRequest()          {}
func (GetMessages) isRequest()   {}
func (Unknown) isRequest()       {}

// Response is the closed union of server reply kinds.
type Response interface {
	isResponse()
}

// Status is the generic reply: a flag plus a payload that is either an
// informational message or requested data (a TOTP secret, a public key).
type Status struct {
	OK      bool
	Payload string
}

// WirePost is one sealed post as it appears inside a GetResponse.
type WirePost struct {
	User       string `json:"user"`
	Message    string `json:"message"`
	WrappedKey string `json:"wrappedkey"`
	IV         string `json:"iv"`
}

// GetResponse returns a recipient's posts in insertion order.
type GetResponse struct {
	Posts []WirePost
}

func (Status) isResponse()      {}
func (GetResponse) isResponse() {}
