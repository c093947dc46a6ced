package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/boardkeeper/internal/common"
)

// wireRequest is the superset of request fields on the wire. Parsing goes
// through this DTO and then into a fully validated concrete Request, so a
// half-filled message can never leak past this package.
type wireRequest struct {
	Type       string `json:"type"`
	User       string `json:"user,omitempty"`
	Pass       string `json:"pass,omitempty"`
	Pubkey     string `json:"pubkey,omitempty"`
	Otp        string `json:"otp,omitempty"`
	Message    string `json:"message,omitempty"`
	WrappedKey string `json:"wrappedkey,omitempty"`
	IV         string `json:"iv,omitempty"`
}

type wireStatus struct {
	Type    string `json:"type"`
	Status  bool   `json:"status"`
	Payload string `json:"payload"`
}

type wireGetResponse struct {
	Type  string     `json:"type"`
	Posts []WirePost `json:"posts"`
}

// ParseRequest decodes and validates one request line. Unrecognized type
// tags come back as Unknown (the dispatcher answers those politely); missing
// required fields are a common.ErrorValidation.
func ParseRequest(line []byte) (Request, error) {
	var w wireRequest
	if err := json.Unmarshal(line, &w); err != nil {
		return nil, fmt.Errorf("%w: malformed request: %v", common.ErrorValidation, err)
	}

	if w.Type == "" {
		return nil, fmt.Errorf("%w: missing type field", common.ErrorValidation)
	}

	switch w.Type {
	case TypeCreate:
		if err := requireFields(w.Type, field{"user", w.User}, field{"pass", w.Pass}, field{"pubkey", w.Pubkey}); err != nil {
			return nil, err
		}
		return Create{User: w.User, Pass: w.Pass, Pubkey: w.Pubkey}, nil

	case TypeAuthenticate:
		if err := requireFields(w.Type, field{"user", w.User}, field{"pass", w.Pass}, field{"otp", w.Otp}); err != nil {
			return nil, err
		}
		return Authenticate{User: w.User, Pass: w.Pass, Otp: w.Otp}, nil

	case TypePubKeyRequest:
		if err := requireFields(w.Type, field{"user", w.User}); err != nil {
			return nil, err
		}
		return PubKeyRequest{User: w.User}, nil

	case TypePost:
		if err := requireFields(w.Type, field{"user", w.User}, field{"message", w.Message},
			field{"wrappedkey", w.WrappedKey}, field{"iv", w.IV}); err != nil {
			return nil, err
		}
		return Post{User: w.User, Message: w.Message, WrappedKey: w.WrappedKey, IV: w.IV}, nil

	case TypeGetMessage:
		if err := requireFields(w.Type, field{"user", w.User}); err != nil {
			return nil, err
		}
		return GetMessages{User: w.User}, nil

	default:
		return Unknown{Type: w.Type}, nil
	}
}

// EncodeRequest encodes a request as a single JSON line (without the
// trailing newline, which the transport adds).
func EncodeRequest(r Request) ([]byte, error) {
	var w wireRequest

	switch req := r.(type) {
	case Create:
		w = wireRequest{Type: TypeCreate, User: req.User, Pass: req.Pass, Pubkey: req.Pubkey}
	case Authenticate:
		w = wireRequest{Type: TypeAuthenticate, User: req.User, Pass: req.Pass, Otp: req.Otp}
	case PubKeyRequest:
		w = wireRequest{Type: TypePubKeyRequest, User: req.User}
	case Post:
		w = wireRequest{Type: TypePost, User: req.User, Message: req.Message, WrappedKey: req.WrappedKey, IV: req.IV}
	case GetMessages:
		w = wireRequest{Type: TypeGetMessage, User: req.User}
	default:
		return nil, fmt.Errorf("cannot encode request of type %T", r)
	}

	return json.Marshal(w)
}

// EncodeResponse encodes a response as a single JSON line.
func EncodeResponse(r Response) ([]byte, error) {
	switch resp := r.(type) {
	case Status:
		return json.Marshal(wireStatus{Type: TypeStatus, Status: resp.OK, Payload: resp.Payload})
	case GetResponse:
		posts := resp.Posts
		if posts == nil {
			posts = []WirePost{}
		}
		return json.Marshal(wireGetResponse{Type: TypeGetResponse, Posts: posts})
	default:
		return nil, fmt.Errorf("cannot encode response of type %T", r)
	}
}

// ParseResponse decodes one response line on the client side.
func ParseResponse(line []byte) (Response, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", common.ErrorValidation, err)
	}

	switch probe.Type {
	case TypeStatus:
		var w wireStatus
		if err := json.Unmarshal(line, &w); err != nil {
			return nil, fmt.Errorf("%w: malformed status: %v", common.ErrorValidation, err)
		}
		return Status{OK: w.Status, Payload: w.Payload}, nil

	case TypeGetResponse:
		var w wireGetResponse
		if err := json.Unmarshal(line, &w); err != nil {
			return nil, fmt.Errorf("%w: malformed get response: %v", common.ErrorValidation, err)
		}
		return GetResponse{Posts: w.Posts}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected response type %q", common.ErrorValidation, probe.Type)
	}
}

type field struct {
	name  string
	value string
}

func requireFields(msgType string, fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s: missing %s field", common.ErrorValidation, msgType, f.name)
		}
	}
	return nil
}
