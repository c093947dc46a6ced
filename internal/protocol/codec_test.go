package protocol

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/boardkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_AllKinds(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Request
	}{
		{
			"create",
			`{"type":"Create","user":"alice","pass":"pw1","pubkey":"QUJD"}`,
			Create{User: "alice", Pass: "pw1", Pubkey: "QUJD"},
		},
		{
			"authenticate",
			`{"type":"Authenticate","user":"alice","pass":"pw1","otp":"123456"}`,
			Authenticate{User: "alice", Pass: "pw1", Otp: "123456"},
		},
		{
			"pubkey request",
			`{"type":"PubKeyRequest","user":"bob"}`,
			PubKeyRequest{User: "bob"},
		},
		{
			"post",
			`{"type":"Post","user":"bob","message":"Y3Q=","wrappedkey":"d2s=","iv":"aXY="}`,
			Post{User: "bob", Message: "Y3Q=", WrappedKey: "d2s=", IV: "aXY="},
		},
		{
			"get messages",
			`{"type":"GetMessage","user":"bob"}`,
			GetMessages{User: "bob"},
		},
		{
			"unknown tag",
			`{"type":"SelfDestruct","user":"bob"}`,
			Unknown{Type: "SelfDestruct"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", `this is not json`},
		{"missing type", `{"user":"alice"}`},
		{"create without pubkey", `{"type":"Create","user":"alice","pass":"pw1"}`},
		{"authenticate without otp", `{"type":"Authenticate","user":"alice","pass":"pw1"}`},
		{"post without iv", `{"type":"Post","user":"bob","message":"Y3Q=","wrappedkey":"d2s="}`},
		{"pubkey request without user", `{"type":"PubKeyRequest"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tt.line))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestRequestCodec_RoundTrip(t *testing.T) {
	requests := []Request{
		Create{User: "alice", Pass: "pw1", Pubkey: "QUJD"},
		Authenticate{User: "alice", Pass: "pw1", Otp: "123456"},
		PubKeyRequest{User: "bob"},
		Post{User: "bob", Message: "Y3Q=", WrappedKey: "d2s=", IV: "aXY="},
		GetMessages{User: "bob"},
	}

	for _, req := range requests {
		line, err := EncodeRequest(req)
		require.NoError(t, err)
		assert.NotContains(t, string(line), "\n")

		parsed, err := ParseRequest(line)
		require.NoError(t, err)
		assert.Equal(t, req, parsed)
	}
}

func TestEncodeRequest_Unknown(t *testing.T) {
	_, err := EncodeRequest(Unknown{Type: "Nope"})
	assert.Error(t, err)
}

func TestResponseCodec(t *testing.T) {
	t.Run("status wire shape", func(t *testing.T) {
		line, err := EncodeResponse(Status{OK: true, Payload: "secret"})
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		assert.Equal(t, "Status", m["type"])
		assert.Equal(t, true, m["status"])
		assert.Equal(t, "secret", m["payload"])
	})

	t.Run("get response round trip", func(t *testing.T) {
		resp := GetResponse{Posts: []WirePost{
			{User: "bob", Message: "Y3Q=", WrappedKey: "d2s=", IV: "aXY="},
			{User: "bob", Message: "ZHQ=", WrappedKey: "eWs=", IV: "anY="},
		}}

		line, err := EncodeResponse(resp)
		require.NoError(t, err)

		parsed, err := ParseResponse(line)
		require.NoError(t, err)
		assert.Equal(t, resp, parsed)
	})

	t.Run("empty posts encodes as array", func(t *testing.T) {
		line, err := EncodeResponse(GetResponse{})
		require.NoError(t, err)
		assert.Contains(t, string(line), `"posts":[]`)
	})

	t.Run("unexpected type rejected", func(t *testing.T) {
		_, err := ParseResponse([]byte(`{"type":"Create","user":"x"}`))
		assert.ErrorIs(t, err, common.ErrorValidation)
	})
}
