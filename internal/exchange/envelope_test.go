package exchange

import (
	"testing"

	"main/pkg/exception"
)

func TestDecodeEnvelopeKinds(t *testing.T) {
	testCases := []struct {
		desc     string
		raw      string
		expected MessageKind
	}{
		{"post response", `{"channel":"post","data":{"id":3,"response":{}}}`, KindResponse},
		{"pong", `{"channel":"pong"}`, KindPong},
		{"subscription ack", `{"channel":"subscriptionResponse","data":{}}`, KindSubscriptionAck},
		{"error frame", `{"channel":"error","data":"Invalid subscription"}`, KindError},
		{"stream payload", `{"channel":"allMids","data":{"mids":{}}}`, KindStream},
		{"unknown channel is stream", `{"channel":"somethingNew","data":{}}`, KindStream},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			env, kind, err := DecodeEnvelope([]byte(tc.raw))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if kind != tc.expected {
				t.Fatalf("kind = %v, want %v", kind, tc.expected)
			}
			if env.Channel == "" {
				t.Fatalf("channel missing")
			}
		})
	}
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	for _, raw := range []string{``, `not json`, `{"data":{}}`, `{"channel":""}`} {
		if _, _, err := DecodeEnvelope([]byte(raw)); err != exception.ErrMalformedFrame {
			t.Fatalf("raw %q: err = %v, want malformed frame", raw, err)
		}
	}
}

func TestDecodePostResponse(t *testing.T) {
	resp, err := DecodePostResponse([]byte(`{"id":42,"response":{"type":"info","payload":{"ok":true}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != 42 {
		t.Fatalf("id = %d, want 42", resp.ID)
	}
	if resp.Response.Type != "info" {
		t.Fatalf("type = %q, want info", resp.Response.Type)
	}
	if len(resp.Response.Payload) == 0 {
		t.Fatalf("payload missing")
	}
}

func TestStreamCoin(t *testing.T) {
	if coin := StreamCoin([]byte(`{"coin":"BTC","levels":[]}`)); coin != "BTC" {
		t.Fatalf("coin = %q, want BTC", coin)
	}
	if coin := StreamCoin([]byte(`{"s":"ETH","i":"1m"}`)); coin != "ETH" {
		t.Fatalf("coin = %q, want ETH from candle tag", coin)
	}
	if coin := StreamCoin([]byte(`{"mids":{}}`)); coin != "" {
		t.Fatalf("coin = %q, want empty for global feed", coin)
	}
}
