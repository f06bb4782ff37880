package exchange

import (
	"encoding/json"

	"github.com/bytedance/sonic"

	"main/pkg/exception"
)

// MessageKind discriminates the multiplexed inbound channel.
type MessageKind uint8

const (
	_message_kind_beg MessageKind = iota
	KindResponse
	KindSubscriptionAck
	KindPong
	KindError
	KindStream
	_message_kind_end
)

// Channel tags carrying engine control traffic; everything else is a
// stream payload fanned out by subscription key.
const (
	channelPost            = "post"
	channelPong            = "pong"
	channelSubscriptionAck = "subscriptionResponse"
	channelError           = "error"
)

// Envelope is one inbound frame, discriminated by channel tag before any
// dispatch logic runs.
type Envelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// DecodeEnvelope validates and classifies a raw inbound frame.
func DecodeEnvelope(raw []byte) (Envelope, MessageKind, error) {
	var env Envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return Envelope{}, 0, exception.ErrMalformedFrame
	}

	if env.Channel == "" {
		return Envelope{}, 0, exception.ErrMalformedFrame
	}

	switch env.Channel {
	case channelPost:
		return env, KindResponse, nil
	case channelPong:
		return env, KindPong, nil
	case channelSubscriptionAck:
		return env, KindSubscriptionAck, nil
	case channelError:
		return env, KindError, nil
	default:
		return env, KindStream, nil
	}
}

// PostResponse is the payload of a response frame, matched against a
// pending request by id.
type PostResponse struct {
	ID       uint64       `json:"id"`
	Response ResponseBody `json:"response"`
}

// ResponseBody carries the typed response payload.
type ResponseBody struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ResponseTypeError marks a rejected post request.
const ResponseTypeError = "error"

// DecodePostResponse parses the data of a response envelope.
func DecodePostResponse(data []byte) (PostResponse, error) {
	var resp PostResponse
	if err := sonic.Unmarshal(data, &resp); err != nil {
		return PostResponse{}, exception.ErrMalformedFrame
	}
	return resp, nil
}

// StreamCoin pulls the coin field out of a stream payload when present so
// the dispatcher can rebuild the subscription descriptor of keyed feeds.
func StreamCoin(data []byte) string {
	var probe struct {
		Coin string `json:"coin"`
		S    string `json:"s"`
	}
	if err := sonic.Unmarshal(data, &probe); err != nil {
		return ""
	}
	if probe.Coin != "" {
		return probe.Coin
	}
	return probe.S
}
