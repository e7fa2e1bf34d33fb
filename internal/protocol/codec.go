package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed reports a payload that cannot be decoded: invalid JSON, a
// missing or unknown discriminant, or a mistyped field. Callers log and drop
// the message without side effects.
var ErrMalformed = errors.New("malformed message")

// Kind reads only the "type" discriminant from a raw payload. The relay uses
// it to dispatch without decoding kind-specific fields.
func Kind(data []byte) (string, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if envelope.Type == "" {
		return "", fmt.Errorf("%w: missing type discriminant", ErrMalformed)
	}
	return envelope.Type, nil
}

// Decode parses a raw payload into its concrete message kind. The
// discriminant is read first and selects the schema; an unknown discriminant
// is an error rather than a guess.
func Decode(data []byte) (Message, error) {
	kind, err := Kind(data)
	if err != nil {
		return nil, err
	}

	var msg Message
	switch kind {
	case TypeBlockUpdate:
		msg, err = decodeAs[BlockUpdate](data)
	case TypePlayerPose:
		msg, err = decodeAs[PlayerPose](data)
	case TypeChat:
		msg, err = decodeAs[Chat](data)
	case TypeJoinNotice:
		msg, err = decodeAs[JoinNotice](data)
	case TypeLeaveNotice:
		msg, err = decodeAs[LeaveNotice](data)
	case TypeRoomState:
		msg, err = decodeAs[RoomState](data)
	case TypeP2PSignal:
		msg, err = decodeAs[P2PSignal](data)
	case TypeP2PConnect:
		msg, err = decodeAs[P2PConnectRequest](data)
	case TypeP2PRequest:
		msg, err = decodeAs[P2PRequest](data)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, kind)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeAs[T Message](data []byte) (Message, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, m.MessageType(), err)
	}
	return m, nil
}

// Encode serializes a message to its wire form.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	return data, nil
}
