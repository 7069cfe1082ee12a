package netsync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes envelopes and payloads. A lobby uses one codec for all
// of its traffic.
type Codec interface {
	Name() string
	Binary() bool
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// Codec names
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// JSONCodec is readable and the default.
type JSONCodec struct{}

func (JSONCodec) Name() string                               { return CodecJSON }
func (JSONCodec) Binary() bool                               { return false }
func (JSONCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

// MsgpackCodec is compact and binary.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string                               { return CodecMsgpack }
func (MsgpackCodec) Binary() bool                               { return true }
func (MsgpackCodec) Marshal(v interface{}) ([]byte, error)      { return msgpack.Marshal(v) }
func (MsgpackCodec) Unmarshal(data []byte, v interface{}) error { return msgpack.Unmarshal(data, v) }

// CodecByName returns the codec for a lobby setting. Empty selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecMsgpack:
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// Encode wraps a payload in a fresh envelope.
func Encode(c Codec, kind Kind, from, to string, payload interface{}, now time.Time) ([]byte, error) {
	env := Envelope{
		ID:   uuid.NewString(),
		Kind: kind,
		From: from,
		To:   to,
		Sent: now.UnixMilli(),
	}
	if payload != nil {
		body, err := c.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", kind, err)
		}
		env.Payload = body
	}
	data, err := c.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", kind, err)
	}
	return data, nil
}

// Decode reads an envelope without touching its payload.
func Decode(c Codec, data []byte) (Envelope, error) {
	var env Envelope
	if err := c.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Kind == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing kind")
	}
	return env, nil
}

// DecodePayload reads the envelope payload into v.
func DecodePayload(c Codec, env Envelope, v interface{}) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("decode %s: empty payload", env.Kind)
	}
	if err := c.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	return nil
}

// Reencode writes an envelope back out, used by relays that rewrite From.
func Reencode(c Codec, env Envelope) ([]byte, error) {
	return c.Marshal(&env)
}
