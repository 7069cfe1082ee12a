package netsync

import (
	"testing"
	"time"

	"pokemon-arena/internal/game"
)

func TestCodecRoundTrip(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	for _, name := range []string{CodecJSON, CodecMsgpack} {
		t.Run(name, func(t *testing.T) {
			c, err := CodecByName(name)
			if err != nil {
				t.Fatalf("CodecByName: %v", err)
			}
			in := PlayerState{Username: "ash", Character: game.CharGengar, X: 64, Y: 96, Dir: game.DirLeft, Anim: "walk", Scale: 1, Timestamp: 42}
			data, err := Encode(c, KindPlayerState, "u1", "", in, now)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			env, err := Decode(c, data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if env.Kind != KindPlayerState || env.From != "u1" || env.Sent != now.UnixMilli() || env.ID == "" {
				t.Errorf("Unexpected envelope %+v", env)
			}
			var out PlayerState
			if err := DecodePayload(c, env, &out); err != nil {
				t.Fatalf("DecodePayload: %v", err)
			}
			if out != in {
				t.Errorf("Expected %+v, got %+v", in, out)
			}
		})
	}
}

func TestCodecByNameRejectsUnknown(t *testing.T) {
	if c, _ := CodecByName(""); c.Name() != CodecJSON {
		t.Errorf("Expected JSON default, got %s", c.Name())
	}
	if _, err := CodecByName("xml"); err == nil {
		t.Error("Expected error for unknown codec")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(JSONCodec{}, []byte("not json")); err == nil {
		t.Error("Expected decode error")
	}
	if _, err := Decode(JSONCodec{}, []byte(`{"from":"u1"}`)); err == nil {
		t.Error("Expected error for missing kind")
	}
}

func TestPlayerStateConvertsToRemoteState(t *testing.T) {
	ps := PlayerState{Username: "misty", Character: game.CharDitto, X: 32, Y: 64, Dir: game.DirUp, Typing: true, Scale: 1.5, Timestamp: 9}
	rs := ps.RemoteState("u2")
	if rs.ID != "u2" || rs.Name != "misty" || rs.X != 32 || !rs.Typing {
		t.Errorf("Unexpected remote state %+v", rs)
	}
	if back := FromRemoteState(rs); back != ps {
		t.Errorf("Expected %+v, got %+v", ps, back)
	}
}
