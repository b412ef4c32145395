package codec

import (
	"testing"

	"chorddht/internal/domain"
	"chorddht/internal/wire"
)

func TestGobCodecRoundTrip(t *testing.T) {
	var c gobCodec

	in := &wire.Envelope{
		Type:   wire.FindKeySuccessor,
		Sender: domain.NewNodeInfo("10.0.0.1", 9000),
		Key:    domain.HashID("k"),
		Ticket: 7,
	}

	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	out := new(wire.Envelope)
	if err := c.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if out.Type != in.Type || out.Ticket != in.Ticket || !out.Sender.Equal(in.Sender) || !out.Key.Equal(in.Key) {
		t.Fatalf("round-tripped envelope mismatch: got %+v, want %+v", out, in)
	}
}

func TestGobCodecName(t *testing.T) {
	var c gobCodec
	if got := c.Name(); got != Name {
		t.Fatalf("Name() = %q, want %q", got, Name)
	}
}
