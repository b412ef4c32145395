package transport

import (
	"context"
	"testing"
	"time"

	"chorddht/internal/domain"
	"chorddht/internal/wire"
)

type echoHandler struct{}

func (echoHandler) Handle(ctx context.Context, in *wire.Envelope) (*wire.Envelope, error) {
	return &wire.Envelope{Type: in.Type, Ticket: in.Ticket, Value: "echo:" + in.Value}, nil
}

func TestClientListenerRoundTrip(t *testing.T) {
	lis, err := NewListener("127.0.0.1:0", echoHandler{}, nil)
	if err != nil {
		t.Fatalf("NewListener failed: %v", err)
	}
	go func() { _ = lis.Serve() }()
	defer lis.Stop()

	time.Sleep(50 * time.Millisecond)

	client := NewClient(2*time.Second, 3, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	reply, err := client.Send(ctx, lis.Addr().String(), &wire.Envelope{
		Type:   wire.Ping,
		Sender: domain.NewNodeInfo("127.0.0.1", 1),
		Value:  "hi",
		Ticket: 1,
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply.Value != "echo:hi" {
		t.Fatalf("reply.Value = %q, want %q", reply.Value, "echo:hi")
	}
}

func TestClientSendToDeadAddressFails(t *testing.T) {
	client := NewClient(200*time.Millisecond, 2, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.Send(ctx, "127.0.0.1:1", &wire.Envelope{Type: wire.Ping})
	if err == nil {
		t.Fatalf("expected error sending to an address nothing listens on")
	}
}
