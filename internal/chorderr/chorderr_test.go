package chorderr

import "testing"

func TestErrorMessage(t *testing.T) {
	e := New(SendFailure, "connection refused")
	if got, want := e.Error(), "send-failure: connection refused"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}

	bare := New(ChordIsEmpty, "")
	if got, want := bare.Error(), "chord-is-empty"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestIs(t *testing.T) {
	err := New(TimerExpired, "ticket 1")
	if !Is(err, TimerExpired) {
		t.Fatalf("expected Is to match the same kind")
	}
	if Is(err, SendFailure) {
		t.Fatalf("expected Is to reject a different kind")
	}
	if Is(nil, TimerExpired) {
		t.Fatalf("expected Is(nil, ...) to be false")
	}
}
