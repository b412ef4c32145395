package wire

import "testing"

func TestTypeStringKnownValues(t *testing.T) {
	cases := map[Type]string{
		Ping:              "PING",
		GetPredecessor:    "GET_PRED",
		GetFirstSuccessor: "GET_FIRST_SUCC",
		FindKeySuccessor:  "FIND_KEY_SUCC",
		Notify:            "NOTIFY",
		LeavingPred:       "LEAVING_PRED",
		LeavingSucc:       "LEAVING_SUCC",
		YoureNotAlone:     "YOURE_NOT_ALONE",
		Publish:           "PUBLISH",
		FileGet:           "FILE_GET",
		FileDelete:        "FILE_DELETE",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}

func TestTypeStringUnknown(t *testing.T) {
	if got := Type(200).String(); got != "UNKNOWN" {
		t.Errorf("unknown type rendered as %q, want UNKNOWN", got)
	}
}

func TestIsReply(t *testing.T) {
	ok := &Envelope{}
	if !ok.IsReply() {
		t.Errorf("expected empty Err to be a valid reply")
	}
	failed := &Envelope{Err: "boom"}
	if failed.IsReply() {
		t.Errorf("expected non-empty Err to fail IsReply")
	}
}
