// Package wire defines the message envelope exchanged between peers. Every
// RPC -- request or reply -- travels as one Envelope value; fields not
// relevant to a given Type are left at their zero value. The encoding used
// to put an Envelope on the wire is the concern of internal/transport, not
// of this package: wire only fixes the logical shape the specification
// requires (message type, sender/destination, ticket, ack flag, error).
package wire

import "chorddht/internal/domain"

// Type identifies the kind of request or reply an Envelope carries.
type Type uint8

const (
	Ping Type = iota
	GetPredecessor
	GetFirstSuccessor
	FindKeySuccessor
	Notify
	LeavingPred
	LeavingSucc
	YoureNotAlone
	Publish
	FileGet
	FileDelete
)

func (t Type) String() string {
	switch t {
	case Ping:
		return "PING"
	case GetPredecessor:
		return "GET_PRED"
	case GetFirstSuccessor:
		return "GET_FIRST_SUCC"
	case FindKeySuccessor:
		return "FIND_KEY_SUCC"
	case Notify:
		return "NOTIFY"
	case LeavingPred:
		return "LEAVING_PRED"
	case LeavingSucc:
		return "LEAVING_SUCC"
	case YoureNotAlone:
		return "YOURE_NOT_ALONE"
	case Publish:
		return "PUBLISH"
	case FileGet:
		return "FILE_GET"
	case FileDelete:
		return "FILE_DELETE"
	default:
		return "UNKNOWN"
	}
}

// Envelope is the single wire-level message type. Every request and every
// reply is one Envelope; ReceivedMessagesHandler dispatches on Type.
//
// Field usage by Type (request -> reply):
//
//	PING             -- -> --
//	GET_PRED         -- -> Node, Found
//	GET_FIRST_SUCC   -- -> Node, Found
//	FIND_KEY_SUCC    Key -> Node, Found
//	NOTIFY           -- -> Files
//	LEAVING_PRED     Node (new pred), Files -> --
//	LEAVING_SUCC     Node (new succ) -> --
//	YOURE_NOT_ALONE  -- -> WasAlone
//	PUBLISH          Key, Value -> --
//	FILE_GET         Key -> Value, Found
//	FILE_DELETE      Key -> --
type Envelope struct {
	Type        Type
	Sender      domain.NodeInfo
	Destination domain.NodeInfo
	Ticket      uint64
	AckExpected bool
	Err         string // non-empty signals a remote-side failure

	Key   domain.ID
	Value string
	Found bool
	Node  domain.NodeInfo

	// Files carries a key(hex)->value map: NOTIFY replies with the keys
	// transferred to the sender, LEAVING_PRED carries the departing
	// node's drained file store.
	Files map[string]string

	WasAlone bool
}

// IsReply reports whether e carries no error, i.e. whether it is a usable
// reply rather than one RequestSender surfaces as a send-failure.
func (e *Envelope) IsReply() bool { return e.Err == "" }
