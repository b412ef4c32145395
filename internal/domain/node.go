package domain

import "fmt"

// NodeInfo is the immutable triple identifying a peer on the ring: its
// network address and the identifier derived from it. Values are copied
// by assignment and held directly inside routing tables -- there are no
// back-references, cross-node links are resolved through the overlay's
// port->node map at call time.
type NodeInfo struct {
	IP   string
	Port int
	ID   ID
}

// NewNodeInfo derives the identifier for (ip, port) and returns the
// resulting descriptor. The identifier is computed once, here, and never
// recomputed for the lifetime of the value.
func NewNodeInfo(ip string, port int) NodeInfo {
	return NodeInfo{
		IP:   ip,
		Port: port,
		ID:   HashID(fmt.Sprintf("%s%d", ip, port)),
	}
}

// Addr returns the "ip:port" dial string for this node.
func (n NodeInfo) Addr() string {
	return fmt.Sprintf("%s:%d", n.IP, n.Port)
}

// Equal compares nodes by identifier, per the specification's equality rule.
func (n NodeInfo) Equal(o NodeInfo) bool {
	return n.ID.Equal(o.ID)
}

// IsZero reports whether n is the unset NodeInfo value.
func (n NodeInfo) IsZero() bool {
	return n.IP == "" && n.Port == 0 && n.ID == nil
}

func (n NodeInfo) String() string {
	return fmt.Sprintf("%s (%s)", n.Addr(), n.ID.String())
}
