package node

import (
	"context"
	"time"
)

// StartPeriodic launches the maintenance loop as a single cooperative
// goroutine. Each tick runs stabilize, check_predecessor,
// fix_successor_list, fix_finger and check_if_im_alone in order, unless
// the node currently believes itself alone, in which case the tick is
// skipped entirely to avoid useless network chatter. Calling
// StartPeriodic twice without an intervening StopPeriodic is a no-op.
func (n *Node) StartPeriodic() {
	n.mu.Lock()
	if n.periodic != nil {
		n.mu.Unlock()
		return
	}
	n.periodic = make(chan struct{})
	n.periodicDone = make(chan struct{})
	stop := n.periodic
	done := n.periodicDone
	n.mu.Unlock()

	interval := periodicTickInterval(n.cfg.PeriodicInterval)

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				n.runOneTick()
			}
		}
	}()
}

func (n *Node) runOneTick() {
	if n.isAlone() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.RPCTimeout)
	defer cancel()

	n.Stabilize(ctx)
	n.CheckPredecessor(ctx)
	n.FixSuccessorList(ctx)
	n.FixFinger(ctx)
	n.CheckIfImAlone(ctx)
}

// SetPeriodicInterval changes the maintenance tick interval, restarting
// the loop if it is currently running. Used by the overlay container to
// propagate a periodic_interval_ms configuration update to every local
// node.
func (n *Node) SetPeriodicInterval(d time.Duration) {
	running := n.isPeriodicRunning()
	if running {
		n.StopPeriodic()
	}
	n.cfg.PeriodicInterval = d
	if running {
		n.StartPeriodic()
	}
}

func (n *Node) isPeriodicRunning() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.periodic != nil
}

// StopPeriodic stops the maintenance loop and waits for it to exit.
// Idempotent: calling it more than once, or before StartPeriodic, is
// safe.
func (n *Node) StopPeriodic() {
	n.mu.Lock()
	stop := n.periodic
	done := n.periodicDone
	n.periodic = nil
	n.periodicDone = nil
	n.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
