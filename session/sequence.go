package session

import "sync"

// SequenceState is a persistable snapshot of a SequenceCounter, the
// injectable hook a caller uses to carry sequence numbers across a
// reconnect (spec.md §4.8/§7 names the sequence-number state machine as a
// session-layer concern that outlives one connection).
type SequenceState struct {
	ExpectedInbound uint64
	NextOutbound    uint64
}

// SequenceCounter tracks the next expected inbound MsgSeqNum and the next
// outbound MsgSeqNum to assign, servicing SequenceReset-Reset and
// ResendRequest gap-fill bookkeeping (spec.md §4.8 "Sequence-number
// counter"). Guarded by a mutex the same way addressmapper.AddressMapper
// protects its small shared counters, rather than requiring external
// synchronization from callers.
type SequenceCounter struct {
	mutex sync.Mutex

	expectedInbound uint64
	nextOutbound    uint64
}

// NewSequenceCounter creates a counter starting both sides at 1, the FIX
// convention for a fresh session.
func NewSequenceCounter() *SequenceCounter {
	return &SequenceCounter{expectedInbound: 1, nextOutbound: 1}
}

// ExpectedInbound returns the MsgSeqNum the next inbound message must
// carry to be in order.
func (c *SequenceCounter) ExpectedInbound() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.expectedInbound
}

// NextOutbound returns the MsgSeqNum to stamp on the next outbound
// message and advances the counter, mirroring the teacher's
// increment-and-return style for monotonic counters.
func (c *SequenceCounter) NextOutbound() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	n := c.nextOutbound
	c.nextOutbound++
	return n
}

// SetExpected forces the expected-inbound counter, the effect of a
// SequenceReset-Reset message or an operator-issued gap-fill resolution.
func (c *SequenceCounter) SetExpected(n uint64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.expectedInbound = n
}

// Observe advances the expected-inbound counter after an in-order message
// and returns an UnexpectedMsgSeqNum error otherwise, leaving the counter
// unchanged so the caller can decide between a ResendRequest (got <
// expected false, i.e. a gap) and ignoring a duplicate (got < expected).
func (c *SequenceCounter) Observe(got uint64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if got != c.expectedInbound {
		return errUnexpectedSeqNum(c.expectedInbound, got)
	}
	c.expectedInbound++
	return nil
}

// Snapshot captures the counter's state for persistence across a
// reconnect.
func (c *SequenceCounter) Snapshot() SequenceState {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return SequenceState{ExpectedInbound: c.expectedInbound, NextOutbound: c.nextOutbound}
}

// Restore replaces the counter's state with a previously captured
// snapshot, the persistence-hook half of Snapshot.
func (c *SequenceCounter) Restore(s SequenceState) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.expectedInbound = s.ExpectedInbound
	c.nextOutbound = s.NextOutbound
}
