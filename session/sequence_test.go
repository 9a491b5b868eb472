package session_test

import (
	"testing"

	"github.com/fixwire/fixengine/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceCounter_InOrder(t *testing.T) {
	c := session.NewSequenceCounter()
	assert.Equal(t, uint64(1), c.ExpectedInbound())

	require.NoError(t, c.Observe(1))
	require.NoError(t, c.Observe(2))
	assert.Equal(t, uint64(3), c.ExpectedInbound())
}

func TestSequenceCounter_GapRejected(t *testing.T) {
	c := session.NewSequenceCounter()
	err := c.Observe(5)
	require.Error(t, err)

	var sessErr *session.Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, session.UnexpectedMsgSeqNum, sessErr.Kind)
	assert.Equal(t, uint64(1), sessErr.Expected)
	assert.Equal(t, uint64(5), sessErr.Got)
	// a rejected observation must not advance the counter
	assert.Equal(t, uint64(1), c.ExpectedInbound())
}

func TestSequenceCounter_SetExpected(t *testing.T) {
	c := session.NewSequenceCounter()
	c.SetExpected(42)
	assert.Equal(t, uint64(42), c.ExpectedInbound())
	require.NoError(t, c.Observe(42))
	assert.Equal(t, uint64(43), c.ExpectedInbound())
}

func TestSequenceCounter_NextOutboundIncrements(t *testing.T) {
	c := session.NewSequenceCounter()
	assert.Equal(t, uint64(1), c.NextOutbound())
	assert.Equal(t, uint64(2), c.NextOutbound())
	assert.Equal(t, uint64(3), c.NextOutbound())
}

func TestSequenceCounter_SnapshotRestore(t *testing.T) {
	c := session.NewSequenceCounter()
	require.NoError(t, c.Observe(1))
	c.NextOutbound()
	c.NextOutbound()

	snap := c.Snapshot()
	assert.Equal(t, uint64(2), snap.ExpectedInbound)
	assert.Equal(t, uint64(3), snap.NextOutbound)

	fresh := session.NewSequenceCounter()
	fresh.Restore(snap)
	assert.Equal(t, uint64(2), fresh.ExpectedInbound())
	assert.Equal(t, uint64(3), fresh.NextOutbound())
}
