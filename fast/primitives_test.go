package fast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestASCIIString_EmptyVsNullRoundTrip asserts the §8 round-trip law holds
// for the two values a bare stop byte could otherwise be confused for: a
// present empty string and an absent (null) one.
func TestASCIIString_EmptyVsNullRoundTrip(t *testing.T) {
	empty := encodeASCIIString([]byte{}, false)
	out, isNull, n, err := decodeASCIIString(empty, true)
	require.NoError(t, err)
	assert.False(t, isNull)
	assert.Equal(t, n, len(empty))
	assert.Equal(t, []byte{}, out)

	null := encodeASCIIString(nil, true)
	out, isNull, n, err = decodeASCIIString(null, true)
	require.NoError(t, err)
	assert.True(t, isNull)
	assert.Equal(t, n, len(null))
	assert.Nil(t, out)

	assert.NotEqual(t, empty, null)
}

func TestASCIIString_NonEmptyRoundTrip(t *testing.T) {
	wire := encodeASCIIString([]byte("AAPL"), false)
	out, isNull, n, err := decodeASCIIString(wire, true)
	require.NoError(t, err)
	assert.False(t, isNull)
	assert.Equal(t, n, len(wire))
	assert.Equal(t, []byte("AAPL"), out)
}
