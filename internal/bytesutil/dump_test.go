package bytesutil_test

import (
	"testing"

	"github.com/fixwire/fixengine/internal/bytesutil"
	"github.com/stretchr/testify/assert"
)

func TestEscapeControl(t *testing.T) {
	assert.Equal(t, `8=FIX.4.4|9=5|`, bytesutil.EscapeControl([]byte("8=FIX.4.4\x019=5\x01")))
}

func TestDump(t *testing.T) {
	out := bytesutil.Dump([]byte("8=FIX.4.4\x01"))
	assert.Contains(t, out, "00000000")
	assert.Contains(t, out, "38 3d 46 49 58") // "8=FIX" in hex
	assert.Contains(t, out, "|8=FIX.4.4.|")
}

func TestSpan_ClampsToBounds(t *testing.T) {
	b := []byte("hello")
	assert.Equal(t, []byte("hello"), bytesutil.Span(b, -5, 100))
	assert.Nil(t, bytesutil.Span(b, 3, 3))
	assert.Equal(t, []byte("ell"), bytesutil.Span(b, 1, 4))
}
