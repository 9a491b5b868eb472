package transport_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/fixwire/fixengine/tagvalue"
	"github.com/fixwire/fixengine/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checksummedFrame(body string) []byte {
	head := "8=FIX.4.4\x019=" + itoa(len(body)) + "\x01"
	withoutChecksum := head + body
	sum := 0
	for _, c := range []byte(withoutChecksum) {
		sum += int(c)
	}
	sum %= 256
	return []byte(withoutChecksum + "10=" + pad3(sum) + "\x01")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func pad3(n int) string {
	s := itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// slowReader dribbles bytes out a handful at a time, forcing Stream to
// refill its buffer across multiple Read calls before a frame completes.
type slowReader struct {
	data []byte
	pos  int
	step int
}

func (r *slowReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.step
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

func TestStream_ReadFrame_AcrossRefills(t *testing.T) {
	frame := checksummedFrame("35=0\x0134=1\x0149=A\x0156=B\x0152=20240101-00:00:00\x01")
	r := &slowReader{data: frame, step: 3}
	s := transport.NewStream(r, tagvalue.DefaultConfig())

	got, err := s.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, frame, got)
	assert.Empty(t, s.Buffered())
}

func TestStream_ReadFrame_TwoFramesBackToBack(t *testing.T) {
	f1 := checksummedFrame("35=0\x0134=1\x0149=A\x0156=B\x0152=20240101-00:00:00\x01")
	f2 := checksummedFrame("35=0\x0134=2\x0149=A\x0156=B\x0152=20240101-00:00:01\x01")
	r := bytes.NewReader(append(append([]byte(nil), f1...), f2...))
	s := transport.NewStream(r, tagvalue.DefaultConfig())

	got1, err := s.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f1, got1)

	got2, err := s.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f2, got2)
}

func TestStream_ReadFrame_InvalidFramingSurfacesError(t *testing.T) {
	r := bytes.NewReader([]byte("9=not-a-beginstring\x01"))
	s := transport.NewStream(r, tagvalue.DefaultConfig())

	_, err := s.ReadFrame(context.Background())
	require.Error(t, err)
	var framingErr *tagvalue.FramingError
	require.ErrorAs(t, err, &framingErr)
}

func TestStream_ReadFrame_ContextCancelled(t *testing.T) {
	pr, _ := io.Pipe()
	s := transport.NewStream(pr, tagvalue.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ReadFrame(ctx)
	require.Error(t, err)
}
