// Package transport supplies the streaming byte-source adapters that sit
// below tagvalue.Scan: a buffered-reader pump that turns an io.Reader into
// a sequence of complete frames, and a serial-line io.ReadWriteCloser for
// leased-line FIX sessions. tagvalue.Scan itself stays a pure, state-free
// pull function (spec.md §4.4/§5); the blocking refill loop lives here,
// grounded on actisense.NGT1.ReadRawMessage's read-accumulate-decide loop.
package transport

import (
	"context"
	"errors"
	"io"

	"github.com/fixwire/fixengine/tagvalue"
)

// defaultReadChunk is how much the stream asks its underlying reader for
// on each refill, mirrored loosely on the teacher's one-byte read calls
// but batched for throughput since tag=value frames are typically tens to
// low hundreds of bytes.
const defaultReadChunk = 4096

// Stream pumps frames out of an io.Reader by repeatedly refilling an
// internal buffer and re-invoking tagvalue.Scan, the shape spec.md §4.4's
// "streaming callers call the scanner after each buffer refill" note asks
// for.
type Stream struct {
	r     io.Reader
	cfg   tagvalue.Config
	buf   []byte
	chunk int
}

// NewStream creates a Stream reading frames from r under cfg.
func NewStream(r io.Reader, cfg tagvalue.Config) *Stream {
	return &Stream{r: r, cfg: cfg, chunk: defaultReadChunk}
}

// ErrFrameTooLarge is returned when MaxFrameBytes is set and no complete
// frame fits within that bound even after repeated refills.
var ErrFrameTooLarge = errors.New("transport: no complete frame within MaxFrameBytes after refill")

// ReadFrame blocks until one complete frame is available, ctx is done, or
// the underlying reader errors (including io.EOF once no further frame
// can be completed). On a framing error it returns the error without
// advancing past the bad bytes, leaving the caller free to inspect
// s.Buffered or call Resync to skip one byte and retry, per spec.md §4.4's
// "on Invalid, optionally skip one byte and retry (caller policy)".
func (s *Stream) ReadFrame(ctx context.Context) ([]byte, error) {
	for {
		res := tagvalue.Scan(s.buf, s.cfg)
		switch res.Status {
		case tagvalue.StatusComplete:
			frame := append([]byte(nil), res.Frame...)
			s.buf = s.buf[res.Consumed:]
			return frame, nil
		case tagvalue.StatusInvalid:
			return nil, res.Err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.cfg.MaxFrameBytes > 0 && len(s.buf) >= s.cfg.MaxFrameBytes {
			return nil, ErrFrameTooLarge
		}

		chunk := make([]byte, s.chunk)
		n, err := s.r.Read(chunk)
		if n > 0 {
			s.buf = append(s.buf, chunk[:n]...)
		}
		if err != nil {
			if n > 0 && err == io.EOF {
				// give the freshly appended bytes one more scan pass
				// before surfacing EOF, since Scan may now complete.
				continue
			}
			return nil, err
		}
	}
}

// Resync discards one byte from the head of the buffered stream,
// implementing the "skip one byte and retry" recovery policy spec.md
// §4.4 leaves to the caller after a StatusInvalid result.
func (s *Stream) Resync() {
	if len(s.buf) > 0 {
		s.buf = s.buf[1:]
	}
}

// Buffered returns the bytes currently held but not yet consumed into a
// frame, for diagnostics.
func (s *Stream) Buffered() []byte {
	return s.buf
}
