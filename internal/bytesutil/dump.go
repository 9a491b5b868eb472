// Package bytesutil holds hex/ASCII dump and byte-span helpers shared by
// decode-error diagnostics and cmd/fixdump, grounded on
// internal/utils.FormatSpaces's escape-unprintable-bytes idiom,
// generalized from a single escaped string into a full offset-annotated
// dump.
package bytesutil

import (
	"fmt"
	"strings"
)

// EscapeControl renders b as a string with tab/newline/CR/vertical-tab/
// form-feed replaced by their Go escape sequences (the same substitution
// FormatSpaces applied) and SOH (FIX's field delimiter) replaced by '|', so
// a tag=value frame prints on one line. Other bytes are copied unchanged.
func EscapeControl(b []byte) string {
	var buf strings.Builder
	for _, c := range b {
		switch c {
		case '\t':
			buf.WriteString(`\t`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\v':
			buf.WriteString(`\v`)
		case '\f':
			buf.WriteString(`\f`)
		case 0x01:
			buf.WriteString(`|`)
		default:
			buf.WriteByte(c)
		}
	}
	return buf.String()
}

// Dump renders b as a classic 16-bytes-per-line offset/hex/ASCII dump.
func Dump(b []byte) string {
	var out strings.Builder
	for offset := 0; offset < len(b); offset += 16 {
		end := offset + 16
		if end > len(b) {
			end = len(b)
		}
		row := b[offset:end]

		fmt.Fprintf(&out, "%08x  ", offset)
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(&out, "%02x ", row[i])
			} else {
				out.WriteString("   ")
			}
			if i == 7 {
				out.WriteByte(' ')
			}
		}
		out.WriteString(" |")
		for _, c := range row {
			if c >= 0x20 && c < 0x7f {
				out.WriteByte(c)
			} else {
				out.WriteByte('.')
			}
		}
		out.WriteString("|\n")
	}
	return out.String()
}

// Span returns the [start, end) sub-slice of b clamped to b's bounds, for
// pointing diagnostics at a specific tag offset without risking an
// out-of-range panic on an untrusted frame.
func Span(b []byte, start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(b) {
		end = len(b)
	}
	if start >= end {
		return nil
	}
	return b[start:end]
}
