package tagvalue

import (
	"time"

	"github.com/fixwire/fixengine/fixvalue"
	"github.com/shopspring/decimal"
)

// scope is the shared, read-only field index behind MessageView and
// EntryView. Per spec.md §9 it holds a reference into the decoder's index
// and the underlying frame; any number of scopes may coexist reading it,
// none may mutate it — the same "many readers, no aliased writer" shape
// the teacher achieves for NMEA group decoding by never handing out a
// mutable slice alias.
type scope struct {
	order  []uint32
	fields map[uint32][]byte
	groups map[uint32]*GroupView
}

func newScope() *scope {
	return &scope{fields: map[uint32][]byte{}, groups: map[uint32]*GroupView{}}
}

// GetRaw returns the raw wire bytes for tag at this scope.
func (s *scope) GetRaw(tag uint32) ([]byte, bool) {
	v, ok := s.fields[tag]
	return v, ok
}

// Tags returns the tags present at this scope, in wire order.
func (s *scope) Tags() []uint32 {
	return append([]uint32(nil), s.order...)
}

// Group opens a group field at this scope.
func (s *scope) Group(tag uint32) (*GroupView, error) {
	g, ok := s.groups[tag]
	if !ok {
		return nil, &DecodeError{Kind: KindGroupMalformed, Tag: tag, Err: errNotAGroup}
	}
	return g, nil
}

var errNotAGroup = decodeErrText("tag does not identify a group in this scope")

// GetInt returns tag's value parsed as the `int` family.
func (s *scope) GetInt(tag uint32) (int64, error) {
	raw, ok := s.fields[tag]
	if !ok {
		return 0, &DecodeError{Kind: KindMissingRequiredField, Tag: tag, Err: errFieldAbsent}
	}
	v, err := fixvalue.ParseInt(raw)
	if err != nil {
		return 0, &DecodeError{Kind: KindBadValue, Tag: tag, Raw: raw, Err: err}
	}
	return v, nil
}

// GetUint returns tag's value parsed as an unsigned int-family value.
func (s *scope) GetUint(tag uint32) (uint64, error) {
	raw, ok := s.fields[tag]
	if !ok {
		return 0, &DecodeError{Kind: KindMissingRequiredField, Tag: tag, Err: errFieldAbsent}
	}
	v, err := fixvalue.ParseUint(raw)
	if err != nil {
		return 0, &DecodeError{Kind: KindBadValue, Tag: tag, Raw: raw, Err: err}
	}
	return v, nil
}

// GetString returns tag's raw value as a string (String/MultipleCharValue-
// family datatypes carry no further parsing).
func (s *scope) GetString(tag uint32) (string, error) {
	raw, ok := s.fields[tag]
	if !ok {
		return "", &DecodeError{Kind: KindMissingRequiredField, Tag: tag, Err: errFieldAbsent}
	}
	return string(raw), nil
}

// GetFloat returns tag's value parsed as a `float`-family decimal.
func (s *scope) GetFloat(tag uint32) (decimal.Decimal, error) {
	raw, ok := s.fields[tag]
	if !ok {
		return decimal.Decimal{}, &DecodeError{Kind: KindMissingRequiredField, Tag: tag, Err: errFieldAbsent}
	}
	v, err := fixvalue.ParseFloat(raw)
	if err != nil {
		return decimal.Decimal{}, &DecodeError{Kind: KindBadValue, Tag: tag, Raw: raw, Err: err}
	}
	return v, nil
}

// GetBoolean returns tag's value parsed as a Boolean.
func (s *scope) GetBoolean(tag uint32) (bool, error) {
	raw, ok := s.fields[tag]
	if !ok {
		return false, &DecodeError{Kind: KindMissingRequiredField, Tag: tag, Err: errFieldAbsent}
	}
	v, err := fixvalue.ParseBoolean(raw)
	if err != nil {
		return false, &DecodeError{Kind: KindBadValue, Tag: tag, Raw: raw, Err: err}
	}
	return v, nil
}

// GetUTCTimestamp returns tag's value parsed as a UTCTimestamp.
func (s *scope) GetUTCTimestamp(tag uint32) (time.Time, error) {
	raw, ok := s.fields[tag]
	if !ok {
		return time.Time{}, &DecodeError{Kind: KindMissingRequiredField, Tag: tag, Err: errFieldAbsent}
	}
	v, err := fixvalue.ParseUTCTimestamp(raw)
	if err != nil {
		return time.Time{}, &DecodeError{Kind: KindBadValue, Tag: tag, Raw: raw, Err: err}
	}
	return v, nil
}

var errFieldAbsent = decodeErrText("field not present at this scope")

// MessageView is the read-only, zero-copy decoded view over one frame
// (spec.md §3 "Message view"). It borrows from the frame passed to
// Decoder.Decode and must not outlive it.
type MessageView struct {
	*scope
	raw     []byte
	msgType []byte
}

// MsgType returns the decoded MsgType (tag 35) token.
func (m *MessageView) MsgType() []byte { return m.msgType }

// Raw returns the full frame this view was built from.
func (m *MessageView) Raw() []byte { return m.raw }

// EntryView is one entry of a GroupView, scoped to that entry's own field
// set (spec.md §4.5 "EntryView exposes the same field-access API, scoped
// to that entry").
type EntryView struct {
	*scope
}

// GroupView is an opened repeating group (spec.md §4.5).
type GroupView struct {
	fieldTag uint32
	entries  []*EntryView
}

// Len returns the number of entries.
func (g *GroupView) Len() int { return len(g.entries) }

// Entry returns the i-th entry, scoped to its own fields.
func (g *GroupView) Entry(i int) (*EntryView, error) {
	if i < 0 || i >= len(g.entries) {
		return nil, &DecodeError{Kind: KindGroupMalformed, Tag: g.fieldTag, Err: errEntryOutOfRange}
	}
	return g.entries[i], nil
}

var errEntryOutOfRange = decodeErrText("group entry index out of range")
