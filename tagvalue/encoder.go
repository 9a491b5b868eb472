package tagvalue

import (
	"bytes"
	"strconv"
)

// Encoder builds a syntactically valid tag=value frame: correct
// BodyLength and CheckSum, standard field ordering, grounded on
// actisense.NGT1.write's "build body, compute trailer, splice in"
// two-step pattern and canboat's field-by-field buffer writer style.
type Encoder struct {
	beginString string
	header      []fieldWrite
	body        []fieldWrite
}

// FieldValue is one (tag, value) pair queued for encoding.
type FieldValue struct {
	tag   uint32
	value []byte
}

type fieldWrite = FieldValue

// NewEncoder starts a new message for the given BeginString.
func NewEncoder(beginString string) *Encoder {
	return &Encoder{beginString: beginString}
}

// SetHeader appends a standard-header field (anything other than
// BeginString/BodyLength/MsgType, which the encoder places automatically).
func (e *Encoder) SetHeader(tag uint32, value []byte) *Encoder {
	e.header = append(e.header, fieldWrite{tag: tag, value: value})
	return e
}

// SetField appends a body field in caller-supplied order. Callers are
// responsible for semantic ordering (Length before its Data field, group
// count before entries) per spec.md §4.6.
func (e *Encoder) SetField(tag uint32, value []byte) *Encoder {
	e.body = append(e.body, fieldWrite{tag: tag, value: value})
	return e
}

// SetGroup appends a NumInGroup counter followed by each entry's fields
// in order.
func (e *Encoder) SetGroup(countTag uint32, entries [][]FieldValue) *Encoder {
	e.body = append(e.body, FieldValue{tag: countTag, value: strconv.AppendInt(nil, int64(len(entries)), 10)})
	for _, entry := range entries {
		e.body = append(e.body, entry...)
	}
	return e
}

// Field builds one (tag, value) pair for use with SetGroup.
func Field(tag uint32, value []byte) FieldValue {
	return FieldValue{tag: tag, value: value}
}

// Encode serializes the message: BeginString, BodyLength, MsgType first,
// remaining header fields, then body fields, then CheckSum last
// (spec.md §4.6).
func (e *Encoder) Encode(msgType []byte) ([]byte, error) {
	var body bytes.Buffer
	writeField(&body, 35, msgType)
	for _, f := range e.header {
		writeField(&body, f.tag, f.value)
	}
	for _, f := range e.body {
		writeField(&body, f.tag, f.value)
	}
	bodyBytes := body.Bytes()

	var out bytes.Buffer
	writeField(&out, 8, []byte(e.beginString))
	writeField(&out, 9, strconv.AppendInt(nil, int64(len(bodyBytes)), 10))
	out.Write(bodyBytes)

	sum := checksum(out.Bytes())
	writeField(&out, 10, []byte{'0' + sum/100, '0' + (sum/10)%10, '0' + sum%10})

	return out.Bytes(), nil
}

func writeField(buf *bytes.Buffer, tag uint32, value []byte) {
	buf.WriteString(strconv.FormatUint(uint64(tag), 10))
	buf.WriteByte('=')
	buf.Write(value)
	buf.WriteByte(SOH)
}
