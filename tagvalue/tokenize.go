package tagvalue

import (
	"bytes"
	"strconv"

	"github.com/fixwire/fixengine/dictionary"
)

// token is one (tag, value) pair located in the frame, grounded on
// canboat.Decoder's habit of working over a flat decoded-field slice
// before any structural interpretation happens.
type token struct {
	tag    uint32
	value  []byte
	offset int
}

// tokenize splits a frame into (tag, value) pairs (spec.md §4.5 Phase A).
// It consults dict to detect Length/data field pairings so a data field's
// value can cross embedded SOH bytes safely.
func tokenize(dict *dictionary.Dictionary, frame []byte) ([]token, error) {
	var toks []token
	pendingDataLen := map[uint32]int{}

	i := 0
	for i < len(frame) {
		eq := bytes.IndexByte(frame[i:], '=')
		if eq < 0 {
			return nil, &DecodeError{Kind: KindBadValue, Offset: i, Err: errNoEquals}
		}
		tagStart := i
		tagBytes := frame[i : i+eq]
		tag64, err := strconv.ParseUint(string(tagBytes), 10, 32)
		if err != nil {
			return nil, &DecodeError{Kind: KindBadValue, Offset: tagStart, Err: errBadTag}
		}
		tag := uint32(tag64)
		valueStart := i + eq + 1

		if declaredLen, ok := pendingDataLen[tag]; ok {
			delete(pendingDataLen, tag)
			if declaredLen >= len(frame)-valueStart || frame[valueStart+declaredLen] != SOH {
				return nil, &DecodeError{Kind: KindBadValue, Tag: tag, Offset: valueStart, Err: errShortData}
			}
			toks = append(toks, token{tag: tag, value: frame[valueStart : valueStart+declaredLen], offset: tagStart})
			i = valueStart + declaredLen + 1
			continue
		}

		soh := bytes.IndexByte(frame[valueStart:], SOH)
		if soh < 0 {
			return nil, &DecodeError{Kind: KindBadValue, Tag: tag, Offset: valueStart, Err: errUnterminated}
		}
		value := frame[valueStart : valueStart+soh]
		toks = append(toks, token{tag: tag, value: value, offset: tagStart})
		i = valueStart + soh + 1

		if fd, ok := dict.FieldByTag(tag); ok && fd.AssociatedDataTag != 0 {
			n, err := strconv.Atoi(string(value))
			if err == nil && n >= 0 {
				pendingDataLen[fd.AssociatedDataTag] = n
			}
		}
	}
	return toks, nil
}

var (
	errNoEquals     = decodeErrText("missing '=' in field")
	errBadTag       = decodeErrText("non-numeric tag")
	errShortData    = decodeErrText("declared data length exceeds frame")
	errUnterminated = decodeErrText("value not terminated by SOH")
)

type decodeErrText string

func (e decodeErrText) Error() string { return string(e) }
