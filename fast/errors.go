package fast

import "fmt"

// Error is the FAST encoding/decoding error taxonomy from spec.md §4.7:
// D2 (integer overflow), D3 (decimal exponent out of range), R1 (unknown
// template id), R4 (presence mismatch), R5 (decode ran past buffer).
// Grounded on canboat's ErrUnsupportedFieldType/ErrDecodeUnknownPGN
// sentinel-plus-context idiom, generalized to carry the FAST codes' own
// offending-value/bound/decimal fields for diagnostics.
type Error struct {
	Code    string
	Detail  string
	Value   int64
	Bound   int64
	HasBound bool
}

func (e *Error) Error() string {
	if e.HasBound {
		return fmt.Sprintf("fast: %s: %s (value=%d bound=%d)", e.Code, e.Detail, e.Value, e.Bound)
	}
	return fmt.Sprintf("fast: %s: %s (value=%d)", e.Code, e.Detail, e.Value)
}

func errOverflow(value, bound int64) error {
	return &Error{Code: "D2", Detail: "integer overflows FAST stop-bit limits", Value: value, Bound: bound, HasBound: true}
}

func errDecimalExponentRange(exp int64) error {
	return &Error{Code: "D3", Detail: "decimal exponent out of range", Value: exp}
}

func errUnknownTemplate(id int64) error {
	return &Error{Code: "R1", Detail: "unknown template id", Value: id}
}

func errPresenceMismatch(detail string) error {
	return &Error{Code: "R4", Detail: detail}
}

func errPastBuffer() error {
	return &Error{Code: "R5", Detail: "decoding ran past end of buffer"}
}
