// Package fixvalue parses and formats the FIX primitive datatypes
// (spec.md §4.3) over SOH-delimited byte slices. Every function here takes
// or returns a raw value span exactly as it appears on the wire, with no
// knowledge of tags, dictionaries or framing.
//
// The int, Boolean, multi-value and temporal decoders are built on the
// standard library (strconv, time); the float family is parsed into a
// github.com/shopspring/decimal Decimal so its scale survives a round trip.
package fixvalue

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors carry the same "distinct error kind" intent as the
// teacher's ErrValueNoData/ErrValueOutOfRange/ErrValueReserved trio
// (spec.md §4.3: "distinct error kinds that carry the offending value").
var (
	ErrEmpty      = errors.New("fixvalue: empty value")
	ErrNotDigits  = errors.New("fixvalue: value is not ASCII decimal digits")
	ErrOverflow   = errors.New("fixvalue: value overflows target type")
	ErrBadFormat  = errors.New("fixvalue: value does not match datatype format")
)

// InvalidValueError carries the offending raw bytes and datatype name for
// diagnostics, per spec.md §4.3.
type InvalidValueError struct {
	Datatype string
	Raw      []byte
	Err      error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("fixvalue: invalid %s value %q: %v", e.Datatype, e.Raw, e.Err)
}

func (e *InvalidValueError) Unwrap() error { return e.Err }

func invalid(datatype string, raw []byte, err error) error {
	return &InvalidValueError{Datatype: datatype, Raw: append([]byte(nil), raw...), Err: err}
}

// ParseInt parses the `int` family (int, SeqNum, Length, NumInGroup):
// ASCII decimal with optional leading '-' sign, optional leading zeros.
func ParseInt(raw []byte) (int64, error) {
	if len(raw) == 0 {
		return 0, invalid("int", raw, ErrEmpty)
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, invalid("int", raw, classifyIntError(err))
	}
	return v, nil
}

// ParseUint parses an unsigned-only int family member (SeqNum, Length,
// NumInGroup never carry a sign on the wire).
func ParseUint(raw []byte) (uint64, error) {
	if len(raw) == 0 {
		return 0, invalid("uint", raw, ErrEmpty)
	}
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, invalid("uint", raw, classifyIntError(err))
	}
	return v, nil
}

func classifyIntError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		if errors.Is(numErr.Err, strconv.ErrRange) {
			return ErrOverflow
		}
	}
	return ErrNotDigits
}

// FormatInt formats an int-family value as ASCII decimal.
func FormatInt(v int64) []byte {
	return strconv.AppendInt(nil, v, 10)
}

// FormatUint formats an unsigned int-family value as ASCII decimal.
func FormatUint(v uint64) []byte {
	return strconv.AppendUint(nil, v, 10)
}

// ParseFloat parses the `float` family (float, Qty, Price, Amt,
// Percentage): ASCII decimal with optional sign and optional decimal
// point. Returned as a decimal.Decimal rather than float64 so trailing
// zeros and exact scale survive a decode/encode round trip — the same
// property a float64 cannot guarantee for prices.
func ParseFloat(raw []byte) (decimal.Decimal, error) {
	if len(raw) == 0 {
		return decimal.Decimal{}, invalid("float", raw, ErrEmpty)
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Decimal{}, invalid("float", raw, ErrBadFormat)
	}
	return d, nil
}

// FormatFloat formats a float-family value as ASCII decimal, preserving
// the decimal's exponent (so a value built with scale 2 always prints two
// fraction digits).
func FormatFloat(d decimal.Decimal) []byte {
	if exp := d.Exponent(); exp < 0 {
		return []byte(d.StringFixed(-exp))
	}
	return []byte(d.String())
}

// ParseBoolean parses the Boolean datatype: exactly 'Y' or 'N'.
func ParseBoolean(raw []byte) (bool, error) {
	if len(raw) != 1 {
		return false, invalid("Boolean", raw, ErrBadFormat)
	}
	switch raw[0] {
	case 'Y':
		return true, nil
	case 'N':
		return false, nil
	default:
		return false, invalid("Boolean", raw, ErrBadFormat)
	}
}

// FormatBoolean formats a Boolean as 'Y' or 'N'.
func FormatBoolean(v bool) []byte {
	if v {
		return []byte{'Y'}
	}
	return []byte{'N'}
}

// ParseMultipleCharValue splits a MultipleCharValue into its
// space-separated single-character tokens.
func ParseMultipleCharValue(raw []byte) ([]byte, error) {
	return parseMultipleTokens(raw, "MultipleCharValue", true)
}

// ParseMultipleStringValue splits a MultipleStringValue into its
// space-separated tokens.
func ParseMultipleStringValue(raw []byte) ([][]byte, error) {
	if len(raw) == 0 {
		return nil, invalid("MultipleStringValue", raw, ErrEmpty)
	}
	var out [][]byte
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ' ' {
			if i > start {
				out = append(out, raw[start:i])
			}
			start = i + 1
		}
	}
	return out, nil
}

func parseMultipleTokens(raw []byte, datatype string, singleChar bool) ([]byte, error) {
	if len(raw) == 0 {
		return nil, invalid(datatype, raw, ErrEmpty)
	}
	out := make([]byte, 0, len(raw))
	for _, tok := range splitSpaces(raw) {
		if singleChar && len(tok) != 1 {
			return nil, invalid(datatype, raw, ErrBadFormat)
		}
		out = append(out, tok...)
	}
	return out, nil
}

func splitSpaces(raw []byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ' ' {
			if i > start {
				out = append(out, raw[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// FormatMultipleStringValue joins tokens with single spaces.
func FormatMultipleStringValue(tokens [][]byte) []byte {
	out := make([]byte, 0, len(tokens)*8)
	for i, tok := range tokens {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, tok...)
	}
	return out
}

// Data returns the raw bytes of a `data`-typed field of the given declared
// length, honoring any embedded SOH bytes (spec.md §4.3: "Callers must
// honor that declared length to cross SOH bytes safely").
func Data(raw []byte, declaredLength int) ([]byte, error) {
	if declaredLength < 0 || declaredLength > len(raw) {
		return nil, invalid("data", raw, fmt.Errorf("declared length %d exceeds available %d bytes", declaredLength, len(raw)))
	}
	return raw[:declaredLength], nil
}

// timestamp layouts per FIX datatypes §3, widest (nanosecond) fractional
// part first so parsing tries the most specific layout first.
var utcTimestampLayouts = []string{
	"20060102-15:04:05.000000000",
	"20060102-15:04:05.000000",
	"20060102-15:04:05.000",
	"20060102-15:04:05",
}

// ParseUTCTimestamp parses the UTCTimestamp datatype:
// YYYYMMDD-HH:MM:SS[.sss|.ssssss|.sssssssss].
func ParseUTCTimestamp(raw []byte) (time.Time, error) {
	s := string(raw)
	var lastErr error
	for _, layout := range utcTimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, invalid("UTCTimestamp", raw, fmt.Errorf("%w: %v", ErrBadFormat, lastErr))
}

// TimestampPrecision selects the fractional-second width FormatUTCTimestamp
// emits (spec.md §6 "timestamp_precision" configuration option).
type TimestampPrecision int

const (
	PrecisionSeconds TimestampPrecision = iota
	PrecisionMillis
	PrecisionMicros
	PrecisionNanos
)

// FormatUTCTimestamp formats t as a UTCTimestamp at the given precision.
func FormatUTCTimestamp(t time.Time, precision TimestampPrecision) []byte {
	t = t.UTC()
	switch precision {
	case PrecisionMillis:
		return []byte(t.Format("20060102-15:04:05.000"))
	case PrecisionMicros:
		return []byte(t.Format("20060102-15:04:05.000000"))
	case PrecisionNanos:
		return []byte(t.Format("20060102-15:04:05.000000000"))
	default:
		return []byte(t.Format("20060102-15:04:05"))
	}
}

// ParseUTCTimeOnly parses the UTCTimeOnly datatype: HH:MM:SS[.sss...].
func ParseUTCTimeOnly(raw []byte) (time.Time, error) {
	s := string(raw)
	layouts := []string{"15:04:05.000000000", "15:04:05.000000", "15:04:05.000", "15:04:05"}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, invalid("UTCTimeOnly", raw, fmt.Errorf("%w: %v", ErrBadFormat, lastErr))
}

// ParseUTCDateOnly parses the UTCDateOnly / LocalMktDate datatype: YYYYMMDD.
func ParseUTCDateOnly(raw []byte) (time.Time, error) {
	t, err := time.ParseInLocation("20060102", string(raw), time.UTC)
	if err != nil {
		return time.Time{}, invalid("UTCDateOnly", raw, fmt.Errorf("%w: %v", ErrBadFormat, err))
	}
	return t, nil
}

// FormatUTCDateOnly formats t as YYYYMMDD.
func FormatUTCDateOnly(t time.Time) []byte {
	return []byte(t.UTC().Format("20060102"))
}

// MonthYear holds a parsed MonthYear value, which may additionally carry a
// day or a week-of-month designator per the FIX datatypes spec.
type MonthYear struct {
	Year  int
	Month int
	Day   int // 0 if absent
	Week  int // 0 if absent, else 1-5
}

// ParseMonthYear parses YYYYMM, YYYYMMDD, or YYYYMMWW (week 1-5) forms.
func ParseMonthYear(raw []byte) (MonthYear, error) {
	s := string(raw)
	if len(s) != 6 && len(s) != 8 {
		return MonthYear{}, invalid("MonthYear", raw, ErrBadFormat)
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return MonthYear{}, invalid("MonthYear", raw, ErrBadFormat)
	}
	month, err := strconv.Atoi(s[4:6])
	if err != nil || month < 1 || month > 12 {
		return MonthYear{}, invalid("MonthYear", raw, ErrBadFormat)
	}
	my := MonthYear{Year: year, Month: month}
	if len(s) == 8 {
		suffix := s[6:8]
		if suffix[0] == 'w' || suffix[0] == 'W' {
			week, err := strconv.Atoi(suffix[1:2])
			if err != nil || week < 1 || week > 5 {
				return MonthYear{}, invalid("MonthYear", raw, ErrBadFormat)
			}
			my.Week = week
		} else {
			day, err := strconv.Atoi(suffix)
			if err != nil || day < 1 || day > 31 {
				return MonthYear{}, invalid("MonthYear", raw, ErrBadFormat)
			}
			my.Day = day
		}
	}
	return my, nil
}

// splitTZSuffix splits off the optional 'Z' or ±hh[:mm] suffix TZTimestamp
// and TZTimeOnly allow.
func splitTZSuffix(raw []byte) (body []byte, offsetSuffix string) {
	if len(raw) == 0 {
		return raw, ""
	}
	if raw[len(raw)-1] == 'Z' {
		return raw[:len(raw)-1], "Z"
	}
	// look for a +hh[:mm] or -hh[:mm] suffix of length 3 or 6, but not the
	// leading sign of the whole value (there is none for time/timestamp).
	for _, width := range []int{6, 3} {
		if len(raw) > width {
			idx := len(raw) - width
			if raw[idx] == '+' || raw[idx] == '-' {
				return raw[:idx], string(raw[idx:])
			}
		}
	}
	return raw, ""
}

// ParseTZTimeOnly parses the TZTimeOnly datatype: HH:MM[:SS][.sss...][Z|±hh[:mm]].
func ParseTZTimeOnly(raw []byte) (time.Time, *time.Location, error) {
	body, suffix := splitTZSuffix(raw)
	t, err := ParseUTCTimeOnly(body)
	if err != nil {
		// TZTimeOnly permits omitting seconds; UTCTimeOnly does not, so
		// retry with that shorter layout before giving up.
		t2, err2 := time.ParseInLocation("15:04", string(body), time.UTC)
		if err2 != nil {
			return time.Time{}, nil, invalid("TZTimeOnly", raw, ErrBadFormat)
		}
		t = t2
		err = nil
	}
	loc, err := parseTZOffset(suffix)
	if err != nil {
		return time.Time{}, nil, invalid("TZTimeOnly", raw, err)
	}
	return t, loc, nil
}

func parseTZOffset(suffix string) (*time.Location, error) {
	switch {
	case suffix == "":
		return time.UTC, nil
	case suffix == "Z":
		return time.UTC, nil
	case len(suffix) == 3: // ±hh
		sign := 1
		if suffix[0] == '-' {
			sign = -1
		}
		h, err := strconv.Atoi(suffix[1:3])
		if err != nil {
			return nil, ErrBadFormat
		}
		return time.FixedZone(suffix, sign*h*3600), nil
	case len(suffix) == 6: // ±hh:mm
		sign := 1
		if suffix[0] == '-' {
			sign = -1
		}
		h, err1 := strconv.Atoi(suffix[1:3])
		m, err2 := strconv.Atoi(suffix[4:6])
		if err1 != nil || err2 != nil {
			return nil, ErrBadFormat
		}
		return time.FixedZone(suffix, sign*(h*3600+m*60)), nil
	default:
		return nil, ErrBadFormat
	}
}

// ParseTZTimestamp parses the TZTimestamp datatype: a UTCTimestamp body
// followed by the optional 'Z' or ±hh[:mm] offset suffix.
func ParseTZTimestamp(raw []byte) (time.Time, *time.Location, error) {
	body, suffix := splitTZSuffix(raw)
	t, err := ParseUTCTimestamp(body)
	if err != nil {
		return time.Time{}, nil, invalid("TZTimestamp", raw, err)
	}
	loc, err := parseTZOffset(suffix)
	if err != nil {
		return time.Time{}, nil, invalid("TZTimestamp", raw, err)
	}
	return t, loc, nil
}

// FormatTZTimestamp formats t's wall-clock fields (as ParseTZTimestamp
// leaves them, unconverted) at the given precision, appending loc's fixed
// offset as the 'Z' or ±hh:mm suffix (UTC formats as 'Z').
func FormatTZTimestamp(t time.Time, loc *time.Location, precision TimestampPrecision) []byte {
	body := FormatUTCTimestamp(t, precision)
	_, offset := time.Date(2000, 1, 1, 0, 0, 0, 0, loc).Zone()
	if offset == 0 {
		return append(body, 'Z')
	}
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	h := offset / 3600
	m := (offset % 3600) / 60
	return append(body, []byte(fmt.Sprintf("%c%02d:%02d", sign, h, m))...)
}
