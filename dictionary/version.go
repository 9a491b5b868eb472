package dictionary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blang/semver"
)

// Version is a comparable representation of a FIX BeginString / ApplVerID
// token (e.g. "FIX.4.2", "FIX.4.4", "FIX.5.0SP2", "FIXT.1.1"). It wraps
// semver.Version so schema-variant and session-feature gates can use plain
// version comparisons instead of string switches.
type Version struct {
	Raw    string
	Semver semver.Version
	// ServicePack is the "SPn" suffix on FIX 5.0+ BeginStrings, 0 if absent.
	ServicePack uint64
	// Transport reports whether this is the FIXT.1.1 session-transport
	// BeginString rather than an application-version BeginString.
	Transport bool
}

// ParseBeginString parses a wire BeginString token into a Version.
//
// Accepted forms: "FIX.4.0", "FIX.4.2", "FIX.4.4", "FIX.5.0",
// "FIX.5.0SP1", "FIX.5.0SP2", "FIXT.1.1".
func ParseBeginString(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	transport := false
	rest := ""
	switch {
	case strings.HasPrefix(s, "FIXT."):
		transport = true
		rest = strings.TrimPrefix(s, "FIXT.")
	case strings.HasPrefix(s, "FIX."):
		rest = strings.TrimPrefix(s, "FIX.")
	default:
		return Version{}, fmt.Errorf("invalid BeginString %q: missing FIX./FIXT. prefix", raw)
	}

	spIdx := strings.Index(rest, "SP")
	var sp uint64
	if spIdx >= 0 {
		n, err := strconv.ParseUint(rest[spIdx+2:], 10, 8)
		if err != nil {
			return Version{}, fmt.Errorf("invalid BeginString %q: bad service pack suffix: %w", raw, err)
		}
		sp = n
		rest = rest[:spIdx]
	}

	parts := strings.Split(rest, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid BeginString %q: expected MAJOR.MINOR", raw)
	}
	major, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("invalid BeginString %q: bad major: %w", raw, err)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("invalid BeginString %q: bad minor: %w", raw, err)
	}

	return Version{
		Raw: s,
		Semver: semver.Version{
			Major: major,
			Minor: minor,
			Patch: sp,
		},
		ServicePack: sp,
		Transport:   transport,
	}, nil
}

// AtLeast reports whether v is the same transport-ness as other and is
// greater than or equal to other under semantic-version ordering
// (Major.Minor.ServicePack).
func (v Version) AtLeast(other Version) bool {
	if v.Transport != other.Transport {
		return false
	}
	return v.Semver.GE(other.Semver)
}

func (v Version) String() string {
	return v.Raw
}

// MustParseBeginString is ParseBeginString for compile-time-known constants
// (dictionary schema-variant tables), panicking on malformed input.
func MustParseBeginString(raw string) Version {
	v, err := ParseBeginString(raw)
	if err != nil {
		panic(err)
	}
	return v
}
