package tagvalue

import "github.com/fixwire/fixengine/fixvalue"

// Config mirrors the options table a caller hands the frame scanner and
// decoder, the same way the teacher hands a DecoderConfig to
// canboat.NewDecoderWithConfig rather than parsing a config file.
type Config struct {
	// StrictUnknownTags rejects a tag that does not resolve to a known
	// field in the active dictionary. Defaults to true.
	StrictUnknownTags bool
	// StrictUnknownTagsInGroups applies the same check inside a group
	// entry, independently of StrictUnknownTags.
	StrictUnknownTagsInGroups bool
	// ValidateChecksum makes the frame scanner compute and compare the
	// CheckSum trailer. When false, the frame's declared checksum is
	// trusted.
	ValidateChecksum bool
	// ValidateBodyLength makes the frame scanner verify BodyLength
	// points exactly at the CheckSum field.
	ValidateBodyLength bool
	// MaxFrameBytes caps the size of a single frame the scanner will
	// accept, zero means unbounded.
	MaxFrameBytes int
	// MaxGroupEntries caps the NumInGroup count the decoder will honor,
	// zero means unbounded.
	MaxGroupEntries int
	// MaxGroupDepth caps nested-group recursion depth, zero means
	// unbounded. Guards against adversarial payloads exhausting the
	// stack per spec's "bounded iterative scheme" note.
	MaxGroupDepth int
	// TimestampPrecision controls the fractional-second width the
	// encoder writes for outbound timestamps.
	TimestampPrecision fixvalue.TimestampPrecision
}

// DefaultConfig returns the conservative defaults: strict unknown-tag
// rejection everywhere, full checksum/body-length validation, no size
// caps, second-precision timestamps.
func DefaultConfig() Config {
	return Config{
		StrictUnknownTags:         true,
		StrictUnknownTagsInGroups: true,
		ValidateChecksum:          true,
		ValidateBodyLength:        true,
		TimestampPrecision:        fixvalue.PrecisionSeconds,
	}
}
