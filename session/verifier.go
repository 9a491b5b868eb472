package session

import (
	"time"

	"github.com/fixwire/fixengine/dictionary"
	"github.com/fixwire/fixengine/tagvalue"
)

// Decision is a Verifier's accept/reject answer for one inbound message.
type Decision int

const (
	Accept Decision = iota
	Reject
)

// Verifier answers accept/reject for an inbound decoded message based on
// session-level checks such as CompID match and sending-time skew
// (spec.md §4.8 "Verifier"). Implementations are user-supplied; the
// engine only calls through this interface.
type Verifier interface {
	Verify(msg *tagvalue.MessageView) (Decision, error)
}

const (
	tagBeginString  = 8
	tagSenderCompID = 49
	tagTargetCompID = 56
	tagSendingTime  = 52
)

// IdentityVerifier is the conventional session-level check: the
// counterparty's SenderCompID/TargetCompID must match the configured
// identity pair, SendingTime must fall within MaxClockSkew of now, and
// (if MinVersion is set) the frame's BeginString must be at least that
// version. Grounded on addressmapper.AddressMapper.Process's "inspect one
// field, decide accept/track/ignore" shape, generalized from a NMEA
// source-address table to FIX's CompID pair.
type IdentityVerifier struct {
	OwnCompID          string
	CounterpartyCompID string
	MaxClockSkew       time.Duration
	MinVersion         dictionary.Version

	// Clock is overridable so tests can pin SendingTime comparisons to a
	// fixed instant; defaults to time.Now.
	Clock func() time.Time
}

// NewIdentityVerifier creates an IdentityVerifier for the given identity
// pair and clock-skew tolerance. A zero MinVersion disables the
// BeginString gate.
func NewIdentityVerifier(ownCompID, counterpartyCompID string, maxClockSkew time.Duration, minVersion dictionary.Version) *IdentityVerifier {
	return &IdentityVerifier{
		OwnCompID:          ownCompID,
		CounterpartyCompID: counterpartyCompID,
		MaxClockSkew:       maxClockSkew,
		MinVersion:         minVersion,
		Clock:              time.Now,
	}
}

func (v *IdentityVerifier) Verify(msg *tagvalue.MessageView) (Decision, error) {
	sender, err := msg.GetString(tagSenderCompID)
	if err != nil {
		return Reject, &Error{Kind: CompIDMismatch, Detail: "missing SenderCompID"}
	}
	target, err := msg.GetString(tagTargetCompID)
	if err != nil {
		return Reject, &Error{Kind: CompIDMismatch, Detail: "missing TargetCompID"}
	}
	if sender != v.CounterpartyCompID || target != v.OwnCompID {
		return Reject, &Error{Kind: CompIDMismatch, Detail: "SenderCompID/TargetCompID does not match configured session identity"}
	}

	if v.MinVersion.Raw != "" {
		beginString, err := msg.GetString(tagBeginString)
		if err != nil {
			return Reject, &Error{Kind: LogonRejected, Detail: "missing BeginString"}
		}
		got, err := dictionary.ParseBeginString(beginString)
		if err != nil || !got.AtLeast(v.MinVersion) {
			return Reject, &Error{Kind: LogonRejected, Detail: "BeginString below minimum supported version"}
		}
	}

	if v.MaxClockSkew > 0 {
		sendingTime, err := msg.GetUTCTimestamp(tagSendingTime)
		if err != nil {
			return Reject, &Error{Kind: SendingTimeAccuracyProblem, Detail: "missing or malformed SendingTime"}
		}
		now := v.clock()
		skew := now.Sub(sendingTime)
		if skew < 0 {
			skew = -skew
		}
		if skew > v.MaxClockSkew {
			return Reject, &Error{Kind: SendingTimeAccuracyProblem, Detail: "SendingTime outside configured clock-skew tolerance"}
		}
	}

	return Accept, nil
}

func (v *IdentityVerifier) clock() time.Time {
	if v.Clock == nil {
		return time.Now()
	}
	return v.Clock()
}
