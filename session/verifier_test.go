package session_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/fixwire/fixengine/dictionary"
	"github.com/fixwire/fixengine/session"
	"github.com/fixwire/fixengine/tagvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadMiniDict(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	fsys := os.DirFS("../dictionary/testdata/fix44mini")
	d, err := dictionary.Load(fsys, "FIX.4.4")
	require.NoError(t, err)
	return d
}

func frameFromBody(body string) []byte {
	head := "8=FIX.4.4\x019=" + fmt.Sprintf("%d", len(body)) + "\x01"
	withoutChecksum := head + body
	sum := 0
	for _, c := range []byte(withoutChecksum) {
		sum += int(c)
	}
	sum %= 256
	return []byte(withoutChecksum + fmt.Sprintf("10=%03d\x01", sum))
}

func decodeLogon(t *testing.T, sendingTime string) *tagvalue.MessageView {
	t.Helper()
	d := loadMiniDict(t)
	dec := tagvalue.NewDecoder(d, tagvalue.DefaultConfig())
	body := "35=A\x0134=1\x0149=COUNTERPARTY\x0156=ME\x0152=" + sendingTime + "\x0198=0\x01108=30\x01"
	msg, err := dec.Decode(frameFromBody(body))
	require.NoError(t, err)
	return msg
}

func TestIdentityVerifier_Accepts(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	msg := decodeLogon(t, now.Add(-2*time.Second).Format("20060102-15:04:05"))

	v := session.NewIdentityVerifier("ME", "COUNTERPARTY", 30*time.Second, dictionary.Version{})
	v.Clock = func() time.Time { return now }

	decision, err := v.Verify(msg)
	require.NoError(t, err)
	assert.Equal(t, session.Accept, decision)
}

func TestIdentityVerifier_RejectsCompIDMismatch(t *testing.T) {
	msg := decodeLogon(t, "20260801-12:00:00")
	v := session.NewIdentityVerifier("SOMEONE_ELSE", "COUNTERPARTY", 0, dictionary.Version{})

	decision, err := v.Verify(msg)
	require.Error(t, err)
	assert.Equal(t, session.Reject, decision)

	var sessErr *session.Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, session.CompIDMismatch, sessErr.Kind)
}

func TestIdentityVerifier_RejectsStaleClock(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	msg := decodeLogon(t, now.Add(-5*time.Minute).Format("20060102-15:04:05"))

	v := session.NewIdentityVerifier("ME", "COUNTERPARTY", 30*time.Second, dictionary.Version{})
	v.Clock = func() time.Time { return now }

	decision, err := v.Verify(msg)
	require.Error(t, err)
	assert.Equal(t, session.Reject, decision)

	var sessErr *session.Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, session.SendingTimeAccuracyProblem, sessErr.Kind)
}

func TestIdentityVerifier_RejectsBelowMinVersion(t *testing.T) {
	msg := decodeLogon(t, "20260801-12:00:00")
	// the mini dictionary's frames declare FIX.4.4, so requiring FIX.5.0
	// forces the version gate to reject.
	min := dictionary.MustParseBeginString("FIX.5.0")

	v := session.NewIdentityVerifier("ME", "COUNTERPARTY", 0, min)
	decision, err := v.Verify(msg)
	require.Error(t, err)
	assert.Equal(t, session.Reject, decision)

	var sessErr *session.Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, session.LogonRejected, sessErr.Kind)
}
