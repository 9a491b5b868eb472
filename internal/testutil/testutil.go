// Package testutil holds small fixture-loading and clock helpers shared by
// this module's package tests, mirroring the teacher's test/helper.go
// (UTCTime) and test/rawmessage.go (LoadJSON) utilities.
package testutil

import (
	"os"
	"testing"
	"time"
)

// UTCTime builds a deterministic UTC time.Time from a unix timestamp, so
// tests do not depend on the machine's local timezone.
func UTCTime(sec int64) time.Time {
	return time.Unix(sec, 0).In(time.UTC)
}

// ReadFixture reads a file under testdata, failing the test on error.
func ReadFixture(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("testutil: failed to read fixture %s: %v", path, err)
	}
	return b
}
