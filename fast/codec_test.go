package fast_test

import (
	"strings"
	"testing"

	"github.com/fixwire/fixengine/fast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const copyTemplateXML = `<templates>
  <template id="1" name="Quote">
    <field name="SeqNum" type="u32" presence="mandatory" operator="copy"/>
  </template>
</templates>`

func loadTemplateSet(t *testing.T, doc string, name string) (*fast.TemplateSet, *fast.Template) {
	t.Helper()
	set, err := fast.LoadTemplateSet(strings.NewReader(doc))
	require.NoError(t, err)
	tmpl, ok := set.ByName(name)
	require.True(t, ok)
	return set, tmpl
}

// TestCodec_CopyOperator reproduces the copy-operator trace: encoding
// [42, 42, 43] against a single mandatory u32 copy field must produce a
// present/absent/present presence-map sequence with the value only
// appearing on the messages where it's new, and decoding must reproduce
// the original sequence.
func TestCodec_CopyOperator(t *testing.T) {
	set, tmpl := loadTemplateSet(t, copyTemplateXML, "Quote")
	enc := fast.NewCodec(set)
	dec := fast.NewCodec(set)

	seq := []uint64{42, 42, 43}
	var wire [][]byte
	for _, v := range seq {
		msg, err := enc.EncodeMessage(tmpl, map[string]fast.Value{
			"SeqNum": {Type: fast.TypeU32, U: v},
		})
		require.NoError(t, err)
		wire = append(wire, msg)
	}

	// first and third messages carry an explicit value (pmap bit 1), the
	// second repeats the copied prior value and carries none (pmap bit 0).
	assert.NotEqual(t, wire[0], wire[1])
	assert.Len(t, wire[1], 2, "unchanged copy field costs only the template id and presence-map bytes")

	for i, frame := range wire {
		gotTmpl, out, n, err := dec.DecodeMessage(frame)
		require.NoError(t, err)
		assert.Equal(t, tmpl.ID, gotTmpl.ID)
		assert.Equal(t, len(frame), n)
		assert.Equal(t, seq[i], out["SeqNum"].U)
	}
}

const roundTripTemplateXML = `<templates>
  <template id="7" name="Everything">
    <field name="A" type="u32" presence="mandatory" operator="none"/>
    <field name="B" type="i32" presence="optional" operator="default" default="5"/>
    <field name="C" type="string" presence="mandatory" operator="copy"/>
    <field name="D" type="u32" presence="mandatory" operator="increment"/>
    <field name="E" type="i64" presence="mandatory" operator="delta"/>
    <field name="F" type="decimal" presence="optional" operator="none"/>
  </template>
</templates>`

func TestCodec_RoundTrip(t *testing.T) {
	set, tmpl := loadTemplateSet(t, roundTripTemplateXML, "Everything")
	enc := fast.NewCodec(set)
	dec := fast.NewCodec(set)

	messages := []map[string]fast.Value{
		{
			"A": {Type: fast.TypeU32, U: 100},
			"B": {Type: fast.TypeI32, I: 5},
			"C": {Type: fast.TypeASCIIString, Bytes: []byte("AAPL")},
			"D": {Type: fast.TypeU32, U: 1},
			"E": {Type: fast.TypeI64, I: 1000},
			"F": {Type: fast.TypeDecimal, DecExp: -2, DecMan: 1234},
		},
		{
			"A": {Type: fast.TypeU32, U: 101},
			"B": {Type: fast.TypeI32, Null: true},
			"C": {Type: fast.TypeASCIIString, Bytes: []byte("AAPL")},
			"D": {Type: fast.TypeU32, U: 2},
			"E": {Type: fast.TypeI64, I: 1005},
			"F": {Type: fast.TypeDecimal, Null: true},
		},
		{
			"A": {Type: fast.TypeU32, U: 102},
			"B": {Type: fast.TypeI32, I: 9},
			"C": {Type: fast.TypeASCIIString, Bytes: []byte("MSFT")},
			"D": {Type: fast.TypeU32, U: 3},
			"E": {Type: fast.TypeI64, I: 990},
			"F": {Type: fast.TypeDecimal, DecExp: -1, DecMan: 7},
		},
	}

	for _, values := range messages {
		wire, err := enc.EncodeMessage(tmpl, values)
		require.NoError(t, err)
		gotTmpl, out, n, err := dec.DecodeMessage(wire)
		require.NoError(t, err)
		assert.Equal(t, tmpl.ID, gotTmpl.ID)
		assert.Equal(t, len(wire), n)
		for field, want := range values {
			got := out[field]
			assert.Equal(t, want.Type, got.Type, field)
			assert.Equal(t, want.Null, got.Null, field)
			if want.Null {
				continue
			}
			switch want.Type {
			case fast.TypeU32, fast.TypeU64:
				assert.Equal(t, want.U, got.U, field)
			case fast.TypeI32, fast.TypeI64:
				assert.Equal(t, want.I, got.I, field)
			case fast.TypeDecimal:
				assert.Equal(t, want.DecExp, got.DecExp, field)
				assert.Equal(t, want.DecMan, got.DecMan, field)
			default:
				assert.Equal(t, want.Bytes, got.Bytes, field)
			}
		}
	}
}

// TestCodec_PresenceMapOrder asserts that presence bits are consumed
// strictly in field-instruction order, regardless of which instructions
// are optional vs mandatory-but-stateful: a constant mandatory field
// consumes no bit at all, while the constant-optional and copy fields
// each consume one, in declaration order, so the message round-trips.
const pmapOrderTemplateXML = `<templates>
  <template id="9" name="Ordered">
    <field name="First" type="u32" presence="mandatory" operator="constant" value="7"/>
    <field name="Second" type="u32" presence="optional" operator="constant" value="9"/>
    <field name="Third" type="u32" presence="mandatory" operator="copy"/>
  </template>
</templates>`

func TestCodec_PresenceMapOrder(t *testing.T) {
	set, tmpl := loadTemplateSet(t, pmapOrderTemplateXML, "Ordered")
	enc := fast.NewCodec(set)
	dec := fast.NewCodec(set)

	wire, err := enc.EncodeMessage(tmpl, map[string]fast.Value{
		"First":  {Type: fast.TypeU32, U: 7},
		"Second": {Type: fast.TypeU32, U: 9},
		"Third":  {Type: fast.TypeU32, U: 55},
	})
	require.NoError(t, err)

	_, out, n, err := dec.DecodeMessage(wire)
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)
	assert.Equal(t, uint64(7), out["First"].U)
	assert.Equal(t, uint64(9), out["Second"].U)
	assert.Equal(t, uint64(55), out["Third"].U)
}

// TestCodec_DecodeMessage_UnknownTemplateID exercises spec.md §4.7's R1
// error: a frame whose template id is not present in the Codec's
// TemplateSet must be rejected rather than silently misdecoded.
func TestCodec_DecodeMessage_UnknownTemplateID(t *testing.T) {
	set, tmpl := loadTemplateSet(t, copyTemplateXML, "Quote")
	enc := fast.NewCodec(set)

	wire, err := enc.EncodeMessage(tmpl, map[string]fast.Value{
		"SeqNum": {Type: fast.TypeU32, U: 1},
	})
	require.NoError(t, err)

	otherSet, err := fast.LoadTemplateSet(strings.NewReader(roundTripTemplateXML))
	require.NoError(t, err)
	dec := fast.NewCodec(otherSet)

	_, _, _, err = dec.DecodeMessage(wire)
	require.Error(t, err)
	var ferr *fast.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "R1", ferr.Code)
}
