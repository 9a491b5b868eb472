package dictionary_test

import (
	"os"
	"testing"

	"github.com/fixwire/fixengine/dictionary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadMini(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	fsys := os.DirFS("testdata/fix44mini")
	d, err := dictionary.Load(fsys, "FIX.4.4")
	require.NoError(t, err)
	return d
}

func TestLoad_FieldsByTagAndName(t *testing.T) {
	d := loadMini(t)

	f, ok := d.FieldByTag(108)
	require.True(t, ok)
	assert.Equal(t, "HeartBtInt", f.Name)
	assert.Equal(t, "int", f.Datatype)

	f2, ok := d.FieldByName("HeartBtInt")
	require.True(t, ok)
	assert.Equal(t, uint32(108), f2.Tag)

	_, ok = d.FieldByTag(99999)
	assert.False(t, ok)
}

func TestLoad_MessageByMsgType_Logon(t *testing.T) {
	d := loadMini(t)

	m, ok := d.MessageByMsgType([]byte("A"))
	require.True(t, ok)
	assert.Equal(t, "Logon", m.Name)
	require.Len(t, m.Members, 2)
	assert.Equal(t, uint32(98), m.Members[0].FieldTag)
	assert.Equal(t, uint32(108), m.Members[1].FieldTag)
}

func TestLoad_NewOrderSingle_ResolvesComponentAndGroup(t *testing.T) {
	d := loadMini(t)

	m, ok := d.MessageByMsgType([]byte("D"))
	require.True(t, ok)
	require.Len(t, m.Members, 6)

	assert.Equal(t, dictionary.MemberField, m.Members[0].Kind)
	assert.Equal(t, uint32(11), m.Members[0].FieldTag)

	assert.Equal(t, dictionary.MemberComponent, m.Members[1].Kind)
	instrument, ok := d.ComponentByID(m.Members[1].ComponentID)
	require.True(t, ok)
	assert.Equal(t, "Instrument", instrument.Name)
	require.Len(t, instrument.Members, 1)
	assert.Equal(t, uint32(55), instrument.Members[0].FieldTag)

	group := m.Members[5]
	assert.Equal(t, dictionary.MemberGroup, group.Kind)
	assert.Equal(t, uint32(453), group.FieldTag)
	assert.Equal(t, uint32(448), group.DelimiterTag)
	require.Len(t, group.EntryTemplate, 3)
	assert.Equal(t, uint32(448), group.EntryTemplate[0].FieldTag)
	assert.Equal(t, uint32(447), group.EntryTemplate[1].FieldTag)
	assert.Equal(t, uint32(452), group.EntryTemplate[2].FieldTag)
}

func TestLoad_EnumsAreSortedAndAttached(t *testing.T) {
	d := loadMini(t)

	f, ok := d.FieldByTag(54)
	require.True(t, ok)
	require.Len(t, f.Enums, 2)
	assert.Equal(t, "BUY", f.Enums[0].SymbolicName)
	assert.Equal(t, "SELL", f.Enums[1].SymbolicName)

	enums := d.EnumsFor(54)
	require.Len(t, enums, 2)
}

func TestLoad_UnknownDatatypeIsDangling(t *testing.T) {
	fsys := os.DirFS("testdata/fix44mini_bad_datatype")
	_, err := dictionary.Load(fsys, "FIX.4.4")
	require.Error(t, err)
}

func TestLoad_DuplicateFieldTagIsFatal(t *testing.T) {
	fsys := os.DirFS("testdata/fix44mini_dup_field")
	_, err := dictionary.Load(fsys, "FIX.4.4")
	require.Error(t, err)
}

func TestFingerprint_StableAcrossLoads(t *testing.T) {
	d1 := loadMini(t)
	d2 := loadMini(t)
	assert.Equal(t, d1.Fingerprint(), d2.Fingerprint())
	assert.NotZero(t, d1.Fingerprint())
}

func TestLoad_FlagsFieldsOnDatatypeDerivedFromNumInGroup(t *testing.T) {
	fsys := os.DirFS("testdata/fix44mini_derived_numingroup")
	d, err := dictionary.Load(fsys, "FIX.4.4")
	require.NoError(t, err)

	f, ok := d.FieldByTag(999)
	require.True(t, ok)
	assert.True(t, f.IsNumInGroup, "field typed on a datatype whose BaseType is NumInGroup must itself be flagged")

	f2, ok := d.FieldByTag(453)
	require.True(t, ok)
	assert.True(t, f2.IsNumInGroup)
}

func TestLoad_LegacyVariantDetectsGroupsWithoutBlockRepeating(t *testing.T) {
	fsys := os.DirFS("testdata/fix40mini_legacy_groups")
	d, err := dictionary.Load(fsys, "FIX.4.0")
	require.NoError(t, err)

	m, ok := d.MessageByMsgType([]byte("D"))
	require.True(t, ok)
	require.Len(t, m.Members, 3)

	group := m.Members[2]
	assert.Equal(t, dictionary.MemberGroup, group.Kind, "a Block component whose first row is a NumInGroup field must resolve as a group under FIX.4.0's schema variant")
	assert.Equal(t, uint32(453), group.FieldTag)
	assert.Equal(t, uint32(448), group.DelimiterTag)
	require.Len(t, group.EntryTemplate, 3)
}

func TestLoad_ToleratesMissingSectionIDForOlderVariant(t *testing.T) {
	fsys := os.DirFS("testdata/fix40mini_legacy_groups")
	d, err := dictionary.Load(fsys, "FIX.4.0")
	require.NoError(t, err)

	m, ok := d.MessageByMsgType([]byte("D"))
	require.True(t, ok)
	assert.Equal(t, "", m.Section)
}

func TestLoad_RejectsMissingSectionIDForModernVariant(t *testing.T) {
	fsys := os.DirFS("testdata/fix40mini_legacy_groups")
	_, err := dictionary.Load(fsys, "FIX.4.4")
	require.Error(t, err, "FIX.4.4's schema variant does not tolerate a missing SectionID")
}

func TestDictionary_Version(t *testing.T) {
	d := loadMini(t)
	assert.Equal(t, "FIX.4.4", d.Version().String())
}
