package dictionary

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Dictionary is a version-parameterized, queryable schema for one FIX
// protocol revision. It is immutable after Load returns and safe to share
// by reference across any number of decoders/encoders (spec.md §5).
type Dictionary struct {
	version Version

	datatypes    map[string]*DatatypeDef
	fields       map[uint32]*FieldDef
	fieldsByName map[string]*FieldDef
	components   map[uint32]*ComponentDef
	messages     map[string]*MessageDef
}

// Version reports the FIX protocol revision this Dictionary was loaded for.
func (d *Dictionary) Version() Version { return d.version }

// FieldByTag looks up a field by its wire tag. O(1) average.
func (d *Dictionary) FieldByTag(tag uint32) (*FieldDef, bool) {
	f, ok := d.fields[tag]
	return f, ok
}

// FieldByName looks up a field by its symbolic name. O(1) average.
func (d *Dictionary) FieldByName(name string) (*FieldDef, bool) {
	f, ok := d.fieldsByName[name]
	return f, ok
}

// MessageByMsgType looks up a message definition by its MsgType token.
// O(1) average.
func (d *Dictionary) MessageByMsgType(msgType []byte) (*MessageDef, bool) {
	m, ok := d.messages[string(msgType)]
	return m, ok
}

// ComponentByID looks up a component definition by its synthetic id.
// O(1) average.
func (d *Dictionary) ComponentByID(id uint32) (*ComponentDef, bool) {
	c, ok := d.components[id]
	return c, ok
}

// DatatypeByName looks up a datatype definition by name. O(1) average.
func (d *Dictionary) DatatypeByName(name string) (*DatatypeDef, bool) {
	t, ok := d.datatypes[name]
	return t, ok
}

// Fields returns every field definition, sorted by tag.
func (d *Dictionary) Fields() []*FieldDef {
	out := make([]*FieldDef, 0, len(d.fields))
	for _, f := range d.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Messages returns every message definition, sorted by MsgType.
func (d *Dictionary) Messages() []*MessageDef {
	out := make([]*MessageDef, 0, len(d.messages))
	for _, m := range d.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MsgType < out[j].MsgType })
	return out
}

// EnumsFor returns the enum set for a field tag, or nil if the field has
// none or is unknown.
func (d *Dictionary) EnumsFor(tag uint32) []EnumDef {
	f, ok := d.fields[tag]
	if !ok {
		return nil
	}
	return f.Enums
}

// Fingerprint hashes the set of loaded tags, msg types and component ids
// into a single value so two processes can cheaply confirm they loaded the
// same repository revision, without comparing the whole schema.
func (d *Dictionary) Fingerprint() uint64 {
	tags := make([]uint32, 0, len(d.fields))
	for tag := range d.fields {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	msgTypes := make([]string, 0, len(d.messages))
	for mt := range d.messages {
		msgTypes = append(msgTypes, mt)
	}
	sort.Strings(msgTypes)

	compIDs := make([]uint32, 0, len(d.components))
	for id := range d.components {
		compIDs = append(compIDs, id)
	}
	sort.Slice(compIDs, func(i, j int) bool { return compIDs[i] < compIDs[j] })

	h := xxhash.New()
	var buf [4]byte
	putU32 := func(v uint32) {
		buf[0] = byte(v)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v >> 16)
		buf[3] = byte(v >> 24)
		h.Write(buf[:])
	}
	for _, tag := range tags {
		putU32(tag)
	}
	for _, mt := range msgTypes {
		h.Write([]byte(mt))
	}
	for _, id := range compIDs {
		putU32(id)
	}
	return h.Sum64()
}

// Validator is the documented extension point for a dictionary-driven
// semantic validator (spec.md §9 open question: "an unresolved plan for an
// 'advanced' semantic validator driven by dictionary enum tables"). No
// built-in implementation is provided; a caller may implement Validator to
// plug one in against tagvalue.MessageView.
type Validator interface {
	// ValidateEnum is called once per decoded field whose FieldDef has a
	// non-empty Enums set; implementations return a non-nil error to
	// reject the value.
	ValidateEnum(field *FieldDef, raw []byte) error
}
