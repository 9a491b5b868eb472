package dictionary

import "fmt"

// Base is the underlying primitive a Datatype is built from.
type Base string

const (
	BaseInt    Base = "int"
	BaseFloat  Base = "float"
	BaseChar   Base = "char"
	BaseString Base = "String"
	BaseData   Base = "data"
	BaseOther  Base = "other"
)

// DatatypeDef describes one FIX primitive datatype and how its raw bytes
// are parsed/formatted. Immutable after loading.
type DatatypeDef struct {
	Name        string
	Base        Base
	Description string
}

// EnumDef is one permitted literal value of a field.
type EnumDef struct {
	Tag         uint32
	Value       []byte
	SymbolicName string
	SortKey     int
	Description string
}

// FieldDef is a single FIX field: its wire tag, name, datatype and the
// enum set (if any) that constrains its values.
type FieldDef struct {
	Tag      uint32
	Name     string
	Datatype string // DatatypeDef.Name

	Enums []EnumDef

	// AssociatedDataTag is non-zero when this field is a `Length`-typed
	// field that declares the byte length of the data-typed field with
	// this tag (spec.md §3, §4.3, §4.5).
	AssociatedDataTag uint32

	// IsNumInGroup marks this field as a repeating-group counter; such a
	// field is always immediately followed, in any message/component body
	// it appears in, by the group's entry template.
	IsNumInGroup bool
}

// MemberKind distinguishes the two kinds of ordered member a Component or
// Message body can hold.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberComponent
	MemberGroup
)

// Member is one entry of a Component's or Message's ordered member list.
type Member struct {
	Kind     MemberKind
	Required bool

	// Populated when Kind == MemberField or MemberGroup (a group's own
	// NumInGroup counter field).
	FieldTag uint32

	// Populated when Kind == MemberComponent.
	ComponentID uint32

	// Populated when Kind == MemberGroup: the ordered entry template the
	// group's repeated entries follow, and the delimiter tag (the first
	// field tag of the entry template) that marks the start of each new
	// entry on the wire.
	EntryTemplate []Member
	DelimiterTag  uint32
}

// ComponentDef is a named, ordered, reusable list of member specifications.
// Components have no wire identity of their own.
type ComponentDef struct {
	ID      uint32
	Name    string
	Members []Member
}

// MessageDef is one FIX message: its MsgType token, its category/section,
// and its body member list (the standard header/trailer are implicit and
// not part of Members).
type MessageDef struct {
	MsgType  string
	Name     string
	Category string
	Section  string
	Members  []Member
}

func (m *MessageDef) String() string {
	return fmt.Sprintf("%s(%s)", m.Name, m.MsgType)
}

// resolveGroupDelimiter finds the first field tag in a group's entry
// template, per spec.md §3 ("A first field in the entry template is the
// delimiter"). Returns 0 if the template is empty or starts with a nested
// component/group (a malformed repository shape the loader rejects).
func resolveGroupDelimiter(entryTemplate []Member) (uint32, error) {
	if len(entryTemplate) == 0 {
		return 0, fmt.Errorf("group entry template is empty")
	}
	first := entryTemplate[0]
	if first.Kind != MemberField {
		return 0, fmt.Errorf("group entry template must start with a field member, a delimiter")
	}
	return first.FieldTag, nil
}
