package fast

import (
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
)

// FieldType is a FAST wire type (spec.md §4.7 "Primitive codec").
type FieldType int

const (
	TypeU32 FieldType = iota
	TypeI32
	TypeU64
	TypeI64
	TypeDecimal
	TypeASCIIString
	TypeUnicodeString
	TypeByteVector
)

// Operator is a FAST field operator (spec.md §4.7 "Operators" table).
type Operator int

const (
	OpNone Operator = iota
	OpConstant
	OpDefault
	OpCopy
	OpIncrement
	OpDelta
	OpTail
)

// Presence marks whether a field may be absent.
type Presence int

const (
	Mandatory Presence = iota
	Optional
)

// FieldInstruction is one field of a Template.
type FieldInstruction struct {
	Name     string
	Type     FieldType
	Presence Presence
	Operator Operator
	Constant string
	Default  string
}

// Template is a named sequence of field instructions, loaded from XML.
type Template struct {
	ID           uint32
	Name         string
	Instructions []FieldInstruction
}

// TemplateSet indexes a collection of loaded templates by id and name,
// grounded on canboat.CanboatSchema/LoadCANBoatSchema's "load a schema
// document, index its records" shape, carried here from JSON to FAST's
// XML template documents.
type TemplateSet struct {
	byID   map[uint32]*Template
	byName map[string]*Template
}

// ByID looks up a template by its wire identifier.
func (s *TemplateSet) ByID(id uint32) (*Template, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// ByName looks up a template by its declared name.
func (s *TemplateSet) ByName(name string) (*Template, bool) {
	t, ok := s.byName[name]
	return t, ok
}

type xmlTemplates struct {
	XMLName  xml.Name      `xml:"templates"`
	Template []xmlTemplate `xml:"template"`
}

type xmlTemplate struct {
	ID    uint32     `xml:"id,attr"`
	Name  string     `xml:"name,attr"`
	Field []xmlField `xml:"field"`
}

type xmlField struct {
	Name     string `xml:"name,attr"`
	Type     string `xml:"type,attr"`
	Presence string `xml:"presence,attr"`
	Operator string `xml:"operator,attr"`
	Value    string `xml:"value,attr"`
	Default  string `xml:"default,attr"`
}

// LoadTemplateSet parses a FAST template XML document.
func LoadTemplateSet(r io.Reader) (*TemplateSet, error) {
	var raw xmlTemplates
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fast: failed to parse template document: %w", err)
	}
	set := &TemplateSet{byID: map[uint32]*Template{}, byName: map[string]*Template{}}
	for _, xt := range raw.Template {
		tmpl := &Template{ID: xt.ID, Name: xt.Name}
		for _, xf := range xt.Field {
			ins, err := resolveInstruction(xf)
			if err != nil {
				return nil, fmt.Errorf("fast: template %s field %s: %w", xt.Name, xf.Name, err)
			}
			tmpl.Instructions = append(tmpl.Instructions, ins)
		}
		set.byID[tmpl.ID] = tmpl
		set.byName[tmpl.Name] = tmpl
	}
	return set, nil
}

// LoadTemplateFile loads and parses a template document from filesystem.
func LoadTemplateFile(filesystem fs.FS, name string) (*TemplateSet, error) {
	f, err := filesystem.Open(name)
	if err != nil {
		return nil, fmt.Errorf("fast: failed to open template file %s: %w", name, err)
	}
	defer f.Close()
	return LoadTemplateSet(f)
}

func resolveInstruction(xf xmlField) (FieldInstruction, error) {
	typ, err := parseFieldType(xf.Type)
	if err != nil {
		return FieldInstruction{}, err
	}
	presence := Mandatory
	if xf.Presence == "optional" {
		presence = Optional
	}
	op, err := parseOperator(xf.Operator)
	if err != nil {
		return FieldInstruction{}, err
	}
	return FieldInstruction{
		Name:     xf.Name,
		Type:     typ,
		Presence: presence,
		Operator: op,
		Constant: xf.Value,
		Default:  xf.Default,
	}, nil
}

func parseFieldType(s string) (FieldType, error) {
	switch s {
	case "", "u32":
		return TypeU32, nil
	case "i32":
		return TypeI32, nil
	case "u64":
		return TypeU64, nil
	case "i64":
		return TypeI64, nil
	case "decimal":
		return TypeDecimal, nil
	case "string", "ascii":
		return TypeASCIIString, nil
	case "unicode":
		return TypeUnicodeString, nil
	case "bytevector":
		return TypeByteVector, nil
	default:
		return 0, fmt.Errorf("unknown field type %q", s)
	}
}

func parseOperator(s string) (Operator, error) {
	switch s {
	case "", "none":
		return OpNone, nil
	case "constant":
		return OpConstant, nil
	case "default":
		return OpDefault, nil
	case "copy":
		return OpCopy, nil
	case "increment":
		return OpIncrement, nil
	case "delta":
		return OpDelta, nil
	case "tail":
		return OpTail, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}
