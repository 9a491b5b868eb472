package dictionary

import "encoding/xml"

// The structs in this file mirror the on-disk shape of the FIX 2010
// repository distribution's six XML files (spec.md §4.1, §6). They are the
// loader's first-pass decode target; loader.go resolves them into the
// public schema.go types.

type xmlDatatypes struct {
	XMLName   xml.Name      `xml:"Datatypes"`
	Datatypes []xmlDatatype `xml:"Datatype"`
}

type xmlDatatype struct {
	Name        string `xml:"Name,attr"`
	BaseType    string `xml:"BaseType,attr"`
	Description string `xml:"Description"`
}

type xmlFields struct {
	XMLName xml.Name  `xml:"Fields"`
	Fields  []xmlField `xml:"Field"`
}

type xmlField struct {
	Tag                uint32 `xml:"Tag,attr"`
	Name               string `xml:"Name,attr"`
	Type               string `xml:"Type,attr"`
	AssociatedDataTag  uint32 `xml:"AssociatedDataTag,attr"`
}

type xmlEnums struct {
	XMLName    xml.Name      `xml:"Enums"`
	FieldEnums []xmlFieldEnum `xml:"FieldEnum"`
}

type xmlFieldEnum struct {
	Tag   uint32    `xml:"Tag,attr"`
	Enums []xmlEnum `xml:"Enum"`
}

type xmlEnum struct {
	Value        string `xml:"Value,attr"`
	SymbolicName string `xml:"SymbolicName,attr"`
	SortOrder    int    `xml:"SortOrder,attr"`
	Description  string `xml:"Description,attr"`
}

type xmlComponents struct {
	XMLName    xml.Name       `xml:"Components"`
	Components []xmlComponent `xml:"Component"`
}

type xmlComponent struct {
	ComponentID   uint32 `xml:"ComponentID,attr"`
	ComponentType string `xml:"ComponentType,attr"` // "Block" or "BlockRepeating"
	Name          string `xml:"Name,attr"`
}

type xmlMessages struct {
	XMLName  xml.Name     `xml:"Messages"`
	Messages []xmlMessage `xml:"Message"`
}

type xmlMessage struct {
	ComponentID uint32 `xml:"ComponentID,attr"` // synthetic id, joins into MsgContents
	MsgType     string `xml:"MsgType,attr"`
	Name        string `xml:"Name,attr"`
	CategoryID  string `xml:"CategoryID,attr"`
	SectionID   string `xml:"SectionID,attr"`
}

type xmlMsgContents struct {
	XMLName  xml.Name        `xml:"MsgContents"`
	Contents []xmlMsgContent `xml:"MsgContent"`
}

// xmlMsgContent is one row of the join table binding a Message or
// Component (by ComponentID) to one of its ordered members. TagText is
// either a numeric field tag or a component Name, disambiguated by
// whether it parses as a number (spec.md §4.1: "each message and
// component binds its member specifications by tag or component id").
type xmlMsgContent struct {
	ComponentID uint32 `xml:"ComponentID,attr"`
	TagText     string `xml:"TagText,attr"`
	Indent      int    `xml:"Indent,attr"`
	Position    int    `xml:"Position,attr"`
	Required    string `xml:"Required,attr"` // "Y" or "N"
}
