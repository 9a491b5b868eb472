package dictionary

import (
	"context"
	"encoding/xml"
	"fmt"
	"io/fs"
	"sort"
	"strconv"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
)

const (
	fileDatatypes   = "Datatypes.xml"
	fileFields      = "Fields.xml"
	fileEnums       = "Enums.xml"
	fileComponents  = "Components.xml"
	fileMessages    = "Messages.xml"
	fileMsgContents = "MsgContents.xml"
)

// componentCacheSize bounds the loader's member-list memoization cache.
// Real-world repositories define on the order of a few hundred components;
// this comfortably holds all of them resident for the duration of a load.
const componentCacheSize = 1024

// rawRepository holds the first-pass decode of all six repository files,
// indexed by primary key (spec.md §4.1 "first pass indexes every XML
// record by its primary key").
type rawRepository struct {
	datatypes  []xmlDatatype
	fields     []xmlField
	fieldEnums []xmlFieldEnum
	components []xmlComponent
	messages   []xmlMessage
	contents   []xmlMsgContent
}

// Load parses a FIX 2010 repository directory tree (Fields.xml, Enums.xml,
// Messages.xml, Components.xml, Datatypes.xml, MsgContents.xml, all at the
// root of filesystem) into a Dictionary for the given BeginString.
//
// The six files are read and unmarshalled concurrently (one goroutine per
// file) since they are independent until the resolve pass; any failure
// aborts the whole load. All errors returned here are fatal — dictionary
// loading is an offline step (spec.md §4.1).
func Load(filesystem fs.FS, beginString string) (*Dictionary, error) {
	version, err := ParseBeginString(beginString)
	if err != nil {
		return nil, fmt.Errorf("dictionary: %w", err)
	}

	raw, err := loadRawRepository(filesystem)
	if err != nil {
		return nil, err
	}

	return resolve(raw, version)
}

func loadRawRepository(filesystem fs.FS) (*rawRepository, error) {
	raw := &rawRepository{}
	g, _ := errgroup.WithContext(context.Background())

	g.Go(func() error {
		var doc xmlDatatypes
		if err := decodeXMLFile(filesystem, fileDatatypes, &doc); err != nil {
			return err
		}
		raw.datatypes = doc.Datatypes
		return nil
	})
	g.Go(func() error {
		var doc xmlFields
		if err := decodeXMLFile(filesystem, fileFields, &doc); err != nil {
			return err
		}
		raw.fields = doc.Fields
		return nil
	})
	g.Go(func() error {
		var doc xmlEnums
		if err := decodeXMLFile(filesystem, fileEnums, &doc); err != nil {
			return err
		}
		raw.fieldEnums = doc.FieldEnums
		return nil
	})
	g.Go(func() error {
		var doc xmlComponents
		if err := decodeXMLFile(filesystem, fileComponents, &doc); err != nil {
			return err
		}
		raw.components = doc.Components
		return nil
	})
	g.Go(func() error {
		var doc xmlMessages
		if err := decodeXMLFile(filesystem, fileMessages, &doc); err != nil {
			return err
		}
		raw.messages = doc.Messages
		return nil
	})
	g.Go(func() error {
		var doc xmlMsgContents
		if err := decodeXMLFile(filesystem, fileMsgContents, &doc); err != nil {
			return err
		}
		raw.contents = doc.Contents
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeXMLFile(filesystem fs.FS, name string, v interface{}) error {
	f, err := filesystem.Open(name)
	if err != nil {
		return &LoadError{File: name, Err: err}
	}
	defer f.Close()

	if err := xml.NewDecoder(f).Decode(v); err != nil {
		return &LoadError{File: name, Err: fmt.Errorf("%w: %v", ErrMalformedXML, err)}
	}
	return nil
}

// resolver carries the pass-one indexes and pass-two working state.
type resolver struct {
	version Version

	datatypesByName map[string]*DatatypeDef
	fieldsByTag     map[uint32]*FieldDef
	fieldsByName    map[string]*FieldDef
	componentsByID  map[uint32]*xmlComponent
	componentsByName map[string]*xmlComponent
	messagesByType  map[string]*xmlMessage
	contentsByOwner map[uint32][]xmlMsgContent

	resolvedComponents map[uint32]*ComponentDef
	resolving          map[uint32]bool // cycle guard
	cache              *lru.Cache

	// datatypeBaseType holds each datatype's raw BaseType attribute,
	// keyed by datatype name. DatatypeDef.Base collapses anything outside
	// the five recognized primitives to BaseOther, which loses the literal
	// name resolveNumInGroupFlags needs to detect a datatype declared as
	// "based on NumInGroup" rather than literally named it.
	datatypeBaseType map[string]string

	variant SchemaVariant
}

func resolve(raw *rawRepository, version Version) (*Dictionary, error) {
	r := &resolver{
		version:            version,
		datatypesByName:    map[string]*DatatypeDef{},
		fieldsByTag:        map[uint32]*FieldDef{},
		fieldsByName:       map[string]*FieldDef{},
		componentsByID:     map[uint32]*xmlComponent{},
		componentsByName:   map[string]*xmlComponent{},
		messagesByType:     map[string]*xmlMessage{},
		contentsByOwner:    map[uint32][]xmlMsgContent{},
		resolvedComponents: map[uint32]*ComponentDef{},
		resolving:          map[uint32]bool{},
		datatypeBaseType:   map[string]string{},
		variant:            VariantFor(version),
	}
	cache, err := lru.New(componentCacheSize)
	if err != nil {
		return nil, fmt.Errorf("dictionary: %w", err)
	}
	r.cache = cache

	if err := r.indexDatatypes(raw.datatypes); err != nil {
		return nil, err
	}
	if err := r.indexFields(raw.fields); err != nil {
		return nil, err
	}
	if err := r.indexEnums(raw.fieldEnums); err != nil {
		return nil, err
	}
	if err := r.indexComponents(raw.components); err != nil {
		return nil, err
	}
	if err := r.indexMessages(raw.messages); err != nil {
		return nil, err
	}
	r.indexContents(raw.contents)

	if err := r.resolveNumInGroupFlags(); err != nil {
		return nil, err
	}

	messages := make(map[string]*MessageDef, len(r.messagesByType))
	for msgType, m := range r.messagesByType {
		if m.SectionID == "" && !r.variant.AllowsMissingSectionID {
			return nil, fmt.Errorf("dictionary: message %s (%s): missing SectionID, not tolerated for %s repositories", m.Name, msgType, r.version)
		}
		members, err := r.resolveMemberList(m.ComponentID)
		if err != nil {
			return nil, fmt.Errorf("dictionary: resolving message %s (%s): %w", m.Name, msgType, err)
		}
		messages[msgType] = &MessageDef{
			MsgType:  m.MsgType,
			Name:     m.Name,
			Category: m.CategoryID,
			Section:  m.SectionID,
			Members:  members,
		}
	}

	for id := range r.componentsByID {
		if _, err := r.resolveComponent(id); err != nil {
			return nil, err
		}
	}

	return &Dictionary{
		version:    version,
		datatypes:  r.datatypesByName,
		fields:     r.fieldsByTag,
		fieldsByName: r.fieldsByName,
		components: r.resolvedComponents,
		messages:   messages,
	}, nil
}

func (r *resolver) indexDatatypes(in []xmlDatatype) error {
	for i := range in {
		d := in[i]
		if _, ok := r.datatypesByName[d.Name]; ok {
			return &LoadError{File: fileDatatypes, Err: fmt.Errorf("%w: datatype %q", ErrDuplicateKey, d.Name)}
		}
		r.datatypeBaseType[d.Name] = d.BaseType
		base := Base(d.BaseType)
		switch base {
		case BaseInt, BaseFloat, BaseChar, BaseString, BaseData:
		default:
			base = BaseOther
		}
		r.datatypesByName[d.Name] = &DatatypeDef{Name: d.Name, Base: base, Description: d.Description}
	}
	return nil
}

func (r *resolver) indexFields(in []xmlField) error {
	for i := range in {
		f := in[i]
		if _, ok := r.fieldsByTag[f.Tag]; ok {
			return &LoadError{File: fileFields, Err: fmt.Errorf("%w: field tag %d", ErrDuplicateKey, f.Tag)}
		}
		if _, ok := r.datatypesByName[f.Type]; !ok {
			return &LoadError{File: fileFields, Err: fmt.Errorf("%w: field %s references unknown datatype %q", ErrDanglingReference, f.Name, f.Type)}
		}
		fd := &FieldDef{
			Tag:               f.Tag,
			Name:              f.Name,
			Datatype:          f.Type,
			AssociatedDataTag: f.AssociatedDataTag,
			IsNumInGroup:      f.Type == "NumInGroup",
		}
		r.fieldsByTag[f.Tag] = fd
		if _, ok := r.fieldsByName[f.Name]; ok {
			return &LoadError{File: fileFields, Err: fmt.Errorf("%w: field name %q", ErrDuplicateKey, f.Name)}
		}
		r.fieldsByName[f.Name] = fd
	}
	return nil
}

// resolveNumInGroupFlags catches group counters indexFields' literal
// `f.Type == "NumInGroup"` check misses: the 2010 repository schema lets a
// custom datatype declare BaseType="NumInGroup" instead of basing it on
// "int" directly (e.g. a repository-specific counter type), in which case
// a field naming that datatype is a group counter too even though its own
// Type attribute never says "NumInGroup". Walks the one-level BaseType
// chain recorded during indexDatatypes and flags any field whose datatype
// resolves to NumInGroup through it.
func (r *resolver) resolveNumInGroupFlags() error {
	derivedFromNumInGroup := map[string]bool{}
	for name, base := range r.datatypeBaseType {
		if name != "NumInGroup" && base == "NumInGroup" {
			derivedFromNumInGroup[name] = true
		}
	}
	if len(derivedFromNumInGroup) == 0 {
		return nil
	}
	for _, fd := range r.fieldsByTag {
		if !fd.IsNumInGroup && derivedFromNumInGroup[fd.Datatype] {
			fd.IsNumInGroup = true
		}
	}
	return nil
}

func (r *resolver) indexEnums(in []xmlFieldEnum) error {
	byTag := map[uint32][]EnumDef{}
	for _, fe := range in {
		if _, ok := r.fieldsByTag[fe.Tag]; !ok {
			return &LoadError{File: fileEnums, Err: fmt.Errorf("%w: enum set for unknown field tag %d", ErrDanglingReference, fe.Tag)}
		}
		for _, e := range fe.Enums {
			byTag[fe.Tag] = append(byTag[fe.Tag], EnumDef{
				Tag:          fe.Tag,
				Value:        []byte(e.Value),
				SymbolicName: e.SymbolicName,
				SortKey:      e.SortOrder,
				Description:  e.Description,
			})
		}
	}
	for tag, enums := range byTag {
		sort.Slice(enums, func(i, j int) bool { return enums[i].SortKey < enums[j].SortKey })
		r.fieldsByTag[tag].Enums = enums
	}
	return nil
}

func (r *resolver) indexComponents(in []xmlComponent) error {
	for i := range in {
		c := in[i]
		if _, ok := r.componentsByID[c.ComponentID]; ok {
			return &LoadError{File: fileComponents, Err: fmt.Errorf("%w: component id %d", ErrDuplicateKey, c.ComponentID)}
		}
		cc := c
		r.componentsByID[c.ComponentID] = &cc
		if _, ok := r.componentsByName[c.Name]; ok {
			return &LoadError{File: fileComponents, Err: fmt.Errorf("%w: component name %q", ErrDuplicateKey, c.Name)}
		}
		r.componentsByName[c.Name] = &cc
	}
	return nil
}

func (r *resolver) indexMessages(in []xmlMessage) error {
	for i := range in {
		m := in[i]
		if _, ok := r.messagesByType[m.MsgType]; ok {
			return &LoadError{File: fileMessages, Err: fmt.Errorf("%w: msg type %q", ErrDuplicateKey, m.MsgType)}
		}
		mm := m
		r.messagesByType[m.MsgType] = &mm
	}
	return nil
}

func (r *resolver) indexContents(in []xmlMsgContent) {
	for _, c := range in {
		r.contentsByOwner[c.ComponentID] = append(r.contentsByOwner[c.ComponentID], c)
	}
	for id := range r.contentsByOwner {
		rows := r.contentsByOwner[id]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
		r.contentsByOwner[id] = rows
	}
}

// resolveComponent resolves and caches the fully-built ComponentDef for a
// component id, memoizing via the LRU cache so a component referenced from
// many messages is flattened once.
func (r *resolver) resolveComponent(id uint32) (*ComponentDef, error) {
	if cd, ok := r.resolvedComponents[id]; ok {
		return cd, nil
	}
	if v, ok := r.cache.Get(id); ok {
		cd := v.(*ComponentDef)
		r.resolvedComponents[id] = cd
		return cd, nil
	}
	xc, ok := r.componentsByID[id]
	if !ok {
		return nil, &LoadError{File: fileComponents, Err: fmt.Errorf("%w: component id %d", ErrDanglingReference, id)}
	}
	members, err := r.resolveMemberList(id)
	if err != nil {
		return nil, fmt.Errorf("dictionary: resolving component %s (%d): %w", xc.Name, id, err)
	}
	cd := &ComponentDef{ID: id, Name: xc.Name, Members: members}
	r.cache.Add(id, cd)
	r.resolvedComponents[id] = cd
	return cd, nil
}

// isGroupComponent reports whether xc represents a repeating group rather
// than a plain block component. FIX.5.0/FIXT.1.1 repositories mark this
// explicitly via ComponentType="BlockRepeating" (SchemaVariant.
// RepeatingGroupsUseBlockRepeating). Earlier repositories never set that
// ComponentType at all, so for those the only signal is structural: the
// component's own first member is a NumInGroup-flagged field, the same
// delimiter convention resolveGroupDelimiter later relies on.
func (r *resolver) isGroupComponent(xc *xmlComponent) bool {
	if xc.ComponentType == "BlockRepeating" {
		return true
	}
	if r.variant.RepeatingGroupsUseBlockRepeating {
		return false
	}
	rows := r.contentsByOwner[xc.ComponentID]
	if len(rows) == 0 {
		return false
	}
	tag, err := strconv.ParseUint(rows[0].TagText, 10, 32)
	if err != nil {
		return false
	}
	fd, ok := r.fieldsByTag[uint32(tag)]
	return ok && fd.IsNumInGroup
}

// resolveMemberList builds the ordered Member list for the MsgContents rows
// owned by ownerID (a message's or component's synthetic ComponentID),
// binding each row by tag or component name per spec.md §4.1.
func (r *resolver) resolveMemberList(ownerID uint32) ([]Member, error) {
	if r.resolving[ownerID] {
		return nil, fmt.Errorf("%w: component id %d participates in a reference cycle", ErrDanglingReference, ownerID)
	}
	r.resolving[ownerID] = true
	defer delete(r.resolving, ownerID)

	rows := r.contentsByOwner[ownerID]
	members := make([]Member, 0, len(rows))
	for _, row := range rows {
		required := row.Required == "Y"
		if tag, err := strconv.ParseUint(row.TagText, 10, 32); err == nil {
			fd, ok := r.fieldsByTag[uint32(tag)]
			if !ok {
				return nil, fmt.Errorf("%w: field tag %d", ErrDanglingReference, tag)
			}
			members = append(members, Member{Kind: MemberField, Required: required, FieldTag: fd.Tag})
			continue
		}

		xc, ok := r.componentsByName[row.TagText]
		if !ok {
			return nil, fmt.Errorf("%w: component name %q", ErrDanglingReference, row.TagText)
		}
		if r.isGroupComponent(xc) {
			entry, err := r.resolveMemberList(xc.ComponentID)
			if err != nil {
				return nil, fmt.Errorf("resolving group %s: %w", xc.Name, err)
			}
			if len(entry) == 0 {
				return nil, fmt.Errorf("group %s has no members", xc.Name)
			}
			counter := entry[0]
			if counter.Kind != MemberField || !r.fieldsByTag[counter.FieldTag].IsNumInGroup {
				return nil, fmt.Errorf("group %s does not start with a NumInGroup field", xc.Name)
			}
			entryTemplate := entry[1:]
			delimiter, err := resolveGroupDelimiter(entryTemplate)
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", xc.Name, err)
			}
			members = append(members, Member{
				Kind:          MemberGroup,
				Required:      required,
				FieldTag:      counter.FieldTag,
				EntryTemplate: entryTemplate,
				DelimiterTag:  delimiter,
			})
			continue
		}

		cd, err := r.resolveComponent(xc.ComponentID)
		if err != nil {
			return nil, err
		}
		members = append(members, Member{Kind: MemberComponent, Required: required, ComponentID: cd.ID})
	}
	return members, nil
}
