package tagvalue

import "github.com/fixwire/fixengine/dictionary"

// Decoder builds navigable MessageViews over frames for one dictionary
// version, grounded on canboat.Decoder's "resolve structural definition,
// then walk the raw payload against it" shape — here the structural
// definition is a dictionary.MessageDef instead of a canboat.PGN, and the
// payload is a tokenized tag=value frame instead of a CAN data field.
type Decoder struct {
	dict *dictionary.Dictionary
	cfg  Config
}

// NewDecoder creates a Decoder bound to dict, following the teacher's
// NewDecoderWithConfig(schema, config) constructor shape.
func NewDecoder(dict *dictionary.Dictionary, cfg Config) *Decoder {
	return &Decoder{dict: dict, cfg: cfg}
}

const msgTypeTag = 35

// Decode builds a MessageView over frame (the body bytes returned by
// Scan, including header and trailer).
func (d *Decoder) Decode(frame []byte) (*MessageView, error) {
	toks, err := tokenize(d.dict, frame)
	if err != nil {
		return nil, err
	}

	var msgType []byte
	for _, t := range toks {
		if t.tag == msgTypeTag {
			msgType = t.value
			break
		}
	}
	if msgType == nil {
		return nil, &DecodeError{Kind: KindMissingRequiredField, Tag: msgTypeTag, Err: errFieldAbsent}
	}

	msgDef, ok := d.dict.MessageByMsgType(msgType)
	if !ok {
		return nil, &DecodeError{Kind: KindUnknownTag, Tag: msgTypeTag, Raw: msgType, Err: errUnknownMsgType}
	}

	bodyGroups := groupIndex(d.dict, msgDef.Members)

	sc, _, err := d.parseScope(toks, 0, len(toks), bodyGroups, nil, d.cfg.StrictUnknownTags, 0)
	if err != nil {
		return nil, err
	}
	return &MessageView{scope: sc, raw: frame, msgType: msgType}, nil
}

var errUnknownMsgType = decodeErrText("unrecognized MsgType")

// groupIndex flattens members (expanding components inline) into a
// tag->Member map restricted to group (NumInGroup) members, the
// structural lookup the decoder needs to find a group's entry template
// (spec.md §4.5 Phase C).
func groupIndex(dict *dictionary.Dictionary, members []dictionary.Member) map[uint32]dictionary.Member {
	out := map[uint32]dictionary.Member{}
	var walk func(ms []dictionary.Member)
	walk = func(ms []dictionary.Member) {
		for _, m := range ms {
			switch m.Kind {
			case dictionary.MemberGroup:
				out[m.FieldTag] = m
			case dictionary.MemberComponent:
				if comp, ok := dict.ComponentByID(m.ComponentID); ok {
					walk(comp.Members)
				}
			}
		}
	}
	walk(members)
	return out
}

// entryFieldSet flattens an entry template into the set of tags that
// belong to it (fields and group counters alike), used to detect when a
// token no longer belongs to the current group entry.
func entryFieldSet(dict *dictionary.Dictionary, members []dictionary.Member) map[uint32]bool {
	out := map[uint32]bool{}
	var walk func(ms []dictionary.Member)
	walk = func(ms []dictionary.Member) {
		for _, m := range ms {
			switch m.Kind {
			case dictionary.MemberField, dictionary.MemberGroup:
				out[m.FieldTag] = true
			case dictionary.MemberComponent:
				if comp, ok := dict.ComponentByID(m.ComponentID); ok {
					walk(comp.Members)
				}
			}
		}
	}
	walk(members)
	return out
}

// parseScope consumes a run of tokens starting at idx into a scope,
// recognizing any tag in groups as the start of a nested repeating group.
// When boundary is non-nil, the scope is a group entry: parsing stops
// (without consuming) as soon as a token's tag is boundary.delimiterTag
// (a new entry begins) or does not belong to boundary.fields (control
// returns to the enclosing scope). The top-level scope passes a nil
// boundary and always consumes to end.
func (d *Decoder) parseScope(toks []token, idx, end int, groups map[uint32]dictionary.Member, boundary *entryBoundary, strictUnknown bool, depth int) (*scope, int, error) {
	sc := newScope()
	first := true
	for idx < end {
		t := toks[idx]

		if boundary != nil && !first && (t.tag == boundary.delimiterTag || !boundary.fields[t.tag]) {
			break
		}
		first = false

		if g, isGroup := groups[t.tag]; isGroup {
			if d.cfg.MaxGroupDepth > 0 && depth >= d.cfg.MaxGroupDepth {
				return nil, idx, &DecodeError{Kind: KindGroupMalformed, Tag: t.tag, Offset: t.offset, Err: errGroupTooDeep}
			}
			gv, next, err := d.parseGroup(toks, idx, end, g, depth)
			if err != nil {
				return nil, idx, err
			}
			sc.order = append(sc.order, t.tag)
			sc.fields[t.tag] = t.value
			sc.groups[t.tag] = gv
			idx = next
			continue
		}

		if _, dup := sc.fields[t.tag]; dup {
			return nil, idx, &DecodeError{Kind: KindDuplicateTag, Tag: t.tag, Offset: t.offset, Err: errDuplicate}
		}

		if _, known := d.dict.FieldByTag(t.tag); !known && strictUnknown {
			return nil, idx, &DecodeError{Kind: KindUnknownTag, Tag: t.tag, Offset: t.offset, Err: errUnknownTag}
		}

		sc.order = append(sc.order, t.tag)
		sc.fields[t.tag] = t.value
		idx++
	}
	return sc, idx, nil
}

// entryBoundary tells parseScope where a group entry ends: at the next
// occurrence of the delimiter tag, or at any tag outside the entry
// template's flattened field set.
type entryBoundary struct {
	delimiterTag uint32
	fields       map[uint32]bool
}

// parseGroup parses the NumInGroup counter at toks[idx] and its declared
// count of entries, grounded on fastpacket.go's bounded, pool-free
// per-sequence reassembly loop generalized to tag=value's delimiter-marks-
// a-new-entry rule (spec.md §4.5 Phase C).
func (d *Decoder) parseGroup(toks []token, idx, end int, g dictionary.Member, depth int) (*GroupView, int, error) {
	counterTok := toks[idx]
	count, err := parseUintToken(counterTok.value)
	if err != nil {
		return nil, idx, &DecodeError{Kind: KindBadValue, Tag: counterTok.tag, Offset: counterTok.offset, Raw: counterTok.value, Err: err}
	}
	if d.cfg.MaxGroupEntries > 0 && count > d.cfg.MaxGroupEntries {
		return nil, idx, &DecodeError{Kind: KindGroupMalformed, Tag: counterTok.tag, Offset: counterTok.offset, Err: errTooManyEntries}
	}
	idx++

	entryGroups := groupIndex(d.dict, g.EntryTemplate)
	boundary := &entryBoundary{delimiterTag: g.DelimiterTag, fields: entryFieldSet(d.dict, g.EntryTemplate)}

	gv := &GroupView{fieldTag: g.FieldTag}
	for e := 0; e < count; e++ {
		if idx >= end || toks[idx].tag != g.DelimiterTag {
			return nil, idx, &DecodeError{Kind: KindGroupMalformed, Tag: g.FieldTag, Err: errMissingDelimiter}
		}
		sc, next, err := d.parseScope(toks, idx, end, entryGroups, boundary, d.cfg.StrictUnknownTagsInGroups, depth+1)
		if err != nil {
			return nil, idx, err
		}
		gv.entries = append(gv.entries, &EntryView{scope: sc})
		idx = next
	}
	return gv, idx, nil
}

var (
	errDuplicate        = decodeErrText("tag already present at this scope")
	errUnknownTag       = decodeErrText("tag not present in dictionary")
	errGroupTooDeep     = decodeErrText("group nesting exceeds configured maximum depth")
	errTooManyEntries   = decodeErrText("NumInGroup count exceeds configured maximum")
	errMissingDelimiter = decodeErrText("group entry missing delimiter field")
)

func parseUintToken(raw []byte) (int, error) {
	n := 0
	if len(raw) == 0 {
		return 0, errBadTag
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, errBadTag
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
