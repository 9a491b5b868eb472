package fast

import "bytes"

// Value is a decoded/to-be-encoded field value, tagged by the FieldType
// it was produced for.
type Value struct {
	Type   FieldType
	I      int64
	U      uint64
	Bytes  []byte
	DecExp int64
	DecMan int64
	Null   bool
}

func intValue(t FieldType, i int64) Value    { return Value{Type: t, I: i} }
func uintValue(t FieldType, u uint64) Value  { return Value{Type: t, U: u} }
func bytesValue(t FieldType, b []byte) Value { return Value{Type: t, Bytes: b} }

func (v Value) equal(o Value) bool {
	if v.Null != o.Null {
		return false
	}
	if v.Null {
		return true
	}
	switch v.Type {
	case TypeU32, TypeU64:
		return v.U == o.U
	case TypeI32, TypeI64:
		return v.I == o.I
	case TypeDecimal:
		return v.DecExp == o.DecExp && v.DecMan == o.DecMan
	default:
		return bytes.Equal(v.Bytes, o.Bytes)
	}
}

// priorValue is one field's state slot, held contiguously per template in
// a plain slice (not a map) to preserve cache locality per spec.md §9's
// "do not allocate a hash map" note — the same "fixed state living next
// to its owner" instinct as fastpacket.go's per-sequence scratch struct,
// here applied to a long-lived per-session slot instead of a transient
// per-frame one.
type priorValue struct {
	set   bool
	value Value
}

// Codec holds per-template-per-field prior-value state for the copy,
// increment, delta and tail operators (spec.md §4.7 "State").
type Codec struct {
	templates *TemplateSet
	state     map[uint32][]priorValue
}

// NewCodec creates a Codec bound to a template set.
func NewCodec(templates *TemplateSet) *Codec {
	return &Codec{templates: templates, state: map[uint32][]priorValue{}}
}

// ResetState clears all held prior-value slots for templateID, the reset
// hook spec.md §4.7 requires ("reset per session on caller request").
func (c *Codec) ResetState(templateID uint32) {
	delete(c.state, templateID)
}

func (c *Codec) slots(tmpl *Template) []priorValue {
	s, ok := c.state[tmpl.ID]
	if !ok {
		s = make([]priorValue, len(tmpl.Instructions))
		c.state[tmpl.ID] = s
	}
	return s
}

// EncodeMessage encodes one message against tmpl: values must supply one
// Value per instruction name. The wire layout is the template id (an
// unsigned stop-bit integer, letting the decode side dispatch without
// out-of-band knowledge of which template produced the frame), then the
// template's own PMAP, then the field bytes, per spec.md §4.7 and §6.
func (c *Codec) EncodeMessage(tmpl *Template, values map[string]Value) ([]byte, error) {
	slots := c.slots(tmpl)
	var pmapBits []bool
	var body bytes.Buffer

	for i, ins := range tmpl.Instructions {
		v, ok := values[ins.Name]
		if !ok {
			v = Value{Null: true}
		}
		switch ins.Operator {
		case OpNone:
			if err := writeRaw(&body, ins, v); err != nil {
				return nil, err
			}
		case OpConstant:
			if ins.Presence == Optional {
				pmapBits = append(pmapBits, !v.Null)
			}
		case OpDefault:
			if v.equal(defaultValue(ins)) {
				pmapBits = append(pmapBits, false)
			} else {
				pmapBits = append(pmapBits, true)
				if err := writeRaw(&body, ins, v); err != nil {
					return nil, err
				}
			}
		case OpCopy:
			if slots[i].set && slots[i].value.equal(v) {
				pmapBits = append(pmapBits, false)
			} else {
				pmapBits = append(pmapBits, true)
				if err := writeRaw(&body, ins, v); err != nil {
					return nil, err
				}
			}
			slots[i] = priorValue{set: true, value: v}
		case OpIncrement:
			if slots[i].set && isIncrement(slots[i].value, v) {
				pmapBits = append(pmapBits, false)
			} else {
				pmapBits = append(pmapBits, true)
				if err := writeRaw(&body, ins, v); err != nil {
					return nil, err
				}
			}
			slots[i] = priorValue{set: true, value: v}
		case OpDelta:
			d := deltaFrom(slots[i], v)
			// An unsigned field's delta may be negative, so it travels as
			// a signed integer.
			wire := ins
			if ins.Type == TypeU32 || ins.Type == TypeU64 {
				wire.Type = TypeI64
			}
			if err := writeRaw(&body, wire, d); err != nil {
				return nil, err
			}
			slots[i] = priorValue{set: true, value: v}
		case OpTail:
			if slots[i].set && bytes.Equal(slots[i].value.Bytes, v.Bytes) {
				pmapBits = append(pmapBits, false)
			} else {
				tail := tailOf(slots[i].value.Bytes, v.Bytes)
				pmapBits = append(pmapBits, true)
				body.Write(encodeASCIIString(tail, v.Null))
			}
			slots[i] = priorValue{set: true, value: v}
		}
	}

	out := encodeUnsignedStopBit(uint64(tmpl.ID))
	out = append(out, encodePMAP(pmapBits)...)
	out = append(out, body.Bytes()...)
	return out, nil
}

// DecodeMessage reads one message from the head of buf: it first reads the
// template id stamped there by EncodeMessage and resolves it against the
// Codec's TemplateSet (spec.md §4.7 R1 "unknown template id"), then decodes
// the field bytes against that template. This is what lets one Codec
// multiplex several message types over a single stream (SPEC_FULL.md §D.5).
// Returns the resolved template, the decoded fields and the total consumed
// byte count.
func (c *Codec) DecodeMessage(buf []byte) (*Template, map[string]Value, int, error) {
	id, n, err := decodeUnsignedStopBit(buf)
	if err != nil {
		return nil, nil, 0, err
	}
	if c.templates == nil {
		return nil, nil, 0, errUnknownTemplate(int64(id))
	}
	tmpl, ok := c.templates.ByID(uint32(id))
	if !ok {
		return nil, nil, 0, errUnknownTemplate(int64(id))
	}
	out, bodyN, err := c.decodeBody(tmpl, buf[n:])
	if err != nil {
		return nil, nil, 0, err
	}
	return tmpl, out, n + bodyN, nil
}

// decodeBody decodes a message body against a template already resolved by
// DecodeMessage, returning the consumed byte count of the body alone.
func (c *Codec) decodeBody(tmpl *Template, buf []byte) (map[string]Value, int, error) {
	slots := c.slots(tmpl)
	pmapBits, n, err := decodePMAP(buf)
	if err != nil {
		return nil, 0, err
	}
	pos := n
	pmapIdx := 0
	nextBit := func() (bool, error) {
		if pmapIdx >= len(pmapBits) {
			return false, errPresenceMismatch("pmap exhausted before all governed fields were read")
		}
		b := pmapBits[pmapIdx]
		pmapIdx++
		return b, nil
	}

	out := map[string]Value{}
	for i, ins := range tmpl.Instructions {
		switch ins.Operator {
		case OpNone:
			v, read, err := readRaw(buf[pos:], ins)
			if err != nil {
				return nil, 0, err
			}
			out[ins.Name] = v
			pos += read
		case OpConstant:
			v := Value{Null: true}
			if ins.Presence == Mandatory {
				v = constantValue(ins)
			} else {
				present, err := nextBit()
				if err != nil {
					return nil, 0, err
				}
				if present {
					v = constantValue(ins)
				}
			}
			out[ins.Name] = v
		case OpDefault:
			present, err := nextBit()
			if err != nil {
				return nil, 0, err
			}
			if present {
				v, read, err := readRaw(buf[pos:], ins)
				if err != nil {
					return nil, 0, err
				}
				out[ins.Name] = v
				pos += read
			} else {
				out[ins.Name] = defaultValue(ins)
			}
		case OpCopy:
			present, err := nextBit()
			if err != nil {
				return nil, 0, err
			}
			if present {
				v, read, err := readRaw(buf[pos:], ins)
				if err != nil {
					return nil, 0, err
				}
				out[ins.Name] = v
				pos += read
				slots[i] = priorValue{set: true, value: v}
			} else {
				if !slots[i].set {
					slots[i] = priorValue{set: true, value: defaultValue(ins)}
				}
				out[ins.Name] = slots[i].value
			}
		case OpIncrement:
			present, err := nextBit()
			if err != nil {
				return nil, 0, err
			}
			var v Value
			if present {
				v, read, err := readRaw(buf[pos:], ins)
				if err != nil {
					return nil, 0, err
				}
				pos += read
				out[ins.Name] = v
				slots[i] = priorValue{set: true, value: v}
				continue
			}
			if slots[i].set {
				v = incrementOf(slots[i].value)
			} else {
				v = defaultValue(ins)
			}
			out[ins.Name] = v
			slots[i] = priorValue{set: true, value: v}
		case OpDelta:
			wire := ins
			if ins.Type == TypeU32 || ins.Type == TypeU64 {
				wire.Type = TypeI64
			}
			d, read, err := readRaw(buf[pos:], wire)
			if err != nil {
				return nil, 0, err
			}
			pos += read
			d.Type = ins.Type
			v := applyDelta(slots[i], d)
			out[ins.Name] = v
			slots[i] = priorValue{set: true, value: v}
		case OpTail:
			present, err := nextBit()
			if err != nil {
				return nil, 0, err
			}
			if present {
				tail, isNull, read, err := decodeASCIIString(buf[pos:], ins.Presence == Optional)
				if err != nil {
					return nil, 0, err
				}
				pos += read
				var full []byte
				if isNull {
					full = nil
				} else {
					full = spliceTail(priorBytes(slots[i]), tail)
				}
				v := bytesValue(ins.Type, full)
				v.Null = isNull
				out[ins.Name] = v
				slots[i] = priorValue{set: true, value: v}
			} else {
				if !slots[i].set {
					slots[i] = priorValue{set: true, value: defaultValue(ins)}
				}
				out[ins.Name] = slots[i].value
			}
		}
	}
	return out, pos, nil
}
