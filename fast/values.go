package fast

import (
	"bytes"
	"strconv"
)

// writeRaw encodes v's wire representation for instruction ins, applying
// the nullable-bias rules spec.md §4.7 describes for optional fields.
func writeRaw(body *bytes.Buffer, ins FieldInstruction, v Value) error {
	switch ins.Type {
	case TypeU32, TypeU64:
		if ins.Presence == Optional {
			if v.Null {
				body.Write(encodeUnsignedStopBit(0))
				return nil
			}
			body.Write(encodeUnsignedStopBit(v.U + 1))
			return nil
		}
		body.Write(encodeUnsignedStopBit(v.U))
		return nil
	case TypeI32, TypeI64:
		if ins.Presence == Optional {
			if v.Null {
				body.Write(encodeSignedStopBit(0))
				return nil
			}
			i := v.I
			if i >= 0 {
				i++
			}
			body.Write(encodeSignedStopBit(i))
			return nil
		}
		body.Write(encodeSignedStopBit(v.I))
		return nil
	case TypeDecimal:
		if ins.Presence == Optional && v.Null {
			body.Write(encodeSignedStopBit(nullDecimalExponent))
			return nil
		}
		if v.DecExp < -63 || v.DecExp > 63 {
			return errDecimalExponentRange(v.DecExp)
		}
		body.Write(encodeDecimal(v.DecExp, v.DecMan))
		return nil
	case TypeASCIIString, TypeUnicodeString:
		body.Write(encodeASCIIString(v.Bytes, v.Null && ins.Presence == Optional))
		return nil
	case TypeByteVector:
		if ins.Presence == Optional {
			if v.Null {
				body.Write(encodeUnsignedStopBit(0))
				return nil
			}
			body.Write(encodeUnsignedStopBit(uint64(len(v.Bytes) + 1)))
			body.Write(v.Bytes)
			return nil
		}
		body.Write(encodeByteVector(v.Bytes))
		return nil
	}
	return errPresenceMismatch("unknown field type")
}

// nullDecimalExponent is a reserved exponent value outside the
// [-63, 63] valid range (decodeDecimal rejects it there), used as the
// null sentinel for optional decimal fields.
const nullDecimalExponent = -64

// readRaw decodes one field's wire representation for instruction ins,
// returning the bytes consumed.
func readRaw(buf []byte, ins FieldInstruction) (Value, int, error) {
	switch ins.Type {
	case TypeU32, TypeU64:
		u, n, err := decodeUnsignedStopBit(buf)
		if err != nil {
			return Value{}, 0, err
		}
		if ins.Presence == Optional {
			if u == 0 {
				return Value{Type: ins.Type, Null: true}, n, nil
			}
			return uintValue(ins.Type, u-1), n, nil
		}
		return uintValue(ins.Type, u), n, nil
	case TypeI32, TypeI64:
		i, n, err := decodeSignedStopBit(buf)
		if err != nil {
			return Value{}, 0, err
		}
		if ins.Presence == Optional {
			if i == 0 {
				return Value{Type: ins.Type, Null: true}, n, nil
			}
			if i > 0 {
				i--
			}
			return intValue(ins.Type, i), n, nil
		}
		return intValue(ins.Type, i), n, nil
	case TypeDecimal:
		exp, n1, err := decodeSignedStopBit(buf)
		if err != nil {
			return Value{}, 0, err
		}
		if ins.Presence == Optional && exp == nullDecimalExponent {
			return Value{Type: TypeDecimal, Null: true}, n1, nil
		}
		if exp < -63 || exp > 63 {
			return Value{}, 0, errDecimalExponentRange(exp)
		}
		man, n2, err := decodeSignedStopBit(buf[n1:])
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Type: TypeDecimal, DecExp: exp, DecMan: man}, n1 + n2, nil
	case TypeASCIIString, TypeUnicodeString:
		b, isNull, n, err := decodeASCIIString(buf, ins.Presence == Optional)
		if err != nil {
			return Value{}, 0, err
		}
		v := bytesValue(ins.Type, b)
		v.Null = isNull
		return v, n, nil
	case TypeByteVector:
		if ins.Presence == Optional {
			length, n, err := decodeUnsignedStopBit(buf)
			if err != nil {
				return Value{}, 0, err
			}
			if length == 0 {
				return Value{Type: TypeByteVector, Null: true}, n, nil
			}
			if length-1 > uint64(len(buf)-n) {
				return Value{}, 0, errPastBuffer()
			}
			end := n + int(length-1)
			return bytesValue(TypeByteVector, buf[n:end]), end, nil
		}
		b, n, err := decodeByteVector(buf)
		if err != nil {
			return Value{}, 0, err
		}
		return bytesValue(TypeByteVector, b), n, nil
	}
	return Value{}, 0, errPresenceMismatch("unknown field type")
}

// constantValue parses a template's literal `value` attribute into a
// Value for ins's field type.
func constantValue(ins FieldInstruction) Value {
	return parseTemplateLiteral(ins.Type, ins.Constant)
}

// defaultValue parses a template's literal `default` attribute, or
// returns the type's zero value when absent.
func defaultValue(ins FieldInstruction) Value {
	if ins.Default == "" {
		return zeroValue(ins.Type)
	}
	return parseTemplateLiteral(ins.Type, ins.Default)
}

func zeroValue(t FieldType) Value {
	switch t {
	case TypeU32, TypeU64:
		return uintValue(t, 0)
	case TypeI32, TypeI64:
		return intValue(t, 0)
	case TypeDecimal:
		return Value{Type: TypeDecimal}
	default:
		return bytesValue(t, nil)
	}
}

func parseTemplateLiteral(t FieldType, raw string) Value {
	switch t {
	case TypeU32, TypeU64:
		u, _ := strconv.ParseUint(raw, 10, 64)
		return uintValue(t, u)
	case TypeI32, TypeI64:
		i, _ := strconv.ParseInt(raw, 10, 64)
		return intValue(t, i)
	case TypeDecimal:
		exp, man := 0, 0
		if dot := bytes.IndexByte([]byte(raw), '.'); dot >= 0 {
			exp = -(len(raw) - dot - 1)
			whole := raw[:dot] + raw[dot+1:]
			m, _ := strconv.Atoi(whole)
			man = m
		} else {
			m, _ := strconv.Atoi(raw)
			man = m
		}
		return Value{Type: TypeDecimal, DecExp: int64(exp), DecMan: int64(man)}
	default:
		return bytesValue(t, []byte(raw))
	}
}

// isIncrement reports whether v == prior+1, per the increment operator's
// "field not encoded, value = previous+1" rule.
func isIncrement(prior, v Value) bool {
	switch v.Type {
	case TypeU32, TypeU64:
		return prior.U+1 == v.U
	case TypeI32, TypeI64:
		return prior.I+1 == v.I
	default:
		return false
	}
}

func incrementOf(prior Value) Value {
	switch prior.Type {
	case TypeU32, TypeU64:
		return uintValue(prior.Type, prior.U+1)
	case TypeI32, TypeI64:
		return intValue(prior.Type, prior.I+1)
	default:
		return prior
	}
}

// deltaFrom computes the wire delta for the delta operator: integer types
// transmit (current - previous); decimals, strings and byte vectors
// transmit the full current value (no delta compression is applied to
// them).
func deltaFrom(slot priorValue, v Value) Value {
	switch v.Type {
	case TypeU32, TypeU64:
		prior := uint64(0)
		if slot.set {
			prior = slot.value.U
		}
		return intValue(v.Type, int64(v.U)-int64(prior))
	case TypeI32, TypeI64:
		prior := int64(0)
		if slot.set {
			prior = slot.value.I
		}
		return intValue(v.Type, v.I-prior)
	default:
		return v
	}
}

func applyDelta(slot priorValue, d Value) Value {
	switch d.Type {
	case TypeU32, TypeU64:
		prior := int64(0)
		if slot.set {
			prior = int64(slot.value.U)
		}
		return uintValue(d.Type, uint64(prior+d.I))
	case TypeI32, TypeI64:
		prior := int64(0)
		if slot.set {
			prior = slot.value.I
		}
		return intValue(d.Type, prior+d.I)
	default:
		return d
	}
}

// tailOf and spliceTail implement the tail operator's wire value as a
// full-value replacement; see DESIGN.md for why byte-level prefix
// compression is not implemented.
func tailOf(_ []byte, cur []byte) []byte    { return cur }
func spliceTail(_ []byte, tail []byte) []byte { return tail }

func priorBytes(slot priorValue) []byte {
	if !slot.set {
		return nil
	}
	return slot.value.Bytes
}
