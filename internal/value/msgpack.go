package value

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// wire tags identify the variant on the msgpack wire. Kept distinct from
// Kind's int values so the wire format doesn't break if Kind's iota order
// ever changes.
const (
	wireNull uint8 = iota
	wireBool
	wireInt
	wireFloat
	wireString
	wireList
	wireMap
)

// EncodeMsgpack implements msgpack.CustomEncoder, giving Value a compact
// binary wire format for external diagnostics/storage (SPEC_FULL.md §3)
// alongside its JSON form. Maps are written as ordered key/value arrays
// rather than a msgpack map, since the msgpack map type does not guarantee
// preserving the encoder's iteration order.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindNull:
		return enc.EncodeUint8(wireNull)
	case KindBool:
		if err := enc.EncodeUint8(wireBool); err != nil {
			return err
		}
		return enc.EncodeBool(v.b)
	case KindInt:
		if err := enc.EncodeUint8(wireInt); err != nil {
			return err
		}
		return enc.EncodeInt64(v.i)
	case KindFloat:
		if err := enc.EncodeUint8(wireFloat); err != nil {
			return err
		}
		return enc.EncodeFloat64(v.f)
	case KindString:
		if err := enc.EncodeUint8(wireString); err != nil {
			return err
		}
		return enc.EncodeString(v.s)
	case KindList:
		if err := enc.EncodeUint8(wireList); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(v.list)); err != nil {
			return err
		}
		for _, item := range v.list {
			if err := enc.Encode(item); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		if err := enc.EncodeUint8(wireMap); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(v.m)); err != nil {
			return err
		}
		for _, e := range v.m {
			if err := enc.EncodeString(e.key); err != nil {
				return err
			}
			if err := enc.Encode(e.val); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("value: unknown kind %d", v.kind)
	}
}

// DecodeMsgpack implements msgpack.CustomDecoder, the inverse of EncodeMsgpack.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	tag, err := dec.DecodeUint8()
	if err != nil {
		return err
	}
	switch tag {
	case wireNull:
		*v = Null()
		return nil
	case wireBool:
		b, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case wireInt:
		i, err := dec.DecodeInt64()
		if err != nil {
			return err
		}
		*v = Int(i)
		return nil
	case wireFloat:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		*v = Float(f)
		return nil
	case wireString:
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		*v = String(s)
		return nil
	case wireList:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		items := make([]Value, n)
		for i := 0; i < n; i++ {
			if err := dec.Decode(&items[i]); err != nil {
				return err
			}
		}
		*v = List(items...)
		return nil
	case wireMap:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		b := NewMapBuilder()
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return err
			}
			var val Value
			if err := dec.Decode(&val); err != nil {
				return err
			}
			b.Set(key, val)
		}
		*v = b.Build()
		return nil
	default:
		return fmt.Errorf("value: unknown wire tag %d", tag)
	}
}

// EncodeMsgpackBytes marshals v into msgpack bytes.
func EncodeMsgpackBytes(v Value) ([]byte, error) {
	return msgpack.Marshal(v)
}

// DecodeMsgpackBytes unmarshals msgpack bytes produced by EncodeMsgpackBytes.
func DecodeMsgpackBytes(data []byte) (Value, error) {
	var v Value
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return Null(), err
	}
	return v, nil
}
