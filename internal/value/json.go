package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parse decodes JSON bytes into a Value, preserving object key order. The
// standard library's map[string]any decoding path discards key order, so
// this walks the token stream by hand — the one place in this package that
// cannot simply delegate to encoding/json wholesale.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Null(), fmt.Errorf("value: parse: %w", err)
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			b := NewMapBuilder()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null(), fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Null(), err
				}
				b.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Null(), err
			}
			return b.Build(), nil
		case '[':
			var items []Value
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Null(), err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Null(), err
			}
			return List(items...), nil
		default:
			return Null(), fmt.Errorf("unexpected delimiter %v", t)
		}
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Float(f), nil
	default:
		return Null(), fmt.Errorf("unexpected JSON token %T", tok)
	}
}

// MarshalJSON implements json.Marshaler, preserving map key insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInt:
		fmt.Fprintf(buf, "%d", v.i)
	case KindFloat:
		enc, err := json.Marshal(v.f)
		if err != nil {
			return err
		}
		buf.Write(enc)
	case KindString:
		enc, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(enc)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, e := range v.m {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyEnc, err := json.Marshal(e.key)
			if err != nil {
				return err
			}
			buf.Write(keyEnc)
			buf.WriteByte(':')
			if err := writeJSON(buf, e.val); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
