package signature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Kind is the variant tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "invalid"
}

// Value is an immutable structured value: null, bool, number, string, sequence or
// mapping. The zero Value is null. Numbers keep their decimal literal so integers
// survive a parse/sign round trip untouched.
type Value struct {
	kind    Kind
	b       bool
	str     string
	items   []Value
	entries map[string]Value
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int(n int64) Value { return Value{kind: KindNumber, str: strconv.FormatInt(n, 10)} }

func Uint(n uint64) Value { return Value{kind: KindNumber, str: strconv.FormatUint(n, 10)} }

// Float returns a number Value. NaN and infinities have no JSON form and become null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, str: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Number returns a number Value holding the decimal literal as given.
func Number(literal string) (Value, error) {
	if _, err := strconv.ParseFloat(literal, 64); err != nil || !json.Valid([]byte(literal)) {
		return Value{}, fmt.Errorf("invalid number %q", literal)
	}
	return Value{kind: KindNumber, str: literal}, nil
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Sequence(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindSequence, items: cp}
}

func Mapping(entries map[string]Value) Value {
	cp := make(map[string]Value, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	return Value{kind: KindMapping, entries: cp}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsNumber() (json.Number, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return json.Number(v.str), true
}

func (v Value) Int64() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	n, err := strconv.ParseInt(v.str, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(v.str, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	}
	return n, true
}

// Len is the number of items of a sequence or entries of a mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.entries)
	}
	return 0
}

func (v Value) Index(i int) Value {
	if v.kind != KindSequence || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i]
}

func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	cp := make([]Value, len(v.items))
	copy(cp, v.items)
	return cp
}

func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	e, ok := v.entries[key]
	return e, ok
}

// Keys returns the mapping's keys in ascending codepoint order.
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	keys := make([]string, 0, len(v.entries))
	for k := range v.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of the mapping with key set to val.
func (v Value) With(key string, val Value) Value {
	out := make(map[string]Value, len(v.entries)+1)
	for k, e := range v.entries {
		out[k] = e
	}
	out[key] = val
	return Value{kind: KindMapping, entries: out}
}

// Without returns a copy of the mapping without key.
func (v Value) Without(key string) Value {
	if v.kind != KindMapping {
		return v
	}
	out := make(map[string]Value, len(v.entries))
	for k, e := range v.entries {
		if k != key {
			out[k] = e
		}
	}
	return Value{kind: KindMapping, entries: out}
}

// Parse decodes one JSON document, keeping number literals exact.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("unexpected data after top-level value")
	}
	return fromDecoded(raw), nil
}

func fromDecoded(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Value{}
	case bool:
		return Bool(t)
	case json.Number:
		return Value{kind: KindNumber, str: t.String()}
	case string:
		return String(t)
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = fromDecoded(it)
		}
		return Value{kind: KindSequence, items: items}
	case map[string]any:
		entries := make(map[string]Value, len(t))
		for k, e := range t {
			entries[k] = fromDecoded(e)
		}
		return Value{kind: KindMapping, entries: entries}
	}
	return Value{}
}

// FromAny converts Go data into a Value. Structs and other types go through their
// JSON encoding, so json tags decide the mapping keys.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case *Value:
		if t == nil {
			return Value{}, nil
		}
		return *t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Uint(uint64(t)), nil
	case uint8:
		return Uint(uint64(t)), nil
	case uint16:
		return Uint(uint64(t)), nil
	case uint32:
		return Uint(uint64(t)), nil
	case uint64:
		return Uint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return Number(t.String())
	case json.RawMessage:
		return Parse(t)
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			v, err := FromAny(it)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindSequence, items: items}, nil
	case map[string]any:
		entries := make(map[string]Value, len(t))
		for k, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			entries[k] = v
		}
		return Value{kind: KindMapping, entries: entries}, nil
	}

	if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Value{}, nil
	}
	b, err := json.Marshal(x)
	if err != nil {
		return Value{}, err
	}
	return Parse(b)
}

// Decode stores the Value into dst using JSON semantics.
func (v Value) Decode(dst any) error {
	if p, ok := dst.(*Value); ok {
		*p = v
		return nil
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// MarshalJSON writes compact JSON with mapping keys in ascending order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.str)
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindSequence:
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.entries[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("invalid value kind %d", v.kind)
	}
	return nil
}

// String renders the Value as JSON for debugging.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(b)
}
