// Package jsn implements an owned JSON value representation that keeps
// integers and floats distinct instead of collapsing them into one numeric
// kind, the way encoding/json's float64-only decoding would.
package jsn

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind discriminates the variant held by a Jsn value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindSigned
	KindFloat
	KindString
	KindArray
	KindObject
)

// Jsn is a tagged union over JSON values. Only the field matching Kind is
// meaningful; the others are zero.
type Jsn struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	arr    []Jsn
	obj    map[string]Jsn
	keys   []string // insertion order, kept so rendering is deterministic
}

func Null() Jsn                { return Jsn{kind: KindNull} }
func Bool(b bool) Jsn          { return Jsn{kind: KindBool, b: b} }
func Signed(i int64) Jsn       { return Jsn{kind: KindSigned, i: i} }
func Float(f float64) Jsn      { return Jsn{kind: KindFloat, f: f} }
func String(s string) Jsn      { return Jsn{kind: KindString, s: s} }
func Array(els []Jsn) Jsn      { return Jsn{kind: KindArray, arr: els} }

// Object builds an object value from an ordered slice of keys, preserving
// the order callers pass in (construction time, not reflection order).
func Object(keys []string, vals map[string]Jsn) Jsn {
	return Jsn{kind: KindObject, keys: append([]string(nil), keys...), obj: vals}
}

func EmptyObject() Jsn { return Jsn{kind: KindObject, obj: map[string]Jsn{}} }
func EmptyArray() Jsn  { return Jsn{kind: KindArray, arr: []Jsn{}} }

func (j Jsn) Kind() Kind { return j.kind }
func (j Jsn) IsNull() bool   { return j.kind == KindNull }
func (j Jsn) IsString() bool { return j.kind == KindString }
func (j Jsn) IsArray() bool  { return j.kind == KindArray }
func (j Jsn) IsObject() bool { return j.kind == KindObject }
func (j Jsn) IsNumeric() bool {
	return j.kind == KindSigned || j.kind == KindFloat
}

func (j Jsn) AsBool() (bool, bool)     { return j.b, j.kind == KindBool }
func (j Jsn) AsSigned() (int64, bool)  { return j.i, j.kind == KindSigned }
func (j Jsn) AsFloat() (float64, bool) {
	switch j.kind {
	case KindFloat:
		return j.f, true
	case KindSigned:
		return float64(j.i), true
	default:
		return 0, false
	}
}
func (j Jsn) AsString() (string, bool) { return j.s, j.kind == KindString }
func (j Jsn) AsArray() ([]Jsn, bool)    { return j.arr, j.kind == KindArray }

// AsObject returns the object's values keyed by field name and the field
// names in construction/insertion order.
func (j Jsn) AsObject() (map[string]Jsn, []string, bool) {
	return j.obj, j.keys, j.kind == KindObject
}

// Get returns the value of field name on an object, or (Null, false).
func (j Jsn) Get(name string) (Jsn, bool) {
	if j.kind != KindObject {
		return Jsn{}, false
	}
	v, ok := j.obj[name]
	return v, ok
}

// Index returns the element at i in an array, or (Null, false).
func (j Jsn) Index(i int) (Jsn, bool) {
	if j.kind != KindArray || i < 0 || i >= len(j.arr) {
		return Jsn{}, false
	}
	return j.arr[i], true
}

// FromAny converts a tree decoded by encoding/json (with UseNumber) into Jsn,
// classifying json.Number into Signed when it fits an int64 exactly and
// Float otherwise.
func FromAny(v interface{}) Jsn {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Signed(i)
		}
		f, _ := t.Float64()
		return Float(f)
	case float64:
		if i := int64(t); float64(i) == t {
			return Signed(i)
		}
		return Float(t)
	case string:
		return String(t)
	case []interface{}:
		els := make([]Jsn, len(t))
		for i, e := range t {
			els[i] = FromAny(e)
		}
		return Array(els)
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		vals := make(map[string]Jsn, len(t))
		for k, e := range t {
			vals[k] = FromAny(e)
		}
		return Object(keys, vals)
	default:
		panic(fmt.Sprintf("jsn: unsupported type %T", v))
	}
}

// Parse decodes raw JSON text into a Jsn tree, preserving the int/float
// split via json.Decoder.UseNumber.
func Parse(raw []byte) (Jsn, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return Jsn{}, err
	}
	return FromAny(v), nil
}

// ToAny converts back to the plain interface{} tree encoding/json expects,
// for reuse by callers that need to re-marshal via the standard library.
func (j Jsn) ToAny() interface{} {
	switch j.kind {
	case KindNull:
		return nil
	case KindBool:
		return j.b
	case KindSigned:
		return j.i
	case KindFloat:
		return j.f
	case KindString:
		return j.s
	case KindArray:
		out := make([]interface{}, len(j.arr))
		for i, e := range j.arr {
			out[i] = e.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(j.obj))
		for k, v := range j.obj {
			out[k] = v.ToAny()
		}
		return out
	default:
		return nil
	}
}

func (j Jsn) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.ToAny())
}

func (j *Jsn) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}

// String renders the canonical textual form used for logging, equality
// checks and response bodies. Binding into jsonb columns goes through
// Value, which uses encoding/json instead.
func (j Jsn) String() string {
	var buf bytes.Buffer
	j.render(&buf)
	return buf.String()
}

func (j Jsn) render(buf *bytes.Buffer) {
	switch j.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(j.b))
	case KindSigned:
		buf.WriteString(strconv.FormatInt(j.i, 10))
	case KindFloat:
		buf.WriteString(strconv.FormatFloat(j.f, 'g', -1, 64))
	case KindString:
		b, _ := json.Marshal(j.s)
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range j.arr {
			if i > 0 {
				buf.WriteString(", ")
			}
			e.render(buf)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range j.orderedKeys() {
			if i > 0 {
				buf.WriteString(", ")
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteString(": ")
			j.obj[k].render(buf)
		}
		buf.WriteByte('}')
	}
}

func (j Jsn) orderedKeys() []string {
	if len(j.keys) == len(j.obj) {
		return j.keys
	}
	keys := make([]string, 0, len(j.obj))
	for k := range j.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value implements driver.Valuer so a Jsn can be bound directly as a
// Postgres jsonb parameter.
func (j Jsn) Value() (driver.Value, error) {
	b, err := json.Marshal(j.ToAny())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading jsonb columns back out.
func (j *Jsn) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = Null()
		return nil
	case []byte:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*j = parsed
		return nil
	case string:
		parsed, err := Parse([]byte(v))
		if err != nil {
			return err
		}
		*j = parsed
		return nil
	default:
		return fmt.Errorf("jsn: cannot scan %T into Jsn", src)
	}
}
