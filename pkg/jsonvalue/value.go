package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// Null is the zero Kind, so the zero Value is JSON null.
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the lowercase JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Member is one key/value pair of an object. Objects keep their members in
// document order.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. Exactly one of the payload fields is
// meaningful, selected by kind.
type Value struct {
	kind    Kind
	boolean bool
	number  json.Number
	str     string
	items   []Value
	members []Member
}

// MaxDepth is the deepest array and object nesting Decode accepts, the same
// limit encoding/json applies.
const MaxDepth = 10000

var (
	// ErrTrailingData is returned by Parse when the input holds more than one
	// JSON value.
	ErrTrailingData = errors.New("jsonvalue: unexpected data after top-level value")

	// ErrMaxDepth is returned when nesting exceeds MaxDepth.
	ErrMaxDepth = fmt.Errorf("jsonvalue: nesting exceeds maximum depth of %d", MaxDepth)
)

// NullValue returns JSON null.
func NullValue() Value { return Value{} }

// BoolValue returns a JSON boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }

// NumberValue returns a JSON number. The literal is kept as written.
func NumberValue(n json.Number) Value { return Value{kind: Number, number: n} }

// StringValue returns a JSON string.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// ArrayValue returns a JSON array holding items.
func ArrayValue(items ...Value) Value {
	return Value{kind: Array, items: append([]Value(nil), items...)}
}

// ObjectValue returns a JSON object. A repeated key keeps its first position
// and takes the last value.
func ObjectValue(members ...Member) Value {
	v := Value{kind: Object}
	index := make(map[string]int, len(members))
	for _, m := range members {
		v.members = setMember(v.members, index, m.Key, m.Value)
	}
	return v
}

// setMember adds or replaces key. index maps keys to their position in
// members and is updated in place.
func setMember(members []Member, index map[string]int, key string, val Value) []Member {
	if i, ok := index[key]; ok {
		members[i].Value = val
		return members
	}
	index[key] = len(members)
	return append(members, Member{Key: key, Value: val})
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == Null }

// AsString returns the string payload and true when v is a JSON string.
func (v Value) AsString() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

// AsBool returns the boolean payload and true when v is a JSON boolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return v.boolean, true
}

// AsNumber returns the number literal and true when v is a JSON number.
func (v Value) AsNumber() (json.Number, bool) {
	if v.kind != Number {
		return "", false
	}
	return v.number, true
}

// Len returns the number of array items or object members, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Members returns a copy of the object's members, or nil for non-objects.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return append([]Member(nil), v.members...)
}

// Field returns the member named key. It reports false when v is not an
// object or has no such member.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Index returns the i-th array item. It reports false when v is not an array
// or i is out of range.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Step is one segment of a lookup path: an object key or an array index.
type Step struct {
	key     string
	index   int
	isIndex bool
}

// Key builds a step that selects an object member.
func Key(name string) Step { return Step{key: name} }

// Idx builds a step that selects an array item.
func Idx(i int) Step { return Step{index: i, isIndex: true} }

func (s Step) String() string {
	if s.isIndex {
		return fmt.Sprintf("[%d]", s.index)
	}
	return "." + s.key
}

// Lookup walks path from v. It never panics: any missing key, out of range
// index or kind mismatch along the way yields false.
func (v Value) Lookup(path ...Step) (Value, bool) {
	cur := v
	for _, step := range path {
		var ok bool
		if step.isIndex {
			cur, ok = cur.Index(step.index)
		} else {
			cur, ok = cur.Field(step.key)
		}
		if !ok {
			return Value{}, false
		}
	}
	return cur, true
}

// Parse decodes exactly one JSON value from data.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := Decode(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, ErrTrailingData
	}
	return v, nil
}

// Decode reads the next JSON value from dec. Callers that want numbers kept
// verbatim should enable UseNumber on dec. Nesting deeper than MaxDepth is
// rejected with ErrMaxDepth.
func Decode(dec *json.Decoder) (Value, error) {
	return decodeValue(dec, 0)
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	return decodeToken(dec, tok, depth)
}

func decodeToken(dec *json.Decoder, tok json.Token, depth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return NumberValue(t), nil
	case float64:
		return NumberValue(json.Number(fmt.Sprint(t))), nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		if t != '[' && t != '{' {
			break
		}
		if depth >= MaxDepth {
			return Value{}, ErrMaxDepth
		}
		if t == '[' {
			return decodeArray(dec, depth+1)
		}
		return decodeObject(dec, depth+1)
	}
	return Value{}, fmt.Errorf("jsonvalue: unexpected token %v", tok)
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	v := Value{kind: Array, items: []Value{}}
	for dec.More() {
		item, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		v.items = append(v.items, item)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	v := Value{kind: Object, members: []Member{}}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("jsonvalue: object key is %T, not string", tok)
		}
		val, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		v.members = setMember(v.members, index, key, val)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
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

// MarshalJSON implements json.Marshaler. Output is compact, keeps member
// order and does not escape HTML characters.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns the compact JSON text of v.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

func (v Value) encode(buf *bytes.Buffer, depth int) error {
	if (v.kind == Array || v.kind == Object) && depth >= MaxDepth {
		return ErrMaxDepth
	}
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if v.number == "" {
			buf.WriteString("0")
			return nil
		}
		buf.WriteString(v.number.String())
	case String:
		return encodeString(buf, v.str)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("jsonvalue: cannot encode %s", v.kind)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.WriteString(strings.TrimSuffix(sb.String(), "\n"))
	return nil
}
