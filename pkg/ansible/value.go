package ansible

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the type held by a Value
type Kind int

// Value kinds
const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ListKind
	MapKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ListKind:
		return "list"
	case MapKind:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a JSON-like tree used for extra variables. Maps keep their
// insertion order so that serialisation is byte-for-byte stable.
// The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	s      string // string contents or number literal
	items  []Value
	fields []Field
}

// Field is one key of a map Value
type Field struct {
	Key   string
	Value Value
}

// Null returns the null value
func Null() Value { return Value{} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

// Int returns an integer value
func Int(i int64) Value { return Value{kind: NumberKind, s: strconv.FormatInt(i, 10)} }

// Float returns a floating point value. NaN and infinities have no JSON
// form and become null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: NumberKind, s: strconv.FormatFloat(f, 'f', -1, 64)}
}

// String returns a string value
func String(s string) Value { return Value{kind: StringKind, s: s} }

// List returns a list value holding items in order
func List(items ...Value) Value {
	return Value{kind: ListKind, items: append([]Value{}, items...)}
}

// Map returns a map value holding fields in order. A repeated key keeps
// its first position and its last value.
func Map(fields ...Field) Value {
	b := newMapBuilder(len(fields))
	for _, f := range fields {
		b.add(f.Key, f.Value)
	}
	return b.value()
}

// F builds a map field
func F(key string, value Value) Field { return Field{Key: key, Value: value} }

// ValueOf converts plain Go data into a Value. Go maps have no order, so
// their keys are sorted. Other types (structs, typed maps) go through
// encoding/json, which also sorts map keys.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
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
		return Value{kind: NumberKind, s: strconv.FormatUint(uint64(t), 10)}, nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return Value{kind: NumberKind, s: strconv.FormatUint(t, 10)}, nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return Value{kind: NumberKind, s: t.String()}, nil
	case []string:
		items := make([]Value, 0, len(t))
		for _, s := range t {
			items = append(items, String(s))
		}
		return List(items...), nil
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			v, err := ValueOf(item)
			if err != nil {
				return Null(), err
			}
			items = append(items, v)
		}
		return List(items...), nil
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b := newMapBuilder(len(keys))
		for _, k := range keys {
			b.add(k, String(t[k]))
		}
		return b.value(), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b := newMapBuilder(len(keys))
		for _, k := range keys {
			child, err := ValueOf(t[k])
			if err != nil {
				return Null(), fmt.Errorf("key %q: %w", k, err)
			}
			b.add(k, child)
		}
		return b.value(), nil
	}

	data, err := json.Marshal(x)
	if err != nil {
		return Null(), fmt.Errorf("failed to convert %T to value: %w", x, err)
	}
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Null(), err
	}
	return v, nil
}

// Kind reports the type held by v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null
func (v Value) IsNull() bool { return v.kind == NullKind }

// Len returns the number of list items or map fields
func (v Value) Len() int {
	switch v.kind {
	case ListKind:
		return len(v.items)
	case MapKind:
		return len(v.fields)
	}
	return 0
}

// Fields returns a copy of the map fields in order
func (v Value) Fields() []Field {
	return append([]Field{}, v.fields...)
}

// Items returns a copy of the list items in order
func (v Value) Items() []Value {
	return append([]Value{}, v.items...)
}

// Get looks up key in a map value
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Null(), false
}

// Set stores key in a map value, keeping the position of an existing key.
// A value that is not a map is replaced by an empty map first.
func (v *Value) Set(key string, value Value) {
	if v.kind != MapKind {
		*v = Value{kind: MapKind}
	}

	// copies share the backing array, so never write through it
	fields := make([]Field, len(v.fields), len(v.fields)+1)
	copy(fields, v.fields)
	for i := range fields {
		if fields[i].Key == key {
			fields[i].Value = value
			v.fields = fields
			return
		}
	}
	v.fields = append(fields, Field{Key: key, Value: value})
}

// Merge returns v with the top-level keys of other applied on top.
// When either side is not a map the non-null other wins.
func (v Value) Merge(other Value) Value {
	if other.IsNull() {
		return v
	}
	if v.kind != MapKind || other.kind != MapKind {
		return other
	}
	b := newMapBuilder(len(v.fields) + len(other.fields))
	for _, f := range v.fields {
		b.add(f.Key, f.Value)
	}
	for _, f := range other.fields {
		b.add(f.Key, f.Value)
	}
	return b.value()
}

// mapBuilder assembles a map Value it owns, so fields are written in place.
// A repeated key keeps its first position and its last value.
type mapBuilder struct {
	fields []Field
	index  map[string]int
}

func newMapBuilder(size int) *mapBuilder {
	return &mapBuilder{
		fields: make([]Field, 0, size),
		index:  make(map[string]int, size),
	}
}

func (b *mapBuilder) add(key string, value Value) {
	if i, ok := b.index[key]; ok {
		b.fields[i].Value = value
		return
	}
	b.index[key] = len(b.fields)
	b.fields = append(b.fields, Field{Key: key, Value: value})
}

func (b *mapBuilder) value() Value {
	return Value{kind: MapKind, fields: b.fields}
}

// MarshalJSON renders v as compact JSON without HTML escaping
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.encode(&buf)
	return buf.Bytes(), nil
}

// String renders v as compact JSON
func (v Value) String() string {
	var buf bytes.Buffer
	v.encode(&buf)
	return buf.String()
}

func (v Value) encode(buf *bytes.Buffer) {
	switch v.kind {
	case NullKind:
		buf.WriteString("null")
	case BoolKind:
		buf.WriteString(strconv.FormatBool(v.b))
	case NumberKind:
		buf.WriteString(v.s)
	case StringKind:
		writeJSONString(buf, v.s)
	case ListKind:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.encode(buf)
		}
		buf.WriteByte(']')
	case MapKind:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, f.Key)
			buf.WriteByte(':')
			f.Value.encode(buf)
		}
		buf.WriteByte('}')
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// encoding a string cannot fail
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
}

// UnmarshalJSON parses JSON into v, keeping object keys in document order
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	parsed, err := decodeJSONValue(dec)
	if err != nil {
		return fmt.Errorf("failed to parse extra vars JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse extra vars JSON: unexpected data after the top-level value")
	}

	*v = parsed
	return nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Value{kind: NumberKind, s: t.String()}, nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '{':
			b := newMapBuilder(0)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null(), fmt.Errorf("unexpected object key %v", keyTok)
				}
				child, err := decodeJSONValue(dec)
				if err != nil {
					return Null(), err
				}
				b.add(key, child)
			}
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return b.value(), nil
		case '[':
			out := List()
			for dec.More() {
				child, err := decodeJSONValue(dec)
				if err != nil {
					return Null(), err
				}
				out.items = append(out.items, child)
			}
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return out, nil
		}
	}

	return Null(), fmt.Errorf("unexpected token %v", tok)
}

// UnmarshalYAML decodes a YAML node into v, keeping mapping keys in
// document order
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := decodeYAMLValue(node)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func decodeYAMLValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return decodeYAMLValue(node.Content[0])
	case yaml.AliasNode:
		return decodeYAMLValue(node.Alias)
	case yaml.SequenceNode:
		out := List()
		for _, child := range node.Content {
			item, err := decodeYAMLValue(child)
			if err != nil {
				return Null(), err
			}
			out.items = append(out.items, item)
		}
		return out, nil
	case yaml.MappingNode:
		b := newMapBuilder(len(node.Content) / 2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			child, err := decodeYAMLValue(node.Content[i+1])
			if err != nil {
				return Null(), fmt.Errorf("key %q: %w", key, err)
			}
			b.add(key, child)
		}
		return b.value(), nil
	case yaml.ScalarNode:
		return decodeYAMLScalar(node)
	}
	return Null(), fmt.Errorf("line %d: unsupported YAML node", node.Line)
}

func decodeYAMLScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Null(), err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			var u uint64
			if uerr := node.Decode(&u); uerr != nil {
				return Null(), err
			}
			return ValueOf(u)
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Null(), err
		}
		return Float(f), nil
	default:
		return String(node.Value), nil
	}
}

// ParseExtraVars reads extra variables the way they are given on the
// ansible-playbook command line: a JSON object, or space separated
// key=value pairs whose values are kept as strings.
func ParseExtraVars(s string) (Value, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Null(), nil
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var v Value
		if err := v.UnmarshalJSON([]byte(trimmed)); err != nil {
			return Null(), err
		}
		return v, nil
	}

	pairs := strings.Fields(trimmed)
	b := newMapBuilder(len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return Null(), fmt.Errorf("invalid extra var %q: expected key=value", pair)
		}
		b.add(key, String(value))
	}
	return b.value(), nil
}
