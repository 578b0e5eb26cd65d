package ansible

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "null", v: Null(), want: "null"},
		{name: "zero value", v: Value{}, want: "null"},
		{name: "bool", v: Bool(true), want: "true"},
		{name: "int", v: Int(-42), want: "-42"},
		{name: "float", v: Float(1.5), want: "1.5"},
		{name: "nan", v: Float(math.NaN()), want: "null"},
		{name: "string", v: String(`say "hi"`), want: `"say \"hi\""`},
		{name: "no html escaping", v: String("<a&b>"), want: `"<a&b>"`},
		{name: "empty list", v: List(), want: "[]"},
		{name: "empty map", v: Map(), want: "{}"},
		{
			name: "nested keeps insertion order",
			v: Map(
				F("zeta", Int(1)),
				F("alpha", List(String("x"), Bool(false))),
				F("mid", Map(F("b", Null()), F("a", Float(0.25)))),
			),
			want: `{"zeta":1,"alpha":["x",false],"mid":{"b":null,"a":0.25}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())

			data, err := json.Marshal(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestValueSetKeepsPosition(t *testing.T) {
	v := Map(F("a", Int(1)), F("b", Int(2)))
	v.Set("a", String("one"))
	v.Set("c", Int(3))

	assert.Equal(t, `{"a":"one","b":2,"c":3}`, v.String())

	got, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, "one", got.s)

	_, ok = v.Get("missing")
	assert.False(t, ok)
}

func TestValueSetDoesNotAliasCopies(t *testing.T) {
	orig := Map(F("a", Int(1)))
	cp := orig
	cp.Set("a", Int(2))
	cp.Set("b", Int(3))

	assert.Equal(t, `{"a":1}`, orig.String())
	assert.Equal(t, `{"a":2,"b":3}`, cp.String())
}

func TestValueDuplicateKeys(t *testing.T) {
	var v Value
	require.NoError(t, v.UnmarshalJSON([]byte(`{"a":1,"b":2,"a":3}`)))
	assert.Equal(t, `{"a":3,"b":2}`, v.String())

	m := Map(F("x", Int(1)), F("y", Int(2)), F("x", Int(9)))
	assert.Equal(t, `{"x":9,"y":2}`, m.String())
}

func TestValueLargeMap(t *testing.T) {
	var buf strings.Builder
	buf.WriteByte('{')
	for i := 0; i < 50000; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"k%d":%d`, i, i)
	}
	buf.WriteByte('}')

	var v Value
	require.NoError(t, v.UnmarshalJSON([]byte(buf.String())))
	require.Equal(t, 50000, v.Len())
	assert.Equal(t, "k0", v.Fields()[0].Key)
	assert.Equal(t, "k49999", v.Fields()[49999].Key)

	// building on a decoded map must not write into the decoded fields
	extended := v
	extended.Set("k0", Null())
	first, _ := v.Get("k0")
	assert.Equal(t, "0", first.String())
}

func TestValueSetOnNonMap(t *testing.T) {
	v := String("x")
	v.Set("k", Bool(true))
	assert.Equal(t, MapKind, v.Kind())
	assert.Equal(t, `{"k":true}`, v.String())
}

func TestValueMerge(t *testing.T) {
	base := Map(F("env", String("dev")), F("replicas", Int(1)))
	over := Map(F("replicas", Int(3)), F("region", String("eu")))

	merged := base.Merge(over)
	assert.Equal(t, `{"env":"dev","replicas":3,"region":"eu"}`, merged.String())
	assert.Equal(t, `{"env":"dev","replicas":1}`, base.String())

	assert.Equal(t, base.String(), base.Merge(Null()).String())
	assert.Equal(t, over.String(), Null().Merge(over).String())
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(map[string]any{
		"b": []any{1, "two", nil},
		"a": map[string]string{"y": "1", "x": "2"},
		"c": uint64(math.MaxUint64),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"x":"2","y":"1"},"b":[1,"two",null],"c":18446744073709551615}`, v.String())

	type nested struct {
		Name  string `json:"name"`
		Ports []int  `json:"ports"`
	}
	v, err = ValueOf(nested{Name: "web", Ports: []int{80, 443}})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"web","ports":[80,443]}`, v.String())

	_, err = ValueOf(make(chan int))
	assert.Error(t, err)
}

func TestValueUnmarshalJSONKeepsOrder(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"z": 1, "a": {"y": [1.0, 2e3]}, "m": "<x>"}`), &v))
	assert.Equal(t, `{"z":1,"a":{"y":[1.0,2e3]},"m":"<x>"}`, v.String())

	assert.Error(t, v.UnmarshalJSON([]byte(`{"a":1} {"b":2}`)))
	assert.Error(t, v.UnmarshalJSON([]byte(`{"a":1}}`)))
	assert.Error(t, v.UnmarshalJSON([]byte(`[1]]`)))
	assert.Error(t, v.UnmarshalJSON([]byte(`{"a":`)))
}

func TestValueUnmarshalYAML(t *testing.T) {
	src := `
zeta: 1
alpha:
  - x
  - true
  - 2.5
base: &base
  name: web
ref: *base
empty: ~
quoted: "007"
`
	var v Value
	require.NoError(t, yaml.Unmarshal([]byte(src), &v))
	assert.Equal(t,
		`{"zeta":1,"alpha":["x",true,2.5],"base":{"name":"web"},"ref":{"name":"web"},"empty":null,"quoted":"007"}`,
		v.String())
}

func TestParseExtraVars(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "empty", in: "  ", want: "null"},
		{name: "json object", in: `{"b":1,"a":"x"}`, want: `{"b":1,"a":"x"}`},
		{name: "key value pairs", in: "version=1.2 env=prod", want: `{"version":"1.2","env":"prod"}`},
		{name: "value with equals", in: "expr=a=b", want: `{"expr":"a=b"}`},
		{name: "missing equals", in: "flag", wantErr: true},
		{name: "empty key", in: "=x", wantErr: true},
		{name: "broken json", in: `{"a":`, wantErr: true},
		{name: "stray closing brace", in: `{"a":1}}`, wantErr: true},
		{name: "stray closing bracket", in: `{"a":1}]`, wantErr: true},
		{name: "second document", in: `{"a":1} {"b":2}`, wantErr: true},
		{name: "trailing whitespace", in: "{\"a\":1}\n\t", want: `{"a":1}`},
		{name: "repeated key", in: "env=dev region=eu env=prod", want: `{"env":"prod","region":"eu"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExtraVars(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "map", MapKind.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
