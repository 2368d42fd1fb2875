package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Value {
	t.Helper()
	v, err := Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []Option
		want string
	}{
		{"order independent", `{"b":2,"a":1}`, nil, "a=1&b=2"},
		{"empty mapping", `{}`, nil, ""},
		{"only nulls", `{"a":null,"b":null}`, nil, ""},
		{"top level null", `null`, nil, ""},
		{"nulls dropped", `{"a":null,"b":"x"}`, nil, "b=x"},
		{"empty string kept", `{"a":""}`, nil, "a="},
		{"booleans", `{"t":true,"f":false}`, nil, "f=false&t=true"},
		{"float integral", `{"amount":2000.0}`, nil, "amount=2000"},
		{"float fraction", `{"rate":0.5}`, nil, "rate=0.5"},
		{"exponent", `{"n":1e21}`, nil, "n=1e%2B21"},
		{"big integer kept", `{"n":12345678901234567890}`, nil, "n=12345678901234567890"},
		{"negative zero", `{"n":-0}`, nil, "n=0"},
		{"spaces encoded", `{"q":"a b"}`, nil, "q=a%20b"},
		{"spaces raw", `{"q":"a b"}`, []Option{WithEncodeURI(false)}, "q=a b"},
		{"keys not encoded", `{"a b":"c"}`, nil, "a b=c"},
		{"nested mapping", `{"m":{"y":1,"x":null}}`, []Option{WithEncodeURI(false)}, `m={"x":null,"y":1}`},
		{"nested empty", `{"m":{},"s":[]}`, []Option{WithEncodeURI(false)}, "m={}&s=[]"},
		{"sequence order kept", `{"s":[3,1,2]}`, []Option{WithEncodeURI(false)}, "s=[3,1,2]"},
		{"sequence sorted", `{"s":[3,1,2]}`, []Option{WithEncodeURI(false), WithSortArrays(true)}, "s=[1,2,3]"},
		{"deep sort", `{"s":[{"t":["b","a"]}]}`, []Option{WithEncodeURI(false), WithSortArrays(true)}, `s=[{"t":["a","b"]}]`},
		{"scalar string", `"hello world"`, nil, "hello%20world"},
		{"scalar number", `42`, nil, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(mustParse(t, tt.in), tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortedPairs(t *testing.T) {
	pairs := SortedPairs(mustParse(t, `{"orderCode":1,"amount":2,"Zeta":3,"skip":null}`))

	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"Zeta", "amount", "orderCode"}, keys)
	assert.Nil(t, SortedPairs(String("x")))
}

func TestEncodeURIComponent(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"abcXYZ019":       "abcXYZ019",
		"-_.!~*'()":       "-_.!~*'()",
		"a b":             "a%20b",
		"a+b=c&d":         "a%2Bb%3Dc%26d",
		"https://x.vn/?q": "https%3A%2F%2Fx.vn%2F%3Fq",
		"Thành":           "Th%C3%A0nh",
		"#$,/:;?@[]":      "%23%24%2C%2F%3A%3B%3F%40%5B%5D",
	}
	for in, want := range tests {
		assert.Equal(t, want, EncodeURIComponent(in), "input %q", in)
	}
}
