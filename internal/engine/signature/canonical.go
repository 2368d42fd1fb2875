package signature

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gowebpki/jcs"
)

// Pair is one flattened key=value entry of a mapping.
type Pair struct {
	Key   string
	Value Value
}

type options struct {
	algorithm  Algorithm
	encodeURI  bool
	sortArrays bool
}

func defaultOptions() options {
	return options{algorithm: SHA256, encodeURI: true}
}

// Option tunes canonicalization and signing.
type Option func(*options)

func WithAlgorithm(a Algorithm) Option {
	return func(o *options) { o.algorithm = a }
}

// WithEncodeURI toggles percent-encoding of rendered values. On by default.
func WithEncodeURI(on bool) Option {
	return func(o *options) { o.encodeURI = on }
}

// WithSortArrays orders every sequence by the canonical JSON of its elements.
func WithSortArrays(on bool) Option {
	return func(o *options) { o.sortArrays = on }
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SortedPairs returns the non-null entries of a mapping ordered by key.
// Anything other than a mapping has no pairs.
func SortedPairs(v Value) []Pair {
	if v.kind != KindMapping {
		return nil
	}
	pairs := make([]Pair, 0, len(v.entries))
	for _, k := range v.Keys() {
		e := v.entries[k]
		if e.IsNull() {
			continue
		}
		pairs = append(pairs, Pair{Key: k, Value: e})
	}
	return pairs
}

// Canonicalize renders v into the string that gets signed.
//
// A mapping becomes k=v pairs joined by '&' in key order with null entries
// dropped. Nested sequences and mappings are rendered as RFC 8785 JSON.
// A top-level null is the empty string.
func Canonicalize(v Value, opts ...Option) (string, error) {
	return canonicalize(v, buildOptions(opts))
}

func canonicalize(v Value, o options) (string, error) {
	if o.sortArrays {
		sorted, err := sortSequences(v)
		if err != nil {
			return "", err
		}
		v = sorted
	}

	switch v.kind {
	case KindNull:
		return "", nil
	case KindMapping:
		pairs := SortedPairs(v)
		parts := make([]string, 0, len(pairs))
		for _, p := range pairs {
			s, err := renderValue(p.Value, o)
			if err != nil {
				return "", fmt.Errorf("field %q: %w", p.Key, err)
			}
			parts = append(parts, p.Key+"="+s)
		}
		return strings.Join(parts, "&"), nil
	default:
		return renderValue(v, o)
	}
}

func renderValue(v Value, o options) (string, error) {
	var s string
	switch v.kind {
	case KindNull:
		return "", nil
	case KindBool:
		s = strconv.FormatBool(v.b)
	case KindNumber:
		s = formatNumber(v.str)
	case KindString:
		s = v.str
	case KindSequence, KindMapping:
		b, err := canonicalJSON(v)
		if err != nil {
			return "", err
		}
		s = string(b)
	default:
		return "", fmt.Errorf("unknown value kind %d", v.kind)
	}
	if o.encodeURI {
		s = EncodeURIComponent(s)
	}
	return s, nil
}

// canonicalJSON is the RFC 8785 form of v.
func canonicalJSON(v Value) ([]byte, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}

// formatNumber keeps integer literals verbatim so values past 2^53 are not
// rounded, and formats everything else the way a JSON number prints in ES6.
func formatNumber(lit string) string {
	if isIntegerLiteral(lit) {
		if lit == "-0" {
			return "0"
		}
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return lit
	}
	s, err := jcs.NumberToJSON(f)
	if err != nil {
		return lit
	}
	return s
}

func isIntegerLiteral(lit string) bool {
	s := strings.TrimPrefix(lit, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// sortSequences returns a copy of v where every sequence, at any depth, is
// ordered by the canonical JSON of its elements.
func sortSequences(v Value) (Value, error) {
	switch v.kind {
	case KindSequence:
		type keyed struct {
			key string
			val Value
		}
		items := make([]keyed, len(v.items))
		for i, it := range v.items {
			sorted, err := sortSequences(it)
			if err != nil {
				return Value{}, err
			}
			b, err := canonicalJSON(sorted)
			if err != nil {
				return Value{}, err
			}
			items[i] = keyed{key: string(b), val: sorted}
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].key < items[j].key })
		out := make([]Value, len(items))
		for i, it := range items {
			out[i] = it.val
		}
		return Value{kind: KindSequence, items: out}, nil
	case KindMapping:
		out := make(map[string]Value, len(v.entries))
		for k, e := range v.entries {
			sorted, err := sortSequences(e)
			if err != nil {
				return Value{}, err
			}
			out[k] = sorted
		}
		return Value{kind: KindMapping, entries: out}, nil
	}
	return v, nil
}
