package signature

import (
	"strings"
	"unicode"
)

// CamelCase converts snake_case to camelCase: "order_code" -> "orderCode".
// Keys without underscores come back unchanged.
func CamelCase(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	var b strings.Builder
	first := true
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		if first {
			b.WriteString(part)
			first = false
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// SnakeCase converts camelCase to snake_case. Acronym runs stay together:
// "paymentLinkId" -> "payment_link_id", "HTTPStatus" -> "http_status".
func SnakeCase(s string) string {
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, c := range r {
		if unicode.IsUpper(c) {
			if i > 0 && r[i-1] != '_' {
				prevLower := unicode.IsLower(r[i-1]) || unicode.IsDigit(r[i-1])
				nextLower := i+1 < len(r) && unicode.IsLower(r[i+1])
				if prevLower || (unicode.IsUpper(r[i-1]) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(c))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// ToCamelKeys renames mapping keys to camelCase. With deep it also rewrites
// mappings nested in values and sequences. When two keys collide the one that
// was already camelCase wins.
func ToCamelKeys(v Value, deep bool) Value {
	return renameKeys(v, CamelCase, deep)
}

// ToSnakeKeys is the inverse of ToCamelKeys.
func ToSnakeKeys(v Value, deep bool) Value {
	return renameKeys(v, SnakeCase, deep)
}

func renameKeys(v Value, rename func(string) string, deep bool) Value {
	switch v.kind {
	case KindMapping:
		out := make(map[string]Value, len(v.entries))
		native := make(map[string]bool, len(v.entries))
		for _, k := range v.Keys() {
			e := v.entries[k]
			if deep {
				e = renameKeys(e, rename, deep)
			}
			nk := rename(k)
			isNative := nk == k
			if _, taken := out[nk]; taken && native[nk] && !isNative {
				continue
			}
			out[nk] = e
			native[nk] = native[nk] || isNative
		}
		return Value{kind: KindMapping, entries: out}
	case KindSequence:
		if !deep {
			return v
		}
		items := make([]Value, len(v.items))
		for i, it := range v.items {
			items[i] = renameKeys(it, rename, deep)
		}
		return Value{kind: KindSequence, items: items}
	}
	return v
}
