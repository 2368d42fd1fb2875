package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"

	"payos/internal/pkg/errors"
)

// Algorithm names the HMAC hash.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// ParseAlgorithm matches the name case-insensitively.
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := a.hashFunc(); !ok {
		return "", errors.Newf(errors.KindConfiguration, "unsupported algorithm: %q", name)
	}
	return a, nil
}

func (a Algorithm) hashFunc() (func() hash.Hash, bool) {
	switch Algorithm(strings.ToLower(string(a))) {
	case MD5:
		return md5.New, true
	case SHA1:
		return sha1.New, true
	case SHA256:
		return sha256.New, true
	case SHA512:
		return sha512.New, true
	}
	return nil, false
}

// DigestLen is the hex length of a signature made with a.
func (a Algorithm) DigestLen() int {
	h, ok := a.hashFunc()
	if !ok {
		return 0
	}
	return h().Size() * 2
}

func hmacHex(h func() hash.Hash, key, msg string) string {
	mac := hmac.New(h, []byte(key))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignObject signs the canonical form of v with HMAC-SHA256. It reports false
// when there is nothing to sign with or nothing to sign, which callers must
// treat as "cannot verify". WithAlgorithm is ignored here.
func SignObject(v Value, key string, opts ...Option) (string, bool) {
	if key == "" || v.IsNull() {
		return "", false
	}
	o := buildOptions(opts)
	s, err := canonicalize(v, o)
	if err != nil {
		return "", false
	}
	return hmacHex(sha256.New, key, s), true
}

// SignPaymentRequest signs the fixed payment-link tuple. It reports false when
// the key is empty or any of the five fields is missing.
func SignPaymentRequest(v Value, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	s, ok := PaymentRequestString(v)
	if !ok {
		return "", false
	}
	return hmacHex(sha256.New, key, s), true
}

// paymentRequestFields is the order the gateway signs a payment link in.
var paymentRequestFields = [...]string{"amount", "cancelUrl", "description", "orderCode", "returnUrl"}

// PaymentRequestString builds "amount=..&cancelUrl=..&description=..&orderCode=..&returnUrl=..".
// Keys may arrive snake_case. Values are never URI-encoded.
func PaymentRequestString(v Value) (string, bool) {
	if v.kind != KindMapping {
		return "", false
	}
	v = ToCamelKeys(v, false)

	parts := make([]string, 0, len(paymentRequestFields))
	for _, k := range paymentRequestFields {
		e, ok := v.Get(k)
		if !ok || e.IsNull() {
			return "", false
		}
		s, err := renderValue(e, options{})
		if err != nil {
			return "", false
		}
		parts = append(parts, k+"="+s)
	}
	return strings.Join(parts, "&"), true
}

// Sign is the general signer used for header and body signatures.
// Defaults: sha256, URI encoding on, arrays unsorted.
func Sign(key string, payload Value, opts ...Option) (string, error) {
	o := buildOptions(opts)
	h, ok := o.algorithm.hashFunc()
	if !ok {
		return "", errors.Newf(errors.KindConfiguration, "unsupported algorithm: %q", string(o.algorithm))
	}
	s, err := canonicalize(payload, o)
	if err != nil {
		return "", errors.Wrap(errors.KindMalformed, "cannot canonicalize payload", err)
	}
	return hmacHex(h, key, s), nil
}

// Equal is a full-string comparison of two signatures. An empty expected
// value never matches.
func Equal(expected, actual string) bool {
	return expected != "" && expected == actual
}
