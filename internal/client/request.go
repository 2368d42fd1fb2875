package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"payos/internal/engine/signature"
	"payos/internal/pkg/errors"
)

// SignatureRequest selects how an outgoing request is signed.
type SignatureRequest string

const (
	SignRequestNone              SignatureRequest = ""
	SignRequestHeader            SignatureRequest = "header"
	SignRequestBody              SignatureRequest = "body"
	SignRequestCreatePaymentLink SignatureRequest = "create-payment-link"
)

// SignatureResponse selects where the response signature is read from.
type SignatureResponse string

const (
	VerifyResponseNone   SignatureResponse = ""
	VerifyResponseHeader SignatureResponse = "header"
	VerifyResponseBody   SignatureResponse = "body"
)

const signatureHeader = "x-signature"

type RequestOptions struct {
	Method            string
	Path              string
	Query             map[string]any
	Body              any
	Headers           map[string]string
	SignatureRequest  SignatureRequest
	SignatureResponse SignatureResponse
}

// RequestOption adjusts the options of a Get/Post/Put/Patch/Delete call.
type RequestOption func(*RequestOptions)

func WithQuery(q map[string]any) RequestOption {
	return func(o *RequestOptions) { o.Query = q }
}

func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = map[string]string{}
		}
		o.Headers[key] = value
	}
}

func WithRequestSignature(mode SignatureRequest) RequestOption {
	return func(o *RequestOptions) { o.SignatureRequest = mode }
}

func WithResponseSignature(mode SignatureResponse) RequestOption {
	return func(o *RequestOptions) { o.SignatureResponse = mode }
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Request(ctx, buildRequest(http.MethodGet, path, nil, opts), out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Request(ctx, buildRequest(http.MethodPost, path, body, opts), out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Request(ctx, buildRequest(http.MethodPut, path, body, opts), out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Request(ctx, buildRequest(http.MethodPatch, path, body, opts), out)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Request(ctx, buildRequest(http.MethodDelete, path, nil, opts), out)
}

func buildRequest(method, path string, body any, opts []RequestOption) RequestOptions {
	ro := RequestOptions{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}

// Request sends one API call, retrying transient failures, and decodes the
// envelope's data field into out. out may be nil.
func (c *Client) Request(ctx context.Context, opts RequestOptions, out any) error {
	resp, err := c.execute(ctx, opts)
	if err != nil {
		return err
	}
	if resp.status >= 400 {
		return errors.APIErrorFromBody(resp.status, resp.body)
	}

	env, err := signature.Parse(resp.body)
	if err != nil {
		return errors.Wrap(errors.KindMalformed, "invalid response body", err)
	}
	if env.Kind() != signature.KindMapping {
		return errors.New(errors.KindMalformed, "response body is not a JSON object")
	}

	code := stringField(env, "code")
	if code != "00" {
		return errors.NewAPIError(resp.status, code, stringField(env, "desc"), resp.body)
	}

	data, _ := env.Get("data")
	if err := c.verifyResponse(opts.SignatureResponse, env, data, resp.header); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := data.Decode(out); err != nil {
		return errors.Wrap(errors.KindMalformed, "cannot decode response data", err)
	}
	return nil
}

func (c *Client) verifyResponse(mode SignatureResponse, env, data signature.Value, header http.Header) error {
	var got, expected string
	switch mode {
	case VerifyResponseNone:
		return nil
	case VerifyResponseBody:
		got = stringField(env, "signature")
		if got == "" {
			return errors.Wrap(errors.KindValidation, "signature missing", errors.ErrInvalidSignature)
		}
		expected, _ = signature.SignObject(data, c.cfg.ChecksumKey)
	case VerifyResponseHeader:
		got = header.Get(signatureHeader)
		if got == "" {
			return errors.Wrap(errors.KindValidation, "signature missing", errors.ErrInvalidSignature)
		}
		sig, err := signature.Sign(c.cfg.ChecksumKey, data)
		if err != nil {
			return err
		}
		expected = sig
	default:
		return errors.Newf(errors.KindConfiguration, "unknown response signature mode %q", mode)
	}

	if !signature.Equal(expected, got) {
		return errors.Wrap(errors.KindIntegrity, "signature mismatch", errors.ErrInvalidSignature)
	}
	return nil
}

func (c *Client) buildURL(path string, query map[string]any) (string, error) {
	u := c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) == 0 {
		return u, nil
	}
	qs, err := encodeQuery(query)
	if err != nil {
		return "", err
	}
	if qs == "" {
		return u, nil
	}
	return u + "?" + qs, nil
}

// encodeQuery drops nil values and JSON-encodes maps, slices and structs.
// Keys come out sorted.
func encodeQuery(query map[string]any) (string, error) {
	vals := url.Values{}
	for k, v := range query {
		s, ok, err := queryValue(v)
		if err != nil {
			return "", errors.Wrap(errors.KindValidation, "invalid query parameter "+k, err)
		}
		if ok {
			vals.Set(k, s)
		}
	}
	return vals.Encode(), nil
}

func queryValue(v any) (string, bool, error) {
	if v == nil {
		return "", false, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false, nil
		}
		rv = rv.Elem()
		v = rv.Interface()
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}
	return fmt.Sprint(v), true, nil
}

func (c *Client) buildHeaders(opts RequestOptions) http.Header {
	h := http.Header{}
	h.Set("x-client-id", c.cfg.ClientID)
	h.Set("x-api-key", c.cfg.APIKey)
	h.Set("content-type", "application/json")
	h.Set("user-agent", userAgent())
	if c.cfg.PartnerCode != "" {
		h.Set("x-partner-code", c.cfg.PartnerCode)
	}
	for k, v := range opts.Headers {
		h.Set(k, v)
	}
	return h
}

// prepareBody serialises the request body and applies request signing. A
// non-empty second result is the value of the x-signature header.
func (c *Client) prepareBody(opts RequestOptions) ([]byte, string, error) {
	if opts.SignatureRequest == SignRequestNone {
		b, err := encodeBody(opts.Body)
		return b, "", err
	}

	v, err := bodyValue(opts.Body)
	if err != nil {
		return nil, "", err
	}

	switch opts.SignatureRequest {
	case SignRequestHeader:
		sig, err := signature.Sign(c.cfg.ChecksumKey, v)
		if err != nil {
			return nil, "", err
		}
		b, err := encodeBody(opts.Body)
		return b, sig, err
	case SignRequestBody:
		sig, ok := signature.SignObject(v, c.cfg.ChecksumKey)
		if !ok {
			return nil, "", errors.New(errors.KindValidation, "request body cannot be signed")
		}
		b, err := v.With("signature", signature.String(sig)).MarshalJSON()
		return b, "", err
	case SignRequestCreatePaymentLink:
		sig, ok := signature.SignPaymentRequest(v, c.cfg.ChecksumKey)
		if !ok {
			return nil, "", errors.New(errors.KindValidation,
				"payment request needs amount, cancelUrl, description, orderCode and returnUrl to be signed")
		}
		b, err := v.With("signature", signature.String(sig)).MarshalJSON()
		return b, "", err
	}
	return nil, "", errors.Newf(errors.KindConfiguration, "unknown request signature mode %q", opts.SignatureRequest)
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	}
	out, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(errors.KindValidation, "cannot encode request body", err)
	}
	return out, nil
}

func bodyValue(body any) (signature.Value, error) {
	var (
		v   signature.Value
		err error
	)
	switch b := body.(type) {
	case []byte:
		v, err = signature.Parse(b)
	case json.RawMessage:
		v, err = signature.Parse(b)
	case string:
		v, err = signature.Parse([]byte(b))
	default:
		v, err = signature.FromAny(body)
	}
	if err != nil {
		return signature.Null(), errors.Wrap(errors.KindValidation, "request body is not valid JSON", err)
	}
	return v, nil
}

func stringField(v signature.Value, key string) string {
	f, ok := v.Get(key)
	if !ok {
		return ""
	}
	s, _ := f.AsString()
	return s
}
