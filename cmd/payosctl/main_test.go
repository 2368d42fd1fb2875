package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payos/internal/engine/signature"
	"payos/internal/platform/auth"
	"payos/internal/platform/config"
)

const testKey = "checksum-key"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeResult(t *testing.T, out string) signResult {
	t.Helper()
	var res signResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestSignObject(t *testing.T) {
	payload := `{"orderCode":123,"description":"VQRIO 123","amount":1000,"note":null}`
	out, err := run(t, "", "sign", "object", "--key", testKey, "--data", payload)
	require.NoError(t, err)

	v, err := signature.Parse([]byte(payload))
	require.NoError(t, err)
	want, ok := signature.SignObject(v, testKey)
	require.True(t, ok)

	res := decodeResult(t, out)
	assert.Equal(t, want, res.Signature)
	assert.Equal(t, "amount=1000&description=VQRIO%20123&orderCode=123", res.Canonical)
	assert.Equal(t, "sha256", res.Algorithm)
}

func TestSignObjectNoEncodeFromStdin(t *testing.T) {
	out, err := run(t, `{"b":"x y","a":[2,1]}`, "sign", "object", "--key", testKey, "--data", "-", "--no-encode-uri", "--sort-arrays")
	require.NoError(t, err)
	assert.Equal(t, "a=[1,2]&b=x y", decodeResult(t, out).Canonical)
}

func TestSignObjectKeyFromEnv(t *testing.T) {
	t.Setenv("PAYOS_CHECKSUM_KEY", testKey)
	_, err := run(t, "", "sign", "object", "--data", `{"a":1}`)
	require.NoError(t, err)

	t.Setenv("PAYOS_CHECKSUM_KEY", "")
	_, err = run(t, "", "sign", "object", "--data", `{"a":1}`)
	assert.Error(t, err)
}

func TestSignPaymentRequestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"order_code": 123,
		"amount": 2000,
		"description": "Thanh toan don hang",
		"cancel_url": "https://shop.example/cancel",
		"return_url": "https://shop.example/return"
	}`), 0644))

	out, err := run(t, "", "sign", "payment-request", "--key", testKey, "--data", "@"+path)
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.Equal(t, "amount=2000&cancelUrl=https://shop.example/cancel&description=Thanh toan don hang&orderCode=123&returnUrl=https://shop.example/return", res.Canonical)
	assert.Len(t, res.Signature, 64)
}

func TestSignPaymentRequestMissingField(t *testing.T) {
	_, err := run(t, "", "sign", "payment-request", "--key", testKey, "--data", `{"amount":1}`)
	assert.ErrorContains(t, err, "orderCode")
}

func TestSignHMACAlgorithms(t *testing.T) {
	tests := []struct {
		algorithm string
		length    int
	}{
		{"md5", 32},
		{"sha1", 40},
		{"SHA256", 64},
		{"sha512", 128},
	}
	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			out, err := run(t, "", "sign", "hmac", "--key", testKey, "--algorithm", tt.algorithm, "--data", `{"amount":1000}`)
			require.NoError(t, err)
			res := decodeResult(t, out)
			assert.Len(t, res.Signature, tt.length)
			assert.Equal(t, strings.ToLower(tt.algorithm), res.Algorithm)
		})
	}

	_, err := run(t, "", "sign", "hmac", "--key", testKey, "--algorithm", "sha3", "--data", `{}`)
	assert.ErrorContains(t, err, "unsupported algorithm")
}

func TestSignRequiresData(t *testing.T) {
	_, err := run(t, "", "sign", "object", "--key", testKey)
	assert.ErrorContains(t, err, "no input")

	_, err = run(t, "", "sign", "object", "--key", testKey, "--data", "{broken")
	assert.Error(t, err)
}

func TestIdempotencyKey(t *testing.T) {
	out, err := run(t, "", "idempotency-key")
	require.NoError(t, err)
	_, err = uuid.Parse(strings.TrimSpace(out))
	assert.NoError(t, err)
}

func signedWebhook(t *testing.T, data map[string]any) []byte {
	t.Helper()
	v, err := signature.FromAny(data)
	require.NoError(t, err)
	sig, ok := signature.SignObject(v, testKey)
	require.True(t, ok)
	body, err := json.Marshal(map[string]any{"code": "00", "desc": "success", "success": true, "data": data, "signature": sig})
	require.NoError(t, err)
	return body
}

func TestWebhookVerify(t *testing.T) {
	body := signedWebhook(t, map[string]any{"orderCode": 123, "amount": 3000, "code": "00", "desc": "success"})
	path := filepath.Join(t.TempDir(), "webhook.json")
	require.NoError(t, os.WriteFile(path, body, 0644))

	out, err := run(t, "", "webhook", "verify", path, "--key", testKey)
	require.NoError(t, err)
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, float64(123), data["orderCode"])

	_, err = run(t, string(body), "webhook", "verify", "-", "--key", "other-key")
	assert.ErrorContains(t, err, "Data not integrity")
}

func gatewayEnv(t *testing.T, handler http.Handler) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("PAYOS_CLIENT_ID", "client-id")
	t.Setenv("PAYOS_API_KEY", "api-key")
	t.Setenv("PAYOS_CHECKSUM_KEY", testKey)
	t.Setenv("PAYOS_BASE_URL", srv.URL)
	t.Setenv("PAYOS_MAX_RETRIES", "0")
}

func TestWebhookConfirm(t *testing.T) {
	gatewayEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/confirm-webhook", r.URL.Path)
		assert.Equal(t, "client-id", r.Header.Get("x-client-id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"00","desc":"success","data":{"webhookUrl":"https://shop.example/hook","accountNumber":"123","accountName":"SHOP","name":"Shop","shortName":"SH"}}`))
	}))

	out, err := run(t, "", "webhook", "confirm", "https://shop.example/hook")
	require.NoError(t, err)
	assert.Contains(t, out, `"webhookUrl": "https://shop.example/hook"`)
}

func TestPayoutBalance(t *testing.T) {
	data := `{"accountNumber":"123","accountName":"SHOP","currency":"VND","balance":"1000000"}`
	v, err := signature.Parse([]byte(data))
	require.NoError(t, err)
	sig, err := signature.Sign(testKey, v)
	require.NoError(t, err)

	gatewayEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-signature", sig)
		w.Write([]byte(`{"code":"00","desc":"success","data":` + data + `}`))
	}))

	out, err := run(t, "", "payout", "balance")
	require.NoError(t, err)
	assert.Contains(t, out, `"accountNumber": "123"`)
}

func TestGatewayCommandsNeedCredentials(t *testing.T) {
	t.Setenv("PAYOS_CLIENT_ID", "")
	_, err := run(t, "", "payment", "get", "123")
	assert.ErrorContains(t, err, "client_id is required")
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "s3cret-pass\n", "hash-password")
	require.NoError(t, err)

	admin := config.AdminConfig{Username: "ops", PasswordHash: strings.TrimSpace(out)}
	assert.NoError(t, auth.Authenticate(admin, "ops", "s3cret-pass"))
	assert.Error(t, auth.Authenticate(admin, "ops", "wrong"))
}
