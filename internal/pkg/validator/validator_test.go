package validator

import (
	"testing"
)

func TestPositiveNumber(t *testing.T) {
	tests := []struct {
		name    string
		v       any
		wantErr bool
	}{
		{"int", 1, false},
		{"int64", int64(60), false},
		{"uint8", uint8(3), false},
		{"float", 0.5, false},
		{"zero", 0, true},
		{"zero float", 0.0, true},
		{"negative", -1, true},
		{"negative float", -0.1, true},
		{"string", "60", true},
		{"nil", nil, true},
		{"bool", true, true},
		{"slice", []int{1}, true},
		{"map", map[string]int{"a": 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PositiveNumber("timeout", tt.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("PositiveNumber(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil && err.Error() != "timeout must be a positive number" {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestHTTPURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://example.com/return", false},
		{"http://localhost:3000/cancel?x=1", false},
		{"ftp://example.com", true},
		{"/relative/path", true},
		{"", true},
		{"https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if err := HTTPURL("returnUrl", tt.raw); (err != nil) != tt.wantErr {
				t.Errorf("HTTPURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"buyer@gmail.com", false},
		{"nguyen.van.a@company.vn", false},
		{"no-at-sign", true},
		{"a@b@c.com", true},
		{"@example.com", true},
		{"user@localhost", true},
		{"Name <user@example.com>", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if err := Email(tt.email); (err != nil) != tt.wantErr {
				t.Errorf("Email(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}
