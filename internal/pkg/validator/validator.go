package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strings"
)

// PositiveNumber accepts any Go integer or float kind strictly above zero.
func PositiveNumber(name string, v any) error {
	err := fmt.Errorf("%s must be a positive number", name)
	if v == nil {
		return err
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() > 0 {
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.Uint() > 0 {
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if rv.Float() > 0 {
			return nil
		}
	}
	return err
}

// HTTPURL requires an absolute http or https URL with a host.
func HTTPURL(name, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL", name)
	}
	return nil
}

// Email checks the shape of a buyer address. No DNS lookups are made; buyers
// pay from consumer mailboxes so every domain is allowed.
func Email(email string) error {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || !strings.Contains(parts[1], ".") {
		return fmt.Errorf("invalid email format")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format")
	}
	return nil
}
