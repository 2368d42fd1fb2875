package context

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type Key string

const (
	Claims    Key = "claims"
	Request   Key = "request"
	RequestID Key = "request_id"
	Params    Key = "params"
)

// WithRequest stores r so that audit records can pick up the caller's address.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, Request, r)
}

func RequestFrom(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(Request).(*http.Request)
	return r, ok
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestID).(string)
	return id
}

// Param returns the named route parameter injected by the router.
func Param(ctx context.Context, name string) string {
	ps, _ := ctx.Value(Params).(httprouter.Params)
	return ps.ByName(name)
}
