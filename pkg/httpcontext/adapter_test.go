package httpcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/directory/pkg/logger"
)

func newCtx(headers map[string]string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.SetUserAgent("tests/1.0")
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func TestAttach_PropagatesRequestID(t *testing.T) {
	fctx := newCtx(map[string]string{HeaderRequestID: "abc-123"})
	ctx, cancel := NewAdapter(time.Second).Attach(fctx)
	defer cancel()

	assert.Equal(t, "abc-123", appLogger.RequestIDFromContext(ctx))
	assert.Equal(t, "abc-123", string(fctx.Response.Header.Peek(HeaderRequestID)))
	assert.Equal(t, "tests/1.0", ctx.Value(KeyUserAgent))

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
}

func TestAttach_GeneratesStableRequestID(t *testing.T) {
	fctx := newCtx(nil)
	first := RequestID(fctx)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(fctx))

	ctx, cancel := NewAdapter(0).Attach(fctx)
	defer cancel()
	assert.Equal(t, first, appLogger.RequestIDFromContext(ctx))
}

func TestAttach_CarriesSubject(t *testing.T) {
	fctx := newCtx(nil)
	fctx.SetUserValue(string(KeySubject), "user-42")

	ctx, cancel := NewAdapter(time.Second).Attach(fctx)
	defer cancel()
	assert.Equal(t, "user-42", ctx.Value(KeySubject))

	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
