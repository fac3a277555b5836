package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/internal/infrastructure/monitor"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.NewError(domain.ErrCodeForbidden, "no"), http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrAuthorNotFound, http.StatusBadRequest, "INVALID"},
		{domain.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("create: %w", domain.ErrEmailTaken), http.StatusConflict, "CONFLICT"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := mapError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestRespondError_HidesInternalCause(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := newBaseHandler(nil, zap.New(core))

	ctx := &fasthttp.RequestCtx{}
	h.respondError(context.Background(), ctx, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"error","code":"INTERNAL","error":"internal server error"}`, string(ctx.Response.Body()))
	require.Equal(t, 1, logs.FilterMessage("request failed").Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "connection refused")
}

func TestRespondError_UsesDomainMessage(t *testing.T) {
	h := newBaseHandler(nil, nil)

	ctx := &fasthttp.RequestCtx{}
	h.respondError(context.Background(), ctx, domain.ErrEmailTaken.Wrap(errors.New("duplicate key value")))

	assert.Equal(t, http.StatusConflict, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"error","code":"CONFLICT","error":"email already registered"}`, string(ctx.Response.Body()))
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
}

type fixedStatus monitor.Status

func (s fixedStatus) GetStatus() monitor.Status { return monitor.Status(s) }

func TestHealthHandler_ReportsRedisOnlyWhenEnabled(t *testing.T) {
	h := NewHealthHandler(fixedStatus{Database: true, Buffer: true, BufferSize: 4}, "sqlite", nil, nil)

	ctx := &fasthttp.RequestCtx{}
	h.Check(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, `"driver":"sqlite"`)
	assert.Contains(t, body, `"redis":{"enabled":false}`)
	assert.Contains(t, body, `"size":4`)

	h = NewHealthHandler(fixedStatus{Database: false}, "postgres", nil, nil)
	ctx = &fasthttp.RequestCtx{}
	h.Check(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
}
