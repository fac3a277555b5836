package router

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/directory/api/handler"
	"github.com/fastygo/directory/internal/infrastructure/monitor"
	"github.com/fastygo/directory/internal/middleware"
	"github.com/fastygo/directory/pkg/httpcontext"
	"github.com/fastygo/directory/repository/memory"
	"github.com/fastygo/directory/usecase"
	"github.com/fastygo/directory/usecase/post"
	"github.com/fastygo/directory/usecase/user"
)

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

type apiClient struct {
	t       *testing.T
	handler fasthttp.RequestHandler
	token   string
}

func newAPI(t *testing.T, auth middleware.Middleware, status monitor.Status) *apiClient {
	t.Helper()
	store := memory.New(nil)
	adapter := httpcontext.NewAdapter(time.Second)

	r := New(Handlers{
		User:   apiHandler.NewUserHandler(user.New(store, usecase.NopNotifier{}, nil), adapter, nil),
		Post:   apiHandler.NewPostHandler(post.New(store, nil), adapter, nil),
		Health: apiHandler.NewHealthHandler(staticStatus(status), "memory", adapter, nil),
	}, auth, nil)
	return &apiClient{t: t, handler: r.Handler}
}

func (c *apiClient) do(method, uri, body string) (int, envelope) {
	c.t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	c.handler(ctx)

	var env envelope
	if raw := ctx.Response.Body(); len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	}
	return ctx.Response.StatusCode(), env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestUsers_CRUD(t *testing.T) {
	api := newAPI(t, nil, monitor.Status{Database: true})

	status, env := api.do("POST", "/api/v1/users", `{"email":"Alice@Example.com","username":"alice","full_name":"Alice"}`)
	require.Equal(t, fasthttp.StatusCreated, status, env.Error)
	created := decode[user.Response](t, env.Data)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.True(t, created.IsActive)

	status, env = api.do("POST", "/api/v1/users", `{"email":"alice@example.com","username":"other"}`)
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Code)
	assert.Equal(t, "email already registered", env.Error)

	status, env = api.do("POST", "/api/v1/users", `{"email":"bob@example.com","username":"alice"}`)
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, "username already taken", env.Error)

	status, env = api.do("GET", fmt.Sprintf("/api/v1/users/%d", created.ID), "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, created.ID, decode[user.Response](t, env.Data).ID)

	status, env = api.do("PATCH", fmt.Sprintf("/api/v1/users/%d", created.ID), `{"is_active":false,"full_name":"Alice L."}`)
	require.Equal(t, fasthttp.StatusOK, status, env.Error)
	updated := decode[user.Response](t, env.Data)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Alice L.", *updated.FullName)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	status, _ = api.do("DELETE", fmt.Sprintf("/api/v1/users/%d", created.ID), "")
	assert.Equal(t, fasthttp.StatusNoContent, status)

	status, env = api.do("GET", fmt.Sprintf("/api/v1/users/%d", created.ID), "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "user not found", env.Error)
}

func TestUsers_ValidationErrors(t *testing.T) {
	api := newAPI(t, nil, monitor.Status{Database: true})

	cases := map[string]struct {
		method, uri, body string
	}{
		"bad email":       {"POST", "/api/v1/users", `{"email":"nope","username":"alice"}`},
		"short username":  {"POST", "/api/v1/users", `{"email":"a@example.com","username":"al"}`},
		"malformed json":  {"POST", "/api/v1/users", `{"email":`},
		"page zero":       {"GET", "/api/v1/users?page=0", ""},
		"page size above": {"GET", "/api/v1/users?page_size=101", ""},
		"unknown sort":    {"GET", "/api/v1/users?sort=password", ""},
		"bad id":          {"GET", "/api/v1/users/abc", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, env := api.do(tc.method, tc.uri, tc.body)
			assert.Equal(t, fasthttp.StatusBadRequest, status)
			assert.Equal(t, "INVALID", env.Code)
			assert.Equal(t, "error", env.Status)
		})
	}
}

func TestUsers_ListPaging(t *testing.T) {
	api := newAPI(t, nil, monitor.Status{Database: true})
	for i := 0; i < 3; i++ {
		status, env := api.do("POST", "/api/v1/users", fmt.Sprintf(`{"email":"u%d@example.com","username":"user%d"}`, i, i))
		require.Equal(t, fasthttp.StatusCreated, status, env.Error)
	}

	status, env := api.do("GET", "/api/v1/users?page=1&page_size=2", "")
	require.Equal(t, fasthttp.StatusOK, status)
	list := decode[user.ListResponse](t, env.Data)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "user2", list.Items[0].Username)

	status, env = api.do("GET", "/api/v1/users?sort=username&order=asc&page=2&page_size=2", "")
	require.Equal(t, fasthttp.StatusOK, status)
	list = decode[user.ListResponse](t, env.Data)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "user2", list.Items[0].Username)
	assert.Equal(t, 2, list.Page)
}

func TestPosts_Flow(t *testing.T) {
	api := newAPI(t, nil, monitor.Status{Database: true})

	_, env := api.do("POST", "/api/v1/users", `{"email":"a@example.com","username":"author"}`)
	author := decode[user.Response](t, env.Data)

	status, env := api.do("POST", "/api/v1/posts", `{"title":"Hi","content":"Body","user_id":999}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "author does not exist", env.Error)

	status, env = api.do("POST", "/api/v1/posts", fmt.Sprintf(`{"title":"Draft","content":"Body","user_id":%d}`, author.ID))
	require.Equal(t, fasthttp.StatusCreated, status, env.Error)
	draft := decode[post.Response](t, env.Data)
	assert.False(t, draft.IsPublished)

	status, _ = api.do("POST", "/api/v1/posts", fmt.Sprintf(`{"title":"Live","content":"Body","user_id":%d,"is_published":true}`, author.ID))
	require.Equal(t, fasthttp.StatusCreated, status)

	status, env = api.do("GET", fmt.Sprintf("/api/v1/posts?user_id=%d&published=true", author.ID), "")
	require.Equal(t, fasthttp.StatusOK, status)
	list := decode[post.ListResponse](t, env.Data)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "Live", list.Items[0].Title)

	status, env = api.do("PATCH", fmt.Sprintf("/api/v1/posts/%d", draft.ID), `{"is_published":true}`)
	require.Equal(t, fasthttp.StatusOK, status)
	assert.True(t, decode[post.Response](t, env.Data).IsPublished)

	status, _ = api.do("DELETE", fmt.Sprintf("/api/v1/users/%d", author.ID), "")
	require.Equal(t, fasthttp.StatusNoContent, status)

	status, _ = api.do("GET", fmt.Sprintf("/api/v1/posts/%d", draft.ID), "")
	assert.Equal(t, fasthttp.StatusNotFound, status)

	status, _ = api.do("DELETE", fmt.Sprintf("/api/v1/posts/%d", draft.ID), "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
}

func TestAuth_GuardsMutatingRoutesOnly(t *testing.T) {
	const secret = "router-secret"
	api := newAPI(t, middleware.JWTAuth(secret, "", nil), monitor.Status{Database: true})

	status, env := api.do("POST", "/api/v1/users", `{"email":"a@example.com","username":"alice"}`)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	status, _ = api.do("GET", "/api/v1/users", "")
	assert.Equal(t, fasthttp.StatusOK, status)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops"}).SignedString([]byte(secret))
	require.NoError(t, err)
	api.token = token

	status, env = api.do("POST", "/api/v1/users", `{"email":"a@example.com","username":"alice"}`)
	assert.Equal(t, fasthttp.StatusCreated, status, env.Error)
}

func TestHealth(t *testing.T) {
	api := newAPI(t, nil, monitor.Status{Database: true, Buffer: true})
	status, env := api.do("GET", "/health", "")
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, "success", env.Status)

	api = newAPI(t, nil, monitor.Status{Database: true, RedisEnabled: true, Redis: false})
	status, env = api.do("GET", "/health", "")
	assert.Equal(t, fasthttp.StatusServiceUnavailable, status)
	assert.Equal(t, "DEGRADED", env.Code)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	api := newAPI(t, nil, monitor.Status{Database: true})

	status, env := api.do("GET", "/api/v1/nothing", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	status, _ = api.do("PUT", "/api/v1/users/1", `{}`)
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, status)
}

func TestPanicHandler(t *testing.T) {
	var req fasthttp.Request
	req.SetRequestURI("/boom")
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)

	panicHandler(zap.NewNop())(ctx, "kaboom")

	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"error","code":"INTERNAL","error":"internal server error"}`, string(ctx.Response.Body()))
}
