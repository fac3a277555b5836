package router

import (
	"fmt"
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/directory/api/handler"
	"github.com/fastygo/directory/api/transport"
	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/internal/middleware"
	"github.com/fastygo/directory/pkg/httpcontext"
)

type Handlers struct {
	User   *apiHandler.UserHandler
	Post   *apiHandler.PostHandler
	Health *apiHandler.HealthHandler
}

// New registers the API routes. When auth is nil the mutating routes are open.
func New(handlers Handlers, auth middleware.Middleware, logger *zap.Logger) *router.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if auth == nil {
		auth = func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}

	r := router.New()
	r.PanicHandler = panicHandler(logger)
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		writeError(ctx, http.StatusNotFound, string(domain.ErrCodeNotFound), "route not found")
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		writeError(ctx, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}

	r.GET("/health", handlers.Health.Check)

	r.POST("/api/v1/users", auth(handlers.User.Create))
	r.GET("/api/v1/users", handlers.User.List)
	r.GET("/api/v1/users/{id}", handlers.User.Get)
	r.PATCH("/api/v1/users/{id}", auth(handlers.User.Update))
	r.DELETE("/api/v1/users/{id}", auth(handlers.User.Delete))

	r.POST("/api/v1/posts", auth(handlers.Post.Create))
	r.GET("/api/v1/posts", handlers.Post.List)
	r.GET("/api/v1/posts/{id}", handlers.Post.Get)
	r.PATCH("/api/v1/posts/{id}", auth(handlers.Post.Update))
	r.DELETE("/api/v1/posts/{id}", auth(handlers.Post.Delete))

	return r
}

func panicHandler(logger *zap.Logger) func(*fasthttp.RequestCtx, interface{}) {
	return func(ctx *fasthttp.RequestCtx, rcv interface{}) {
		logger.Error("panic while serving request",
			zap.String("method", string(ctx.Method())),
			zap.String("path", string(ctx.Path())),
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.String("panic", fmt.Sprint(rcv)),
			zap.Stack("stack"),
		)
		writeError(ctx, http.StatusInternalServerError, string(domain.ErrCodeInternal), "internal server error")
	}
}

func writeError(ctx *fasthttp.RequestCtx, status int, code, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(transport.NewError(code, message, nil).Marshal())
}
