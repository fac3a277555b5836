package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/directory/api/transport"
	"github.com/fastygo/directory/pkg/httpcontext"
	"github.com/fastygo/directory/usecase/post"
)

type PostHandler struct {
	baseHandler
	posts *post.UseCase
}

func NewPostHandler(posts *post.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		baseHandler: newBaseHandler(adapter, logger),
		posts:       posts,
	}
}

// @Summary Create post
// @Tags posts
// @Router /api/v1/posts [post]
func (h *PostHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var in post.CreateInput
	if err := transport.DecodeJSON(ctx, &in); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	resp, err := h.posts.Create(stdCtx, in)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	h.log(stdCtx).Info("post created", zap.Int64("post_id", resp.ID), zap.Int64("user_id", resp.UserID))
	h.respondSuccess(ctx, http.StatusCreated, resp)
}

// @Summary List posts
// @Tags posts
// @Router /api/v1/posts [get]
func (h *PostHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	q, err := transport.ParsePostListQuery(ctx.QueryArgs())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	resp, err := h.posts.List(stdCtx, post.ListInput{
		Page:      q.Page,
		PageSize:  q.PageSize,
		UserID:    q.UserID,
		Published: q.Published,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}

func (h *PostHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.PathID(ctx, "id")
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	resp, err := h.posts.Get(stdCtx, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}

func (h *PostHandler) Update(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.PathID(ctx, "id")
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	var in post.UpdateInput
	if err := transport.DecodeJSON(ctx, &in); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	resp, err := h.posts.Update(stdCtx, id, in)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}

func (h *PostHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.PathID(ctx, "id")
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	if err := h.posts.Delete(stdCtx, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondNoContent(ctx)
}
