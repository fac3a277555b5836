package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/directory/api/transport"
	"github.com/fastygo/directory/pkg/httpcontext"
	"github.com/fastygo/directory/usecase/user"
)

type UserHandler struct {
	baseHandler
	users *user.UseCase
}

func NewUserHandler(users *user.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, logger),
		users:       users,
	}
}

// @Summary Create user
// @Tags users
// @Router /api/v1/users [post]
func (h *UserHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var in user.CreateInput
	if err := transport.DecodeJSON(ctx, &in); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	log := h.log(stdCtx)
	log.Info("creating user", zap.String("email", in.Email), zap.String("username", in.Username))

	resp, err := h.users.Create(stdCtx, in)
	if err != nil {
		log.Warn("user creation rejected", zap.Error(err))
		h.respondError(stdCtx, ctx, err)
		return
	}

	log.Info("user created", zap.Int64("user_id", resp.ID))
	h.respondSuccess(ctx, http.StatusCreated, resp)
}

// @Summary List users
// @Tags users
// @Router /api/v1/users [get]
func (h *UserHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	q, err := transport.ParseUserListQuery(ctx.QueryArgs())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	resp, err := h.users.List(stdCtx, user.ListInput{
		Page:     q.Page,
		PageSize: q.PageSize,
		Sort:     q.Sort,
		Order:    q.Order,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}

func (h *UserHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.PathID(ctx, "id")
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	resp, err := h.users.Get(stdCtx, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}

func (h *UserHandler) Update(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.PathID(ctx, "id")
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	var in user.UpdateInput
	if err := transport.DecodeJSON(ctx, &in); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	resp, err := h.users.Update(stdCtx, id, in)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	h.log(stdCtx).Info("user updated", zap.Int64("user_id", id))
	h.respondSuccess(ctx, http.StatusOK, resp)
}

func (h *UserHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.PathID(ctx, "id")
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	if err := h.users.Delete(stdCtx, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	h.log(stdCtx).Info("user deleted", zap.Int64("user_id", id))
	h.respondNoContent(ctx)
}
