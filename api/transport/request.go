package transport

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/directory/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// PageQuery is the paging part of a list request.
type PageQuery struct {
	Page     int
	PageSize int
}

// UserListQuery is the query string of GET /api/v1/users.
type UserListQuery struct {
	PageQuery
	Sort  string
	Order string
}

// PostListQuery is the query string of GET /api/v1/posts.
type PostListQuery struct {
	PageQuery
	UserID    int64
	Published *bool
}

// DecodeJSON unmarshals the request body into dst. Malformed bodies yield
// domain.ErrInvalidPayload.
func DecodeJSON(ctx *fasthttp.RequestCtx, dst interface{}) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return domain.ErrInvalidPayload
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.ErrInvalidPayload.Wrap(err)
	}
	return nil
}

// PathID reads a positive integer route parameter.
func PathID(ctx *fasthttp.RequestCtx, name string) (int64, error) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalidf("invalid %s %q", name, raw)
	}
	return id, nil
}

// ParsePage reads page and page_size, falling back to the defaults when absent.
func ParsePage(args *fasthttp.Args) (PageQuery, error) {
	page, err := intArg(args, "page", DefaultPage)
	if err != nil {
		return PageQuery{}, err
	}
	size, err := intArg(args, "page_size", DefaultPageSize)
	if err != nil {
		return PageQuery{}, err
	}
	return PageQuery{Page: page, PageSize: size}, nil
}

func ParseUserListQuery(args *fasthttp.Args) (UserListQuery, error) {
	page, err := ParsePage(args)
	if err != nil {
		return UserListQuery{}, err
	}
	return UserListQuery{
		PageQuery: page,
		Sort:      strings.ToLower(strings.TrimSpace(string(args.Peek("sort")))),
		Order:     strings.ToLower(strings.TrimSpace(string(args.Peek("order")))),
	}, nil
}

func ParsePostListQuery(args *fasthttp.Args) (PostListQuery, error) {
	page, err := ParsePage(args)
	if err != nil {
		return PostListQuery{}, err
	}
	q := PostListQuery{PageQuery: page}

	if raw := strings.TrimSpace(string(args.Peek("user_id"))); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return PostListQuery{}, domain.Invalidf("invalid user_id %q", raw)
		}
		q.UserID = id
	}
	if raw := strings.TrimSpace(string(args.Peek("published"))); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return PostListQuery{}, domain.Invalidf("invalid published %q", raw)
		}
		q.Published = &published
	}
	return q, nil
}

func intArg(args *fasthttp.Args, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(string(args.Peek(key)))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalidf("invalid %s %q", key, raw)
	}
	return v, nil
}
