// Package memory keeps users and posts in process memory. Transactions are
// serialised and roll back by restoring a snapshot.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/repository"
)

type state struct {
	users      map[int64]domain.User
	posts      map[int64]domain.Post
	nextUserID int64
	nextPostID int64
}

func (s *state) clone() *state {
	c := &state{
		users:      make(map[int64]domain.User, len(s.users)),
		posts:      make(map[int64]domain.Post, len(s.posts)),
		nextUserID: s.nextUserID,
		nextPostID: s.nextPostID,
	}
	for id, u := range s.users {
		c.users[id] = copyUser(u)
	}
	for id, p := range s.posts {
		c.posts[id] = p
	}
	return c
}

// Transactor is an in-memory repository.Transactor.
type Transactor struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
	last  time.Time
}

// New returns an empty store. The clock defaults to time.Now and is forced
// to be strictly increasing.
func New(now func() time.Time) *Transactor {
	if now == nil {
		now = time.Now
	}
	return &Transactor{
		state: &state{users: map[int64]domain.User{}, posts: map[int64]domain.Post{}},
		now:   now,
	}
}

// WithinTx runs fn with exclusive access to the store.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repository.Store) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.state.clone()
	defer func() {
		if p := recover(); p != nil {
			t.state = snapshot
			panic(p)
		}
		if err != nil {
			t.state = snapshot
		}
	}()

	return fn(&store{t: t})
}

// Store runs a single operation in its own transaction.
func (t *Transactor) Store() repository.Store {
	return autoStore{t: t}
}

func (t *Transactor) tick() time.Time {
	now := t.now().UTC()
	if !now.After(t.last) {
		now = t.last.Add(time.Microsecond)
	}
	t.last = now
	return now
}

type store struct {
	t *Transactor
}

func (s *store) Users() repository.UserRepository { return &userRepository{t: s.t} }
func (s *store) Posts() repository.PostRepository { return &postRepository{t: s.t} }

type userRepository struct {
	t *Transactor
}

func (r *userRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}
	st := r.t.state
	if err := st.checkUnique(0, user.Email, user.Username); err != nil {
		return nil, err
	}

	st.nextUserID++
	stored := copyUser(*user)
	stored.ID = st.nextUserID
	stored.CreatedAt = r.t.tick()
	stored.UpdatedAt = stored.CreatedAt
	st.users[stored.ID] = stored

	out := copyUser(stored)
	return &out, nil
}

func (r *userRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.t.state.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := copyUser(u)
	return &out, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *userRepository) FindAll(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	all := make([]domain.User, 0, len(r.t.state.users))
	for _, u := range r.t.state.users {
		all = append(all, copyUser(u))
	}

	desc := filter.SortOrder != domain.SortAsc
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		var c int
		switch filter.SortField {
		case domain.SortByEmail:
			c = strings.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
		case domain.SortByUsername:
			c = strings.Compare(a.Username, b.Username)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = compareIDs(a.ID, b.ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	return page(all, filter.Offset, filter.Limit), len(all), nil
}

func (r *userRepository) Update(_ context.Context, id int64, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}
	st := r.t.state
	existing, ok := st.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if err := st.checkUnique(id, user.Email, user.Username); err != nil {
		return nil, err
	}

	updated := copyUser(*user)
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.t.tick()
	st.users[id] = updated

	out := copyUser(updated)
	return &out, nil
}

func (r *userRepository) Delete(_ context.Context, id int64) (bool, error) {
	st := r.t.state
	if _, ok := st.users[id]; !ok {
		return false, nil
	}
	delete(st.users, id)
	for pid, p := range st.posts {
		if p.UserID == id {
			delete(st.posts, pid)
		}
	}
	return true, nil
}

func (r *userRepository) find(match func(domain.User) bool) (*domain.User, error) {
	for _, u := range r.t.state.users {
		if match(u) {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *state) checkUnique(selfID int64, email, username string) error {
	for id, u := range s.users {
		if id != selfID && strings.EqualFold(u.Email, email) {
			return domain.ErrEmailTaken
		}
	}
	for id, u := range s.users {
		if id != selfID && u.Username == username {
			return domain.ErrUsernameTaken
		}
	}
	return nil
}

type postRepository struct {
	t *Transactor
}

func (r *postRepository) Create(_ context.Context, post *domain.Post) (*domain.Post, error) {
	if post == nil {
		return nil, domain.ErrInvalidPayload
	}
	st := r.t.state
	if _, ok := st.users[post.UserID]; !ok {
		return nil, domain.ErrAuthorNotFound
	}

	st.nextPostID++
	stored := *post
	stored.ID = st.nextPostID
	stored.CreatedAt = r.t.tick()
	stored.UpdatedAt = stored.CreatedAt
	st.posts[stored.ID] = stored

	out := stored
	return &out, nil
}

func (r *postRepository) FindByID(_ context.Context, id int64) (*domain.Post, error) {
	p, ok := r.t.state.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return &p, nil
}

func (r *postRepository) FindAll(_ context.Context, filter repository.PostFilter) ([]domain.Post, int, error) {
	matched := make([]domain.Post, 0)
	for _, p := range r.t.state.posts {
		if filter.UserID != 0 && p.UserID != filter.UserID {
			continue
		}
		if filter.Published != nil && p.IsPublished != *filter.Published {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if c := matched[i].CreatedAt.Compare(matched[j].CreatedAt); c != 0 {
			return c > 0
		}
		return matched[i].ID > matched[j].ID
	})

	return page(matched, filter.Offset, filter.Limit), len(matched), nil
}

func (r *postRepository) Update(_ context.Context, id int64, post *domain.Post) (*domain.Post, error) {
	if post == nil {
		return nil, domain.ErrInvalidPayload
	}
	st := r.t.state
	existing, ok := st.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}

	existing.Title = post.Title
	existing.Content = post.Content
	existing.IsPublished = post.IsPublished
	existing.UpdatedAt = r.t.tick()
	st.posts[id] = existing

	out := existing
	return &out, nil
}

func (r *postRepository) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.t.state.posts[id]; !ok {
		return false, nil
	}
	delete(r.t.state.posts, id)
	return true, nil
}

func page[T any](items []T, offset, limit int) []T {
	limit = repository.ClampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return make([]T, 0)
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

func compareIDs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func copyUser(u domain.User) domain.User {
	if u.FullName != nil {
		name := *u.FullName
		u.FullName = &name
	}
	return u
}

var _ repository.Transactor = (*Transactor)(nil)
