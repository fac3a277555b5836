package memory

import (
	"context"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/repository"
)

// autoStore wraps every call in its own WithinTx so callers outside a
// transaction still get exclusive access.
type autoStore struct {
	t *Transactor
}

func (s autoStore) Users() repository.UserRepository { return autoUsers{t: s.t} }
func (s autoStore) Posts() repository.PostRepository { return autoPosts{t: s.t} }

func run[T any](ctx context.Context, t *Transactor, fn func(repository.Store) (T, error)) (T, error) {
	var out T
	err := t.WithinTx(ctx, func(s repository.Store) error {
		var err error
		out, err = fn(s)
		return err
	})
	return out, err
}

type autoUsers struct{ t *Transactor }

func (a autoUsers) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return run(ctx, a.t, func(s repository.Store) (*domain.User, error) { return s.Users().Create(ctx, user) })
}

func (a autoUsers) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return run(ctx, a.t, func(s repository.Store) (*domain.User, error) { return s.Users().FindByID(ctx, id) })
}

func (a autoUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return run(ctx, a.t, func(s repository.Store) (*domain.User, error) { return s.Users().FindByEmail(ctx, email) })
}

func (a autoUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return run(ctx, a.t, func(s repository.Store) (*domain.User, error) { return s.Users().FindByUsername(ctx, username) })
}

func (a autoUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	return run(ctx, a.t, func(s repository.Store) (bool, error) { return s.Users().EmailExists(ctx, email) })
}

func (a autoUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	return run(ctx, a.t, func(s repository.Store) (bool, error) { return s.Users().UsernameExists(ctx, username) })
}

func (a autoUsers) FindAll(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	var total int
	items, err := run(ctx, a.t, func(s repository.Store) ([]domain.User, error) {
		var (
			items []domain.User
			err   error
		)
		items, total, err = s.Users().FindAll(ctx, filter)
		return items, err
	})
	return items, total, err
}

func (a autoUsers) Update(ctx context.Context, id int64, user *domain.User) (*domain.User, error) {
	return run(ctx, a.t, func(s repository.Store) (*domain.User, error) { return s.Users().Update(ctx, id, user) })
}

func (a autoUsers) Delete(ctx context.Context, id int64) (bool, error) {
	return run(ctx, a.t, func(s repository.Store) (bool, error) { return s.Users().Delete(ctx, id) })
}

type autoPosts struct{ t *Transactor }

func (a autoPosts) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	return run(ctx, a.t, func(s repository.Store) (*domain.Post, error) { return s.Posts().Create(ctx, post) })
}

func (a autoPosts) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	return run(ctx, a.t, func(s repository.Store) (*domain.Post, error) { return s.Posts().FindByID(ctx, id) })
}

func (a autoPosts) FindAll(ctx context.Context, filter repository.PostFilter) ([]domain.Post, int, error) {
	var total int
	items, err := run(ctx, a.t, func(s repository.Store) ([]domain.Post, error) {
		var (
			items []domain.Post
			err   error
		)
		items, total, err = s.Posts().FindAll(ctx, filter)
		return items, err
	})
	return items, total, err
}

func (a autoPosts) Update(ctx context.Context, id int64, post *domain.Post) (*domain.Post, error) {
	return run(ctx, a.t, func(s repository.Store) (*domain.Post, error) { return s.Posts().Update(ctx, id, post) })
}

func (a autoPosts) Delete(ctx context.Context, id int64) (bool, error) {
	return run(ctx, a.t, func(s repository.Store) (bool, error) { return s.Posts().Delete(ctx, id) })
}
