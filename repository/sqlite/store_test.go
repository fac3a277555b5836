package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/directory/domain"
	sqliteInfra "github.com/fastygo/directory/internal/infrastructure/sqlite"
	"github.com/fastygo/directory/repository"
	"github.com/fastygo/directory/repository/sqlite"
)

// tickingClock advances one second on every call so rows get distinct,
// increasing timestamps.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestTransactor(t *testing.T) *sqlite.Transactor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, sqliteInfra.RunMigrations(path, nil))

	db, err := sqliteInfra.Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &tickingClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return sqlite.NewTransactor(db, sqlite.WithClock(clock.Now))
}

func mustCreateUser(t *testing.T, tx *sqlite.Transactor, email, username string) *domain.User {
	t.Helper()
	created, err := tx.Store().Users().Create(context.Background(), domain.NewUser(email, username, nil))
	require.NoError(t, err)
	return created
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	tx := newTestTransactor(t)
	ctx := context.Background()
	name := "Alice"

	created, err := tx.Store().Users().Create(ctx, domain.NewUser("alice@example.com", "alice", &name))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.IsActive)
	assert.Equal(t, "Alice", *created.FullName)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	byEmail, err := tx.Store().Users().FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, created.Equal(byEmail))

	byName, err := tx.Store().Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = tx.Store().Users().FindByUsername(ctx, "ALICE")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = tx.Store().Users().FindByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_Exists(t *testing.T) {
	tx := newTestTransactor(t)
	ctx := context.Background()
	mustCreateUser(t, tx, "bob@example.com", "bob")

	ok, err := tx.Store().Users().EmailExists(ctx, "Bob@Example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tx.Store().Users().UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tx.Store().Users().UsernameExists(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_UniqueViolations(t *testing.T) {
	tx := newTestTransactor(t)
	ctx := context.Background()
	mustCreateUser(t, tx, "dup@example.com", "first")

	_, err := tx.Store().Users().Create(ctx, domain.NewUser("DUP@example.com", "second", nil))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	_, err = tx.Store().Users().Create(ctx, domain.NewUser("other@example.com", "first", nil))
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestUserRepository_FindAllSortsAndPages(t *testing.T) {
	tx := newTestTransactor(t)
	ctx := context.Background()
	mustCreateUser(t, tx, "charlie@example.com", "charlie")
	mustCreateUser(t, tx, "alice@example.com", "alice")
	mustCreateUser(t, tx, "Bob@example.com", "bob")

	users, total, err := tx.Store().Users().FindAll(ctx, repository.UserFilter{
		Limit:     10,
		SortField: domain.SortByEmail,
		SortOrder: domain.SortAsc,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"alice", "bob", "charlie"}, usernames(users))

	users, total, err = tx.Store().Users().FindAll(ctx, repository.UserFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"bob", "alice"}, usernames(users))

	users, _, err = tx.Store().Users().FindAll(ctx, repository.UserFilter{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie"}, usernames(users))

	users, total, err = tx.Store().Users().FindAll(ctx, repository.UserFilter{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, users)
	assert.NotNil(t, users)
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	tx := newTestTransactor(t)
	ctx := context.Background()
	created := mustCreateUser(t, tx, "eve@example.com", "eve")
	mustCreateUser(t, tx, "mallory@example.com", "mallory")

	created.Deactivate()
	full := "Eve Adams"
	created.UpdateProfile(&full)
	updated, err := tx.Store().Users().Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Eve Adams", *updated.FullName)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	created.Email = "mallory@example.com"
	_, err = tx.Store().Users().Update(ctx, created.ID, created)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = tx.Store().Users().Update(ctx, 424242, created)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	total := func() int {
		t.Helper()
		_, n, err := tx.Store().Users().FindAll(ctx, repository.UserFilter{})
		require.NoError(t, err)
		return n
	}
	require.Equal(t, 2, total())

	deleted, err := tx.Store().Users().Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, total())

	deleted, err = tx.Store().Users().Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, total())
}

func TestPostRepository_Lifecycle(t *testing.T) {
	tx := newTestTransactor(t)
	ctx := context.Background()
	author := mustCreateUser(t, tx, "writer@example.com", "writer")
	other := mustCreateUser(t, tx, "reader@example.com", "reader")
	posts := tx.Store().Posts()

	draft, err := posts.Create(ctx, domain.NewPost(author.ID, "Draft", "wip", false))
	require.NoError(t, err)
	published, err := posts.Create(ctx, domain.NewPost(author.ID, "Hello", "world", true))
	require.NoError(t, err)
	_, err = posts.Create(ctx, domain.NewPost(other.ID, "Other", "text", true))
	require.NoError(t, err)

	items, total, err := posts.FindAll(ctx, repository.PostFilter{UserID: author.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, published.ID, items[0].ID)

	yes := true
	items, total, err = posts.FindAll(ctx, repository.PostFilter{Published: &yes})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, p := range items {
		assert.True(t, p.IsPublished)
	}

	no := false
	items, total, err = posts.FindAll(ctx, repository.PostFilter{UserID: author.ID, Published: &no})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, draft.ID, items[0].ID)

	draft.Publish()
	draft.Title = "Final"
	updated, err := posts.Update(ctx, draft.ID, draft)
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)
	assert.Equal(t, "Final", updated.Title)

	_, err = posts.FindByID(ctx, 777)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostRepository_ForeignKeys(t *testing.T) {
	tx := newTestTransactor(t)
	ctx := context.Background()

	_, err := tx.Store().Posts().Create(ctx, domain.NewPost(999, "Orphan", "text", false))
	assert.ErrorIs(t, err, domain.ErrAuthorNotFound)

	author := mustCreateUser(t, tx, "gone@example.com", "gone")
	post, err := tx.Store().Posts().Create(ctx, domain.NewPost(author.ID, "Title", "text", true))
	require.NoError(t, err)

	_, err = tx.Store().Users().Delete(ctx, author.ID)
	require.NoError(t, err)

	_, err = tx.Store().Posts().FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestTransactor_CommitAndRollback(t *testing.T) {
	tx := newTestTransactor(t)
	ctx := context.Background()

	err := tx.WithinTx(ctx, func(s repository.Store) error {
		_, err := s.Users().Create(ctx, domain.NewUser("kept@example.com", "kept", nil))
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tx.WithinTx(ctx, func(s repository.Store) error {
		if _, err := s.Users().Create(ctx, domain.NewUser("lost@example.com", "lost", nil)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := tx.Store().Users().FindAll(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestTransactor_PanicRollsBack(t *testing.T) {
	tx := newTestTransactor(t)
	ctx := context.Background()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = tx.WithinTx(ctx, func(s repository.Store) error {
			if _, err := s.Users().Create(ctx, domain.NewUser("panic@example.com", "panic", nil)); err != nil {
				return err
			}
			panic("kaboom")
		})
	})

	exists, err := tx.Store().Users().EmailExists(ctx, "panic@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func usernames(users []domain.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}
