// Command seed fills the configured database with sample users and posts.
package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/internal/config"
	"github.com/fastygo/directory/internal/infrastructure/storage"
	"github.com/fastygo/directory/pkg/logger"
	"github.com/fastygo/directory/usecase"
	postUC "github.com/fastygo/directory/usecase/post"
	userUC "github.com/fastygo/directory/usecase/user"
)

type seedUser struct {
	email    string
	username string
	fullName string
	active   bool
}

type seedPost struct {
	author    string
	title     string
	content   string
	published bool
}

var users = []seedUser{
	{"admin@example.com", "admin", "Administrator", true},
	{"john.doe@example.com", "johndoe", "John Doe", true},
	{"jane.smith@example.com", "janesmith", "Jane Smith", true},
	{"bob.wilson@example.com", "bobwilson", "Bob Wilson", true},
	{"alice.brown@example.com", "alicebrown", "Alice Brown", false},
}

var posts = []seedPost{
	{"admin", "Welcome to the directory", "This instance was seeded with sample data.", true},
	{"admin", "House rules", "Be kind and keep posts on topic.", true},
	{"johndoe", "Hello world", "My first post here.", true},
	{"johndoe", "Weekend plans", "Hiking if the weather holds.", true},
	{"janesmith", "Reading list", "Three books I finished this month.", true},
	{"janesmith", "Coffee notes", "Notes from a tasting session.", true},
	{"bobwilson", "Garden update", "The tomatoes are finally red.", true},
	{"bobwilson", "Unfinished thoughts", "Still writing this one.", false},
	{"alicebrown", "Back soon", "Taking a short break.", true},
	{"alicebrown", "Photo walk", "Pictures from the old town.", true},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("database setup failed", zap.Error(err))
	}
	defer backend.Close()

	if err := seed(ctx, backend, zapLogger); err != nil {
		zapLogger.Fatal("seed failed", zap.Error(err))
	}
}

func seed(ctx context.Context, backend *storage.Backend, logger *zap.Logger) error {
	usersUC := userUC.New(backend.Transactor, usecase.NopNotifier{}, logger)
	postsUC := postUC.New(backend.Transactor, logger)

	ids := make(map[string]int64, len(users))
	for _, u := range users {
		fullName := u.fullName
		created, err := usersUC.Create(ctx, userUC.CreateInput{Email: u.email, Username: u.username, FullName: &fullName})
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			logger.Info("user already present, skipping", zap.String("username", u.username))
			continue
		}
		if err != nil {
			return err
		}
		ids[u.username] = created.ID

		if !u.active {
			inactive := false
			if _, err := usersUC.Update(ctx, created.ID, userUC.UpdateInput{IsActive: &inactive}); err != nil {
				return err
			}
		}
		logger.Info("seeded user", zap.String("username", u.username), zap.Int64("user_id", created.ID))
	}

	seeded := 0
	for _, p := range posts {
		authorID, ok := ids[p.author]
		if !ok {
			continue
		}
		if _, err := postsUC.Create(ctx, postUC.CreateInput{
			Title:       p.title,
			Content:     p.content,
			UserID:      authorID,
			IsPublished: p.published,
		}); err != nil {
			return err
		}
		seeded++
	}

	logger.Info("seed complete", zap.Int("users", len(ids)), zap.Int("posts", seeded))
	return nil
}
