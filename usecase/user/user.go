// Package user implements the user directory use cases.
package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/pkg/logger"
	"github.com/fastygo/directory/pkg/validation"
	"github.com/fastygo/directory/repository"
	"github.com/fastygo/directory/usecase"
)

type UseCase struct {
	tx       repository.Transactor
	notifier usecase.Notifier
	logger   *zap.Logger
}

func New(tx repository.Transactor, notifier usecase.Notifier, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = usecase.NopNotifier{}
	}
	return &UseCase{
		tx:       tx,
		notifier: notifier,
		logger:   logger,
	}
}

// Create registers a user. Email and username are checked for availability
// before the insert; the storage constraints catch anything the checks miss.
// The welcome notification is sent only after the transaction commits.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*Response, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(in.Email)

	var created *domain.User
	err := uc.tx.WithinTx(ctx, func(s repository.Store) error {
		users := s.Users()

		taken, err := users.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailTaken
		}

		taken, err = users.UsernameExists(ctx, in.Username)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrUsernameTaken
		}

		created, err = users.Create(ctx, domain.NewUser(email, in.Username, in.FullName))
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Welcome(ctx, *created)
	logger.WithRequestID(ctx, uc.logger).Debug("user stored", zap.Int64("user_id", created.ID))
	return ToResponse(created), nil
}

// List returns one page of users and the total count.
func (uc *UseCase) List(ctx context.Context, in ListInput) (*ListResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	criteria, err := domain.NewListCriteria(in.Page, in.PageSize, domain.SortField(in.Sort), domain.SortOrder(in.Order))
	if err != nil {
		return nil, err
	}

	var (
		users []domain.User
		total int
	)
	err = uc.tx.WithinTx(ctx, func(s repository.Store) error {
		var err error
		users, total, err = s.Users().FindAll(ctx, repository.UserFilterFrom(criteria))
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]Response, 0, len(users))
	for i := range users {
		items = append(items, *ToResponse(&users[i]))
	}
	return &ListResponse{
		Items:    items,
		Total:    total,
		Page:     criteria.Page(),
		PageSize: criteria.PageSize(),
	}, nil
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*Response, error) {
	var found *domain.User
	err := uc.tx.WithinTx(ctx, func(s repository.Store) error {
		var err error
		found, err = s.Users().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToResponse(found), nil
}

// Update applies a partial update. Changed emails and usernames are checked
// for availability the same way Create does.
func (uc *UseCase) Update(ctx context.Context, id int64, in UpdateInput) (*Response, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var updated *domain.User
	err := uc.tx.WithinTx(ctx, func(s repository.Store) error {
		users := s.Users()

		current, err := users.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Email != nil {
			email := domain.NormalizeEmail(*in.Email)
			if email != current.Email {
				taken, err := users.EmailExists(ctx, email)
				if err != nil {
					return err
				}
				if taken {
					return domain.ErrEmailTaken
				}
				current.Email = email
			}
		}

		if in.Username != nil && *in.Username != current.Username {
			taken, err := users.UsernameExists(ctx, *in.Username)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrUsernameTaken
			}
			current.Username = *in.Username
		}

		current.UpdateProfile(in.FullName)

		if in.IsActive != nil {
			if *in.IsActive {
				current.Activate()
			} else {
				current.Deactivate()
			}
		}

		updated, err = users.Update(ctx, id, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToResponse(updated), nil
}

// Delete removes a user and, through the foreign key, their posts.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	return uc.tx.WithinTx(ctx, func(s repository.Store) error {
		deleted, err := s.Users().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrUserNotFound
		}
		return nil
	})
}
