package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/pkg/logger"
	"github.com/fastygo/directory/usecase"
)

// Deliverer accepts a notification for delivery.
type Deliverer interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// NotificationService sends welcome notifications in the background, one
// per configured channel.
type NotificationService struct {
	deliverer Deliverer
	channels  []string
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewNotificationService drops unknown channels with a warning.
func NewNotificationService(deliverer Deliverer, channels []string, timeout time.Duration, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	known := make([]string, 0, len(channels))
	seen := make(map[string]bool, len(channels))
	for _, ch := range channels {
		switch ch {
		case domain.ChannelEmail, domain.ChannelSMS:
			if !seen[ch] {
				seen[ch] = true
				known = append(known, ch)
			}
		default:
			logger.Warn("ignoring unknown notification channel", zap.String("channel", ch))
		}
	}

	return &NotificationService{
		deliverer: deliverer,
		channels:  known,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Welcome returns immediately. Delivery runs on a context detached from the
// caller so it outlives the request.
func (s *NotificationService) Welcome(ctx context.Context, user domain.User) {
	if len(s.channels) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("notification service closed, welcome skipped", zap.Int64("user_id", user.ID))
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	log := logger.WithRequestID(ctx, s.logger)
	detached := context.WithoutCancel(ctx)

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(detached, s.timeout)
		defer cancel()

		var g errgroup.Group
		for _, ch := range s.channels {
			n := s.welcome(user, ch)
			g.Go(func() error {
				if err := s.deliverer.Deliver(ctx, n); err != nil {
					return fmt.Errorf("%s: %w", n.Channel, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Warn("welcome notification failed", zap.Int64("user_id", user.ID), zap.Error(err))
			return
		}
		log.Debug("welcome notification dispatched", zap.Int64("user_id", user.ID), zap.Strings("channels", s.channels))
	}()
}

// Wait blocks until in-flight notifications finish or ctx expires.
func (s *NotificationService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting notifications and waits for in-flight ones.
func (s *NotificationService) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Wait(ctx)
}

func (s *NotificationService) welcome(user domain.User, channel string) domain.Notification {
	name := user.Username
	if user.FullName != nil && *user.FullName != "" {
		name = *user.FullName
	}

	n := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Channel:   channel,
		CreatedAt: s.now().UTC(),
	}
	switch channel {
	case domain.ChannelEmail:
		n.Recipient = user.Email
		n.Subject = "Welcome aboard"
		n.Body = fmt.Sprintf("Hi %s, your account %q is ready.", name, user.Username)
	case domain.ChannelSMS:
		n.Recipient = "user:" + strconv.FormatInt(user.ID, 10)
		n.Body = fmt.Sprintf("Welcome %s!", name)
	}
	return n
}

var _ usecase.Notifier = (*NotificationService)(nil)
