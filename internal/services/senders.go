package services

import (
	"context"
	"encoding/json"
	"fmt"

	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/directory/domain"
)

// Sender delivers one notification to its channel.
type Sender interface {
	Send(ctx context.Context, n domain.Notification) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, n domain.Notification) error

func (f SenderFunc) Send(ctx context.Context, n domain.Notification) error { return f(ctx, n) }

// LogSender writes each notification to the log instead of delivering it.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, n domain.Notification) error {
	s.logger.Info("notification sent",
		zap.String("notification_id", n.ID),
		zap.String("channel", n.Channel),
		zap.String("recipient", n.Recipient),
		zap.Int64("user_id", n.UserID),
		zap.String("subject", n.Subject))
	return nil
}

type listPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *goRedis.IntCmd
}

// RedisSender pushes notifications as JSON onto a per-channel list that
// external mail and SMS workers consume.
type RedisSender struct {
	client listPusher
	prefix string
}

func NewRedisSender(client listPusher, prefix string) *RedisSender {
	if prefix == "" {
		prefix = "notifications"
	}
	return &RedisSender{client: client, prefix: prefix}
}

// QueueKey returns the list key for a channel.
func (s *RedisSender) QueueKey(channel string) string {
	return s.prefix + ":" + channel
}

func (s *RedisSender) Send(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := s.client.RPush(ctx, s.QueueKey(n.Channel), payload).Err(); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

var (
	_ Sender = (*LogSender)(nil)
	_ Sender = (*RedisSender)(nil)
	_ Sender = SenderFunc(nil)
)
