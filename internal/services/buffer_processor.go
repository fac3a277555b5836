package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/internal/infrastructure/buffer"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how often the outbox is drained and pruned.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor delivers notifications, parking failures in the outbox and
// retrying them on a schedule.
type BufferProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	sender  Sender
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	sender Sender,
	logger *zap.Logger,
	cfg ProcessorConfig,
) (*BufferProcessor, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:   store,
		monitor: monitor,
		sender:  sender,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	if _, err := bp.cron.AddFunc("@every "+cfg.Interval.String(), bp.drainJob); err != nil {
		return nil, fmt.Errorf("schedule outbox drain: %w", err)
	}
	if _, err := bp.cron.AddFunc("@hourly", bp.cleanupJob); err != nil {
		return nil, fmt.Errorf("schedule outbox cleanup: %w", err)
	}
	return bp, nil
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop waits for a running job to finish or for ctx to expire.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Deliver sends n right away when dependencies are online and parks it in
// the outbox otherwise. It only fails when the outbox write fails.
func (bp *BufferProcessor) Deliver(ctx context.Context, n domain.Notification) error {
	if bp == nil || bp.store == nil {
		return errors.New("buffer processor not configured")
	}

	var sendErr error
	if bp.monitor == nil || bp.monitor.IsOnline() {
		if sendErr = bp.sender.Send(ctx, n); sendErr == nil {
			return nil
		}
		bp.logger.Warn("immediate delivery failed, buffering",
			zap.String("notification_id", n.ID),
			zap.String("channel", n.Channel),
			zap.Error(sendErr))
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	item := buffer.Item{
		ID:       n.ID,
		Kind:     buffer.KindNotification,
		Channel:  n.Channel,
		Data:     payload,
		Priority: buffer.PriorityNormal,
	}
	if sendErr != nil {
		item.LastError = sendErr.Error()
	}
	return bp.store.Enqueue(item)
}

// Drain retries up to one batch of buffered notifications. Items that keep
// failing are dropped after MaxRetries attempts.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.Peek(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := bp.processItem(ctx, item); err != nil {
			item.Retries++
			item.LastError = err.Error()
			if item.Retries >= bp.cfg.MaxRetries {
				bp.logger.Warn("dropping buffer item (max retries reached)",
					zap.String("item_id", item.ID),
					zap.Int("retries", item.Retries),
					zap.Error(err))
				if err := bp.store.Remove(item); err != nil {
					bp.logger.Warn("failed to remove buffer item", zap.Error(err))
				}
				continue
			}

			bp.logger.Info("buffer item retry scheduled",
				zap.String("item_id", item.ID),
				zap.Int("retries", item.Retries),
				zap.Error(err))
			if err := bp.store.Requeue(item); err != nil {
				bp.logger.Error("failed to requeue buffer item", zap.Error(err))
			}
			continue
		}

		if err := bp.store.Remove(item); err != nil {
			bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if item.Kind != buffer.KindNotification {
		return fmt.Errorf("unsupported buffer item kind %q", item.Kind)
	}
	var n domain.Notification
	if err := json.Unmarshal(item.Data, &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	return bp.sender.Send(ctx, n)
}

func (bp *BufferProcessor) drainJob() {
	ctx, cancel := context.WithTimeout(context.Background(), bp.cfg.Interval)
	defer cancel()
	if err := bp.Drain(ctx); err != nil {
		bp.logger.Error("buffer drain failed", zap.Error(err))
	}
}

func (bp *BufferProcessor) cleanupJob() {
	removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Error("buffer cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Info("expired buffer items removed", zap.Int("count", removed))
	}
}
