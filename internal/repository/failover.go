package repository

import (
	"context"
	"sync/atomic"
	"time"

	"salonik/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSlotCache serves from Redis while it is healthy and degrades to
// the in-memory cache when it is not, retrying the primary after a minute.
type FailoverSlotCache struct {
	primary   domain.SlotCache
	fallback  domain.SlotCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos
}

func NewFailoverSlotCache(primary, fallback domain.SlotCache, logger *zerolog.Logger) *FailoverSlotCache {
	return &FailoverSlotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

const recoveryInterval = time.Minute

func (f *FailoverSlotCache) markDown(err error) {
	f.logger.Error().Err(err).Msg("primary slot cache failed, falling back to memory")
	f.isDown.Store(true)
	f.lastCheck.Store(time.Now().UnixNano())
}

func (f *FailoverSlotCache) shouldRetryPrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	last := time.Unix(0, f.lastCheck.Load())
	if time.Since(last) > recoveryInterval {
		f.lastCheck.Store(time.Now().UnixNano())
		return true
	}
	return false
}

func (f *FailoverSlotCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	if f.shouldRetryPrimary() {
		labels, ok, err := f.primary.Get(ctx, key)
		if err == nil {
			f.isDown.Store(false)
			return labels, ok, nil
		}
		f.markDown(err)
	}
	return f.fallback.Get(ctx, key)
}

func (f *FailoverSlotCache) Set(ctx context.Context, key string, labels []string) error {
	if f.shouldRetryPrimary() {
		if err := f.primary.Set(ctx, key, labels); err == nil {
			f.isDown.Store(false)
			return nil
		} else {
			f.markDown(err)
		}
	}
	return f.fallback.Set(ctx, key, labels)
}

func (f *FailoverSlotCache) InvalidateDate(ctx context.Context, salonID int64, date string) error {
	// инвалидируем оба слоя, иначе после failover останутся устаревшие слоты
	var primaryErr error
	if f.shouldRetryPrimary() {
		primaryErr = f.primary.InvalidateDate(ctx, salonID, date)
		if primaryErr == nil {
			f.isDown.Store(false)
		} else {
			f.markDown(primaryErr)
		}
	}
	return f.fallback.InvalidateDate(ctx, salonID, date)
}
