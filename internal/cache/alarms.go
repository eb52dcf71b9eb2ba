package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/skysailor/internal/domain"
)

const (
	alarmsDueKey      = "alarms:due"
	alarmsPayloadKey  = "alarms:payload"
	alarmsRegistryKey = "alarms:registry"
	maxTxRetries      = 5
)

var errTxContention = errors.New("watched key changed concurrently")

// SaveAlarm registers r under its booking id, replacing any alarm already
// registered for that booking. It reports whether one was replaced.
func (c *RedisCache) SaveAlarm(ctx context.Context, r domain.Reminder) (bool, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return false, err
	}

	var replaced bool
	err = c.withRegistry(ctx, func(tx *redis.Tx) error {
		prev, err := tx.HGet(ctx, alarmsRegistryKey, r.BookingID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		replaced = prev != ""

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if prev != "" {
				pipe.ZRem(ctx, alarmsDueKey, prev)
				pipe.HDel(ctx, alarmsPayloadKey, prev)
			}
			pipe.ZAdd(ctx, alarmsDueKey, redis.Z{Score: float64(r.TriggerAt.Unix()), Member: r.Handle})
			pipe.HSet(ctx, alarmsPayloadKey, r.Handle, payload)
			pipe.HSet(ctx, alarmsRegistryKey, r.BookingID, r.Handle)
			return nil
		})
		return err
	})
	return replaced, err
}

// RemoveAlarm drops the alarm registered for bookingID. Unknown ids report false.
func (c *RedisCache) RemoveAlarm(ctx context.Context, bookingID string) (bool, error) {
	var removed bool
	err := c.withRegistry(ctx, func(tx *redis.Tx) error {
		handle, err := tx.HGet(ctx, alarmsRegistryKey, bookingID).Result()
		if errors.Is(err, redis.Nil) {
			removed = false
			return nil
		}
		if err != nil {
			return err
		}
		removed = true

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZRem(ctx, alarmsDueKey, handle)
			pipe.HDel(ctx, alarmsPayloadKey, handle)
			pipe.HDel(ctx, alarmsRegistryKey, bookingID)
			return nil
		})
		return err
	})
	return removed, err
}

// GetAlarm returns the alarm registered for bookingID, or domain.ErrNotFound.
func (c *RedisCache) GetAlarm(ctx context.Context, bookingID string) (*domain.Reminder, error) {
	handle, err := c.client.HGet(ctx, alarmsRegistryKey, bookingID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c.payload(ctx, handle)
}

// ClaimDue removes and returns every alarm due at or before now. An alarm is
// claimed by whoever removes it from the due set, so concurrent dispatchers
// never deliver the same one twice.
func (c *RedisCache) ClaimDue(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	handles, err := c.client.ZRangeByScore(ctx, alarmsDueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}

	claimed := make([]domain.Reminder, 0, len(handles))
	for _, handle := range handles {
		n, err := c.client.ZRem(ctx, alarmsDueKey, handle).Result()
		if err != nil {
			return claimed, err
		}
		if n == 0 {
			continue
		}

		r, err := c.payload(ctx, handle)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return claimed, err
		}
		if err := c.client.HDel(ctx, alarmsPayloadKey, handle).Err(); err != nil {
			return claimed, err
		}
		if err := c.releaseRegistry(ctx, r.BookingID, handle); err != nil {
			return claimed, err
		}
		claimed = append(claimed, *r)
	}
	return claimed, nil
}

func (c *RedisCache) releaseRegistry(ctx context.Context, bookingID, handle string) error {
	return c.withRegistry(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, alarmsRegistryKey, bookingID).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if current != handle {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, alarmsRegistryKey, bookingID)
			return nil
		})
		return err
	})
}

func (c *RedisCache) payload(ctx context.Context, handle string) (*domain.Reminder, error) {
	data, err := c.client.HGet(ctx, alarmsPayloadKey, handle).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var r domain.Reminder
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *RedisCache) withRegistry(ctx context.Context, fn func(tx *redis.Tx) error) error {
	return c.watch(ctx, fn, alarmsRegistryKey)
}

// watch runs fn as an optimistic transaction over keys, retrying when another
// client modified them first.
func (c *RedisCache) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := c.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errTxContention
}
