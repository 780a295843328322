// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cache memoizes a poll's computed result snapshot behind the
// inputs hash used to detect a stale cache entry (see
// handlers.computeInputsHash): the same set of ballots always hashes the
// same way, so a cache hit can skip re-running the tally engine entirely.
package cache

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
)

// TTL is how long a cached snapshot payload survives before it must be
// recomputed, even if nothing invalidated it explicitly.
const TTL = 24 * time.Hour

var ErrMiss = errors.New("cache: key not found")

// Cache wraps a redigo connection pool. The zero value is not usable; call
// New.
type Cache struct {
	pool *redis.Pool
}

// New dials redisURL lazily via a redigo pool. redisURL is a standard
// redis:// connection string.
func New(redisURL string) *Cache {
	pool := &redis.Pool{
		MaxIdle:     8,
		MaxActive:   32,
		IdleTimeout: 5 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(redisURL, redis.DialConnectTimeout(3*time.Second))
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	return &Cache{pool: pool}
}

func snapshotKey(pollID, inputsHash string) string {
	return "snapshot:" + pollID + ":" + inputsHash
}

// GetSnapshot returns the cached payload for pollID at inputsHash, or
// ErrMiss if nothing is cached (or it expired).
func (c *Cache) GetSnapshot(pollID, inputsHash string) (json.RawMessage, error) {
	conn := c.pool.Get()
	defer conn.Close()

	data, err := redis.Bytes(conn.Do("GET", snapshotKey(pollID, inputsHash)))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// PutSnapshot caches payload for pollID at inputsHash for TTL.
func (c *Cache) PutSnapshot(pollID, inputsHash string, payload json.RawMessage) error {
	conn := c.pool.Get()
	defer conn.Close()

	_, err := conn.Do("SETEX", snapshotKey(pollID, inputsHash), int(TTL.Seconds()), []byte(payload))
	return err
}

// Invalidate drops any cached snapshot for pollID at inputsHash, used when
// a ballot changes after a result was computed speculatively (e.g. a
// preview computed while the poll is still open).
func (c *Cache) Invalidate(pollID, inputsHash string) error {
	conn := c.pool.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", snapshotKey(pollID, inputsHash))
	return err
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.pool.Close()
}
