package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultLockTTL   = 5 * time.Second
	defaultLockRetry = 25 * time.Millisecond
	releaseTimeout   = 2 * time.Second
)

// releaseScript deletes the key only while it still holds our owner token, so
// a lease that expired and was taken by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript pushes the expiry of a lease we still own.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Locker provides cross-process mutual exclusion with Redis leases.
// Key format: lock:<name>
//
// A held lease is renewed every ttl/3 until it is released, so ttl only
// bounds how long a crashed holder blocks others.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	log    zerolog.Logger
}

// NewLocker creates a Locker. ttl <= 0 selects defaultLockTTL.
func NewLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{client: client, ttl: ttl, retry: defaultLockRetry, log: log}
}

// Lock polls SET NX PX until the lease is acquired or ctx is done. The
// returned func releases the lease and may be called more than once.
func (l *Locker) Lock(ctx context.Context, name string) (func(), error) {
	key := lockKey(name)
	owner := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return l.hold(key, owner), nil
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// hold starts the renewal loop and returns the release func.
func (l *Locker) hold(key, owner string) func() {
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go l.renew(key, owner, stop, stopped)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-stopped
			l.release(key, owner)
		})
	}
}

func (l *Locker) renew(key, owner string, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	interval := l.ttl / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		held, err := renewScript.Run(ctx, l.client, []string{key}, owner, l.ttl.Milliseconds()).Int()
		cancel()
		switch {
		case err != nil:
			l.log.Warn().Err(err).Str("key", key).Msg("lock renewal failed")
		case held == 0:
			l.log.Error().Str("key", key).Msg("lock lease lost while held")
			return
		}
	}
}

func (l *Locker) release(key, owner string) {
	// The caller's context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, l.client, []string{key}, owner).Int()
	switch {
	case err != nil:
		l.log.Warn().Err(err).Str("key", key).Msg("lock release failed; lease will expire")
	case deleted == 0:
		l.log.Warn().Str("key", key).Msg("lock lease had expired before release")
	}
}

func lockKey(name string) string {
	return "lock:" + name
}
