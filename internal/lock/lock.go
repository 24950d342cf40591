package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
)

// ErrBusy is returned when the lock stayed held by someone else until the wait ran out.
var ErrBusy = errors.New("lock busy")

// Locker serialises work on a key across callers. Release must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

const (
	defaultTTL  = 30 * time.Second
	defaultWait = 5 * time.Second
)

type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(client), ttl: defaultTTL, wait: defaultWait}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	retries := int(l.wait / (100 * time.Millisecond))
	lk, err := l.client.Obtain(ctx, "jaygoga:lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// the lock may already have expired; redislock reports that as ErrLockNotHeld
		_ = lk.Release(context.WithoutCancel(ctx))
	}, nil
}

// LocalLocker is the single-process fallback used when Redis is not configured.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot), wait: defaultWait}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, s)
		return nil, ctx.Err()
	case <-timer.C:
		l.drop(key, s)
		return nil, ErrBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.drop(key, s)
		})
	}, nil
}

func (l *LocalLocker) drop(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
