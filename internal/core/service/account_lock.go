package service

import (
	"context"
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// LocalLocker serialises work per key inside one process. Keys are hashed
// onto a fixed set of mutexes, so unrelated keys may occasionally share one.
type LocalLocker struct {
	stripes [lockStripes]sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

// Lock blocks until the stripe for key is free or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	m := &l.stripes[stripeIndex(key)]

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return m.Unlock, nil
	case <-ctx.Done():
		// Hand the mutex back once the pending acquisition lands.
		go func() {
			<-acquired
			m.Unlock()
		}()
		return nil, ctx.Err()
	}
}

func stripeIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % lockStripes)
}
