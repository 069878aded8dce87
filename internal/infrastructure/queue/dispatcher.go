package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher fans security events out to a fixed set of workers using
// consistent hashing on the account id, preserving per-account ordering.
// It implements ports.SecurityAuditor.
type Dispatcher struct {
	workers []chan domain.SecurityEvent
	repo    ports.SecurityEventRepository
	log     zerolog.Logger
	onDrop  func(kind domain.SecurityEventKind)

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. onDrop, when set, is called for
// every event discarded because its shard was full.
func NewDispatcher(numWorkers int, repo ports.SecurityEventRepository, log zerolog.Logger, onDrop func(domain.SecurityEventKind)) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if onDrop == nil {
		onDrop = func(domain.SecurityEventKind) {}
	}
	d := &Dispatcher{
		workers: make([]chan domain.SecurityEvent, numWorkers),
		repo:    repo,
		log:     log.With().Str("component", "audit_dispatcher").Logger(),
		onDrop:  onDrop,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SecurityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Close has drained their queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues event without blocking. A full shard drops the event.
func (d *Dispatcher) Record(_ context.Context, event domain.SecurityEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.workers[d.shardIndex(event.AccountID)] <- event:
	default:
		d.onDrop(event.Kind)
		d.log.Warn().
			Str("event", string(event.Kind)).
			Str("account_id", event.AccountID).
			Msg("audit queue full, event dropped")
	}
}

// Close stops accepting events and waits for the workers to flush what is
// already queued.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps an account id deterministically to a worker index.
func (d *Dispatcher) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SecurityEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.write(id, event)
		}
	}
}

func (d *Dispatcher) write(id int, event domain.SecurityEvent) {
	// Detached from the request so a finished call does not cancel the write.
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := d.repo.Insert(ctx, &event); err != nil {
		d.log.Error().Err(err).
			Str("event", string(event.Kind)).
			Str("account_id", event.AccountID).
			Int("worker_id", id).
			Msg("audit event persistence failed")
	}
}
