package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"resume-builder/internal/adapter/repository"
	"resume-builder/pkg/logger"

	"go.uber.org/zap"
)

var ErrClosed = errors.New("store closed")

const writeTimeout = 10 * time.Second

// Persister writes serialized sections to a KVStore on its own goroutine.
// Pending writes are coalesced per key (latest value wins) and written in
// the order the keys were first queued. A single writer goroutine means a
// stale value can never land after a newer one for the same key.
type Persister struct {
	kv  repository.KVStore
	log logger.Logger

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	closed  bool
	failed  error

	wake     chan struct{}
	flushReq chan chan error
	stop     chan struct{}
	done     chan struct{}
}

func NewPersister(kv repository.KVStore, log logger.Logger) *Persister {
	p := &Persister{
		kv:       kv,
		log:      log,
		pending:  map[string][]byte{},
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan error),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Enqueue schedules value to be written under key. It never blocks on I/O.
func (p *Persister) Enqueue(key string, value []byte) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if _, queued := p.pending[key]; !queued {
		p.order = append(p.order, key)
	}
	p.pending[key] = value
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush blocks until everything queued before the call has been written. It
// returns the first write error seen since the previous Flush.
func (p *Persister) Flush(ctx context.Context) error {
	ack := make(chan error, 1)
	select {
	case p.flushReq <- ack:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ack:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes, stops the writer and closes the KVStore.
func (p *Persister) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.stop)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.kv.Close()
}

func (p *Persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.drain()
		case ack := <-p.flushReq:
			p.drain()
			ack <- p.takeErr()
		case <-p.stop:
			p.drain()
			return
		}
	}
}

func (p *Persister) take() ([]string, map[string][]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	order, pending := p.order, p.pending
	p.order = nil
	p.pending = map[string][]byte{}
	return order, pending
}

func (p *Persister) takeErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.failed
	p.failed = nil
	return err
}

func (p *Persister) drain() {
	for {
		order, pending := p.take()
		if len(order) == 0 {
			return
		}
		for _, key := range order {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := p.kv.Put(ctx, key, pending[key])
			cancel()
			if err != nil {
				p.log.Error("Failed to persist section", err, zap.String("key", key))
				p.mu.Lock()
				if p.failed == nil {
					p.failed = err
				}
				p.mu.Unlock()
				continue
			}
			p.log.Debug("Section persisted", zap.String("key", key), zap.Int("bytes", len(pending[key])))
		}
	}
}
