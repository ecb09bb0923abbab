package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"resume-builder/internal/adapter/repository"
	"resume-builder/pkg/logger"
)

type recordingKV struct {
	*repository.MemoryKV
	mu     sync.Mutex
	writes []string
	gate   chan struct{}
	fail   bool
}

func (r *recordingKV) Put(ctx context.Context, key string, value []byte) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	r.writes = append(r.writes, key+"="+string(value))
	r.mu.Unlock()
	if r.fail {
		return errors.New("disk full")
	}
	return r.MemoryKV.Put(ctx, key, value)
}

func TestPersisterCoalescesAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	kv := &recordingKV{MemoryKV: repository.NewMemoryKV(), gate: make(chan struct{})}
	p := NewPersister(kv, logger.NewNop())

	// The first write blocks in Put so the rest queue up behind it.
	_ = p.Enqueue("a", []byte("1"))
	_ = p.Enqueue("b", []byte("1"))
	_ = p.Enqueue("a", []byte("2"))
	_ = p.Enqueue("a", []byte("3"))
	close(kv.gate)

	if err := p.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got, _, _ := kv.Get(ctx, "a")
	if string(got) != "3" {
		t.Fatalf("latest value must win, got %s", got)
	}
	last := map[string]string{}
	for _, w := range kv.writes {
		last[w[:1]] = w
	}
	if last["a"] != "a=3" || last["b"] != "b=1" {
		t.Fatalf("unexpected write log %v", kv.writes)
	}
	if len(kv.writes) > 4 {
		t.Fatalf("writes were not coalesced: %v", kv.writes)
	}
	if err := p.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Enqueue("a", []byte("4")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
}

func TestPersisterFlushReportsWriteErrors(t *testing.T) {
	kv := &recordingKV{MemoryKV: repository.NewMemoryKV(), fail: true}
	p := NewPersister(kv, logger.NewNop())
	defer p.Close(context.Background())

	_ = p.Enqueue("a", []byte("1"))
	if err := p.Flush(context.Background()); err == nil {
		t.Fatalf("expected write error from flush")
	}
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("error should be reported once, got %v", err)
	}
}
