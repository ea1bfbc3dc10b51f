package queue

import (
	"context"
	"sync"
)

// MemoryBroker keeps jobs in a buffered channel. Jobs do not survive a restart.
type MemoryBroker struct {
	jobs chan Job

	mu   sync.Mutex
	dead []Job
}

func NewMemoryBroker(size int) *MemoryBroker {
	return &MemoryBroker{jobs: make(chan Job, size)}
}

func (b *MemoryBroker) Push(ctx context.Context, job Job) error {
	select {
	case b.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrFull
	}
}

func (b *MemoryBroker) Pop(ctx context.Context) (Job, error) {
	select {
	case job := <-b.jobs:
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

func (b *MemoryBroker) Bury(_ context.Context, job Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dead = append(b.dead, job)
	return nil
}

// Dead returns the buried jobs.
func (b *MemoryBroker) Dead() []Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Job(nil), b.dead...)
}
