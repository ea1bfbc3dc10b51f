// Package queue defers side effects such as outbound mail to background
// workers, so request handlers never wait on them.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFull = errors.New("queue is full")
	// ErrPermanent marks a handler failure that retrying cannot fix.
	ErrPermanent = errors.New("permanent job failure")
)

type Job struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Decode unmarshals the payload into v. A malformed payload is permanent.
func (j Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("%w: decode %s payload: %v", ErrPermanent, j.Kind, err)
	}
	return nil
}

// Broker stores jobs until a worker takes them.
type Broker interface {
	Push(ctx context.Context, job Job) error
	// Pop blocks until a job is available or ctx is done.
	Pop(ctx context.Context) (Job, error)
	// Bury parks a job that will not be retried.
	Bury(ctx context.Context, job Job) error
}

type Queue struct {
	broker Broker
}

func New(b Broker) *Queue {
	return &Queue{broker: b}
}

func (q *Queue) Enqueue(ctx context.Context, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	job := Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    body,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := q.broker.Push(ctx, job); err != nil {
		return fmt.Errorf("push %s job: %w", kind, err)
	}
	return nil
}
