package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	jobsKey     = "booking:jobs"
	deadJobsKey = "booking:jobs:dead"
	popTimeout  = 5 * time.Second
)

// RedisBroker keeps jobs in a Redis list: LPUSH to enqueue, BRPOP to take.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(ctx context.Context, url string) (*RedisBroker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisBroker{client: client}, nil
}

func (b *RedisBroker) Close() error { return b.client.Close() }

func (b *RedisBroker) Push(ctx context.Context, job Job) error {
	return b.push(ctx, jobsKey, job)
}

func (b *RedisBroker) Bury(ctx context.Context, job Job) error {
	return b.push(ctx, deadJobsKey, job)
}

func (b *RedisBroker) push(ctx context.Context, key string, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return b.client.LPush(ctx, key, body).Err()
}

func (b *RedisBroker) Pop(ctx context.Context) (Job, error) {
	for {
		res, err := b.client.BRPop(ctx, popTimeout, jobsKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			return Job{}, err
		}

		// res is [key, value]
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return Job{}, fmt.Errorf("unmarshal job: %w", err)
		}
		return job, nil
	}
}
