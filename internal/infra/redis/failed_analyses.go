package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/mevwatch/internal/core/domain"
)

// entryTTL bounds how long a failed analysis stays queued; a block not
// retried within a day is stale enough to drop, detection being
// memoryless.
const entryTTL = 24 * time.Hour

// FailedAnalysisQueue implements the retry queue for failed block
// analyses using Redis.
type FailedAnalysisQueue struct {
	rdb          *redis.Client
	internalCode string
}

// NewFailedAnalysisQueue creates a Redis-backed failed analysis queue.
func NewFailedAnalysisQueue(client *Client, internalCode string) *FailedAnalysisQueue {
	return &FailedAnalysisQueue{
		rdb:          client.rdb,
		internalCode: internalCode,
	}
}

// Key helpers
func (q *FailedAnalysisQueue) queueKey() string {
	return fmt.Sprintf("failed_analyses:%s", q.internalCode)
}

func (q *FailedAnalysisQueue) entryKey(id string) string {
	return fmt.Sprintf("failed_analysis:%s:%s", q.internalCode, id)
}

// Add adds a failed analysis to the queue.
func (q *FailedAnalysisQueue) Add(ctx context.Context, fa *domain.FailedAnalysis) error {
	data, err := json.Marshal(fa)
	if err != nil {
		return fmt.Errorf("failed to marshal failed analysis: %w", err)
	}

	if err := q.rdb.Set(ctx, q.entryKey(fa.ID), data, entryTTL).Err(); err != nil {
		return fmt.Errorf("failed to set failed analysis: %w", err)
	}

	// Sorted set score = retry count, so the least-retried entry is
	// attempted first.
	if err := q.rdb.ZAdd(ctx, q.queueKey(), redis.Z{
		Score:  float64(fa.RetryCount),
		Member: fa.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to queue: %w", err)
	}

	return nil
}

// GetNext retrieves the next failed analysis to retry.
func (q *FailedAnalysisQueue) GetNext(ctx context.Context) (*domain.FailedAnalysis, error) {
	results, err := q.rdb.ZRange(ctx, q.queueKey(), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	id := results[0]

	data, err := q.rdb.Get(ctx, q.entryKey(id)).Bytes()
	if err == redis.Nil {
		// Data expired but ID still in queue, remove it
		q.rdb.ZRem(ctx, q.queueKey(), id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get failed analysis: %w", err)
	}

	var fa domain.FailedAnalysis
	if err := json.Unmarshal(data, &fa); err != nil {
		return nil, fmt.Errorf("failed to unmarshal failed analysis: %w", err)
	}

	return &fa, nil
}

// IncrementRetry increments retry count so the entry loses priority.
func (q *FailedAnalysisQueue) IncrementRetry(ctx context.Context, id string) error {
	data, err := q.rdb.Get(ctx, q.entryKey(id)).Bytes()
	if err != nil {
		return fmt.Errorf("failed to get failed analysis: %w", err)
	}

	var fa domain.FailedAnalysis
	if err := json.Unmarshal(data, &fa); err != nil {
		return fmt.Errorf("failed to unmarshal failed analysis: %w", err)
	}

	fa.RetryCount++

	newData, err := json.Marshal(fa)
	if err != nil {
		return fmt.Errorf("failed to marshal failed analysis: %w", err)
	}

	if err := q.rdb.Set(ctx, q.entryKey(id), newData, entryTTL).Err(); err != nil {
		return fmt.Errorf("failed to set failed analysis: %w", err)
	}

	if err := q.rdb.ZAdd(ctx, q.queueKey(), redis.Z{
		Score:  float64(fa.RetryCount),
		Member: id,
	}).Err(); err != nil {
		return fmt.Errorf("failed to update queue: %w", err)
	}

	return nil
}

// MarkResolved removes a successfully retried analysis.
func (q *FailedAnalysisQueue) MarkResolved(ctx context.Context, id string) error {
	if err := q.rdb.ZRem(ctx, q.queueKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to remove from queue: %w", err)
	}
	if err := q.rdb.Del(ctx, q.entryKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete failed analysis: %w", err)
	}
	return nil
}

// Count returns the number of queued failed analyses.
func (q *FailedAnalysisQueue) Count(ctx context.Context) (int, error) {
	count, err := q.rdb.ZCard(ctx, q.queueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return int(count), nil
}
