// internal/pkg/queue/delayed.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// Job is one delayed unit of work. Payload is kept as raw JSON so consumers
// decode it into their own type.
type Job struct {
	ID        string          `json:"id"`
	Queue     string          `json:"queue"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	DueAt     time.Time       `json:"due_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// DelayedQueue keeps job ids in sorted sets scored by unix milliseconds and
// job bodies in a hash:
//
//	queue:<name>:delayed     ids waiting for their due time
//	queue:<name>:processing  ids claimed by a consumer, scored by visibility deadline
//	queue:<name>:jobs        id -> job JSON
type DelayedQueue struct {
	client     *redis.Client
	name       string
	visibility time.Duration
	now        func() time.Time
}

func NewDelayedQueue(client *redis.Client, name string) *DelayedQueue {
	return &DelayedQueue{
		client:     client,
		name:       name,
		visibility: 10 * time.Minute,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for due and visibility scores.
func (q *DelayedQueue) WithClock(now func() time.Time) *DelayedQueue {
	q.now = now
	return q
}

func (q *DelayedQueue) Name() string { return q.name }

func (q *DelayedQueue) delayedKey() string    { return "queue:" + q.name + ":delayed" }
func (q *DelayedQueue) processingKey() string { return "queue:" + q.name + ":processing" }
func (q *DelayedQueue) jobsKey() string       { return "queue:" + q.name + ":jobs" }

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// Add stores a job named name that becomes due after delay.
func (q *DelayedQueue) Add(ctx context.Context, name string, payload interface{}, delay time.Duration) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	now := q.now()
	job := &Job{
		ID:        ulid.Make().String(),
		Queue:     q.name,
		Name:      name,
		Payload:   body,
		DueAt:     now.Add(delay),
		CreatedAt: now,
	}

	if err := q.put(ctx, job, false); err != nil {
		return nil, fmt.Errorf("failed to add job %s: %w", name, err)
	}

	return job, nil
}

func (q *DelayedQueue) put(ctx context.Context, job *Job, fromProcessing bool) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.jobsKey(), job.ID, data)
		if fromProcessing {
			pipe.ZRem(ctx, q.processingKey(), job.ID)
		}
		pipe.ZAdd(ctx, q.delayedKey(), redis.Z{Score: score(job.DueAt), Member: job.ID})
		return nil
	})
	return err
}

// claimScript moves up to ARGV[2] due ids from the delayed set into the
// processing set and returns their bodies. Ids without a body are dropped.
var claimScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
local out = {}
for _, id in ipairs(ids) do
	redis.call('ZREM', KEYS[1], id)
	local body = redis.call('HGET', KEYS[3], id)
	if body then
		redis.call('ZADD', KEYS[2], ARGV[3], id)
		table.insert(out, body)
	end
end
return out
`)

// ClaimDue atomically takes up to limit jobs whose due time has passed. A
// claimed job must be Acked or Retried before the visibility deadline, or
// RequeueStale hands it out again.
func (q *DelayedQueue) ClaimDue(ctx context.Context, limit int) ([]*Job, error) {
	now := q.now()
	keys := []string{q.delayedKey(), q.processingKey(), q.jobsKey()}
	args := []interface{}{
		strconv.FormatInt(now.UnixMilli(), 10),
		limit,
		strconv.FormatInt(now.Add(q.visibility).UnixMilli(), 10),
	}

	bodies, err := claimScript.Run(ctx, q.client, keys, args...).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to claim due jobs: %w", err)
	}

	jobs := make([]*Job, 0, len(bodies))
	for _, b := range bodies {
		var job Job
		if err := json.Unmarshal([]byte(b), &job); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		jobs = append(jobs, &job)
	}

	return jobs, nil
}

// Ack removes a finished job.
func (q *DelayedQueue) Ack(ctx context.Context, id string) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.processingKey(), id)
		pipe.HDel(ctx, q.jobsKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to ack job %s: %w", id, err)
	}
	return nil
}

// Retry puts a claimed job back with its attempt counter incremented.
func (q *DelayedQueue) Retry(ctx context.Context, job *Job, delay time.Duration) error {
	job.Attempts++
	job.DueAt = q.now().Add(delay)
	if err := q.put(ctx, job, true); err != nil {
		return fmt.Errorf("failed to retry job %s: %w", job.ID, err)
	}
	return nil
}

var requeueScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
for _, id in ipairs(ids) do
	redis.call('ZREM', KEYS[1], id)
	redis.call('ZADD', KEYS[2], ARGV[1], id)
end
return #ids
`)

// RequeueStale returns claimed jobs whose visibility deadline passed to the
// delayed set, due immediately.
func (q *DelayedQueue) RequeueStale(ctx context.Context) (int64, error) {
	keys := []string{q.processingKey(), q.delayedKey()}
	n, err := requeueScript.Run(ctx, q.client, keys, strconv.FormatInt(q.now().UnixMilli(), 10)).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to requeue stale jobs: %w", err)
	}
	return n, nil
}

// Pending counts jobs waiting in the delayed set.
func (q *DelayedQueue) Pending(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.delayedKey()).Result()
}

// Get returns a stored job by id, or redis.Nil when it is gone.
func (q *DelayedQueue) Get(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.HGet(ctx, q.jobsKey(), id).Bytes()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}
