package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"portscout/scanner"
)

const queueKey = "scans:queue"

// JobStore defines persistence operations for scan jobs.
type JobStore interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	UpdateJob(ctx context.Context, job *Job) error
	UpdateProgress(ctx context.Context, id string, completed, total int) error
	PushToQueue(ctx context.Context, jobID string) error
	PopFromQueue(ctx context.Context, wait time.Duration) (string, error)
}

var (
	// ErrJobNotFound indicates the requested job doesn't exist in the store.
	ErrJobNotFound = errors.New("job not found")
	// ErrQueueEmpty indicates no job became available while waiting on the queue.
	ErrQueueEmpty = errors.New("queue empty")
)

// RedisStore implements JobStore using Redis as backend. Job records expire after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed job store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) jobKey(id string) string {
	return fmt.Sprintf("scan:%s", id)
}

// CreateJob persists a new scan job in Redis.
func (s *RedisStore) CreateJob(ctx context.Context, job *Job) error {
	return s.save(ctx, job)
}

// UpdateJob overwrites an existing job in Redis.
func (s *RedisStore) UpdateJob(ctx context.Context, job *Job) error {
	return s.save(ctx, job)
}

func (s *RedisStore) save(ctx context.Context, job *Job) error {
	data, err := serializeJob(job)
	if err != nil {
		return err
	}
	key := s.jobKey(job.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// GetJob retrieves a job by ID.
func (s *RedisStore) GetJob(ctx context.Context, id string) (*Job, error) {
	res, err := s.client.HGetAll(ctx, s.jobKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrJobNotFound
	}
	return deserializeJob(res)
}

// UpdateProgress records how many ports of a running job have been probed.
func (s *RedisStore) UpdateProgress(ctx context.Context, id string, completed, total int) error {
	return s.client.HSet(ctx, s.jobKey(id), "completed", completed, "total", total).Err()
}

// PushToQueue enqueues a job ID for consumers to process.
func (s *RedisStore) PushToQueue(ctx context.Context, jobID string) error {
	return s.client.LPush(ctx, queueKey, jobID).Err()
}

// PopFromQueue blocks up to wait for a job ID. It returns ErrQueueEmpty on timeout.
func (s *RedisStore) PopFromQueue(ctx context.Context, wait time.Duration) (string, error) {
	res, err := s.client.BRPop(ctx, wait, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrQueueEmpty
		}
		return "", err
	}
	if len(res) != 2 {
		return "", errors.New("unexpected response size from BRPOP")
	}
	return res[1], nil
}

func serializeJob(job *Job) (map[string]interface{}, error) {
	var report string
	if job.Report != nil {
		encoded, err := json.Marshal(job.Report)
		if err != nil {
			return nil, err
		}
		report = string(encoded)
	}

	completedAt := ""
	if job.CompletedAt != nil {
		completedAt = job.CompletedAt.Format(time.RFC3339Nano)
	}

	return map[string]interface{}{
		"id":           job.ID,
		"status":       job.Status,
		"host":         job.Host,
		"ports":        job.Ports,
		"timeout_ms":   job.TimeoutMs,
		"workers":      job.Workers,
		"banner":       strconv.FormatBool(job.Banner),
		"address":      job.Address,
		"family":       job.Family,
		"completed":    job.Completed,
		"total":        job.Total,
		"interrupted":  strconv.FormatBool(job.Interrupted),
		"report":       report,
		"created_at":   job.CreatedAt.Format(time.RFC3339Nano),
		"completed_at": completedAt,
		"error":        job.Error,
	}, nil
}

func deserializeJob(data map[string]string) (*Job, error) {
	job := &Job{
		ID:      data["id"],
		Status:  data["status"],
		Host:    data["host"],
		Ports:   data["ports"],
		Address: data["address"],
		Family:  data["family"],
		Error:   data["error"],
	}

	var err error
	if job.TimeoutMs, err = parseInt64Field(data, "timeout_ms"); err != nil {
		return nil, err
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"workers", &job.Workers},
		{"completed", &job.Completed},
		{"total", &job.Total},
	}
	for _, field := range ints {
		v, err := parseInt64Field(data, field.name)
		if err != nil {
			return nil, err
		}
		*field.dst = int(v)
	}
	if job.Banner, err = parseBoolField(data, "banner"); err != nil {
		return nil, err
	}
	if job.Interrupted, err = parseBoolField(data, "interrupted"); err != nil {
		return nil, err
	}

	if raw := data["report"]; raw != "" {
		var report []scanner.OpenPort
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, err
		}
		job.Report = report
	}

	if raw := data["created_at"]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		job.CreatedAt = t
	}
	if raw := data["completed_at"]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		job.CompletedAt = &t
	}

	return job, nil
}

func parseInt64Field(data map[string]string, name string) (int64, error) {
	raw := data[name]
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return v, nil
}

func parseBoolField(data map[string]string, name string) (bool, error) {
	raw := data[name]
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("field %s: %w", name, err)
	}
	return v, nil
}
