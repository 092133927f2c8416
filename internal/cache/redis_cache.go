package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnswerJournal keeps answers that were selected but not yet confirmed by the
// exam server, so a crashed or killed client can replay them on restart.
type AnswerJournal interface {
	Put(ctx context.Context, attemptID string, question int, answer string) error
	Remove(ctx context.Context, attemptID string, question int, answer string) error
	Pending(ctx context.Context, attemptID string) (map[int]string, error)
	Clear(ctx context.Context, attemptID string) error
}

type redisJournal struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisJournal stores pending answers in one hash per attempt. Keys expire
// after ttl of inactivity.
func NewRedisJournal(client *redis.Client, ttl time.Duration) AnswerJournal {
	return &redisJournal{
		client: client,
		ttl:    ttl,
	}
}

func journalKey(attemptID string) string {
	return "exam:attempt:" + attemptID + ":pending"
}

func (r *redisJournal) Put(ctx context.Context, attemptID string, question int, answer string) error {
	key := journalKey(attemptID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(question), answer)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("journal put: %w", err)
	}
	return nil
}

// removeIfEqual deletes the field only while it still holds the saved answer,
// so a newer selection made during the save survives.
var removeIfEqual = redis.NewScript(`
if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
	return redis.call("HDEL", KEYS[1], ARGV[1])
end
return 0
`)

func (r *redisJournal) Remove(ctx context.Context, attemptID string, question int, answer string) error {
	err := removeIfEqual.Run(ctx, r.client, []string{journalKey(attemptID)}, strconv.Itoa(question), answer).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("journal remove: %w", err)
	}
	return nil
}

func (r *redisJournal) Pending(ctx context.Context, attemptID string) (map[int]string, error) {
	raw, err := r.client.HGetAll(ctx, journalKey(attemptID)).Result()
	if err != nil {
		return nil, fmt.Errorf("journal pending: %w", err)
	}
	out := make(map[int]string, len(raw))
	for k, v := range raw {
		q, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[q] = v
	}
	return out, nil
}

func (r *redisJournal) Clear(ctx context.Context, attemptID string) error {
	if err := r.client.Del(ctx, journalKey(attemptID)).Err(); err != nil {
		return fmt.Errorf("journal clear: %w", err)
	}
	return nil
}

type memoryJournal struct {
	mu      sync.Mutex
	pending map[string]map[int]string
}

// NewMemoryJournal is the journal used when no Redis is configured. It only
// survives for the life of the process.
func NewMemoryJournal() AnswerJournal {
	return &memoryJournal{pending: make(map[string]map[int]string)}
}

func (m *memoryJournal) Put(_ context.Context, attemptID string, question int, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.pending[attemptID]
	if !ok {
		entries = make(map[int]string)
		m.pending[attemptID] = entries
	}
	entries[question] = answer
	return nil
}

func (m *memoryJournal) Remove(_ context.Context, attemptID string, question int, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entries, ok := m.pending[attemptID]; ok && entries[question] == answer {
		delete(entries, question)
	}
	return nil
}

func (m *memoryJournal) Pending(_ context.Context, attemptID string) (map[int]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]string, len(m.pending[attemptID]))
	for q, a := range m.pending[attemptID] {
		out[q] = a
	}
	return out, nil
}

func (m *memoryJournal) Clear(_ context.Context, attemptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, attemptID)
	return nil
}
