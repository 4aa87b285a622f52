package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	redisKeyPrefix = "usage:"
	redisScanBatch = 200
)

// redisStore keeps counter records in a centralized Redis cache so several
// engine processes can share one logical counter store. Per-key atomicity is
// enforced by local shard locks; cross-process interleaving is bounded by the
// record's own window, which the engine tolerates by design.
type redisStore struct {
	client *redis.Client
	locks  [shardCount]sync.Mutex
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.locks[h.Sum32()%shardCount]
}

func (s *redisStore) Mutate(ctx context.Context, key string, fn func(rec *CounterRecord)) (CounterRecord, error) {
	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	rec, _, err := s.fetch(ctx, key)
	if err != nil {
		return CounterRecord{}, err
	}
	rec.Key = key
	fn(&rec)

	ttl := 2 * rec.Window
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisKeyPrefix+key, encodeRecord(rec)...)
	pipe.Expire(ctx, redisKeyPrefix+key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return CounterRecord{}, fmt.Errorf("failed to write counter record: %w", err)
	}
	return rec, nil
}

func (s *redisStore) Get(ctx context.Context, key string) (CounterRecord, bool, error) {
	return s.fetch(ctx, key)
}

func (s *redisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete counter record: %w", err)
	}
	return n > 0, nil
}

func (s *redisStore) Snapshot(ctx context.Context) ([]CounterRecord, error) {
	var out []CounterRecord
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", redisScanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()[len(redisKeyPrefix):]
		rec, ok, err := s.fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan counter records: %w", err)
	}
	return out, nil
}

func (s *redisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	// Redis already expires records via the TTL set on write; this pass only
	// removes records that went stale before their TTL elapsed.
	records, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	evicted := 0
	for _, rec := range records {
		if !rec.Stale(now) {
			continue
		}
		ok, err := s.Delete(ctx, rec.Key)
		if err != nil {
			return evicted, err
		}
		if ok {
			evicted++
		}
	}
	return evicted, nil
}

func (s *redisStore) fetch(ctx context.Context, key string) (CounterRecord, bool, error) {
	fields, err := s.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return CounterRecord{}, false, fmt.Errorf("failed to read counter record: %w", err)
	}
	if len(fields) == 0 {
		return CounterRecord{Key: key}, false, nil
	}
	rec := decodeRecord(key, fields)
	return rec, true, nil
}

func encodeRecord(rec CounterRecord) []interface{} {
	return []interface{}{
		"rule_id", rec.RuleID,
		"scope_key", rec.ScopeKey,
		"count", strconv.FormatFloat(rec.Count, 'f', -1, 64),
		"limit", strconv.Itoa(rec.Limit),
		"window", strconv.FormatInt(int64(rec.Window), 10),
		"reset_time", strconv.FormatInt(nanoOf(rec.ResetTime), 10),
		"first_seen", strconv.FormatInt(nanoOf(rec.FirstSeen), 10),
		"last_seen", strconv.FormatInt(nanoOf(rec.LastSeen), 10),
		"denied_count", strconv.FormatInt(rec.DeniedCount, 10),
	}
}

func decodeRecord(key string, fields map[string]string) CounterRecord {
	rec := CounterRecord{Key: key}
	rec.RuleID = fields["rule_id"]
	rec.ScopeKey = fields["scope_key"]
	rec.Count, _ = strconv.ParseFloat(fields["count"], 64)
	rec.Limit, _ = strconv.Atoi(fields["limit"])
	if v, err := strconv.ParseInt(fields["window"], 10, 64); err == nil {
		rec.Window = time.Duration(v)
	}
	rec.ResetTime = parseNano(fields["reset_time"])
	rec.FirstSeen = parseNano(fields["first_seen"])
	rec.LastSeen = parseNano(fields["last_seen"])
	rec.DeniedCount, _ = strconv.ParseInt(fields["denied_count"], 10, 64)
	return rec
}

func nanoOf(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func parseNano(v string) time.Time {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
