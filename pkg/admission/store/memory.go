package store

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 64

// memoryStore is the default Store: counter records partitioned across
// independently locked shards so unrelated keys never contend.
type memoryStore struct {
	shards [shardCount]*shard
}

type shard struct {
	mu      sync.RWMutex
	records map[string]*CounterRecord
}

func NewMemoryStore() Store {
	s := &memoryStore{}
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]*CounterRecord)}
	}
	return s
}

func (s *memoryStore) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%shardCount]
}

func (s *memoryStore) Mutate(_ context.Context, key string, fn func(rec *CounterRecord)) (CounterRecord, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[key]
	if !ok {
		rec = &CounterRecord{Key: key}
		sh.records[key] = rec
	}
	fn(rec)
	return *rec, nil
}

func (s *memoryStore) Get(_ context.Context, key string) (CounterRecord, bool, error) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.records[key]
	if !ok {
		return CounterRecord{}, false, nil
	}
	return *rec, true, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) (bool, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	_, ok := sh.records[key]
	delete(sh.records, key)
	return ok, nil
}

func (s *memoryStore) Snapshot(_ context.Context) ([]CounterRecord, error) {
	var out []CounterRecord
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.records {
			out = append(out, *rec)
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

func (s *memoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	evicted := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, rec := range sh.records {
			if rec.Stale(now) {
				delete(sh.records, key)
				evicted++
			}
		}
		sh.mu.Unlock()
	}
	return evicted, nil
}
