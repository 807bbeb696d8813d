package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis is a scripted in-memory stand-in for the redis commands the
// cache issues.
type fakeRedis struct {
	data   map[string]string
	getErr error
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeRedis) Scan(_ context.Context, _ uint64, match string, _ int64) *redis.ScanCmd {
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func TestRedisCache_HitReturnsStoredSet(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{
		EmbeddingText(faqs[0]): {1, 0, 0},
		EmbeddingText(faqs[1]): {0, 1, 0},
	}}
	cache := NewRedisCache(newFakeRedis(), p, DefaultTTL)
	ctx := context.Background()

	first := cache.Get(ctx, "default", faqs)
	if p.embedCalls != len(faqs) {
		t.Fatalf("expected %d embed calls on miss, got %d", len(faqs), p.embedCalls)
	}

	second := cache.Get(ctx, "default", faqs)
	if p.embedCalls != len(faqs) {
		t.Errorf("expected no further embed calls on hit, got %d total", p.embedCalls)
	}
	if len(second) != len(first) {
		t.Fatalf("expected identical entry count, got %d vs %d", len(second), len(first))
	}
	for i := range first {
		if second[i].Text != first[i].Text {
			t.Errorf("entry %d text changed across hits", i)
		}
		if cosineSimilarity(second[i].Embedding, first[i].Embedding) < 0.999 {
			t.Errorf("entry %d embedding changed across hits", i)
		}
	}
}

func TestRedisCache_ReadErrorRecomputes(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{}}
	fr := newFakeRedis()
	fr.getErr = errors.New("connection refused")
	cache := NewRedisCache(fr, p, DefaultTTL)

	entries := cache.Get(context.Background(), "default", faqs)
	if len(entries) != len(faqs) {
		t.Fatalf("expected %d entries despite read error, got %d", len(faqs), len(entries))
	}
	if p.embedCalls != len(faqs) {
		t.Errorf("expected recompute on read error, got %d embed calls", p.embedCalls)
	}
}

func TestRedisCache_UndecodableEntryRecomputes(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{}}
	fr := newFakeRedis()
	fr.data[redisKeyPrefix+"default"] = "{not json"
	cache := NewRedisCache(fr, p, DefaultTTL)

	entries := cache.Get(context.Background(), "default", faqs)
	if len(entries) != len(faqs) {
		t.Fatalf("expected %d entries despite undecodable cache entry, got %d", len(faqs), len(entries))
	}
	if p.embedCalls != len(faqs) {
		t.Errorf("expected recompute for undecodable entry, got %d embed calls", p.embedCalls)
	}
	// The recompute must also have replaced the bad entry.
	if fr.data[redisKeyPrefix+"default"] == "{not json" {
		t.Error("undecodable entry was not overwritten")
	}
}

func TestRedisCache_WriteFailureStillReturnsFresh(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{}}
	fr := newFakeRedis()
	fr.setErr = errors.New("READONLY You can't write against a read only replica")
	cache := NewRedisCache(fr, p, DefaultTTL)

	entries := cache.Get(context.Background(), "default", faqs)
	if len(entries) != len(faqs) {
		t.Errorf("expected fresh embeddings despite write failure, got %d entries", len(entries))
	}
}

func TestRedisCache_ClearForcesRecompute(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{}}
	cache := NewRedisCache(newFakeRedis(), p, DefaultTTL)
	ctx := context.Background()

	cache.Get(ctx, "acme", faqs)
	callsAfterFirst := p.embedCalls

	cache.Clear(ctx, "acme")
	cache.Get(ctx, "acme", faqs)
	if p.embedCalls == callsAfterFirst {
		t.Error("expected recompute after Clear")
	}
}

func TestRedisCache_ClearAllEmptiesEveryKey(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{}}
	fr := newFakeRedis()
	cache := NewRedisCache(fr, p, DefaultTTL)
	ctx := context.Background()

	cache.Get(ctx, "acme", faqs)
	cache.Get(ctx, "globex", faqs)
	callsAfterWarm := p.embedCalls

	cache.ClearAll(ctx)
	if len(fr.data) != 0 {
		t.Fatalf("expected every cache key deleted, %d remain", len(fr.data))
	}

	cache.Get(ctx, "acme", faqs)
	cache.Get(ctx, "globex", faqs)
	if p.embedCalls != callsAfterWarm*2 {
		t.Errorf("expected full recompute for both keys, got %d calls (warm: %d)", p.embedCalls, callsAfterWarm)
	}
}
