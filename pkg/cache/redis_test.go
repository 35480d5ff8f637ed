package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis is an in-memory redisClient.
type fakeRedis struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	n := 0
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(int64(n), nil)
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := newRedisCache(fake, "")

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("miss: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("payload"), TTLPage); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := fake.data[DefaultRedisPrefix+"k"]; !ok {
		t.Error("key should be stored under the default prefix")
	}
	if fake.ttls[DefaultRedisPrefix+"k"] != TTLPage {
		t.Errorf("ttl = %v, want %v", fake.ttls[DefaultRedisPrefix+"k"], TTLPage)
	}

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "payload" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}

	if err := c.Close(); err != nil || !fake.closed {
		t.Errorf("Close: %v closed=%v", err, fake.closed)
	}
}

func TestRedisCacheGetError(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = errors.New("connection reset")
	c := newRedisCache(fake, "test:")

	if _, hit, err := c.Get(context.Background(), "k"); hit || err == nil {
		t.Errorf("Get should surface backend errors: hit=%v err=%v", hit, err)
	}
}

func TestRedisCacheClear(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	fake.data["other:keep"] = []byte("x")
	c := newRedisCache(fake, "test:")

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 2 {
		t.Errorf("Clear removed %d keys, want 2", n)
	}
	if _, ok := fake.data["other:keep"]; !ok {
		t.Error("Clear must not touch keys outside the prefix")
	}
}
