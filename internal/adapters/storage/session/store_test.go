package session

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"flipfit/internal/adapters/storage"
	domain "flipfit/internal/domain/session"
)

// fakeRedis is a map-backed RedisClient that records expirations.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func openMigratedDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// storeFactories builds each backend with the same TTL and a controllable clock.
func storeFactories(t *testing.T, ttl time.Duration, clock *time.Time) map[string]Store {
	now := func() time.Time { return *clock }

	mem := NewMemoryStore(ttl)
	mem.now = now
	sq := NewSQLiteStore(openMigratedDB(t), ttl)
	sq.now = now
	rd := NewRedisStore(newFakeRedis(), ttl)
	rd.now = now

	return map[string]Store{"memory": mem, "sqlite": sq, "redis": rd}
}

var jo = domain.Session{UserID: 42, Role: domain.RoleCustomer, FullName: "Jo Doe", Email: "jo@example.com"}

// TestStore_CreateGetDelete verifies the round trip on every backend.
func TestStore_CreateGetDelete(t *testing.T) {
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for name, store := range storeFactories(t, time.Hour, &clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			token, err := store.Create(ctx, jo)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if len(token) != 64 {
				t.Errorf("token length = %d, want 64", len(token))
			}

			got, ok, err := store.Get(ctx, token)
			if err != nil || !ok {
				t.Fatalf("Get: ok=%v err=%v", ok, err)
			}
			if got.UserID != jo.UserID || got.Role != jo.Role || got.FullName != jo.FullName || got.Email != jo.Email {
				t.Errorf("got %+v, want %+v", got, jo)
			}
			if !got.CreatedAt.Equal(clock) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, clock)
			}

			if err := store.Delete(ctx, token); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, ok, _ := store.Get(ctx, token); ok {
				t.Error("session still present after Delete")
			}
			if err := store.Delete(ctx, token); err != nil {
				t.Errorf("second Delete: %v", err)
			}
		})
	}
}

// TestStore_UnknownToken verifies a missing token is not an error.
func TestStore_UnknownToken(t *testing.T) {
	clock := time.Now()
	for name, store := range storeFactories(t, time.Hour, &clock) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(context.Background(), "does-not-exist")
			if err != nil || ok {
				t.Errorf("ok=%v err=%v, want false nil", ok, err)
			}
		})
	}
}

// TestStore_RejectsInvalidSession verifies Create validates its input.
func TestStore_RejectsInvalidSession(t *testing.T) {
	clock := time.Now()
	for name, store := range storeFactories(t, time.Hour, &clock) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Create(context.Background(), domain.Session{UserID: 1, Role: "GUEST"}); err == nil {
				t.Error("expected an error for an unknown role")
			}
		})
	}
}

// TestLocalStores_Expire verifies memory and SQLite sessions lapse after the TTL.
func TestLocalStores_Expire(t *testing.T) {
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	stores := storeFactories(t, time.Hour, &clock)
	for _, name := range []string{"memory", "sqlite"} {
		store := stores[name]
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			start := clock
			token, err := store.Create(ctx, jo)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			clock = start.Add(59 * time.Minute)
			if _, ok, _ := store.Get(ctx, token); !ok {
				t.Error("session expired early")
			}
			clock = start.Add(61 * time.Minute)
			if _, ok, _ := store.Get(ctx, token); ok {
				t.Error("session outlived its TTL")
			}
			clock = start
		})
	}
}

// TestSQLiteStore_HashesTokens verifies the raw token never reaches the table.
func TestSQLiteStore_HashesTokens(t *testing.T) {
	db := openMigratedDB(t)
	store := NewSQLiteStore(db, 0)

	token, err := store.Create(context.Background(), jo)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var stored string
	if err := db.QueryRow("SELECT token_hash FROM session").Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if stored == token {
		t.Error("token stored in clear")
	}
	if stored != hashToken(token) {
		t.Errorf("stored %q, want hash of token", stored)
	}
}

func TestSQLiteStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store := NewSQLiteStore(openMigratedDB(t), time.Hour)
	store.now = func() time.Time { return clock }

	if _, err := store.Create(ctx, jo); err != nil {
		t.Fatal(err)
	}
	clock = clock.Add(30 * time.Minute)
	if _, err := store.Create(ctx, jo); err != nil {
		t.Fatal(err)
	}

	clock = clock.Add(45 * time.Minute)
	n, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
}

// TestRedisStore_KeyTTL verifies keys are hashed, prefixed and given the TTL.
func TestRedisStore_KeyTTL(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisStore(fake, 30*time.Minute)

	token, err := store.Create(context.Background(), jo)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	key := redisKeyPrefix + hashToken(token)
	if _, ok := fake.data[key]; !ok {
		t.Fatalf("expected key %q, have %v", key, fake.data)
	}
	if fake.ttls[key] != 30*time.Minute {
		t.Errorf("ttl = %v, want 30m", fake.ttls[key])
	}
}

func TestMemoryStore_Len(t *testing.T) {
	store := NewMemoryStore(0)
	for i := 0; i < 3; i++ {
		if _, err := store.Create(context.Background(), jo); err != nil {
			t.Fatal(err)
		}
	}
	if store.Len() != 3 {
		t.Errorf("Len = %d, want 3", store.Len())
	}
}
