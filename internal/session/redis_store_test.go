package session

import (
	"context"
	"testing"
	"time"

	"inkwell/api/internal/store"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	redisStore, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = redisStore.Close() })
	return redisStore, s
}

func TestNewRedisStorePings(t *testing.T) {
	redisStore, _ := setupTestRedis(t)
	if err := redisStore.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestSaveAndLookupRefreshSession(t *testing.T) {
	redisStore, _ := setupTestRedis(t)
	ctx := context.Background()

	user := store.User{ID: "user-123", DisplayName: "Avery", Role: "approver", IsExternal: true}
	if err := redisStore.SaveRefreshSession(ctx, "hash-1", user, time.Now().Add(24*time.Hour)); err != nil {
		t.Fatalf("SaveRefreshSession() error = %v", err)
	}

	got, err := redisStore.LookupRefreshSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("LookupRefreshSession() error = %v", err)
	}
	if got.ID != user.ID || got.DisplayName != user.DisplayName || got.Role != user.Role || !got.IsExternal {
		t.Fatalf("stored user mismatch: %+v", got)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	redisStore, mini := setupTestRedis(t)
	ctx := context.Background()

	user := store.User{ID: "user-456", DisplayName: "Morgan"}
	if err := redisStore.SaveRefreshSession(ctx, "hash-2", user, time.Now().Add(time.Millisecond)); err != nil {
		t.Fatalf("SaveRefreshSession() error = %v", err)
	}

	mini.FastForward(2 * time.Millisecond)

	if _, err := redisStore.LookupRefreshSession(ctx, "hash-2"); err == nil {
		t.Fatal("expected error for expired session")
	}
}

func TestRevokeRefreshSession(t *testing.T) {
	redisStore, _ := setupTestRedis(t)
	ctx := context.Background()

	user := store.User{ID: "user-789"}
	if err := redisStore.SaveRefreshSession(ctx, "hash-3", user, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SaveRefreshSession() error = %v", err)
	}
	if err := redisStore.RevokeRefreshSession(ctx, "hash-3"); err != nil {
		t.Fatalf("RevokeRefreshSession() error = %v", err)
	}
	if _, err := redisStore.LookupRefreshSession(ctx, "hash-3"); err == nil {
		t.Fatal("expected error after revocation")
	}

	// revoking a missing token is not an error
	if err := redisStore.RevokeRefreshSession(ctx, "never-existed"); err != nil {
		t.Fatalf("RevokeRefreshSession() on missing token error = %v", err)
	}
}

func TestRoleDefaultsToViewer(t *testing.T) {
	redisStore, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := redisStore.SaveRefreshSession(ctx, "hash-4", store.User{ID: "user-x"}, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SaveRefreshSession() error = %v", err)
	}
	got, err := redisStore.LookupRefreshSession(ctx, "hash-4")
	if err != nil {
		t.Fatalf("LookupRefreshSession() error = %v", err)
	}
	if got.Role != "viewer" {
		t.Fatalf("Role = %q, want viewer", got.Role)
	}
}
