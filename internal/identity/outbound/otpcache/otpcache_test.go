package otpcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/instrument"
)

// newTestStore spins up a throwaway redis container for the package tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(nat.Port("6379/tcp")).WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate redis container: %v", err)
		}
	})

	uri, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opts, err := goredis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := goredis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	return NewStore(client, instrument.NewNoop(), 10*time.Minute)
}

func TestStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	challenge := func(email string) entity.OtpChallenge {
		return entity.OtpChallenge{
			Email:     email,
			Code:      "digest-of-482913",
			CreatedAt: now,
			ExpiresAt: now.Add(5 * time.Minute),
		}
	}

	t.Run("FindMissing", func(t *testing.T) {
		_, err := store.Find(ctx, "missing@example.com")

		if !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpsertAndFind", func(t *testing.T) {
		// Arrange + Act
		if err := store.Upsert(ctx, challenge("jane@example.com")); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		ch, err := store.Find(ctx, "jane@example.com")

		// Assert
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if ch.Code != "digest-of-482913" {
			t.Fatalf("unexpected code %q", ch.Code)
		}
		if !ch.CreatedAt.Equal(now) || !ch.ExpiresAt.Equal(now.Add(5*time.Minute)) {
			t.Fatalf("timestamps not round-tripped: %+v", ch)
		}
		if ch.Attempts != 0 || ch.Verified {
			t.Fatalf("fresh challenge must be unverified with zero attempts: %+v", ch)
		}
	})

	t.Run("UpsertResetsState", func(t *testing.T) {
		// Arrange: a challenge with recorded attempts and verified state.
		email := "reset@example.com"
		if err := store.Upsert(ctx, challenge(email)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if _, err := store.IncrementAttempts(ctx, email); err != nil {
			t.Fatalf("increment: %v", err)
		}
		if err := store.MarkVerified(ctx, email); err != nil {
			t.Fatalf("mark verified: %v", err)
		}

		// Act
		if err := store.Upsert(ctx, challenge(email)); err != nil {
			t.Fatalf("re-upsert: %v", err)
		}

		// Assert
		ch, err := store.Find(ctx, email)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if ch.Attempts != 0 || ch.Verified {
			t.Fatalf("upsert must reset attempts and verified: %+v", ch)
		}
	})

	t.Run("IncrementAttempts", func(t *testing.T) {
		email := "attempts@example.com"
		if err := store.Upsert(ctx, challenge(email)); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		for want := int64(1); want <= 3; want++ {
			got, err := store.IncrementAttempts(ctx, email)
			if err != nil {
				t.Fatalf("increment: %v", err)
			}
			if got != want {
				t.Fatalf("expected %d attempts, got %d", want, got)
			}
		}
	})

	t.Run("MarkVerified", func(t *testing.T) {
		email := "verified@example.com"
		if err := store.Upsert(ctx, challenge(email)); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		if err := store.MarkVerified(ctx, email); err != nil {
			t.Fatalf("mark verified: %v", err)
		}

		ch, err := store.Find(ctx, email)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if !ch.Verified {
			t.Fatal("challenge should be verified")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		email := "delete@example.com"
		if err := store.Upsert(ctx, challenge(email)); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		if err := store.Delete(ctx, email); err != nil {
			t.Fatalf("delete: %v", err)
		}

		if _, err := store.Find(ctx, email); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}

		// Deleting a missing challenge is not an error.
		if err := store.Delete(ctx, email); err != nil {
			t.Fatalf("double delete: %v", err)
		}
	})
}
