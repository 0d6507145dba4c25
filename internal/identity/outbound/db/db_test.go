package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/instrument"
)

// newTestDB starts a throwaway postgres container and applies the migrations.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("hireline_test"),
		tcpostgres.WithUsername("hireline"),
		tcpostgres.WithPassword("hireline"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	t.Cleanup(pool.Close)

	for _, name := range []string{"0001_accounts.sql", "0002_notifications.sql"} {
		sql, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "db", "migrations", name))
		if err != nil {
			t.Fatalf("read migration %s: %v", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			t.Fatalf("apply migration %s: %v", name, err)
		}
	}

	return NewDB(pool, instrument.NewNoop())
}

func mustCreate(t *testing.T, store *DB, acc entity.NewAccount, hash string) {
	t.Helper()

	if err := store.CreateAccount(context.Background(), acc, hash); err != nil {
		t.Fatalf("create account %d: %v", acc.ID, err)
	}
}

func TestDB(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	jane := entity.NewAccount{
		ID:            1,
		FullName:      "Jane Smith",
		Email:         "jane@example.com",
		Phone:         "+6281234567890",
		Role:          entity.RoleUser,
		EmailVerified: true,
	}
	mustCreate(t, store, jane, "hash-jane")

	t.Run("GetAccountByID", func(t *testing.T) {
		acc, err := store.GetAccountByID(ctx, 1)

		if err != nil {
			t.Fatalf("get by id: %v", err)
		}
		if acc.Email != "jane@example.com" || acc.Phone != "+6281234567890" {
			t.Fatalf("unexpected account %+v", acc)
		}
		if acc.Role != entity.RoleUser || !acc.EmailVerified {
			t.Fatalf("unexpected account %+v", acc)
		}
		if acc.CreatedAt.IsZero() || acc.UpdatedAt.IsZero() {
			t.Fatal("timestamps must be populated")
		}
	})

	t.Run("GetAccountByIDMissing", func(t *testing.T) {
		_, err := store.GetAccountByID(ctx, 404)

		if !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("NullPhoneReadsAsEmpty", func(t *testing.T) {
		mustCreate(t, store, entity.NewAccount{
			ID:       2,
			FullName: "No Phone",
			Email:    "nophone@example.com",
			Role:     entity.RoleEmployer,
		}, "hash-nophone")

		acc, err := store.GetAccountByID(ctx, 2)

		if err != nil {
			t.Fatalf("get by id: %v", err)
		}
		if acc.Phone != "" {
			t.Fatalf("expected empty phone, got %q", acc.Phone)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		err := store.CreateAccount(ctx, entity.NewAccount{
			ID:       3,
			FullName: "Copy Cat",
			Email:    "jane@example.com",
			Role:     entity.RoleUser,
		}, "hash-copy")

		var conflict *ConflictError
		if !errors.As(err, &conflict) || conflict.Field != "email" {
			t.Fatalf("expected email conflict, got %v", err)
		}
		if !errors.Is(err, goerror.ErrConflict) {
			t.Fatal("conflict must unwrap to goerror.ErrConflict")
		}

		// The transaction rolled back; no orphan credential row exists.
		if _, err := store.GetAccountCredential(ctx, 3); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected no credential for rolled-back account, got %v", err)
		}
	})

	t.Run("DuplicatePhone", func(t *testing.T) {
		err := store.CreateAccount(ctx, entity.NewAccount{
			ID:       4,
			FullName: "Copy Cat",
			Email:    "other@example.com",
			Phone:    "+6281234567890",
			Role:     entity.RoleUser,
		}, "hash-copy")

		var conflict *ConflictError
		if !errors.As(err, &conflict) || conflict.Field != "phone" {
			t.Fatalf("expected phone conflict, got %v", err)
		}
	})

	t.Run("GetAccountLoginInfo", func(t *testing.T) {
		byEmail, err := store.GetAccountLoginInfo(ctx, "jane@example.com", "")
		if err != nil {
			t.Fatalf("login info by email: %v", err)
		}
		if byEmail.ID != 1 || byEmail.Password != "hash-jane" {
			t.Fatalf("unexpected login info %+v", byEmail)
		}

		byPhone, err := store.GetAccountLoginInfo(ctx, "", "+6281234567890")
		if err != nil {
			t.Fatalf("login info by phone: %v", err)
		}
		if byPhone.ID != 1 {
			t.Fatalf("unexpected login info %+v", byPhone)
		}

		if _, err := store.GetAccountLoginInfo(ctx, "ghost@example.com", ""); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdatePassword", func(t *testing.T) {
		if err := store.UpdatePassword(ctx, 1, "hash-new"); err != nil {
			t.Fatalf("update password: %v", err)
		}

		cred, err := store.GetAccountCredential(ctx, 1)
		if err != nil {
			t.Fatalf("get credential: %v", err)
		}
		if cred.Password != "hash-new" {
			t.Fatalf("password not updated, got %q", cred.Password)
		}

		if err := store.UpdatePassword(ctx, 404, "x"); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for missing account, got %v", err)
		}
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		if err := store.UpdateProfile(ctx, 2, "New Name", "+6289876543210"); err != nil {
			t.Fatalf("update profile: %v", err)
		}

		acc, err := store.GetAccountByID(ctx, 2)
		if err != nil {
			t.Fatalf("get by id: %v", err)
		}
		if acc.FullName != "New Name" || acc.Phone != "+6289876543210" {
			t.Fatalf("profile not updated %+v", acc)
		}

		// Clearing the phone stores NULL, not an empty string, so the
		// unique index keeps working for other accounts.
		if err := store.UpdateProfile(ctx, 2, "New Name", ""); err != nil {
			t.Fatalf("clear phone: %v", err)
		}

		var conflict *ConflictError
		err = store.UpdateProfile(ctx, 2, "New Name", "+6281234567890")
		if !errors.As(err, &conflict) || conflict.Field != "phone" {
			t.Fatalf("expected phone conflict, got %v", err)
		}
	})

	t.Run("UpdateResumeURL", func(t *testing.T) {
		url := "https://cdn.example.com/resumes/1/abc.pdf"
		if err := store.UpdateResumeURL(ctx, 1, url); err != nil {
			t.Fatalf("update resume url: %v", err)
		}

		acc, err := store.GetAccountByID(ctx, 1)
		if err != nil {
			t.Fatalf("get by id: %v", err)
		}
		if acc.ResumeURL != url {
			t.Fatalf("resume url not recorded, got %q", acc.ResumeURL)
		}
	})

	t.Run("ListAccounts", func(t *testing.T) {
		accs, total, err := store.ListAccounts(ctx, entity.AccountListFilter{
			Size: 10,
		})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 2 || len(accs) != 2 {
			t.Fatalf("expected 2 accounts, got total=%d len=%d", total, len(accs))
		}

		bySearch, total, err := store.ListAccounts(ctx, entity.AccountListFilter{
			IsFilterBySearch: true,
			Search:           "jane",
			Size:             10,
		})
		if err != nil {
			t.Fatalf("list by search: %v", err)
		}
		if total != 1 || bySearch[0].Email != "jane@example.com" {
			t.Fatalf("search filter failed: total=%d %+v", total, bySearch)
		}

		byRole, total, err := store.ListAccounts(ctx, entity.AccountListFilter{
			IsFilterByRole: true,
			Roles:          []int16{int16(entity.RoleEmployer)},
			Size:           10,
		})
		if err != nil {
			t.Fatalf("list by role: %v", err)
		}
		if total != 1 || byRole[0].Role != entity.RoleEmployer {
			t.Fatalf("role filter failed: total=%d %+v", total, byRole)
		}

		ordered, _, err := store.ListAccounts(ctx, entity.AccountListFilter{
			OrderBy:        "email",
			OrderDirection: "asc",
			Size:           10,
		})
		if err != nil {
			t.Fatalf("list ordered: %v", err)
		}
		if ordered[0].Email != "jane@example.com" {
			t.Fatalf("expected ascending email order, got %q first", ordered[0].Email)
		}
	})
}
