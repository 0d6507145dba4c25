package usecase

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/identity/outbound/db"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/jwt"
)

func userClaims() jwt.Claims {
	return jwt.Claims{UserID: 42, UserEmail: testEmail, UserRole: "user"}
}

func adminClaims() jwt.Claims {
	return jwt.Claims{UserID: 1, UserEmail: "root@example.com", UserRole: "admin"}
}

func TestProfile(t *testing.T) {
	t.Run("ReturnsOwnAccount", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		out, err := env.uc.Profile(authCtx(userClaims()))

		if err != nil {
			t.Fatalf("profile: %v", err)
		}
		if out.Account.ID != 42 || out.Account.Email != testEmail {
			t.Fatalf("unexpected account %+v", out.Account)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Profile(context.Background())

		assertCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("AccountGone", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Profile(authCtx(userClaims()))

		assertCode(t, err, goerror.CodeUnauthorized)
	})
}

func TestProfileUpdate(t *testing.T) {
	t.Run("UpdatesNameAndPhone", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		// Act
		err := env.uc.ProfileUpdate(authCtx(userClaims()), ProfileUpdateInput{
			FullName: "  Jane Doe  ",
			Phone:    "+6281234567890",
		})

		// Assert
		if err != nil {
			t.Fatalf("profile update: %v", err)
		}
		if got := env.db.profiles[42]; got != [2]string{"Jane Doe", "+6281234567890"} {
			t.Fatalf("unexpected update %v", got)
		}
	})

	t.Run("InvalidName", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		err := env.uc.ProfileUpdate(authCtx(userClaims()), ProfileUpdateInput{FullName: "x1!"})

		assertCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("DuplicatePhone", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)
		env.db.updateProfileErr = &db.ConflictError{Field: "phone"}

		err := env.uc.ProfileUpdate(authCtx(userClaims()), ProfileUpdateInput{
			FullName: "Jane Doe",
			Phone:    "+6281234567890",
		})

		assertCode(t, err, goerror.CodeConflict)
	})
}

func TestResumeUpload(t *testing.T) {
	pdf := []byte("%PDF-1.7 tiny resume")

	t.Run("StoresAndRecordsURL", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		// Act
		out, err := env.uc.ResumeUpload(authCtx(userClaims()), ResumeUploadInput{
			File:        bytes.NewReader(pdf),
			ContentType: "application/pdf",
		})

		// Assert
		if err != nil {
			t.Fatalf("resume upload: %v", err)
		}
		wantKey := "42/6f1e8a7e-resume.pdf"
		if env.store.key != wantKey {
			t.Fatalf("expected object key %q, got %q", wantKey, env.store.key)
		}
		if env.store.bucket != "resumes" {
			t.Fatalf("unexpected bucket %q", env.store.bucket)
		}
		if !bytes.Equal(env.store.data, pdf) {
			t.Fatal("stored object does not match upload")
		}
		wantURL := "https://cdn.example.com/resumes/" + wantKey
		if out.ResumeURL != wantURL {
			t.Fatalf("expected url %q, got %q", wantURL, out.ResumeURL)
		}
		if env.db.resumeURLs[42] != wantURL {
			t.Fatal("resume url not recorded on the account")
		}
	})

	t.Run("RejectsNonPDF", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		_, err := env.uc.ResumeUpload(authCtx(userClaims()), ResumeUploadInput{
			File:        bytes.NewReader([]byte("GIF89a")),
			ContentType: "image/gif",
		})

		assertCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("RejectsOversizedFile", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)
		big := strings.NewReader(strings.Repeat("a", 65)) // limit is 64 in tests

		_, err := env.uc.ResumeUpload(authCtx(userClaims()), ResumeUploadInput{
			File:        big,
			ContentType: "application/pdf",
		})

		assertCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("AcceptsExactlyMaxSize", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)
		exact := strings.NewReader(strings.Repeat("a", 64))

		_, err := env.uc.ResumeUpload(authCtx(userClaims()), ResumeUploadInput{
			File:        exact,
			ContentType: "application/pdf",
		})

		if err != nil {
			t.Fatalf("exactly max-size upload must pass: %v", err)
		}
	})
}

func TestUserList(t *testing.T) {
	t.Run("AdminListsUsers", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.db.listAccounts = []entity.Account{{ID: 7, Email: "a@example.com"}}
		env.db.listTotal = 25

		// Act
		out, err := env.uc.UserList(authCtx(adminClaims()), UserListInput{
			Search: "jane",
			Roles:  []string{"user", "bogus"},
			Size:   20,
			Page:   2,
		})

		// Assert
		if err != nil {
			t.Fatalf("user list: %v", err)
		}
		if out.Total != 25 || len(out.Accounts) != 1 {
			t.Fatalf("unexpected output %+v", out)
		}
		f := env.db.lastFilter
		if !f.IsFilterBySearch || f.Search != "jane" {
			t.Fatalf("search filter not applied: %+v", f)
		}
		if !f.IsFilterByRole || len(f.Roles) != 1 || f.Roles[0] != int16(entity.RoleUser) {
			t.Fatalf("unknown roles must be dropped: %+v", f.Roles)
		}
		if f.Offset != 20 {
			t.Fatalf("expected offset 20 for page 2, got %d", f.Offset)
		}
		if f.OrderDirection != "desc" {
			t.Fatalf("expected default sort desc, got %q", f.OrderDirection)
		}
	})

	t.Run("SuperAdminInheritsAccess", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.UserList(authCtx(jwt.Claims{UserID: 2, UserRole: "superAdmin"}), UserListInput{})

		if err != nil {
			t.Fatalf("superAdmin must inherit admin access: %v", err)
		}
	})

	t.Run("ForbiddenForRegularUser", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.UserList(authCtx(userClaims()), UserListInput{})

		assertCode(t, err, goerror.CodeForbidden)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.UserList(context.Background(), UserListInput{})

		assertCode(t, err, goerror.CodeUnauthorized)
	})
}

func TestUserDetail(t *testing.T) {
	t.Run("ReturnsAccount", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		out, err := env.uc.UserDetail(authCtx(adminClaims()), UserDetailInput{ID: 42})

		if err != nil {
			t.Fatalf("user detail: %v", err)
		}
		if out.Account.ID != 42 {
			t.Fatalf("unexpected account %+v", out.Account)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.UserDetail(authCtx(adminClaims()), UserDetailInput{ID: 404})

		assertCode(t, err, goerror.CodeNotFound)
	})

	t.Run("ForbiddenForRegularUser", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.UserDetail(authCtx(userClaims()), UserDetailInput{ID: 42})

		assertCode(t, err, goerror.CodeForbidden)
	})
}
