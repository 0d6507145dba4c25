package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/identity/outbound/db"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/jwt"
)

const testEmail = "jane@example.com"

func verifiedChallenge(t *testing.T, env *testEnv) {
	t.Helper()

	ctx := context.Background()
	if err := env.uc.OtpRequest(ctx, OtpRequestInput{Email: testEmail}); err != nil {
		t.Fatalf("issue challenge: %v", err)
	}
	if _, err := env.uc.OtpVerify(ctx, OtpVerifyInput{Email: testEmail, Code: "482913"}); err != nil {
		t.Fatalf("verify challenge: %v", err)
	}
}

func TestSignup(t *testing.T) {
	signupInput := func() SignupInput {
		return SignupInput{
			FullName:        "Jane Smith",
			Email:           testEmail,
			Password:        "Sup3rSecret!",
			ConfirmPassword: "Sup3rSecret!",
		}
	}

	t.Run("CreatesAccountAfterVerification", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		verifiedChallenge(t, env)

		// Act
		out, err := env.uc.Signup(context.Background(), signupInput())

		// Assert
		if err != nil {
			t.Fatalf("signup: %v", err)
		}
		if out.UserID == 0 || out.Email != testEmail {
			t.Fatalf("unexpected output %+v", out)
		}
		if len(env.db.created) != 1 {
			t.Fatalf("expected 1 created account, got %d", len(env.db.created))
		}
		if !env.db.created[0].EmailVerified {
			t.Fatal("account must be created verified")
		}
		if got := env.db.createdHash[out.UserID]; got != "h!Sup3rSecret!" {
			t.Fatalf("password not hashed before storage: %q", got)
		}
		if _, ok := env.otp.m[testEmail]; ok {
			t.Fatal("challenge must be consumed by signup")
		}
	})

	t.Run("RequiresChallenge", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Signup(context.Background(), signupInput())

		assertCode(t, err, goerror.CodeForbidden)
	})

	t.Run("RequiresVerifiedChallenge", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.uc.OtpRequest(context.Background(), OtpRequestInput{Email: testEmail}); err != nil {
			t.Fatalf("issue challenge: %v", err)
		}

		_, err := env.uc.Signup(context.Background(), signupInput())

		assertCode(t, err, goerror.CodeForbidden)
		if len(env.db.created) != 0 {
			t.Fatal("unverified email must not produce an account")
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		env := newTestEnv(t)
		verifiedChallenge(t, env)
		env.db.createErr = &db.ConflictError{Field: "email"}

		_, err := env.uc.Signup(context.Background(), signupInput())

		assertCode(t, err, goerror.CodeConflict)
	})

	t.Run("IdempotencyKeyReplay", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		verifiedChallenge(t, env)
		in := signupInput()
		in.IdempotencyKey = "abc-123"

		// Act
		if _, err := env.uc.Signup(context.Background(), in); err != nil {
			t.Fatalf("first signup: %v", err)
		}
		_, err := env.uc.Signup(context.Background(), in)

		// Assert
		assertCode(t, err, goerror.CodeConflict)
		if len(env.db.created) != 1 {
			t.Fatalf("replay must not create a second account, got %d", len(env.db.created))
		}
	})
}

func TestLogin(t *testing.T) {
	seedLogin := func(env *testEnv, verified bool) {
		info := &entity.AccountLoginInfo{
			ID:            42,
			Email:         testEmail,
			Role:          entity.RoleUser,
			EmailVerified: verified,
			Password:      "h!Sup3rSecret!",
		}
		env.db.logins[testEmail] = info
		env.db.logins["+6281234567890"] = info
	}

	t.Run("ByEmail", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seedLogin(env, true)

		// Act
		out, err := env.uc.Login(context.Background(), LoginInput{Email: testEmail, Password: "Sup3rSecret!"})

		// Assert
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if out.UserID != 42 || out.Role != "user" {
			t.Fatalf("unexpected output %+v", out)
		}
		if out.AccessToken == "" || out.RefreshToken == "" {
			t.Fatal("both tokens must be minted")
		}
		if got := out.AccessExpiresAt.Sub(env.clock.now); got != 15*time.Minute {
			t.Fatalf("access expiry mismatch: %v", got)
		}
		if got := out.RefreshExpiresAt.Sub(env.clock.now); got != 7*24*time.Hour {
			t.Fatalf("refresh expiry mismatch: %v", got)
		}
	})

	t.Run("ByPhone", func(t *testing.T) {
		env := newTestEnv(t)
		seedLogin(env, true)

		out, err := env.uc.Login(context.Background(), LoginInput{Phone: "+6281234567890", Password: "Sup3rSecret!"})

		if err != nil {
			t.Fatalf("login by phone: %v", err)
		}
		if out.UserID != 42 {
			t.Fatalf("unexpected user id %d", out.UserID)
		}
	})

	t.Run("EmailAndPhoneTogether", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Login(context.Background(), LoginInput{
			Email:    testEmail,
			Phone:    "+6281234567890",
			Password: "Sup3rSecret!",
		})

		assertCode(t, err, goerror.CodeInvalidFormat)
	})

	t.Run("NeitherEmailNorPhone", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Login(context.Background(), LoginInput{Password: "Sup3rSecret!"})

		assertCode(t, err, goerror.CodeInvalidFormat)
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Login(context.Background(), LoginInput{Email: testEmail, Password: "Sup3rSecret!"})

		assertCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		env := newTestEnv(t)
		seedLogin(env, true)

		_, err := env.uc.Login(context.Background(), LoginInput{Email: testEmail, Password: "wrong-password"})

		// Indistinguishable from an unknown account.
		assertCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("UnverifiedEmailBlocked", func(t *testing.T) {
		env := newTestEnv(t)
		seedLogin(env, false)

		_, err := env.uc.Login(context.Background(), LoginInput{Email: testEmail, Password: "Sup3rSecret!"})

		assertCode(t, err, goerror.CodeForbidden)
	})

	t.Run("UnverifiedEmailAllowedWhenGateOff", func(t *testing.T) {
		env := newTestEnv(t)
		seedLogin(env, false)
		env.cfg.bools["modules.identity.require_verified_email"] = false

		_, err := env.uc.Login(context.Background(), LoginInput{Email: testEmail, Password: "Sup3rSecret!"})

		if err != nil {
			t.Fatalf("login with gate off: %v", err)
		}
	})
}

func TestRefreshToken(t *testing.T) {
	seedAccount := func(env *testEnv) {
		env.db.accounts[42] = &entity.Account{
			ID:            42,
			FullName:      "Jane Smith",
			Email:         testEmail,
			Role:          entity.RoleUser,
			EmailVerified: true,
		}
	}

	t.Run("MintsNewAccessToken", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seedAccount(env)
		env.refreshJWT.tokens["good-refresh"] = jwt.Claims{UserID: 42}

		// Act
		out, err := env.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "good-refresh"})

		// Assert
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if out.AccessToken == "" {
			t.Fatal("expected a new access token")
		}
		if out.RefreshToken != "" {
			t.Fatal("rotation is off, refresh token must stay empty")
		}
		if got := out.AccessExpiresAt.Sub(env.clock.now); got != 15*time.Minute {
			t.Fatalf("access expiry mismatch: %v", got)
		}
	})

	t.Run("RotationEnabled", func(t *testing.T) {
		env := newTestEnv(t)
		seedAccount(env)
		env.refreshJWT.tokens["good-refresh"] = jwt.Claims{UserID: 42}
		env.cfg.bools["modules.identity.refresh_rotation"] = true

		out, err := env.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "good-refresh"})

		if err != nil {
			t.Fatalf("refresh with rotation: %v", err)
		}
		if out.RefreshToken == "" {
			t.Fatal("rotation must mint a replacement refresh token")
		}
		if got := out.RefreshExpiresAt.Sub(env.clock.now); got != 7*24*time.Hour {
			t.Fatalf("refresh expiry mismatch: %v", got)
		}
	})

	t.Run("MissingToken", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.RefreshToken(context.Background(), RefreshTokenInput{})

		assertCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		env := newTestEnv(t)
		env.refreshJWT.errs = map[string]error{"old-refresh": jwt.ErrTokenExpired}

		_, err := env.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "old-refresh"})

		assertCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("SubjectDeleted", func(t *testing.T) {
		env := newTestEnv(t)
		env.refreshJWT.tokens["orphan"] = jwt.Claims{UserID: 99}

		_, err := env.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "orphan"})

		assertCode(t, err, goerror.CodeUnauthorized)
	})
}
