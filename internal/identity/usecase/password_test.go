package usecase

import (
	"context"
	"testing"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/jwt"
)

func seedVerifiedAccount(env *testEnv) {
	acc := &entity.Account{
		ID:            42,
		FullName:      "Jane Smith",
		Email:         testEmail,
		Role:          entity.RoleUser,
		EmailVerified: true,
	}
	env.db.accounts[42] = acc
	env.db.byEmail[testEmail] = acc
	env.db.creds[42] = &entity.AccountCredential{AccountID: 42, Password: "h!OldPassw0rd!"}
}

func TestPasswordForgot(t *testing.T) {
	t.Run("IssuesChallengeForKnownEmail", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		// Act
		err := env.uc.PasswordForgot(context.Background(), PasswordForgotInput{Email: testEmail})

		// Assert
		if err != nil {
			t.Fatalf("password forgot: %v", err)
		}
		if len(env.notif.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(env.notif.sent))
		}
	})

	t.Run("UnknownEmailSucceedsSilently", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.uc.PasswordForgot(context.Background(), PasswordForgotInput{Email: "ghost@example.com"})

		if err != nil {
			t.Fatalf("unknown email must not be distinguishable: %v", err)
		}
		if len(env.notif.sent) != 0 {
			t.Fatal("no email should be sent for unknown accounts")
		}
	})
}

func TestPasswordReset(t *testing.T) {
	startReset := func(t *testing.T, env *testEnv) {
		t.Helper()

		ctx := context.Background()
		if err := env.uc.PasswordForgot(ctx, PasswordForgotInput{Email: testEmail}); err != nil {
			t.Fatalf("password forgot: %v", err)
		}
		if err := env.uc.PasswordResetVerify(ctx, PasswordResetVerifyInput{Email: testEmail, Code: "482913"}); err != nil {
			t.Fatalf("reset verify: %v", err)
		}
	}

	t.Run("FullFlow", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seedVerifiedAccount(env)
		startReset(t, env)

		// Act
		err := env.uc.PasswordReset(context.Background(), PasswordResetInput{
			Email:       testEmail,
			NewPassword: "N3wPassword!",
		})

		// Assert
		if err != nil {
			t.Fatalf("password reset: %v", err)
		}
		if got := env.db.passwords[42]; got != "h!N3wPassword!" {
			t.Fatalf("password not updated, got %q", got)
		}
		if _, ok := env.otp.m[testEmail]; ok {
			t.Fatal("challenge must be consumed by the reset")
		}

		env.waitEvents(t)
		if len(env.mq.passwordChanged) != 1 || env.mq.passwordChanged[0].UserID != 42 {
			t.Fatalf("expected password changed event, got %+v", env.mq.passwordChanged)
		}
	})

	t.Run("WithoutChallenge", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		err := env.uc.PasswordReset(context.Background(), PasswordResetInput{
			Email:       testEmail,
			NewPassword: "N3wPassword!",
		})

		assertCode(t, err, goerror.CodeForbidden)
	})

	t.Run("WithUnverifiedChallenge", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)
		if err := env.uc.PasswordForgot(context.Background(), PasswordForgotInput{Email: testEmail}); err != nil {
			t.Fatalf("password forgot: %v", err)
		}

		err := env.uc.PasswordReset(context.Background(), PasswordResetInput{
			Email:       testEmail,
			NewPassword: "N3wPassword!",
		})

		assertCode(t, err, goerror.CodeForbidden)
		if len(env.db.passwords) != 0 {
			t.Fatal("password must not change without a verified challenge")
		}
	})

	t.Run("ReplayAfterReset", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)
		startReset(t, env)
		ctx := context.Background()

		if err := env.uc.PasswordReset(ctx, PasswordResetInput{Email: testEmail, NewPassword: "N3wPassword!"}); err != nil {
			t.Fatalf("first reset: %v", err)
		}
		err := env.uc.PasswordReset(ctx, PasswordResetInput{Email: testEmail, NewPassword: "An0therOne!"})

		assertCode(t, err, goerror.CodeForbidden)
		if got := env.db.passwords[42]; got != "h!N3wPassword!" {
			t.Fatalf("replay must not overwrite the password, got %q", got)
		}
	})
}

func TestPasswordChange(t *testing.T) {
	userCtx := func() context.Context {
		return authCtx(jwt.Claims{UserID: 42, UserEmail: testEmail, UserRole: "user"})
	}

	t.Run("ChangesPassword", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		// Act
		err := env.uc.PasswordChange(userCtx(), PasswordChangeInput{
			CurrentPassword: "OldPassw0rd!",
			NewPassword:     "N3wPassword!",
		})

		// Assert
		if err != nil {
			t.Fatalf("password change: %v", err)
		}
		if got := env.db.passwords[42]; got != "h!N3wPassword!" {
			t.Fatalf("password not updated, got %q", got)
		}

		env.waitEvents(t)
		if len(env.mq.passwordChanged) != 1 {
			t.Fatalf("expected password changed event, got %+v", env.mq.passwordChanged)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.uc.PasswordChange(context.Background(), PasswordChangeInput{
			CurrentPassword: "OldPassw0rd!",
			NewPassword:     "N3wPassword!",
		})

		assertCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("WrongCurrentPassword", func(t *testing.T) {
		env := newTestEnv(t)
		seedVerifiedAccount(env)

		err := env.uc.PasswordChange(userCtx(), PasswordChangeInput{
			CurrentPassword: "not-the-password",
			NewPassword:     "N3wPassword!",
		})

		assertCode(t, err, goerror.CodeUnauthorized)
		if len(env.db.passwords) != 0 {
			t.Fatal("password must not change")
		}
	})
}
