package usecase

import (
	"context"
	"log/slog"

	"github.com/hireline/hireline/internal/pkg/jwt"
)

// Logout has no server-side state to revoke: sessions are stateless JWTs, so
// ending one means clearing the refresh cookie at the HTTP boundary. The
// usecase only records the event.
func (s *Usecase) Logout(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	if clm := jwt.GetAuth(ctx); clm != nil {
		slog.InfoContext(ctx, "user logged out", "user_id", clm.UserID)
	}

	return nil
}
