package usecase

import (
	"context"
	"log/slog"

	"github.com/hireline/hireline/internal/notification/entity"
	"github.com/hireline/hireline/internal/pkg/goerror"
)

type ListNotificationsInput struct {
	Size int32
	Page int32
}

type ListNotificationsOutput struct {
	Page   int32
	Size   int32
	Unread int64
	Items  []entity.Notification
}

func (s *Usecase) ListNotifications(ctx context.Context, in ListNotificationsInput) (*ListNotificationsOutput, error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if in.Size <= 0 || in.Size > 100 {
		in.Size = 20 // default limit
	}
	offset := (max(in.Page, 1) - 1) * in.Size

	items, err := s.repoDB.ListNotifications(ctx, clm.UserID, in.Size, offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list notifications", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	unread, err := s.repoDB.CountUnreadNotifications(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count unread notifications", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ListNotificationsOutput{
		Page:   max(in.Page, 1),
		Size:   in.Size,
		Unread: unread,
		Items:  items,
	}, nil
}
