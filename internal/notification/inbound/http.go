package inbound

import (
	"context"

	"github.com/hireline/hireline/internal/notification/usecase"
	"github.com/hireline/hireline/internal/pkg/router"
)

type uc interface {
	ConsumeUserRegistered(ctx context.Context, in usecase.ConsumeUserRegisteredInput) error
	ConsumePasswordChanged(ctx context.Context, in usecase.ConsumePasswordChangedInput) error

	ListNotifications(ctx context.Context, in usecase.ListNotificationsInput) (*usecase.ListNotificationsOutput, error)
	MarkRead(ctx context.Context, in usecase.MarkReadInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Notification Feed (need authenticated)
	r.GET("/api/notifications", end.ListNotifications)
	r.POST("/api/notifications/:id/read", end.MarkRead)
}
