package inbound

import (
	"github.com/samber/lo"

	"github.com/hireline/hireline/internal/notification/entity"
	"github.com/hireline/hireline/internal/notification/usecase"
	"github.com/hireline/hireline/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the notification feed.
type HTTPEndpoint struct {
	uc uc
}

// ListNotifications returns the current user's notification feed.
// @Summary List notifications
// @Description Returns a paginated notification feed for the authenticated user, newest first.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param size query int false "Pagination size"
// @Param page query int false "Pagination page"
// @Success 200 {object} router.successResponse{data=NotificationsResponse} "Notification feed"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/notifications [get]
func (h *HTTPEndpoint) ListNotifications(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ListNotifications(r.Context(), usecase.ListNotificationsInput{
		Size: size,
		Page: page,
	})
	if err != nil {
		return nil, err
	}

	return NotificationsResponse{
		Notifications: lo.Map(resp.Items, func(item entity.Notification, _ int) NotificationResponse {
			return NotificationResponse{
				ID:        item.ID,
				Kind:      item.Kind.String(),
				Title:     item.Title,
				Body:      item.Body,
				Data:      item.Data,
				ReadAt:    item.ReadAt,
				CreatedAt: item.CreatedAt,
			}
		}),
		unread: resp.Unread,
		size:   resp.Size,
		page:   resp.Page,
	}, nil
}

// MarkRead marks a single notification as read.
// @Summary Mark notification read
// @Tags Notification
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid path parameter"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/notifications/{id}/read [post]
func (h *HTTPEndpoint) MarkRead(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.MarkRead(r.Context(), usecase.MarkReadInput{ID: id})
}
