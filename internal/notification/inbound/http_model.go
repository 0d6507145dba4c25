package inbound

import (
	"time"

	"github.com/hireline/hireline/internal/pkg/valueobject"
)

type NotificationResponse struct {
	ID        int64               `json:"id,string"`
	Kind      string              `json:"kind"`
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	Data      valueobject.JSONMap `json:"data,omitempty"`
	ReadAt    *time.Time          `json:"read_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	// meta
	unread int64
	size   int32
	page   int32
}

func (r NotificationsResponse) Meta() map[string]any {
	return map[string]any{
		"unread": r.unread,
		"size":   r.size,
		"page":   r.page,
	}
}
