package entity

import (
	"time"

	"github.com/hireline/hireline/internal/pkg/valueobject"
)

type Kind string

const (
	KindWelcome         Kind = "welcome"
	KindPasswordChanged Kind = "password_changed"
)

func (k Kind) String() string {
	return string(k)
}

type CreateNotification struct {
	ID     int64
	UserID int64
	Kind   Kind
	Title  string
	Body   string
	Data   valueobject.JSONMap
}

type Notification struct {
	ID        int64
	UserID    int64
	Kind      Kind
	Title     string
	Body      string
	Data      valueobject.JSONMap
	ReadAt    *time.Time
	CreatedAt time.Time
}
