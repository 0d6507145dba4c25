package db

import (
	"context"

	"github.com/hireline/hireline/internal/notification/entity"
)

func (s *DB) ListNotifications(ctx context.Context, userID int64, limit, offset int32) (_ []entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, user_id, kind, title, body, data, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.conn.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	items := make([]entity.Notification, 0, limit)
	for rows.Next() {
		var n entity.Notification
		var kind string
		if err = rows.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Body, &n.Data, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, s.mapError(err)
		}
		n.Kind = entity.Kind(kind)
		items = append(items, n)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}

func (s *DB) CountUnreadNotifications(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountUnreadNotifications")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read_at IS NULL AND deleted_at IS NULL`

	var count int64
	if err = s.conn.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, s.mapError(err)
	}

	return count, nil
}
