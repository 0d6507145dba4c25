package db

import (
	"context"

	"github.com/hireline/hireline/internal/notification/entity"
)

func (s *DB) CreateNotification(ctx context.Context, data entity.CreateNotification) (err error) {
	ctx, span := s.startSpan(ctx, "CreateNotification")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, data)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.conn.Exec(ctx, query,
		data.ID, data.UserID, data.Kind.String(), data.Title, data.Body, data.Data)
	return s.mapError(err)
}
