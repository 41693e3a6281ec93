package sqlite

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
)

func (t *tx) exists(ctx context.Context, op, query string, args ...any) (bool, error) {
	var ok bool
	if err := t.q.QueryRowContext(ctx, `SELECT EXISTS (`+query+`)`, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// HasParticipant reports whether the user already joined the event.
func (t *tx) HasParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	return t.exists(ctx, "check duplicate",
		`SELECT 1 FROM participations WHERE event_id = ? AND user_id = ?`, eventID, userID)
}

// IsMember reports whether the user belongs to the group.
func (t *tx) IsMember(ctx context.Context, userID, groupID string) (bool, error) {
	return t.exists(ctx, "check membership",
		`SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
}

// IsAdmin reports whether the user is an administrator.
func (t *tx) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return t.exists(ctx, "check admin",
		`SELECT 1 FROM administrators WHERE user_id = ?`, userID)
}

// InsertParticipant creates the participation record.
func (t *tx) InsertParticipant(ctx context.Context, p *model.Participation) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO participations (id, event_id, user_id, joined_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.EventID, p.UserID, p.JoinedAt,
	)
	if err != nil {
		return mapWriteErr("insert participation", err)
	}
	return nil
}

// ListParticipants returns the event's participation records in join order.
func (s *Store) ListParticipants(ctx context.Context, eventID string) ([]model.Participation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, user_id, joined_at
		 FROM participations
		 WHERE event_id = ?
		 ORDER BY joined_at ASC, rowid`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []model.Participation
	for rows.Next() {
		var p model.Participation
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
