package postgres

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
)

// countParticipants counts the event's participation records.
func (t *tx) countParticipants(ctx context.Context, eventID string) (int, error) {
	var n int
	err := t.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM participations WHERE event_id = $1`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// HasParticipant reports whether the user already joined the event.
func (t *tx) HasParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := t.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM participations WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return exists, nil
}

// InsertParticipant creates the participation record.
func (t *tx) InsertParticipant(ctx context.Context, p *model.Participation) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO participations (id, event_id, user_id, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		p.ID, p.EventID, p.UserID, p.JoinedAt,
	)
	if err != nil {
		return mapWriteErr("insert participation", err)
	}
	return nil
}

// IsMember reports whether the user belongs to the group.
func (t *tx) IsMember(ctx context.Context, userID, groupID string) (bool, error) {
	var ok bool
	err := t.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

// IsAdmin reports whether the user is an administrator.
func (t *tx) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := t.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM administrators WHERE user_id = $1)`,
		userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return ok, nil
}

// ListParticipants returns the event's participation records in join order.
func (s *Store) ListParticipants(ctx context.Context, eventID string) ([]model.Participation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, event_id, user_id, joined_at
		 FROM participations
		 WHERE event_id = $1
		 ORDER BY joined_at ASC, id`,
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
