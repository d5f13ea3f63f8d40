package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

// CreateTrip inserts a trip together with its initial members.
func (s *SQLStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(ctx context.Context, c conn) error {
		_, err := c.exec(ctx,
			"INSERT INTO trips (id, name, created_at) VALUES (?, ?, ?)",
			trip.ID, trip.Name, trip.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip: %w", err)
		}
		return insertMembers(ctx, c, trip.ID, trip.Members, trip.CreatedAt)
	})
}

func insertMembers(ctx context.Context, c conn, tripID string, userIDs []string, joinedAt int64) error {
	for _, id := range userIDs {
		_, err := c.exec(ctx,
			`INSERT INTO trip_members (trip_id, user_id, joined_at) VALUES (?, ?, ?)
			ON CONFLICT (trip_id, user_id) DO NOTHING`,
			tripID, id, joinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip member: %w", err)
		}
	}
	return nil
}

// GetTrip retrieves a trip with its members in join order.
func (s *SQLStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	c := s.conn()

	trip := &models.Trip{}
	err := c.queryRow(ctx,
		"SELECT id, name, created_at FROM trips WHERE id = ?", tripID,
	).Scan(&trip.ID, &trip.Name, &trip.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	members, err := loadMembers(ctx, c,
		"SELECT trip_id, user_id FROM trip_members WHERE trip_id = ? ORDER BY joined_at, user_id",
		tripID)
	if err != nil {
		return nil, err
	}
	trip.Members = members[trip.ID]
	return trip, nil
}

// ListTripsByMember returns every trip userID belongs to, newest first.
func (s *SQLStore) ListTripsByMember(ctx context.Context, userID string) ([]*models.Trip, error) {
	c := s.conn()

	rows, err := c.query(ctx, `
		SELECT t.id, t.name, t.created_at
		FROM trips t
		JOIN trip_members m ON m.trip_id = t.id
		WHERE m.user_id = ?
		ORDER BY t.created_at DESC, t.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	var trips []*models.Trip
	for rows.Next() {
		trip := &models.Trip{}
		if err := rows.Scan(&trip.ID, &trip.Name, &trip.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	if len(trips) == 0 {
		return trips, nil
	}

	members, err := loadMembers(ctx, c, `
		SELECT trip_id, user_id FROM trip_members
		WHERE trip_id IN (SELECT trip_id FROM trip_members WHERE user_id = ?)
		ORDER BY joined_at, user_id`,
		userID)
	if err != nil {
		return nil, err
	}
	for _, trip := range trips {
		trip.Members = members[trip.ID]
	}
	return trips, nil
}

// loadMembers runs a (trip_id, user_id) query and groups users by trip.
func loadMembers(ctx context.Context, c conn, query string, args ...any) (map[string][]string, error) {
	rows, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]string)
	for rows.Next() {
		var tripID, userID string
		if err := rows.Scan(&tripID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan trip member: %w", err)
		}
		members[tripID] = append(members[tripID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trip members: %w", err)
	}
	return members, nil
}

// AddTripMembers adds users to an existing trip.
func (s *SQLStore) AddTripMembers(ctx context.Context, tripID string, userIDs []string) error {
	return s.withTx(ctx, func(ctx context.Context, c conn) error {
		var exists int
		err := c.queryRow(ctx, "SELECT 1 FROM trips WHERE id = ?", tripID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get trip: %w", err)
		}
		return insertMembers(ctx, c, tripID, userIDs, time.Now().Unix())
	})
}

// DeleteTrip deletes a trip; members, bills and debts cascade.
func (s *SQLStore) DeleteTrip(ctx context.Context, tripID string) error {
	res, err := s.conn().exec(ctx, "DELETE FROM trips WHERE id = ?", tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return expectOneRow(res, "trip", tripID)
}
