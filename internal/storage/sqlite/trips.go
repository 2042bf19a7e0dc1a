package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripledger/tripledger/internal/errs"
	"github.com/tripledger/tripledger/internal/models"
)

// CreateTrip persists a new trip and its member list in one transaction.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO trips (id, name, base_currency, created_at) VALUES (?, ?, ?, ?)",
		trip.ID, trip.Name, trip.BaseCurrency, trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	for _, userID := range trip.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO trip_members (trip_id, user_id) VALUES (?, ?)",
			trip.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by id, including its members.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, base_currency, created_at FROM trips WHERE id = ?",
		tripID,
	).Scan(&trip.ID, &trip.Name, &trip.BaseCurrency, &trip.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("trip", tripID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM trip_members WHERE trip_id = ? ORDER BY user_id",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan trip member: %w", err)
		}
		trip.Members = append(trip.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trip members: %w", err)
	}

	return trip, nil
}

// ListTrips retrieves all trips the user is a member of, newest first.
func (s *SQLiteStore) ListTrips(ctx context.Context, userID string) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id FROM trips t
		 JOIN trip_members m ON m.trip_id = t.id
		 WHERE m.user_id = ? ORDER BY t.created_at DESC, t.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan trip id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	trips := make([]*models.Trip, 0, len(ids))
	for _, id := range ids {
		trip, err := s.GetTrip(ctx, id)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, nil
}

// AddTripMembers adds users to a trip, skipping ones already present.
func (s *SQLiteStore) AddTripMembers(ctx context.Context, tripID string, userIDs []string) error {
	if _, err := s.GetTrip(ctx, tripID); err != nil {
		return err
	}
	for _, userID := range userIDs {
		_, err := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO trip_members (trip_id, user_id) VALUES (?, ?)",
			tripID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip member: %w", err)
		}
	}
	return nil
}
