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

const settlementColumns = `id, trip_id, from_user_id, to_user_id, amount, currency, status, created_at, settled_at, settled_by, note`

// GetSettlement retrieves a settlement by id.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsByTrip retrieves all settlements of a trip, newest
// first with id as a deterministic secondary order.
func (s *SQLiteStore) ListSettlementsByTrip(ctx context.Context, tripID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE trip_id = ? ORDER BY created_at DESC, id",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// ReplacePendingSettlements swaps the trip's pending rows for the
// freshly computed plan in a single transaction. The DELETE is
// restricted to status = 'pending', so settled history can never be
// touched by reconciliation, even one racing a concurrent mark-paid.
func (s *SQLiteStore) ReplacePendingSettlements(ctx context.Context, tripID string, plan []*models.Settlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM settlements WHERE trip_id = ? AND status = ?",
		tripID, string(models.SettlementPending),
	)
	if err != nil {
		return fmt.Errorf("failed to delete pending settlements: %w", err)
	}

	now := time.Now().Unix()
	for _, settlement := range plan {
		if settlement.ID == "" {
			settlement.ID = uuid.New().String()
		}
		if settlement.CreatedAt == 0 {
			settlement.CreatedAt = now
		}
		settlement.TripID = tripID
		settlement.Status = models.SettlementPending

		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlements (id, trip_id, from_user_id, to_user_id, amount, currency, status, created_at, note)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			settlement.ID, settlement.TripID, settlement.FromUserID, settlement.ToUserID,
			settlement.Amount, settlement.Currency, string(settlement.Status), settlement.CreatedAt,
			nullableString(settlement.Note),
		)
		if err != nil {
			return fmt.Errorf("failed to insert pending settlement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MarkSettlementSettled transitions a pending settlement to settled.
// The transition is a conditional UPDATE guarded on status = 'pending',
// so a repeat call finds zero affected rows and returns the row
// unchanged: idempotent silent success, no second settled_at stamp.
func (s *SQLiteStore) MarkSettlementSettled(ctx context.Context, settlementID, settledBy, note string) (*models.Settlement, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE settlements
		 SET status = ?, settled_at = ?, settled_by = ?, note = COALESCE(NULLIF(?, ''), note)
		 WHERE id = ? AND status = ?`,
		string(models.SettlementSettled), time.Now().Unix(), settledBy, note,
		settlementID, string(models.SettlementPending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark settlement settled: %w", err)
	}

	// Distinguishes "already settled" (idempotent success) from
	// "no such row" (NotFound).
	return s.GetSettlement(ctx, settlementID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var status string
	var settledAt sql.NullInt64
	var settledBy, note sql.NullString

	err := row.Scan(&settlement.ID, &settlement.TripID, &settlement.FromUserID, &settlement.ToUserID,
		&settlement.Amount, &settlement.Currency, &status, &settlement.CreatedAt,
		&settledAt, &settledBy, &note)
	if err != nil {
		return nil, err
	}

	settlement.Status = models.SettlementStatus(status)
	if settledAt.Valid {
		settlement.SettledAt = settledAt.Int64
	}
	if settledBy.Valid {
		settlement.SettledBy = settledBy.String
	}
	if note.Valid {
		settlement.Note = note.String
	}
	return settlement, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
