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

// CreateExpense persists an expense together with its shares in one
// transaction. Share order is preserved via the seq column: the first
// participant is the deterministic remainder holder and must survive
// round trips in position.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, trip_id, description, amount, currency, fx_rate, payer_id, split_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.TripID, expense.Description, expense.Amount, expense.Currency,
		expense.FxRateToBase, expense.PayerID, string(expense.SplitType), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Shares {
		share := &expense.Shares[i]
		share.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_participants (expense_id, user_id, share_amount, share_type, share_value, seq)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			share.ExpenseID, share.UserID, share.ShareAmount, string(share.ShareType), share.ShareValue, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by id, including its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var splitType string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, description, amount, currency, fx_rate, payer_id, split_type, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.TripID, &expense.Description, &expense.Amount, &expense.Currency,
		&expense.FxRateToBase, &expense.PayerID, &splitType, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.SplitType = models.SplitType(splitType)

	shares, err := s.expenseShares(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	expense.Shares = shares
	return expense, nil
}

// ListExpensesByTrip retrieves all expenses of a trip with their
// shares, oldest first.
func (s *SQLiteStore) ListExpensesByTrip(ctx context.Context, tripID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, description, amount, currency, fx_rate, payer_id, split_type, created_at
		 FROM expenses WHERE trip_id = ? ORDER BY created_at, id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var expense models.Expense
		var splitType string
		if err := rows.Scan(&expense.ID, &expense.TripID, &expense.Description, &expense.Amount,
			&expense.Currency, &expense.FxRateToBase, &expense.PayerID, &splitType, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.SplitType = models.SplitType(splitType)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		shares, err := s.expenseShares(ctx, expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Shares = shares
	}
	return expenses, nil
}

func (s *SQLiteStore) expenseShares(ctx context.Context, expenseID string) ([]models.Share, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, share_amount, share_type, share_value
		 FROM expense_participants WHERE expense_id = ? ORDER BY seq`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var share models.Share
		var shareType string
		if err := rows.Scan(&share.ExpenseID, &share.UserID, &share.ShareAmount, &shareType, &share.ShareValue); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		share.ShareType = models.SplitType(shareType)
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return shares, nil
}
