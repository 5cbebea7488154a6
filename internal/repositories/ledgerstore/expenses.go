package ledgerstore

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"splitkeeper/internal/models"
	"splitkeeper/pkg/utils"
)

const expenseColumns = `id, description, amount, original_amount, currency_code, date, payer_id, owner_id,
	split_method, split_participants, split_details, split_value, category_id, group_id,
	recurring_source_id, reference, created_at`

func scanExpense(row rowScanner) (models.Expense, error) {
	var (
		e               models.Expense
		participantsRaw []byte
		detailsRaw      []byte
		splitValue      decimal.NullDecimal
		groupID         sql.NullInt64
		recurringID     sql.NullInt64
		createdAt       sql.NullTime
	)

	err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.OriginalAmount, &e.CurrencyCode, &e.Date,
		&e.PayerID, &e.OwnerID, &e.SplitMethod, &participantsRaw, &detailsRaw, &splitValue,
		&e.CategoryID, &groupID, &recurringID, &e.Reference, &createdAt)
	if err != nil {
		return models.Expense{}, err
	}

	if e.SplitParticipants, err = unmarshalParticipants(participantsRaw); err != nil {
		return models.Expense{}, utils.ErrorHandler(err, "corrupt split participants on expense "+strconv.Itoa(e.ID))
	}
	if e.SplitDetails, err = models.ParseSplitDetails(detailsRaw); err != nil {
		return models.Expense{}, utils.ErrorHandler(err, "corrupt split details on expense "+strconv.Itoa(e.ID))
	}
	e.SplitValue = decimalPtr(splitValue)
	e.GroupID = intPtr(groupID)
	e.RecurringSourceID = intPtr(recurringID)
	e.CreatedAt = createdAtString(createdAt)
	return e, nil
}

func (s *Store) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ExpensesInvolving returns every expense where the user paid or is listed
// among the split participants.
func (s *Store) ExpensesInvolving(ctx context.Context, userID int) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE payer_id = ? OR JSON_CONTAINS(split_participants, CAST(? AS JSON), '$')
		ORDER BY date ASC, id ASC`
	return s.queryExpenses(ctx, query, userID, strconv.Itoa(userID))
}

// ExpensesForUser returns expenses the user has a stake in, dated within
// [from, to] inclusive.
func (s *Store) ExpensesForUser(ctx context.Context, userID int, from, to time.Time) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE (payer_id = ? OR JSON_CONTAINS(split_participants, CAST(? AS JSON), '$'))
		AND date >= ? AND date <= ?
		ORDER BY date ASC, id ASC`
	return s.queryExpenses(ctx, query, userID, strconv.Itoa(userID), from, to)
}

// UnlinkedExpenses returns the user's own entries within [from, to] that no
// recurring template generated.
func (s *Store) UnlinkedExpenses(ctx context.Context, userID int, from, to time.Time) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE owner_id = ? AND recurring_source_id IS NULL
		AND date >= ? AND date <= ?
		ORDER BY date ASC, id ASC`
	return s.queryExpenses(ctx, query, userID, from, to)
}

// ExpenseByID fetches one expense, sql.ErrNoRows when absent.
func (s *Store) ExpenseByID(ctx context.Context, id int) (models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`
	return scanExpense(s.db.QueryRowContext(ctx, query, id))
}

const insertExpenseSQL = `INSERT INTO expenses
	(description, amount, original_amount, currency_code, date, payer_id, owner_id,
	split_method, split_participants, split_details, split_value, category_id, group_id,
	recurring_source_id, reference, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertExpenseArgs(e *models.Expense) ([]interface{}, error) {
	participantsRaw, err := marshalParticipants(e.SplitParticipants)
	if err != nil {
		return nil, err
	}
	detailsRaw, err := marshalDetails(e.SplitDetails)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		e.Description, e.Amount, e.OriginalAmount, e.CurrencyCode, e.Date, e.PayerID, e.OwnerID,
		e.SplitMethod, participantsRaw, detailsRaw, nullDecimal(e.SplitValue), e.CategoryID,
		nullInt(e.GroupID), nullInt(e.RecurringSourceID), e.Reference,
		time.Now().Format("2006-01-02 15:04:05"),
	}, nil
}

// InsertExpense writes one expense and fills in its generated id.
func (s *Store) InsertExpense(ctx context.Context, e *models.Expense) error {
	args, err := insertExpenseArgs(e)
	if err != nil {
		return utils.ErrorHandler(err, "failed to encode expense for insert")
	}

	res, err := s.db.ExecContext(ctx, insertExpenseSQL, args...)
	if err != nil {
		return utils.ErrorHandler(err, "failed to insert expense")
	}
	id, _ := res.LastInsertId()
	e.ID = int(id)
	return nil
}

// UpdateExpense rewrites the mutable fields of an expense.
func (s *Store) UpdateExpense(ctx context.Context, e *models.Expense) error {
	participantsRaw, err := marshalParticipants(e.SplitParticipants)
	if err != nil {
		return utils.ErrorHandler(err, "failed to encode split participants")
	}
	detailsRaw, err := marshalDetails(e.SplitDetails)
	if err != nil {
		return utils.ErrorHandler(err, "failed to encode split details")
	}

	_, err = s.db.ExecContext(ctx, `UPDATE expenses SET description = ?, amount = ?, original_amount = ?,
		currency_code = ?, date = ?, split_method = ?, split_participants = ?, split_details = ?,
		split_value = ?, category_id = ?, group_id = ? WHERE id = ?`,
		e.Description, e.Amount, e.OriginalAmount, e.CurrencyCode, e.Date, e.SplitMethod,
		participantsRaw, detailsRaw, nullDecimal(e.SplitValue), e.CategoryID, nullInt(e.GroupID), e.ID)
	if err != nil {
		return utils.ErrorHandler(err, "failed to update expense")
	}
	return nil
}

// DeleteExpense removes one expense. Returns sql.ErrNoRows when nothing was
// deleted.
func (s *Store) DeleteExpense(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return utils.ErrorHandler(err, "failed to delete expense")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
