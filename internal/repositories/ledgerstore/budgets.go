package ledgerstore

import (
	"context"
	"database/sql"

	"splitkeeper/internal/models"
)

const budgetColumns = `id, user_id, category_id, amount, period, include_subcategories, start_date, active`

func scanBudget(row rowScanner) (models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Period,
		&b.IncludeSubcategories, &b.StartDate, &b.Active)
	return b, err
}

// ActiveBudgets returns the user's active budgets.
func (s *Store) ActiveBudgets(ctx context.Context, userID int) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = ? AND active = TRUE ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// BudgetByID fetches one budget, sql.ErrNoRows when absent.
func (s *Store) BudgetByID(ctx context.Context, id int) (models.Budget, error) {
	return scanBudget(s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
}

// BudgetOwner carries what the alert job needs alongside each budget.
type BudgetOwner struct {
	Budget    models.Budget
	Email     string
	FirstName string
}

// ActiveBudgetsWithOwners returns every active budget joined with its
// owner's contact details, for the daily alert job.
func (s *Store) ActiveBudgetsWithOwners(ctx context.Context) ([]BudgetOwner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.category_id, b.amount, b.period, b.include_subcategories,
			b.start_date, b.active, u.email, u.first_name
		FROM budgets b
		JOIN users u ON b.user_id = u.id
		WHERE b.active = TRUE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []BudgetOwner
	for rows.Next() {
		var bo BudgetOwner
		err := rows.Scan(&bo.Budget.ID, &bo.Budget.UserID, &bo.Budget.CategoryID, &bo.Budget.Amount,
			&bo.Budget.Period, &bo.Budget.IncludeSubcategories, &bo.Budget.StartDate,
			&bo.Budget.Active, &bo.Email, &bo.FirstName)
		if err != nil {
			return nil, err
		}
		owners = append(owners, bo)
	}
	return owners, rows.Err()
}

// CategoryName resolves a category's display name for notifications.
func (s *Store) CategoryName(ctx context.Context, categoryID int) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM categories WHERE id = ?", categoryID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return name, err
}
