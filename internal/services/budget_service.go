package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"splitkeeper/internal/models"
	"splitkeeper/pkg/utils"
)

type BudgetStatusLabel string

const (
	BudgetUnder       BudgetStatusLabel = "under"
	BudgetApproaching BudgetStatusLabel = "approaching"
	BudgetOver        BudgetStatusLabel = "over"
)

var (
	approachingThreshold = decimal.NewFromInt(85)
	overThreshold        = decimal.NewFromInt(100)
)

// BudgetStatus is the derived state of a budget for the current period.
// Nothing here is ever stored; it is recomputed from the expense set on
// every read.
type BudgetStatus struct {
	BudgetID    int               `json:"budget_id"`
	Spent       decimal.Decimal   `json:"spent"`
	Limit       decimal.Decimal   `json:"limit"`
	PercentUsed decimal.Decimal   `json:"percent_used"` // reported capped at 100
	Status      BudgetStatusLabel `json:"status"`
}

// BudgetService aggregates period-scoped spend for budgets. The user's own
// share of each expense comes from the split calculator, so a shared dinner
// only counts the user's slice against their budget.
type BudgetService struct {
	expenses   ExpenseStore
	categories CategoryStore
}

func NewBudgetService(expenses ExpenseStore, categories CategoryStore) *BudgetService {
	return &BudgetService{expenses: expenses, categories: categories}
}

// Spent sums the user's own shares of in-scope expenses dated within the
// budget's current period window.
func (s *BudgetService) Spent(ctx context.Context, b models.Budget, now time.Time) (decimal.Decimal, error) {
	from, to := PeriodWindow(b.Period, now)

	scope := map[int]bool{b.CategoryID: true}
	if b.IncludeSubcategories {
		// One level only: the category plus its direct children. The
		// traversal never recurses deeper.
		children, err := s.categories.ChildCategoryIDs(ctx, b.CategoryID)
		if err != nil {
			return decimal.Zero, utils.ErrorHandler(err, "failed to resolve budget subcategories")
		}
		for _, id := range children {
			scope[id] = true
		}
	}

	expenses, err := s.expenses.ExpensesForUser(ctx, b.UserID, from, to)
	if err != nil {
		return decimal.Zero, utils.ErrorHandler(err, "failed to fetch expenses for budget")
	}

	spent := decimal.Zero
	for _, e := range expenses {
		if !scope[e.CategoryID] {
			continue
		}
		spent = spent.Add(ComputeSplits(e).UserShare(b.UserID))
	}
	return spent, nil
}

// Status derives the budget's current standing: over at 100% of the limit,
// approaching at 85%, under below that. A zero-amount budget reports 100%
// and over rather than dividing by zero.
func (s *BudgetService) Status(ctx context.Context, b models.Budget, now time.Time) (BudgetStatus, error) {
	spent, err := s.Spent(ctx, b, now)
	if err != nil {
		return BudgetStatus{}, err
	}

	status := BudgetStatus{
		BudgetID: b.ID,
		Spent:    spent,
		Limit:    b.Amount,
	}

	var pct decimal.Decimal
	if b.Amount.IsZero() {
		pct = overThreshold
	} else {
		pct = spent.Mul(oneHundred).Div(b.Amount)
	}

	switch {
	case pct.GreaterThanOrEqual(overThreshold):
		status.Status = BudgetOver
	case pct.GreaterThanOrEqual(approachingThreshold):
		status.Status = BudgetApproaching
	default:
		status.Status = BudgetUnder
	}

	if pct.GreaterThan(overThreshold) {
		pct = overThreshold
	}
	status.PercentUsed = pct.Round(2)
	return status, nil
}

// PeriodWindow returns the inclusive date range the budget period covers
// around now: Monday-to-Sunday for weekly, the calendar month for monthly,
// the calendar year for yearly.
func PeriodWindow(period models.BudgetPeriod, now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case models.BudgetWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	case models.BudgetYearly:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		return start, time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, day.Location())
	default: // monthly
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, -1)
	}
}
