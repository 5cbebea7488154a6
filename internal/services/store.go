package services

import (
	"context"
	"errors"
	"time"

	"splitkeeper/internal/models"
)

// The engine never talks to storage directly; it consumes these read/write
// contracts. internal/repositories/ledgerstore implements them over MySQL,
// tests implement them in memory.

var (
	// ErrNoBaseCurrency means no currency is flagged as the base. That is a
	// configuration error the caller must see, never something to default.
	ErrNoBaseCurrency = errors.New("no base currency configured")
	// ErrUnknownCurrency means a referenced currency code has no rate entry.
	ErrUnknownCurrency = errors.New("unknown currency code")
	// ErrAlreadyMaterialized means another scan claimed the template first;
	// the losing writer must not insert a duplicate expense.
	ErrAlreadyMaterialized = errors.New("template already materialized for this date")
)

// ExpenseStore provides expense reads scoped the way the engine needs them.
type ExpenseStore interface {
	// ExpensesInvolving returns every expense where the user is the payer or
	// is listed among the split participants.
	ExpensesInvolving(ctx context.Context, userID int) ([]models.Expense, error)
	// ExpensesForUser returns the user's expenses dated within [from, to],
	// inclusive on both ends.
	ExpensesForUser(ctx context.Context, userID int, from, to time.Time) ([]models.Expense, error)
	// UnlinkedExpenses returns the user's expenses within [from, to] that are
	// not already tied to a recurring template.
	UnlinkedExpenses(ctx context.Context, userID int, from, to time.Time) ([]models.Expense, error)
}

// SettlementStore provides settlement reads.
type SettlementStore interface {
	// SettlementsInvolving returns every settlement where the user paid or
	// received.
	SettlementsInvolving(ctx context.Context, userID int) ([]models.Settlement, error)
}

// RateProvider supplies currency rates. Injected explicitly; there is no
// process-wide rate table.
type RateProvider interface {
	Currency(ctx context.Context, code string) (models.Currency, error)
	BaseCurrency(ctx context.Context) (models.Currency, error)
}

// CategoryStore resolves the one-level parent/child relation used by budget
// subcategory scoping.
type CategoryStore interface {
	ChildCategoryIDs(ctx context.Context, categoryID int) ([]int, error)
}

// TemplateStore provides recurring-template reads and the one write the
// materializer needs.
type TemplateStore interface {
	ActiveTemplates(ctx context.Context) ([]models.RecurringTemplate, error)
	// MaterializeTemplate atomically advances the template's
	// last_materialized to today and inserts the generated expense. If a
	// concurrent scan already advanced it, the call returns
	// ErrAlreadyMaterialized and writes nothing.
	MaterializeTemplate(ctx context.Context, templateID int, expense *models.Expense, today time.Time) error
}
