package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BudgetPeriod string

const (
	BudgetWeekly  BudgetPeriod = "weekly"
	BudgetMonthly BudgetPeriod = "monthly"
	BudgetYearly  BudgetPeriod = "yearly"
)

// Budget is a per-user spending limit for a category. Spent and status are
// derived from the current expense set on every read, never stored.
type Budget struct {
	ID                   int             `json:"id,omitempty" db:"id,omitempty"`
	UserID               int             `json:"user_id,omitempty" db:"user_id,omitempty"`
	CategoryID           int             `json:"category_id,omitempty" db:"category_id,omitempty"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	Period               BudgetPeriod    `json:"period" db:"period"`
	IncludeSubcategories bool            `json:"include_subcategories" db:"include_subcategories"`
	StartDate            time.Time       `json:"start_date" db:"start_date"`
	Active               bool            `json:"active" db:"active"`
}
