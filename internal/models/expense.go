package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitPercentage SplitMethod = "percentage"
	SplitCustom     SplitMethod = "custom"
)

// Expense is one ledger entry. Amount is always in the base currency;
// OriginalAmount and CurrencyCode preserve the value as entered. Amount is
// fixed at creation time and never re-converted when rates change.
type Expense struct {
	ID                int              `json:"id,omitempty" db:"id,omitempty"`
	Description       string           `json:"description,omitempty" db:"description,omitempty"`
	Amount            decimal.Decimal  `json:"amount" db:"amount"`
	OriginalAmount    decimal.Decimal  `json:"original_amount" db:"original_amount"`
	CurrencyCode      string           `json:"currency_code,omitempty" db:"currency_code,omitempty"`
	Date              time.Time        `json:"date" db:"date"`
	PayerID           int              `json:"payer_id,omitempty" db:"payer_id,omitempty"`
	OwnerID           int              `json:"owner_id,omitempty" db:"owner_id,omitempty"`
	SplitMethod       SplitMethod      `json:"split_method,omitempty" db:"split_method,omitempty"`
	SplitParticipants []int            `json:"split_participants,omitempty" db:"split_participants,omitempty"`
	SplitDetails      *SplitDetails    `json:"split_details,omitempty" db:"split_details,omitempty"`
	SplitValue        *decimal.Decimal `json:"split_value,omitempty" db:"split_value,omitempty"`
	CategoryID        int              `json:"category_id,omitempty" db:"category_id,omitempty"`
	GroupID           *int             `json:"group_id,omitempty" db:"group_id,omitempty"`
	RecurringSourceID *int             `json:"recurring_source_id,omitempty" db:"recurring_source_id,omitempty"`
	Reference         string           `json:"reference,omitempty" db:"reference,omitempty"`
	CreatedAt         sql.NullString   `json:"created_at,omitempty" db:"created_at,omitempty"`
}

// Personal reports whether the expense is not actually shared: either no
// participants are listed, or the payer is the only one listed.
func (e Expense) Personal() bool {
	for _, id := range e.SplitParticipants {
		if id != e.PayerID {
			return false
		}
	}
	return true
}
