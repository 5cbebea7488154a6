package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// ValidTemplateFrequency reports whether f is one of the frequencies a
// template may carry. Biweekly and quarterly exist only as detector buckets.
func ValidTemplateFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringTemplate is a long-lived pattern the materializer turns into
// concrete expenses on schedule. LastMaterialized, once set, only moves
// forward, and always names a date for which a generated expense exists.
type RecurringTemplate struct {
	ID                int              `json:"id,omitempty" db:"id,omitempty"`
	OwnerID           int              `json:"owner_id,omitempty" db:"owner_id,omitempty"`
	Description       string           `json:"description,omitempty" db:"description,omitempty"`
	Amount            decimal.Decimal  `json:"amount" db:"amount"`
	OriginalAmount    decimal.Decimal  `json:"original_amount" db:"original_amount"`
	CurrencyCode      string           `json:"currency_code,omitempty" db:"currency_code,omitempty"`
	CategoryID        int              `json:"category_id,omitempty" db:"category_id,omitempty"`
	GroupID           *int             `json:"group_id,omitempty" db:"group_id,omitempty"`
	SplitMethod       SplitMethod      `json:"split_method,omitempty" db:"split_method,omitempty"`
	SplitParticipants []int            `json:"split_participants,omitempty" db:"split_participants,omitempty"`
	SplitDetails      *SplitDetails    `json:"split_details,omitempty" db:"split_details,omitempty"`
	SplitValue        *decimal.Decimal `json:"split_value,omitempty" db:"split_value,omitempty"`
	Frequency         Frequency        `json:"frequency" db:"frequency"`
	StartDate         time.Time        `json:"start_date" db:"start_date"`
	EndDate           *time.Time       `json:"end_date,omitempty" db:"end_date,omitempty"`
	LastMaterialized  *time.Time       `json:"last_materialized,omitempty" db:"last_materialized,omitempty"`
	Active            bool             `json:"active" db:"active"`
	CreatedAt         sql.NullString   `json:"created_at,omitempty" db:"created_at,omitempty"`
}
