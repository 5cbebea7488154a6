package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candidate is a detector-proposed recurring pattern. It is a proposal only;
// accepting one constructs a RecurringTemplate in a separate operation.
type Candidate struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	CategoryID   int             `json:"category_id"`
	CurrencyCode string          `json:"currency_code"`
	Frequency    Frequency       `json:"frequency"`
	Confidence   float64         `json:"confidence"` // percent, never reported above 98
	Occurrences  int             `json:"occurrences"`
	LastDate     time.Time       `json:"last_date"`
	NextExpected time.Time       `json:"next_expected"`
}
