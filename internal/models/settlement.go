package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Settlement is a direct transfer outside the expense ledger. Amount is
// always positive and in the base currency; the direction lives in the
// payer/receiver pair.
type Settlement struct {
	ID          int             `json:"id,omitempty" db:"id,omitempty"`
	PayerID     int             `json:"payer_id,omitempty" db:"payer_id,omitempty"`
	ReceiverID  int             `json:"receiver_id,omitempty" db:"receiver_id,omitempty"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Date        time.Time       `json:"date" db:"date"`
	Description string          `json:"description,omitempty" db:"description,omitempty"`
	Reference   string          `json:"reference,omitempty" db:"reference,omitempty"`
	CreatedAt   sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
}
