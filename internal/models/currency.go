package models

import "github.com/shopspring/decimal"

// Currency carries the multiplicative rate converting an amount in this
// currency to the base currency. At most one currency is the base at any
// time, and the base's own rate is always 1.
type Currency struct {
	ID         int             `json:"id,omitempty" db:"id,omitempty"`
	Code       string          `json:"code" db:"code"`
	Name       string          `json:"name,omitempty" db:"name,omitempty"`
	RateToBase decimal.Decimal `json:"rate_to_base" db:"rate_to_base"`
	IsBase     bool            `json:"is_base" db:"is_base"`
}
