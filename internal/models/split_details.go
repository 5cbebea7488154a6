package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type SplitDetailsType string

const (
	SplitDetailsPercentage SplitDetailsType = "percentage"
	SplitDetailsAmount     SplitDetailsType = "amount"
)

// SplitDetails is the per-user split configuration of an expense: either
// percentage points or absolute amounts keyed by user id. Records created
// before per-user details existed carry the legacy scalar on the expense
// itself and have no SplitDetails. Decoded once at the storage boundary,
// never re-interpreted downstream.
type SplitDetails struct {
	Type   SplitDetailsType        `json:"type"`
	Values map[int]decimal.Decimal `json:"values"`
}

// Value returns the configured value for a user, zero if the details are nil
// or the user has no entry.
func (d *SplitDetails) Value(userID int) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return d.Values[userID]
}

// ParseSplitDetails decodes the stored JSON blob. An empty blob means the
// expense predates per-user details; an unknown type is a corrupt record and
// surfaces as an error.
func ParseSplitDetails(raw []byte) (*SplitDetails, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var details SplitDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, fmt.Errorf("failed to decode split details: %w", err)
	}

	if details.Type != SplitDetailsPercentage && details.Type != SplitDetailsAmount {
		return nil, fmt.Errorf("unknown split details type %q", details.Type)
	}
	return &details, nil
}
