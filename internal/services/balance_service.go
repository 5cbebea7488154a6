package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"splitkeeper/pkg/utils"
)

// NetBalance is the signed net amount between a user and one counterparty.
// Positive means the counterparty owes the user, negative means the user
// owes the counterparty.
type NetBalance struct {
	CounterpartyID int             `json:"counterparty_id"`
	Amount         decimal.Decimal `json:"amount"`
}

// BalanceService nets a user's expense shares and direct settlements into
// per-counterparty totals. It holds no cross-call state and is safe for
// concurrent use.
type BalanceService struct {
	expenses    ExpenseStore
	settlements SettlementStore
}

func NewBalanceService(expenses ExpenseStore, settlements SettlementStore) *BalanceService {
	return &BalanceService{expenses: expenses, settlements: settlements}
}

// NetBalances returns the user's non-negligible net positions. Amounts
// within one cent of zero are dropped.
func (s *BalanceService) NetBalances(ctx context.Context, userID int) ([]NetBalance, error) {
	expenses, err := s.expenses.ExpensesInvolving(ctx, userID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch expenses for balance netting")
	}

	totals := make(map[int]decimal.Decimal)

	for _, e := range expenses {
		res := ComputeSplits(e)
		if e.PayerID == userID {
			// The user fronted the money: every other participant owes the
			// user their share.
			for _, p := range res.Participants {
				if p.UserID == userID {
					continue
				}
				totals[p.UserID] = totals[p.UserID].Add(p.Amount)
			}
		} else {
			// The user is a participant: their own share is owed to whoever
			// paid.
			share := res.ParticipantShare(userID)
			totals[e.PayerID] = totals[e.PayerID].Sub(share)
		}
	}

	settlements, err := s.settlements.SettlementsInvolving(ctx, userID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch settlements for balance netting")
	}

	// A settlement the user paid credits the user against the receiver: the
	// debt was discharged outside the ledger, so the counterparty's running
	// total moves up by the settled amount. The direction is deliberate and
	// pinned down by the round-trip test; do not re-derive it.
	for _, st := range settlements {
		switch userID {
		case st.PayerID:
			totals[st.ReceiverID] = totals[st.ReceiverID].Add(st.Amount)
		case st.ReceiverID:
			totals[st.PayerID] = totals[st.PayerID].Sub(st.Amount)
		}
	}

	balances := make([]NetBalance, 0, len(totals))
	for counterpartyID, amount := range totals {
		if amount.Abs().LessThanOrEqual(splitTolerance) {
			continue
		}
		balances = append(balances, NetBalance{CounterpartyID: counterpartyID, Amount: amount})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].CounterpartyID < balances[j].CounterpartyID
	})
	return balances, nil
}
