package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"splitkeeper/internal/models"
)

func TestNetBalances_ExpenseThenSettlementRoundTrip(t *testing.T) {
	// User 1 fronts a $50 dinner split with user 2, then user 2 settles
	// their $25 share directly. Both parties must net to zero afterwards.
	expenses := &fakeExpenseStore{expenses: []models.Expense{
		{
			ID:                1,
			Amount:            dec("50"),
			OriginalAmount:    dec("50"),
			PayerID:           1,
			SplitMethod:       models.SplitEqual,
			SplitParticipants: []int{2},
			Date:              time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	settlements := &fakeSettlementStore{settlements: []models.Settlement{
		{ID: 1, PayerID: 2, ReceiverID: 1, Amount: dec("25")},
	}}

	svc := NewBalanceService(expenses, settlements)

	for _, userID := range []int{1, 2} {
		balances, err := svc.NetBalances(context.Background(), userID)
		if err != nil {
			t.Fatalf("NetBalances(%d): %v", userID, err)
		}
		if len(balances) != 0 {
			t.Errorf("user %d: got %d open balances after full settlement, want 0: %+v", userID, len(balances), balances)
		}
	}
}

func TestNetBalances_SymmetricViews(t *testing.T) {
	expenses := &fakeExpenseStore{expenses: []models.Expense{
		{
			ID:                1,
			Amount:            dec("90"),
			OriginalAmount:    dec("90"),
			PayerID:           1,
			SplitMethod:       models.SplitEqual,
			SplitParticipants: []int{2, 3},
		},
	}}
	settlements := &fakeSettlementStore{}

	svc := NewBalanceService(expenses, settlements)

	// Payer's view: both counterparties owe their 30.
	balances, err := svc.NetBalances(context.Background(), 1)
	if err != nil {
		t.Fatalf("NetBalances(1): %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2", len(balances))
	}
	if balances[0].CounterpartyID != 2 || balances[1].CounterpartyID != 3 {
		t.Errorf("balances not sorted by counterparty: %+v", balances)
	}
	for _, b := range balances {
		if !b.Amount.Equal(dec("30")) {
			t.Errorf("counterparty %d: amount = %s, want 30", b.CounterpartyID, b.Amount)
		}
	}

	// Participant's view: the same position, negated.
	balances, err = svc.NetBalances(context.Background(), 2)
	if err != nil {
		t.Fatalf("NetBalances(2): %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("got %d balances, want 1", len(balances))
	}
	if balances[0].CounterpartyID != 1 || !balances[0].Amount.Equal(dec("-30")) {
		t.Errorf("got %+v, want counterparty 1 at -30", balances[0])
	}
}

func TestNetBalances_DropsNegligibleAmounts(t *testing.T) {
	expenses := &fakeExpenseStore{expenses: []models.Expense{
		{
			ID:                1,
			Amount:            dec("0.01"),
			OriginalAmount:    dec("0.01"),
			PayerID:           1,
			SplitMethod:       models.SplitCustom,
			SplitParticipants: []int{2},
			SplitDetails: &models.SplitDetails{
				Type:   models.SplitDetailsAmount,
				Values: map[int]decimal.Decimal{2: dec("0.01")},
			},
		},
	}}
	settlements := &fakeSettlementStore{}

	svc := NewBalanceService(expenses, settlements)

	balances, err := svc.NetBalances(context.Background(), 1)
	if err != nil {
		t.Fatalf("NetBalances: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("one-cent position should be dropped, got %+v", balances)
	}
}
