package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"splitkeeper/internal/models"
)

func historyExpense(userID int, description string, amount decimal.Decimal, date time.Time) models.Expense {
	return models.Expense{
		Description:    description,
		Amount:         amount,
		OriginalAmount: amount,
		CurrencyCode:   "USD",
		PayerID:        userID,
		OwnerID:        userID,
		CategoryID:     5,
		Date:           date,
	}
}

func TestDetectCandidates_MonthlyPattern(t *testing.T) {
	now := day(2026, 4, 1)
	expenses := &fakeExpenseStore{expenses: []models.Expense{
		historyExpense(1, "Netflix Subscription", dec("45"), day(2026, 1, 1)),
		historyExpense(1, "Netflix Subscription", dec("45"), day(2026, 1, 31)),
		historyExpense(1, "Netflix Subscription", dec("45"), day(2026, 3, 2)),
	}}

	svc := NewDetectionService(expenses)

	candidates, err := svc.DetectCandidates(context.Background(), 1, 180, 3, now)
	if err != nil {
		t.Fatalf("DetectCandidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}

	c := candidates[0]
	if c.Frequency != models.FrequencyMonthly {
		t.Errorf("frequency = %s, want monthly", c.Frequency)
	}
	if c.Occurrences != 3 {
		t.Errorf("occurrences = %d, want 3", c.Occurrences)
	}
	if c.Confidence < 90 {
		t.Errorf("confidence = %.1f, want >= 90 for perfectly regular gaps", c.Confidence)
	}
	if c.Confidence > 98 {
		t.Errorf("confidence = %.1f, must never exceed 98", c.Confidence)
	}
	if !c.LastDate.Equal(day(2026, 3, 2)) {
		t.Errorf("last date = %s, want 2026-03-02", c.LastDate.Format("2006-01-02"))
	}
	if !c.NextExpected.Equal(day(2026, 4, 2)) {
		t.Errorf("next expected = %s, want 2026-04-02", c.NextExpected.Format("2006-01-02"))
	}
}

func TestDetectCandidates_NormalizesDescriptions(t *testing.T) {
	now := day(2026, 4, 1)
	// Same merchant, messy casing and spacing; still one cluster.
	expenses := &fakeExpenseStore{expenses: []models.Expense{
		historyExpense(1, "Spotify  Premium", dec("9.99"), day(2026, 1, 10)),
		historyExpense(1, " spotify premium ", dec("9.99"), day(2026, 2, 9)),
		historyExpense(1, "SPOTIFY PREMIUM", dec("9.99"), day(2026, 3, 11)),
	}}

	svc := NewDetectionService(expenses)

	candidates, err := svc.DetectCandidates(context.Background(), 1, 180, 3, now)
	if err != nil {
		t.Fatalf("DetectCandidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 normalized cluster", len(candidates))
	}
}

func TestDetectCandidates_IrregularGapsDropped(t *testing.T) {
	now := day(2026, 4, 1)
	// Average gap lands in the monthly window but the spread is wild.
	expenses := &fakeExpenseStore{expenses: []models.Expense{
		historyExpense(1, "Taxi", dec("20"), day(2026, 1, 1)),
		historyExpense(1, "Taxi", dec("20"), day(2026, 1, 6)),
		historyExpense(1, "Taxi", dec("20"), day(2026, 2, 25)),
	}}

	svc := NewDetectionService(expenses)

	candidates, err := svc.DetectCandidates(context.Background(), 1, 180, 3, now)
	if err != nil {
		t.Fatalf("DetectCandidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0 for irregular spacing", len(candidates))
	}
}

func TestDetectCandidates_RespectsMinOccurrences(t *testing.T) {
	now := day(2026, 4, 1)
	expenses := &fakeExpenseStore{expenses: []models.Expense{
		historyExpense(1, "Gym", dec("30"), day(2026, 2, 1)),
		historyExpense(1, "Gym", dec("30"), day(2026, 3, 1)),
	}}

	svc := NewDetectionService(expenses)

	candidates, err := svc.DetectCandidates(context.Background(), 1, 180, 3, now)
	if err != nil {
		t.Fatalf("DetectCandidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("two occurrences with min 3: got %d candidates, want 0", len(candidates))
	}

	// With the floor lowered, the single 28-day gap classifies as monthly
	// and scores the assumed-high single-interval confidence.
	candidates, err = svc.DetectCandidates(context.Background(), 1, 180, 2, now)
	if err != nil {
		t.Fatalf("DetectCandidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].Confidence != 95 {
		t.Errorf("single-interval confidence = %.1f, want 95", candidates[0].Confidence)
	}
}

func TestDetectCandidates_SkipsLinkedExpenses(t *testing.T) {
	now := day(2026, 4, 1)
	source := 9
	expenses := &fakeExpenseStore{expenses: []models.Expense{
		historyExpense(1, "Rent", dec("1200"), day(2026, 1, 1)),
		historyExpense(1, "Rent", dec("1200"), day(2026, 2, 1)),
		historyExpense(1, "Rent", dec("1200"), day(2026, 3, 1)),
	}}
	for i := range expenses.expenses {
		expenses.expenses[i].RecurringSourceID = &source
	}

	svc := NewDetectionService(expenses)

	candidates, err := svc.DetectCandidates(context.Background(), 1, 180, 3, now)
	if err != nil {
		t.Fatalf("DetectCandidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("already-templated expenses produced %d candidates, want 0", len(candidates))
	}
}

func TestDetectCandidates_AmountSeparatesClusters(t *testing.T) {
	now := day(2026, 4, 1)
	// Same description, different price points: two distinct clusters, each
	// below the occurrence floor on its own.
	expenses := &fakeExpenseStore{expenses: []models.Expense{
		historyExpense(1, "Cloud Storage", dec("5"), day(2026, 1, 1)),
		historyExpense(1, "Cloud Storage", dec("5"), day(2026, 2, 1)),
		historyExpense(1, "Cloud Storage", dec("15"), day(2026, 1, 15)),
		historyExpense(1, "Cloud Storage", dec("15"), day(2026, 2, 14)),
	}}

	svc := NewDetectionService(expenses)

	candidates, err := svc.DetectCandidates(context.Background(), 1, 180, 3, now)
	if err != nil {
		t.Fatalf("DetectCandidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0 when amounts split the cluster", len(candidates))
	}
}

func TestClassifyInterval(t *testing.T) {
	tests := []struct {
		avgDays float64
		want    models.Frequency
		ok      bool
	}{
		{1, models.FrequencyDaily, true},
		{7, models.FrequencyWeekly, true},
		{14, models.FrequencyBiweekly, true},
		{30, models.FrequencyMonthly, true},
		{90, models.FrequencyQuarterly, true},
		{365, models.FrequencyYearly, true},
		{20, "", false},
		{50, "", false},
	}

	for _, tc := range tests {
		got, ok := classifyInterval(tc.avgDays)
		if ok != tc.ok || got != tc.want {
			t.Errorf("classifyInterval(%.0f) = (%s, %v), want (%s, %v)", tc.avgDays, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNextExpectedDate_ClampsMonthEnd(t *testing.T) {
	got := nextExpectedDate(day(2026, 1, 31), models.FrequencyMonthly)
	if !got.Equal(day(2026, 2, 28)) {
		t.Errorf("Jan 31 monthly -> %s, want 2026-02-28", got.Format("2006-01-02"))
	}
}
