package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"splitkeeper/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeSplits_EqualPayerUnlisted(t *testing.T) {
	e := models.Expense{
		Amount:            dec("100"),
		OriginalAmount:    dec("100"),
		PayerID:           1,
		SplitMethod:       models.SplitEqual,
		SplitParticipants: []int{2, 3, 4},
	}

	res := ComputeSplits(e)

	if !res.Payer.Amount.Equal(dec("25")) {
		t.Errorf("payer share = %s, want 25", res.Payer.Amount)
	}
	if len(res.Participants) != 3 {
		t.Fatalf("got %d participants, want 3", len(res.Participants))
	}
	for _, p := range res.Participants {
		if !p.Amount.Equal(dec("25")) {
			t.Errorf("participant %d share = %s, want 25", p.UserID, p.Amount)
		}
	}
}

func TestComputeSplits_EqualPayerListed(t *testing.T) {
	e := models.Expense{
		Amount:            dec("90"),
		OriginalAmount:    dec("90"),
		PayerID:           1,
		SplitMethod:       models.SplitEqual,
		SplitParticipants: []int{1, 2, 3},
	}

	res := ComputeSplits(e)

	// A listed payer appears in the participant list with a regular share
	// and carries nothing in the payer slot.
	if !res.Payer.Amount.IsZero() {
		t.Errorf("payer slot = %s, want 0", res.Payer.Amount)
	}
	if got := res.ParticipantShare(1); !got.Equal(dec("30")) {
		t.Errorf("payer's participant share = %s, want 30", got)
	}
	if got := res.UserShare(1); !got.Equal(dec("30")) {
		t.Errorf("payer's total stake = %s, want 30", got)
	}
	for _, p := range res.Participants {
		if !p.Amount.Equal(dec("30")) {
			t.Errorf("participant %d share = %s, want 30", p.UserID, p.Amount)
		}
	}
}

func TestComputeSplits_EqualThreeWayRounding(t *testing.T) {
	e := models.Expense{
		Amount:            dec("100"),
		OriginalAmount:    dec("100"),
		PayerID:           1,
		SplitMethod:       models.SplitEqual,
		SplitParticipants: []int{2, 3},
	}

	res := ComputeSplits(e)

	// 100/3 rounds to 33.33 each; the one-cent drift stays within tolerance
	// and no share is adjusted.
	if !res.Payer.Amount.Equal(dec("33.33")) {
		t.Errorf("payer share = %s, want 33.33", res.Payer.Amount)
	}
	for _, p := range res.Participants {
		if !p.Amount.Equal(dec("33.33")) {
			t.Errorf("participant %d share = %s, want 33.33", p.UserID, p.Amount)
		}
	}
}

func TestComputeSplits_EqualSevenWayReconciles(t *testing.T) {
	// 100/7 rounds to 14.29 a head; seven heads drift three cents past the
	// total. The last participant absorbs the difference so the parts still
	// sum to the expense amount.
	e := models.Expense{
		Amount:            dec("100"),
		OriginalAmount:    dec("100"),
		PayerID:           1,
		SplitMethod:       models.SplitEqual,
		SplitParticipants: []int{2, 3, 4, 5, 6, 7},
	}

	res := ComputeSplits(e)

	if !res.Payer.Amount.Equal(dec("14.29")) {
		t.Errorf("payer share = %s, want 14.29", res.Payer.Amount)
	}
	if got := res.ParticipantShare(7); !got.Equal(dec("14.26")) {
		t.Errorf("last participant share = %s, want 14.26 after correction", got)
	}

	sum := res.Payer.Amount
	origSum := res.Payer.OriginalAmount
	for _, p := range res.Participants {
		sum = sum.Add(p.Amount)
		origSum = origSum.Add(p.OriginalAmount)
	}
	if !sum.Equal(e.Amount) {
		t.Errorf("shares sum to %s, want %s", sum, e.Amount)
	}
	if !origSum.Equal(e.OriginalAmount) {
		t.Errorf("original shares sum to %s, want %s", origSum, e.OriginalAmount)
	}
}

func TestComputeSplits_Percentage(t *testing.T) {
	e := models.Expense{
		Amount:            dec("200"),
		OriginalAmount:    dec("200"),
		PayerID:           1,
		SplitMethod:       models.SplitPercentage,
		SplitParticipants: []int{2, 3},
		SplitDetails: &models.SplitDetails{
			Type:   models.SplitDetailsPercentage,
			Values: map[int]decimal.Decimal{2: dec("60"), 3: dec("40")},
		},
	}

	res := ComputeSplits(e)

	if got := res.ParticipantShare(2); !got.Equal(dec("120")) {
		t.Errorf("user 2 share = %s, want 120", got)
	}
	if got := res.ParticipantShare(3); !got.Equal(dec("80")) {
		t.Errorf("user 3 share = %s, want 80", got)
	}
	if !res.Payer.Amount.IsZero() {
		t.Errorf("payer share = %s, want 0", res.Payer.Amount)
	}
}

func TestComputeSplits_PercentageLegacyScalar(t *testing.T) {
	half := dec("50")
	e := models.Expense{
		Amount:            dec("200"),
		OriginalAmount:    dec("200"),
		PayerID:           1,
		SplitMethod:       models.SplitPercentage,
		SplitParticipants: []int{2, 3},
		SplitValue:        &half,
	}

	res := ComputeSplits(e)

	// Payer keeps 50%, the remainder splits evenly over the others.
	if !res.Payer.Amount.Equal(dec("100")) {
		t.Errorf("payer share = %s, want 100", res.Payer.Amount)
	}
	if got := res.ParticipantShare(2); !got.Equal(dec("50")) {
		t.Errorf("user 2 share = %s, want 50", got)
	}
	if got := res.ParticipantShare(3); !got.Equal(dec("50")) {
		t.Errorf("user 3 share = %s, want 50", got)
	}
}

func TestComputeSplits_CustomReconciliation(t *testing.T) {
	e := models.Expense{
		Amount:            dec("100"),
		OriginalAmount:    dec("100"),
		PayerID:           1,
		SplitMethod:       models.SplitCustom,
		SplitParticipants: []int{2, 3},
		SplitDetails: &models.SplitDetails{
			Type: models.SplitDetailsAmount,
			Values: map[int]decimal.Decimal{
				1: dec("33.33"),
				2: dec("33.33"),
				3: dec("33.30"),
			},
		},
	}

	res := ComputeSplits(e)

	// Configured parts sum to 99.96; the 4-cent gap lands on the last
	// participant, deterministically.
	if got := res.ParticipantShare(3); !got.Equal(dec("33.34")) {
		t.Errorf("last participant share = %s, want 33.34 after correction", got)
	}

	sum := res.Payer.Amount
	for _, p := range res.Participants {
		sum = sum.Add(p.Amount)
	}
	if !sum.Equal(e.Amount) {
		t.Errorf("shares sum to %s, want %s", sum, e.Amount)
	}
}

func TestComputeSplits_CustomOriginalCurrencyScaling(t *testing.T) {
	e := models.Expense{
		Amount:            dec("100"),
		OriginalAmount:    dec("80"),
		CurrencyCode:      "EUR",
		PayerID:           1,
		SplitMethod:       models.SplitCustom,
		SplitParticipants: []int{2},
		SplitDetails: &models.SplitDetails{
			Type:   models.SplitDetailsAmount,
			Values: map[int]decimal.Decimal{1: dec("50"), 2: dec("50")},
		},
	}

	res := ComputeSplits(e)

	if !res.Payer.OriginalAmount.Equal(dec("40")) {
		t.Errorf("payer original share = %s, want 40", res.Payer.OriginalAmount)
	}
	if got := res.Participants[0].OriginalAmount; !got.Equal(dec("40")) {
		t.Errorf("participant original share = %s, want 40", got)
	}
}

func TestComputeSplits_PersonalExpense(t *testing.T) {
	for _, participants := range [][]int{nil, {1}} {
		e := models.Expense{
			Amount:            dec("42.50"),
			OriginalAmount:    dec("42.50"),
			PayerID:           1,
			SplitMethod:       models.SplitEqual,
			SplitParticipants: participants,
		}

		res := ComputeSplits(e)

		if !res.Payer.Amount.Equal(dec("42.50")) {
			t.Errorf("participants=%v: payer share = %s, want 42.50", participants, res.Payer.Amount)
		}
		if len(res.Participants) != 0 {
			t.Errorf("participants=%v: got %d participant shares, want 0", participants, len(res.Participants))
		}
	}
}

func TestComputeSplits_DegenerateConfigIsAllZero(t *testing.T) {
	// Percentage method with neither per-user details nor the legacy scalar:
	// every value reads as zero, and no correction is forced onto anyone.
	e := models.Expense{
		Amount:            dec("100"),
		OriginalAmount:    dec("100"),
		PayerID:           1,
		SplitMethod:       models.SplitPercentage,
		SplitParticipants: []int{2, 3},
	}

	res := ComputeSplits(e)

	if !res.Payer.Amount.IsZero() {
		t.Errorf("payer share = %s, want 0", res.Payer.Amount)
	}
	for _, p := range res.Participants {
		if !p.Amount.IsZero() {
			t.Errorf("participant %d share = %s, want 0", p.UserID, p.Amount)
		}
	}
}

func TestComputeSplits_DuplicateParticipantsCountOnce(t *testing.T) {
	e := models.Expense{
		Amount:            dec("100"),
		OriginalAmount:    dec("100"),
		PayerID:           1,
		SplitMethod:       models.SplitEqual,
		SplitParticipants: []int{2, 2, 3},
	}

	res := ComputeSplits(e)

	if len(res.Participants) != 2 {
		t.Fatalf("got %d participants, want 2 after dedupe", len(res.Participants))
	}
	if !res.Payer.Amount.Equal(dec("33.33")) {
		t.Errorf("payer share = %s, want 33.33", res.Payer.Amount)
	}
}
