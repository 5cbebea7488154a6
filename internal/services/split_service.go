package services

import (
	"github.com/shopspring/decimal"

	"splitkeeper/internal/models"
)

// splitTolerance is the reconciliation threshold: computed parts may drift
// from the expense total by at most one cent before the correction kicks in.
var splitTolerance = decimal.NewFromFloat(0.01)

var oneHundred = decimal.NewFromInt(100)

// SplitShare is one party's slice of an expense, in both the base currency
// and the currency the expense was entered in.
type SplitShare struct {
	UserID         int             `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
}

// SplitResult is the full per-party breakdown of one expense. A payer who is
// also listed as a participant appears in Participants with their share and
// carries zero in Payer, so the parts always sum to the expense amount.
type SplitResult struct {
	Payer        SplitShare   `json:"payer"`
	Participants []SplitShare `json:"participants"`
}

// UserShare returns the user's own stake in the expense: their payer share
// plus any participant share. One of the two is always zero.
func (r SplitResult) UserShare(userID int) decimal.Decimal {
	total := decimal.Zero
	if r.Payer.UserID == userID {
		total = total.Add(r.Payer.Amount)
	}
	for _, p := range r.Participants {
		if p.UserID == userID {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// ParticipantShare returns the listed participant's base-currency share,
// zero if the user is not listed.
func (r SplitResult) ParticipantShare(userID int) decimal.Decimal {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return p.Amount
		}
	}
	return decimal.Zero
}

// ComputeSplits turns one expense into its per-party monetary breakdown.
// It is a pure function over the expense's own fields and is re-run on every
// read; split configuration can change between reads, so results are never
// cached. Results are deterministic, including which party absorbs the
// rounding remainder.
func ComputeSplits(e models.Expense) SplitResult {
	participants := dedupeUsers(e.SplitParticipants)

	// No participants, or the payer listed alone: a personal expense. The
	// payer owns the whole amount.
	if e.Personal() {
		return SplitResult{Payer: SplitShare{
			UserID:         e.PayerID,
			Amount:         e.Amount,
			OriginalAmount: e.OriginalAmount,
		}}
	}

	switch e.SplitMethod {
	case models.SplitPercentage:
		return percentageSplit(e, participants)
	case models.SplitCustom:
		return customSplit(e, participants)
	default:
		return equalSplit(e, participants)
	}
}

// equalSplit divides the amount evenly across everyone involved. The payer
// counts once: implicitly when absent from the participant list, via their
// listing otherwise. A listed payer is just another payee and gets no extra
// payer share.
func equalSplit(e models.Expense, participants []int) SplitResult {
	res := SplitResult{Payer: SplitShare{UserID: e.PayerID}}

	payerListed := containsUser(participants, e.PayerID)
	headCount := len(participants)
	if !payerListed {
		headCount++
	}
	if headCount == 0 {
		return res
	}

	n := decimal.NewFromInt(int64(headCount))
	share := e.Amount.Div(n).Round(2)
	origShare := e.OriginalAmount.Div(n).Round(2)

	for _, id := range participants {
		res.Participants = append(res.Participants, SplitShare{
			UserID:         id,
			Amount:         share,
			OriginalAmount: origShare,
		})
	}
	if !payerListed {
		res.Payer.Amount = share
		res.Payer.OriginalAmount = origShare
	}
	reconcile(&res, e.Amount, e.OriginalAmount)
	return res
}

// percentageSplit applies per-user percentage points from the split details,
// falling back to the legacy scalar for records that predate per-user
// details: the payer keeps split_value percent and the rest is divided
// equally among the participants.
func percentageSplit(e models.Expense, participants []int) SplitResult {
	res := SplitResult{Payer: SplitShare{UserID: e.PayerID}}
	payerListed := containsUser(participants, e.PayerID)

	if d := e.SplitDetails; d != nil && d.Type == models.SplitDetailsPercentage {
		for _, id := range participants {
			pct := d.Value(id)
			res.Participants = append(res.Participants, SplitShare{
				UserID:         id,
				Amount:         e.Amount.Mul(pct).Div(oneHundred).Round(2),
				OriginalAmount: e.OriginalAmount.Mul(pct).Div(oneHundred).Round(2),
			})
		}
		if !payerListed {
			pct := d.Value(e.PayerID)
			res.Payer.Amount = e.Amount.Mul(pct).Div(oneHundred).Round(2)
			res.Payer.OriginalAmount = e.OriginalAmount.Mul(pct).Div(oneHundred).Round(2)
		}
		reconcile(&res, e.Amount, e.OriginalAmount)
		return res
	}

	if e.SplitValue == nil {
		// Neither details nor the legacy scalar: unlisted values count as
		// zero, so everyone's share is zero. Degenerate but valid.
		return zeroShares(res, participants)
	}

	payerAmt := e.Amount.Mul(*e.SplitValue).Div(oneHundred).Round(2)
	payerOrig := e.OriginalAmount.Mul(*e.SplitValue).Div(oneHundred).Round(2)
	res.Payer.Amount = payerAmt
	res.Payer.OriginalAmount = payerOrig

	others := excludeUser(participants, e.PayerID)
	if len(others) > 0 {
		n := decimal.NewFromInt(int64(len(others)))
		share := e.Amount.Sub(payerAmt).Div(n).Round(2)
		origShare := e.OriginalAmount.Sub(payerOrig).Div(n).Round(2)
		for _, id := range others {
			res.Participants = append(res.Participants, SplitShare{
				UserID:         id,
				Amount:         share,
				OriginalAmount: origShare,
			})
		}
	}
	reconcile(&res, e.Amount, e.OriginalAmount)
	return res
}

// customSplit takes absolute base-currency amounts from the split details,
// with the same legacy-scalar fallback as percentageSplit. Original-currency
// shares are derived by scaling each base share against the expense totals.
func customSplit(e models.Expense, participants []int) SplitResult {
	res := SplitResult{Payer: SplitShare{UserID: e.PayerID}}
	payerListed := containsUser(participants, e.PayerID)

	if d := e.SplitDetails; d != nil && d.Type == models.SplitDetailsAmount {
		for _, id := range participants {
			amt := d.Value(id)
			res.Participants = append(res.Participants, SplitShare{
				UserID:         id,
				Amount:         amt,
				OriginalAmount: scaleToOriginal(amt, e),
			})
		}
		if !payerListed {
			amt := d.Value(e.PayerID)
			res.Payer.Amount = amt
			res.Payer.OriginalAmount = scaleToOriginal(amt, e)
		}
		reconcile(&res, e.Amount, e.OriginalAmount)
		return res
	}

	if e.SplitValue == nil {
		return zeroShares(res, participants)
	}

	payerAmt := *e.SplitValue
	res.Payer.Amount = payerAmt
	res.Payer.OriginalAmount = scaleToOriginal(payerAmt, e)

	others := excludeUser(participants, e.PayerID)
	if len(others) > 0 {
		n := decimal.NewFromInt(int64(len(others)))
		share := e.Amount.Sub(payerAmt).Div(n).Round(2)
		for _, id := range others {
			res.Participants = append(res.Participants, SplitShare{
				UserID:         id,
				Amount:         share,
				OriginalAmount: scaleToOriginal(share, e),
			})
		}
	}
	reconcile(&res, e.Amount, e.OriginalAmount)
	return res
}

// reconcile closes any rounding gap beyond one cent by adjusting the last
// participant, or the payer when there are no participants. Callers must
// treat the chosen party as deterministic, not random.
func reconcile(res *SplitResult, total, originalTotal decimal.Decimal) {
	sum := res.Payer.Amount
	origSum := res.Payer.OriginalAmount
	for _, p := range res.Participants {
		sum = sum.Add(p.Amount)
		origSum = origSum.Add(p.OriginalAmount)
	}

	if diff := total.Sub(sum); diff.Abs().GreaterThan(splitTolerance) {
		if n := len(res.Participants); n > 0 {
			res.Participants[n-1].Amount = res.Participants[n-1].Amount.Add(diff)
		} else {
			res.Payer.Amount = res.Payer.Amount.Add(diff)
		}
	}
	if diff := originalTotal.Sub(origSum); diff.Abs().GreaterThan(splitTolerance) {
		if n := len(res.Participants); n > 0 {
			res.Participants[n-1].OriginalAmount = res.Participants[n-1].OriginalAmount.Add(diff)
		} else {
			res.Payer.OriginalAmount = res.Payer.OriginalAmount.Add(diff)
		}
	}
}

// scaleToOriginal maps a base-currency share onto the original currency by
// proportion, guarding a zero expense amount.
func scaleToOriginal(amt decimal.Decimal, e models.Expense) decimal.Decimal {
	if e.Amount.IsZero() {
		return decimal.Zero
	}
	return amt.Div(e.Amount).Mul(e.OriginalAmount).Round(2)
}

func zeroShares(res SplitResult, participants []int) SplitResult {
	for _, id := range participants {
		res.Participants = append(res.Participants, SplitShare{UserID: id})
	}
	return res
}

func dedupeUsers(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func excludeUser(ids []int, userID int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

func containsUser(ids []int, userID int) bool {
	for _, id := range ids {
		if id == userID {
			return true
		}
	}
	return false
}
