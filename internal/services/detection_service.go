package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"splitkeeper/internal/models"
	"splitkeeper/pkg/utils"
)

const (
	// detectionScoreCutoff drops clusters whose intervals are too irregular
	// to call a pattern. Ambiguous clusters are noise, not errors.
	detectionScoreCutoff = 0.70
	// singleIntervalScore applies when only one gap exists: variance cannot
	// be measured, so confidence is assumed high but not certain.
	singleIntervalScore = 0.95
	// maxConfidencePercent caps what is reported; a detected pattern is
	// never presented as 100% certain.
	maxConfidencePercent = 98.0
)

// DetectionService infers recurring-expense proposals from historical
// entries. It is read-only and idempotent: it never mutates expenses, and it
// skips entries already linked to a template, so it can run alongside
// materialization without coordination.
type DetectionService struct {
	expenses ExpenseStore
}

func NewDetectionService(expenses ExpenseStore) *DetectionService {
	return &DetectionService{expenses: expenses}
}

// DetectCandidates scans the user's unlinked expenses over the lookback
// window, clusters them by normalized description and rounded amount, and
// scores each surviving cluster on interval consistency. Results are
// proposals sorted by descending confidence; accepting one is the caller's
// operation.
func (s *DetectionService) DetectCandidates(ctx context.Context, userID, lookbackDays, minOccurrences int, now time.Time) ([]models.Candidate, error) {
	to := truncateToDay(now)
	from := to.AddDate(0, 0, -lookbackDays)

	expenses, err := s.expenses.UnlinkedExpenses(ctx, userID, from, to)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch expenses for recurrence detection")
	}

	groups := make(map[string][]models.Expense)
	for _, e := range expenses {
		key := normalizeDescription(e.Description) + "|" + e.Amount.Round(2).StringFixed(2)
		groups[key] = append(groups[key], e)
	}

	var candidates []models.Candidate
	for _, group := range groups {
		if len(group) < minOccurrences || len(group) < 2 {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		intervals := make([]int, 0, len(group)-1)
		for i := 1; i < len(group); i++ {
			intervals = append(intervals, daysBetween(truncateToDay(group[i-1].Date), truncateToDay(group[i].Date)))
		}

		mean := meanOf(intervals)
		frequency, ok := classifyInterval(mean)
		if !ok {
			continue
		}

		score := consistencyScore(intervals, mean)
		if score < detectionScoreCutoff {
			continue
		}

		latest := group[len(group)-1]
		lastDate := truncateToDay(latest.Date)
		candidates = append(candidates, models.Candidate{
			Description:  latest.Description,
			Amount:       latest.Amount.Round(2),
			CategoryID:   latest.CategoryID,
			CurrencyCode: latest.CurrencyCode,
			Frequency:    frequency,
			Confidence:   math.Min(score*100, maxConfidencePercent),
			Occurrences:  len(group),
			LastDate:     lastDate,
			NextExpected: nextExpectedDate(lastDate, frequency),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		if candidates[i].Occurrences != candidates[j].Occurrences {
			return candidates[i].Occurrences > candidates[j].Occurrences
		}
		return candidates[i].Description < candidates[j].Description
	})
	return candidates, nil
}

// classifyInterval maps an average day-gap onto a frequency bucket. Gaps
// falling outside every window are undetermined and the cluster is dropped.
func classifyInterval(avgDays float64) (models.Frequency, bool) {
	switch {
	case avgDays <= 3:
		return models.FrequencyDaily, true
	case avgDays >= 6 && avgDays <= 8:
		return models.FrequencyWeekly, true
	case avgDays >= 13 && avgDays <= 16:
		return models.FrequencyBiweekly, true
	case avgDays >= 25 && avgDays <= 35:
		return models.FrequencyMonthly, true
	case avgDays >= 85 && avgDays <= 95:
		return models.FrequencyQuarterly, true
	case avgDays >= 350 && avgDays <= 380:
		return models.FrequencyYearly, true
	}
	return "", false
}

// consistencyScore grades how regular the gaps are, in [0,1]. Confidence
// falls linearly with the coefficient of variation and collapses faster
// once variability exceeds half the mean.
func consistencyScore(intervals []int, mean float64) float64 {
	if len(intervals) == 1 {
		return singleIntervalScore
	}
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, iv := range intervals {
		d := float64(iv) - mean
		variance += d * d
	}
	variance /= float64(len(intervals))

	cv := math.Sqrt(variance) / mean
	if cv <= 0.5 {
		return 1 - cv
	}
	return math.Max(0, 1-1.5*cv)
}

// nextExpectedDate projects the next occurrence. Month-based frequencies
// use calendar arithmetic and clamp the day-of-month to the target month's
// last valid day, so a Jan 31 monthly charge lands on Feb 28.
func nextExpectedDate(last time.Time, frequency models.Frequency) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return last.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return last.AddDate(0, 0, 7)
	case models.FrequencyBiweekly:
		return last.AddDate(0, 0, 14)
	case models.FrequencyQuarterly:
		return addMonthsClamped(last, 3)
	case models.FrequencyYearly:
		return addMonthsClamped(last, 12)
	default:
		return addMonthsClamped(last, 1)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if lastDay := first.AddDate(0, 1, -1).Day(); day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func normalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func meanOf(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
