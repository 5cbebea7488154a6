package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"splitkeeper/internal/models"
	"splitkeeper/pkg/utils"
)

// RecurringService materializes concrete expenses from active templates.
// The scan is driven by an external timer (the daily cron job) and is safe
// to re-run: the store's conditional claim of last_materialized guarantees
// at most one generated expense per template per tick, even under
// overlapping scans. A template that missed several periods still emits only
// one instance per scan; there is no backfill.
type RecurringService struct {
	templates TemplateStore
}

func NewRecurringService(templates TemplateStore) *RecurringService {
	return &RecurringService{templates: templates}
}

// RunScan evaluates every active template against now and emits the due
// ones. A failure on one template is logged and does not stop the scan.
// Returns the expenses created this pass.
func (s *RecurringService) RunScan(ctx context.Context, now time.Time) ([]models.Expense, error) {
	today := truncateToDay(now)

	templates, err := s.templates.ActiveTemplates(ctx)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch active templates")
	}

	var created []models.Expense
	for _, tmpl := range templates {
		if tmpl.EndDate != nil && today.After(truncateToDay(*tmpl.EndDate)) {
			continue
		}
		if !DueOn(tmpl, today) {
			continue
		}

		expense := expenseFromTemplate(tmpl, today)
		err := s.templates.MaterializeTemplate(ctx, tmpl.ID, &expense, today)
		if errors.Is(err, ErrAlreadyMaterialized) {
			utils.Logger.Warnf("template %d already materialized for %s, skipping", tmpl.ID, today.Format("2006-01-02"))
			continue
		}
		if err != nil {
			utils.Logger.Errorf("failed to materialize template %d: %v", tmpl.ID, err)
			continue
		}
		created = append(created, expense)
	}
	return created, nil
}

// DueOn decides whether a template owes an instance on the given day. The
// day is compared against last_materialized, or the start date when nothing
// was ever generated. Monthly and yearly are calendar-boundary checks, not
// elapsed-day counts: Jan 15 to Feb 1 is due even though only 17 days
// passed.
func DueOn(tmpl models.RecurringTemplate, today time.Time) bool {
	last := truncateToDay(tmpl.StartDate)
	if tmpl.LastMaterialized != nil {
		last = truncateToDay(*tmpl.LastMaterialized)
	}

	switch tmpl.Frequency {
	case models.FrequencyDaily:
		return daysBetween(last, today) >= 1
	case models.FrequencyWeekly:
		return daysBetween(last, today) >= 7
	case models.FrequencyMonthly:
		if today.Year() != last.Year() {
			return today.Year() > last.Year()
		}
		return today.Month() > last.Month()
	case models.FrequencyYearly:
		return today.Year() > last.Year()
	}
	return false
}

func expenseFromTemplate(tmpl models.RecurringTemplate, today time.Time) models.Expense {
	sourceID := tmpl.ID
	return models.Expense{
		Description:       tmpl.Description,
		Amount:            tmpl.Amount,
		OriginalAmount:    tmpl.OriginalAmount,
		CurrencyCode:      tmpl.CurrencyCode,
		Date:              today,
		PayerID:           tmpl.OwnerID,
		OwnerID:           tmpl.OwnerID,
		SplitMethod:       tmpl.SplitMethod,
		SplitParticipants: tmpl.SplitParticipants,
		SplitDetails:      tmpl.SplitDetails,
		SplitValue:        tmpl.SplitValue,
		CategoryID:        tmpl.CategoryID,
		GroupID:           tmpl.GroupID,
		RecurringSourceID: &sourceID,
		Reference:         "rec-" + uuid.NewString(),
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from the date components alone, so a
// DST transition or differing zone offsets cannot shave a partial hour off
// the gap and truncate a day away.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
