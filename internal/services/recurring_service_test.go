package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"splitkeeper/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDueOn(t *testing.T) {
	tests := []struct {
		name      string
		frequency models.Frequency
		last      time.Time
		today     time.Time
		want      bool
	}{
		{"daily next day", models.FrequencyDaily, day(2026, 1, 15), day(2026, 1, 16), true},
		{"daily same day", models.FrequencyDaily, day(2026, 1, 15), day(2026, 1, 15), false},
		{"weekly after six days", models.FrequencyWeekly, day(2026, 1, 5), day(2026, 1, 11), false},
		{"weekly after seven days", models.FrequencyWeekly, day(2026, 1, 5), day(2026, 1, 12), true},
		{"monthly crosses boundary early", models.FrequencyMonthly, day(2026, 1, 15), day(2026, 2, 1), true},
		{"monthly same month", models.FrequencyMonthly, day(2026, 1, 15), day(2026, 1, 20), false},
		{"monthly across year end", models.FrequencyMonthly, day(2025, 12, 20), day(2026, 1, 1), true},
		{"yearly new year", models.FrequencyYearly, day(2025, 6, 1), day(2026, 1, 1), true},
		{"yearly same year", models.FrequencyYearly, day(2025, 6, 1), day(2025, 12, 31), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			last := tc.last
			tmpl := models.RecurringTemplate{
				Frequency:        tc.frequency,
				StartDate:        tc.last.AddDate(-1, 0, 0),
				LastMaterialized: &last,
			}
			if got := DueOn(tmpl, tc.today); got != tc.want {
				t.Errorf("DueOn = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDaysBetween_IgnoresZoneOffsets(t *testing.T) {
	// Seven calendar days apart, but the endpoints carry different zone
	// offsets so the instant difference is short of 168 hours. The count
	// must come from the dates, not the elapsed duration.
	from := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 12, 0, 0, 0, 0, time.FixedZone("", 5*3600))

	if got := daysBetween(from, to); got != 7 {
		t.Errorf("daysBetween = %d, want 7", got)
	}
}

func TestDueOn_WeeklyAcrossOffsetChange(t *testing.T) {
	// A weekly template whose last instance and scan day sit at different
	// zone offsets is still due exactly on the seventh date.
	loc := time.FixedZone("", -5*3600)
	last := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	tmpl := models.RecurringTemplate{
		Frequency:        models.FrequencyWeekly,
		StartDate:        last.AddDate(0, -1, 0),
		LastMaterialized: &last,
	}

	today := time.Date(2026, 3, 9, 0, 0, 0, 0, time.FixedZone("", -4*3600))
	if !DueOn(tmpl, today) {
		t.Error("weekly template should be due seven dates later regardless of offset")
	}
}

func TestDueOn_NeverMaterializedUsesStartDate(t *testing.T) {
	tmpl := models.RecurringTemplate{
		Frequency: models.FrequencyMonthly,
		StartDate: day(2026, 1, 15),
	}
	if !DueOn(tmpl, day(2026, 2, 1)) {
		t.Error("template with no history should be due once a month boundary passes its start date")
	}
	if DueOn(tmpl, day(2026, 1, 31)) {
		t.Error("template should not be due within its start month")
	}
}

func TestRunScan_MaterializesDueTemplate(t *testing.T) {
	last := day(2026, 1, 15)
	store := &fakeTemplateStore{templates: []models.RecurringTemplate{
		{
			ID:               7,
			OwnerID:          3,
			Description:      "Rent",
			Amount:           dec("1200"),
			OriginalAmount:   dec("1200"),
			Frequency:        models.FrequencyMonthly,
			StartDate:        day(2025, 6, 1),
			LastMaterialized: &last,
			Active:           true,
		},
	}}

	svc := NewRecurringService(store)

	created, err := svc.RunScan(context.Background(), day(2026, 2, 1))
	if err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d expenses, want 1", len(created))
	}

	e := created[0]
	if e.PayerID != 3 || e.OwnerID != 3 {
		t.Errorf("payer/owner = %d/%d, want 3/3", e.PayerID, e.OwnerID)
	}
	if e.RecurringSourceID == nil || *e.RecurringSourceID != 7 {
		t.Error("generated expense must link back to its template")
	}
	if !strings.HasPrefix(e.Reference, "rec-") {
		t.Errorf("reference %q missing rec- prefix", e.Reference)
	}
	if !e.Date.Equal(day(2026, 2, 1)) {
		t.Errorf("expense date = %s, want scan day", e.Date.Format("2006-01-02"))
	}
}

func TestRunScan_SecondPassCreatesNothing(t *testing.T) {
	store := &fakeTemplateStore{templates: []models.RecurringTemplate{
		{
			ID:             1,
			OwnerID:        1,
			Description:    "Gym",
			Amount:         dec("30"),
			OriginalAmount: dec("30"),
			Frequency:      models.FrequencyMonthly,
			StartDate:      day(2026, 1, 10),
			Active:         true,
		},
	}}

	svc := NewRecurringService(store)
	today := day(2026, 2, 2)

	created, err := svc.RunScan(context.Background(), today)
	if err != nil {
		t.Fatalf("first RunScan: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("first scan created %d, want 1", len(created))
	}

	// The template's claim already advanced; an overlapping scan must not
	// emit a duplicate, and the rejection is not an error.
	created, err = svc.RunScan(context.Background(), today)
	if err != nil {
		t.Fatalf("second RunScan: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("second scan created %d, want 0", len(created))
	}
	if len(store.inserted) != 1 {
		t.Errorf("%d expenses inserted against the store, want 1", len(store.inserted))
	}
}

func TestRunScan_LosingWriterSkipsQuietly(t *testing.T) {
	// A concurrent scan already claimed the template. The losing writer
	// creates nothing and the scan still succeeds.
	store := &fakeTemplateStore{
		templates: []models.RecurringTemplate{
			{
				ID: 1, OwnerID: 1, Description: "Gym", Amount: dec("30"), OriginalAmount: dec("30"),
				Frequency: models.FrequencyMonthly, StartDate: day(2026, 1, 10), Active: true,
			},
		},
		materializeErr: ErrAlreadyMaterialized,
	}

	svc := NewRecurringService(store)

	created, err := svc.RunScan(context.Background(), day(2026, 2, 2))
	if err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("losing writer created %d expenses, want 0", len(created))
	}
}

func TestRunScan_SkipsEndedAndInactiveTemplates(t *testing.T) {
	ended := day(2026, 1, 31)
	store := &fakeTemplateStore{templates: []models.RecurringTemplate{
		{
			ID: 1, OwnerID: 1, Description: "Expired", Amount: dec("10"), OriginalAmount: dec("10"),
			Frequency: models.FrequencyDaily, StartDate: day(2026, 1, 1), EndDate: &ended, Active: true,
		},
		{
			ID: 2, OwnerID: 1, Description: "Paused", Amount: dec("10"), OriginalAmount: dec("10"),
			Frequency: models.FrequencyDaily, StartDate: day(2026, 1, 1), Active: false,
		},
	}}

	svc := NewRecurringService(store)

	created, err := svc.RunScan(context.Background(), day(2026, 2, 15))
	if err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("created %d expenses from ended/inactive templates, want 0", len(created))
	}
}

func TestRunScan_NoBackfillForMissedPeriods(t *testing.T) {
	// Several missed months still produce exactly one instance per scan.
	last := day(2025, 10, 1)
	store := &fakeTemplateStore{templates: []models.RecurringTemplate{
		{
			ID: 1, OwnerID: 1, Description: "Hosting", Amount: dec("5"), OriginalAmount: dec("5"),
			Frequency: models.FrequencyMonthly, StartDate: day(2025, 1, 1),
			LastMaterialized: &last, Active: true,
		},
	}}

	svc := NewRecurringService(store)

	created, err := svc.RunScan(context.Background(), day(2026, 2, 1))
	if err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	if len(created) != 1 {
		t.Errorf("created %d expenses, want exactly 1 with no backfill", len(created))
	}
}
