package services

import (
	"context"
	"errors"
	"time"

	"splitkeeper/internal/models"
)

// In-memory store fakes. Each one applies the same scoping the MySQL store
// does, so the services see identical behavior in tests.

type fakeExpenseStore struct {
	expenses []models.Expense
	err      error
}

func (f *fakeExpenseStore) ExpensesInvolving(ctx context.Context, userID int) ([]models.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Expense
	for _, e := range f.expenses {
		if e.PayerID == userID || containsUser(e.SplitParticipants, userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenseStore) ExpensesForUser(ctx context.Context, userID int, from, to time.Time) ([]models.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Expense
	for _, e := range f.expenses {
		if e.PayerID != userID && !containsUser(e.SplitParticipants, userID) {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeExpenseStore) UnlinkedExpenses(ctx context.Context, userID int, from, to time.Time) ([]models.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Expense
	for _, e := range f.expenses {
		if e.OwnerID != userID || e.RecurringSourceID != nil {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeSettlementStore struct {
	settlements []models.Settlement
	err         error
}

func (f *fakeSettlementStore) SettlementsInvolving(ctx context.Context, userID int) ([]models.Settlement, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Settlement
	for _, s := range f.settlements {
		if s.PayerID == userID || s.ReceiverID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRateProvider struct {
	base       *models.Currency
	currencies map[string]models.Currency
}

func (f *fakeRateProvider) BaseCurrency(ctx context.Context) (models.Currency, error) {
	if f.base == nil {
		return models.Currency{}, errors.New("no rows")
	}
	return *f.base, nil
}

func (f *fakeRateProvider) Currency(ctx context.Context, code string) (models.Currency, error) {
	c, ok := f.currencies[code]
	if !ok {
		return models.Currency{}, errors.New("no rows")
	}
	return c, nil
}

type fakeCategoryStore struct {
	children map[int][]int
}

func (f *fakeCategoryStore) ChildCategoryIDs(ctx context.Context, categoryID int) ([]int, error) {
	return f.children[categoryID], nil
}

// fakeTemplateStore mimics the conditional last_materialized claim: a second
// materialization for a date the template already reached fails.
type fakeTemplateStore struct {
	templates      []models.RecurringTemplate
	inserted       []models.Expense
	materializeErr error
}

func (f *fakeTemplateStore) ActiveTemplates(ctx context.Context) ([]models.RecurringTemplate, error) {
	var out []models.RecurringTemplate
	for _, t := range f.templates {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplateStore) MaterializeTemplate(ctx context.Context, templateID int, expense *models.Expense, today time.Time) error {
	if f.materializeErr != nil {
		return f.materializeErr
	}
	for i := range f.templates {
		if f.templates[i].ID != templateID {
			continue
		}
		last := f.templates[i].LastMaterialized
		if last != nil && !last.Before(today) {
			return ErrAlreadyMaterialized
		}
		claimed := today
		f.templates[i].LastMaterialized = &claimed
		f.inserted = append(f.inserted, *expense)
		return nil
	}
	return errors.New("template not found")
}
