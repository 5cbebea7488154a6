package cron

import (
	"context"
	"database/sql"
	"fmt"
	"splitkeeper/internal/models"
	"splitkeeper/internal/repositories/ledgerstore"
	"splitkeeper/internal/services"
	"splitkeeper/pkg/utils"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

func StartCronJob(db *sql.DB) *cron.Cron {
	c := cron.New()

	// Runs daily at midnight — materialize due recurring templates
	_, err := c.AddFunc("0 0 * * *", func() {
		err := MaterializeDueTemplates(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to materialize recurring templates: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule recurring materialization job: %v", err)
	}

	// Runs daily at 8am — budget threshold alerts
	_, err = c.AddFunc("0 8 * * *", func() {
		err := SendBudgetAlerts(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to send budget alerts: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule budget alert job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (recurring materialization daily at midnight, budget alerts daily at 8am)")
	return c
}

// -------------------------------------------------------------
// Materialize due recurring templates and notify owners
// -------------------------------------------------------------
func MaterializeDueTemplates(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	recurringSvc := services.NewRecurringService(store)

	created, err := recurringSvc.RunScan(ctx, time.Now())
	if err != nil {
		return err
	}
	if len(created) == 0 {
		utils.Logger.Info("Recurring scan complete, nothing due today")
		return nil
	}

	var wg sync.WaitGroup
	// Sized to the fan-out so a send never blocks a failing goroutine; the
	// channel is only drained after Wait.
	errChan := make(chan error, len(created))

	for _, expense := range created {
		var email, firstName string
		err := db.QueryRowContext(ctx, `
			SELECT email, first_name FROM users WHERE id = ?
		`, expense.OwnerID).Scan(&email, &firstName)
		if err != nil {
			utils.Logger.Errorf("Failed to look up owner %d for recurring expense %s: %v",
				expense.OwnerID, expense.Reference, err)
			continue
		}

		wg.Add(1)
		go func(email, firstName string, expense models.Expense) {
			defer wg.Done()

			if err := utils.SendRecurringExpenseEmail(
				email,
				firstName,
				expense.Description,
				expense.OriginalAmount.StringFixed(2)+" "+expense.CurrencyCode,
				expense.Date,
			); err != nil {
				errChan <- fmt.Errorf("failed to send recurring expense email to %s: %v", email, err)
				return
			}

			utils.Logger.Infof("📧 Notified %s (%s) — recurring expense '%s' created as %s",
				firstName, email, expense.Description, expense.Reference)
		}(email, firstName, expense)
	}

	wg.Wait()
	close(errChan)

	for e := range errChan {
		utils.Logger.Error(e)
	}

	utils.Logger.Infof("✅ Recurring scan complete, %d expenses created.", len(created))
	return nil
}

// -------------------------------------------------------------
// Send budget threshold alerts to owners (approaching / over)
// -------------------------------------------------------------
func SendBudgetAlerts(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	budgetSvc := services.NewBudgetService(store, store)

	owners, err := store.ActiveBudgetsWithOwners(ctx)
	if err != nil {
		return err
	}

	now := time.Now()

	var wg sync.WaitGroup
	// Sized to the fan-out so a send never blocks a failing goroutine; the
	// channel is only drained after Wait.
	errChan := make(chan error, len(owners))

	for _, owner := range owners {
		status, err := budgetSvc.Status(ctx, owner.Budget, now)
		if err != nil {
			utils.Logger.Errorf("Failed to compute status for budget %d: %v", owner.Budget.ID, err)
			continue
		}
		if status.Status == services.BudgetUnder {
			continue
		}

		categoryName, err := store.CategoryName(ctx, owner.Budget.CategoryID)
		if err != nil {
			utils.Logger.Errorf("Failed to resolve category name for budget %d: %v", owner.Budget.ID, err)
			continue
		}

		wg.Add(1)
		go func(owner ledgerstore.BudgetOwner, status services.BudgetStatus, categoryName string) {
			defer wg.Done()

			if err := utils.SendBudgetAlertEmail(
				owner.Email,
				owner.FirstName,
				categoryName,
				status.Spent.StringFixed(2),
				status.Limit.StringFixed(2),
				status.PercentUsed.StringFixed(1),
				string(status.Status),
			); err != nil {
				errChan <- fmt.Errorf("failed to send budget alert to %s: %v", owner.Email, err)
				return
			}

			utils.Logger.Infof("📧 Budget alert sent to %s (%s) — '%s' at %s%%",
				owner.FirstName, owner.Email, categoryName, status.PercentUsed.StringFixed(1))
		}(owner, status, categoryName)
	}

	wg.Wait()
	close(errChan)

	for e := range errChan {
		utils.Logger.Error(e)
	}

	utils.Logger.Info("✅ Finished sending budget alerts.")
	return nil
}
