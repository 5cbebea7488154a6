package budgets

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"splitkeeper/internal/repositories/ledgerstore"
	"splitkeeper/internal/repositories/sqlconnect"
	"splitkeeper/internal/services"
	"splitkeeper/pkg/utils"
)

// FUNC TO GET ALL ACTIVE BUDGETS WITH DERIVED STATUS
func GetBudgetsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	budgetSvc := services.NewBudgetService(store, store)

	budgets, err := store.ActiveBudgets(ctx, userID)
	if err != nil {
		utils.Logger.Errorf("error fetching budgets: %v", err)
		utils.WriteError(w, "error fetching budgets", http.StatusInternalServerError)
		return
	}

	type budgetWithStatus struct {
		Budget interface{} `json:"budget"`
		Status interface{} `json:"status"`
	}

	now := time.Now()
	results := make([]budgetWithStatus, 0, len(budgets))
	for _, b := range budgets {
		status, err := budgetSvc.Status(ctx, b, now)
		if err != nil {
			utils.Logger.Errorf("error deriving status for budget %d: %v", b.ID, err)
			utils.WriteError(w, "error deriving budget status", http.StatusInternalServerError)
			return
		}
		results = append(results, budgetWithStatus{Budget: b, Status: status})
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(results),
		"data":   results,
	})
}

// FUNC TO GET ONE BUDGET WITH DERIVED STATUS
func GetBudgetByIdHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	budgetID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid budget ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	budget, err := store.BudgetByID(ctx, budgetID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "budget not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve budget", http.StatusInternalServerError)
		return
	}

	if budget.UserID != userID {
		utils.WriteError(w, "this budget does not belong to you", http.StatusForbidden)
		return
	}

	budgetSvc := services.NewBudgetService(store, store)
	status, err := budgetSvc.Status(ctx, budget, time.Now())
	if err != nil {
		utils.Logger.Errorf("error deriving status for budget %d: %v", budget.ID, err)
		utils.WriteError(w, "error deriving budget status", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"budget": budget,
			"state":  status,
		},
	})
}
