package expenses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"splitkeeper/internal/models"
	"splitkeeper/internal/repositories/ledgerstore"
	"splitkeeper/internal/repositories/sqlconnect"
	"splitkeeper/internal/services"
	"splitkeeper/pkg/utils"
)

type expenseRequest struct {
	Description       string               `json:"description"`
	OriginalAmount    decimal.Decimal      `json:"original_amount"`
	CurrencyCode      string               `json:"currency_code"`
	Date              string               `json:"date"`
	SplitMethod       models.SplitMethod   `json:"split_method"`
	SplitParticipants []int                `json:"split_participants"`
	SplitDetails      *models.SplitDetails `json:"split_details"`
	SplitValue        *decimal.Decimal     `json:"split_value"`
	CategoryID        int                  `json:"category_id"`
	GroupID           *int                 `json:"group_id"`
}

// FUNC TO CREATE AN EXPENSE
func CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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

	var req expenseRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.OriginalAmount.IsNegative() {
		utils.WriteError(w, "amount cannot be negative", http.StatusBadRequest)
		return
	}

	date := time.Now()
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			utils.WriteError(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	currencySvc := services.NewCurrencyService(store)

	// The base amount is fixed now, at the rate currently in effect. Later
	// rate changes never touch this expense.
	amount, err := currencySvc.ToBase(ctx, req.OriginalAmount, req.CurrencyCode)
	if err != nil {
		if errors.Is(err, services.ErrUnknownCurrency) {
			utils.WriteError(w, "unknown currency code", http.StatusBadRequest)
			return
		}
		utils.Logger.Errorf("currency conversion failed: %v", err)
		utils.WriteError(w, "currency configuration error", http.StatusInternalServerError)
		return
	}

	expense := models.Expense{
		Description:       req.Description,
		Amount:            amount,
		OriginalAmount:    req.OriginalAmount,
		CurrencyCode:      req.CurrencyCode,
		Date:              date,
		PayerID:           userID,
		OwnerID:           userID,
		SplitMethod:       req.SplitMethod,
		SplitParticipants: req.SplitParticipants,
		SplitDetails:      req.SplitDetails,
		SplitValue:        req.SplitValue,
		CategoryID:        req.CategoryID,
		GroupID:           req.GroupID,
		Reference:         services.GenerateReference("exp"),
	}

	if err := store.InsertExpense(ctx, &expense); err != nil {
		utils.WriteError(w, "failed to create expense", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"expense": expense,
			"splits":  services.ComputeSplits(expense),
		},
	})
}

// FUNC TO GET ALL EXPENSES FOR A USER
func GetExpensesHandler(w http.ResponseWriter, r *http.Request) {
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

	from := time.Unix(0, 0)
	to := time.Now()
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.WriteError(w, "invalid from date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.WriteError(w, "invalid to date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		to = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	expenses, err := store.ExpensesForUser(ctx, userID, from, to)
	if err != nil {
		utils.Logger.Errorf("error fetching expenses: %v", err)
		utils.WriteError(w, "error fetching expenses", http.StatusInternalServerError)
		return
	}

	page, limit := utils.GetPaginationParams(r)
	start := (page - 1) * limit
	if start > len(expenses) {
		start = len(expenses)
	}
	end := start + limit
	if end > len(expenses) {
		end = len(expenses)
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":    "success",
		"count":     len(expenses),
		"page":      page,
		"page_size": limit,
		"data":      expenses[start:end],
	})
}

// FUNC TO GET ONE EXPENSE WITH ITS SPLIT BREAKDOWN
func GetExpenseByIdHandler(w http.ResponseWriter, r *http.Request) {
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
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	expense, err := store.ExpenseByID(ctx, expenseID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	if !involvesUser(expense, userID) {
		utils.WriteError(w, "this expense does not involve you", http.StatusForbidden)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"expense": expense,
			"splits":  services.ComputeSplits(expense),
		},
	})
}

// FUNC TO UPDATE AN EXPENSE
func UpdateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	var req expenseRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	expense, err := store.ExpenseByID(ctx, expenseID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	if expense.OwnerID != userID {
		utils.WriteError(w, "you are not authorized to edit this expense", http.StatusForbidden)
		return
	}

	if req.Description != "" {
		expense.Description = req.Description
	}
	if req.SplitMethod != "" {
		expense.SplitMethod = req.SplitMethod
	}
	if req.SplitParticipants != nil {
		expense.SplitParticipants = req.SplitParticipants
	}
	if req.SplitDetails != nil {
		expense.SplitDetails = req.SplitDetails
	}
	if req.SplitValue != nil {
		expense.SplitValue = req.SplitValue
	}
	if req.CategoryID != 0 {
		expense.CategoryID = req.CategoryID
	}
	if req.GroupID != nil {
		expense.GroupID = req.GroupID
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			utils.WriteError(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		expense.Date = date
	}

	// A changed original amount or currency re-fixes the base amount at the
	// current rate. An untouched amount keeps its creation-time conversion.
	if !req.OriginalAmount.IsZero() || (req.CurrencyCode != "" && req.CurrencyCode != expense.CurrencyCode) {
		if !req.OriginalAmount.IsZero() {
			if req.OriginalAmount.IsNegative() {
				utils.WriteError(w, "amount cannot be negative", http.StatusBadRequest)
				return
			}
			expense.OriginalAmount = req.OriginalAmount
		}
		if req.CurrencyCode != "" {
			expense.CurrencyCode = req.CurrencyCode
		}

		currencySvc := services.NewCurrencyService(store)
		amount, err := currencySvc.ToBase(ctx, expense.OriginalAmount, expense.CurrencyCode)
		if err != nil {
			if errors.Is(err, services.ErrUnknownCurrency) {
				utils.WriteError(w, "unknown currency code", http.StatusBadRequest)
				return
			}
			utils.Logger.Errorf("currency conversion failed: %v", err)
			utils.WriteError(w, "currency configuration error", http.StatusInternalServerError)
			return
		}
		expense.Amount = amount
	}

	if err := store.UpdateExpense(ctx, &expense); err != nil {
		utils.WriteError(w, "error updating expense", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "expense updated successfully",
		"data": map[string]interface{}{
			"expense": expense,
			"splits":  services.ComputeSplits(expense),
		},
	})
}

// FUNC TO DELETE AN EXPENSE
func DeleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	expense, err := store.ExpenseByID(ctx, expenseID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	if expense.OwnerID != userID {
		utils.WriteError(w, "you are not authorized to delete this expense", http.StatusForbidden)
		return
	}

	if err := store.DeleteExpense(ctx, expenseID); err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found or already deleted", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "error deleting expense", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "expense deleted successfully",
	})
}

// FUNC TO GET NET BALANCES AGAINST ALL COUNTERPARTIES
func GetBalancesHandler(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	balanceSvc := services.NewBalanceService(store, store)

	balances, err := balanceSvc.NetBalances(ctx, userID)
	if err != nil {
		utils.WriteError(w, "failed to compute balances", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(balances),
		"data":   balances,
	})
}

func involvesUser(e models.Expense, userID int) bool {
	if e.OwnerID == userID || e.PayerID == userID {
		return true
	}
	for _, id := range e.SplitParticipants {
		if id == userID {
			return true
		}
	}
	return false
}
