package settlements

import (
	"context"
	"database/sql"
	"encoding/json"
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

// FUNC TO RECORD A SETTLEMENT
func CreateSettlementHandler(w http.ResponseWriter, r *http.Request) {
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

	type request struct {
		ReceiverID  int             `json:"receiver_id"`
		Amount      decimal.Decimal `json:"amount"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "amount must be greater than 0", http.StatusBadRequest)
		return
	}
	if req.ReceiverID == userID {
		utils.WriteError(w, "you cannot settle with yourself", http.StatusBadRequest)
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

	settlement := models.Settlement{
		PayerID:     userID,
		ReceiverID:  req.ReceiverID,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		Reference:   services.GenerateReference("stl"),
	}

	store := ledgerstore.New(db)
	if err := store.InsertSettlement(ctx, &settlement); err != nil {
		utils.WriteError(w, "failed to record settlement", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "settlement recorded",
		"data":    settlement,
	})
}

// FUNC TO GET ALL SETTLEMENTS FOR A USER
func GetSettlementsHandler(w http.ResponseWriter, r *http.Request) {
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
	settlements, err := store.SettlementsInvolving(ctx, userID)
	if err != nil {
		utils.Logger.Errorf("error fetching settlements: %v", err)
		utils.WriteError(w, "error fetching settlements", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(settlements),
		"data":   settlements,
	})
}

// FUNC TO DELETE A SETTLEMENT
func DeleteSettlementHandler(w http.ResponseWriter, r *http.Request) {
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
	settlementID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid settlement ID", http.StatusBadRequest)
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
	settlement, err := store.SettlementByID(ctx, settlementID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "settlement not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve settlement", http.StatusInternalServerError)
		return
	}

	if settlement.PayerID != userID {
		utils.WriteError(w, "you are not authorized to delete this settlement", http.StatusForbidden)
		return
	}

	if err := store.DeleteSettlement(ctx, settlementID); err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "settlement not found or already deleted", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "error deleting settlement", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "settlement deleted successfully",
	})
}
