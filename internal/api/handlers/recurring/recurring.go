package recurring

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

// FUNC TO CREATE A RECURRING TEMPLATE
func CreateTemplateHandler(w http.ResponseWriter, r *http.Request) {
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
		Description       string               `json:"description"`
		OriginalAmount    decimal.Decimal      `json:"original_amount"`
		CurrencyCode      string               `json:"currency_code"`
		CategoryID        int                  `json:"category_id"`
		GroupID           *int                 `json:"group_id"`
		SplitMethod       models.SplitMethod   `json:"split_method"`
		SplitParticipants []int                `json:"split_participants"`
		SplitDetails      *models.SplitDetails `json:"split_details"`
		SplitValue        *decimal.Decimal     `json:"split_value"`
		Frequency         models.Frequency     `json:"frequency"`
		StartDate         string               `json:"start_date"`
		EndDate           string               `json:"end_date"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !models.ValidTemplateFrequency(req.Frequency) {
		utils.WriteError(w, "frequency must be daily, weekly, monthly or yearly", http.StatusBadRequest)
		return
	}
	if req.OriginalAmount.IsNegative() {
		utils.WriteError(w, "amount cannot be negative", http.StatusBadRequest)
		return
	}

	startDate := time.Now()
	if req.StartDate != "" {
		var err error
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			utils.WriteError(w, "invalid start date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}
	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			utils.WriteError(w, "invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		endDate = &parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	currencySvc := services.NewCurrencyService(store)

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

	template := models.RecurringTemplate{
		OwnerID:           userID,
		Description:       req.Description,
		Amount:            amount,
		OriginalAmount:    req.OriginalAmount,
		CurrencyCode:      req.CurrencyCode,
		CategoryID:        req.CategoryID,
		GroupID:           req.GroupID,
		SplitMethod:       req.SplitMethod,
		SplitParticipants: req.SplitParticipants,
		SplitDetails:      req.SplitDetails,
		SplitValue:        req.SplitValue,
		Frequency:         req.Frequency,
		StartDate:         startDate,
		EndDate:           endDate,
		Active:            true,
	}

	if err := store.InsertTemplate(ctx, &template); err != nil {
		utils.WriteError(w, "failed to create recurring template", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data":   template,
	})
}

// FUNC TO GET ALL RECURRING TEMPLATES FOR A USER
func GetTemplatesHandler(w http.ResponseWriter, r *http.Request) {
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
	templates, err := store.TemplatesForUser(ctx, userID)
	if err != nil {
		utils.Logger.Errorf("error fetching templates: %v", err)
		utils.WriteError(w, "error fetching recurring templates", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(templates),
		"data":   templates,
	})
}

// FUNC TO TOGGLE A TEMPLATE ACTIVE / INACTIVE
func ToggleTemplateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	templateID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid template ID", http.StatusBadRequest)
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
	template, err := store.TemplateByID(ctx, templateID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "template not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve template", http.StatusInternalServerError)
		return
	}

	if template.OwnerID != userID {
		utils.WriteError(w, "this template does not belong to you", http.StatusForbidden)
		return
	}

	if err := store.SetTemplateActive(ctx, templateID, !template.Active); err != nil {
		utils.WriteError(w, "failed to toggle template", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"template_id": templateID,
			"active":      !template.Active,
		},
	})
}

// FUNC TO TRIGGER ONE MATERIALIZATION SCAN MANUALLY
func RunScanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	recurringSvc := services.NewRecurringService(store)

	created, err := recurringSvc.RunScan(ctx, time.Now())
	if err != nil {
		utils.WriteError(w, "materialization scan failed", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "materialization scan complete",
		"created": len(created),
	})
}

// FUNC TO DETECT RECURRING-PATTERN CANDIDATES
func DetectCandidatesHandler(w http.ResponseWriter, r *http.Request) {
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

	lookbackDays := 90
	if v := r.URL.Query().Get("lookback_days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			utils.WriteError(w, "invalid lookback_days", http.StatusBadRequest)
			return
		}
		lookbackDays = parsed
	}
	minOccurrences := 3
	if v := r.URL.Query().Get("min_occurrences"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 2 {
			utils.WriteError(w, "invalid min_occurrences", http.StatusBadRequest)
			return
		}
		minOccurrences = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	detectionSvc := services.NewDetectionService(store)

	candidates, err := detectionSvc.DetectCandidates(ctx, userID, lookbackDays, minOccurrences, time.Now())
	if err != nil {
		utils.WriteError(w, "recurrence detection failed", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(candidates),
		"data":   candidates,
	})
}

// FUNC TO ACCEPT A CANDIDATE AND CREATE ITS TEMPLATE
func AcceptCandidateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	var candidate models.Candidate
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&candidate); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if candidate.Amount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "candidate amount must be greater than 0", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Detector-only buckets land on the nearest template frequency:
	// biweekly runs as weekly, quarterly as monthly.
	frequency := candidate.Frequency
	switch frequency {
	case models.FrequencyBiweekly:
		frequency = models.FrequencyWeekly
	case models.FrequencyQuarterly:
		frequency = models.FrequencyMonthly
	}
	if !models.ValidTemplateFrequency(frequency) {
		utils.WriteError(w, "invalid candidate frequency", http.StatusBadRequest)
		return
	}

	startDate := candidate.LastDate
	if startDate.IsZero() {
		startDate = time.Now()
	}

	template := models.RecurringTemplate{
		OwnerID:        userID,
		Description:    candidate.Description,
		Amount:         candidate.Amount,
		OriginalAmount: candidate.Amount,
		CurrencyCode:   candidate.CurrencyCode,
		CategoryID:     candidate.CategoryID,
		SplitMethod:    models.SplitEqual,
		Frequency:      frequency,
		StartDate:      startDate,
		Active:         true,
	}

	store := ledgerstore.New(db)
	if err := store.InsertTemplate(ctx, &template); err != nil {
		utils.WriteError(w, "failed to create template from candidate", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "candidate accepted",
		"data":    template,
	})
}
