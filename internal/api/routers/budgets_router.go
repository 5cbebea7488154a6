package routers

import (
	"net/http"
	"splitkeeper/internal/api/handlers/budgets"
)

func budgetsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/budgets/", budgets.GetBudgetsHandler)

	mux.HandleFunc("/budgets/{id}", budgets.GetBudgetByIdHandler)

	return mux
}
