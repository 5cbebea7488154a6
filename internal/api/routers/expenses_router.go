package routers

import (
	"net/http"
	"splitkeeper/internal/api/handlers/expenses"
)

func expensesRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/expenses/create", expenses.CreateExpenseHandler)

	mux.HandleFunc("/expenses/", expenses.GetExpensesHandler)

	mux.HandleFunc("/expenses/{id}", expenses.GetExpenseByIdHandler)

	mux.HandleFunc("/expenses/update/{id}", expenses.UpdateExpenseHandler)

	mux.HandleFunc("/expenses/delete/{id}", expenses.DeleteExpenseHandler)

	mux.HandleFunc("/expenses/balances", expenses.GetBalancesHandler)

	return mux
}
