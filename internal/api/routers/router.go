package routers

import (
	"net/http"
)

func MainRouter() *http.ServeMux {

	mux := http.NewServeMux()

	eRouter := expensesRouter()
	mux.Handle("/expenses/", eRouter)

	sRouter := settlementsRouter()
	mux.Handle("/settlements/", sRouter)

	bRouter := budgetsRouter()
	mux.Handle("/budgets/", bRouter)

	rRouter := recurringRouter()
	mux.Handle("/recurring/", rRouter)

	return mux
}
