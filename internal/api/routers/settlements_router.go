package routers

import (
	"net/http"
	"splitkeeper/internal/api/handlers/settlements"
)

func settlementsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/settlements/create", settlements.CreateSettlementHandler)

	mux.HandleFunc("/settlements/", settlements.GetSettlementsHandler)

	mux.HandleFunc("/settlements/delete/{id}", settlements.DeleteSettlementHandler)

	return mux
}
