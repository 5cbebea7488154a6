package routers

import (
	"net/http"
	"splitkeeper/internal/api/handlers/recurring"
)

func recurringRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/recurring/create", recurring.CreateTemplateHandler)

	mux.HandleFunc("/recurring/", recurring.GetTemplatesHandler)

	mux.HandleFunc("/recurring/{id}/toggle", recurring.ToggleTemplateHandler)

	mux.HandleFunc("/recurring/scan", recurring.RunScanHandler)

	mux.HandleFunc("/recurring/candidates", recurring.DetectCandidatesHandler)

	mux.HandleFunc("/recurring/candidates/accept", recurring.AcceptCandidateHandler)

	return mux
}
