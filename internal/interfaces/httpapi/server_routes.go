package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/market/status", handler.GetMarketStatus)
	mux.HandleFunc("GET /v1/league", handler.GetLeague)
	mux.HandleFunc("GET /v1/reports/monthly", handler.GetMonthlyReport)
}
