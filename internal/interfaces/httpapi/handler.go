package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/CaeTrevisan/cartola-mensagens/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetMarketStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMarketStatus")
	defer span.End()

	status, monthLabel, err := h.marketService.Status(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get market status failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, marketStatusToDTO(ctx, status, monthLabel))
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	sort := strings.TrimSpace(r.URL.Query().Get("sort"))
	standing, err := h.leagueService.List(ctx, sort)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "sort", sort, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(ctx, standing))
}

func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMonthlyReport")
	defer span.End()

	req := monthlyReportRequest{
		Month: strings.TrimSpace(r.URL.Query().Get("month")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("awarded")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: awarded must be an integer", usecase.ErrInvalidInput))
			return
		}
		req.Awarded = v
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.reportService.MonthlyReport(ctx, req.Month, req.Awarded)
	if err != nil {
		h.logger.WarnContext(ctx, "monthly report failed", "month", req.Month, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, monthlyReportToDTO(ctx, report))
}
