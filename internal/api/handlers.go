package api

import (
	"net/http"
	"strings"
)

// parseSymbolsParam extracts the comma-separated symbols query parameter.
// Blank entries are dropped; validation proper happens in the fetch layer.
func parseSymbolsParam(r *http.Request) []string {
	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			symbols = append(symbols, trimmed)
		}
	}
	return symbols
}

// handleStockPrices handles GET /api/stock-prices?symbols=A,B,C
func (s *Server) handleStockPrices(w http.ResponseWriter, r *http.Request) {
	symbols := parseSymbolsParam(r)
	if len(symbols) == 0 {
		respondErrorWith(w, http.StatusBadRequest, "EMPTY_SYMBOLS", "symbols query parameter is required")
		return
	}

	prices, cached, err := s.marketData.GetPrices(r.Context(), symbols)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, prices, cached)
}

// handleStockFundamentals handles GET /api/stock-fundamentals?symbols=A,B,C
func (s *Server) handleStockFundamentals(w http.ResponseWriter, r *http.Request) {
	symbols := parseSymbolsParam(r)
	if len(symbols) == 0 {
		respondErrorWith(w, http.StatusBadRequest, "EMPTY_SYMBOLS", "symbols query parameter is required")
		return
	}

	fundamentals, cached, err := s.marketData.GetFundamentals(r.Context(), symbols)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, fundamentals, cached)
}

// handleGetPortfolio handles GET /api/portfolio
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	report, cached, err := s.reportService.GetReport(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, report, cached)
}

// handleRefreshPortfolio handles POST /api/portfolio/refresh, forcing a
// full rebuild that bypasses the report cache.
func (s *Server) handleRefreshPortfolio(w http.ResponseWriter, r *http.Request) {
	report, err := s.reportService.Refresh(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, report, false)
}

// handleGetHoldings handles GET /api/holdings, returning the static
// portfolio without market data.
func (s *Server) handleGetHoldings(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, s.holdings.All(), false)
}
