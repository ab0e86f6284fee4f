package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/errors"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// HoldingsRepository serves the static holdings list. Holdings are loaded
// once at construction and the repository hands out copies, so the loaded
// records stay immutable for the process lifetime.
type HoldingsRepository struct {
	holdings []types.Holding
}

// NewHoldingsRepository loads holdings from the JSON file at path, or the
// built-in default portfolio when path is empty.
func NewHoldingsRepository(path string) (*HoldingsRepository, error) {
	holdings := defaultHoldings
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read holdings file: %w", err)
		}
		if err := json.Unmarshal(data, &holdings); err != nil {
			return nil, fmt.Errorf("failed to parse holdings file: %w", err)
		}
	}

	if err := validateHoldings(holdings); err != nil {
		return nil, err
	}

	return &HoldingsRepository{holdings: holdings}, nil
}

// validateHoldings enforces the holdings contract: unique identifiers and
// symbols, positive cost basis and quantity.
func validateHoldings(holdings []types.Holding) error {
	if len(holdings) == 0 {
		return errors.NewInvalidHoldingError("", "holdings list is empty")
	}

	ids := make(map[string]struct{}, len(holdings))
	symbols := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if h.ID == "" {
			return errors.NewInvalidHoldingError(h.ID, "missing id")
		}
		if _, dup := ids[h.ID]; dup {
			return errors.NewInvalidHoldingError(h.ID, "duplicate id")
		}
		ids[h.ID] = struct{}{}

		if h.Symbol == "" {
			return errors.NewInvalidHoldingError(h.ID, "missing symbol")
		}
		if _, dup := symbols[h.Symbol]; dup {
			return errors.NewInvalidHoldingError(h.ID, fmt.Sprintf("duplicate symbol %q", h.Symbol))
		}
		symbols[h.Symbol] = struct{}{}

		if h.PurchasePrice <= 0 {
			return errors.NewInvalidHoldingError(h.ID, "purchase price must be positive")
		}
		if h.Quantity <= 0 {
			return errors.NewInvalidHoldingError(h.ID, "quantity must be positive")
		}
	}

	return nil
}

// All returns a copy of the holdings list in load order.
func (r *HoldingsRepository) All() []types.Holding {
	out := make([]types.Holding, len(r.holdings))
	copy(out, r.holdings)
	return out
}

// Symbols returns the ordered, distinct upstream lookup symbols.
func (r *HoldingsRepository) Symbols() []string {
	out := make([]string, 0, len(r.holdings))
	for _, h := range r.holdings {
		out = append(out, h.Symbol)
	}
	return out
}

// Count returns the number of holdings.
func (r *HoldingsRepository) Count() int {
	return len(r.holdings)
}

// defaultHoldings is the built-in portfolio used when no holdings file is
// configured.
var defaultHoldings = []types.Holding{
	// Financial sector
	{ID: "1", Name: "HDFC Bank", PurchasePrice: 1490.00, Quantity: 50, Sector: "Financial", Exchange: types.ExchangeNSE, Symbol: "HDFCBANK.NS"},
	{ID: "2", Name: "Bajaj Finance", PurchasePrice: 6466.00, Quantity: 15, Sector: "Financial", Exchange: types.ExchangeNSE, Symbol: "BAJFINANCE.NS"},
	{ID: "3", Name: "ICICI Bank", PurchasePrice: 780.00, Quantity: 84, Sector: "Financial", Exchange: types.ExchangeNSE, Symbol: "ICICIBANK.NS"},
	{ID: "4", Name: "Bajaj Housing", PurchasePrice: 130.00, Quantity: 504, Sector: "Financial", Exchange: types.ExchangeNSE, Symbol: "BAJAJHFL.NS"},
	{ID: "5", Name: "SBI Life", PurchasePrice: 1197.00, Quantity: 49, Sector: "Financial", Exchange: types.ExchangeNSE, Symbol: "SBILIFE.NS"},

	// Tech sector
	{ID: "6", Name: "Affle India", PurchasePrice: 1151.00, Quantity: 50, Sector: "Technology", Exchange: types.ExchangeNSE, Symbol: "AFFLE.NS"},
	{ID: "7", Name: "LTI Mindtree", PurchasePrice: 4775.00, Quantity: 16, Sector: "Technology", Exchange: types.ExchangeNSE, Symbol: "LTIM.NS"},
	{ID: "8", Name: "KPIT Tech", PurchasePrice: 672.00, Quantity: 61, Sector: "Technology", Exchange: types.ExchangeNSE, Symbol: "KPITTECH.NS"},
	{ID: "9", Name: "Tata Tech", PurchasePrice: 1072.00, Quantity: 63, Sector: "Technology", Exchange: types.ExchangeNSE, Symbol: "TATATECH.NS"},
	{ID: "10", Name: "BLS E-Services", PurchasePrice: 232.00, Quantity: 191, Sector: "Technology", Exchange: types.ExchangeNSE, Symbol: "BLS.NS"},
	{ID: "11", Name: "Tanla", PurchasePrice: 1134.00, Quantity: 45, Sector: "Technology", Exchange: types.ExchangeNSE, Symbol: "TANLA.NS"},

	// Consumer sector
	{ID: "12", Name: "Dmart", PurchasePrice: 3777.00, Quantity: 27, Sector: "Consumer", Exchange: types.ExchangeNSE, Symbol: "DMART.NS"},
	{ID: "13", Name: "Tata Consumer", PurchasePrice: 845.00, Quantity: 90, Sector: "Consumer", Exchange: types.ExchangeNSE, Symbol: "TATACONSUM.NS"},
	{ID: "14", Name: "Pidilite", PurchasePrice: 2376.00, Quantity: 36, Sector: "Consumer", Exchange: types.ExchangeNSE, Symbol: "PIDILITIND.NS"},

	// Power sector
	{ID: "15", Name: "Tata Power", PurchasePrice: 224.00, Quantity: 225, Sector: "Power", Exchange: types.ExchangeNSE, Symbol: "TATAPOWER.NS"},
	{ID: "16", Name: "KPI Green", PurchasePrice: 875.00, Quantity: 50, Sector: "Power", Exchange: types.ExchangeNSE, Symbol: "KPIGREEN.NS"},
	{ID: "17", Name: "Suzlon", PurchasePrice: 44.00, Quantity: 450, Sector: "Power", Exchange: types.ExchangeNSE, Symbol: "SUZLON.NS"},
	{ID: "18", Name: "Gensol", PurchasePrice: 998.00, Quantity: 45, Sector: "Power", Exchange: types.ExchangeNSE, Symbol: "GENSOL.NS"},

	// Pipe sector
	{ID: "19", Name: "Hariom Pipes", PurchasePrice: 580.00, Quantity: 60, Sector: "Pipes", Exchange: types.ExchangeNSE, Symbol: "HARIOMPIPE.NS"},
	{ID: "20", Name: "Astral", PurchasePrice: 1517.00, Quantity: 56, Sector: "Pipes", Exchange: types.ExchangeNSE, Symbol: "ASTRAL.NS"},
	{ID: "21", Name: "Polycab", PurchasePrice: 2818.00, Quantity: 28, Sector: "Pipes", Exchange: types.ExchangeNSE, Symbol: "POLYCAB.NS"},

	// Others
	{ID: "22", Name: "Clean Science", PurchasePrice: 1610.00, Quantity: 32, Sector: "Chemicals", Exchange: types.ExchangeNSE, Symbol: "CLEAN.NS"},
	{ID: "23", Name: "Deepak Nitrite", PurchasePrice: 2248.00, Quantity: 27, Sector: "Chemicals", Exchange: types.ExchangeNSE, Symbol: "DEEPAKNTR.NS"},
	{ID: "24", Name: "Fine Organic", PurchasePrice: 4284.00, Quantity: 16, Sector: "Chemicals", Exchange: types.ExchangeNSE, Symbol: "FINEORG.NS"},
	{ID: "25", Name: "Gravita", PurchasePrice: 2037.00, Quantity: 8, Sector: "Metals", Exchange: types.ExchangeNSE, Symbol: "GRAVITA.NS"},
}
