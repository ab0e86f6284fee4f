package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/errors"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

const googleUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// GoogleFinanceClient fetches P/E ratio and latest earnings from Google
// Finance quote pages. Google Finance has no public API, so this scrapes
// the stats table of the quote page and may break if the page structure
// changes.
type GoogleFinanceClient struct {
	baseURL string
	client  *http.Client
}

// NewGoogleFinanceClient creates a new Google Finance client
func NewGoogleFinanceClient(baseURL string) *GoogleFinanceClient {
	return &GoogleFinanceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ConvertToGoogleSymbol converts a Yahoo-style symbol to Google Finance
// format, e.g. RELIANCE.NS -> NSE:RELIANCE, TATAMOTORS.BO -> BOM:TATAMOTORS.
func ConvertToGoogleSymbol(symbol string) string {
	if s, ok := strings.CutSuffix(symbol, ".NS"); ok {
		return "NSE:" + s
	}
	if s, ok := strings.CutSuffix(symbol, ".BO"); ok {
		return "BOM:" + s
	}
	return symbol
}

// FetchFundamentals fetches P/E ratio and latest earnings for a symbol.
// Either field may come back nil independently of the other; a page where
// both are missing is reported as no usable data.
func (c *GoogleFinanceClient) FetchFundamentals(ctx context.Context, symbol string) (types.Fundamentals, error) {
	endpoint := fmt.Sprintf("%s/quote/%s", c.baseURL, url.PathEscape(ConvertToGoogleSymbol(symbol)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.Fundamentals{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", googleUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		return types.Fundamentals{}, errors.NewProviderError("google-finance", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Fundamentals{}, errors.NewProviderError("google-finance", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Fundamentals{}, errors.NewProviderError("google-finance", err)
	}

	f := parseFundamentals(string(body))
	if f.PERatio == nil && f.LatestEarnings == nil {
		return types.Fundamentals{}, errors.NewNoDataError("google-finance", symbol)
	}

	return f, nil
}

// parseFundamentals extracts the P/E ratio and earnings label from a quote
// page. Partial success is valid: a parseable ratio with a missing earnings
// label (or vice versa) is preserved field by field.
func parseFundamentals(page string) types.Fundamentals {
	var f types.Fundamentals

	if raw, ok := statValueAfterLabel(page, "P/E ratio"); ok {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
			f.PERatio = &v
		}
	}

	for _, label := range []string{"Earnings per share", "Earnings", "EPS"} {
		if raw, ok := statValueAfterLabel(page, label); ok && raw != "" {
			f.LatestEarnings = &raw
			break
		}
	}

	return f
}

// statValueAfterLabel finds a stats-table label in the page and returns the
// text of the element that follows it. The quote page renders each stat as
// a label div immediately followed by a value div, so scanning forward from
// the label to the next tag body is enough without a full HTML parser.
func statValueAfterLabel(page, label string) (string, bool) {
	idx := strings.Index(page, ">"+label+"<")
	if idx < 0 {
		return "", false
	}

	rest := page[idx+len(label)+2:]

	// Skip to the close of the label's enclosing element, then take the
	// body of the next element.
	for i := 0; i < 3; i++ {
		open := strings.IndexByte(rest, '>')
		if open < 0 {
			return "", false
		}
		rest = rest[open+1:]
		close := strings.IndexByte(rest, '<')
		if close < 0 {
			return "", false
		}
		if value := strings.TrimSpace(rest[:close]); value != "" && value != "-" {
			return value, true
		}
		rest = rest[close+1:]
	}

	return "", false
}
