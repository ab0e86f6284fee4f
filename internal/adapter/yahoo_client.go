package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/errors"
)

const yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// YahooClient fetches current market prices from the Yahoo Finance chart
// endpoint. This is an unofficial API and may break if Yahoo changes their
// response structure.
type YahooClient struct {
	baseURL string
	client  *http.Client
}

// yahooChartResponse mirrors the subset of the chart payload we read
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(baseURL string) *YahooClient {
	return &YahooClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchPrice fetches the current market price for a symbol. A response
// without a positive regularMarketPrice is treated as no usable data.
func (c *YahooClient) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errors.NewProviderError("yahoo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.NewProviderError("yahoo", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.NewProviderError("yahoo", err)
	}

	var chart yahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return 0, errors.NewProviderError("yahoo", fmt.Errorf("failed to parse response: %w", err))
	}

	if chart.Chart.Error != nil {
		return 0, errors.NewProviderError("yahoo", fmt.Errorf("%s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description))
	}

	if len(chart.Chart.Result) == 0 || chart.Chart.Result[0].Meta.RegularMarketPrice <= 0 {
		return 0, errors.NewNoDataError("yahoo", symbol)
	}

	return chart.Chart.Result[0].Meta.RegularMarketPrice, nil
}
