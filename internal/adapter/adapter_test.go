package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/AnkitGupta1803/portfolio-dashboard/internal/errors"
)

func TestYahooFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/HDFCBANK.NS", r.URL.Path)
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"HDFCBANK.NS","regularMarketPrice":1654.35}}],"error":null}}`)
	}))
	defer srv.Close()

	c := NewYahooClient(srv.URL)
	price, err := c.FetchPrice(context.Background(), "HDFCBANK.NS")
	require.NoError(t, err)
	assert.Equal(t, 1654.35, price)
}

func TestYahooFetchPriceNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	c := NewYahooClient(srv.URL)
	_, err := c.FetchPrice(context.Background(), "UNKNOWN.NS")
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderError(err))
}

func TestYahooFetchPriceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	c := NewYahooClient(srv.URL)
	_, err := c.FetchPrice(context.Background(), "BOGUS.NS")
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderError(err))
}

func TestYahooFetchPriceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewYahooClient(srv.URL)
	_, err := c.FetchPrice(context.Background(), "HDFCBANK.NS")
	assert.Error(t, err)
}

func TestConvertToGoogleSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RELIANCE.NS", "NSE:RELIANCE"},
		{"TATAMOTORS.BO", "BOM:TATAMOTORS"},
		{"AAPL", "AAPL"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConvertToGoogleSymbol(tt.in), "symbol %s", tt.in)
	}
}

const googleQuotePage = `<html><body><div class="stats">
<div class="gyFHrc"><div class="mfs7Fc">P/E ratio</div><div class="P6K39c">21.42</div></div>
<div class="gyFHrc"><div class="mfs7Fc">Earnings per share</div><div class="P6K39c">Q1 FY25: 92.10</div></div>
</div></body></html>`

const googleQuotePagePartial = `<html><body><div class="stats">
<div class="gyFHrc"><div class="mfs7Fc">P/E ratio</div><div class="P6K39c">-</div></div>
<div class="gyFHrc"><div class="mfs7Fc">Earnings per share</div><div class="P6K39c">Q1 FY25: 92.10</div></div>
</div></body></html>`

func TestGoogleFetchFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/NSE:HDFCBANK", r.URL.Path)
		fmt.Fprint(w, googleQuotePage)
	}))
	defer srv.Close()

	c := NewGoogleFinanceClient(srv.URL)
	f, err := c.FetchFundamentals(context.Background(), "HDFCBANK.NS")
	require.NoError(t, err)

	require.NotNil(t, f.PERatio)
	assert.Equal(t, 21.42, *f.PERatio)
	require.NotNil(t, f.LatestEarnings)
	assert.Equal(t, "Q1 FY25: 92.10", *f.LatestEarnings)
}

func TestGoogleFetchFundamentalsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, googleQuotePagePartial)
	}))
	defer srv.Close()

	c := NewGoogleFinanceClient(srv.URL)
	f, err := c.FetchFundamentals(context.Background(), "HDFCBANK.NS")
	require.NoError(t, err)

	// Field-by-field degradation: missing ratio must not blank the
	// earnings label.
	assert.Nil(t, f.PERatio)
	require.NotNil(t, f.LatestEarnings)
	assert.Equal(t, "Q1 FY25: 92.10", *f.LatestEarnings)
}

func TestGoogleFetchFundamentalsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	}))
	defer srv.Close()

	c := NewGoogleFinanceClient(srv.URL)
	_, err := c.FetchFundamentals(context.Background(), "HDFCBANK.NS")
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderError(err))
}

func TestParseFundamentalsCommaSeparatedRatio(t *testing.T) {
	page := `<div><div>P/E ratio</div><div>1,021.40</div></div>`
	f := parseFundamentals(page)
	require.NotNil(t, f.PERatio)
	assert.Equal(t, 1021.40, *f.PERatio)
}
