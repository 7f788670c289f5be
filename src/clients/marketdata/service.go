package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"portfolio-api/src/utils"
	"portfolio-api/src/utils/requests"
)

// ServiceClientI is the market-data source contract: descriptive metadata for
// a symbol plus its recent daily bars.
type ServiceClientI interface {
	GetTickerInfo(ctx context.Context, symbol string) (*TickerInfo, error)
	GetDailyBars(ctx context.Context, symbol string, lookbackDays int) ([]Bar, error)
}

// YahooServiceClient fetches quotes from the public Yahoo Finance API.
type YahooServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
}

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Yahoo rejects requests without a browser-looking user agent.
var yahooHeaders = map[string]string{
	"Accept":     "application/json",
	"User-Agent": "Mozilla/5.0",
}

// NewClient creates a new instance of YahooServiceClient
func NewClient() *YahooServiceClient {
	return &YahooServiceClient{
		API:     requests.NewExternalAPIService(15 * time.Second),
		BaseURL: defaultBaseURL,
	}
}

// GetTickerInfo fetches the company name and sector for a symbol.
func (c *YahooServiceClient) GetTickerInfo(ctx context.Context, symbol string) (*TickerInfo, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s", c.BaseURL, url.PathEscape(symbol))

	params := url.Values{}
	params.Add("modules", strings.Join([]string{"price", "assetProfile"}, ","))

	var summary yahooQuoteSummaryResponse
	if err := c.getJSON(ctx, endpoint, params, &summary); err != nil {
		return nil, err
	}

	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no data in response for %s", symbol)
	}

	result := summary.QuoteSummary.Result[0]
	name := result.Price.LongName
	if name == "" {
		name = result.Price.ShortName
	}
	if name == "" {
		name = symbol
	}
	sector := result.AssetProfile.Sector
	if sector == "" {
		sector = utils.UnknownSector
	}

	return &TickerInfo{Symbol: symbol, Name: name, Sector: sector}, nil
}

// GetDailyBars fetches daily bars for the lookback window, oldest first.
func (c *YahooServiceClient) GetDailyBars(ctx context.Context, symbol string, lookbackDays int) ([]Bar, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.BaseURL, url.PathEscape(symbol))

	end := time.Now()
	start := end.AddDate(0, 0, -lookbackDays)

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", strconv.FormatInt(start.Unix(), 10))
	params.Add("period2", strconv.FormatInt(end.Unix(), 10))

	var chart yahooChartResponse
	if err := c.getJSON(ctx, endpoint, params, &chart); err != nil {
		return nil, err
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data in response for %s", symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Half-filled trading days come through as zero closes, skip them.
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}

		bar := Bar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			bar.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	return bars, nil
}

// getJSON performs a GET with backoff on rate limits and upstream hiccups.
func (c *YahooServiceClient) getJSON(ctx context.Context, endpoint string, params url.Values, target interface{}) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.API.Get(ctx, endpoint, params, yahooHeaders)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("upstream returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("upstream returned status %d", resp.StatusCode)
		}

		return json.NewDecoder(resp.Body).Decode(target)
	})
}
