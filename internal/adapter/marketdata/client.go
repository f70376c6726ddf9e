package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/logger"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL  = "https://api.dev.app.getbaraka.com"
	DefaultRange    = "month"
	DefaultInterval = "day"
)

// Client implements domain.PriceSource against the historical quotes API
type Client struct {
	HTTP     *http.Client
	BaseURL  string
	Range    string
	Interval string
}

// NewClient creates a new market-data client
func NewClient(baseURL, rng, interval string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if rng == "" {
		rng = DefaultRange
	}
	if interval == "" {
		interval = DefaultInterval
	}
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Range:    rng,
		Interval: interval,
	}
}

// FetchSeries returns the closing prices of symbol over the configured range.
// Any failure is logged and reported as ok=false.
func (c *Client) FetchSeries(ctx context.Context, symbol string) ([]domain.PricePoint, bool) {
	series, err := c.fetch(ctx, symbol)
	if err != nil {
		logger.Warnf("marketdata: failed to get or parse quotes for %s: %v", symbol, err)
		return nil, false
	}
	return series, true
}

func (c *Client) fetch(ctx context.Context, symbol string) ([]domain.PricePoint, error) {
	u := fmt.Sprintf("%s/v1/finance_market/quotes/%s/historical?range=%s&interval=%s",
		c.BaseURL, url.PathEscape(symbol), url.QueryEscape(c.Range), url.QueryEscape(c.Interval))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return parseSeries(body)
}

// parseSeries decodes {"data":[{"date":"<RFC3339>","close":<number>}, ...]}
func parseSeries(body []byte) ([]domain.PricePoint, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON body")
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("missing data array")
	}

	var (
		series   []domain.PricePoint
		pointErr error
	)
	data.ForEach(func(idx, item gjson.Result) bool {
		date, err := time.Parse(time.RFC3339, item.Get("date").String())
		if err != nil {
			pointErr = fmt.Errorf("entry %d: date: %w", idx.Int(), err)
			return false
		}
		closeField := item.Get("close")
		if closeField.Type != gjson.Number {
			pointErr = fmt.Errorf("entry %d: close is not a number", idx.Int())
			return false
		}
		price, err := decimal.NewFromString(closeField.Raw)
		if err != nil {
			pointErr = fmt.Errorf("entry %d: close: %w", idx.Int(), err)
			return false
		}
		series = append(series, domain.PricePoint{Date: domain.UTCStartOfDay(date), Price: price})
		return true
	})
	if pointErr != nil {
		return nil, pointErr
	}
	return series, nil
}
