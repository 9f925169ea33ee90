package chart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/akobets/signal-comb/app/metrics"
)

const DefaultChartImgAPIBase = "https://api.chart-img.com"

var _ Provider = (*ChartImg)(nil)

// ChartImg renders TradingView-style chart snapshots through the chart-img
// hosted API.
type ChartImg struct {
	apiBase    string
	apiKey     string
	interval   string
	userAgent  string
	httpClient *http.Client
}

func NewChartImg(apiBase, apiKey, interval, userAgent string, httpClient *http.Client) *ChartImg {
	if apiBase == "" {
		apiBase = DefaultChartImgAPIBase
	}
	if interval == "" {
		interval = "4h"
	}
	return &ChartImg{
		apiBase:    apiBase,
		apiKey:     apiKey,
		interval:   interval,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

func (c *ChartImg) Configured() bool {
	return c.apiKey != ""
}

func (c *ChartImg) Get(ctx context.Context, symbol string) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("chart-img API key is not configured")
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", c.interval)
	params.Set("theme", "dark")

	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/v1/tradingview/advanced-chart?%s", c.apiBase, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ChartFailures.Inc()
		return nil, fmt.Errorf("failed to fetch chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ChartFailures.Inc()
		return nil, fmt.Errorf("chart API error: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ChartFailures.Inc()
		return nil, fmt.Errorf("failed to read chart image: %w", err)
	}

	if len(data) == 0 {
		metrics.ChartFailures.Inc()
		return nil, fmt.Errorf("chart API returned an empty image")
	}

	return data, nil
}
