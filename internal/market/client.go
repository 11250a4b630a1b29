package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	// BaseURL of the upstream market data gateway. Leave empty to run
	// the dashboard without live quotes.
	BaseURL string `conf:"base_url"`

	TimeoutSeconds int `conf:"timeout_seconds"`
}

type ClientParams struct {
	fx.In

	Config Config

	Log *zap.Logger
}

// Quote is a realtime valuation estimate for a single fund.
type Quote struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	ChangePercent float64 `json:"change_percent"`
	Source        string  `json:"source"`
	Time          string  `json:"time"`
}

// FundInfo is the static profile of a fund.
type FundInfo struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Manager   string  `json:"manager"`
	NetValue  float64 `json:"net_value"`
	UpdatedAt string  `json:"updated_at"`
}

// Holding is a single position in a fund's portfolio.
type Holding struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

// Client talks to the market data gateway over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(params ClientParams) *Client {
	timeout := params.Config.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}

	return &Client{
		baseURL: strings.TrimRight(params.Config.BaseURL, "/"),
		http: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		log: params.Log.Named("market"),
	}
}

// RealtimeRates returns the intraday estimated change for each code
// the gateway knows about. Codes without a quote are absent from the
// result.
func (c *Client) RealtimeRates(ctx context.Context, codes []string) (map[string]Quote, error) {
	query := url.Values{"codes": {strings.Join(codes, ",")}}

	var quotes []Quote
	if err := c.get(ctx, "/funds/realtime", query, &quotes); err != nil {
		return nil, err
	}

	rates := make(map[string]Quote, len(quotes))
	for _, quote := range quotes {
		rates[quote.Code] = quote
	}
	return rates, nil
}

// Info returns the static profile of one fund.
func (c *Client) Info(ctx context.Context, code string) (FundInfo, error) {
	var info FundInfo
	err := c.get(ctx, "/funds/info", url.Values{"code": {code}}, &info)
	return info, err
}

// PeriodChanges returns the fund's performance over standard windows,
// keyed by period label ("1m", "3m", "1y", ...).
func (c *Client) PeriodChanges(ctx context.Context, code string) (map[string]float64, error) {
	var payload struct {
		Periods map[string]float64 `json:"periods"`
	}
	if err := c.get(ctx, "/funds/performance", url.Values{"code": {code}}, &payload); err != nil {
		return nil, err
	}
	return payload.Periods, nil
}

// Holdings returns the fund's top positions.
func (c *Client) Holdings(ctx context.Context, code string) ([]Holding, error) {
	var holdings []Holding
	err := c.get(ctx, "/funds/holdings", url.Values{"code": {code}}, &holdings)
	return holdings, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("market data gateway not configured")
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build market request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("market request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market request %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode market response %s: %w", path, err)
	}
	return nil
}
