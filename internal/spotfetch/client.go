// Package spotfetch pulls Nordpool day-ahead prices from the energinet
// Energi Data Service and feeds them into the spot price store.
package spotfetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/nordlux/elcore/internal/config"
	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/shopspring/decimal"
)

// energinet timestamps carry no zone designator; the UTC column is UTC.
const energinetTimeLayout = "2006-01-02T15:04:05"

var dkkPerMwhToKwh = decimal.NewFromInt(1000)

type dayAheadRecord struct {
	TimeUTC          string           `json:"TimeUTC"`
	PriceArea        string           `json:"PriceArea"`
	DayAheadPriceDKK *decimal.Decimal `json:"DayAheadPriceDKK"`
}

type dayAheadResponse struct {
	Total   int              `json:"total"`
	Records []dayAheadRecord `json:"records"`
}

// Client fetches the DayAheadPrices dataset.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
}

func NewClient(cfg config.Config) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.Logger = nil
	c.HTTPClient.Timeout = 30 * time.Second
	return &Client{http: c, baseURL: cfg.EnerginetURL}
}

// FetchDayAhead returns the published prices for [start, end) in the given
// areas, converted from the dataset's DKK/MWh to DKK/kWh. Hours the exchange
// has not priced yet come back without a DKK value and are skipped.
func (c *Client) FetchDayAhead(ctx context.Context, start, end time.Time, areas []market.PriceArea) ([]pricedomain.SpotUpsert, error) {
	filter, err := json.Marshal(map[string][]market.PriceArea{"PriceArea": areas})
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("start", start.UTC().Format("2006-01-02T15:04"))
	query.Set("end", end.UTC().Format("2006-01-02T15:04"))
	query.Set("filter", string(filter))
	query.Set("sort", "TimeUTC asc")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.ErrExternal, "energinet request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.New(apperr.ErrExternal, "energinet returned %d: %s", resp.StatusCode, body)
	}

	var parsed dayAheadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.New(apperr.ErrExternal, "bad energinet payload: %v", err)
	}

	entries := make([]pricedomain.SpotUpsert, 0, len(parsed.Records))
	for _, record := range parsed.Records {
		if record.DayAheadPriceDKK == nil {
			continue
		}
		area := market.PriceArea(record.PriceArea)
		if err := area.Validate(); err != nil {
			continue
		}
		ts, err := time.ParseInLocation(energinetTimeLayout, record.TimeUTC, time.UTC)
		if err != nil {
			return nil, apperr.New(apperr.ErrExternal, "bad energinet timestamp %q", record.TimeUTC)
		}
		entries = append(entries, pricedomain.SpotUpsert{
			PriceArea:      area,
			Timestamp:      ts,
			PriceDkkPerKwh: record.DayAheadPriceDKK.Div(dkkPerMwhToKwh),
		})
	}
	return entries, nil
}
