package pricer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/taobook/internal/domain"
)

const defaultMexcBaseURL = "https://api.mexc.com"

// MexcPricer implements DailyCloser against MEXC's Binance-compatible
// klines endpoint.
type MexcPricer struct {
	baseURL string
	httpc   *http.Client
}

// NewMexcPricer creates a new MEXC daily close provider. An empty baseURL
// selects the public API.
func NewMexcPricer(baseURL string, httpc *http.Client) *MexcPricer {
	if baseURL == "" {
		baseURL = defaultMexcBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &MexcPricer{baseURL: baseURL, httpc: httpc}
}

// DailyCloses fetches 1d klines from MEXC. Each kline row is an array:
// [openTime, open, high, low, close, volume, ...].
func (p *MexcPricer) DailyCloses(ctx context.Context, pair domain.Pair, from, to time.Time) (map[string]decimal.Decimal, error) {
	q := url.Values{}
	q.Set("symbol", pair.Symbol())
	q.Set("interval", "1d")
	q.Set("startTime", strconv.FormatInt(from.UnixMilli(), 10))
	q.Set("endTime", strconv.FormatInt(to.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(klineLimit))

	reqURL := fmt.Sprintf("%s/api/v3/klines?%s", p.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build MEXC klines request")
	}

	resp, err := p.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from MEXC for %s", pair.String())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read MEXC klines response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("MEXC klines request failed with status %d: %s", resp.StatusCode, body)
	}

	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrap(err, "decode MEXC klines response")
	}

	closes := make(map[string]decimal.Decimal, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("malformed MEXC kline row at index %d", i)
		}
		openTime, ok := row[0].(float64)
		if !ok {
			return nil, fmt.Errorf("malformed open time in MEXC kline row at index %d", i)
		}
		close, err := parseKlineValue(row[4])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
		}
		closes[domain.DayKeyFor(time.Unix(0, int64(openTime)*int64(time.Millisecond)))] = close
	}

	return closes, nil
}

// parseKlineValue accepts the string or numeric encodings MEXC uses for
// OHLC fields.
func parseKlineValue(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case string:
		return decimal.NewFromString(val)
	case float64:
		return decimal.NewFromFloat(val), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported kline value type %T", v)
	}
}
