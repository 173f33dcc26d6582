package pricer

import (
	"context"
	"strconv"
	"time"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/taobook/internal/domain"
)

// BybitPricer implements DailyCloser for Bybit via the V5 market kline API.
type BybitPricer struct {
	client *bybit.Client
}

// NewBybitPricer creates a new Bybit daily close provider.
func NewBybitPricer(client *bybit.Client) *BybitPricer {
	return &BybitPricer{client: client}
}

// DailyCloses fetches daily candles from Bybit spot and maps each close to
// the day key of the candle start time.
func (p *BybitPricer) DailyCloses(ctx context.Context, pair domain.Pair, from, to time.Time) (map[string]decimal.Decimal, error) {
	symbol := bybit.SymbolV5(pair.Symbol())
	start := from.UnixMilli()
	end := to.UnixMilli()
	limit := klineLimit

	resp, err := p.client.V5().Market().GetKline(bybit.V5GetKlineParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   symbol,
		Interval: bybit.IntervalD,
		Start:    &start,
		End:      &end,
		Limit:    &limit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Bybit for %s", pair.String())
	}

	closes := make(map[string]decimal.Decimal, len(resp.Result.List))
	for i, item := range resp.Result.List {
		startMs, err := strconv.ParseInt(item.StartTime, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse candle start time at index %d", i)
		}
		close, err := decimal.NewFromString(item.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
		}
		closes[domain.DayKeyFor(time.Unix(0, startMs*int64(time.Millisecond)))] = close
	}

	return closes, nil
}
