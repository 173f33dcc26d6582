package pricer

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/taobook/internal/domain"
)

// BinancePricer implements DailyCloser for Binance.
type BinancePricer struct {
	client *binance.Client
}

// NewBinancePricer creates a new Binance daily close provider.
func NewBinancePricer(client *binance.Client) *BinancePricer {
	return &BinancePricer{client: client}
}

// DailyCloses fetches 1d klines from Binance and maps each candle's close
// to the day key of its open time.
func (p *BinancePricer) DailyCloses(ctx context.Context, pair domain.Pair, from, to time.Time) (map[string]decimal.Decimal, error) {
	klines, err := p.client.NewKlinesService().
		Symbol(pair.Symbol()).
		Interval("1d").
		StartTime(from.UnixMilli()).
		EndTime(to.UnixMilli()).
		Limit(klineLimit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Binance for %s", pair.String())
	}

	closes := make(map[string]decimal.Decimal, len(klines))
	for i, k := range klines {
		close, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
		}
		day := domain.DayKeyFor(time.Unix(0, k.OpenTime*int64(time.Millisecond)))
		closes[day] = close
	}

	return closes, nil
}
