// Package pricer provides daily close-price feeds from cryptocurrency
// exchanges, keyed by canonical day key.
package pricer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/taobook/internal/domain"
)

// klineLimit is the maximum number of daily candles requested per call.
const klineLimit = 1000

// DailyCloser fetches daily close prices for a trading pair over a date
// range, keyed by day key.
type DailyCloser interface {
	DailyCloses(ctx context.Context, pair domain.Pair, from, to time.Time) (map[string]decimal.Decimal, error)
}
