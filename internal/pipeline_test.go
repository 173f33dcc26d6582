package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/taobook/config"
	"github.com/vadiminshakov/taobook/internal/clients"
	"github.com/vadiminshakov/taobook/internal/domain"
)

type fakeFetcher struct {
	activity map[string]domain.WalletActivity
	calls    int
}

func (f *fakeFetcher) BalanceHistory(_ context.Context, wallet string) ([]domain.BalanceRecord, error) {
	f.calls++
	return f.activity[wallet].Balances, nil
}

func (f *fakeFetcher) Transfers(_ context.Context, wallet string, direction clients.TransferDirection) ([]domain.TransferRecord, error) {
	if direction == clients.TransferOutbound {
		return f.activity[wallet].Outbound, nil
	}
	return f.activity[wallet].Inbound, nil
}

type fakeCloser struct {
	closes map[string]decimal.Decimal
}

func (f *fakeCloser) DailyCloses(context.Context, domain.Pair, time.Time, time.Time) (map[string]decimal.Decimal, error) {
	return f.closes, nil
}

type memCache struct {
	saved map[string]domain.WalletActivity
}

func (c *memCache) Load(wallet string) (domain.WalletActivity, bool, error) {
	activity, ok := c.saved[wallet]
	return activity, ok, nil
}

func (c *memCache) Save(wallet string, activity domain.WalletActivity) error {
	c.saved[wallet] = activity
	return nil
}

type memSink struct {
	rows []domain.ReportRow
}

func (s *memSink) Append(row domain.ReportRow) error {
	s.rows = append(s.rows, row)
	return nil
}

func rao(tao int64) string {
	return decimal.NewFromInt(tao).Mul(decimal.NewFromInt(1_000_000_000)).String()
}

func TestPipeline_Run(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		Wallets:       []string{"5FAlpha"},
		SellAddresses: []string{"5SellDest"},
		Pair:          domain.Pair{From: "TAO", To: "USDT"},
		PriceStart:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CombinedCSV:   filepath.Join(dir, "combined.csv"),
		ReportCSV:     filepath.Join(dir, "report.csv"),
	}

	fetcher := &fakeFetcher{activity: map[string]domain.WalletActivity{
		"5FAlpha": {
			Balances: []domain.BalanceRecord{
				{Timestamp: "2024-01-01T10:00:00Z", BalanceTotal: rao(100)},
			},
			Outbound: []domain.TransferRecord{
				{Timestamp: "2024-01-01T12:00:00Z", Amount: rao(10), To: domain.TransferParty{Address: "5SellDest"}},
			},
		},
	}}
	prices := &fakeCloser{closes: map[string]decimal.Decimal{
		"2024-01-01T00:00:00.00": decimal.NewFromFloat(1.5),
	}}
	cache := &memCache{saved: map[string]domain.WalletActivity{}}
	sink := &memSink{}

	p := NewPipeline(cfg, fetcher, prices, cache, sink, zap.NewNop())

	rows, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "2024-01-01T00:00:00.00", row.Timestamp)
	// day total 100, outbound 10, no prior day: received = 100 + 10 = 110
	assert.True(t, row.Received.Equal(decimal.NewFromInt(110)), row.Received.String())
	assert.True(t, row.SoldQuantity.Equal(decimal.NewFromInt(10)), row.SoldQuantity.String())
	// 110 received at the 1.5 close
	assert.True(t, row.DailyRevenue.Equal(decimal.NewFromInt(165)), row.DailyRevenue.String())

	// both CSVs land on disk, rows reach the sink
	for _, path := range []string{cfg.CombinedCSV, cfg.ReportCSV} {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}
	require.Len(t, sink.rows, 1)

	// fetched activity is cached
	_, ok := cache.saved["5FAlpha"]
	assert.True(t, ok)
}

func TestPipeline_Run_UsesCache(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		Wallets:     []string{"5FAlpha"},
		Pair:        domain.Pair{From: "TAO", To: "USDT"},
		PriceStart:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CombinedCSV: filepath.Join(dir, "combined.csv"),
		ReportCSV:   filepath.Join(dir, "report.csv"),
	}

	cached := domain.WalletActivity{
		Balances: []domain.BalanceRecord{
			{Timestamp: "2024-01-01T10:00:00Z", BalanceTotal: rao(50)},
		},
	}
	fetcher := &fakeFetcher{activity: map[string]domain.WalletActivity{}}
	cache := &memCache{saved: map[string]domain.WalletActivity{"5FAlpha": cached}}

	p := NewPipeline(cfg, fetcher, &fakeCloser{closes: map[string]decimal.Decimal{}}, cache, nil, zap.NewNop())

	rows, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Zero(t, fetcher.calls)
	assert.True(t, rows[0].Received.Equal(decimal.NewFromInt(50)))
	// no close price for the day: zero revenue
	assert.True(t, rows[0].DailyRevenue.IsZero())
}
