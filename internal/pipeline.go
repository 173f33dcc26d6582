// Package internal wires the accounting pipeline together: wallet data
// acquisition, daily aggregation, price join, LIFO reporting and
// persistence of the results.
package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/taobook/config"
	"github.com/vadiminshakov/taobook/internal/clients"
	"github.com/vadiminshakov/taobook/internal/domain"
	"github.com/vadiminshakov/taobook/internal/services/aggregator"
	"github.com/vadiminshakov/taobook/internal/services/report"
	"github.com/vadiminshakov/taobook/internal/storage/reports"
)

type activityFetcher interface {
	BalanceHistory(ctx context.Context, wallet string) ([]domain.BalanceRecord, error)
	Transfers(ctx context.Context, wallet string, direction clients.TransferDirection) ([]domain.TransferRecord, error)
}

type dailyCloser interface {
	DailyCloses(ctx context.Context, pair domain.Pair, from, to time.Time) (map[string]decimal.Decimal, error)
}

type activityCache interface {
	Load(wallet string) (domain.WalletActivity, bool, error)
	Save(wallet string, activity domain.WalletActivity) error
}

type rowSink interface {
	Append(row domain.ReportRow) error
}

// Pipeline runs one full reconciliation and reporting pass.
type Pipeline struct {
	cfg     config.Config
	fetcher activityFetcher
	prices  dailyCloser
	cache   activityCache
	sink    rowSink
	logger  *zap.Logger
}

// NewPipeline creates a pipeline. sink may be nil when no run store is
// configured.
func NewPipeline(cfg config.Config, fetcher activityFetcher, prices dailyCloser, cache activityCache, sink rowSink, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		prices:  prices,
		cache:   cache,
		sink:    sink,
		logger:  logger,
	}
}

// Run processes every configured wallet sequentially, combines the
// per-wallet series, joins prices and produces the daily report. The
// combiner only runs after all wallets complete.
func (p *Pipeline) Run(ctx context.Context) ([]domain.ReportRow, error) {
	agg := aggregator.New(p.cfg.SellAddresses, p.logger)

	perWallet := make(map[string]map[string]domain.WalletDayRecord, len(p.cfg.Wallets))
	for i, wallet := range p.cfg.Wallets {
		p.logger.Info("processing wallet",
			zap.String("wallet", wallet),
			zap.Int("n", i+1),
			zap.Int("total", len(p.cfg.Wallets)))

		activity, err := p.loadOrFetch(ctx, wallet)
		if err != nil {
			return nil, errors.Wrapf(err, "load activity for wallet %s", wallet)
		}

		series, err := agg.Aggregate(activity)
		if err != nil {
			return nil, errors.Wrapf(err, "aggregate wallet %s", wallet)
		}
		perWallet[wallet] = series
	}

	combined := aggregator.Combine(perWallet, p.cfg.SecondaryWallets)

	closes, err := p.prices.DailyCloses(ctx, p.cfg.Pair, p.cfg.PriceStart, time.Now().UTC())
	if err != nil {
		return nil, errors.Wrap(err, "fetch daily close prices")
	}
	aggregator.JoinPrices(combined, closes)

	if err := reports.WriteCombinedCSV(p.cfg.CombinedCSV, combined); err != nil {
		return nil, err
	}
	p.logger.Info("combined series written", zap.String("path", p.cfg.CombinedCSV), zap.Int("days", len(combined)))

	rows := report.NewGenerator(p.logger).Generate(combined)

	if err := reports.WriteReportCSV(p.cfg.ReportCSV, rows); err != nil {
		return nil, err
	}
	p.logger.Info("daily report written", zap.String("path", p.cfg.ReportCSV), zap.Int("rows", len(rows)))

	if p.sink != nil {
		for _, row := range rows {
			if err := p.sink.Append(row); err != nil {
				return nil, errors.Wrap(err, "persist report row")
			}
		}
	}

	return rows, nil
}

// loadOrFetch returns cached wallet activity when present, otherwise
// fetches it from the provider and caches the result.
func (p *Pipeline) loadOrFetch(ctx context.Context, wallet string) (domain.WalletActivity, error) {
	activity, ok, err := p.cache.Load(wallet)
	if err != nil {
		return domain.WalletActivity{}, err
	}
	if ok {
		p.logger.Debug("wallet activity loaded from cache", zap.String("wallet", wallet))
		return activity, nil
	}

	balances, err := p.fetcher.BalanceHistory(ctx, wallet)
	if err != nil {
		return domain.WalletActivity{}, err
	}
	outbound, err := p.fetcher.Transfers(ctx, wallet, clients.TransferOutbound)
	if err != nil {
		return domain.WalletActivity{}, err
	}
	inbound, err := p.fetcher.Transfers(ctx, wallet, clients.TransferInbound)
	if err != nil {
		return domain.WalletActivity{}, err
	}

	activity = domain.WalletActivity{Balances: balances, Outbound: outbound, Inbound: inbound}
	if err := p.cache.Save(wallet, activity); err != nil {
		return domain.WalletActivity{}, err
	}
	p.logger.Info("wallet activity fetched and cached", zap.String("wallet", wallet))

	return activity, nil
}
