// Package aggregator reconciles a wallet's raw on-chain activity into a
// calendar-day series and combines per-wallet series into one global series.
package aggregator

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/taobook/internal/domain"
)

// Aggregator builds the day-keyed record series for a single wallet.
type Aggregator struct {
	sellAddresses map[string]bool
	logger        *zap.Logger
}

// New creates an Aggregator. Outbound transfers to any of sellAddresses are
// additionally counted as sold.
func New(sellAddresses []string, logger *zap.Logger) *Aggregator {
	set := make(map[string]bool, len(sellAddresses))
	for _, addr := range sellAddresses {
		set[addr] = true
	}
	return &Aggregator{sellAddresses: set, logger: logger}
}

// Aggregate merges one wallet's balance snapshots and transfers into a
// day key -> record mapping.
//
// Days that saw transfer activity but no balance snapshot emit no record;
// their totals are carried into the following day. The carry spans exactly
// one day: if the following day also lacks a snapshot, the older leftover
// is dropped.
func (a *Aggregator) Aggregate(activity domain.WalletActivity) (map[string]domain.WalletDayRecord, error) {
	snapshots := make(map[string]decimal.Decimal)
	outbound := make(map[string]decimal.Decimal)
	sold := make(map[string]decimal.Decimal)
	inbound := make(map[string]decimal.Decimal)

	// last snapshot in input order wins for a day
	for _, rec := range activity.Balances {
		day, err := domain.NormalizeDay(rec.Timestamp)
		if err != nil {
			return nil, errors.Wrap(err, "balance record")
		}
		total, err := parseAmount(rec.BalanceTotal)
		if err != nil {
			return nil, errors.Wrapf(err, "balance_total for day %s", day)
		}
		snapshots[day] = total
	}

	for _, tr := range activity.Outbound {
		day, err := domain.NormalizeDay(tr.Timestamp)
		if err != nil {
			return nil, errors.Wrap(err, "outbound transfer")
		}
		amount, err := parseAmount(tr.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "outbound amount for day %s", day)
		}
		outbound[day] = outbound[day].Add(amount)
		if a.sellAddresses[tr.To.Address] {
			sold[day] = sold[day].Add(amount)
		}
	}

	for _, tr := range activity.Inbound {
		day, err := domain.NormalizeDay(tr.Timestamp)
		if err != nil {
			return nil, errors.Wrap(err, "inbound transfer")
		}
		amount, err := parseAmount(tr.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "inbound amount for day %s", day)
		}
		inbound[day] = inbound[day].Add(amount)
	}

	days := make([]string, 0, len(snapshots)+len(outbound)+len(inbound))
	seen := make(map[string]bool)
	for _, m := range []map[string]decimal.Decimal{snapshots, outbound, sold, inbound} {
		for day := range m {
			if !seen[day] {
				seen[day] = true
				days = append(days, day)
			}
		}
	}
	// fixed-width zero-padded keys, lexical order is chronological
	sort.Strings(days)

	leftTransferred := make(map[string]decimal.Decimal)
	leftSold := make(map[string]decimal.Decimal)
	leftInbound := make(map[string]decimal.Decimal)

	out := make(map[string]domain.WalletDayRecord, len(snapshots))
	prevDayTotal := decimal.Zero

	for _, day := range days {
		totaledTransfer := outbound[day]
		soldTransfer := sold[day]
		inboundTransfers := inbound[day]

		snapshot, hasSnapshot := snapshots[day]
		if !hasSnapshot {
			// transfer-only day: defer its own totals to the next day
			leftTransferred[day] = totaledTransfer
			leftSold[day] = soldTransfer
			leftInbound[day] = inboundTransfers
			a.logger.Debug("no balance snapshot, deferring transfers",
				zap.String("day", day),
				zap.String("outbound", totaledTransfer.String()),
				zap.String("inbound", inboundTransfers.String()))
			continue
		}

		previous, err := domain.PreviousDay(day)
		if err != nil {
			return nil, err
		}
		if lt, ok := leftTransferred[previous]; ok {
			totaledTransfer = totaledTransfer.Add(lt)
			soldTransfer = soldTransfer.Add(leftSold[previous])
			delete(leftTransferred, previous)
			delete(leftSold, previous)
		}
		if li, ok := leftInbound[previous]; ok {
			inboundTransfers = inboundTransfers.Add(li)
			delete(leftInbound, previous)
		}

		dayTotal := domain.RaoToTao(snapshot)
		totalTransferred := domain.RaoToTao(totaledTransfer.Sub(inboundTransfers))
		received := dayTotal.Sub(prevDayTotal).Add(totalTransferred)

		out[day] = domain.WalletDayRecord{
			DayTotal:         dayTotal,
			TotalTransferred: totalTransferred,
			Received:         received,
			SoldTransferred:  domain.RaoToTao(soldTransfer),
		}
		prevDayTotal = dayTotal
	}

	return out, nil
}

// parseAmount reads an integer-as-string rao amount. Missing values are
// zero by policy.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
