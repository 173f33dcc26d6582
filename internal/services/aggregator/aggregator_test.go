package aggregator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/taobook/internal/domain"
)

const (
	sellAddr  = "5SellDestination"
	otherAddr = "5SomeCounterparty"
)

// tao converts whole TAO to an integer-as-string rao amount.
func tao(n int64) string {
	return decimal.NewFromInt(n).Mul(decimal.New(1, 9)).String()
}

func newTestAggregator() *Aggregator {
	return New([]string{sellAddr}, zap.NewNop())
}

func TestAggregate_Empty(t *testing.T) {
	out, err := newTestAggregator().Aggregate(domain.WalletActivity{})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestAggregate_SingleDay(t *testing.T) {
	activity := domain.WalletActivity{
		Balances: []domain.BalanceRecord{
			{Timestamp: "2024-01-01T10:15:00.123Z", BalanceTotal: tao(100)},
		},
		Outbound: []domain.TransferRecord{
			{Timestamp: "2024-01-01T11:00:00Z", Amount: tao(10), To: domain.TransferParty{Address: sellAddr}},
			{Timestamp: "2024-01-01T12:00:00Z", Amount: tao(4), To: domain.TransferParty{Address: otherAddr}},
		},
		Inbound: []domain.TransferRecord{
			{Timestamp: "2024-01-01T13:00:00Z", Amount: tao(6), From: domain.TransferParty{Address: otherAddr}},
		},
	}

	out, err := newTestAggregator().Aggregate(activity)
	require.NoError(t, err)
	require.Len(t, out, 1)

	rec := out["2024-01-01T00:00:00.00"]
	require.True(t, rec.DayTotal.Equal(decimal.NewFromInt(100)))
	// outbound 14 - inbound 6
	require.True(t, rec.TotalTransferred.Equal(decimal.NewFromInt(8)), "got %s", rec.TotalTransferred)
	// (100 - 0) + 8
	require.True(t, rec.Received.Equal(decimal.NewFromInt(108)), "got %s", rec.Received)
	// only the transfer to the sell-designated address
	require.True(t, rec.SoldTransferred.Equal(decimal.NewFromInt(10)), "got %s", rec.SoldTransferred)
}

func TestAggregate_CarryForward(t *testing.T) {
	activity := domain.WalletActivity{
		Balances: []domain.BalanceRecord{
			{Timestamp: "2024-01-01T00:05:00Z", BalanceTotal: tao(100)},
			{Timestamp: "2024-01-03T00:05:00Z", BalanceTotal: tao(90)},
		},
		Outbound: []domain.TransferRecord{
			// activity on a day with no snapshot
			{Timestamp: "2024-01-02T09:00:00Z", Amount: tao(5), To: domain.TransferParty{Address: sellAddr}},
		},
	}

	out, err := newTestAggregator().Aggregate(activity)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotContains(t, out, "2024-01-02T00:00:00.00", "snapshot-less day must not emit")

	day3 := out["2024-01-03T00:00:00.00"]
	require.True(t, day3.TotalTransferred.Equal(decimal.NewFromInt(5)), "got %s", day3.TotalTransferred)
	require.True(t, day3.SoldTransferred.Equal(decimal.NewFromInt(5)), "got %s", day3.SoldTransferred)
	// (90 - 100) + 5, negative received passes through
	require.True(t, day3.Received.Equal(decimal.NewFromInt(-5)), "got %s", day3.Received)
}

func TestAggregate_CarrySpansOneDayOnly(t *testing.T) {
	activity := domain.WalletActivity{
		Balances: []domain.BalanceRecord{
			{Timestamp: "2024-01-04T00:05:00Z", BalanceTotal: tao(50)},
		},
		Outbound: []domain.TransferRecord{
			{Timestamp: "2024-01-01T09:00:00Z", Amount: tao(7), To: domain.TransferParty{Address: otherAddr}},
			{Timestamp: "2024-01-03T09:00:00Z", Amount: tao(2), To: domain.TransferParty{Address: otherAddr}},
		},
	}

	out, err := newTestAggregator().Aggregate(activity)
	require.NoError(t, err)
	require.Len(t, out, 1)

	// only the immediately preceding day's leftover is folded in; the
	// amount from 2024-01-01 is dropped
	day4 := out["2024-01-04T00:00:00.00"]
	require.True(t, day4.TotalTransferred.Equal(decimal.NewFromInt(2)), "got %s", day4.TotalTransferred)
}

func TestAggregate_DuplicateSnapshotLastWriteWins(t *testing.T) {
	activity := domain.WalletActivity{
		Balances: []domain.BalanceRecord{
			{Timestamp: "2024-01-01T01:00:00Z", BalanceTotal: tao(10)},
			{Timestamp: "2024-01-01T23:00:00Z", BalanceTotal: tao(25)},
		},
	}

	out, err := newTestAggregator().Aggregate(activity)
	require.NoError(t, err)
	require.True(t, out["2024-01-01T00:00:00.00"].DayTotal.Equal(decimal.NewFromInt(25)))
}

func TestAggregate_MissingBalanceTotalIsZero(t *testing.T) {
	activity := domain.WalletActivity{
		Balances: []domain.BalanceRecord{
			{Timestamp: "2024-01-01T01:00:00Z"},
		},
	}

	out, err := newTestAggregator().Aggregate(activity)
	require.NoError(t, err)
	require.True(t, out["2024-01-01T00:00:00.00"].DayTotal.IsZero())
}

func TestAggregate_MalformedTimestamp(t *testing.T) {
	activity := domain.WalletActivity{
		Balances: []domain.BalanceRecord{
			{Timestamp: "01/02/2024 10:00", BalanceTotal: tao(1)},
		},
	}

	_, err := newTestAggregator().Aggregate(activity)
	require.ErrorIs(t, err, domain.ErrMalformedTimestamp)
}

func TestCombine_SecondaryClamp(t *testing.T) {
	day := "2024-01-01T00:00:00.00"
	perWallet := map[string]map[string]domain.WalletDayRecord{
		"primary": {
			day: {Received: decimal.NewFromInt(3), SoldTransferred: decimal.NewFromInt(1)},
		},
		"secondary": {
			day: {Received: decimal.NewFromInt(3), SoldTransferred: decimal.NewFromInt(2)},
		},
	}

	combined := Combine(perWallet, []string{"secondary"})
	require.Len(t, combined, 1)

	rec := combined[day]
	// secondary's received > 2 is zeroed, primary's is untouched
	require.True(t, rec.Received.Equal(decimal.NewFromInt(3)), "got %s", rec.Received)
	// sold sums regardless of the clamp
	require.True(t, rec.SoldTransferred.Equal(decimal.NewFromInt(3)), "got %s", rec.SoldTransferred)
}

func TestCombine_SecondaryBelowCapKept(t *testing.T) {
	day := "2024-01-01T00:00:00.00"
	perWallet := map[string]map[string]domain.WalletDayRecord{
		"secondary": {
			day: {Received: decimal.NewFromInt(2)},
		},
	}

	combined := Combine(perWallet, []string{"secondary"})
	require.True(t, combined[day].Received.Equal(decimal.NewFromInt(2)))
}

func TestJoinPrices(t *testing.T) {
	combined := map[string]domain.CombinedDayRecord{
		"2024-01-01T00:00:00.00": {Received: decimal.NewFromInt(1)},
		"2024-01-02T00:00:00.00": {Received: decimal.NewFromInt(2)},
	}
	closes := map[string]decimal.Decimal{
		"2024-01-01T00:00:00.00": decimal.RequireFromString("412.55"),
		"2024-01-09T00:00:00.00": decimal.RequireFromString("999"),
	}

	JoinPrices(combined, closes)

	require.Len(t, combined, 2, "price join must not add day keys")
	require.True(t, combined["2024-01-01T00:00:00.00"].TaoPrice.Equal(decimal.RequireFromString("412.55")))
	require.True(t, combined["2024-01-02T00:00:00.00"].TaoPrice.IsZero())
}
