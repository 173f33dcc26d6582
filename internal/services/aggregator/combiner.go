package aggregator

import (
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/taobook/internal/domain"
)

// secondaryReceivedCap suppresses large daily inflows on secondary wallets
// before summation, in TAO.
var secondaryReceivedCap = decimal.NewFromInt(2)

// Combine folds each wallet's day series into one global series. For
// wallets in the secondary set, a day's received above the cap is forced to
// zero for that day only; the day itself still contributes. Wallet order
// does not affect the result.
func Combine(perWallet map[string]map[string]domain.WalletDayRecord, secondary []string) map[string]domain.CombinedDayRecord {
	secondarySet := make(map[string]bool, len(secondary))
	for _, w := range secondary {
		secondarySet[w] = true
	}

	combined := make(map[string]domain.CombinedDayRecord)
	for wallet, series := range perWallet {
		for day, rec := range series {
			received := rec.Received
			if secondarySet[wallet] && received.GreaterThan(secondaryReceivedCap) {
				received = decimal.Zero
			}

			entry := combined[day]
			entry.Received = entry.Received.Add(received)
			entry.SoldTransferred = entry.SoldTransferred.Add(rec.SoldTransferred)
			combined[day] = entry
		}
	}

	return combined
}

// JoinPrices sets each day's close price from the given day key -> close
// mapping, zero when absent. No new day keys are added.
func JoinPrices(combined map[string]domain.CombinedDayRecord, closes map[string]decimal.Decimal) {
	for day, rec := range combined {
		if price, ok := closes[day]; ok {
			rec.TaoPrice = price
		} else {
			rec.TaoPrice = decimal.Zero
		}
		combined[day] = rec
	}
}
