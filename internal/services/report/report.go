// Package report turns the combined, price-joined day series into the
// daily LIFO accounting report.
package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/taobook/internal/domain"
	"github.com/vadiminshakov/taobook/internal/services/ledger"
)

const (
	quantityPlaces = 6
	currencyPlaces = 2
)

// receivedClampMax bounds the received value used for USD valuation.
// Values above it (or below zero) are valued as zero; the ledger still
// consumes the unclamped quantity.
var receivedClampMax = decimal.NewFromInt(250)

var oneHundred = decimal.NewFromInt(100)

// Generator walks the combined series in date order through a fresh LIFO
// ledger and emits one report row per day.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a report generator.
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate produces the daily report, chronologically ordered.
func (g *Generator) Generate(combined map[string]domain.CombinedDayRecord) []domain.ReportRow {
	days := make([]string, 0, len(combined))
	for day := range combined {
		days = append(days, day)
	}
	sort.Strings(days)

	led := ledger.New()
	rows := make([]domain.ReportRow, 0, len(days))

	for _, day := range days {
		rec := combined[day]
		received := rec.Received
		sold := rec.SoldTransferred
		price := rec.TaoPrice

		beginning := led.CurrentInventory()

		dailyRevenue := decimal.Zero
		dailyCOGS := decimal.Zero
		profitLoss := decimal.Zero
		margin := decimal.Zero
		loss := decimal.Zero

		if received.IsPositive() {
			dailyRevenue = received.Mul(price)
			led.AddInventory(received, price)
		}

		if sold.IsPositive() {
			dailyCOGS, loss = led.SellInventory(sold, price)
			profitLoss = dailyRevenue.Sub(dailyCOGS).Sub(loss)
			if dailyRevenue.IsPositive() {
				margin = profitLoss.Div(dailyRevenue).Mul(oneHundred)
			}
		}

		ending := led.CurrentInventory()

		usdBasis := received
		if usdBasis.GreaterThan(receivedClampMax) || usdBasis.IsNegative() {
			usdBasis = decimal.Zero
		}

		g.logger.Debug("report day",
			zap.String("day", day),
			zap.String("received", received.String()),
			zap.String("sold", sold.String()),
			zap.String("cogs", dailyCOGS.String()),
			zap.String("ending_inventory", ending.String()))

		rows = append(rows, domain.ReportRow{
			Timestamp:             day,
			BeginningInventory:    beginning.Round(quantityPlaces),
			Received:              received.Round(quantityPlaces),
			SoldQuantity:          sold.Round(quantityPlaces),
			DailyRevenue:          dailyRevenue.Round(currencyPlaces),
			DailyCOGS:             dailyCOGS.Round(currencyPlaces),
			GrossProfit:           profitLoss.Round(currencyPlaces),
			TotalLoss:             loss.Round(currencyPlaces),
			NetInventoryMovement:  received.Sub(sold).Round(quantityPlaces),
			EndingInventory:       ending.Round(quantityPlaces),
			GrossMarginPercentage: margin.Round(currencyPlaces),
			TotalReceivedUSD:      usdBasis.Mul(price).Round(currencyPlaces),
			TotalSoldUSD:          sold.Mul(price).Round(currencyPlaces),
		})
	}

	return rows
}
