// Package reports persists pipeline output: CSV files for the combined
// series and the daily report, and a WAL-backed run store feeding the
// dashboard stream.
package reports

import (
	"encoding/csv"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/taobook/internal/domain"
)

// usdReceivedCap matches the report-level clamp: received values above it
// (or negative) are valued as zero in the USD columns of the combined CSV.
var usdReceivedCap = decimal.NewFromInt(250)

// WriteCombinedCSV writes the combined, price-joined day series in
// chronological order. Only the USD columns see the clamp; the received
// column keeps the raw value.
func WriteCombinedCSV(path string, combined map[string]domain.CombinedDayRecord) error {
	days := make([]string, 0, len(combined))
	for day := range combined {
		days = append(days, day)
	}
	sort.Strings(days)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create combined csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"timestamp", "received", "sold", "price", "total_received ($)", "total sold ($)"}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write combined csv header")
	}

	for _, day := range days {
		rec := combined[day]

		usdBasis := rec.Received
		if usdBasis.GreaterThan(usdReceivedCap) || usdBasis.IsNegative() {
			usdBasis = decimal.Zero
		}

		row := []string{
			day,
			rec.Received.String(),
			rec.SoldTransferred.String(),
			rec.TaoPrice.String(),
			usdBasis.Mul(rec.TaoPrice).String(),
			rec.SoldTransferred.Mul(rec.TaoPrice).String(),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "write combined csv row for %s", day)
		}
	}

	return w.Error()
}

// WriteReportCSV writes the daily report rows in the order given.
func WriteReportCSV(path string, rows []domain.ReportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create report csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"timestamp",
		"beginning_inventory",
		"received",
		"sold_quantity",
		"daily_revenue",
		"daily_cogs",
		"gross_profit",
		"total_loss",
		"net_inventory_movement",
		"ending_inventory",
		"gross_margin_percentage",
		"total_received_usd",
		"total_sold_usd",
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write report csv header")
	}

	for _, r := range rows {
		row := []string{
			r.Timestamp,
			r.BeginningInventory.String(),
			r.Received.String(),
			r.SoldQuantity.String(),
			r.DailyRevenue.String(),
			r.DailyCOGS.String(),
			r.GrossProfit.String(),
			r.TotalLoss.String(),
			r.NetInventoryMovement.String(),
			r.EndingInventory.String(),
			r.GrossMarginPercentage.String(),
			r.TotalReceivedUSD.String(),
			r.TotalSoldUSD.String(),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "write report csv row for %s", r.Timestamp)
		}
	}

	return w.Error()
}
