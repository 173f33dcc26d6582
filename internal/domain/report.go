package domain

import "github.com/shopspring/decimal"

// ReportRow is one day of the final accounting report. Quantities are
// rounded to 6 places, currency and percentage values to 2.
type ReportRow struct {
	// Timestamp is the canonical day key.
	Timestamp string `json:"timestamp"`

	BeginningInventory decimal.Decimal `json:"beginning_inventory"`
	Received           decimal.Decimal `json:"received"`
	SoldQuantity       decimal.Decimal `json:"sold_quantity"`

	DailyRevenue decimal.Decimal `json:"daily_revenue"`
	DailyCOGS    decimal.Decimal `json:"daily_cogs"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	TotalLoss    decimal.Decimal `json:"total_loss"`

	NetInventoryMovement  decimal.Decimal `json:"net_inventory_movement"`
	EndingInventory       decimal.Decimal `json:"ending_inventory"`
	GrossMarginPercentage decimal.Decimal `json:"gross_margin_percentage"`

	// USD valuation columns. Received outside (0, 250] is valued as zero
	// here; the quantity columns above stay unclamped.
	TotalReceivedUSD decimal.Decimal `json:"total_received_usd"`
	TotalSoldUSD     decimal.Decimal `json:"total_sold_usd"`
}

// ReportRowRecord bundles a report row with its run-store index.
type ReportRowRecord struct {
	Index uint64
	RunID string
	Row   ReportRow
}
