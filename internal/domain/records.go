// Package domain defines core data structures used throughout the
// accounting pipeline.
package domain

import "github.com/shopspring/decimal"

// raoPerTao is the number of rao (the chain's smallest unit) in one TAO.
var raoPerTao = decimal.New(1, 9)

// RaoToTao converts an amount in rao to decimal TAO units.
func RaoToTao(rao decimal.Decimal) decimal.Decimal {
	return rao.Div(raoPerTao)
}

// BalanceRecord is one balance-history snapshot as served by the wallet
// data provider.
type BalanceRecord struct {
	Timestamp string `json:"timestamp"`
	// BalanceTotal is the wallet balance in rao, integer-as-string.
	// A missing value is treated as zero, not as an error.
	BalanceTotal string `json:"balance_total,omitempty"`
}

// TransferParty identifies a transfer counterparty.
type TransferParty struct {
	Address string `json:"ss58"`
}

// TransferRecord is one transfer as served by the wallet data provider.
// Outbound records carry the destination in To; inbound records carry the
// origin in From.
type TransferRecord struct {
	Timestamp string        `json:"timestamp"`
	Amount    string        `json:"amount"`
	To        TransferParty `json:"to,omitempty"`
	From      TransferParty `json:"from,omitempty"`
}

// WalletDayRecord is one wallet's reconciled activity for a single day key.
// Built once per aggregation pass, never mutated afterward.
type WalletDayRecord struct {
	// DayTotal is the wallet balance snapshot of the day, in TAO.
	DayTotal decimal.Decimal `json:"day_total"`
	// TotalTransferred is outbound minus inbound for the day, in TAO.
	TotalTransferred decimal.Decimal `json:"total_transferred"`
	// Received is the reconciled net inflow. May be negative; clamping
	// happens downstream.
	Received decimal.Decimal `json:"received"`
	// SoldTransferred is the outbound amount routed to sell-designated
	// addresses, in TAO.
	SoldTransferred decimal.Decimal `json:"sold_transferred"`
}

// CombinedDayRecord is the cross-wallet daily aggregate after the
// secondary-wallet policy has been applied.
type CombinedDayRecord struct {
	Received        decimal.Decimal `json:"received"`
	SoldTransferred decimal.Decimal `json:"sold_transferred"`
	TaoPrice        decimal.Decimal `json:"tao_price"`
}

// WalletActivity bundles everything fetched for one wallet, in the shape
// persisted by the wallet cache.
type WalletActivity struct {
	Balances []BalanceRecord  `json:"balances"`
	Outbound []TransferRecord `json:"outbound"`
	Inbound  []TransferRecord `json:"inbound"`
}

// Pair trading pair used by the price feed.
type Pair struct {
	// From base currency symbol.
	From string
	// To quote currency symbol.
	To string
}

// String returns the string representation.
func (p *Pair) String() string {
	return p.From + "_" + p.To
}

// Symbol returns the concatenated symbol representation.
func (p *Pair) Symbol() string {
	return p.From + p.To
}
