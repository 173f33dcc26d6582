// Package ledger implements a LIFO cost-basis inventory over purchase
// batches.
package ledger

import "github.com/shopspring/decimal"

// Batch is a single purchase lot: a quantity acquired at a unit price.
// Batches are owned exclusively by the ledger's stack.
type Batch struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Ledger is an ordered stack of purchase batches, most recent on top.
// It is mutated sequentially in chronological day order and is not safe
// for concurrent use.
type Ledger struct {
	batches   []Batch
	inventory decimal.Decimal
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// AddInventory pushes a new batch onto the top of the stack. Inputs are
// accepted as given; callers gate on quantity > 0.
func (l *Ledger) AddInventory(quantity, price decimal.Decimal) {
	l.batches = append(l.batches, Batch{Quantity: quantity, UnitPrice: price})
	l.inventory = l.inventory.Add(quantity)
}

// SellInventory consumes quantityToSell units from the stack in LIFO order
// and returns the cost of goods sold and the realized loss. A batch larger
// than the remaining demand is split exactly; its remainder stays on top of
// the stack.
//
// If the stack empties before the demand is met, the shortfall is left
// unfulfilled without any signal and COGS covers only the units actually
// consumed. Intentional: this mirrors the established report semantics.
func (l *Ledger) SellInventory(quantityToSell, sellPrice decimal.Decimal) (cogs, loss decimal.Decimal) {
	remaining := quantityToSell

	for remaining.IsPositive() && len(l.batches) > 0 {
		top := l.batches[len(l.batches)-1]
		l.batches = l.batches[:len(l.batches)-1]

		if top.Quantity.LessThanOrEqual(remaining) {
			cogs = cogs.Add(top.Quantity.Mul(top.UnitPrice))
			remaining = remaining.Sub(top.Quantity)
			l.inventory = l.inventory.Sub(top.Quantity)
			continue
		}

		cogs = cogs.Add(remaining.Mul(top.UnitPrice))
		top.Quantity = top.Quantity.Sub(remaining)
		l.batches = append(l.batches, top)
		l.inventory = l.inventory.Sub(remaining)
		remaining = decimal.Zero
	}

	revenue := quantityToSell.Mul(sellPrice)
	if revenue.LessThan(cogs) {
		loss = cogs.Sub(revenue)
	}

	return cogs, loss
}

// CurrentInventory returns the total quantity held, always equal to the sum
// of all batch quantities on the stack.
func (l *Ledger) CurrentInventory() decimal.Decimal {
	return l.inventory
}

// Batches returns a copy of the batch stack, bottom first.
func (l *Ledger) Batches() []Batch {
	out := make([]Batch, len(l.batches))
	copy(out, l.batches)
	return out
}
