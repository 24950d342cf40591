package ledger

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

var (
	ErrInvalidAmount = errors.New("payment amount must be a positive number")
	ErrNoOrders      = errors.New("no orders to apply payment to")
)

// OverpaymentError reports a payment larger than the group's outstanding balance
// that has not been confirmed by the payer.
type OverpaymentError struct {
	Outstanding decimal.Decimal
	Excess      decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment exceeds outstanding balance %s by %s; confirmation required", e.Outstanding.String(), e.Excess.String())
}

// Allocation is the result of spreading one payment across a customer's orders.
type Allocation struct {
	Updates     []domain.PaymentUpdate
	Outstanding decimal.Decimal
	Overpayment decimal.Decimal
}

// Applied sums every order's share; it always equals the allocated amount.
func (a Allocation) Applied() decimal.Decimal {
	total := decimal.Zero
	for _, u := range a.Updates {
		total = total.Add(u.Applied)
	}
	return total
}

// AllocatePayment settles orders oldest first. An order absorbs at most its outstanding
// balance; any leftover lands on the last order touched, or on the newest order when
// nothing was outstanding. Overpaying needs confirmOverpayment.
func AllocatePayment(orders []domain.DailyOrder, amount decimal.Decimal, confirmOverpayment bool) (Allocation, error) {
	if !amount.IsPositive() {
		return Allocation{}, ErrInvalidAmount
	}
	if len(orders) == 0 {
		return Allocation{}, ErrNoOrders
	}

	open := make([]domain.DailyOrder, 0, len(orders))
	outstanding := decimal.Zero
	for _, order := range orders {
		if due := order.Outstanding(); due.IsPositive() {
			open = append(open, order)
			outstanding = outstanding.Add(due)
		}
	}
	slices.SortStableFunc(open, compareOldestFirst)

	if amount.GreaterThan(outstanding) && !confirmOverpayment {
		return Allocation{}, &OverpaymentError{Outstanding: outstanding, Excess: amount.Sub(outstanding)}
	}

	updates := make([]domain.PaymentUpdate, 0, len(open)+1)
	remaining := amount
	for _, order := range open {
		if !remaining.IsPositive() {
			break
		}
		share := decimal.Min(remaining, order.Outstanding())
		remaining = remaining.Sub(share)
		updates = append(updates, newUpdate(order, share))
	}

	overpayment := decimal.Zero
	if remaining.IsPositive() {
		overpayment = remaining
		if len(updates) > 0 {
			last := &updates[len(updates)-1]
			last.Applied = last.Applied.Add(remaining)
			last.NewPaid = last.NewPaid.Add(remaining)
			last.Status = domain.StatusFor(totalOf(orders, last.OrderID), last.NewPaid)
		} else {
			updates = append(updates, newUpdate(newestOrder(orders), remaining))
		}
	}

	return Allocation{Updates: updates, Outstanding: outstanding, Overpayment: overpayment}, nil
}

// ApplyAllocation returns copies of orders with the allocation's paid amounts and statuses.
func ApplyAllocation(orders []domain.DailyOrder, alloc Allocation) []domain.DailyOrder {
	byID := make(map[string]domain.PaymentUpdate, len(alloc.Updates))
	for _, u := range alloc.Updates {
		byID[u.OrderID] = u
	}
	out := make([]domain.DailyOrder, 0, len(orders))
	for _, order := range orders {
		if u, ok := byID[order.ID]; ok {
			order.AmountPaid = u.NewPaid
			order.Status = u.Status
		}
		out = append(out, order)
	}
	return out
}

func newUpdate(order domain.DailyOrder, share decimal.Decimal) domain.PaymentUpdate {
	newPaid := order.AmountPaid.Add(share)
	return domain.PaymentUpdate{
		OrderID:      order.ID,
		PreviousPaid: order.AmountPaid,
		NewPaid:      newPaid,
		Applied:      share,
		Status:       domain.StatusFor(order.TotalAmount, newPaid),
	}
}

func compareOldestFirst(a, b domain.DailyOrder) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func newestOrder(orders []domain.DailyOrder) domain.DailyOrder {
	newest := orders[0]
	for _, order := range orders[1:] {
		if compareOldestFirst(order, newest) > 0 {
			newest = order
		}
	}
	return newest
}

func totalOf(orders []domain.DailyOrder, id string) decimal.Decimal {
	for _, order := range orders {
		if order.ID == id {
			return order.TotalAmount
		}
	}
	return decimal.Zero
}
