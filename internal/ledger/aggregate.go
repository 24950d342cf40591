package ledger

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

// GroupByCustomer folds orders into one summary per customer, sorted by customer name.
func GroupByCustomer(orders []domain.DailyOrder) []domain.DailySummary {
	summaries := group(orders, func(o domain.DailyOrder) groupKey {
		return groupKey{customerID: o.CustomerID}
	})
	slices.SortStableFunc(summaries, func(a, b domain.DailySummary) int {
		if c := cmp.Compare(a.CustomerName, b.CustomerName); c != 0 {
			return c
		}
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})
	return summaries
}

// GroupByCustomerAndDate folds orders into one summary per (customer, date), newest date first.
func GroupByCustomerAndDate(orders []domain.DailyOrder) []domain.DailySummary {
	summaries := group(orders, func(o domain.DailyOrder) groupKey {
		return groupKey{customerID: o.CustomerID, date: o.OrderDate}
	})
	slices.SortStableFunc(summaries, func(a, b domain.DailySummary) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CustomerName, b.CustomerName); c != 0 {
			return c
		}
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})
	return summaries
}

// Summarize builds a single summary over all given orders regardless of customer or date.
// Customer and date are taken from the first order.
func Summarize(orders []domain.DailyOrder) domain.DailySummary {
	if len(orders) == 0 {
		return emptySummary()
	}
	summaries := group(orders, func(domain.DailyOrder) groupKey { return groupKey{} })
	summary := summaries[0]
	summary.CustomerID = orders[0].CustomerID
	summary.CustomerName = orders[0].CustomerName
	summary.Date = orders[0].OrderDate
	return summary
}

// MergeItems merges line items sharing (product id, unit price), sorted by product name.
func MergeItems(items []domain.OrderLineItem) []domain.MergedItem {
	merged := make([]domain.MergedItem, 0, len(items))
	index := make(map[itemKey]int, len(items))
	for _, item := range items {
		key := itemKey{productID: item.ProductID, price: item.UnitPrice.String()}
		if pos, ok := index[key]; ok {
			merged[pos].Quantity = merged[pos].Quantity.Add(item.Quantity)
			merged[pos].Total = merged[pos].Total.Add(item.LineTotal)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, domain.MergedItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Total:       item.LineTotal,
		})
	}

	slices.SortStableFunc(merged, func(a, b domain.MergedItem) int {
		if c := cmp.Compare(a.ProductName, b.ProductName); c != 0 {
			return c
		}
		return a.UnitPrice.Cmp(b.UnitPrice)
	})
	return merged
}

type groupKey struct {
	customerID string
	date       string
}

type itemKey struct {
	productID string
	price     string
}

type bucket struct {
	summary domain.DailySummary
	items   []domain.OrderLineItem
}

func group(orders []domain.DailyOrder, keyOf func(domain.DailyOrder) groupKey) []domain.DailySummary {
	buckets := make([]*bucket, 0)
	index := make(map[groupKey]*bucket)

	for _, order := range orders {
		key := keyOf(order)
		b, ok := index[key]
		if !ok {
			b = &bucket{summary: emptySummary()}
			b.summary.CustomerID = order.CustomerID
			b.summary.CustomerName = order.CustomerName
			b.summary.Date = key.date
			index[key] = b
			buckets = append(buckets, b)
		}
		b.summary.OrderIDs = append(b.summary.OrderIDs, order.ID)
		b.summary.TotalAmount = b.summary.TotalAmount.Add(order.TotalAmount)
		b.summary.TotalPaid = b.summary.TotalPaid.Add(order.AmountPaid)
		b.items = append(b.items, order.Items...)
	}

	summaries := make([]domain.DailySummary, 0, len(buckets))
	for _, b := range buckets {
		b.summary.Items = MergeItems(b.items)
		b.summary.Balance = b.summary.TotalAmount.Sub(b.summary.TotalPaid)
		b.summary.FullyPaid = !b.summary.Balance.IsPositive()
		summaries = append(summaries, b.summary)
	}
	return summaries
}

func emptySummary() domain.DailySummary {
	return domain.DailySummary{
		OrderIDs:    []string{},
		Items:       []domain.MergedItem{},
		TotalAmount: decimal.Zero,
		TotalPaid:   decimal.Zero,
		Balance:     decimal.Zero,
		FullyPaid:   true,
	}
}
