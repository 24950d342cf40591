package ledger

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

// BoxCount is the packaging breakdown of a sold quantity.
type BoxCount struct {
	Configured       bool
	FullBoxes        int64
	RemainingPieces  decimal.Decimal
	NeededForNextBox decimal.Decimal
}

// ComputeBoxes splits total into full boxes of unitsPerBox and a loose remainder.
// unitsPerBox <= 0 means not configured and nothing is computed.
func ComputeBoxes(total decimal.Decimal, unitsPerBox int) BoxCount {
	if unitsPerBox <= 0 {
		return BoxCount{RemainingPieces: decimal.Zero, NeededForNextBox: decimal.Zero}
	}
	size := decimal.NewFromInt(int64(unitsPerBox))
	full := total.Div(size).Floor()
	remaining := total.Sub(full.Mul(size))

	needed := decimal.Zero
	if !remaining.IsZero() {
		needed = size.Sub(remaining)
	}
	return BoxCount{
		Configured:       true,
		FullBoxes:        full.IntPart(),
		RemainingPieces:  remaining,
		NeededForNextBox: needed,
	}
}

// BoxRequirements totals the quantity sold per product on day and sizes it into boxes.
func BoxRequirements(orders []domain.DailyOrder, day string, unitsPerBox map[string]int) []domain.BoxRequirement {
	index := make(map[string]int)
	reqs := make([]domain.BoxRequirement, 0)
	for _, order := range orders {
		if order.OrderDate != day {
			continue
		}
		for _, item := range order.Items {
			pos, ok := index[item.ProductID]
			if !ok {
				pos = len(reqs)
				index[item.ProductID] = pos
				reqs = append(reqs, domain.BoxRequirement{
					ProductID:     item.ProductID,
					ProductName:   item.ProductName,
					Unit:          item.Unit,
					TotalQuantity: decimal.Zero,
				})
			}
			reqs[pos].TotalQuantity = reqs[pos].TotalQuantity.Add(item.Quantity)
		}
	}

	for i := range reqs {
		size := unitsPerBox[reqs[i].ProductID]
		count := ComputeBoxes(reqs[i].TotalQuantity, size)
		reqs[i].UnitsPerBox = max(size, 0)
		reqs[i].Configured = count.Configured
		reqs[i].FullBoxes = count.FullBoxes
		reqs[i].RemainingPieces = count.RemainingPieces
		reqs[i].NeededForNextBox = count.NeededForNextBox
	}

	slices.SortStableFunc(reqs, func(a, b domain.BoxRequirement) int {
		return cmp.Compare(a.ProductName, b.ProductName)
	})
	return reqs
}
