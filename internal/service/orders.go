package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/ledger"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/lock"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/xid"
)

// CreateOrder snapshots customer and product details into a new order. An initial payment
// above the order total is an overpayment and needs ConfirmOverpayment.
func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (domain.DailyOrder, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.DailyOrder{}, err
	}
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.OrderDate = strings.TrimSpace(req.OrderDate)
	if err := s.check(req); err != nil {
		return domain.DailyOrder{}, err
	}
	if err := checkMoney("amount_paid", req.AmountPaid); err != nil {
		return domain.DailyOrder{}, err
	}

	customer, err := s.repo.GetCustomer(ctx, owner, req.CustomerID)
	if err != nil {
		return domain.DailyOrder{}, err
	}
	items, total, err := s.snapshotItems(ctx, owner, req.Items)
	if err != nil {
		return domain.DailyOrder{}, err
	}
	if req.AmountPaid.GreaterThan(total) && !req.ConfirmOverpayment {
		return domain.DailyOrder{}, &ledger.OverpaymentError{Outstanding: total, Excess: req.AmountPaid.Sub(total)}
	}

	order := domain.DailyOrder{
		ID:           xid.New("ord"),
		OwnerID:      owner,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		OrderDate:    req.OrderDate,
		Items:        items,
		TotalAmount:  total,
		AmountPaid:   req.AmountPaid,
		Status:       domain.StatusFor(total, req.AmountPaid),
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return domain.DailyOrder{}, err
	}

	s.invalidateStatements(ctx, owner)
	s.logAudit(ctx, owner, "order_create", "order", created.ID, fmt.Sprintf("customer=%s,date=%s,total=%s,paid=%s", created.CustomerID, created.OrderDate, created.TotalAmount, created.AmountPaid))
	return *created, nil
}

func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.DailyOrder, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return nil, err
	}
	filter, err = normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.repo.ListOrders(ctx, owner, filter)
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if err := s.repo.DeleteOrder(ctx, owner, id); err != nil {
		return err
	}
	s.invalidateStatements(ctx, owner)
	s.logAudit(ctx, owner, "order_delete", "order", id, "")
	return nil
}

// DailySummaries groups orders per customer and day. An empty filter means today.
func (s *Service) DailySummaries(ctx context.Context, filter domain.OrderFilter) ([]domain.DailySummary, error) {
	if filter.From == "" && filter.To == "" {
		filter.From = s.today()
		filter.To = filter.From
	}
	orders, err := s.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ledger.GroupByCustomerAndDate(orders), nil
}

// CustomerSummaries groups the orders of a range per customer, across days.
func (s *Service) CustomerSummaries(ctx context.Context, filter domain.OrderFilter) ([]domain.DailySummary, error) {
	orders, err := s.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ledger.GroupByCustomer(orders), nil
}

// EditDayOrders replaces every order of the customer's day with a single order holding
// items. What was already paid on the day carries over to the new order; when that is
// more than the new total the edit needs ConfirmOverpayment.
func (s *Service) EditDayOrders(ctx context.Context, customerID string, day string, req domain.DayOrdersReplaceRequest) (domain.DailySummary, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.DailySummary{}, err
	}
	customerID = strings.TrimSpace(customerID)
	day, err = ledger.ParseDay(day)
	if err != nil {
		return domain.DailySummary{}, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	if err := s.check(req); err != nil {
		return domain.DailySummary{}, err
	}

	release, err := s.lockDay(ctx, owner, customerID, day)
	if err != nil {
		return domain.DailySummary{}, err
	}
	defer release()

	existing, err := s.repo.ListDayOrders(ctx, owner, customerID, day)
	if err != nil {
		return domain.DailySummary{}, err
	}
	if len(existing) == 0 {
		return domain.DailySummary{}, store.ErrNotFound
	}

	items, total, err := s.snapshotItems(ctx, owner, req.Items)
	if err != nil {
		return domain.DailySummary{}, err
	}

	paid := decimal.Zero
	createdAt := existing[0].CreatedAt
	for _, order := range existing {
		paid = paid.Add(order.AmountPaid)
		if order.CreatedAt.Before(createdAt) {
			createdAt = order.CreatedAt
		}
	}
	if paid.GreaterThan(total) && !req.ConfirmOverpayment {
		return domain.DailySummary{}, &ledger.OverpaymentError{Outstanding: total, Excess: paid.Sub(total)}
	}

	replacement := domain.DailyOrder{
		ID:           xid.New("ord"),
		OwnerID:      owner,
		CustomerID:   customerID,
		CustomerName: existing[0].CustomerName,
		OrderDate:    day,
		Items:        items,
		TotalAmount:  total,
		AmountPaid:   paid,
		Status:       domain.StatusFor(total, paid),
		CreatedAt:    createdAt,
	}
	saved, err := s.repo.ReplaceDayOrders(ctx, owner, customerID, day, replacement)
	if err != nil {
		return domain.DailySummary{}, err
	}

	s.invalidateStatements(ctx, owner)
	s.logAudit(ctx, owner, "day_orders_replace", "customer", customerID, fmt.Sprintf("date=%s,replaced=%d,total=%s,paid=%s", day, len(existing), saved.TotalAmount, saved.AmountPaid))
	return ledger.Summarize([]domain.DailyOrder{*saved}), nil
}

func (s *Service) DeleteDayOrders(ctx context.Context, customerID string, day string) (int, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return 0, err
	}
	customerID = strings.TrimSpace(customerID)
	day, err = ledger.ParseDay(day)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	release, err := s.lockDay(ctx, owner, customerID, day)
	if err != nil {
		return 0, err
	}
	defer release()

	removed, err := s.repo.DeleteDayOrders(ctx, owner, customerID, day)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, store.ErrNotFound
	}

	s.invalidateStatements(ctx, owner)
	s.logAudit(ctx, owner, "day_orders_delete", "customer", customerID, fmt.Sprintf("date=%s,removed=%d", day, removed))
	return removed, nil
}

// snapshotItems prices the requested items from the owner's catalogue. Line totals are
// rounded to cents; the order total is their sum.
func (s *Service) snapshotItems(ctx context.Context, owner string, reqItems []domain.OrderItemRequest) ([]domain.OrderLineItem, decimal.Decimal, error) {
	ids := make([]string, 0, len(reqItems))
	for i := range reqItems {
		reqItems[i].ProductID = strings.TrimSpace(reqItems[i].ProductID)
		if reqItems[i].ProductID == "" || !reqItems[i].Quantity.IsPositive() {
			return nil, decimal.Zero, fmt.Errorf("%w: every item needs a product and a positive quantity", store.ErrInvalidInput)
		}
		ids = append(ids, reqItems[i].ProductID)
	}

	products, err := s.repo.GetProductsByIDs(ctx, owner, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]domain.OrderLineItem, 0, len(reqItems))
	total := decimal.Zero
	for _, req := range reqItems {
		product, ok := products[req.ProductID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: product %s", store.ErrNotFound, req.ProductID)
		}
		lineTotal := req.Quantity.Mul(product.Price).Round(2)
		items = append(items, domain.OrderLineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    req.Quantity,
			Unit:        product.Unit,
			UnitPrice:   product.Price,
			LineTotal:   lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}

func (s *Service) lockDay(ctx context.Context, owner string, customerID string, day string) (func(), error) {
	release, err := s.locker.Acquire(ctx, fmt.Sprintf("day:%s:%s:%s", owner, customerID, day))
	if err != nil {
		if errors.Is(err, lock.ErrBusy) {
			return nil, fmt.Errorf("%w: another update of this day is in progress", store.ErrConflict)
		}
		return nil, err
	}
	return release, nil
}

func normalizeFilter(filter domain.OrderFilter) (domain.OrderFilter, error) {
	filter.CustomerID = strings.TrimSpace(filter.CustomerID)
	filter.From = strings.TrimSpace(filter.From)
	filter.To = strings.TrimSpace(filter.To)

	switch {
	case filter.From != "" && filter.To != "":
		from, to, err := ledger.ParseRange(filter.From, filter.To)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		filter.From, filter.To = from, to
	case filter.From != "":
		day, err := ledger.ParseDay(filter.From)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		filter.From = day
	case filter.To != "":
		day, err := ledger.ParseDay(filter.To)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		filter.To = day
	}
	return filter, nil
}
