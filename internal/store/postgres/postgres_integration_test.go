package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	databaseURL := os.Getenv("JAYGOGA_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set JAYGOGA_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	owner := fmt.Sprintf("owner-it-%d", time.Now().UnixNano())
	if err := s.CreateUser(ctx, domain.UserAccount{Username: owner, Password: "x", Role: domain.RoleOwner, Active: true}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM daily_orders WHERE owner_id = $1`, owner)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM units_per_box WHERE owner_id = $1`, owner)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE owner_id = $1`, owner)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM customers WHERE owner_id = $1`, owner)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE owner_id = $1`, owner)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM app_users WHERE username = $1`, owner)
		_ = s.Close()
	})
	return s, owner
}

func TestReplaceDayOrdersAndApplyPayments(t *testing.T) {
	s, owner := openTestStore(t)
	ctx := context.Background()
	stamp := time.Now().UnixNano()

	customer, err := s.CreateCustomer(ctx, domain.Customer{ID: fmt.Sprintf("cus-it-%d", stamp), OwnerID: owner, Name: "Integration Customer"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	day := "2024-05-01"
	base := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	for i, total := range []string{"100", "50"} {
		amount := decimal.RequireFromString(total)
		_, err := s.CreateOrder(ctx, domain.DailyOrder{
			ID:           fmt.Sprintf("ord-it-%d-%d", stamp, i),
			OwnerID:      owner,
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			OrderDate:    day,
			Items: []domain.OrderLineItem{{
				ProductID: "prd-x", ProductName: "Milk", Quantity: decimal.NewFromInt(2),
				Unit: "L", UnitPrice: amount.Div(decimal.NewFromInt(2)), LineTotal: amount,
			}},
			TotalAmount: amount,
			AmountPaid:  decimal.Zero,
			Status:      domain.OrderStatusPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
	}

	orders, err := s.ListDayOrders(ctx, owner, customer.ID, day)
	if err != nil {
		t.Fatalf("list day orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].OrderDate != day {
		t.Fatalf("expected order date %s, got %s", day, orders[0].OrderDate)
	}

	first := orders[0]
	err = s.ApplyPayments(ctx, owner, []domain.PaymentUpdate{{
		OrderID: first.ID, PreviousPaid: decimal.Zero, NewPaid: first.TotalAmount, Applied: first.TotalAmount,
	}})
	if err != nil {
		t.Fatalf("apply payments: %v", err)
	}
	err = s.ApplyPayments(ctx, owner, []domain.PaymentUpdate{{
		OrderID: first.ID, PreviousPaid: decimal.Zero, NewPaid: first.TotalAmount, Applied: first.TotalAmount,
	}})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on stale payment, got %v", err)
	}

	paid, err := s.GetOrder(ctx, owner, first.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if paid.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid status, got %s", paid.Status)
	}

	replacement := domain.DailyOrder{
		ID:           fmt.Sprintf("ord-it-%d-r", stamp),
		OwnerID:      owner,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		OrderDate:    day,
		Items:        []domain.OrderLineItem{},
		TotalAmount:  decimal.NewFromInt(80),
		AmountPaid:   first.TotalAmount,
		Status:       domain.OrderStatusPaid,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.ReplaceDayOrders(ctx, owner, customer.ID, day, replacement); err != nil {
		t.Fatalf("replace day orders: %v", err)
	}
	orders, err = s.ListDayOrders(ctx, owner, customer.ID, day)
	if err != nil {
		t.Fatalf("list day orders after replace: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != replacement.ID {
		t.Fatalf("expected only the replacement order, got %+v", orders)
	}

	if err := s.DeleteCustomer(ctx, owner, customer.ID); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict deleting referenced customer, got %v", err)
	}
	removed, err := s.DeleteDayOrders(ctx, owner, customer.ID, day)
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 removed order, got %d (%v)", removed, err)
	}
	if _, err := s.GetCustomer(ctx, "someone-else", customer.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected other owners to get not found, got %v", err)
	}
}
