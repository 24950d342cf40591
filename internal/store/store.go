package store

import (
	"context"
	"errors"
	"time"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// Repository is scoped by owner: every call takes the owner id and never sees
// rows belonging to anyone else.
type Repository interface {
	ListCustomers(ctx context.Context, ownerID string) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, ownerID string, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, ownerID string, id string) error

	ListProducts(ctx context.Context, ownerID string) ([]domain.Product, error)
	GetProduct(ctx context.Context, ownerID string, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ownerID string, ids []string) (map[string]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, ownerID string, id string) error

	ListOrders(ctx context.Context, ownerID string, filter domain.OrderFilter) ([]domain.DailyOrder, error)
	GetOrder(ctx context.Context, ownerID string, id string) (*domain.DailyOrder, error)
	CreateOrder(ctx context.Context, order domain.DailyOrder) (*domain.DailyOrder, error)
	DeleteOrder(ctx context.Context, ownerID string, id string) error
	ListDayOrders(ctx context.Context, ownerID string, customerID string, day string) ([]domain.DailyOrder, error)
	DeleteDayOrders(ctx context.Context, ownerID string, customerID string, day string) (int, error)
	// ReplaceDayOrders swaps every order of the customer's day for replacement in one
	// atomic step.
	ReplaceDayOrders(ctx context.Context, ownerID string, customerID string, day string, replacement domain.DailyOrder) (*domain.DailyOrder, error)
	// ApplyPayments writes all updates or none. It returns ErrConflict when an order's
	// paid amount no longer matches the update's PreviousPaid.
	ApplyPayments(ctx context.Context, ownerID string, updates []domain.PaymentUpdate) error

	GetUnitsPerBox(ctx context.Context, ownerID string) (map[string]int, error)
	SetUnitsPerBox(ctx context.Context, ownerID string, productID string, unitsPerBox int) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, ownerID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
