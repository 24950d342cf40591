package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for order dates everywhere.
const DateLayout = "2006-01-02"

type Customer struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CustomerCreateRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type CustomerUpdateRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=120"`
}

type Product struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"-"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit"`
	CreatedAt time.Time       `json:"created_at"`
}

type ProductCreateRequest struct {
	Name  string          `json:"name" validate:"required,max=120"`
	Price decimal.Decimal `json:"price"`
	Unit  string          `json:"unit" validate:"required,max=24"`
}

type ProductUpdateRequest struct {
	Name  *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Unit  *string          `json:"unit,omitempty" validate:"omitempty,max=24"`
}

type UnitsPerBoxRequest struct {
	UnitsPerBox int `json:"units_per_box" validate:"gte=0"`
}

// OrderLineItem carries name and price snapshots taken when the order was created.
type OrderLineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type DailyOrder struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"-"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	OrderDate    string          `json:"order_date"`
	Items        []OrderLineItem `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Outstanding is what is still owed on the order; negative when overpaid.
func (o DailyOrder) Outstanding() decimal.Decimal {
	return o.TotalAmount.Sub(o.AmountPaid)
}

type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type OrderCreateRequest struct {
	CustomerID         string             `json:"customer_id" validate:"required"`
	OrderDate          string             `json:"order_date" validate:"required,datetime=2006-01-02"`
	Items              []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	AmountPaid         decimal.Decimal    `json:"amount_paid"`
	ConfirmOverpayment bool               `json:"confirm_overpayment"`
}

type DayOrdersReplaceRequest struct {
	Items              []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ConfirmOverpayment bool               `json:"confirm_overpayment"`
}

type OrderFilter struct {
	From       string
	To         string
	CustomerID string
}

type MergedItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

// DailySummary is derived, never persisted. Date is empty for whole-customer groups.
type DailySummary struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Date         string          `json:"date,omitempty"`
	OrderIDs     []string        `json:"order_ids"`
	Items        []MergedItem    `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Balance      decimal.Decimal `json:"balance"`
	FullyPaid    bool            `json:"fully_paid"`
}

type PaymentRequest struct {
	CustomerID         string          `json:"customer_id" validate:"required"`
	Date               string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount             decimal.Decimal `json:"amount"`
	ConfirmOverpayment bool            `json:"confirm_overpayment"`
}

// PaymentUpdate is one order's share of an allocated payment.
type PaymentUpdate struct {
	OrderID      string          `json:"order_id"`
	PreviousPaid decimal.Decimal `json:"previous_paid"`
	NewPaid      decimal.Decimal `json:"new_paid"`
	Applied      decimal.Decimal `json:"applied"`
	Status       string          `json:"status"`
}

type PaymentResponse struct {
	CustomerID  string          `json:"customer_id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Overpayment decimal.Decimal `json:"overpayment"`
	Updates     []PaymentUpdate `json:"updates"`
	Summary     DailySummary    `json:"summary"`
}

type CustomerStatement struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	OrderCount   int             `json:"order_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Pending      decimal.Decimal `json:"pending"`
	Days         []DailySummary  `json:"days"`
}

type Statement struct {
	From         string              `json:"from"`
	To           string              `json:"to"`
	CustomerID   string              `json:"customer_id,omitempty"`
	Customers    []CustomerStatement `json:"customers"`
	GrandTotal   decimal.Decimal     `json:"grand_total"`
	GrandPaid    decimal.Decimal     `json:"grand_paid"`
	GrandPending decimal.Decimal     `json:"grand_pending"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

type BoxRequirement struct {
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Unit             string          `json:"unit"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	UnitsPerBox      int             `json:"units_per_box"`
	Configured       bool            `json:"configured"`
	FullBoxes        int64           `json:"full_boxes"`
	RemainingPieces  decimal.Decimal `json:"remaining_pieces"`
	NeededForNextBox decimal.Decimal `json:"needed_for_next_box"`
}

type BoxRequirementResponse struct {
	Date     string           `json:"date"`
	Products []BoxRequirement `json:"products"`
}

type SheetSyncRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

// SheetRow is one (date, customer) row pushed to the external sheet.
type SheetRow struct {
	Key          string          `json:"key"`
	Date         string          `json:"date"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Items        string          `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	Balance      decimal.Decimal `json:"balance"`
}

type SheetSyncResponse struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Rows     int    `json:"rows"`
	SyncedAt string `json:"synced_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Account struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Actor is the authenticated account; its username scopes every record it can touch.
type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	OrderStatusPending = "pending"
	OrderStatusPartial = "partial"
	OrderStatusPaid    = "paid"
)

const RoleOwner = "owner"

// StatusFor derives the status tag from the order's totals.
func StatusFor(total decimal.Decimal, paid decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return OrderStatusPaid
	case paid.IsPositive():
		return OrderStatusPartial
	default:
		return OrderStatusPending
	}
}
