package memory

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	customersByID   map[string]domain.Customer
	productsByID    map[string]domain.Product
	ordersByID      map[string]domain.DailyOrder
	unitsPerBox     map[string]map[string]int
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// DemoOwner is the account the seeded catalogue belongs to.
const DemoOwner = "demo"

// seedUsers builds the dev/demo account. The password comes from SEED_DEMO_PASSWORD;
// when unset a hardcoded dev default is used with a warning. The memory store is never
// used when DATABASE_URL is set.
func seedUsers() map[string]domain.UserAccount {
	password := envOr("SEED_DEMO_PASSWORD", "demo12345")
	if os.Getenv("SEED_DEMO_PASSWORD") == "" {
		logrus.WithField("component", "memory-store").Warn("using default dev credentials; set SEED_DEMO_PASSWORD to override")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithField("component", "memory-store").WithError(err).Fatal("failed to hash seed password")
	}
	return map[string]domain.UserAccount{
		DemoOwner: {
			Username:  DemoOwner,
			Password:  string(hash),
			Role:      domain.RoleOwner,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// New returns an empty store with no accounts.
func New() *Store {
	return &Store{
		customersByID:   make(map[string]domain.Customer),
		productsByID:    make(map[string]domain.Product),
		ordersByID:      make(map[string]domain.DailyOrder),
		unitsPerBox:     make(map[string]map[string]int),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: make(map[string]domain.UserAccount),
	}
}

// NewSeeded returns a store holding the demo account with a small catalogue.
func NewSeeded() *Store {
	s := New()
	s.usersByUsername = seedUsers()

	now := time.Now().UTC()
	for _, name := range []string{"Sharma Household", "Patel Sweets", "Green Cafe"} {
		c := domain.Customer{ID: xid.New("cus"), OwnerID: DemoOwner, Name: name, CreatedAt: now}
		s.customersByID[c.ID] = c
	}
	for _, p := range []struct {
		name  string
		price string
		unit  string
	}{
		{"Cow Milk", "56", "L"},
		{"Buffalo Milk", "68", "L"},
		{"Curd", "45", "kg"},
		{"Paneer", "380", "kg"},
		{"Ghee", "620", "kg"},
	} {
		product := domain.Product{
			ID:        xid.New("prd"),
			OwnerID:   DemoOwner,
			Name:      p.name,
			Price:     decimal.RequireFromString(p.price),
			Unit:      p.unit,
			CreatedAt: now,
		}
		s.productsByID[product.ID] = product
	}
	return s
}

func (s *Store) ListCustomers(_ context.Context, ownerID string) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0)
	for _, c := range s.customersByID {
		if c.OwnerID == ownerID {
			customers = append(customers, c)
		}
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return cmpString(a.Name, b.Name)
	})
	return customers, nil
}

func (s *Store) GetCustomer(_ context.Context, ownerID string, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customersByID[id]
	if !ok || c.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ID == "" || customer.OwnerID == "" || strings.TrimSpace(customer.Name) == "" {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.customersByID[customer.ID]; exists {
		return nil, store.ErrConflict
	}
	s.customersByID[customer.ID] = customer
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customersByID[customer.ID]
	if !ok || existing.OwnerID != customer.OwnerID {
		return nil, store.ErrNotFound
	}
	if strings.TrimSpace(customer.Name) == "" {
		return nil, store.ErrInvalidInput
	}
	existing.Name = customer.Name
	s.customersByID[customer.ID] = existing
	return &existing, nil
}

func (s *Store) DeleteCustomer(_ context.Context, ownerID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customersByID[id]
	if !ok || c.OwnerID != ownerID {
		return store.ErrNotFound
	}
	for _, o := range s.ordersByID {
		if o.OwnerID == ownerID && o.CustomerID == id {
			return store.ErrConflict
		}
	}
	delete(s.customersByID, id)
	return nil
}

func (s *Store) ListProducts(_ context.Context, ownerID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0)
	for _, p := range s.productsByID {
		if p.OwnerID == ownerID {
			products = append(products, p)
		}
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, ownerID string, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.productsByID[id]
	if !ok || p.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ownerID string, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.productsByID[id]; ok && p.OwnerID == ownerID {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.OwnerID == "" || strings.TrimSpace(product.Name) == "" || product.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.productsByID[product.ID]; exists {
		return nil, store.ErrConflict
	}
	s.productsByID[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.productsByID[product.ID]
	if !ok || existing.OwnerID != product.OwnerID {
		return nil, store.ErrNotFound
	}
	if strings.TrimSpace(product.Name) == "" || product.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	existing.Name = product.Name
	existing.Price = product.Price
	existing.Unit = product.Unit
	s.productsByID[product.ID] = existing
	return &existing, nil
}

func (s *Store) DeleteProduct(_ context.Context, ownerID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.productsByID[id]
	if !ok || p.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.productsByID, id)
	if boxes := s.unitsPerBox[ownerID]; boxes != nil {
		delete(boxes, id)
	}
	return nil
}

func (s *Store) ListOrders(_ context.Context, ownerID string, filter domain.OrderFilter) ([]domain.DailyOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.DailyOrder, 0)
	for _, o := range s.ordersByID {
		if o.OwnerID != ownerID {
			continue
		}
		if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.From != "" && o.OrderDate < filter.From {
			continue
		}
		if filter.To != "" && o.OrderDate > filter.To {
			continue
		}
		orders = append(orders, cloneOrder(o))
	}
	sortOrders(orders)
	return orders, nil
}

func (s *Store) GetOrder(_ context.Context, ownerID string, id string) (*domain.DailyOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.ordersByID[id]
	if !ok || o.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	copyOrder := cloneOrder(o)
	return &copyOrder, nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.DailyOrder) (*domain.DailyOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateOrderLocked(order); err != nil {
		return nil, err
	}
	if _, exists := s.ordersByID[order.ID]; exists {
		return nil, store.ErrConflict
	}
	s.ordersByID[order.ID] = cloneOrder(order)
	created := cloneOrder(order)
	return &created, nil
}

func (s *Store) DeleteOrder(_ context.Context, ownerID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.ordersByID[id]
	if !ok || o.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.ordersByID, id)
	return nil
}

func (s *Store) ListDayOrders(ctx context.Context, ownerID string, customerID string, day string) ([]domain.DailyOrder, error) {
	return s.ListOrders(ctx, ownerID, domain.OrderFilter{From: day, To: day, CustomerID: customerID})
}

func (s *Store) DeleteDayOrders(_ context.Context, ownerID string, customerID string, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteDayLocked(ownerID, customerID, day), nil
}

func (s *Store) ReplaceDayOrders(_ context.Context, ownerID string, customerID string, day string, replacement domain.DailyOrder) (*domain.DailyOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if replacement.OwnerID != ownerID || replacement.CustomerID != customerID || replacement.OrderDate != day {
		return nil, store.ErrInvalidInput
	}
	if err := s.validateOrderLocked(replacement); err != nil {
		return nil, err
	}
	s.deleteDayLocked(ownerID, customerID, day)
	s.ordersByID[replacement.ID] = cloneOrder(replacement)
	created := cloneOrder(replacement)
	return &created, nil
}

func (s *Store) ApplyPayments(_ context.Context, ownerID string, updates []domain.PaymentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		o, ok := s.ordersByID[u.OrderID]
		if !ok || o.OwnerID != ownerID {
			return store.ErrNotFound
		}
		if !o.AmountPaid.Equal(u.PreviousPaid) {
			return store.ErrConflict
		}
		if u.NewPaid.LessThan(o.AmountPaid) {
			return store.ErrInvalidInput
		}
	}
	for _, u := range updates {
		o := s.ordersByID[u.OrderID]
		o.AmountPaid = u.NewPaid
		o.Status = domain.StatusFor(o.TotalAmount, u.NewPaid)
		s.ordersByID[u.OrderID] = o
	}
	return nil
}

func (s *Store) GetUnitsPerBox(_ context.Context, ownerID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]int, len(s.unitsPerBox[ownerID]))
	for id, n := range s.unitsPerBox[ownerID] {
		result[id] = n
	}
	return result, nil
}

func (s *Store) SetUnitsPerBox(_ context.Context, ownerID string, productID string, unitsPerBox int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.productsByID[productID]
	if !ok || p.OwnerID != ownerID {
		return store.ErrNotFound
	}
	if unitsPerBox <= 0 {
		delete(s.unitsPerBox[ownerID], productID)
		return nil
	}
	if s.unitsPerBox[ownerID] == nil {
		s.unitsPerBox[ownerID] = make(map[string]int)
	}
	s.unitsPerBox[ownerID][productID] = unitsPerBox
	return nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, ownerID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	result := make([]domain.AuditLog, 0, limit)
	for i := len(s.auditLogs) - 1; i >= 0 && len(result) < limit; i-- {
		entry := s.auditLogs[i]
		if entry.OwnerID != ownerID {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrConflict
	}
	user.Username = username
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) validateOrderLocked(order domain.DailyOrder) error {
	if order.ID == "" || order.OwnerID == "" || order.CustomerID == "" || order.OrderDate == "" {
		return store.ErrInvalidInput
	}
	if order.AmountPaid.IsNegative() || order.TotalAmount.IsNegative() {
		return store.ErrInvalidInput
	}
	c, ok := s.customersByID[order.CustomerID]
	if !ok || c.OwnerID != order.OwnerID {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) deleteDayLocked(ownerID string, customerID string, day string) int {
	removed := 0
	for id, o := range s.ordersByID {
		if o.OwnerID == ownerID && o.CustomerID == customerID && o.OrderDate == day {
			delete(s.ordersByID, id)
			removed++
		}
	}
	return removed
}

func sortOrders(orders []domain.DailyOrder) {
	slices.SortFunc(orders, func(a, b domain.DailyOrder) int {
		if a.OrderDate != b.OrderDate {
			return cmpString(b.OrderDate, a.OrderDate)
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmpString(a.ID, b.ID)
	})
}

func cmpString(a string, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cloneOrder(src domain.DailyOrder) domain.DailyOrder {
	dst := src
	dst.Items = append([]domain.OrderLineItem(nil), src.Items...)
	if dst.Items == nil {
		dst.Items = []domain.OrderLineItem{}
	}
	return dst
}
