package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS app_users (
	username TEXT PRIMARY KEY,
	password TEXT NOT NULL,
	role TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customers (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES app_users(username),
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS customers_owner_idx ON customers (owner_id, name);

CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES app_users(username),
	name TEXT NOT NULL,
	price NUMERIC(14,2) NOT NULL CHECK (price >= 0),
	unit TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS products_owner_idx ON products (owner_id, name);

CREATE TABLE IF NOT EXISTS daily_orders (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES app_users(username),
	customer_id TEXT NOT NULL REFERENCES customers(id),
	customer_name TEXT NOT NULL,
	order_date DATE NOT NULL,
	items JSONB NOT NULL DEFAULT '[]',
	total_amount NUMERIC(14,2) NOT NULL CHECK (total_amount >= 0),
	amount_paid NUMERIC(14,2) NOT NULL CHECK (amount_paid >= 0),
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS daily_orders_day_idx ON daily_orders (owner_id, customer_id, order_date);
CREATE INDEX IF NOT EXISTS daily_orders_range_idx ON daily_orders (owner_id, order_date);

CREATE TABLE IF NOT EXISTS units_per_box (
	owner_id TEXT NOT NULL,
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	units INTEGER NOT NULL CHECK (units > 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (owner_id, product_id)
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	action TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_logs_owner_idx ON audit_logs (owner_id, created_at DESC);
`

// EnsureSchema creates any missing tables. It is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const orderColumns = `id, owner_id, customer_id, customer_name, to_char(order_date, 'YYYY-MM-DD'),
	items, total_amount, amount_paid, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.DailyOrder, error) {
	var (
		order domain.DailyOrder
		items []byte
	)
	if err := row.Scan(&order.ID, &order.OwnerID, &order.CustomerID, &order.CustomerName, &order.OrderDate,
		&items, &order.TotalAmount, &order.AmountPaid, &order.Status, &order.CreatedAt); err != nil {
		return domain.DailyOrder{}, err
	}
	order.Items = []domain.OrderLineItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return domain.DailyOrder{}, fmt.Errorf("decode items of order %s: %w", order.ID, err)
		}
	}
	order.CreatedAt = order.CreatedAt.UTC()
	return order, nil
}

func (s *Store) ListCustomers(ctx context.Context, ownerID string) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, created_at
		FROM customers
		WHERE owner_id = $1
		ORDER BY name, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) GetCustomer(ctx context.Context, ownerID string, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, created_at
		FROM customers
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id).Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" || customer.OwnerID == "" || strings.TrimSpace(customer.Name) == "" {
		return nil, store.ErrInvalidInput
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, owner_id, name, created_at, updated_at)
		VALUES ($1,$2,$3,$4,now())
	`, customer.ID, customer.OwnerID, customer.Name, customer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if strings.TrimSpace(customer.Name) == "" {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $3, updated_at = now()
		WHERE owner_id = $1 AND id = $2
	`, customer.OwnerID, customer.ID, customer.Name)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetCustomer(ctx, customer.OwnerID, customer.ID)
}

func (s *Store) DeleteCustomer(ctx context.Context, ownerID string, id string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var referenced bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM daily_orders WHERE owner_id = $1 AND customer_id = $2)
	`, ownerID, id).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return store.ErrConflict
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListProducts(ctx context.Context, ownerID string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, price, unit, created_at
		FROM products
		WHERE owner_id = $1
		ORDER BY name, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Unit, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, ownerID string, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, price, unit, created_at
		FROM products
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Unit, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ownerID string, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, price, unit, created_at
		FROM products
		WHERE owner_id = $1 AND id = ANY($2)
	`, ownerID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Unit, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.OwnerID == "" || strings.TrimSpace(product.Name) == "" || product.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, owner_id, name, price, unit, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
	`, product.ID, product.OwnerID, product.Name, product.Price, product.Unit, product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(product.Name) == "" || product.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $3, price = $4, unit = $5, updated_at = now()
		WHERE owner_id = $1 AND id = $2
	`, product.OwnerID, product.ID, product.Name, product.Price, product.Unit)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, product.OwnerID, product.ID)
}

func (s *Store) DeleteProduct(ctx context.Context, ownerID string, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) ListOrders(ctx context.Context, ownerID string, filter domain.OrderFilter) ([]domain.DailyOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM daily_orders
		WHERE owner_id = $1
			AND customer_id = COALESCE(NULLIF($2, ''), customer_id)
			AND order_date >= COALESCE(NULLIF($3, '')::date, order_date)
			AND order_date <= COALESCE(NULLIF($4, '')::date, order_date)
		ORDER BY order_date DESC, created_at ASC, id ASC
	`, ownerID, filter.CustomerID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.DailyOrder, 0, 64)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, ownerID string, id string) (*domain.DailyOrder, error) {
	order, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM daily_orders
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *Store) CreateOrder(ctx context.Context, order domain.DailyOrder) (*domain.DailyOrder, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	if err := insertOrder(ctx, s.db, order); err != nil {
		return nil, err
	}
	created := order
	return &created, nil
}

func (s *Store) DeleteOrder(ctx context.Context, ownerID string, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_orders WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) ListDayOrders(ctx context.Context, ownerID string, customerID string, day string) ([]domain.DailyOrder, error) {
	return s.ListOrders(ctx, ownerID, domain.OrderFilter{From: day, To: day, CustomerID: customerID})
}

func (s *Store) DeleteDayOrders(ctx context.Context, ownerID string, customerID string, day string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM daily_orders
		WHERE owner_id = $1 AND customer_id = $2 AND order_date = $3::date
	`, ownerID, customerID, day)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *Store) ReplaceDayOrders(ctx context.Context, ownerID string, customerID string, day string, replacement domain.DailyOrder) (*domain.DailyOrder, error) {
	if replacement.OwnerID != ownerID || replacement.CustomerID != customerID || replacement.OrderDate != day {
		return nil, store.ErrInvalidInput
	}
	if err := validateOrder(replacement); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM daily_orders
		WHERE owner_id = $1 AND customer_id = $2 AND order_date = $3::date
	`, ownerID, customerID, day); err != nil {
		return nil, err
	}
	if err := insertOrder(ctx, tx, replacement); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := replacement
	return &created, nil
}

func (s *Store) ApplyPayments(ctx context.Context, ownerID string, updates []domain.PaymentUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range updates {
		var (
			total decimal.Decimal
			paid  decimal.Decimal
		)
		err := tx.QueryRowContext(ctx, `
			SELECT total_amount, amount_paid
			FROM daily_orders
			WHERE owner_id = $1 AND id = $2
			FOR UPDATE
		`, ownerID, u.OrderID).Scan(&total, &paid)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNotFound
			}
			return err
		}
		if !paid.Equal(u.PreviousPaid) {
			return store.ErrConflict
		}
		if u.NewPaid.LessThan(paid) {
			return store.ErrInvalidInput
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE daily_orders
			SET amount_paid = $3, status = $4
			WHERE owner_id = $1 AND id = $2
		`, ownerID, u.OrderID, u.NewPaid, domain.StatusFor(total, u.NewPaid)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetUnitsPerBox(ctx context.Context, ownerID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, units
		FROM units_per_box
		WHERE owner_id = $1
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var (
			productID string
			units     int
		)
		if err := rows.Scan(&productID, &units); err != nil {
			return nil, err
		}
		result[productID] = units
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) SetUnitsPerBox(ctx context.Context, ownerID string, productID string, unitsPerBox int) error {
	if _, err := s.GetProduct(ctx, ownerID, productID); err != nil {
		return err
	}
	if unitsPerBox <= 0 {
		_, err := s.db.ExecContext(ctx, `
			DELETE FROM units_per_box WHERE owner_id = $1 AND product_id = $2
		`, ownerID, productID)
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO units_per_box (owner_id, product_id, units, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (owner_id, product_id)
		DO UPDATE SET units = EXCLUDED.units, updated_at = now()
	`, ownerID, productID, unitsPerBox)
	return err
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, owner_id, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, entry.ID, entry.OwnerID, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, ownerID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE owner_id = $1
			AND created_at >= $2
			AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4
	`, ownerID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.OwnerID, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if user.Role == "" {
		user.Role = domain.RoleOwner
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOrder(ctx context.Context, db execer, order domain.DailyOrder) error {
	items := order.Items
	if items == nil {
		items = []domain.OrderLineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO daily_orders (
			id, owner_id, customer_id, customer_name, order_date,
			items, total_amount, amount_paid, status, created_at
		)
		SELECT $1, $2, $3, $4, $5::date, $6::jsonb, $7::numeric, $8::numeric, $9, $10::timestamptz
		WHERE EXISTS (SELECT 1 FROM customers WHERE id = $3 AND owner_id = $2)
	`, order.ID, order.OwnerID, order.CustomerID, order.CustomerName, order.OrderDate,
		string(payload), order.TotalAmount, order.AmountPaid, order.Status, order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	// zero rows means the customer is missing or belongs to another owner
	return requireAffected(res)
}

func validateOrder(order domain.DailyOrder) error {
	if order.ID == "" || order.OwnerID == "" || order.CustomerID == "" || order.OrderDate == "" {
		return store.ErrInvalidInput
	}
	if order.AmountPaid.IsNegative() || order.TotalAmount.IsNegative() {
		return store.ErrInvalidInput
	}
	return nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
