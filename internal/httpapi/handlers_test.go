package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/service"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/sheetsync"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store/memory"
)

const (
	testSecret       = "test-secret-key-0123456789abcdef"
	testDemoPassword = "demo-pass-2024"
)

type pusherFunc func(ctx context.Context, rows []domain.SheetRow) error

func (f pusherFunc) Push(ctx context.Context, rows []domain.SheetRow) error {
	return f(ctx, rows)
}

// newTestAPI builds a full API with a seeded in-memory store, real AuthManager and real
// Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()
	return newTestAPIWith(t, service.Options{}, true)
}

func newTestAPIWith(t *testing.T, opts service.Options, allowRegistration bool) *API {
	t.Helper()
	t.Setenv("SEED_DEMO_PASSWORD", testDemoPassword)

	repo := memory.NewSeeded()
	svc := service.New(repo, opts)
	auth := NewAuthManager(testSecret, time.Hour, repo)
	return New(svc, auth, Options{AllowedOrigin: "*", AllowRegistration: allowRegistration})
}

// mustHashPassword generates a bcrypt hash of the given password or fails the test.
func mustHashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

// call sends a request through the full handler chain. A non-nil body is JSON encoded.
func call(t *testing.T, api *API, method string, path string, token string, csrf string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
		t.Fatalf("decode body: %v (status %d)", err, rec.Code)
	}
}

func demoProducts(t *testing.T, api *API, token string) map[string]domain.Product {
	t.Helper()
	rec := call(t, api, http.MethodGet, "/api/v1/products", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: expected 200, got %d", rec.Code)
	}
	var payload struct {
		Products []domain.Product `json:"products"`
	}
	decodeBody(t, rec, &payload)
	byName := make(map[string]domain.Product, len(payload.Products))
	for _, p := range payload.Products {
		byName[p.Name] = p
	}
	return byName
}

func createCustomer(t *testing.T, api *API, token string, csrf string, name string) domain.Customer {
	t.Helper()
	rec := call(t, api, http.MethodPost, "/api/v1/customers", token, csrf, domain.CustomerCreateRequest{Name: name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var payload struct {
		Customer domain.Customer `json:"customer"`
	}
	decodeBody(t, rec, &payload)
	return payload.Customer
}

func createOrder(t *testing.T, api *API, token string, csrf string, req domain.OrderCreateRequest) domain.DailyOrder {
	t.Helper()
	rec := call(t, api, http.MethodPost, "/api/v1/orders", token, csrf, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var payload struct {
		Order domain.DailyOrder `json:"order"`
	}
	decodeBody(t, rec, &payload)
	return payload.Order
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := call(t, api, http.MethodGet, "/healthz", "", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)
	rec := call(t, api, http.MethodPost, "/api/v1/auth/login", "", "", domain.LoginRequest{
		Username: "demo",
		Password: testDemoPassword,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.LoginResponse
	decodeBody(t, rec, &resp)
	if resp.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	if resp.Role != domain.RoleOwner {
		t.Fatalf("expected role owner, got %s", resp.Role)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	rec := call(t, api, http.MethodPost, "/api/v1/auth/login", "", "", domain.LoginRequest{
		Username: "demo",
		Password: "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleRegister_CreatesIsolatedOwner(t *testing.T) {
	api := newTestAPI(t)
	rec := call(t, api, http.MethodPost, "/api/v1/auth/register", "", "", domain.RegisterRequest{
		Username: "Gopal",
		Password: "fresh-milk-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	token := login(t, api, "gopal", "fresh-milk-1")
	rec = call(t, api, http.MethodGet, "/api/v1/customers", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Customers []domain.Customer `json:"customers"`
	}
	decodeBody(t, rec, &payload)
	if len(payload.Customers) != 0 {
		t.Fatalf("new owner must not see demo customers, got %d", len(payload.Customers))
	}

	rec = call(t, api, http.MethodPost, "/api/v1/auth/register", "", "", domain.RegisterRequest{
		Username: "gopal",
		Password: "another-pass",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", rec.Code)
	}
}

func TestHandleRegister_ValidatesInput(t *testing.T) {
	api := newTestAPI(t)
	rec := call(t, api, http.MethodPost, "/api/v1/auth/register", "", "", domain.RegisterRequest{
		Username: "ab",
		Password: "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRegister_Disabled(t *testing.T) {
	api := newTestAPIWith(t, service.Options{}, false)
	rec := call(t, api, http.MethodPost, "/api/v1/auth/register", "", "", domain.RegisterRequest{
		Username: "gopal",
		Password: "fresh-milk-1",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when registration is disabled, got %d", rec.Code)
	}
}

func TestHandleCustomers_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	rec := call(t, api, http.MethodGet, "/api/v1/customers", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/customers", "not-a-jwt", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", rec.Code)
	}
}

func TestCustomerLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)

	customer := createCustomer(t, api, token, csrf, "Iyer Family")

	rec := call(t, api, http.MethodPatch, "/api/v1/customers/"+customer.ID, token, csrf, map[string]string{"name": "Iyer Household"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update customer: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	products := demoProducts(t, api, token)
	createOrder(t, api, token, csrf, domain.OrderCreateRequest{
		CustomerID: customer.ID,
		OrderDate:  "2024-05-01",
		Items:      []domain.OrderItemRequest{{ProductID: products["Cow Milk"].ID, Quantity: decimal.NewFromInt(2)}},
	})

	rec = call(t, api, http.MethodDelete, "/api/v1/customers/"+customer.ID, token, csrf, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete customer with orders: expected 409, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodDelete, "/api/v1/daily-summaries/"+customer.ID+"/2024-05-01", token, csrf, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete day: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodDelete, "/api/v1/customers/"+customer.ID, token, csrf, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete customer: expected 204, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodPatch, "/api/v1/customers/"+customer.ID, token, csrf, map[string]string{"name": "Gone"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update deleted customer: expected 404, got %d", rec.Code)
	}
}

func TestHandleProducts_UnitsPerBoxAndBoxes(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)
	products := demoProducts(t, api, token)
	milk := products["Cow Milk"]

	rec := call(t, api, http.MethodPut, "/api/v1/products/"+milk.ID+"/units-per-box", token, csrf, domain.UnitsPerBoxRequest{UnitsPerBox: 12})
	if rec.Code != http.StatusOK {
		t.Fatalf("set units per box: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	customer := createCustomer(t, api, token, csrf, "Box Buyer")
	createOrder(t, api, token, csrf, domain.OrderCreateRequest{
		CustomerID: customer.ID,
		OrderDate:  "2024-05-02",
		Items:      []domain.OrderItemRequest{{ProductID: milk.ID, Quantity: decimal.NewFromInt(30)}},
	})

	rec = call(t, api, http.MethodGet, "/api/v1/boxes?date=2024-05-02", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("boxes: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp domain.BoxRequirementResponse
	decodeBody(t, rec, &resp)
	if len(resp.Products) != 1 {
		t.Fatalf("expected one product, got %d", len(resp.Products))
	}
	got := resp.Products[0]
	if got.FullBoxes != 2 || !got.RemainingPieces.Equal(decimal.NewFromInt(6)) || !got.NeededForNextBox.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("unexpected box requirement %+v", got)
	}

	rec = call(t, api, http.MethodPut, "/api/v1/products/"+milk.ID+"/units-per-box", token, csrf, map[string]int{"units_per_box": -1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative units per box: expected 400, got %d", rec.Code)
	}
}

func TestPaymentFlow(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)
	products := demoProducts(t, api, token)
	customer := createCustomer(t, api, token, csrf, "Payment Customer")

	// 2L cow milk (112) then 1kg curd (45).
	createOrder(t, api, token, csrf, domain.OrderCreateRequest{
		CustomerID: customer.ID,
		OrderDate:  "2024-05-03",
		Items:      []domain.OrderItemRequest{{ProductID: products["Cow Milk"].ID, Quantity: decimal.NewFromInt(2)}},
	})
	createOrder(t, api, token, csrf, domain.OrderCreateRequest{
		CustomerID: customer.ID,
		OrderDate:  "2024-05-03",
		Items:      []domain.OrderItemRequest{{ProductID: products["Curd"].ID, Quantity: decimal.NewFromInt(1)}},
	})

	rec := call(t, api, http.MethodPost, "/api/v1/payments", token, csrf, domain.PaymentRequest{
		CustomerID: customer.ID,
		Date:       "2024-05-03",
		Amount:     decimal.NewFromInt(200),
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("unconfirmed overpayment: expected 409, got %d (%s)", rec.Code, rec.Body.String())
	}
	var conflict map[string]any
	decodeBody(t, rec, &conflict)
	if conflict["code"] != "overpayment_unconfirmed" {
		t.Fatalf("expected overpayment code, got %v", conflict["code"])
	}
	if conflict["outstanding"] != "157" || conflict["excess"] != "43" {
		t.Fatalf("expected outstanding 157 and excess 43, got %v / %v", conflict["outstanding"], conflict["excess"])
	}

	rec = call(t, api, http.MethodPost, "/api/v1/payments", token, csrf, domain.PaymentRequest{
		CustomerID: customer.ID,
		Date:       "2024-05-03",
		Amount:     decimal.NewFromInt(150),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("payment: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var paid domain.PaymentResponse
	decodeBody(t, rec, &paid)
	if !paid.Summary.Balance.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected balance 7, got %s", paid.Summary.Balance)
	}

	rec = call(t, api, http.MethodPost, "/api/v1/payments", token, csrf, domain.PaymentRequest{
		CustomerID: customer.ID,
		Date:       "2024-05-03",
		Amount:     decimal.Zero,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero payment: expected 400, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodPost, "/api/v1/payments", token, csrf, domain.PaymentRequest{
		CustomerID: customer.ID,
		Date:       "2024-05-09",
		Amount:     decimal.NewFromInt(10),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("payment on a day without orders: expected 404, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/daily-summaries?date=2024-05-03", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("daily summaries: expected 200, got %d", rec.Code)
	}
	var summaries struct {
		Summaries []domain.DailySummary `json:"summaries"`
	}
	decodeBody(t, rec, &summaries)
	if len(summaries.Summaries) != 1 || len(summaries.Summaries[0].OrderIDs) != 2 {
		t.Fatalf("expected one summary with two orders, got %+v", summaries.Summaries)
	}
	if !summaries.Summaries[0].TotalPaid.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected total paid 150, got %s", summaries.Summaries[0].TotalPaid)
	}
}

func TestEditDayOrders(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)
	products := demoProducts(t, api, token)
	customer := createCustomer(t, api, token, csrf, "Edit Customer")

	createOrder(t, api, token, csrf, domain.OrderCreateRequest{
		CustomerID: customer.ID,
		OrderDate:  "2024-05-04",
		Items:      []domain.OrderItemRequest{{ProductID: products["Cow Milk"].ID, Quantity: decimal.NewFromInt(1)}},
		AmountPaid: decimal.NewFromInt(56),
	})

	rec := call(t, api, http.MethodPut, "/api/v1/daily-summaries/"+customer.ID+"/2024-05-04", token, csrf, domain.DayOrdersReplaceRequest{
		Items: []domain.OrderItemRequest{{ProductID: products["Paneer"].ID, Quantity: decimal.RequireFromString("0.5")}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit day: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var payload struct {
		Summary domain.DailySummary `json:"summary"`
	}
	decodeBody(t, rec, &payload)
	if !payload.Summary.TotalAmount.Equal(decimal.NewFromInt(190)) {
		t.Fatalf("expected total 190, got %s", payload.Summary.TotalAmount)
	}
	if !payload.Summary.TotalPaid.Equal(decimal.NewFromInt(56)) {
		t.Fatalf("expected carried over payment 56, got %s", payload.Summary.TotalPaid)
	}

	rec = call(t, api, http.MethodPut, "/api/v1/daily-summaries/"+customer.ID+"/2024-05-05", token, csrf, domain.DayOrdersReplaceRequest{
		Items: []domain.OrderItemRequest{{ProductID: products["Paneer"].ID, Quantity: decimal.NewFromInt(1)}},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("edit empty day: expected 404, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodPut, "/api/v1/daily-summaries/"+customer.ID, token, csrf, domain.DayOrdersReplaceRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("edit without date: expected 400, got %d", rec.Code)
	}
}

func TestEditDayOrders_BelowPaidNeedsConfirmation(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)
	products := demoProducts(t, api, token)
	customer := createCustomer(t, api, token, csrf, "Downsize Customer")

	createOrder(t, api, token, csrf, domain.OrderCreateRequest{
		CustomerID: customer.ID,
		OrderDate:  "2024-05-07",
		Items:      []domain.OrderItemRequest{{ProductID: products["Ghee"].ID, Quantity: decimal.NewFromInt(1)}},
		AmountPaid: decimal.NewFromInt(620),
	})

	path := "/api/v1/daily-summaries/" + customer.ID + "/2024-05-07"
	req := domain.DayOrdersReplaceRequest{
		Items: []domain.OrderItemRequest{{ProductID: products["Curd"].ID, Quantity: decimal.NewFromInt(1)}},
	}
	rec := call(t, api, http.MethodPut, path, token, csrf, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("unconfirmed edit below paid: expected 409, got %d (%s)", rec.Code, rec.Body.String())
	}
	var conflict map[string]any
	decodeBody(t, rec, &conflict)
	if conflict["code"] != "overpayment_unconfirmed" {
		t.Fatalf("expected overpayment code, got %v", conflict["code"])
	}
	if conflict["outstanding"] != "45" || conflict["excess"] != "575" {
		t.Fatalf("expected outstanding 45 and excess 575, got %v / %v", conflict["outstanding"], conflict["excess"])
	}

	req.ConfirmOverpayment = true
	rec = call(t, api, http.MethodPut, path, token, csrf, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmed edit: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var payload struct {
		Summary domain.DailySummary `json:"summary"`
	}
	decodeBody(t, rec, &payload)
	if !payload.Summary.Balance.Equal(decimal.NewFromInt(-575)) {
		t.Fatalf("expected balance -575, got %s", payload.Summary.Balance)
	}
}

func TestPayments_RejectFractionsOfACent(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)
	products := demoProducts(t, api, token)
	customer := createCustomer(t, api, token, csrf, "Cents Customer")

	createOrder(t, api, token, csrf, domain.OrderCreateRequest{
		CustomerID: customer.ID,
		OrderDate:  "2024-05-08",
		Items:      []domain.OrderItemRequest{{ProductID: products["Cow Milk"].ID, Quantity: decimal.NewFromInt(1)}},
	})

	rec := call(t, api, http.MethodPost, "/api/v1/payments", token, csrf, domain.PaymentRequest{
		CustomerID: customer.ID,
		Date:       "2024-05-08",
		Amount:     decimal.RequireFromString("10.005"),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("sub-cent payment: expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodPost, "/api/v1/products", token, csrf, domain.ProductCreateRequest{
		Name:  "Lassi",
		Price: decimal.RequireFromString("12.345"),
		Unit:  "L",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("sub-cent price: expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleStatements(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)
	products := demoProducts(t, api, token)
	customer := createCustomer(t, api, token, csrf, "Statement Customer")

	order := createOrder(t, api, token, csrf, domain.OrderCreateRequest{
		CustomerID: customer.ID,
		OrderDate:  "2024-05-06",
		Items:      []domain.OrderItemRequest{{ProductID: products["Ghee"].ID, Quantity: decimal.NewFromInt(1)}},
		AmountPaid: decimal.NewFromInt(20),
	})

	rec := call(t, api, http.MethodGet, "/api/v1/statements?from=2024-05-01&to=2024-05-31&customer_id="+customer.ID, token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var statement domain.Statement
	decodeBody(t, rec, &statement)
	if !statement.GrandPending.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected pending 600, got %s", statement.GrandPending)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/statements?from=2024-05-01&to=2024-05-31&format=xlsx", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "statement-2024-05-01-2024-05-31.xlsx") {
		t.Fatalf("unexpected Content-Disposition %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected a zip container for xlsx")
	}

	rec = call(t, api, http.MethodGet, "/api/v1/statements?from=2024-05-01&to=2024-05-31&format=pdf", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected a PDF document")
	}

	rec = call(t, api, http.MethodGet, "/api/v1/statements?from=2024-05-31&to=2024-05-01", token, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reversed range: expected 400, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/statements?from=2024-01-01&to=2024-12-31&format=xlsx", token, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized export range: expected 400, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodGet, "/api/v1/statements?from=2024-05-01&to=2024-05-31&format=csv", token, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown format: expected 400, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodDelete, "/api/v1/orders/"+order.ID, token, csrf, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete order: expected 204, got %d", rec.Code)
	}
	rec = call(t, api, http.MethodGet, "/api/v1/orders?customer_id="+customer.ID, token, "", nil)
	var listed struct {
		Orders []domain.DailyOrder `json:"orders"`
	}
	decodeBody(t, rec, &listed)
	if len(listed.Orders) != 0 {
		t.Fatalf("expected no orders after delete, got %d", len(listed.Orders))
	}
}

func TestHandleSheetSync_NotConfigured(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := call(t, api, http.MethodPost, "/api/v1/sync/sheet", token, csrf, domain.SheetSyncRequest{From: "2024-05-01", To: "2024-05-31"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleSheetSync_RemoteFailureCarriesHint(t *testing.T) {
	pusher := pusherFunc(func(context.Context, []domain.SheetRow) error {
		return &sheetsync.SyncError{StatusCode: http.StatusUnauthorized, Kind: sheetsync.KindAuth, Hint: "check credentials"}
	})
	api := newTestAPIWith(t, service.Options{Sheets: pusher}, true)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := call(t, api, http.MethodPost, "/api/v1/sync/sheet", token, csrf, domain.SheetSyncRequest{From: "2024-05-01", To: "2024-05-31"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["kind"] != sheetsync.KindAuth || body["hint"] != "check credentials" {
		t.Fatalf("expected auth kind with hint, got %v", body)
	}
}

func TestHandleSheetSync_Success(t *testing.T) {
	var pushed []domain.SheetRow
	pusher := pusherFunc(func(_ context.Context, rows []domain.SheetRow) error {
		pushed = rows
		return nil
	})
	api := newTestAPIWith(t, service.Options{Sheets: pusher}, true)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)
	products := demoProducts(t, api, token)
	customer := createCustomer(t, api, token, csrf, "Sheet Customer")
	createOrder(t, api, token, csrf, domain.OrderCreateRequest{
		CustomerID: customer.ID,
		OrderDate:  "2024-05-07",
		Items:      []domain.OrderItemRequest{{ProductID: products["Buffalo Milk"].ID, Quantity: decimal.NewFromInt(3)}},
	})

	rec := call(t, api, http.MethodPost, "/api/v1/sync/sheet", token, csrf, domain.SheetSyncRequest{From: "2024-05-01", To: "2024-05-31"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(pushed) != 1 || pushed[0].Key != "2024-05-07|"+customer.ID {
		t.Fatalf("unexpected pushed rows %+v", pushed)
	}
}

func TestHandleAuditLogs(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsDemo(t, api)
	csrf := fetchCSRFToken(t, api)
	createCustomer(t, api, token, csrf, "Audited Customer")

	rec := call(t, api, http.MethodGet, "/api/v1/audit-logs?limit=10", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Logs []domain.AuditLog `json:"logs"`
	}
	decodeBody(t, rec, &payload)
	if len(payload.Logs) == 0 || payload.Logs[0].Action != "customer_create" {
		t.Fatalf("expected a customer_create audit entry, got %+v", payload.Logs)
	}
}

func TestMustHashPassword(t *testing.T) {
	hash := mustHashPassword(t, "secret")
	if hash == "" || hash == "secret" {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}
}
