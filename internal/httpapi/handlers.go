package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

func (a *API) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		customers, err := a.service.ListCustomers(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
	case http.MethodPost:
		var req domain.CustomerCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		customer, err := a.service.CreateCustomer(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleCustomerActions(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathTail(w, r, "/api/v1/customers/", "customer id required")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.CustomerUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		customer, err := a.service.UpdateCustomer(r.Context(), id, req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
	case http.MethodDelete:
		if err := a.service.DeleteCustomer(r.Context(), id); err != nil {
			a.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	tail, ok := a.pathTail(w, r, "/api/v1/products/", "product id required")
	if !ok {
		return
	}

	if strings.HasSuffix(tail, "/units-per-box") {
		if r.Method != http.MethodPut {
			a.writeMethodNotAllowed(w)
			return
		}
		id := strings.Trim(strings.TrimSuffix(tail, "/units-per-box"), "/")
		if id == "" {
			a.writeError(w, http.StatusBadRequest, errors.New("product id required"))
			return
		}
		var req domain.UnitsPerBoxRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := a.service.SetUnitsPerBox(r.Context(), id, req); err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product_id": id, "units_per_box": req.UnitsPerBox})
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.ProductUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.UpdateProduct(r.Context(), tail, req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodDelete:
		if err := a.service.DeleteProduct(r.Context(), tail); err != nil {
			a.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		orders, err := a.service.ListOrders(r.Context(), orderFilter(r))
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	case http.MethodPost:
		var req domain.OrderCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		order, err := a.service.CreateOrder(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"order": order})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrderActions(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathTail(w, r, "/api/v1/orders/", "order id required")
	if !ok {
		return
	}
	if r.Method != http.MethodDelete {
		a.writeMethodNotAllowed(w)
		return
	}
	if err := a.service.DeleteOrder(r.Context(), id); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDailySummaries groups orders per customer and day, or per customer across the
// range with group=customer.
func (a *API) handleDailySummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}

	filter := orderFilter(r)
	var (
		summaries []domain.DailySummary
		err       error
	)
	if r.URL.Query().Get("group") == "customer" {
		summaries, err = a.service.CustomerSummaries(r.Context(), filter)
	} else {
		summaries, err = a.service.DailySummaries(r.Context(), filter)
	}
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}

func (a *API) handleDayActions(w http.ResponseWriter, r *http.Request) {
	tail, ok := a.pathTail(w, r, "/api/v1/daily-summaries/", "customer id and date required")
	if !ok {
		return
	}
	parts := strings.Split(tail, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		a.writeError(w, http.StatusBadRequest, errors.New("path must be /daily-summaries/{customer_id}/{date}"))
		return
	}
	customerID, day := parts[0], parts[1]

	switch r.Method {
	case http.MethodPut:
		var req domain.DayOrdersReplaceRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		summary, err := a.service.EditDayOrders(r.Context(), customerID, day, req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
	case http.MethodDelete:
		removed, err := a.service.DeleteDayOrders(r.Context(), customerID, day)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeMethodNotAllowed(w)
		return
	}

	var req domain.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.service.RecordPayment(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleStatements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	from := strings.TrimSpace(query.Get("from"))
	to := strings.TrimSpace(query.Get("to"))
	customerID := strings.TrimSpace(query.Get("customer_id"))
	format := strings.ToLower(strings.TrimSpace(query.Get("format")))

	switch format {
	case "", "json":
		statement, err := a.service.Statement(r.Context(), from, to, customerID)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statement)
	case "xlsx":
		payload, err := a.service.ExportWorkbook(r.Context(), from, to, customerID)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", statementFilename(from, to, "xlsx"), payload)
	case "pdf":
		payload, err := a.service.ExportPDF(r.Context(), from, to, customerID)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeAttachment(w, "application/pdf", statementFilename(from, to, "pdf"), payload)
	default:
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
	}
}

func (a *API) handleBoxes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	resp, err := a.service.BoxRequirements(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleSheetSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeMethodNotAllowed(w)
		return
	}

	var req domain.SheetSyncRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.service.SyncSheet(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}

	date := r.URL.Query().Get("date")
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)

	logs, err := a.service.ListAuditLogs(r.Context(), date, limit)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

// pathTail returns the path below prefix, writing a 400 when it is empty.
func (a *API) pathTail(w http.ResponseWriter, r *http.Request, prefix string, missing string) (string, bool) {
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		a.writeError(w, http.StatusBadRequest, errors.New(missing))
		return "", false
	}
	return tail, true
}

// orderFilter reads customer_id and either date or from/to from the query.
func orderFilter(r *http.Request) domain.OrderFilter {
	query := r.URL.Query()
	filter := domain.OrderFilter{
		CustomerID: query.Get("customer_id"),
		From:       query.Get("from"),
		To:         query.Get("to"),
	}
	if day := strings.TrimSpace(query.Get("date")); day != "" {
		filter.From, filter.To = day, day
	}
	return filter
}

func statementFilename(from string, to string, ext string) string {
	return fmt.Sprintf("statement-%s-%s.%s", from, to, ext)
}

func writeAttachment(w http.ResponseWriter, contentType string, filename string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
