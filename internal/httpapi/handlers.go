package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"inventra/backend/internal/config"
	"inventra/backend/internal/domain"
	"inventra/backend/internal/service"
	"inventra/backend/internal/store"
)

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			a.writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, products)
	case http.MethodPost:
		if !a.requireRole(w, r, config.RoleAdmin) {
			return
		}

		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			a.writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, product)
	default:
		writeMethodNotAllowed(w)
	}
}

// handleProductActions serves /api/v1/products/{id} and
// /api/v1/products/{id}/stock.
func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	// Split on the escaped path so ids containing an encoded slash stay whole.
	tail := strings.Trim(strings.TrimPrefix(r.URL.EscapedPath(), "/api/v1/products/"), "/")
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}

	if productID, ok := strings.CutSuffix(tail, "/stock"); ok {
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w)
			return
		}
		if !a.requireRole(w, r, config.RoleAdmin) {
			return
		}

		var req domain.StockUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.UpdateStock(r.Context(), unescape(productID), req)
		if err != nil {
			a.writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
		return
	}

	if strings.Contains(tail, "/") {
		writeError(w, http.StatusNotFound, errors.New("unknown product action"))
		return
	}
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	product, err := a.service.GetProduct(r.Context(), unescape(tail))
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleAvailableProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	products, err := a.service.ListAvailableProducts(r.Context())
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (a *API) handlePaymentUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	receipt, err := a.service.ProcessSale(r.Context(), req)
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Payment updated successfully",
		"sale":        receipt.Sale,
		"transaction": receipt.Transaction,
	})
}

func (a *API) handlePurchases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.PurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	receipt, err := a.service.RecordPurchase(r.Context(), req)
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (a *API) handleExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := a.service.RecordExpense(r.Context(), req)
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": entry})
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	metrics, err := a.service.DashboardMetrics(r.Context())
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (a *API) handleDashboardCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	category := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/dashboard/category/"), "/")
	group, err := a.service.CategoryMetrics(r.Context(), unescape(category))
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query, err := transactionQuery(r.URL.Query())
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	txs, err := a.service.ListTransactions(r.Context(), query)
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (a *API) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query, err := transactionQuery(r.URL.Query())
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	summary, err := a.service.TransactionSummary(r.Context(), query)
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)
	logs, err := a.service.ListAuditLogs(r.Context(), limit)
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func transactionQuery(values url.Values) (service.TransactionQuery, error) {
	query := service.TransactionQuery{
		Category: values.Get("category"),
		Type:     values.Get("type"),
		Limit:    parsePositiveLimit(values.Get("limit"), 0, 1000),
	}
	if raw := strings.TrimSpace(values.Get("startDate")); raw != "" {
		start, err := service.ParseTime(raw, false)
		if err != nil {
			return query, invalidDate("startDate", raw)
		}
		query.Start = &start
	}
	if raw := strings.TrimSpace(values.Get("endDate")); raw != "" {
		end, err := service.ParseTime(raw, true)
		if err != nil {
			return query, invalidDate("endDate", raw)
		}
		query.End = &end
	}
	return query, nil
}

func invalidDate(field string, raw string) error {
	return errors.WithMessagef(store.ErrInvalidInput, "%s must be RFC3339 or YYYY-MM-DD, got %q", field, raw)
}

func unescape(raw string) string {
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
