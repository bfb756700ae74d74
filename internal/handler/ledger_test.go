package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/service/ledger"
)

type mockLedgerService struct {
	appendReq *ledger.AppendRequest
	appendID  int64
	appendErr error

	amendReq *ledger.AmendRequest
	amendErr error

	removedID int64
	removeErr error

	statement    []domain.StatementEntry
	statementErr error

	debtors []domain.Customer
}

func (m *mockLedgerService) Append(_ context.Context, req ledger.AppendRequest) (int64, error) {
	m.appendReq = &req
	return m.appendID, m.appendErr
}

func (m *mockLedgerService) Amend(_ context.Context, req ledger.AmendRequest) error {
	m.amendReq = &req
	return m.amendErr
}

func (m *mockLedgerService) Remove(_ context.Context, ledgerID int64) error {
	m.removedID = ledgerID
	return m.removeErr
}

func (m *mockLedgerService) Statement(_ context.Context, _ string, _, _ *string) ([]domain.StatementEntry, error) {
	return m.statement, m.statementErr
}

func (m *mockLedgerService) Debtors(_ context.Context) ([]domain.Customer, error) {
	return m.debtors, nil
}

type mockCustomerGetter struct {
	customer *domain.Customer
	err      error
}

func (m *mockCustomerGetter) GetCustomer(_ context.Context, _ string) (*domain.Customer, error) {
	return m.customer, m.err
}

func newLedgerRouter(svc *mockLedgerService, customers *mockCustomerGetter) *chi.Mux {
	h := NewLedgerHandler(svc, customers)
	r := chi.NewRouter()
	r.Post("/ledger", h.Create)
	r.Put("/ledger/{id}", h.Update)
	r.Delete("/ledger/{id}", h.Delete)
	r.Get("/customers/{id}/ledger", h.Statement)
	r.Get("/customers/{id}/ledger/export", h.ExportStatement)
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLedgerCreate(t *testing.T) {
	svc := &mockLedgerService{appendID: 7}
	router := newLedgerRouter(svc, &mockCustomerGetter{})

	body := `{"customer_id":"c1","transaction_date":"2024-01-10","transaction_type":"입금","amount":5000}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ledger", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	require.NotNil(t, svc.appendReq)
	assert.Equal(t, "c1", svc.appendReq.CustomerID)
	assert.Equal(t, "입금", svc.appendReq.TransactionType)
	assert.Equal(t, int64(5000), svc.appendReq.Amount)
}

func TestLedgerCreate_MissingFields(t *testing.T) {
	svc := &mockLedgerService{}
	router := newLedgerRouter(svc, &mockCustomerGetter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ledger", strings.NewReader(`{"amount":100}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Nil(t, svc.appendReq)
}

func TestLedgerUpdate_NotFound(t *testing.T) {
	svc := &mockLedgerService{amendErr: domain.ErrEntryNotFound}
	router := newLedgerRouter(svc, &mockCustomerGetter{})

	body := `{"transaction_date":"2024-01-10","transaction_type":"매출","amount":100}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/ledger/42", strings.NewReader(body)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "LEDGER_ENTRY_NOT_FOUND", resp.Error.Code)
	require.NotNil(t, svc.amendReq)
	assert.Equal(t, int64(42), svc.amendReq.LedgerID)
}

func TestLedgerDelete_InvalidID(t *testing.T) {
	svc := &mockLedgerService{}
	router := newLedgerRouter(svc, &mockCustomerGetter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/ledger/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.removedID)
}

func TestLedgerStatement(t *testing.T) {
	svc := &mockLedgerService{
		statement: []domain.StatementEntry{
			{
				LedgerEntry: domain.LedgerEntry{
					ID:              3,
					CustomerID:      "c1",
					TransactionDate: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
					TransactionType: domain.TypePayment,
					Amount:          -2000,
				},
				RunningBalance: 500,
			},
		},
	}
	router := newLedgerRouter(svc, &mockCustomerGetter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/c1/ledger", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	entries, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "2024-02-20", entry["transaction_date"])
	assert.Equal(t, float64(-2000), entry["amount"])
	assert.Equal(t, float64(500), entry["running_balance"])
}

func TestLedgerExportStatement(t *testing.T) {
	svc := &mockLedgerService{}
	customers := &mockCustomerGetter{customer: &domain.Customer{ID: "c1", Name: "김철수"}}
	router := newLedgerRouter(svc, customers)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/c1/ledger/export", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ledger_c1_")
	assert.NotZero(t, rec.Body.Len())
}

func TestLedgerExportStatement_UnknownCustomer(t *testing.T) {
	svc := &mockLedgerService{}
	customers := &mockCustomerGetter{err: domain.ErrCustomerNotFound}
	router := newLedgerRouter(svc, customers)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/ghost/ledger/export", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
