package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/account-ledger/internal/ledger"
	"github.com/sheikh-saqib/account-ledger/internal/models"
	"github.com/sheikh-saqib/account-ledger/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	l := ledger.NewLedger(memory.NewMemoryLedgerStore(), nil)
	NewLedgerHandler(l).Register(r)
	return r
}

func doRequest(router *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, url, nil)
	} else {
		req, _ = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func createAccount(t *testing.T, router *gin.Engine, owner string) string {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/accounts", `{"owner":"`+owner+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp CreateAccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccountID
}

// ---- tests ----

func TestHealthAndVersion(t *testing.T) {
	router := newTestRouter()

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"1"}`, w.Body.String())
}

func TestCreateAccount(t *testing.T) {
	router := newTestRouter()

	assert.Equal(t, "ACC-1", createAccount(t, router, "Alice"))
	assert.Equal(t, "ACC-2", createAccount(t, router, "Bob"))

	w := doRequest(router, http.MethodGet, "/accounts/ACC-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var account models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
	assert.Equal(t, "Bob", account.Owner)
	assert.True(t, account.Balance.IsZero())

	w = doRequest(router, http.MethodPost, "/accounts", `{"owner":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAccountWithEmptyBody(t *testing.T) {
	router := newTestRouter()

	req, _ := http.NewRequest(http.MethodPost, "/accounts", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"account_id":"ACC-1"}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/accounts/ACC-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var account models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
	assert.Empty(t, account.Owner)
}

func TestAmountScaleLimits(t *testing.T) {
	router := newTestRouter()
	id := createAccount(t, router, "Alice")

	w := doRequest(router, http.MethodPost, "/accounts/"+id+"/deposit", `{"amount":"1e-10000000"}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "AmountOutOfRange", decodeError(t, w).Code)

	w = doRequest(router, http.MethodPost, "/accounts/"+id+"/withdraw", `{"amount":1e40}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "AmountOutOfRange", decodeError(t, w).Code)

	w = doRequest(router, http.MethodPost, "/accounts/FAKE/deposit", `{"amount":"1e-10000000"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "InvalidAccount", decodeError(t, w).Code)

	w = doRequest(router, http.MethodGet, "/accounts/"+id+"/transactions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var txs TransactionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	assert.Empty(t, txs.Transactions)
}

func TestDepositWithdrawFlow(t *testing.T) {
	router := newTestRouter()
	id := createAccount(t, router, "Alice")

	tests := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
		expectedCode   string
	}{
		{"deposit", "/accounts/" + id + "/deposit", `{"amount":50.0}`, http.StatusNoContent, ""},
		{"withdraw too much", "/accounts/" + id + "/withdraw", `{"amount":100}`, http.StatusConflict, "InsufficientFunds"},
		{"negative deposit", "/accounts/" + id + "/deposit", `{"amount":-10}`, http.StatusBadRequest, "NonPositiveAmount"},
		{"zero withdraw", "/accounts/" + id + "/withdraw", `{"amount":"0"}`, http.StatusBadRequest, "NonPositiveAmount"},
		{"unknown account", "/accounts/FAKE/deposit", `{"amount":-10}`, http.StatusNotFound, "InvalidAccount"},
		{"missing amount", "/accounts/" + id + "/deposit", `{}`, http.StatusBadRequest, ""},
		{"withdraw string amount", "/accounts/" + id + "/withdraw", `{"amount":"12.5"}`, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
			}
		})
	}

	w := doRequest(router, http.MethodGet, "/accounts/"+id+"/balance", "")
	require.Equal(t, http.StatusOK, w.Code)
	var balance BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balance))
	assert.Equal(t, id, balance.AccountID)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("37.5")), balance.Balance.String())

	w = doRequest(router, http.MethodGet, "/accounts/"+id+"/transactions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var txs TransactionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	require.Len(t, txs.Transactions, 2)
	assert.True(t, txs.Transactions[0].Equal(decimal.NewFromInt(50)))
	assert.True(t, txs.Transactions[1].Equal(decimal.RequireFromString("-12.5")))

	w = doRequest(router, http.MethodGet, "/ledgerEntries", "")
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.LedgerEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestReadsOnUnknownAccount(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/accounts/FAKE", "/accounts/FAKE/balance", "/accounts/FAKE/transactions"} {
		w := doRequest(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "InvalidAccount", decodeError(t, w).Code, path)
	}
}

// brokenLedger fails every call with a non-ledger error, as a failing
// backing store would.
type brokenLedger struct {
	ledger.Ledger
}

func (*brokenLedger) Balance(ctx context.Context, accountId string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("connection refused")
}

func TestStoreFailureIsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewLedgerHandler(&brokenLedger{}).Register(r)

	w := doRequest(r, http.MethodGet, "/accounts/ACC-1/balance", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, decodeError(t, w).Code)
}
