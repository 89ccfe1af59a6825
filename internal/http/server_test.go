package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"budget/internal/auth"
	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/services"
)

func newTestServer(t *testing.T) (*httptest.Server, *services.LedgerService, ledger.Store) {
	t.Helper()

	store := ledger.NewMemoryStore()
	svc := services.NewLedgerService(store, nil)
	srv := NewServer(":0", svc, store, auth.New("admin", "admin"))

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.rateLimiter.stop()
	})
	return ts, svc, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestLogin(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/login", loginRequest{Username: "admin", Password: "admin"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid login: got status %d", resp.StatusCode)
	}
	var ok loginResponse
	decodeBody(t, resp, &ok)
	if !ok.Authenticated {
		t.Fatalf("valid login: expected authenticated=true")
	}

	resp = postJSON(t, ts.URL+"/api/login", loginRequest{Username: "admin", Password: "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: got status %d", resp.StatusCode)
	}
	var bad loginResponse
	decodeBody(t, resp, &bad)
	if bad.Authenticated {
		t.Fatalf("bad login: expected authenticated=false")
	}
}

func TestAddIncomeAndBalance(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/transactions/income", addTransactionRequest{
		Amount: "1000.00", Category: "Salary", Description: "August",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add income: got status %d", resp.StatusCode)
	}
	var created core.Transaction
	decodeBody(t, resp, &created)
	if created.ID == "" {
		t.Fatalf("created transaction missing id")
	}
	if created.Amount.Cents != 100000 {
		t.Fatalf("created amount: got %d cents", created.Amount.Cents)
	}

	resp = postJSON(t, ts.URL+"/api/transactions/expense", addTransactionRequest{
		Amount: "200.50", Category: "Food", Description: "Groceries",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add expense: got status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/balance")
	if err != nil {
		t.Fatalf("GET balance: %v", err)
	}
	var bal balanceResponse
	decodeBody(t, resp, &bal)
	if bal.Balance != 799.50 {
		t.Fatalf("balance: got %v, want 799.50", bal.Balance)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	ts, _, _ := newTestServer(t)

	cases := []struct {
		name string
		req  addTransactionRequest
	}{
		{"empty amount", addTransactionRequest{Amount: "", Category: "Food", Description: "x"}},
		{"negative amount", addTransactionRequest{Amount: "-5.00", Category: "Food", Description: "x"}},
		{"zero amount", addTransactionRequest{Amount: "0", Category: "Food", Description: "x"}},
		{"garbage amount", addTransactionRequest{Amount: "abc", Category: "Food", Description: "x"}},
		{"empty category", addTransactionRequest{Amount: "10.00", Category: "", Description: "x"}},
		{"empty description", addTransactionRequest{Amount: "10.00", Category: "Food", Description: ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/transactions/expense", tc.req)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("got status %d, want 422", resp.StatusCode)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/api/balance")
	if err != nil {
		t.Fatalf("GET balance: %v", err)
	}
	var bal balanceResponse
	decodeBody(t, resp, &bal)
	if bal.Balance != 0 {
		t.Fatalf("rejected inputs must not change the ledger, balance %v", bal.Balance)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/transactions/income", addTransactionRequest{
		Amount: "50.00", Category: "Other", Description: "gift",
	})
	var created core.Transaction
	decodeBody(t, resp, &created)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/transactions/"+created.ID, nil)
	if err != nil {
		t.Fatalf("build delete request: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: got status %d", resp.StatusCode)
	}

	// Deleting an unknown id is a silent no-op.
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/transactions/no-such-id", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE unknown: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete unknown: got status %d", resp.StatusCode)
	}
}

func TestRecentLimit(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for i := 0; i < 15; i++ {
		resp := postJSON(t, ts.URL+"/api/transactions/expense", addTransactionRequest{
			Amount: "1.00", Category: "Food", Description: fmt.Sprintf("item %d", i),
		})
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/transactions")
	if err != nil {
		t.Fatalf("GET transactions: %v", err)
	}
	var page transactionsPayload
	decodeBody(t, resp, &page)
	if len(page.Transactions) != defaultRecentLimit {
		t.Fatalf("default limit: got %d transactions", len(page.Transactions))
	}

	resp, err = http.Get(ts.URL + "/api/transactions?limit=3")
	if err != nil {
		t.Fatalf("GET transactions limit=3: %v", err)
	}
	decodeBody(t, resp, &page)
	if len(page.Transactions) != 3 {
		t.Fatalf("limit=3: got %d transactions", len(page.Transactions))
	}

	resp, err = http.Get(ts.URL + "/api/transactions?limit=-1")
	if err != nil {
		t.Fatalf("GET transactions limit=-1: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative limit: got status %d", resp.StatusCode)
	}
}

func TestSummaries(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for _, req := range []addTransactionRequest{
		{Amount: "1000.00", Category: "Salary", Description: "pay"},
		{Amount: "200.50", Category: "Food", Description: "groceries"},
		{Amount: "30.00", Category: "Food", Description: "lunch"},
	} {
		path := "/api/transactions/expense"
		if req.Category == "Salary" {
			path = "/api/transactions/income"
		}
		resp := postJSON(t, ts.URL+path, req)
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/summary/categories")
	if err != nil {
		t.Fatalf("GET category summary: %v", err)
	}
	var categories []categoryTotalsResponse
	decodeBody(t, resp, &categories)
	if len(categories) != 2 {
		t.Fatalf("category rows: got %d", len(categories))
	}
	if categories[0].Category != "Salary" || categories[0].Income != 1000.00 {
		t.Fatalf("first row: got %+v", categories[0])
	}
	if categories[1].Category != "Food" || categories[1].Expense != 230.50 {
		t.Fatalf("second row: got %+v", categories[1])
	}

	resp, err = http.Get(ts.URL + "/api/summary/monthly")
	if err != nil {
		t.Fatalf("GET monthly summary: %v", err)
	}
	var months []monthTotalsResponse
	decodeBody(t, resp, &months)
	if len(months) != 1 {
		t.Fatalf("month rows: got %d", len(months))
	}
	if months[0].Income != 1000.00 || months[0].Expense != 230.50 {
		t.Fatalf("month totals: got %+v", months[0])
	}

	resp, err = http.Get(ts.URL + "/api/balance-history")
	if err != nil {
		t.Fatalf("GET balance history: %v", err)
	}
	var history []balancePointResponse
	decodeBody(t, resp, &history)
	if len(history) != 3 {
		t.Fatalf("history points: got %d", len(history))
	}
	if history[len(history)-1].Balance != 769.50 {
		t.Fatalf("final balance point: got %v", history[len(history)-1].Balance)
	}
}

func TestMonthlyIncome(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/monthly-income")
	if err != nil {
		t.Fatalf("GET monthly income: %v", err)
	}
	var income monthlyIncomeResponse
	decodeBody(t, resp, &income)
	if income.MonthlyIncome != 0 {
		t.Fatalf("initial monthly income: got %v", income.MonthlyIncome)
	}

	put := func(amount string) *http.Response {
		data, _ := json.Marshal(monthlyIncomeRequest{Amount: amount})
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/monthly-income", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("build PUT: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("PUT monthly income: %v", err)
		}
		return resp
	}

	resp = put("3000.00")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("set monthly income: got status %d", resp.StatusCode)
	}

	for _, bad := range []string{"-500", "0", "abc"} {
		resp = put(bad)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("set %q: got status %d, want 422", bad, resp.StatusCode)
		}
	}

	resp, err = http.Get(ts.URL + "/api/monthly-income")
	if err != nil {
		t.Fatalf("GET monthly income: %v", err)
	}
	decodeBody(t, resp, &income)
	if income.MonthlyIncome != 3000.00 {
		t.Fatalf("monthly income after rejects: got %v", income.MonthlyIncome)
	}
}

func TestSuggestedCategories(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/categories")
	if err != nil {
		t.Fatalf("GET categories: %v", err)
	}
	var categories map[string][]string
	decodeBody(t, resp, &categories)
	if len(categories["income"]) == 0 || len(categories["expense"]) == 0 {
		t.Fatalf("expected non-empty suggestions, got %v", categories)
	}
}

func TestBudgetImportExport(t *testing.T) {
	ts, _, _ := newTestServer(t)

	seed := transactionsPayload{Transactions: []core.Transaction{
		{ID: "a", Amount: core.Money{Cents: 100000}, Category: "Salary",
			Description: "pay", Date: "2025-01-01T09:00:00Z", Type: core.Income},
		{ID: "b", Amount: core.Money{Cents: 20050}, Category: "Food",
			Description: "groceries", Date: "2025-01-02T12:00:00Z", Type: core.Expense},
	}}

	resp := postJSON(t, ts.URL+"/budget/import", seed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: got status %d", resp.StatusCode)
	}
	var imported importResponse
	decodeBody(t, resp, &imported)
	if imported.Imported != 2 {
		t.Fatalf("import count: got %d", imported.Imported)
	}

	// Re-importing the same payload adds nothing.
	resp = postJSON(t, ts.URL+"/budget/import", seed)
	decodeBody(t, resp, &imported)
	if imported.Imported != 0 {
		t.Fatalf("duplicate import count: got %d", imported.Imported)
	}

	resp, err := http.Get(ts.URL + "/budget/export")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	var exported transactionsPayload
	decodeBody(t, resp, &exported)
	if len(exported.Transactions) != 2 {
		t.Fatalf("export count: got %d", len(exported.Transactions))
	}
	if exported.Transactions[0].ID != "a" || exported.Transactions[1].ID != "b" {
		t.Fatalf("export order: got %v", exported.Transactions)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: got status %d", path, resp.StatusCode)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/balance")
	if err != nil {
		t.Fatalf("GET balance: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing nosniff header")
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Errorf("missing frame options header")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d unexpectedly limited", i)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatalf("61st request should be limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Fatalf("other clients must not be affected")
	}
}
