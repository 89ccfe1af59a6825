package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"budget/internal/core"
	applog "budget/internal/log"
)

const defaultRecentLimit = 10

type (
	errorResponse struct {
		Error string `json:"error"`
	}

	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	loginResponse struct {
		Authenticated bool `json:"authenticated"`
	}

	// addTransactionRequest carries the amount as a decimal string, the way
	// form inputs produce it. "200.50" and "200,50" are both accepted.
	addTransactionRequest struct {
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}

	balanceResponse struct {
		Balance float64 `json:"balance"`
	}

	categoryTotalsResponse struct {
		Category string  `json:"category"`
		Income   float64 `json:"income"`
		Expense  float64 `json:"expense"`
	}

	monthTotalsResponse struct {
		Month   string  `json:"month"`
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
	}

	balancePointResponse struct {
		Date    string  `json:"date"`
		Balance float64 `json:"balance"`
	}

	monthlyIncomeRequest struct {
		Amount string `json:"amount"`
	}

	monthlyIncomeResponse struct {
		MonthlyIncome float64 `json:"monthly_income"`
	}

	transactionsPayload struct {
		Transactions []core.Transaction `json:"transactions"`
	}

	importResponse struct {
		Imported int `json:"imported"`
	}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.authn.Authenticate(req.Username, req.Password) {
		slog.WarnContext(r.Context(), "Login rejected",
			applog.FieldOperation, applog.OpLogin)
		writeJSON(w, http.StatusUnauthorized, loginResponse{Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Authenticated: true})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.svc.Balance(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Balance query failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute balance")
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance.Float64()})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	txs, err := s.svc.Recent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent query failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, transactionsPayload{Transactions: txs})
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	s.handleAdd(w, r, core.Income)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	s.handleAdd(w, r, core.Expense)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request, typ core.TransactionType) {
	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	category := strings.TrimSpace(req.Category)
	description := strings.TrimSpace(req.Description)

	var tx core.Transaction
	if typ == core.Income {
		tx, err = s.svc.AddIncome(r.Context(), amount, category, description)
	} else {
		tx, err = s.svc.AddExpense(r.Context(), amount, category, description)
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete failed",
			applog.FieldTransactionID, id, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.CategorySummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category summary failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	out := make([]categoryTotalsResponse, 0, len(summary))
	for _, row := range summary {
		out = append(out, categoryTotalsResponse{
			Category: row.Category,
			Income:   row.Income.Float64(),
			Expense:  row.Expense.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.MonthlySummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Monthly summary failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	out := make([]monthTotalsResponse, 0, len(summary))
	for _, row := range summary {
		out = append(out, monthTotalsResponse{
			Month:   row.Month,
			Income:  row.Income.Float64(),
			Expense: row.Expense.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.BalanceHistory(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Balance history failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to build history")
		return
	}

	out := make([]balancePointResponse, 0, len(history))
	for _, p := range history {
		out = append(out, balancePointResponse{
			Date:    p.Date,
			Balance: p.Balance.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetMonthlyIncome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, monthlyIncomeResponse{
		MonthlyIncome: s.svc.MonthlyIncome().Float64(),
	})
}

func (s *Server) handleSetMonthlyIncome(w http.ResponseWriter, r *http.Request) {
	var req monthlyIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "monthly income must be a positive amount")
		return
	}
	if err := s.svc.SetMonthlyIncome(amount); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSuggestedCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		string(core.Income):  core.SuggestedCategories(core.Income),
		string(core.Expense): core.SuggestedCategories(core.Expense),
	})
}

// handleBudgetImport receives a full transaction dump from a peer and merges
// it into the local ledger, skipping ids that already exist.
func (s *Server) handleBudgetImport(w http.ResponseWriter, r *http.Request) {
	var req transactionsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added, err := s.store.Merge(r.Context(), req.Transactions)
	if err != nil {
		slog.ErrorContext(r.Context(), "Import merge failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to merge transactions")
		return
	}

	slog.InfoContext(r.Context(), "Merged imported transactions",
		applog.FieldOperation, applog.OpImport,
		applog.FieldCount, added)
	writeJSON(w, http.StatusOK, importResponse{Imported: added})
}

// handleBudgetExport returns the full ledger in the shared wire shape.
func (s *Server) handleBudgetExport(w http.ResponseWriter, r *http.Request) {
	txs, err := s.store.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export list failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, transactionsPayload{Transactions: txs})
}
