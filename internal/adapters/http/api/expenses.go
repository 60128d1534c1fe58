package api

import (
	"context"
	"net/http"

	"github.com/okian/expenses/internal/domain/model"
)

// ExpenseDependencies defines the storage operations behind /expenses.
type ExpenseDependencies interface {
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	CreateExpense(ctx context.Context, d model.Draft) (model.Expense, error)
	GetExpense(ctx context.Context, id int64) (model.Expense, error)
	UpdateExpense(ctx context.Context, id int64, p model.Patch) (model.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
}

// ExpensesHandler handles the expense resource routes.
type ExpensesHandler struct {
	deps ExpenseDependencies
}

// NewExpensesHandler creates a new expenses handler.
func NewExpensesHandler(deps ExpenseDependencies) *ExpensesHandler {
	return &ExpensesHandler{deps: deps}
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleList handles GET /expenses requests.
func (h *ExpensesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_expenses"
	list, err := h.deps.ListExpenses(r.Context())
	if err != nil {
		writeError(w, classify(op, err))
		return
	}
	if list == nil {
		list = []model.Expense{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /expenses requests.
func (h *ExpensesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_expense"
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	draft, err := model.ParseDraft(body)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	e, err := h.deps.CreateExpense(r.Context(), draft)
	if err != nil {
		writeError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// HandleGet handles GET /expenses/{id} requests.
func (h *ExpensesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_expense"
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeError(w, NewKind(op, ErrNotFound))
		return
	}
	e, err := h.deps.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleUpdate handles PUT /expenses/{id} requests. Only fields present
// in the body change.
func (h *ExpensesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_expense"
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeError(w, NewKind(op, ErrNotFound))
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	patch, err := model.ParsePatch(body)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	e, err := h.deps.UpdateExpense(r.Context(), id, patch)
	if err != nil {
		writeError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleDelete handles DELETE /expenses/{id} requests.
func (h *ExpensesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_expense"
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeError(w, NewKind(op, ErrNotFound))
		return
	}
	if err := h.deps.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgDeleted})
}
