package settlement

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/finance-tracker/internal/transport"
)

type ServiceAPI interface {
	CreateSharedExpense(dto CreateSharedExpenseDTO) (*SharedExpense, error)
	RecomputeSplits(sharedExpenseID int64, dto RecomputeSplitsDTO) (*SharedExpense, error)
	DeriveDebts(sharedExpenseID int64) (int, error)
	GetSharedExpense(id int64) (*SharedExpense, error)
	ListGroupSharedExpenses(groupID int64) ([]*SharedExpense, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateSharedExpense(w http.ResponseWriter, r *http.Request) {
	var dto CreateSharedExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	se, err := h.Service.CreateSharedExpense(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, se)
}

func (h *Handler) GetSharedExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid shared expense id")
		return
	}

	se, err := h.Service.GetSharedExpense(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, se)
}

func (h *Handler) ListGroupSharedExpenses(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	shared, err := h.Service.ListGroupSharedExpenses(groupID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"shared_expenses": shared})
}

func (h *Handler) RecomputeSplits(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid shared expense id")
		return
	}

	var dto RecomputeSplitsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	se, err := h.Service.RecomputeSplits(id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, se)
}

func (h *Handler) DeriveDebts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid shared expense id")
		return
	}

	created, err := h.Service.DeriveDebts(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]int{"debts_created": created})
}
