package budget

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/transport"
)

type ServiceAPI interface {
	CreateBudget(dto CreateBudgetDTO) (*Budget, error)
	GetBudget(id int64) (*Budget, error)
	ListBudgets(userID int64) ([]*Budget, error)
	BudgetStatus(id int64) (*BudgetStatusResponse, error)
	Summary(userID int64) (*SummaryResponse, error)
	Evaluate(budgetID int64) ([]Alert, error)
	ResetAlerts(budgetID int64) error
	UnreadAlerts(userID int64) ([]Alert, error)
	MarkAlertsRead(userID int64, dto MarkAlertsReadDTO) error
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

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == 0 {
		h.WriteError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	var dto CreateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.UserID = userID

	b, err := h.Service.CreateBudget(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := h.budgetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	b, err := h.Service.GetBudget(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == 0 {
		h.WriteError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	budgets, err := h.Service.ListBudgets(userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"budgets": budgets})
}

// BudgetStatus serves the live utilization view for one budget.
func (h *Handler) BudgetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.budgetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	status, err := h.Service.BudgetStatus(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == 0 {
		h.WriteError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	summary, err := h.Service.Summary(userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

// Evaluate forces a threshold check outside the expense write path,
// useful after imports or manual corrections.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, err := h.budgetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	alerts, err := h.Service.Evaluate(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

func (h *Handler) ResetAlerts(w http.ResponseWriter, r *http.Request) {
	id, err := h.budgetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	if err := h.Service.ResetAlerts(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnreadAlerts(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == 0 {
		h.WriteError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	alerts, err := h.Service.UnreadAlerts(userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

func (h *Handler) MarkAlertsRead(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == 0 {
		h.WriteError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	var dto MarkAlertsReadDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.MarkAlertsRead(userID, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) budgetID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
