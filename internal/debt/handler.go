package debt

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/transport"
)

type ServiceAPI interface {
	ApplyPayment(debtID int64, dto PaymentDTO) (*Debt, *Payment, error)
	SettleFull(debtID int64, dto SettleFullDTO) (*Debt, error)
	Cancel(debtID int64) (*Debt, error)
	GetDebt(debtID int64) (*Debt, error)
	DebtsOwedBy(userID int64) ([]*Debt, error)
	DebtsOwedTo(userID int64) ([]*Debt, error)
	PaymentHistory(debtID int64) ([]Payment, error)
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

func (h *Handler) GetDebt(w http.ResponseWriter, r *http.Request) {
	id, err := h.debtID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid debt id")
		return
	}

	d, err := h.Service.GetDebt(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == 0 {
		h.WriteError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	owedBy, err := h.Service.DebtsOwedBy(userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	owedTo, err := h.Service.DebtsOwedTo(userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"you_owe":     owedBy,
		"owed_to_you": owedTo,
	})
}

func (h *Handler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := h.debtID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid debt id")
		return
	}

	var dto PaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, payment, err := h.Service.ApplyPayment(id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"debt":    d,
		"payment": payment,
	})
}

func (h *Handler) SettleFull(w http.ResponseWriter, r *http.Request) {
	id, err := h.debtID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid debt id")
		return
	}

	var dto SettleFullDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.SettleFull(id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) CancelDebt(w http.ResponseWriter, r *http.Request) {
	id, err := h.debtID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid debt id")
		return
	}

	d, err := h.Service.Cancel(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	id, err := h.debtID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid debt id")
		return
	}

	payments, err := h.Service.PaymentHistory(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

func (h *Handler) debtID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
