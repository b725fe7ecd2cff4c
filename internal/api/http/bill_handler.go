package http

import (
	"net/http"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/service"

	"github.com/shopspring/decimal"
)

type billRequest struct {
	PropertyID  string          `json:"property_id" validate:"required"`
	TenantID    string          `json:"tenant_id" validate:"required"`
	Category    string          `json:"category" validate:"required,oneof=ELECTRICITY WATER MAINTENANCE INTERNET OTHER"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date" validate:"required"`
}

type disputeRequest struct {
	PropertyID    string  `json:"property_id" validate:"required"`
	ApplicationID *string `json:"application_id"`
	Reason        string  `json:"reason" validate:"required"`
}

type resolveDisputeRequest struct {
	Resolution string `json:"resolution" validate:"required"`
}

func (h *Handler) IssueBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	bill, err := h.svc.Bill.IssueBill(r.Context(), userID(r), service.BillInput{
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		Category:    domain.BillCategory(req.Category),
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.Bill.ListBills(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	bill, err := h.svc.Bill.PayBill(r.Context(), userID(r), pathID(r), req.Reference)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (h *Handler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	var req disputeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d, err := h.svc.Dispute.OpenDispute(r.Context(), userID(r), req.PropertyID, req.ApplicationID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) ListDisputes(w http.ResponseWriter, r *http.Request) {
	disputes, err := h.svc.Dispute.ListDisputes(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disputes": disputes})
}

func (h *Handler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	var req resolveDisputeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d, err := h.svc.Dispute.ResolveDispute(r.Context(), userID(r), pathID(r), req.Resolution)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
