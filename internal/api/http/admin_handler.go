package http

import (
	"net/http"

	"rentnest-backend/internal/domain"
)

type reviewKYCRequest struct {
	Approve *bool  `json:"approve" validate:"required"`
	Notes   string `json:"notes"`
}

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Admin.ListUsers(r.Context(), userID(r), domain.UserRole(r.URL.Query().Get("role")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Admin.PlatformStats(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) AdminPendingVerifications(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.Admin.ListPendingVerifications(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"verifications": pending})
}

func (h *Handler) AdminReviewKYC(w http.ResponseWriter, r *http.Request) {
	var req reviewKYCRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.svc.Admin.ReviewKYC(r.Context(), userID(r), pathID(r), *req.Approve, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) AdminSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.svc.Admin.SetPropertyAvailability(r.Context(), userID(r), pathID(r), domain.Availability(req.Availability))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
