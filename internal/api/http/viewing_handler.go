package http

import (
	"net/http"
	"time"

	"rentnest-backend/internal/domain"
)

type viewingRequest struct {
	ScheduledAt  time.Time                   `json:"scheduled_at" validate:"required"`
	Verification domain.VerificationSnapshot `json:"verification"`
}

type viewingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED DECLINED COMPLETED"`
}

func (h *Handler) RequestViewing(w http.ResponseWriter, r *http.Request) {
	var req viewingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.svc.Viewing.RequestViewing(r.Context(), userID(r), pathID(r), req.ScheduledAt, req.Verification)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) ListViewings(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.Viewing.ListViewings(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"viewings": vs})
}

func (h *Handler) GetViewing(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Viewing.GetViewing(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) UpdateViewingStatus(w http.ResponseWriter, r *http.Request) {
	var req viewingStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.svc.Viewing.UpdateViewingStatus(r.Context(), userID(r), pathID(r), domain.ViewingStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) CancelViewing(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Viewing.CancelViewing(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) RejectAfterViewing(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Viewing.RejectAfterViewing(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) ConfirmRent(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.Application.ConfirmRent(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
