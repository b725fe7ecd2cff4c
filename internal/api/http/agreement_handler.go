package http

import (
	"net/http"
	"time"
)

type verifySignatureRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type signatureChallengeResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) ListAgreements(w http.ResponseWriter, r *http.Request) {
	agreements, err := h.svc.Agreement.ListAgreements(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agreements": agreements})
}

func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	agr, err := h.svc.Agreement.GetAgreement(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agr)
}

// InitiateSignature sends a one-time code to the caller; the code itself is never returned.
func (h *Handler) InitiateSignature(w http.ResponseWriter, r *http.Request) {
	expiresAt, err := h.svc.Agreement.InitiateSignature(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, signatureChallengeResponse{ExpiresAt: expiresAt})
}

func (h *Handler) VerifySignature(w http.ResponseWriter, r *http.Request) {
	var req verifySignatureRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	agr, err := h.svc.Agreement.VerifyOtpAndSign(r.Context(), userID(r), pathID(r), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agr)
}
