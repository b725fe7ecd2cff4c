package http

import (
	"net/http"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/service"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=RENTER OWNER"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User *domain.User `json:"user"`
	*service.TokenPair
}

type profileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Phone     *string `json:"phone"`
	PushToken *string `json:"push_token"`
}

type kycRequest struct {
	DocumentType   string `json:"document_type" validate:"required"`
	DocumentNumber string `json:"document_number" validate:"required"`
	DocumentKey    string `json:"document_key"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, tokens, err := h.svc.Auth.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: user, TokenPair: tokens})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, tokens, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, TokenPair: tokens})
}

// Refresh expects the refresh token as the bearer credential.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.svc.Auth.Refresh(r.Context(), rawToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.User.GetProfile(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.svc.User.UpdateProfile(r.Context(), userID(r), service.ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		PushToken: req.PushToken,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) SubmitKYC(w http.ResponseWriter, r *http.Request) {
	var req kycRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.DocumentKey != "" {
		ok, _, err := h.documents.Exists(r.Context(), req.DocumentKey)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok || !ownsKey(userID(r), req.DocumentKey) {
			writeError(w, domain.Invalid("document %s has not been uploaded", req.DocumentKey))
			return
		}
	}
	v, err := h.svc.User.SubmitKYC(r.Context(), userID(r), req.DocumentType, req.DocumentNumber, req.DocumentKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		writeError(w, err)
		return
	}
	logs, err := h.svc.User.ListActivity(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": logs})
}
