package http

import (
	"encoding/json"
	"net/http"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/utils"

	"github.com/shopspring/decimal"
)

// calendarDate accepts a plain yyyy-mm-dd date or a full RFC3339 timestamp.
type calendarDate struct {
	time.Time
}

func (d *calendarDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t
		return nil
	}
	date, err := utils.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = date.Time()
	return nil
}

func (d *calendarDate) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

type applyRequest struct {
	MoveInDate *calendarDate `json:"move_in_date"`
}

type applicationStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type finalizeRequest struct {
	RentAmount    decimal.Decimal `json:"rent_amount"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	StartDate     *calendarDate   `json:"start_date" validate:"required"`
	Terms         string          `json:"terms"`
}

type finalizeResponse struct {
	Application *domain.Application `json:"application"`
	Agreement   *domain.Agreement   `json:"agreement"`
}

type referenceRequest struct {
	Reference string `json:"reference"`
}

type paymentMethodRequest struct {
	Method string `json:"method" validate:"required,oneof=online offline"`
}

type paymentFailureRequest struct {
	Reason string `json:"reason"`
}

type offlinePaymentRequest struct {
	UPITransactionID string `json:"upi_transaction_id" validate:"required"`
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	app, err := h.svc.Application.Apply(r.Context(), userID(r), pathID(r), req.MoveInDate.ptr())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.Application.ListApplications(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.Application.GetApplication(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req applicationStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	app, err := h.svc.Application.UpdateApplicationStatus(r.Context(), userID(r), pathID(r), domain.ApplicationStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.Application.ApproveApplication(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	app, err := h.svc.Application.RejectApplication(r.Context(), userID(r), pathID(r), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) FinalizeAgreement(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	app, agr, err := h.svc.Application.FinalizeAgreement(r.Context(), userID(r), pathID(r), domain.AgreementTerms{
		RentAmount:    req.RentAmount,
		DepositAmount: req.DepositAmount,
		StartDate:     req.StartDate.Time,
		Text:          req.Terms,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, finalizeResponse{Application: app, Agreement: agr})
}

func (h *Handler) PayPlatformFee(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	app, err := h.svc.Payment.PayPlatformFee(r.Context(), userID(r), pathID(r), req.Reference)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req paymentMethodRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	intent, err := h.svc.Payment.SelectPaymentMethod(r.Context(), userID(r), pathID(r), domain.PaymentMethod(req.Method))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

func (h *Handler) RentPaymentSuccess(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	app, err := h.svc.Payment.RentPaymentSuccess(r.Context(), userID(r), pathID(r), req.Reference)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) RentPaymentFailure(w http.ResponseWriter, r *http.Request) {
	var req paymentFailureRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	app, err := h.svc.Payment.RentPaymentFailure(r.Context(), userID(r), pathID(r), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) SubmitOfflinePayment(w http.ResponseWriter, r *http.Request) {
	var req offlinePaymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	app, err := h.svc.Payment.SubmitOfflinePayment(r.Context(), userID(r), pathID(r), req.UPITransactionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) AcknowledgeOfflinePayment(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.Payment.AcknowledgeOfflinePayment(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) ConfirmKeyHandover(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.Application.ConfirmKeyHandover(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
