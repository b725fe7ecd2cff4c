package http

import (
	"net/http"

	"rentnest-backend/internal/app"
	"rentnest-backend/internal/storage"

	"github.com/gorilla/mux"
)

// Handler serves the JSON API over the lifecycle services.
type Handler struct {
	svc       *app.Services
	documents storage.DocumentStore
}

func NewHandler(svc *app.Services, documents storage.DocumentStore) *Handler {
	return &Handler{svc: svc, documents: documents}
}

// NewRouter registers every route under /api/v1. Route names key into
// config.EndpointSecurityConfig, so a renamed route changes its protection.
func NewRouter(h *Handler) *mux.Router {
	root := mux.NewRouter()
	root.Use(accessLog)
	root.HandleFunc("/healthz", h.Health).Methods(http.MethodGet).Name("healthz")

	r := root.PathPrefix("/api/v1").Subrouter()
	r.Use(h.authenticate)

	// Auth
	r.HandleFunc("/auth/signup", h.Signup).Methods(http.MethodPost).Name("auth.signup")
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost).Name("auth.login")
	r.HandleFunc("/auth/refresh", h.Refresh).Methods(http.MethodPost).Name("auth.refresh")

	// Profile
	r.HandleFunc("/me", h.GetMe).Methods(http.MethodGet).Name("me.get")
	r.HandleFunc("/me", h.UpdateMe).Methods(http.MethodPatch).Name("me.update")
	r.HandleFunc("/me/kyc", h.SubmitKYC).Methods(http.MethodPost).Name("me.kyc")
	r.HandleFunc("/me/activity", h.ListActivity).Methods(http.MethodGet).Name("me.activity")

	// Properties
	r.HandleFunc("/properties", h.SearchProperties).Methods(http.MethodGet).Name("properties.search")
	r.HandleFunc("/properties", h.CreateProperty).Methods(http.MethodPost).Name("properties.create")
	r.HandleFunc("/properties/{id}", h.GetProperty).Methods(http.MethodGet).Name("properties.get")
	r.HandleFunc("/properties/{id}", h.UpdateProperty).Methods(http.MethodPut).Name("properties.update")
	r.HandleFunc("/properties/{id}/availability", h.SetAvailability).Methods(http.MethodPut).Name("properties.availability")
	r.HandleFunc("/properties/{id}/description", h.GenerateDescription).Methods(http.MethodPost).Name("properties.description")
	r.HandleFunc("/my/properties", h.ListMyProperties).Methods(http.MethodGet).Name("properties.mine")

	// Viewings
	r.HandleFunc("/properties/{id}/viewings", h.RequestViewing).Methods(http.MethodPost).Name("viewings.request")
	r.HandleFunc("/viewings", h.ListViewings).Methods(http.MethodGet).Name("viewings.list")
	r.HandleFunc("/viewings/{id}", h.GetViewing).Methods(http.MethodGet).Name("viewings.get")
	r.HandleFunc("/viewings/{id}/status", h.UpdateViewingStatus).Methods(http.MethodPut).Name("viewings.status")
	r.HandleFunc("/viewings/{id}/cancel", h.CancelViewing).Methods(http.MethodPost).Name("viewings.cancel")
	r.HandleFunc("/viewings/{id}/confirm-rent", h.ConfirmRent).Methods(http.MethodPost).Name("viewings.confirm_rent")
	r.HandleFunc("/viewings/{id}/reject", h.RejectAfterViewing).Methods(http.MethodPost).Name("viewings.reject")

	// Applications
	r.HandleFunc("/properties/{id}/applications", h.Apply).Methods(http.MethodPost).Name("applications.apply")
	r.HandleFunc("/applications", h.ListApplications).Methods(http.MethodGet).Name("applications.list")
	r.HandleFunc("/applications/{id}", h.GetApplication).Methods(http.MethodGet).Name("applications.get")
	r.HandleFunc("/applications/{id}/status", h.UpdateApplicationStatus).Methods(http.MethodPut).Name("applications.status")
	r.HandleFunc("/applications/{id}/approve", h.ApproveApplication).Methods(http.MethodPost).Name("applications.approve")
	r.HandleFunc("/applications/{id}/reject", h.RejectApplication).Methods(http.MethodPost).Name("applications.reject")
	r.HandleFunc("/applications/{id}/finalize", h.FinalizeAgreement).Methods(http.MethodPost).Name("applications.finalize")
	r.HandleFunc("/applications/{id}/platform-fee", h.PayPlatformFee).Methods(http.MethodPost).Name("applications.platform_fee")
	r.HandleFunc("/applications/{id}/payment-method", h.SelectPaymentMethod).Methods(http.MethodPost).Name("applications.payment_method")
	r.HandleFunc("/applications/{id}/payment-success", h.RentPaymentSuccess).Methods(http.MethodPost).Name("applications.payment_success")
	r.HandleFunc("/applications/{id}/payment-failure", h.RentPaymentFailure).Methods(http.MethodPost).Name("applications.payment_failure")
	r.HandleFunc("/applications/{id}/offline-payment", h.SubmitOfflinePayment).Methods(http.MethodPost).Name("applications.offline_payment")
	r.HandleFunc("/applications/{id}/offline-payment/ack", h.AcknowledgeOfflinePayment).Methods(http.MethodPost).Name("applications.offline_ack")
	r.HandleFunc("/applications/{id}/key-handover", h.ConfirmKeyHandover).Methods(http.MethodPost).Name("applications.key_handover")

	// Agreements
	r.HandleFunc("/agreements", h.ListAgreements).Methods(http.MethodGet).Name("agreements.list")
	r.HandleFunc("/agreements/{id}", h.GetAgreement).Methods(http.MethodGet).Name("agreements.get")
	r.HandleFunc("/agreements/{id}/signature/initiate", h.InitiateSignature).Methods(http.MethodPost).Name("agreements.signature_initiate")
	r.HandleFunc("/agreements/{id}/signature/verify", h.VerifySignature).Methods(http.MethodPost).Name("agreements.signature_verify")

	// Ledger
	r.HandleFunc("/payments", h.ListPayments).Methods(http.MethodGet).Name("payments.list")
	r.HandleFunc("/payments/summary", h.PaymentSummary).Methods(http.MethodGet).Name("payments.summary")
	r.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet).Name("notifications.list")
	r.HandleFunc("/notifications/read-all", h.MarkAllRead).Methods(http.MethodPost).Name("notifications.read_all")

	// Bills and disputes
	r.HandleFunc("/bills", h.IssueBill).Methods(http.MethodPost).Name("bills.issue")
	r.HandleFunc("/bills", h.ListBills).Methods(http.MethodGet).Name("bills.list")
	r.HandleFunc("/bills/{id}/pay", h.PayBill).Methods(http.MethodPost).Name("bills.pay")
	r.HandleFunc("/disputes", h.OpenDispute).Methods(http.MethodPost).Name("disputes.open")
	r.HandleFunc("/disputes", h.ListDisputes).Methods(http.MethodGet).Name("disputes.list")
	r.HandleFunc("/disputes/{id}/resolve", h.ResolveDispute).Methods(http.MethodPost).Name("disputes.resolve")

	// Admin
	r.HandleFunc("/admin/users", h.AdminListUsers).Methods(http.MethodGet).Name("admin.users")
	r.HandleFunc("/admin/stats", h.AdminStats).Methods(http.MethodGet).Name("admin.stats")
	r.HandleFunc("/admin/verifications", h.AdminPendingVerifications).Methods(http.MethodGet).Name("admin.verifications")
	r.HandleFunc("/admin/verifications/{id}/review", h.AdminReviewKYC).Methods(http.MethodPost).Name("admin.verification_review")
	r.HandleFunc("/admin/properties/{id}/availability", h.AdminSetAvailability).Methods(http.MethodPut).Name("admin.property_availability")

	// Verification documents
	r.HandleFunc("/uploads", h.NewUpload).Methods(http.MethodPost).Name("uploads.create")
	r.HandleFunc("/uploads/{key:.+}", h.PutUpload).Methods(http.MethodPut).Name("uploads.put")
	r.HandleFunc("/uploads/{key:.+}", h.GetUpload).Methods(http.MethodGet).Name("uploads.get")

	return root
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
