package domain

import "time"

type NotificationType string

const (
	NotificationViewingRequested           NotificationType = "VIEWING_REQUESTED"
	NotificationViewingConfirmation        NotificationType = "VIEWING_CONFIRMATION"
	NotificationViewingAccepted            NotificationType = "VIEWING_ACCEPTED"
	NotificationViewingDeclined            NotificationType = "VIEWING_DECLINED"
	NotificationViewingRefunded            NotificationType = "VIEWING_REFUNDED"
	NotificationViewingStatusChanged       NotificationType = "VIEWING_STATUS_CHANGED"
	NotificationViewingCancelled           NotificationType = "VIEWING_CANCELLED"
	NotificationRentInterest               NotificationType = "RENT_INTEREST"
	NotificationApplicationReceived        NotificationType = "APPLICATION_RECEIVED"
	NotificationApplicationApproved        NotificationType = "APPLICATION_APPROVED"
	NotificationApplicationRejected        NotificationType = "APPLICATION_REJECTED"
	NotificationAgreementSent              NotificationType = "AGREEMENT_SENT"
	NotificationSignatureRequired          NotificationType = "SIGNATURE_REQUIRED"
	NotificationSignatureOTP               NotificationType = "SIGNATURE_OTP"
	NotificationAgreementComplete          NotificationType = "AGREEMENT_COMPLETE"
	NotificationPaymentDue                 NotificationType = "PAYMENT_DUE"
	NotificationPaymentReceived            NotificationType = "PAYMENT_RECEIVED"
	NotificationPaymentFailed              NotificationType = "PAYMENT_FAILED"
	NotificationMoveInReady                NotificationType = "MOVE_IN_READY"
	NotificationKeyHandoverComplete        NotificationType = "KEY_HANDOVER_COMPLETE"
	NotificationRentDueSoon                NotificationType = "RENT_DUE_SOON"
	NotificationRentDue                    NotificationType = "RENT_DUE"
	NotificationRentOverdue                NotificationType = "RENT_OVERDUE"
	NotificationOfflinePaymentSubmitted    NotificationType = "OFFLINE_PAYMENT_SUBMITTED"
	NotificationOfflinePaymentAcknowledged NotificationType = "OFFLINE_PAYMENT_ACKNOWLEDGED"
	NotificationBillIssued                 NotificationType = "BILL_ISSUED"
	NotificationBillPaid                   NotificationType = "BILL_PAID"
	NotificationKYCUpdated                 NotificationType = "KYC_UPDATED"
	NotificationDisputeOpened              NotificationType = "DISPUTE_OPENED"
	NotificationDisputeResolved            NotificationType = "DISPUTE_RESOLVED"
)

// AttrBillingPeriod tags rent-cycle notifications with their YYYY-MM period.
const AttrBillingPeriod = "billing_period"

type Notification struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Type       NotificationType  `json:"type"`
	Message    string            `json:"message"`
	RelatedID  string            `json:"related_id"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NotificationKey identifies a notification for de-duplication.
type NotificationKey struct {
	UserID        string
	Type          NotificationType
	RelatedID     string
	BillingPeriod string
}

func (n *Notification) Key() NotificationKey {
	return NotificationKey{
		UserID:        n.UserID,
		Type:          n.Type,
		RelatedID:     n.RelatedID,
		BillingPeriod: n.Attributes[AttrBillingPeriod],
	}
}
