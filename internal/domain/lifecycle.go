package domain

type ViewingEvent string

const (
	ViewingEventAccept       ViewingEvent = "accept"
	ViewingEventDecline      ViewingEvent = "decline"
	ViewingEventCancel       ViewingEvent = "cancel"
	ViewingEventComplete     ViewingEvent = "complete"
	ViewingEventTenantReject ViewingEvent = "tenant_reject"
)

type ApplicationEvent string

const (
	ApplicationEventApprove             ApplicationEvent = "approve"
	ApplicationEventReject              ApplicationEvent = "reject"
	ApplicationEventFinalizeAgreement   ApplicationEvent = "finalize_agreement"
	ApplicationEventPayPlatformFee      ApplicationEvent = "pay_platform_fee"
	ApplicationEventAgreementSigned     ApplicationEvent = "agreement_signed"
	ApplicationEventPaymentSucceeded    ApplicationEvent = "payment_succeeded"
	ApplicationEventKeyHandover         ApplicationEvent = "key_handover"
	ApplicationEventOfflineSubmitted    ApplicationEvent = "offline_submitted"
	ApplicationEventOfflineAcknowledged ApplicationEvent = "offline_acknowledged"
)

type viewingEdge struct {
	from  ViewingStatus
	event ViewingEvent
}

type applicationEdge struct {
	from  ApplicationStatus
	event ApplicationEvent
}

var viewingTransitions = map[viewingEdge]ViewingStatus{
	{ViewingStatusRequested, ViewingEventAccept}:       ViewingStatusAccepted,
	{ViewingStatusRequested, ViewingEventDecline}:      ViewingStatusDeclined,
	{ViewingStatusRequested, ViewingEventCancel}:       ViewingStatusCancelled,
	{ViewingStatusAccepted, ViewingEventComplete}:      ViewingStatusCompleted,
	{ViewingStatusAccepted, ViewingEventCancel}:        ViewingStatusCancelled,
	{ViewingStatusCompleted, ViewingEventTenantReject}: ViewingStatusTenantRejected,
}

var applicationTransitions = map[applicationEdge]ApplicationStatus{
	{ApplicationStatusPending, ApplicationEventApprove}:                           ApplicationStatusApproved,
	{ApplicationStatusPending, ApplicationEventReject}:                            ApplicationStatusRejected,
	{ApplicationStatusApproved, ApplicationEventReject}:                           ApplicationStatusRejected,
	{ApplicationStatusAgreementSent, ApplicationEventReject}:                      ApplicationStatusRejected,
	{ApplicationStatusPending, ApplicationEventFinalizeAgreement}:                 ApplicationStatusAgreementSent,
	{ApplicationStatusApproved, ApplicationEventPayPlatformFee}:                   ApplicationStatusRentDue,
	{ApplicationStatusAgreementSent, ApplicationEventAgreementSigned}:             ApplicationStatusDepositDue,
	{ApplicationStatusDepositDue, ApplicationEventPaymentSucceeded}:               ApplicationStatusMoveInReady,
	{ApplicationStatusMoveInReady, ApplicationEventKeyHandover}:                   ApplicationStatusCompleted,
	{ApplicationStatusRentDue, ApplicationEventPaymentSucceeded}:                  ApplicationStatusRentPaid,
	{ApplicationStatusRentDue, ApplicationEventOfflineSubmitted}:                  ApplicationStatusOfflinePaymentPending,
	{ApplicationStatusOfflinePaymentPending, ApplicationEventOfflineAcknowledged}: ApplicationStatusRentPaid,
}

// NextViewingStatus looks up the status a viewing moves to on event.
func NextViewingStatus(from ViewingStatus, event ViewingEvent) (ViewingStatus, error) {
	to, ok := viewingTransitions[viewingEdge{from, event}]
	if !ok {
		return from, &TransitionError{Entity: "viewing", From: string(from), Event: string(event)}
	}
	return to, nil
}

// NextApplicationStatus looks up the status an application moves to on event.
func NextApplicationStatus(from ApplicationStatus, event ApplicationEvent) (ApplicationStatus, error) {
	to, ok := applicationTransitions[applicationEdge{from, event}]
	if !ok {
		return from, &TransitionError{Entity: "application", From: string(from), Event: string(event)}
	}
	return to, nil
}

// ViewingEventFor maps an owner-requested target status to its event.
func ViewingEventFor(target ViewingStatus) (ViewingEvent, bool) {
	switch target {
	case ViewingStatusAccepted:
		return ViewingEventAccept, true
	case ViewingStatusDeclined:
		return ViewingEventDecline, true
	case ViewingStatusCompleted:
		return ViewingEventComplete, true
	}
	return "", false
}
