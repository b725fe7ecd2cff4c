package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/utils"
)

// AttrOverdueDays tags overdue reminders with the day count they were sent for.
const AttrOverdueDays = "overdue_days"

type rentCycleService struct {
	Deps
}

func NewRentCycleService(d Deps) RentCycleService {
	return &rentCycleService{Deps: d}
}

type periodKey struct {
	agreementID string
	period      domain.BillingPeriod
}

// Run creates this month's rent applications for every active agreement and sends
// pre-due reminders. Calling it repeatedly within a month changes nothing further.
func (s *rentCycleService) Run(ctx context.Context, now time.Time) (RentCycleResult, error) {
	logger.EnterMethod("RentCycleService.Run", "now", now)
	var result RentCycleResult

	agreements, err := s.Store.Agreements().ListActive(ctx)
	if err != nil {
		logger.ExitMethodWithError("RentCycleService.Run", err)
		return result, err
	}

	today := utils.StartOfDay(now)
	period := domain.PeriodOf(today)
	generated := make(map[periodKey]bool)
	notified := make(map[domain.NotificationKey]bool)

	for i := range agreements {
		agreement := &agreements[i]
		result.AgreementsScanned++

		if !period.After(domain.PeriodOf(agreement.StartDate)) {
			result.Skipped++
			continue
		}
		if origin, err := s.Store.Applications().GetByID(ctx, agreement.ApplicationID); err == nil && origin.Status == domain.ApplicationStatusRejected {
			logger.Warn("Skipping agreement of a rejected application", "agreementID", agreement.ID, "applicationID", origin.ID)
			result.Skipped++
			continue
		} else if err != nil && !domain.IsNotFound(err) {
			return result, err
		}
		tenant, err := s.Store.Users().GetByID(ctx, agreement.TenantID)
		if domain.IsNotFound(err) {
			logger.Warn("Skipping agreement with missing tenant", "agreementID", agreement.ID, "tenantID", agreement.TenantID)
			result.Skipped++
			continue
		} else if err != nil {
			return result, err
		}
		property, err := s.Store.Properties().GetByID(ctx, agreement.PropertyID)
		if domain.IsNotFound(err) {
			logger.Warn("Skipping agreement with missing property", "agreementID", agreement.ID, "propertyID", agreement.PropertyID)
			result.Skipped++
			continue
		} else if err != nil {
			return result, err
		}

		dueDate := utils.DueDateInMonth(period.Year, period.Month, agreement.StartDate.Day())
		daysUntilDue := utils.DaysBetween(today, dueDate)

		switch {
		case daysUntilDue > 0 && daysUntilDue <= s.Settings.ReminderDaysBefore:
			sent, err := s.remind(ctx, agreement, tenant, property, period, dueDate, notified)
			if err != nil {
				return result, err
			}
			if sent {
				result.RemindersSent++
			}
		case daysUntilDue <= 0:
			created, err := s.generate(ctx, agreement, property, period, dueDate, generated, notified)
			if err != nil {
				return result, err
			}
			if created {
				result.ApplicationsGenerated++
			}
		}
	}

	logger.ExitMethod("RentCycleService.Run",
		"scanned", result.AgreementsScanned,
		"reminders", result.RemindersSent,
		"generated", result.ApplicationsGenerated,
		"skipped", result.Skipped)
	return result, nil
}

func (s *rentCycleService) remind(ctx context.Context, agreement *domain.Agreement, tenant *domain.User, property *domain.Property, period domain.BillingPeriod, dueDate time.Time, notified map[domain.NotificationKey]bool) (bool, error) {
	key := domain.NotificationKey{
		UserID:        tenant.ID,
		Type:          domain.NotificationRentDueSoon,
		RelatedID:     agreement.ID,
		BillingPeriod: period.String(),
	}
	if notified[key] {
		return false, nil
	}
	exists, err := s.Store.Notifications().Exists(ctx, key)
	if err != nil {
		return false, err
	}
	notified[key] = true
	if exists {
		return false, nil
	}

	err = s.inTx(ctx, func(w *writer) error {
		return w.notifyWith(ctx, tenant.ID, domain.NotificationRentDueSoon, agreement.ID,
			fmt.Sprintf("Rent of %s for %s is due on %s", money(agreement.RentAmount), property.Title, dueDate.Format("02 Jan 2006")),
			map[string]string{domain.AttrBillingPeriod: period.String()})
	})
	return err == nil, err
}

func (s *rentCycleService) generate(ctx context.Context, agreement *domain.Agreement, property *domain.Property, period domain.BillingPeriod, dueDate time.Time, generated map[periodKey]bool, notified map[domain.NotificationKey]bool) (bool, error) {
	pk := periodKey{agreementID: agreement.ID, period: period}
	if generated[pk] {
		return false, nil
	}
	existing, err := s.Store.Applications().List(ctx, domain.ApplicationFilter{
		AgreementID: agreement.ID,
		Period:      &period,
		Statuses:    domain.RentCycleStatuses,
	})
	if err != nil {
		return false, err
	}
	generated[pk] = true
	if len(existing) > 0 {
		return false, nil
	}

	app := &domain.Application{
		PropertyID:    agreement.PropertyID,
		RenterID:      agreement.TenantID,
		OwnerID:       agreement.OwnerID,
		Kind:          domain.ApplicationKindRentCycle,
		AgreementID:   &agreement.ID,
		BillingPeriod: &domain.BillingPeriod{Year: period.Year, Month: period.Month},
		Status:        domain.ApplicationStatusRentDue,
		Amount:        agreement.RentAmount,
		DueDate:       &dueDate,
	}
	created := false
	err = s.inTx(ctx, func(w *writer) error {
		var err error
		created, err = w.Applications().CreateRentCycle(ctx, app)
		if err != nil || !created {
			return err
		}
		if err := w.activity(ctx, agreement.TenantID, "RENT_GENERATED", period.String(), app.ID); err != nil {
			return err
		}
		key := domain.NotificationKey{
			UserID:        agreement.TenantID,
			Type:          domain.NotificationRentDue,
			RelatedID:     agreement.ID,
			BillingPeriod: period.String(),
		}
		if notified[key] {
			return nil
		}
		exists, err := w.Notifications().Exists(ctx, key)
		if err != nil || exists {
			return err
		}
		notified[key] = true
		return w.notifyWith(ctx, agreement.TenantID, domain.NotificationRentDue, agreement.ID,
			fmt.Sprintf("Rent of %s for %s (%s) is due on %s", money(agreement.RentAmount), property.Title, period, dueDate.Format("02 Jan 2006")),
			map[string]string{domain.AttrBillingPeriod: period.String()})
	})
	if err != nil {
		return false, err
	}
	if created {
		logger.Info("Rent application generated", "agreementID", agreement.ID, "period", period.String(), "applicationID", app.ID)
	}
	return created, nil
}

// SendOverdueReminders nudges tenants whose rent is unpaid past the grace period.
// Each application gets one reminder per overdue day count.
func (s *rentCycleService) SendOverdueReminders(ctx context.Context, now time.Time) (int, error) {
	logger.EnterMethod("RentCycleService.SendOverdueReminders", "now", now)

	today := utils.StartOfDay(now)
	cutoff := today.AddDate(0, 0, -s.Settings.OverdueAfterDays)
	apps, err := s.Store.Applications().List(ctx, domain.ApplicationFilter{
		Statuses:  []domain.ApplicationStatus{domain.ApplicationStatusRentDue},
		DueBefore: &cutoff,
	})
	if err != nil {
		logger.ExitMethodWithError("RentCycleService.SendOverdueReminders", err)
		return 0, err
	}

	sent := 0
	for i := range apps {
		app := &apps[i]
		if app.DueDate == nil {
			continue
		}
		overdue := utils.DaysBetween(*app.DueDate, today)
		if overdue < s.Settings.OverdueAfterDays {
			continue
		}
		period := ""
		if app.BillingPeriod != nil {
			period = app.BillingPeriod.String()
		}
		bucket := period + "+" + strconv.Itoa(overdue)
		key := domain.NotificationKey{
			UserID:        app.RenterID,
			Type:          domain.NotificationRentOverdue,
			RelatedID:     app.ID,
			BillingPeriod: bucket,
		}
		exists, err := s.Store.Notifications().Exists(ctx, key)
		if err != nil {
			return sent, err
		}
		if exists {
			continue
		}
		err = s.inTx(ctx, func(w *writer) error {
			title := propertyTitle(ctx, w, app.PropertyID)
			return w.notifyWith(ctx, app.RenterID, domain.NotificationRentOverdue, app.ID,
				fmt.Sprintf("Rent of %s for %s is %d days overdue", money(app.Amount), title, overdue),
				map[string]string{
					domain.AttrBillingPeriod: bucket,
					AttrOverdueDays:          strconv.Itoa(overdue),
				})
		})
		if err != nil {
			return sent, err
		}
		sent++
	}

	logger.ExitMethod("RentCycleService.SendOverdueReminders", "sent", sent)
	return sent, nil
}
