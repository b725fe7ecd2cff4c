package jobs

import (
	"context"

	"rentnest-backend/internal/logger"
)

// RunRentCycle generates this month's rent applications and pre-due reminders
func (jr *JobRunner) RunRentCycle() {
	jr.runWithRecovery("RunRentCycle", func() {
		ctx := context.Background()

		result, err := jr.services.RentCycle.Run(ctx, jr.now().UTC())
		if err != nil {
			logger.Error("Rent cycle failed", "error", err,
				"scanned", result.AgreementsScanned,
				"generated", result.ApplicationsGenerated)
			return
		}

		logger.Info("Rent cycle finished",
			"scanned", result.AgreementsScanned,
			"reminders", result.RemindersSent,
			"generated", result.ApplicationsGenerated,
			"skipped", result.Skipped)
	})
}

// SendRentOverdueReminders notifies tenants whose rent is past due
func (jr *JobRunner) SendRentOverdueReminders() {
	jr.runWithRecovery("SendRentOverdueReminders", func() {
		ctx := context.Background()

		sent, err := jr.services.RentCycle.SendOverdueReminders(ctx, jr.now().UTC())
		if err != nil {
			logger.Error("Failed to send overdue reminders", "error", err, "sent", sent)
			return
		}

		logger.Info("Overdue reminders sent", "count", sent)
	})
}
