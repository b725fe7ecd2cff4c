package service

import (
	"context"
	"fmt"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
)

type adminService struct {
	Deps
}

func NewAdminService(d Deps) AdminService {
	return &adminService{Deps: d}
}

func (s *adminService) requireAdmin(ctx context.Context, adminID string) error {
	_, err := requireRole(ctx, s.Store.Users(), adminID, domain.UserRoleSuperAdmin)
	return err
}

func (s *adminService) ReviewKYC(ctx context.Context, adminID, verificationID string, approve bool, notes string) (*domain.Verification, error) {
	logger.EnterMethod("AdminService.ReviewKYC", "adminID", adminID, "verificationID", verificationID, "approve", approve)
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	var v *domain.Verification
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		v, err = w.Verifications().GetByID(ctx, verificationID)
		if err != nil {
			return err
		}
		if v.Status != domain.KYCStatusPending {
			return &domain.TransitionError{Entity: "verification", From: string(v.Status), Event: "review"}
		}
		status := domain.KYCStatusRejected
		if approve {
			status = domain.KYCStatusVerified
		}
		now := s.now()
		v.Status = status
		v.ReviewerID = &adminID
		v.ReviewNotes = notes
		v.ReviewedAt = &now
		if err := w.Verifications().Update(ctx, v); err != nil {
			return err
		}

		user, err := w.Users().GetByID(ctx, v.UserID)
		if err != nil {
			return err
		}
		from := user.KYCStatus
		user.KYCStatus = status
		user.UpdatedAt = now
		if err := w.Users().Update(ctx, user); err != nil {
			return err
		}
		logger.Transition("kyc", user.ID, string(from), string(status), "verificationID", v.ID)

		msg := "Your identity verification was approved"
		if !approve {
			msg = "Your identity verification was rejected"
			if notes != "" {
				msg += ": " + notes
			}
		}
		if err := w.notify(ctx, user.ID, domain.NotificationKYCUpdated, v.ID, msg); err != nil {
			return err
		}
		return w.activity(ctx, adminID, "KYC_REVIEWED", string(status), v.ID)
	})
	if err != nil {
		logger.ExitMethodWithError("AdminService.ReviewKYC", err)
		return nil, err
	}
	logger.ExitMethod("AdminService.ReviewKYC", "status", v.Status)
	return v, nil
}

func (s *adminService) ListPendingVerifications(ctx context.Context, adminID string) ([]domain.Verification, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.Store.Verifications().ListByStatus(ctx, domain.KYCStatusPending)
}

func (s *adminService) ListUsers(ctx context.Context, adminID string, role domain.UserRole) ([]domain.User, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.Store.Users().List(ctx, role)
}

func (s *adminService) PlatformStats(ctx context.Context, adminID string) (*domain.PlatformStats, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	users, err := s.Store.Users().CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	properties, err := s.Store.Properties().CountByAvailability(ctx)
	if err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}
	applications, err := s.Store.Applications().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	fees, err := s.Store.Payments().SumByType(ctx, domain.PaymentTypePlatformFee)
	if err != nil {
		return nil, fmt.Errorf("sum platform fees: %w", err)
	}
	open, err := s.Store.Disputes().CountOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("count disputes: %w", err)
	}
	return &domain.PlatformStats{
		UsersByRole:              users,
		PropertiesByAvailability: properties,
		ApplicationsByStatus:     applications,
		PlatformFeesCollected:    fees,
		OpenDisputes:             open,
	}, nil
}

func (s *adminService) SetPropertyAvailability(ctx context.Context, adminID, propertyID string, availability domain.Availability) (*domain.Property, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	p, err := s.Store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return setAvailability(ctx, s.Deps, adminID, p, availability)
}
