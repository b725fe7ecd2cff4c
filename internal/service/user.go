package service

import (
	"context"
	"fmt"
	"strings"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
)

type userService struct {
	Deps
}

func NewUserService(d Deps) UserService {
	return &userService{Deps: d}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.Store.Users().GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		user.Name = name
	}
	if upd.Phone != nil {
		user.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.PushToken != nil {
		user.PushToken = strings.TrimSpace(*upd.PushToken)
	}
	user.UpdatedAt = s.now()
	if err := s.Store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SubmitKYC(ctx context.Context, userID, documentType, documentNumber, documentKey string) (*domain.Verification, error) {
	logger.EnterMethod("UserService.SubmitKYC", "userID", userID, "documentType", documentType)

	if strings.TrimSpace(documentType) == "" || strings.TrimSpace(documentNumber) == "" {
		return nil, domain.Invalid("document type and number are required")
	}
	var v *domain.Verification
	err := s.inTx(ctx, func(w *writer) error {
		user, err := w.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.KYCStatus == domain.KYCStatusVerified {
			return fmt.Errorf("%w: already verified", domain.ErrAlreadyExists)
		}
		v = &domain.Verification{
			UserID:         userID,
			DocumentType:   strings.TrimSpace(documentType),
			DocumentNumber: strings.TrimSpace(documentNumber),
			DocumentKey:    documentKey,
			Status:         domain.KYCStatusPending,
			SubmittedAt:    s.now(),
		}
		if err := w.Verifications().Create(ctx, v); err != nil {
			return err
		}
		user.KYCStatus = domain.KYCStatusPending
		user.UpdatedAt = s.now()
		if err := w.Users().Update(ctx, user); err != nil {
			return err
		}
		return w.activity(ctx, userID, "KYC_SUBMITTED", v.DocumentType, v.ID)
	})
	if err != nil {
		logger.ExitMethodWithError("UserService.SubmitKYC", err)
		return nil, err
	}
	logger.ExitMethod("UserService.SubmitKYC", "verificationID", v.ID)
	return v, nil
}

func (s *userService) ListActivity(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Store.Activities().ListByUser(ctx, userID, limit)
}
