package service

import (
	"context"
	"fmt"
	"strings"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
)

type billService struct {
	Deps
}

func NewBillService(d Deps) BillService {
	return &billService{Deps: d}
}

func validBillCategory(c domain.BillCategory) bool {
	switch c {
	case domain.BillCategoryElectricity, domain.BillCategoryWater, domain.BillCategoryMaintenance,
		domain.BillCategoryInternet, domain.BillCategoryOther:
		return true
	}
	return false
}

// IssueBill charges a utility or maintenance bill to a tenant who lives in the property.
func (s *billService) IssueBill(ctx context.Context, ownerID string, in BillInput) (*domain.Bill, error) {
	if !validBillCategory(in.Category) {
		return nil, domain.Invalid("unknown bill category %q", in.Category)
	}
	if !in.Amount.IsPositive() {
		return nil, domain.Invalid("amount must be positive")
	}
	if in.DueDate.IsZero() {
		return nil, domain.Invalid("due date is required")
	}

	property, err := s.Store.Properties().GetByID(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: not the owner of this property", domain.ErrForbidden)
	}
	resident, err := s.isResident(ctx, in.TenantID, property.ID)
	if err != nil {
		return nil, err
	}
	if !resident {
		return nil, domain.Invalid("tenant %s does not live in this property", in.TenantID)
	}

	bill := &domain.Bill{
		PropertyID:  property.ID,
		TenantID:    in.TenantID,
		OwnerID:     ownerID,
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		DueDate:     in.DueDate.UTC(),
		Status:      domain.BillStatusUnpaid,
		CreatedAt:   s.now(),
	}
	err = s.inTx(ctx, func(w *writer) error {
		if err := w.Bills().Create(ctx, bill); err != nil {
			return err
		}
		if err := w.notify(ctx, in.TenantID, domain.NotificationBillIssued, bill.ID,
			fmt.Sprintf("New %s bill of %s for %s, due %s", strings.ToLower(string(bill.Category)), money(bill.Amount),
				property.Title, bill.DueDate.Format("02 Jan 2006"))); err != nil {
			return err
		}
		return w.activity(ctx, ownerID, "BILL_ISSUED", string(bill.Category), bill.ID)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// isResident reports whether the tenant has moved in or holds an active agreement.
func (s *billService) isResident(ctx context.Context, tenantID, propertyID string) (bool, error) {
	apps, err := s.Store.Applications().List(ctx, domain.ApplicationFilter{
		PropertyID: propertyID,
		RenterID:   tenantID,
		Statuses:   []domain.ApplicationStatus{domain.ApplicationStatusCompleted},
	})
	if err != nil {
		return false, err
	}
	if len(apps) > 0 {
		return true, nil
	}
	agreements, err := s.Store.Agreements().ListByUser(ctx, tenantID)
	if err != nil {
		return false, err
	}
	for i := range agreements {
		if agreements[i].PropertyID == propertyID && agreements[i].TenantID == tenantID && agreements[i].Active() {
			return true, nil
		}
	}
	return false, nil
}

func (s *billService) PayBill(ctx context.Context, tenantID, billID, reference string) (*domain.Bill, error) {
	var bill *domain.Bill
	err := s.inTx(ctx, func(w *writer) error {
		var err error
		bill, err = w.Bills().GetByID(ctx, billID)
		if err != nil {
			return err
		}
		if bill.TenantID != tenantID {
			return fmt.Errorf("%w: bill belongs to another tenant", domain.ErrForbidden)
		}
		if bill.Status != domain.BillStatusUnpaid {
			return &domain.TransitionError{Entity: "bill", From: string(bill.Status), Event: "pay"}
		}

		payment := &domain.Payment{
			UserID:     tenantID,
			PropertyID: bill.PropertyID,
			BillID:     &bill.ID,
			Type:       domain.PaymentTypeBill,
			Amount:     bill.Amount,
			Reference:  reference,
		}
		if err := w.pay(ctx, payment); err != nil {
			return err
		}
		now := s.now()
		bill.Status = domain.BillStatusPaid
		bill.PaymentID = &payment.ID
		bill.PaidAt = &now
		if err := w.Bills().Update(ctx, bill); err != nil {
			return err
		}
		if err := w.Users().AddOwnerCredit(ctx, bill.OwnerID, bill.Amount); err != nil {
			return err
		}
		logger.Transition("bill", bill.ID, string(domain.BillStatusUnpaid), string(domain.BillStatusPaid))
		return w.notify(ctx, bill.OwnerID, domain.NotificationBillPaid, bill.ID,
			fmt.Sprintf("The %s bill of %s was paid", strings.ToLower(string(bill.Category)), money(bill.Amount)))
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *billService) ListBills(ctx context.Context, userID string) ([]domain.Bill, error) {
	return s.Store.Bills().ListByUser(ctx, userID)
}
