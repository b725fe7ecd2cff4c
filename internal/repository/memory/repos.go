package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rentnest-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, u *domain.User) error {
	var err error
	r.s.write(func(d *tables) {
		for _, existing := range d.users.rows {
			if strings.EqualFold(existing.Email, u.Email) {
				err = fmt.Errorf("email %s: %w", u.Email, domain.ErrAlreadyExists)
				return
			}
		}
		ensureID(&u.ID)
		now := time.Now().UTC()
		u.CreatedAt, u.UpdatedAt = now, now
		if u.KYCStatus == "" {
			u.KYCStatus = domain.KYCStatusNotVerified
		}
		d.users.insert(u.ID, *u)
	})
	return err
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	var u domain.User
	var ok bool
	r.s.read(func(d *tables) { u, ok = d.users.get(id) })
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var found *domain.User
	r.s.read(func(d *tables) {
		for _, u := range d.users.rows {
			if strings.EqualFold(u.Email, email) {
				u := u
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, domain.NotFound("user", email)
	}
	return found, nil
}

func (r *userRepository) Update(_ context.Context, u *domain.User) error {
	var err error
	r.s.write(func(d *tables) {
		existing, ok := d.users.get(u.ID)
		if !ok {
			err = domain.NotFound("user", u.ID)
			return
		}
		u.UpdatedAt = time.Now().UTC()
		existing.Name, existing.Phone, existing.KYCStatus, existing.PushToken, existing.UpdatedAt = u.Name, u.Phone, u.KYCStatus, u.PushToken, u.UpdatedAt
		d.users.replace(u.ID, existing)
	})
	return err
}

func (r *userRepository) List(_ context.Context, role domain.UserRole) ([]domain.User, error) {
	var out []domain.User
	r.s.read(func(d *tables) {
		out = d.users.newestFirst(func(u domain.User) bool { return role == "" || u.Role == role })
	})
	return out, nil
}

func (r *userRepository) AddOwnerCredit(_ context.Context, userID string, amount decimal.Decimal) error {
	var err error
	r.s.write(func(d *tables) {
		u, ok := d.users.get(userID)
		if !ok {
			err = domain.NotFound("user", userID)
			return
		}
		u.OwnerCredit = u.OwnerCredit.Add(amount)
		u.UpdatedAt = time.Now().UTC()
		d.users.replace(userID, u)
	})
	return err
}

func (r *userRepository) CountByRole(_ context.Context) (map[domain.UserRole]int, error) {
	counts := make(map[domain.UserRole]int)
	r.s.read(func(d *tables) {
		for _, u := range d.users.rows {
			counts[u.Role]++
		}
	})
	return counts, nil
}

type propertyRepository struct{ s *Store }

func (r *propertyRepository) Create(_ context.Context, p *domain.Property) error {
	r.s.write(func(d *tables) {
		ensureID(&p.ID)
		now := time.Now().UTC()
		p.CreatedAt, p.UpdatedAt = now, now
		if p.Availability == "" {
			p.Availability = domain.AvailabilityAvailable
		}
		d.properties.insert(p.ID, *p)
	})
	return nil
}

func (r *propertyRepository) GetByID(_ context.Context, id string) (*domain.Property, error) {
	var p domain.Property
	var ok bool
	r.s.read(func(d *tables) { p, ok = d.properties.get(id) })
	if !ok {
		return nil, domain.NotFound("property", id)
	}
	return &p, nil
}

func (r *propertyRepository) Update(_ context.Context, p *domain.Property) error {
	var err error
	r.s.write(func(d *tables) {
		existing, ok := d.properties.get(p.ID)
		if !ok {
			err = domain.NotFound("property", p.ID)
			return
		}
		p.UpdatedAt = time.Now().UTC()
		p.OwnerID, p.CreatedAt = existing.OwnerID, existing.CreatedAt
		d.properties.replace(p.ID, *p)
	})
	return err
}

func (r *propertyRepository) SetAvailability(_ context.Context, id string, availability domain.Availability) error {
	var err error
	r.s.write(func(d *tables) {
		p, ok := d.properties.get(id)
		if !ok {
			err = domain.NotFound("property", id)
			return
		}
		p.Availability = availability
		p.UpdatedAt = time.Now().UTC()
		d.properties.replace(id, p)
	})
	return err
}

func (r *propertyRepository) Search(_ context.Context, f domain.PropertyFilter) ([]domain.Property, int, error) {
	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var matched []domain.Property
	r.s.read(func(d *tables) {
		matched = d.properties.newestFirst(func(p domain.Property) bool {
			switch {
			case f.City != "" && !strings.EqualFold(p.City, f.City):
				return false
			case !f.MaxRent.IsZero() && p.Rent.GreaterThan(f.MaxRent):
				return false
			case f.MinBedrooms > 0 && p.Bedrooms < f.MinBedrooms:
				return false
			case f.AvailableOnly && p.Availability != domain.AvailabilityAvailable:
				return false
			case f.OwnerID != "" && p.OwnerID != f.OwnerID:
				return false
			}
			return true
		})
	})

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *propertyRepository) CountByAvailability(_ context.Context) (map[domain.Availability]int, error) {
	counts := make(map[domain.Availability]int)
	r.s.read(func(d *tables) {
		for _, p := range d.properties.rows {
			counts[p.Availability]++
		}
	})
	return counts, nil
}

type viewingRepository struct{ s *Store }

func (r *viewingRepository) Create(_ context.Context, v *domain.Viewing) error {
	r.s.write(func(d *tables) {
		ensureID(&v.ID)
		now := time.Now().UTC()
		v.RequestedAt, v.UpdatedAt = now, now
		d.viewings.insert(v.ID, *v)
	})
	return nil
}

func (r *viewingRepository) GetByID(_ context.Context, id string) (*domain.Viewing, error) {
	var v domain.Viewing
	var ok bool
	r.s.read(func(d *tables) { v, ok = d.viewings.get(id) })
	if !ok {
		return nil, domain.NotFound("viewing", id)
	}
	return &v, nil
}

func (r *viewingRepository) Update(_ context.Context, v *domain.Viewing) error {
	var err error
	r.s.write(func(d *tables) {
		existing, ok := d.viewings.get(v.ID)
		if !ok {
			err = domain.NotFound("viewing", v.ID)
			return
		}
		v.UpdatedAt = time.Now().UTC()
		existing.Status, existing.AdvancePaymentID, existing.UpdatedAt = v.Status, v.AdvancePaymentID, v.UpdatedAt
		d.viewings.replace(v.ID, existing)
	})
	return err
}

func (r *viewingRepository) ListByUser(_ context.Context, userID string) ([]domain.Viewing, error) {
	var out []domain.Viewing
	r.s.read(func(d *tables) {
		out = d.viewings.newestFirst(func(v domain.Viewing) bool { return v.TenantID == userID || v.OwnerID == userID })
	})
	return out, nil
}

type applicationRepository struct{ s *Store }

func samePeriod(a, b *domain.BillingPeriod) bool {
	return a != nil && b != nil && *a == *b
}

func sameRef(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

func (r *applicationRepository) Create(_ context.Context, a *domain.Application) error {
	var err error
	r.s.write(func(d *tables) {
		for _, existing := range d.applications.rows {
			if sameRef(existing.SourceViewingID, a.SourceViewingID) ||
				(sameRef(existing.AgreementID, a.AgreementID) && samePeriod(existing.BillingPeriod, a.BillingPeriod)) {
				err = fmt.Errorf("application %s: %w", existing.ID, domain.ErrAlreadyExists)
				return
			}
		}
		r.insert(d, a)
	})
	return err
}

func (r *applicationRepository) insert(d *tables, a *domain.Application) {
	ensureID(&a.ID)
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	d.applications.insert(a.ID, *a)
}

func (r *applicationRepository) CreateRentCycle(_ context.Context, a *domain.Application) (bool, error) {
	created := false
	r.s.write(func(d *tables) {
		for _, existing := range d.applications.rows {
			if sameRef(existing.AgreementID, a.AgreementID) && samePeriod(existing.BillingPeriod, a.BillingPeriod) {
				return
			}
		}
		r.insert(d, a)
		created = true
	})
	return created, nil
}

func (r *applicationRepository) GetByID(_ context.Context, id string) (*domain.Application, error) {
	var a domain.Application
	var ok bool
	r.s.read(func(d *tables) { a, ok = d.applications.get(id) })
	if !ok {
		return nil, domain.NotFound("application", id)
	}
	return &a, nil
}

func (r *applicationRepository) GetBySourceViewing(_ context.Context, viewingID string) (*domain.Application, error) {
	var found *domain.Application
	r.s.read(func(d *tables) {
		for _, a := range d.applications.rows {
			if a.SourceViewingID != nil && *a.SourceViewingID == viewingID {
				a := detachApplication(a)
				found = &a
				return
			}
		}
	})
	if found == nil {
		return nil, domain.NotFound("application for viewing", viewingID)
	}
	return found, nil
}

func (r *applicationRepository) Update(_ context.Context, a *domain.Application) error {
	var err error
	r.s.write(func(d *tables) {
		existing, ok := d.applications.get(a.ID)
		if !ok {
			err = domain.NotFound("application", a.ID)
			return
		}
		a.UpdatedAt = time.Now().UTC()
		existing.Status, existing.Amount, existing.DueDate, existing.AgreementID = a.Status, a.Amount, a.DueDate, a.AgreementID
		existing.OfflinePayment, existing.UpdatedAt = a.OfflinePayment, a.UpdatedAt
		d.applications.replace(a.ID, existing)
	})
	return err
}

func (r *applicationRepository) List(_ context.Context, f domain.ApplicationFilter) ([]domain.Application, error) {
	var out []domain.Application
	r.s.read(func(d *tables) {
		out = d.applications.newestFirst(func(a domain.Application) bool {
			switch {
			case f.UserID != "" && !a.IsParticipant(f.UserID):
				return false
			case f.PropertyID != "" && a.PropertyID != f.PropertyID:
				return false
			case f.RenterID != "" && a.RenterID != f.RenterID:
				return false
			case f.AgreementID != "" && (a.AgreementID == nil || *a.AgreementID != f.AgreementID):
				return false
			case f.Period != nil && !samePeriod(a.BillingPeriod, f.Period):
				return false
			case f.DueBefore != nil && (a.DueDate == nil || a.DueDate.After(*f.DueBefore)):
				return false
			}
			if len(f.Statuses) == 0 {
				return true
			}
			for _, s := range f.Statuses {
				if a.Status == s {
					return true
				}
			}
			return false
		})
	})
	return out, nil
}

func (r *applicationRepository) CountByStatus(_ context.Context) (map[domain.ApplicationStatus]int, error) {
	counts := make(map[domain.ApplicationStatus]int)
	r.s.read(func(d *tables) {
		for _, a := range d.applications.rows {
			counts[a.Status]++
		}
	})
	return counts, nil
}

type agreementRepository struct{ s *Store }

func (r *agreementRepository) Create(_ context.Context, a *domain.Agreement) error {
	var err error
	r.s.write(func(d *tables) {
		for _, existing := range d.agreements.rows {
			if existing.ApplicationID == a.ApplicationID {
				err = fmt.Errorf("agreement for application %s: %w", a.ApplicationID, domain.ErrAlreadyExists)
				return
			}
		}
		ensureID(&a.ID)
		a.CreatedAt = time.Now().UTC()
		d.agreements.insert(a.ID, *a)
	})
	return err
}

func (r *agreementRepository) GetByID(_ context.Context, id string) (*domain.Agreement, error) {
	var a domain.Agreement
	var ok bool
	r.s.read(func(d *tables) { a, ok = d.agreements.get(id) })
	if !ok {
		return nil, domain.NotFound("agreement", id)
	}
	return &a, nil
}

func (r *agreementRepository) GetByApplication(_ context.Context, applicationID string) (*domain.Agreement, error) {
	var found *domain.Agreement
	r.s.read(func(d *tables) {
		for _, a := range d.agreements.rows {
			if a.ApplicationID == applicationID {
				a := a
				found = &a
				return
			}
		}
	})
	if found == nil {
		return nil, domain.NotFound("agreement for application", applicationID)
	}
	return found, nil
}

func (r *agreementRepository) Update(_ context.Context, a *domain.Agreement) error {
	var err error
	r.s.write(func(d *tables) {
		existing, ok := d.agreements.get(a.ID)
		if !ok {
			err = domain.NotFound("agreement", a.ID)
			return
		}
		a.ApplicationID, a.CreatedAt = existing.ApplicationID, existing.CreatedAt
		d.agreements.replace(a.ID, *a)
	})
	return err
}

func (r *agreementRepository) ListByUser(_ context.Context, userID string) ([]domain.Agreement, error) {
	var out []domain.Agreement
	r.s.read(func(d *tables) {
		out = d.agreements.newestFirst(func(a domain.Agreement) bool { return a.IsParticipant(userID) })
	})
	return out, nil
}

func (r *agreementRepository) ListActive(_ context.Context) ([]domain.Agreement, error) {
	var out []domain.Agreement
	r.s.read(func(d *tables) {
		for _, a := range d.agreements.rows {
			if a.Active() {
				out = append(out, a)
			}
		}
	})
	return out, nil
}

type paymentRepository struct{ s *Store }

func (r *paymentRepository) Create(_ context.Context, p *domain.Payment) error {
	r.s.write(func(d *tables) {
		ensureID(&p.ID)
		if p.PaymentDate.IsZero() {
			p.PaymentDate = time.Now().UTC()
		}
		d.payments.insert(p.ID, *p)
	})
	return nil
}

func (r *paymentRepository) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	var p domain.Payment
	var ok bool
	r.s.read(func(d *tables) { p, ok = d.payments.get(id) })
	if !ok {
		return nil, domain.NotFound("payment", id)
	}
	return &p, nil
}

func (r *paymentRepository) MarkRefunded(_ context.Context, id string) error {
	var err error
	r.s.write(func(d *tables) {
		p, ok := d.payments.get(id)
		if !ok {
			err = domain.NotFound("payment", id)
			return
		}
		if p.Status != domain.PaymentStatusPaid {
			err = &domain.TransitionError{Entity: "payment", From: string(p.Status), Event: "refund"}
			return
		}
		p.Status = domain.PaymentStatusRefunded
		d.payments.replace(id, p)
	})
	return err
}

func (r *paymentRepository) ListByUser(_ context.Context, userID string) ([]domain.Payment, error) {
	var out []domain.Payment
	r.s.read(func(d *tables) {
		out = d.payments.newestFirst(func(p domain.Payment) bool { return p.UserID == userID })
	})
	return out, nil
}

func (r *paymentRepository) SumByType(_ context.Context, paymentType domain.PaymentType) (decimal.Decimal, error) {
	total := decimal.Zero
	r.s.read(func(d *tables) {
		for _, p := range d.payments.rows {
			if p.Type == paymentType && p.Status == domain.PaymentStatusPaid {
				total = total.Add(p.Amount)
			}
		}
	})
	return total, nil
}

type notificationRepository struct{ s *Store }

func (r *notificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.s.write(func(d *tables) {
		ensureID(&n.ID)
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}
		row := *n
		if n.Attributes != nil {
			row.Attributes = make(map[string]string, len(n.Attributes))
			for k, v := range n.Attributes {
				row.Attributes[k] = v
			}
		}
		d.notifications.insert(n.ID, row)
	})
	return nil
}

func (r *notificationRepository) List(_ context.Context, userID string, limit, offset int) ([]domain.Notification, int, error) {
	var all []domain.Notification
	r.s.read(func(d *tables) {
		all = d.notifications.newestFirst(func(n domain.Notification) bool { return n.UserID == userID })
	})
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *notificationRepository) Exists(_ context.Context, key domain.NotificationKey) (bool, error) {
	found := false
	r.s.read(func(d *tables) {
		for i := range d.notifications.rows {
			if d.notifications.rows[i].Key() == key {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *notificationRepository) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var n int64
	r.s.write(func(d *tables) {
		for i := range d.notifications.rows {
			if d.notifications.rows[i].UserID == userID && !d.notifications.rows[i].IsRead {
				d.notifications.rows[i].IsRead = true
				n++
			}
		}
	})
	return n, nil
}

func (r *notificationRepository) CountUnread(_ context.Context, userID string) (int, error) {
	n := 0
	r.s.read(func(d *tables) {
		for _, note := range d.notifications.rows {
			if note.UserID == userID && !note.IsRead {
				n++
			}
		}
	})
	return n, nil
}

type activityRepository struct{ s *Store }

func (r *activityRepository) Create(_ context.Context, a *domain.ActivityLog) error {
	r.s.write(func(d *tables) {
		ensureID(&a.ID)
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		d.activities.insert(a.ID, *a)
	})
	return nil
}

func (r *activityRepository) ListByUser(_ context.Context, userID string, limit int) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	r.s.read(func(d *tables) {
		out = d.activities.newestFirst(func(a domain.ActivityLog) bool { return a.UserID == userID })
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type verificationRepository struct{ s *Store }

func (r *verificationRepository) Create(_ context.Context, v *domain.Verification) error {
	r.s.write(func(d *tables) {
		ensureID(&v.ID)
		v.SubmittedAt = time.Now().UTC()
		d.verifications.insert(v.ID, *v)
	})
	return nil
}

func (r *verificationRepository) GetByID(_ context.Context, id string) (*domain.Verification, error) {
	var v domain.Verification
	var ok bool
	r.s.read(func(d *tables) { v, ok = d.verifications.get(id) })
	if !ok {
		return nil, domain.NotFound("verification", id)
	}
	return &v, nil
}

func (r *verificationRepository) Update(_ context.Context, v *domain.Verification) error {
	var err error
	r.s.write(func(d *tables) {
		if !d.verifications.replace(v.ID, *v) {
			err = domain.NotFound("verification", v.ID)
		}
	})
	return err
}

func (r *verificationRepository) ListByStatus(_ context.Context, status domain.KYCStatus) ([]domain.Verification, error) {
	var out []domain.Verification
	r.s.read(func(d *tables) {
		for _, v := range d.verifications.rows {
			if v.Status == status {
				out = append(out, v)
			}
		}
	})
	return out, nil
}

type billRepository struct{ s *Store }

func (r *billRepository) Create(_ context.Context, b *domain.Bill) error {
	r.s.write(func(d *tables) {
		ensureID(&b.ID)
		b.CreatedAt = time.Now().UTC()
		d.bills.insert(b.ID, *b)
	})
	return nil
}

func (r *billRepository) GetByID(_ context.Context, id string) (*domain.Bill, error) {
	var b domain.Bill
	var ok bool
	r.s.read(func(d *tables) { b, ok = d.bills.get(id) })
	if !ok {
		return nil, domain.NotFound("bill", id)
	}
	return &b, nil
}

func (r *billRepository) Update(_ context.Context, b *domain.Bill) error {
	var err error
	r.s.write(func(d *tables) {
		if !d.bills.replace(b.ID, *b) {
			err = domain.NotFound("bill", b.ID)
		}
	})
	return err
}

func (r *billRepository) ListByUser(_ context.Context, userID string) ([]domain.Bill, error) {
	var out []domain.Bill
	r.s.read(func(d *tables) {
		out = d.bills.newestFirst(func(b domain.Bill) bool { return b.TenantID == userID || b.OwnerID == userID })
	})
	return out, nil
}

type disputeRepository struct{ s *Store }

func (r *disputeRepository) Create(_ context.Context, dp *domain.Dispute) error {
	r.s.write(func(d *tables) {
		ensureID(&dp.ID)
		dp.CreatedAt = time.Now().UTC()
		d.disputes.insert(dp.ID, *dp)
	})
	return nil
}

func (r *disputeRepository) GetByID(_ context.Context, id string) (*domain.Dispute, error) {
	var dp domain.Dispute
	var ok bool
	r.s.read(func(d *tables) { dp, ok = d.disputes.get(id) })
	if !ok {
		return nil, domain.NotFound("dispute", id)
	}
	return &dp, nil
}

func (r *disputeRepository) Update(_ context.Context, dp *domain.Dispute) error {
	var err error
	r.s.write(func(d *tables) {
		if !d.disputes.replace(dp.ID, *dp) {
			err = domain.NotFound("dispute", dp.ID)
		}
	})
	return err
}

func (r *disputeRepository) List(_ context.Context, userID string) ([]domain.Dispute, error) {
	var out []domain.Dispute
	r.s.read(func(d *tables) {
		out = d.disputes.newestFirst(func(dp domain.Dispute) bool {
			return userID == "" || dp.RaisedBy == userID || dp.AgainstUserID == userID
		})
	})
	return out, nil
}

func (r *disputeRepository) CountOpen(_ context.Context) (int, error) {
	n := 0
	r.s.read(func(d *tables) {
		for _, dp := range d.disputes.rows {
			if dp.Status == domain.DisputeStatusOpen {
				n++
			}
		}
	})
	return n, nil
}
