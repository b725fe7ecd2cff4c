package service

import (
	"context"
	"fmt"
	"strings"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
)

type propertyService struct {
	Deps
	descriptions DescriptionGenerator
}

func NewPropertyService(d Deps, descriptions DescriptionGenerator) PropertyService {
	return &propertyService{Deps: d, descriptions: descriptions}
}

func validateProperty(p *domain.Property) error {
	p.Title = strings.TrimSpace(p.Title)
	p.City = strings.TrimSpace(p.City)
	switch {
	case p.Title == "":
		return domain.Invalid("title is required")
	case p.City == "":
		return domain.Invalid("city is required")
	case p.Bedrooms < 0:
		return domain.Invalid("bedrooms must not be negative")
	case !p.Rent.IsPositive():
		return domain.Invalid("rent must be positive")
	case p.SecurityDeposit.IsNegative(), p.ViewingAdvance.IsNegative():
		return domain.Invalid("amounts must not be negative")
	}
	return nil
}

func (s *propertyService) ownedProperty(ctx context.Context, ownerID, propertyID string) (*domain.Property, error) {
	p, err := s.Store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: not the owner of this property", domain.ErrForbidden)
	}
	return p, nil
}

func (s *propertyService) CreateProperty(ctx context.Context, ownerID string, p *domain.Property) (*domain.Property, error) {
	if _, err := requireRole(ctx, s.Store.Users(), ownerID, domain.UserRoleOwner); err != nil {
		return nil, err
	}
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	p.ID = ""
	p.OwnerID = ownerID
	p.Availability = domain.AvailabilityAvailable
	err := s.inTx(ctx, func(w *writer) error {
		if err := w.Properties().Create(ctx, p); err != nil {
			return err
		}
		return w.activity(ctx, ownerID, "PROPERTY_LISTED", p.Title, p.ID)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Property listed", "propertyID", p.ID, "ownerID", ownerID)
	return p, nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, ownerID string, p *domain.Property) (*domain.Property, error) {
	existing, err := s.ownedProperty(ctx, ownerID, p.ID)
	if err != nil {
		return nil, err
	}
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	existing.Title = p.Title
	existing.Description = p.Description
	existing.Address = p.Address
	existing.City = p.City
	existing.Bedrooms = p.Bedrooms
	existing.Rent = p.Rent
	existing.SecurityDeposit = p.SecurityDeposit
	existing.ViewingAdvance = p.ViewingAdvance
	existing.UpdatedAt = s.now()
	if err := s.Store.Properties().Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *propertyService) GetProperty(ctx context.Context, propertyID string) (*domain.Property, error) {
	return s.Store.Properties().GetByID(ctx, propertyID)
}

func (s *propertyService) SearchProperties(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return s.Store.Properties().Search(ctx, filter)
}

func (s *propertyService) ListMyProperties(ctx context.Context, ownerID string) ([]domain.Property, error) {
	props, _, err := s.Store.Properties().Search(ctx, domain.PropertyFilter{OwnerID: ownerID, Page: 1, PageSize: 1000})
	return props, err
}

// SetAvailability is the owner's manual override, e.g. relisting after a tenant moves out.
func (s *propertyService) SetAvailability(ctx context.Context, ownerID, propertyID string, availability domain.Availability) (*domain.Property, error) {
	p, err := s.ownedProperty(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	return setAvailability(ctx, s.Deps, ownerID, p, availability)
}

func setAvailability(ctx context.Context, d Deps, actorID string, p *domain.Property, availability domain.Availability) (*domain.Property, error) {
	if availability != domain.AvailabilityAvailable && availability != domain.AvailabilityRented {
		return nil, domain.Invalid("unknown availability %q", availability)
	}
	from := p.Availability
	err := d.inTx(ctx, func(w *writer) error {
		if err := w.Properties().SetAvailability(ctx, p.ID, availability); err != nil {
			return err
		}
		return w.activity(ctx, actorID, "PROPERTY_AVAILABILITY", string(availability), p.ID)
	})
	if err != nil {
		return nil, err
	}
	p.Availability = availability
	logger.Transition("property", p.ID, string(from), string(availability), "actorID", actorID)
	return p, nil
}

// GenerateDescription returns suggested listing copy. The text is not saved.
func (s *propertyService) GenerateDescription(ctx context.Context, ownerID, propertyID string) (string, error) {
	p, err := s.ownedProperty(ctx, ownerID, propertyID)
	if err != nil {
		return "", err
	}
	if s.descriptions == nil {
		return "", fmt.Errorf("%w: description service is not configured", domain.ErrExternal)
	}
	return s.descriptions.GenerateDescription(ctx, p)
}
