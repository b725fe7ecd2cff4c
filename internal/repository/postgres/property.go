package postgres

import (
	"context"
	"fmt"
	"time"

	"rentnest-backend/internal/domain"
)

type propertyRepository struct {
	db querier
}

const propertyColumns = `id, owner_id, title, description, address, city, bedrooms, rent, security_deposit, viewing_advance, availability, created_at, updated_at`

func scanProperty(row rowScanner) (*domain.Property, error) {
	p := &domain.Property{}
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Address, &p.City, &p.Bedrooms, &p.Rent, &p.SecurityDeposit, &p.ViewingAdvance, &p.Availability, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *propertyRepository) Create(ctx context.Context, p *domain.Property) error {
	ensureID(&p.ID)
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Availability == "" {
		p.Availability = domain.AvailabilityAvailable
	}
	query := `INSERT INTO properties (` + propertyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.OwnerID, p.Title, p.Description, p.Address, p.City, p.Bedrooms, p.Rent, p.SecurityDeposit, p.ViewingAdvance, p.Availability, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "property", id)
	}
	return p, nil
}

func (r *propertyRepository) Update(ctx context.Context, p *domain.Property) error {
	p.UpdatedAt = time.Now().UTC()
	query := `UPDATE properties SET title=$1, description=$2, address=$3, city=$4, bedrooms=$5, rent=$6, security_deposit=$7, viewing_advance=$8, availability=$9, updated_at=$10 WHERE id=$11`
	res, err := r.db.ExecContext(ctx, query, p.Title, p.Description, p.Address, p.City, p.Bedrooms, p.Rent, p.SecurityDeposit, p.ViewingAdvance, p.Availability, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "property", p.ID)
}

func (r *propertyRepository) SetAvailability(ctx context.Context, id string, availability domain.Availability) error {
	query := `UPDATE properties SET availability=$1, updated_at=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, availability, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res, "property", id)
}

func (r *propertyRepository) Search(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, int, error) {
	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	where := ` WHERE 1=1`
	var args []any
	if f.City != "" {
		args = append(args, f.City)
		where += fmt.Sprintf(" AND LOWER(city) = LOWER($%d)", len(args))
	}
	if !f.MaxRent.IsZero() {
		args = append(args, f.MaxRent)
		where += fmt.Sprintf(" AND rent <= $%d", len(args))
	}
	if f.MinBedrooms > 0 {
		args = append(args, f.MinBedrooms)
		where += fmt.Sprintf(" AND bedrooms >= $%d", len(args))
	}
	if f.AvailableOnly {
		args = append(args, domain.AvailabilityAvailable)
		where += fmt.Sprintf(" AND availability = $%d", len(args))
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + propertyColumns + ` FROM properties` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var props []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		props = append(props, *p)
	}
	return props, count, rows.Err()
}

func (r *propertyRepository) CountByAvailability(ctx context.Context) (map[domain.Availability]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT availability, COUNT(*) FROM properties GROUP BY availability`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Availability]int)
	for rows.Next() {
		var a domain.Availability
		var n int
		if err := rows.Scan(&a, &n); err != nil {
			return nil, err
		}
		counts[a] = n
	}
	return counts, rows.Err()
}
