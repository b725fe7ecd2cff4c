package http

import (
	"net/http"

	"rentnest-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type propertyRequest struct {
	Title           string          `json:"title" validate:"required"`
	Description     string          `json:"description"`
	Address         string          `json:"address" validate:"required"`
	City            string          `json:"city" validate:"required"`
	Bedrooms        int             `json:"bedrooms" validate:"gte=0"`
	Rent            decimal.Decimal `json:"rent"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	ViewingAdvance  decimal.Decimal `json:"viewing_advance"`
}

func (p propertyRequest) toDomain() *domain.Property {
	return &domain.Property{
		Title:           p.Title,
		Description:     p.Description,
		Address:         p.Address,
		City:            p.City,
		Bedrooms:        p.Bedrooms,
		Rent:            p.Rent,
		SecurityDeposit: p.SecurityDeposit,
		ViewingAdvance:  p.ViewingAdvance,
	}
}

type availabilityRequest struct {
	Availability string `json:"availability" validate:"required,oneof=available rented"`
}

type propertyListResponse struct {
	Properties []domain.Property `json:"properties"`
	Total      int               `json:"total"`
}

func (h *Handler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.PropertyFilter{
		City:          q.Get("city"),
		AvailableOnly: q.Get("available") == "true",
	}
	if raw := q.Get("max_rent"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, domain.Invalid("max_rent must be a number"))
			return
		}
		filter.MaxRent = d
	}
	var err error
	if filter.MinBedrooms, err = queryInt(r, "min_bedrooms", 0); err != nil {
		writeError(w, err)
		return
	}
	if filter.Page, err = queryInt(r, "page", 1); err != nil {
		writeError(w, err)
		return
	}
	if filter.PageSize, err = queryInt(r, "page_size", 20); err != nil {
		writeError(w, err)
		return
	}

	props, total, err := h.svc.Property.SearchProperties(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, propertyListResponse{Properties: props, Total: total})
}

func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Property.GetProperty(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.svc.Property.CreateProperty(r.Context(), userID(r), req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p := req.toDomain()
	p.ID = pathID(r)
	p, err := h.svc.Property.UpdateProperty(r.Context(), userID(r), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.svc.Property.SetAvailability(r.Context(), userID(r), pathID(r), domain.Availability(req.Availability))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ListMyProperties(w http.ResponseWriter, r *http.Request) {
	props, err := h.svc.Property.ListMyProperties(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, propertyListResponse{Properties: props, Total: len(props)})
}

func (h *Handler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.Property.GenerateDescription(r.Context(), userID(r), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"description": text})
}
