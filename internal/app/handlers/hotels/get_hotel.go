package hotels

import (
	"context"
	"strings"

	"hotelfront/internal/app/policies"
	"hotelfront/internal/app/queries"
	domainhotels "hotelfront/internal/domain/hotels"
)

const (
	getHotelKey      = "hotels.get"
	listLocationsKey = "hotels.locations"
)

type GetHotelQuery struct {
	ID string
}

func (q GetHotelQuery) Key() string { return getHotelKey }

// RequiredRole limits hotel details to signed-in guests.
func (q GetHotelQuery) RequiredRole() string { return "" }

type GetHotelHandler struct {
	Catalog policies.HotelCatalog
}

func (h *GetHotelHandler) Handle(ctx context.Context, q GetHotelQuery) (domainhotels.Hotel, error) {
	id := strings.TrimSpace(q.ID)
	if id == "" {
		return domainhotels.Hotel{}, domainhotels.ErrNotFound
	}
	return h.Catalog.GetHotel(ctx, id)
}

type ListLocationsQuery struct{}

func (q ListLocationsQuery) Key() string { return listLocationsKey }

type ListLocationsHandler struct {
	Catalog policies.HotelCatalog
}

func (h *ListLocationsHandler) Handle(ctx context.Context, _ ListLocationsQuery) ([]domainhotels.Location, error) {
	return h.Catalog.ListLocations(ctx)
}

var _ queries.Handler[GetHotelQuery, domainhotels.Hotel] = (*GetHotelHandler)(nil)
var _ queries.Handler[ListLocationsQuery, []domainhotels.Location] = (*ListLocationsHandler)(nil)
