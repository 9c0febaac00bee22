package hotels

import (
	"context"
	"errors"

	"hotelfront/internal/app/dto"
	"hotelfront/internal/app/listing"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/domain/filters"
)

const searchHotelsKey = "hotels.search"

var ErrQueryRequired = errors.New("hotels: search query is required")

// SearchHotelsQuery runs a free-text search. Results are not paginated.
type SearchHotelsQuery struct {
	Query string
}

func (q SearchHotelsQuery) Key() string { return searchHotelsKey }

func (q SearchHotelsQuery) Validate() error {
	if listing.ModeFor(q.Query) != listing.ModeSearch {
		return ErrQueryRequired
	}
	return nil
}

type SearchHotelsHandler struct {
	Catalog policies.HotelCatalog
}

func (h *SearchHotelsHandler) Handle(ctx context.Context, q SearchHotelsQuery) (dto.HotelCatalog, error) {
	if err := q.Validate(); err != nil {
		return dto.HotelCatalog{}, err
	}
	found, err := h.Catalog.SearchHotels(ctx, q.Query)
	if err != nil {
		return dto.HotelCatalog{}, err
	}
	return dto.MapCatalog(listing.FromSearch(found), filters.Clear(), 0), nil
}

var _ queries.Handler[SearchHotelsQuery, dto.HotelCatalog] = (*SearchHotelsHandler)(nil)
