package hotels

import (
	"context"
	"log/slog"

	"hotelfront/internal/app/dto"
	"hotelfront/internal/app/listing"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/domain/filters"
	domainhotels "hotelfront/internal/domain/hotels"
)

const listHotelsKey = "hotels.list"

// DefaultPageSize is used when a query does not set a limit.
const DefaultPageSize = 12

// ListHotelsQuery pages through the catalog in BROWSE mode.
type ListHotelsQuery struct {
	Filters filters.State
	Limit   int
	// BasePath turns on link rendering for the listing page.
	BasePath string
}

func (q ListHotelsQuery) Key() string { return listHotelsKey }

type ListHotelsHandler struct {
	Catalog policies.HotelCatalog
	Logger  *slog.Logger
}

func (h *ListHotelsHandler) Handle(ctx context.Context, q ListHotelsQuery) (dto.HotelCatalog, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	page, err := h.Catalog.ListHotels(ctx, policies.CatalogQuery{Filters: q.Filters, Limit: limit})
	if err != nil {
		return dto.HotelCatalog{}, err
	}
	catalog := dto.MapCatalog(listing.FromPage(page), q.Filters, limit)
	if q.BasePath == "" {
		return catalog, nil
	}

	var names []string
	locs, err := h.Catalog.ListLocations(ctx)
	if err != nil {
		// the facet is optional, the page still renders
		h.logger().Warn("list locations failed", "error", err)
	} else {
		names = domainhotels.LocationNames(locs)
	}
	links := q.Filters.BuildLinks(q.BasePath, page.TotalPages, names)
	catalog.Links = &links
	return catalog, nil
}

func (h *ListHotelsHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ queries.Handler[ListHotelsQuery, dto.HotelCatalog] = (*ListHotelsHandler)(nil)
