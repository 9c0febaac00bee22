package session

import (
	"context"

	"hotelfront/internal/app/dto"
	"hotelfront/internal/app/handlers/hotels"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/domain/filters"
)

// Fetcher loads listing data for a session.
type Fetcher interface {
	Browse(ctx context.Context, state filters.State, limit int) (dto.HotelCatalog, error)
	Search(ctx context.Context, query string) (dto.HotelCatalog, error)
}

// BusFetcher asks the query bus, so sessions share middleware and caching with the API.
type BusFetcher struct {
	Queries  queries.Bus
	BasePath string
}

func (f BusFetcher) Browse(ctx context.Context, state filters.State, limit int) (dto.HotelCatalog, error) {
	return queries.Ask[hotels.ListHotelsQuery, dto.HotelCatalog](ctx, f.Queries, hotels.ListHotelsQuery{
		Filters:  state,
		Limit:    limit,
		BasePath: f.BasePath,
	})
}

func (f BusFetcher) Search(ctx context.Context, query string) (dto.HotelCatalog, error) {
	return queries.Ask[hotels.SearchHotelsQuery, dto.HotelCatalog](ctx, f.Queries, hotels.SearchHotelsQuery{Query: query})
}
