package dto

import (
	"hotelfront/internal/app/listing"
	"hotelfront/internal/domain/filters"
	"hotelfront/internal/domain/hotels"
)

// HotelCatalog is one rendered state of the hotels listing.
type HotelCatalog struct {
	Hotels  []HotelCard     `json:"hotels"`
	Filters CatalogFilters  `json:"filters"`
	Meta    CatalogMetadata `json:"meta"`
	Links   *filters.Links  `json:"links,omitempty"`
}

// HotelCard is the listing card of a hotel.
type HotelCard struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating,omitempty"`
}

// CatalogFilters echoes back the applied filters.
type CatalogFilters struct {
	Page      int      `json:"page"`
	Locations []string `json:"locations,omitempty"`
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	SortBy    string   `json:"sortBy"`
	Search    string   `json:"search,omitempty"`
	Query     string   `json:"query"`
}

type CatalogMetadata struct {
	Mode       listing.Mode `json:"mode"`
	TotalPages int          `json:"totalPages"`
	TotalCount int          `json:"totalCount"`
	Limit      int          `json:"limit,omitempty"`
}

// MapCatalog renders a fetched listing together with the filters it was fetched for.
func MapCatalog(result listing.Result, state filters.State, limit int) HotelCatalog {
	catalog := HotelCatalog{
		Hotels: MapCards(result.Hotels),
		Meta: CatalogMetadata{
			Mode:       result.Mode,
			TotalPages: result.TotalPages,
			TotalCount: result.TotalCount,
		},
	}
	if result.Mode == listing.ModeSearch {
		catalog.Filters = CatalogFilters{Page: 1, SortBy: string(filters.SortFeatured)}
		return catalog
	}
	catalog.Meta.Limit = limit
	catalog.Filters = CatalogFilters{
		Page:      state.Page,
		Locations: append([]string(nil), state.Locations...),
		MinPrice:  state.MinPrice,
		MaxPrice:  state.MaxPrice,
		SortBy:    string(state.SortBy),
		Search:    state.Search,
		Query:     state.Encode(),
	}
	return catalog
}

func MapCards(list []hotels.Hotel) []HotelCard {
	cards := make([]HotelCard, 0, len(list))
	for _, h := range list {
		cards = append(cards, HotelCard{
			ID:       h.ID,
			Name:     h.Name,
			Location: h.Location,
			Image:    h.Image,
			Price:    h.Price,
			Rating:   h.Rating,
		})
	}
	return cards
}
