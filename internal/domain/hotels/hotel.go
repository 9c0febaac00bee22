package hotels

import (
	"errors"
	"strings"

	"hotelfront/internal/domain/reviews"
)

var ErrNotFound = errors.New("hotels: not found")

// AllLocations is the location tab that matches every hotel.
const AllLocations = "All"

type Hotel struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Location    string           `json:"location"`
	Image       string           `json:"image"`
	Price       float64          `json:"price"`
	Rating      float64          `json:"rating,omitempty"`
	Description string           `json:"description,omitempty"`
	Reviews     []reviews.Review `json:"reviews,omitempty"`
}

// Page is one page of the filtered catalog.
type Page struct {
	Hotels     []Hotel `json:"hotels"`
	TotalPages int     `json:"totalPages"`
	TotalCount int     `json:"totalCount"`
}

type Location struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// LocationNames extracts display names, skipping blanks.
func LocationNames(locs []Location) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		if name := strings.TrimSpace(l.Name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// MatchesLocation reports whether h belongs under the location tab.
func MatchesLocation(h Hotel, tab string) bool {
	tab = strings.TrimSpace(tab)
	if tab == "" || strings.EqualFold(tab, AllLocations) {
		return true
	}
	return strings.Contains(strings.ToLower(h.Location), strings.ToLower(tab))
}

// FilterByLocation keeps the hotels shown under the location tab.
func FilterByLocation(list []Hotel, tab string) []Hotel {
	out := make([]Hotel, 0, len(list))
	for _, h := range list {
		if MatchesLocation(h, tab) {
			out = append(out, h)
		}
	}
	return out
}
