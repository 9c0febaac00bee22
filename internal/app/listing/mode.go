// Package listing decides how the hotels listing is fetched.
package listing

import (
	"strconv"

	"hotelfront/internal/domain/filters"
	"hotelfront/internal/domain/hotels"
)

type Mode string

const (
	ModeBrowse Mode = "BROWSE"
	ModeSearch Mode = "SEARCH"
)

// ModeFor selects SEARCH for any non-empty query, whitespace included.
func ModeFor(query string) Mode {
	if query != "" {
		return ModeSearch
	}
	return ModeBrowse
}

// Request is what the listing fetches for the current input.
type Request struct {
	Mode    Mode
	Query   string
	Filters filters.State
	Limit   int
}

// RequestFor builds the request. In SEARCH mode filters, sort and pagination
// are not sent.
func RequestFor(query string, state filters.State, limit int) Request {
	if ModeFor(query) == ModeSearch {
		return Request{Mode: ModeSearch, Query: query}
	}
	return Request{Mode: ModeBrowse, Filters: state, Limit: limit}
}

// Key identifies requests that would return the same data.
func (r Request) Key() string {
	if r.Mode == ModeSearch {
		return string(ModeSearch) + "|" + r.Query
	}
	return string(ModeBrowse) + "|" + r.Filters.Encode() + "|" + strconv.Itoa(r.Limit)
}

// Result is a fetched listing.
type Result struct {
	Mode       Mode           `json:"mode"`
	Hotels     []hotels.Hotel `json:"hotels"`
	TotalPages int            `json:"totalPages"`
	TotalCount int            `json:"totalCount"`
}

// FromPage wraps a BROWSE page.
func FromPage(page hotels.Page) Result {
	return Result{Mode: ModeBrowse, Hotels: page.Hotels, TotalPages: page.TotalPages, TotalCount: page.TotalCount}
}

// FromSearch wraps SEARCH matches, which are never paginated.
func FromSearch(list []hotels.Hotel) Result {
	pages := 0
	if len(list) > 0 {
		pages = 1
	}
	return Result{Mode: ModeSearch, Hotels: list, TotalPages: pages, TotalCount: len(list)}
}
