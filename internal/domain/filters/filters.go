package filters

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// SortBy defines a listing ordering understood by the hotel backend.
type SortBy string

const (
	SortFeatured  SortBy = "featured"
	SortPriceLow  SortBy = "price_low"
	SortPriceHigh SortBy = "price_high"
	SortRating    SortBy = "rating"
	SortName      SortBy = "name"
)

// Query parameter names used on the hotels listing URL.
const (
	ParamPage     = "page"
	ParamLocation = "location"
	ParamMinPrice = "minPrice"
	ParamMaxPrice = "maxPrice"
	ParamSortBy   = "sortBy"
	ParamSearch   = "search"
	ParamLimit    = "limit"
)

var sortOptions = []SortBy{SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortName}

// SortOptions lists the supported orderings in display order.
func SortOptions() []SortBy {
	return append([]SortBy(nil), sortOptions...)
}

// ParseSort maps raw input to a known ordering, defaulting to featured.
func ParseSort(raw string) SortBy {
	candidate := SortBy(strings.TrimSpace(raw))
	for _, opt := range sortOptions {
		if opt == candidate {
			return opt
		}
	}
	return SortFeatured
}

// State is the typed view of the hotels listing query string.
type State struct {
	Page      int
	Locations []string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    SortBy
	Search    string

	pageExplicit bool
}

// Update is a partial change to State. Nil fields are left untouched and a
// pointer to an empty string removes the parameter.
type Update struct {
	Page     *int    `json:"page,omitempty"`
	Location *string `json:"location,omitempty"`
	MinPrice *string `json:"minPrice,omitempty"`
	MaxPrice *string `json:"maxPrice,omitempty"`
	SortBy   *string `json:"sortBy,omitempty"`
	Search   *string `json:"search,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Page == nil && u.Location == nil && u.MinPrice == nil && u.MaxPrice == nil && u.SortBy == nil && u.Search == nil
}

// Parse builds a State from URL query values.
func Parse(values url.Values) State {
	state := State{
		Page:   1,
		SortBy: ParseSort(values.Get(ParamSortBy)),
		Search: values.Get(ParamSearch),
	}
	if raw, ok := values[ParamPage]; ok && len(raw) > 0 {
		state.pageExplicit = true
		if page, err := strconv.Atoi(strings.TrimSpace(raw[0])); err == nil && page > 0 {
			state.Page = page
		}
	}
	state.Locations = splitLocations(values.Get(ParamLocation))
	if v, ok := ParsePrice(values.Get(ParamMinPrice)); ok {
		state.MinPrice = &v
	}
	if v, ok := ParsePrice(values.Get(ParamMaxPrice)); ok {
		state.MaxPrice = &v
	}
	return state
}

// ParseQuery is Parse over a raw query string. Pairs with a malformed escape
// are skipped and the rest are kept.
func ParseQuery(raw string) State {
	return Parse(QueryValues(raw))
}

// QueryValues decodes raw leniently, dropping only the pairs url.ParseQuery
// rejects.
func QueryValues(raw string) url.Values {
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if values == nil {
		values = url.Values{}
	}
	return values
}

// ParsePrice interprets raw price input. Empty, non-numeric, infinite and
// negative values are treated as absent.
func ParsePrice(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// Clear returns the state for a listing URL without parameters.
func Clear() State {
	return State{Page: 1, SortBy: SortFeatured}
}

// Values serializes the state, omitting absent and default values.
func (s State) Values() url.Values {
	values := url.Values{}
	if s.pageExplicit {
		page := s.Page
		if page < 1 {
			page = 1
		}
		values.Set(ParamPage, strconv.Itoa(page))
	}
	if len(s.Locations) > 0 {
		values.Set(ParamLocation, strings.Join(s.Locations, ","))
	}
	if s.MinPrice != nil {
		values.Set(ParamMinPrice, formatPrice(*s.MinPrice))
	}
	if s.MaxPrice != nil {
		values.Set(ParamMaxPrice, formatPrice(*s.MaxPrice))
	}
	if s.SortBy != "" && s.SortBy != SortFeatured {
		values.Set(ParamSortBy, string(s.SortBy))
	}
	if s.Search != "" {
		values.Set(ParamSearch, s.Search)
	}
	return values
}

// Encode returns the canonical query string without a leading '?'.
func (s State) Encode() string {
	return s.Values().Encode()
}

// Apply merges a partial update. Unless the update sets the page itself the
// page is reset to 1, because any other change invalidates pagination.
func (s State) Apply(u Update) State {
	values := s.Values()
	setOrDelete(values, ParamLocation, u.Location)
	setOrDelete(values, ParamMinPrice, u.MinPrice)
	setOrDelete(values, ParamMaxPrice, u.MaxPrice)
	setOrDelete(values, ParamSortBy, u.SortBy)
	setOrDelete(values, ParamSearch, u.Search)
	page := 1
	if u.Page != nil && *u.Page > 0 {
		page = *u.Page
	}
	values.Set(ParamPage, strconv.Itoa(page))
	return Parse(values)
}

// WithPage moves to another page without touching the filters.
func (s State) WithPage(page int) State {
	return s.Apply(Update{Page: &page})
}

// ToggleLocation adds the location when absent and removes it otherwise.
// Selection order is preserved.
func (s State) ToggleLocation(name string) State {
	name = strings.TrimSpace(name)
	if name == "" {
		return s
	}
	next := make([]string, 0, len(s.Locations)+1)
	removed := false
	for _, loc := range s.Locations {
		if loc == name {
			removed = true
			continue
		}
		next = append(next, loc)
	}
	if !removed {
		next = append(next, name)
	}
	joined := strings.Join(next, ",")
	return s.Apply(Update{Location: &joined})
}

// HasLocation reports whether the location is selected.
func (s State) HasLocation(name string) bool {
	for _, loc := range s.Locations {
		if loc == name {
			return true
		}
	}
	return false
}

// PageExplicit reports whether the page parameter is part of the query.
func (s State) PageExplicit() bool {
	return s.pageExplicit
}

func setOrDelete(values url.Values, key string, value *string) {
	if value == nil {
		return
	}
	if *value == "" {
		values.Del(key)
		return
	}
	values.Set(key, *value)
}

func splitLocations(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
