package session

import (
	"errors"

	"hotelfront/internal/domain/filters"
)

var (
	ErrUnknownEvent = errors.New("session: unknown event")
	ErrUnknownField = errors.New("session: unknown price field")
	ErrEmptyUpdate  = errors.New("session: update carries no change")
	ErrClosed       = errors.New("session: closed")
	ErrNotFound     = errors.New("session: not found")
)

type EventType string

const (
	EventSetPage        EventType = "set_page"
	EventSetSort        EventType = "set_sort"
	EventToggleLocation EventType = "toggle_location"
	EventEditPrice      EventType = "edit_price"
	EventUpdate         EventType = "update"
	EventClearFilters   EventType = "clear_filters"
	EventSearchInput    EventType = "search_input"
	EventSearchSet      EventType = "search_set"
	EventSearchReset    EventType = "search_reset"
	EventSearchEscape   EventType = "search_escape"
	EventRetry          EventType = "retry"
)

// Event is a user interaction sent by the storefront client.
type Event struct {
	Type     EventType       `json:"type"`
	Page     int             `json:"page,omitempty"`
	SortBy   string          `json:"sortBy,omitempty"`
	Location string          `json:"location,omitempty"`
	Field    string          `json:"field,omitempty"`
	Value    string          `json:"value,omitempty"`
	Update   *filters.Update `json:"update,omitempty"`
}
