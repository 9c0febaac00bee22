// Package session keeps the server-side state of one browsing client: the
// listing filters, the search query and the listing last fetched for them.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hotelfront/internal/app/debounce"
	"hotelfront/internal/app/dto"
	"hotelfront/internal/app/listing"
	"hotelfront/internal/app/search"
	"hotelfront/internal/app/view"
	"hotelfront/internal/domain/auth"
	"hotelfront/internal/domain/filters"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

type Config struct {
	PageSize      int
	PriceDebounce time.Duration
	FetchTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = 12
	}
	if c.PriceDebounce <= 0 {
		c.PriceDebounce = 500 * time.Millisecond
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	return c
}

// Results is the listing currently shown by the session.
type Results struct {
	Status  Status            `json:"status"`
	Mode    listing.Mode      `json:"mode"`
	Catalog *dto.HotelCatalog `json:"catalog,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Snapshot is the full view state returned to the client.
type Snapshot struct {
	ID            string       `json:"id"`
	Query         string       `json:"query"`
	Search        string       `json:"search"`
	SearchInput   string       `json:"searchInput"`
	Mode          listing.Mode `json:"mode"`
	Page          int          `json:"page"`
	SortBy        string       `json:"sortBy"`
	Locations     []string     `json:"locations"`
	PendingPrices []string     `json:"pendingPrices,omitempty"`
	FocusSearch   bool         `json:"focusSearch"`
	Results       Results      `json:"results"`
}

type Session struct {
	id      string
	owner   string
	cfg     Config
	fetcher Fetcher
	logger  *slog.Logger

	store    *search.Store
	binding  *search.Binding
	debounce *debounce.Debouncer
	guard    view.Guard

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	filters     filters.State
	results     Results
	lastKey     string
	focusSearch bool
	touched     time.Time
	closed      bool
	unsubscribe func()
}

func newSession(id string, principal auth.Principal, state filters.State, fetcher Fetcher, cfg Config, logger *slog.Logger, now time.Time) *Session {
	cfg = cfg.withDefaults()
	// fetches outlive the request that opened the session, so they run on the service token
	principal.Token = ""
	ctx, cancel := context.WithCancel(auth.ContextWithPrincipal(context.Background(), principal))
	s := &Session{
		id:       id,
		owner:    principal.UserID,
		cfg:      cfg,
		fetcher:  fetcher,
		logger:   logger.With("session_id", id),
		store:    search.NewStore(),
		debounce: debounce.New(cfg.PriceDebounce),
		ctx:      ctx,
		cancel:   cancel,
		filters:  state,
		touched:  now,
	}
	s.binding = search.Bind(s.store)
	s.unsubscribe = s.store.Subscribe(func(search.Change) { s.refetch(false) })
	s.refetch(true)
	return s
}

func (s *Session) ID() string { return s.id }

// Dispatch applies one client event. Fetches it triggers run in the background;
// poll Snapshot for their outcome.
func (s *Session) Dispatch(ev Event) error {
	if s.isClosed() {
		return ErrClosed
	}
	switch ev.Type {
	case EventSetPage:
		page := ev.Page
		s.applyFilters(filters.Update{Page: &page})
	case EventSetSort:
		sort := ev.SortBy
		s.applyFilters(filters.Update{SortBy: &sort})
	case EventToggleLocation:
		s.withFilters(func(st filters.State) filters.State { return st.ToggleLocation(ev.Location) })
	case EventEditPrice:
		return s.editPrice(ev.Field, ev.Value)
	case EventUpdate:
		if ev.Update == nil || ev.Update.Empty() {
			return ErrEmptyUpdate
		}
		// a direct write supersedes a debounced edit of the same field
		if ev.Update.MinPrice != nil {
			s.debounce.Cancel(filters.ParamMinPrice)
		}
		if ev.Update.MaxPrice != nil {
			s.debounce.Cancel(filters.ParamMaxPrice)
		}
		s.applyFilters(*ev.Update)
	case EventClearFilters:
		s.debounce.Cancel(filters.ParamMinPrice)
		s.debounce.Cancel(filters.ParamMaxPrice)
		s.withFilters(func(filters.State) filters.State { return filters.Clear() })
	case EventSearchInput:
		s.binding.Edit(ev.Value)
	case EventSearchSet:
		s.store.Set(ev.Value)
	case EventSearchReset:
		s.store.Reset()
	case EventSearchEscape:
		focus := s.binding.Escape()
		s.mu.Lock()
		s.focusSearch = focus
		s.mu.Unlock()
	case EventRetry:
		s.refetch(true)
	default:
		return ErrUnknownEvent
	}
	return nil
}

func (s *Session) editPrice(field, value string) error {
	var update func(v string) filters.Update
	switch field {
	case filters.ParamMinPrice:
		update = func(v string) filters.Update { return filters.Update{MinPrice: &v} }
	case filters.ParamMaxPrice:
		update = func(v string) filters.Update { return filters.Update{MaxPrice: &v} }
	default:
		return ErrUnknownField
	}
	s.debounce.Schedule(field, func() { s.applyFilters(update(value)) })
	return nil
}

func (s *Session) applyFilters(u filters.Update) {
	s.withFilters(func(st filters.State) filters.State { return st.Apply(u) })
}

func (s *Session) withFilters(fn func(filters.State) filters.State) {
	s.mu.Lock()
	s.filters = fn(s.filters)
	s.mu.Unlock()
	s.refetch(false)
}

// refetch loads the listing for the current filters and query unless the
// same request is already shown or in flight.
func (s *Session) refetch(force bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	req := listing.RequestFor(s.store.Value(), s.filters, s.cfg.PageSize)
	key := req.Key()
	if !force && key == s.lastKey {
		s.mu.Unlock()
		return
	}
	s.lastKey = key
	ticket := s.guard.Begin()
	prev := s.results.Catalog
	s.results = Results{Status: StatusLoading, Mode: req.Mode, Catalog: prev}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.fetch(ticket, req)
}

func (s *Session) fetch(ticket view.Ticket, req listing.Request) {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.FetchTimeout)
	defer cancel()

	var (
		catalog dto.HotelCatalog
		err     error
	)
	if req.Mode == listing.ModeSearch {
		catalog, err = s.fetcher.Search(ctx, req.Query)
	} else {
		catalog, err = s.fetcher.Browse(ctx, req.Filters, req.Limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.guard.Valid(ticket) {
		s.logger.Debug("dropping superseded listing", "mode", req.Mode)
		return
	}
	if err != nil {
		s.logger.Warn("listing fetch failed", "mode", req.Mode, "error", err)
		// the last successful listing stays visible under the error
		s.results = Results{Status: StatusError, Mode: req.Mode, Catalog: s.results.Catalog, Error: err.Error()}
		return
	}
	s.results = Results{Status: StatusReady, Mode: req.Mode, Catalog: &catalog}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	query := s.store.Value()
	snap := Snapshot{
		ID:          s.id,
		Query:       s.filters.Encode(),
		Search:      query,
		SearchInput: s.binding.Display(),
		Mode:        listing.ModeFor(query),
		Page:        s.filters.Page,
		SortBy:      string(s.filters.SortBy),
		Locations:   append([]string{}, s.filters.Locations...),
		FocusSearch: s.focusSearch,
		Results:     s.results,
	}
	for _, field := range []string{filters.ParamMinPrice, filters.ParamMaxPrice} {
		if s.debounce.Pending(field) {
			snap.PendingPrices = append(snap.PendingPrices, field)
		}
	}
	return snap
}

// Filters returns the committed filter state.
func (s *Session) Filters() filters.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close unmounts the session. Results of fetches still running are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.guard.Unmount()
	s.debounce.Stop()
	s.unsubscribe()
	s.binding.Close()
	s.cancel()
	s.wg.Wait()
}
