package filters

// Links are ready-made listing URLs derived from a State.
type Links struct {
	Self      string         `json:"self"`
	Clear     string         `json:"clear"`
	Next      string         `json:"next,omitempty"`
	Prev      string         `json:"prev,omitempty"`
	Sort      []SortLink     `json:"sort"`
	Locations []LocationLink `json:"locations,omitempty"`
}

type SortLink struct {
	SortBy   SortBy `json:"sortBy"`
	Href     string `json:"href"`
	Selected bool   `json:"selected"`
}

type LocationLink struct {
	Name     string `json:"name"`
	Href     string `json:"href"`
	Selected bool   `json:"selected"`
}

// BuildLinks renders navigation links for the listing at basePath.
// totalPages bounds the next link; locations feeds the toggle facet.
func (s State) BuildLinks(basePath string, totalPages int, locations []string) Links {
	links := Links{
		Self:  href(basePath, s),
		Clear: href(basePath, Clear()),
	}
	if s.Page > 1 {
		links.Prev = href(basePath, s.WithPage(s.Page-1))
	}
	if totalPages > 0 && s.Page < totalPages {
		links.Next = href(basePath, s.WithPage(s.Page+1))
	}
	for _, opt := range sortOptions {
		sort := string(opt)
		links.Sort = append(links.Sort, SortLink{
			SortBy:   opt,
			Href:     href(basePath, s.Apply(Update{SortBy: &sort})),
			Selected: s.SortBy == opt,
		})
	}
	for _, name := range locations {
		links.Locations = append(links.Locations, LocationLink{
			Name:     name,
			Href:     href(basePath, s.ToggleLocation(name)),
			Selected: s.HasLocation(name),
		})
	}
	return links
}

func href(basePath string, s State) string {
	q := s.Encode()
	if q == "" {
		return basePath
	}
	return basePath + "?" + q
}
