package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"hotelfront/internal/app/policies"
	"hotelfront/internal/domain/filters"
	"hotelfront/internal/domain/hotels"
)

var _ policies.HotelCatalog = (*Client)(nil)

func (c *Client) ListHotels(ctx context.Context, q policies.CatalogQuery) (hotels.Page, error) {
	values := q.Filters.Values()
	values.Set(filters.ParamPage, strconv.Itoa(max(q.Filters.Page, 1)))
	values.Set(filters.ParamSortBy, string(q.Filters.SortBy))
	if q.Filters.SortBy == "" {
		values.Set(filters.ParamSortBy, string(filters.SortFeatured))
	}
	if q.Limit > 0 {
		values.Set(filters.ParamLimit, strconv.Itoa(q.Limit))
	}
	var page hotels.Page
	err := c.do(ctx, call{endpoint: "hotels.list", method: http.MethodGet, path: "hotels", query: values, out: &page})
	if page.Hotels == nil {
		page.Hotels = []hotels.Hotel{}
	}
	return page, err
}

func (c *Client) SearchHotels(ctx context.Context, query string) ([]hotels.Hotel, error) {
	var out []hotels.Hotel
	err := c.do(ctx, call{
		endpoint: "hotels.search",
		method:   http.MethodGet,
		path:     "hotels/search",
		query:    url.Values{"query": {query}},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []hotels.Hotel{}
	}
	return out, nil
}

func (c *Client) GetHotel(ctx context.Context, id string) (hotels.Hotel, error) {
	var h hotels.Hotel
	err := c.do(ctx, call{
		endpoint: "hotels.get",
		method:   http.MethodGet,
		path:     "hotels/" + url.PathEscape(id),
		out:      &h,
		notFound: hotels.ErrNotFound,
	})
	return h, err
}

func (c *Client) ListLocations(ctx context.Context) ([]hotels.Location, error) {
	var out []hotels.Location
	if err := c.do(ctx, call{endpoint: "locations.list", method: http.MethodGet, path: "locations", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateHotel(ctx context.Context, params hotels.CreateParams) (hotels.Hotel, error) {
	var h hotels.Hotel
	err := c.do(ctx, call{endpoint: "hotels.create", method: http.MethodPost, path: "hotels", body: params.Normalized(), out: &h})
	return h, err
}
