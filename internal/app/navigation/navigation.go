// Package navigation resolves storefront client routes and their access rules.
package navigation

import (
	"strings"

	"hotelfront/internal/domain/auth"
	"hotelfront/internal/domain/filters"
)

const (
	PageHome            = "home"
	PageHotels          = "hotels"
	PageHotelDetails    = "hotel-details"
	PageAccount         = "account"
	PageCreateHotel     = "create-hotel"
	PagePayment         = "payment"
	PagePaymentComplete = "payment-complete"
	PageSignIn          = "sign-in"
	PageSignUp          = "sign-up"
	PageNotFound        = "not-found"
)

const (
	SignInPath = "/sign-in"
	HomePath   = "/"
)

// Page is a resolved route. A non-empty Redirect means the viewer must go there instead.
type Page struct {
	Name     string            `json:"page"`
	Params   map[string]string `json:"params,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// Resolve maps a client path and query to the page the viewer may see.
func Resolve(path, rawQuery string, viewer auth.Principal) Page {
	query := filters.QueryValues(rawQuery)
	path = normalize(path)

	switch {
	case path == "/":
		return Page{Name: PageHome}
	case path == "/hotels":
		return Page{Name: PageHotels, Params: map[string]string{"query": filters.Parse(query).Encode()}}
	case strings.HasPrefix(path, "/hotels/"):
		id := strings.TrimPrefix(path, "/hotels/")
		if id == "" || strings.Contains(id, "/") {
			return Page{Name: PageNotFound}
		}
		return signedIn(viewer, Page{Name: PageHotelDetails, Params: map[string]string{"id": id}})
	case path == "/account":
		return signedIn(viewer, Page{Name: PageAccount})
	case path == "/admin/create-hotel":
		if !viewer.Authenticated() {
			return Page{Name: PageSignIn, Redirect: SignInPath}
		}
		if !viewer.HasRole(auth.RoleAdmin) {
			return Page{Name: PageHome, Redirect: HomePath}
		}
		return Page{Name: PageCreateHotel}
	case path == "/booking/payment":
		id := strings.TrimSpace(query.Get("bookingId"))
		if id == "" {
			return Page{Name: PageHome, Redirect: HomePath}
		}
		return signedIn(viewer, Page{Name: PagePayment, Params: map[string]string{"bookingId": id}})
	case path == "/booking/complete":
		id := strings.TrimSpace(query.Get("session_id"))
		if id == "" {
			return Page{Name: PageHome, Redirect: HomePath}
		}
		return Page{Name: PagePaymentComplete, Params: map[string]string{"session_id": id}}
	case path == "/sign-in":
		return Page{Name: PageSignIn}
	case path == "/sign-up":
		return Page{Name: PageSignUp}
	default:
		return Page{Name: PageNotFound}
	}
}

func signedIn(viewer auth.Principal, p Page) Page {
	if !viewer.Authenticated() {
		return Page{Name: PageSignIn, Redirect: SignInPath}
	}
	return p
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
