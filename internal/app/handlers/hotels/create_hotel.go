package hotels

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/handlers/support"
	"hotelfront/internal/app/outbox"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/domain/auth"
	domainhotels "hotelfront/internal/domain/hotels"
	"hotelfront/internal/domain/shared/events"
)

const createHotelKey = "hotels.create"

var ErrImageStoreMissing = errors.New("hotels: image uploads are not configured")

// ImageUpload is a hotel picture sent along with the form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateHotelCommand adds a hotel. Either Params.Image or Upload must be set.
type CreateHotelCommand struct {
	Params domainhotels.CreateParams
	Upload *ImageUpload
}

func (c CreateHotelCommand) Key() string { return createHotelKey }

func (c CreateHotelCommand) RequiredRole() string { return auth.RoleAdmin }

func (c CreateHotelCommand) Validate() error {
	p := c.Params
	if c.Upload != nil && strings.TrimSpace(p.Image) == "" {
		p.Image = c.Upload.Filename
		if p.Image == "" {
			p.Image = "upload"
		}
	}
	return p.Validate()
}

type CreateHotelHandler struct {
	Catalog policies.HotelCatalog
	Images  policies.ImageStore
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *CreateHotelHandler) Handle(ctx context.Context, cmd CreateHotelCommand) (domainhotels.Hotel, error) {
	if err := cmd.Validate(); err != nil {
		return domainhotels.Hotel{}, err
	}
	params := cmd.Params.Normalized()
	if cmd.Upload != nil {
		if h.Images == nil {
			return domainhotels.Hotel{}, ErrImageStoreMissing
		}
		url, err := h.Images.Upload(ctx, imageKey(cmd.Upload.Filename), cmd.Upload.Body, cmd.Upload.ContentType)
		if err != nil {
			return domainhotels.Hotel{}, fmt.Errorf("upload hotel image: %w", err)
		}
		params.Image = url
	}

	hotel, err := h.Catalog.CreateHotel(ctx, params)
	if err != nil {
		return domainhotels.Hotel{}, err
	}

	ev := domainhotels.HotelCreated{HotelID: hotel.ID, Name: hotel.Name, Location: hotel.Location, At: h.now()}
	if err := support.RecordEvents(ctx, h.Outbox, h.encoder(), []events.DomainEvent{ev}); err != nil {
		return domainhotels.Hotel{}, err
	}
	return hotel, nil
}

func imageKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return "hotels/" + uuid.NewString() + ext
}

func (h *CreateHotelHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *CreateHotelHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateHotelCommand, domainhotels.Hotel] = (*CreateHotelHandler)(nil)
