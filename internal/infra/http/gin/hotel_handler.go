package ginserver

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/dto"
	hotelsapp "hotelfront/internal/app/handlers/hotels"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/domain/filters"
	domainhotels "hotelfront/internal/domain/hotels"
)

const maxImageSize = 10 << 20

// HotelsBasePath prefixes the listing links rendered in catalog responses.
const HotelsBasePath = "/hotels"

type HotelsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HotelsHandler) List(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	values := c.Request.URL.Query()
	q := hotelsapp.ListHotelsQuery{Filters: filters.Parse(values), BasePath: HotelsBasePath}
	if raw := strings.TrimSpace(values.Get(filters.ParamLimit)); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		q.Limit = limit
	}
	catalog, err := queries.Ask[hotelsapp.ListHotelsQuery, dto.HotelCatalog](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, catalog)
}

func (h HotelsHandler) Search(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := hotelsapp.SearchHotelsQuery{Query: c.Query("query")}
	catalog, err := queries.Ask[hotelsapp.SearchHotelsQuery, dto.HotelCatalog](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, catalog)
}

func (h HotelsHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	hotel, err := queries.Ask[hotelsapp.GetHotelQuery, domainhotels.Hotel](c.Request.Context(), h.Queries, hotelsapp.GetHotelQuery{ID: c.Param("id")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, hotel)
}

func (h HotelsHandler) Locations(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	locations, err := queries.Ask[hotelsapp.ListLocationsQuery, []domainhotels.Location](c.Request.Context(), h.Queries, hotelsapp.ListLocationsQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if locations == nil {
		locations = []domainhotels.Location{}
	}
	c.JSON(http.StatusOK, locations)
}

// Create accepts either a JSON body or a multipart form with an imageFile part.
func (h HotelsHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var cmd hotelsapp.CreateHotelCommand
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, ok := h.bindMultipart(c, &cmd)
		if !ok {
			return
		}
		if file != nil {
			defer file.Close()
		}
	} else if err := c.ShouldBindJSON(&cmd.Params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hotel, err := commands.Dispatch[hotelsapp.CreateHotelCommand, domainhotels.Hotel](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, hotel)
}

func (h HotelsHandler) bindMultipart(c *gin.Context, cmd *hotelsapp.CreateHotelCommand) (multipart.File, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageSize+1<<20)
	cmd.Params = domainhotels.CreateParams{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Image:       c.PostForm("image"),
		Location:    c.PostForm("location"),
	}
	if raw := strings.TrimSpace(c.PostForm("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a number"})
			return nil, false
		}
		cmd.Params.Price = price
	}
	header, err := c.FormFile("imageFile")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if header.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds 10MB"})
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(buf[:n])
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	cmd.Upload = &hotelsapp.ImageUpload{Filename: header.Filename, ContentType: contentType, Body: file}
	return file, true
}

var _ HotelsHTTP = HotelsHandler{}
