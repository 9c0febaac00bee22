package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelfront/internal/app/commands"
	reviewsapp "hotelfront/internal/app/handlers/reviews"
	domainreviews "hotelfront/internal/domain/reviews"
)

type ReviewsHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	HotelID string `json:"hotelId" binding:"required"`
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

func (h ReviewsHandler) Submit(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reviews: commands unavailable"})
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reviewsapp.SubmitReviewCommand{HotelID: req.HotelID, Comment: req.Comment, Rating: req.Rating}
	review, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, domainreviews.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

var _ ReviewsHTTP = ReviewsHandler{}
