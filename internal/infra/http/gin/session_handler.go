package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelfront/internal/app/session"
)

// SessionsHandler exposes server-side browse sessions for the hotels page.
type SessionsHandler struct {
	Manager *session.Manager
	Logger  *slog.Logger
}

type openSessionRequest struct {
	Query string `json:"query"`
}

func (h SessionsHandler) Open(c *gin.Context) {
	if h.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return
	}
	var req openSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	s, err := h.Manager.Open(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, s.Snapshot())
}

func (h SessionsHandler) Get(c *gin.Context) {
	if h.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return
	}
	s, err := h.Manager.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// Dispatch applies one UI event and returns the resulting view state.
func (h SessionsHandler) Dispatch(c *gin.Context) {
	if h.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return
	}
	var ev session.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.Manager.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if err := s.Dispatch(ev); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h SessionsHandler) Close(c *gin.Context) {
	if h.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return
	}
	if err := h.Manager.Close(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ SessionsHTTP = SessionsHandler{}
