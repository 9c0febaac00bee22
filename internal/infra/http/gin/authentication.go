package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelfront/internal/app/services/auth"
	domainauth "hotelfront/internal/domain/auth"
)

// AuthMiddleware attaches the caller's principal to the request context.
// Requests without credentials pass through anonymously; bad credentials are
// rejected.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || m.Service == nil {
		c.Next()
		return
	}
	p, err := m.Service.ResolveHeader(c.Request.Context(), header)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("bearer rejected", "error", err, "request_id", c.GetString("request_id"))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.Request = c.Request.WithContext(domainauth.ContextWithPrincipal(c.Request.Context(), p))
	c.Next()
}

// RequireAuth rejects anonymous requests.
func RequireAuth(c *gin.Context) {
	if _, ok := currentPrincipal(c); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return
	}
	c.Next()
}

func currentPrincipal(c *gin.Context) (domainauth.Principal, bool) {
	p, ok := domainauth.PrincipalFromContext(c.Request.Context())
	if !ok || !p.Authenticated() {
		return domainauth.Principal{}, false
	}
	return p, true
}
