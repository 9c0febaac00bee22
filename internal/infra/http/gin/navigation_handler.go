package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelfront/internal/app/navigation"
)

// Navigation resolves a client route. It is reachable anonymously so guests
// can be redirected to sign in.
func Navigation(c *gin.Context) {
	path := c.DefaultQuery("path", "/")
	rawQuery := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, rawQuery = path[:i], path[i+1:]
	}
	viewer, _ := currentPrincipal(c)
	c.JSON(http.StatusOK, navigation.Resolve(path, rawQuery, viewer))
}
