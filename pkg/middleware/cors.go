package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS implements the site's origin allow-list. Pre-flight requests are
// answered with 204. Requests from unknown origins are still processed;
// they just never get an Access-Control-Allow-Origin header, so the
// browser withholds the response from the page.
func CORS(allowed []string, previewSuffix string) gin.HandlerFunc {
	allowedSet := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedSet[strings.TrimSpace(o)] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		c.Header("Vary", "Origin")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if allowedSet[origin] || isPreviewOrigin(origin, previewSuffix) {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isPreviewOrigin matches deploy-preview hostnames like
// deploy-preview-42--site.netlify.app.
func isPreviewOrigin(origin, suffix string) bool {
	if origin == "" || suffix == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Hostname(), suffix)
}
