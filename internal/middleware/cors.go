package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, POST, PUT, OPTIONS"
	corsHeaders = "Authorization, Content-Type, Accept, Origin, X-Requested-With, X-Request-ID"
	// Content-Disposition carries the export filename.
	corsExposed = "X-Request-ID, Content-Disposition"
)

// originMatcher decides whether a browser origin may call the API. Entries
// are exact origins, "*", or a wildcard subdomain such as
// "https://*.notaria.mx".
type originMatcher struct {
	any      bool
	exact    map[string]bool
	suffixes []originSuffix
}

type originSuffix struct{ scheme, domain string }

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: map[string]bool{}}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch {
		case o == "":
		case o == "*":
			m.any = true
		case strings.Contains(o, "://*."):
			scheme, domain, _ := strings.Cut(o, "://*.")
			m.suffixes = append(m.suffixes, originSuffix{scheme: scheme + "://", domain: "." + domain})
		default:
			m.exact[o] = true
		}
	}
	return m
}

func (m originMatcher) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if m.any || m.exact[origin] {
		return true
	}
	for _, s := range m.suffixes {
		if strings.HasPrefix(origin, s.scheme) && strings.HasSuffix(origin, s.domain) {
			return true
		}
	}
	return false
}

// CORS admits the configured frontend origins and answers preflight
// requests. Credentials are only allowed for a matched origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	match := newOriginMatcher(allowedOrigins)
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Header("Vary", "Origin")
		if match.allows(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", corsExposed)
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		c.Header("Access-Control-Allow-Methods", corsMethods)
		c.Header("Access-Control-Allow-Headers", corsHeaders)
		c.Header("Access-Control-Max-Age", "86400")
		c.AbortWithStatus(http.StatusNoContent)
	}
}
