package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin access to the API. The storefront
// frontend is served from a different origin and needs the X-Cart-ID header
// both ways, so AllowHeaders and ExposeHeaders matter here.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to call the API. Empty, or the
	// single entry "*", allows everyone.
	AllowOrigins []string

	// AllowMethods lists methods permitted in actual requests. Empty means
	// "GET, POST, PUT, DELETE, OPTIONS".
	AllowMethods []string

	// AllowHeaders lists request headers clients may send. When empty, the
	// preflight echoes back whatever the browser asked for.
	AllowHeaders []string

	// ExposeHeaders lists response headers the browser may read.
	ExposeHeaders []string

	// AllowCredentials permits cookies and auth headers. Incompatible with
	// the wildcard origin, so enabling it forces per-origin echo.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Zero omits the
	// header; negative sends "0" to disable caching.
	MaxAge int
}

// corsPolicy is CORSConfig flattened into the strings the handler writes.
type corsPolicy struct {
	allowAll    bool
	origins     map[string]string // lowercased origin -> configured spelling
	methods     string
	headers     string
	expose      string
	maxAge      string
	credentials bool
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	p := corsPolicy{
		allowAll:    len(cfg.AllowOrigins) == 0,
		origins:     make(map[string]string, len(cfg.AllowOrigins)),
		methods:     strings.Join(cfg.AllowMethods, ", "),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
		credentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			p.allowAll = true
			break
		}
		p.origins[strings.ToLower(o)] = o
	}
	// The fetch spec forbids "*" with credentials; echo the origin instead.
	if p.credentials {
		p.allowAll = false
	}
	if p.methods == "" {
		p.methods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	switch {
	case cfg.MaxAge > 0:
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	case cfg.MaxAge < 0:
		p.maxAge = "0"
	}
	return p
}

// allowOrigin resolves the Access-Control-Allow-Origin value for a request
// origin. Matching is case-insensitive but the configured spelling is what
// gets echoed. Empty means the origin is not allowed.
func (p corsPolicy) allowOrigin(origin string) string {
	if p.allowAll {
		return "*"
	}
	return p.origins[strings.ToLower(origin)]
}

// CORS returns a middleware enforcing the given cross-origin policy. It
// answers preflights itself and decorates actual responses; Vary headers are
// set so shared caches never serve one origin's response to another.
func CORS(cfg CORSConfig) Middleware {
	policy := newCORSPolicy(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Same-origin request. Still vary on Origin when responses can
			// differ by origin.
			if origin == "" {
				if !policy.allowAll {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				policy.preflight(w, r, origin)
				return
			}

			if !policy.allowAll {
				w.Header().Add("Vary", "Origin")
			}
			if allow := policy.allowOrigin(origin); allow != "" {
				w.Header().Set("Access-Control-Allow-Origin", allow)
				if policy.credentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				if policy.expose != "" {
					w.Header().Set("Access-Control-Expose-Headers", policy.expose)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// preflight answers an OPTIONS probe without invoking the next handler.
func (p corsPolicy) preflight(w http.ResponseWriter, r *http.Request, origin string) {
	w.Header().Add("Vary", "Origin")
	w.Header().Add("Vary", "Access-Control-Request-Method")
	w.Header().Add("Vary", "Access-Control-Request-Headers")

	allow := p.allowOrigin(origin)
	if allow == "" {
		// Disallowed origin: 204 with no CORS headers, the browser blocks it.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", allow)
	w.Header().Set("Access-Control-Allow-Methods", p.methods)

	if p.headers != "" {
		w.Header().Set("Access-Control-Allow-Headers", p.headers)
	} else if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
		w.Header().Set("Access-Control-Allow-Headers", req)
	}

	if p.credentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	if p.maxAge != "" {
		w.Header().Set("Access-Control-Max-Age", p.maxAge)
	}

	w.WriteHeader(http.StatusNoContent)
}
