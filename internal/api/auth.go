package api

import (
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"salonik/internal/config"

	"golang.org/x/time/rate"
)

var errPermissionDenied = fmt.Errorf("permission denied")

// HTTPAuth provides API-key auth and per-key rate limiting.
type HTTPAuth struct {
	cfg      config.APIConfig
	clients  map[string]config.APIClientKey
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &HTTPAuth{cfg: cfg, clients: m}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if err == errPermissionDenied {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.headerName()))
	if apiKey == "" {
		return fmt.Errorf("missing api key header")
	}

	client, ok := a.lookup(apiKey)
	if !ok {
		return fmt.Errorf("invalid api key")
	}

	return a.checkPermissions(client, r)
}

// lookup compares against every configured key in constant time so that an
// attacker cannot probe key prefixes by timing.
func (a *HTTPAuth) lookup(apiKey string) (config.APIClientKey, bool) {
	var found config.APIClientKey
	var ok bool
	for key, client := range a.clients {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			found = client
			ok = true
		}
	}
	return found, ok
}

func (a *HTTPAuth) checkPermissions(client config.APIClientKey, r *http.Request) error {
	required := requiredPermission(r)
	if required == "" {
		return nil
	}
	// пустой список разрешений значит полный доступ
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermission(r *http.Request) string {
	path := r.URL.Path
	switch {
	case path == "/api/v1/slots" || path == "/api/v1/validate":
		return "read:slots"
	case strings.HasPrefix(path, "/api/v1/appointments"):
		if r.Method == http.MethodGet {
			return "read:appointments"
		}
		return "write:appointments"
	case path == "/api/v1/schedule/export":
		return "read:schedule"
	}
	return ""
}

func (a *HTTPAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	lim := a.getLimiter(a.clientKey(r))
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.headerName())); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) headerName() string {
	header := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = "x-api-key"
	}
	return header
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
