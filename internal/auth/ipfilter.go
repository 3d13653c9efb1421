package auth

import (
	"net"
	"net/http"

	"github.com/rs/zerolog"
)

// IPFilter implements the inbound-connection allow/deny policy. In
// whitelist mode only listed addresses connect; otherwise everything not
// on the denylist is allowed.
type IPFilter struct {
	allow         map[string]struct{}
	deny          map[string]struct{}
	whitelistMode bool
	log           zerolog.Logger
}

func NewIPFilter(allow, deny []string, whitelistMode bool, log zerolog.Logger) *IPFilter {
	f := &IPFilter{
		allow:         make(map[string]struct{}, len(allow)),
		deny:          make(map[string]struct{}, len(deny)),
		whitelistMode: whitelistMode,
		log:           log,
	}
	for _, ip := range allow {
		f.allow[ip] = struct{}{}
	}
	for _, ip := range deny {
		f.deny[ip] = struct{}{}
	}
	return f
}

// Allowed applies the policy to a normalized address.
func (f *IPFilter) Allowed(ip string) bool {
	if f.whitelistMode {
		_, ok := f.allow[ip]
		return ok
	}
	_, denied := f.deny[ip]
	return !denied
}

// Middleware rejects filtered requests before they reach any handler.
func (f *IPFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r.RemoteAddr)
		if !f.Allowed(ip) {
			f.log.Warn().Str("ip", ip).Msg("connection rejected by ip filter")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP normalizes a remote address: strips the port, unwraps
// IPv4-mapped IPv6 addresses and maps IPv6 loopback to 127.0.0.1.
func ClientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String()
		}
		if ip.IsLoopback() {
			return "127.0.0.1"
		}
	}
	return host
}
