package handle

import (
	"net"
	"net/http"
	"strings"
)

func (h *Handle) setCORS(w http.ResponseWriter, r *http.Request) {
	origin := h.allowedOrigin
	if origin == "" {
		origin = r.Header.Get("Origin")
	}
	if origin == "" {
		origin = "*"
	}
	hd := w.Header()
	hd.Set("Access-Control-Allow-Origin", origin)
	hd.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
	hd.Set("Access-Control-Allow-Headers", "authorization, content-type")
	hd.Set("Access-Control-Allow-Credentials", "true")
	hd.Set("Cache-Control", "no-store")
	if h.allowedOrigin == "" {
		hd.Add("Vary", "Origin")
	}
}

// ClientIdentity names the caller for rate limiting: the Cloudflare client
// header, then the first X-Forwarded-For hop, then the peer address.
func ClientIdentity(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if ra := strings.TrimSpace(r.RemoteAddr); ra != "" {
		return ra
	}
	return "0.0.0.0"
}
