package activity

import (
	"net"
	"net/http"
	"strings"
)

// RequestContext carries the caller's network details into an audit entry.
type RequestContext struct {
	IP        string
	UserAgent string
}

// FromRequest extracts the client address and user agent, preferring the
// first X-Forwarded-For hop when a proxy set one.
func FromRequest(r *http.Request) *RequestContext {
	if r == nil {
		return nil
	}
	ip := ""
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}
	return &RequestContext{IP: ip, UserAgent: r.UserAgent()}
}
