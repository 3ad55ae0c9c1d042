package server

import (
	"net/http"
	"strings"
)

// NoCache instructs clients never to cache a response, so a reload always
// fetches the latest build.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		// Drop validators so the file server never answers 304
		r.Header.Del("If-Modified-Since")
		r.Header.Del("If-None-Match")
		next.ServeHTTP(w, r)
	})
}

// PlaygroundOrigin is the code runner contacted by the play buttons.
const PlaygroundOrigin = "https://play.integer32.com"

// SecurityHeaders adds security headers to all responses. connect lists the
// extra origins the page may connect to, such as the reload socket.
func SecurityHeaders(connect ...string) func(http.Handler) http.Handler {
	connectSrc := strings.Join(append([]string{"'self'", PlaygroundOrigin}, connect...), " ")
	// Inline handlers drive the navigation arrows and play buttons.
	csp := "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https:; " +
		"font-src 'self' data:; " +
		"connect-src " + connectSrc + "; " +
		"frame-ancestors 'none'"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middleware so the first one listed runs first.
func Chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
