// Package web implements the lyric search web application.
//
// # Routes
//
//	GET  /           → Search form
//	POST /           → Search form submission, renders results on the same page
//	GET  /api/search → JSON search (?q=)
//	GET  /healthz    → Liveness probe
//	GET  /metrics    → Prometheus exposition
//
// # Middleware
//
// Routes share the [server.BasicRouter] middleware stack: panic recovery, request logging,
// request metrics, an optional per-IP rate limit (go-chi/httprate), sessions (alexedwards/scs)
// and CSRF protection (gorilla/csrf) keyed by a digest of the configured session secret.
//
// # Flash Messages
//
// When the catalog fallback fails, the warning returned by the search engine is put into the
// session and popped when the page renders, so it is shown once.
package web
