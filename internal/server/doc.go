// Package server provides HTTP routing, middleware and the server lifecycle for the web interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally. Routes are registered with
// method-qualified patterns, so a request with the wrong method gets a 405 from the mux.
//
// # Middleware
//
//   - [RequestLogger] : one structured log line per request
//   - [Recoverer] : converts panics into 500 responses
//
// # Lifecycle
//
// [ListenAndServe] blocks until the context is cancelled and then shuts the server down gracefully.
package server
