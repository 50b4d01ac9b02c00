// Package server provides the hitscope JSON API: routing, middleware, and handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with "METHOD /path/{wildcard}" patterns.
//
// # Middleware
//
//   - [RequestID] : X-Request-ID propagation, generated with google/uuid when absent
//   - [Recover] : panics become JSON 500 responses
//   - [AccessLog] : one charmbracelet/log line per request plus Prometheus request counters and latency
//   - [CORS] : go-chi/cors with the configured origins, wrapped around the whole router
//   - [RateLimit] : go-chi/httprate per-IP limit, disabled at zero
//
// # Endpoints
//
// [APIHandler] serves the artist table (filter, sort and paginate through the pipeline package),
// single-artist detail, Spotify info through the shared cache, aggregate stats and the revenue model.
// /healthz and /metrics are registered next to it by [NewRouter].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
