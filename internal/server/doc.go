// Package server exposes the exercise store and the fretboard renderer over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /api/exercises/{id}"),
// so path parameters come from [http.Request.PathValue] and unmatched methods get a 405 from the mux.
//
// # Handlers
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
//   - [ExerciseHandler] serves CRUD for exercises, a name availability check and a per-exercise fretboard SVG.
//   - [FretboardHandler] lists presets and renders ad-hoc boards as SVG or as layout JSON.
//   - [HealthHandler] answers liveness probes.
//
// Errors are returned as {"error": "..."} with a status derived from the shared sentinels:
// not found is 404, duplicate names are 409, invalid input is 400.
//
// # Middleware
//
// [RequestID], [Logging], [Recover], [CORS] and [RateLimit] cover the cross-cutting concerns.
// CORS is permissive so a browser front end on another origin can call the API.
package server
