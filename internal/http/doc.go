// Package http exposes the site over JSON.
//
// Public routes mount under /api:
//   - Events: GET /events, GET /events/{slug}, POST /events
//   - Jobs: GET /jobs, GET /jobs/{slug}, POST /jobs
//   - Articles: GET /articles, GET /articles/{slug}, POST /articles
//   - Preview: POST /render
//
// Admin routes mount under /admin/api. Everything except /login requires a
// session token sent as a bearer token or the site_session cookie:
//   - Sessions: POST /login, POST /logout
//   - Moderation: GET /{kind}?status=, POST /{kind}/{id}/{action}, POST /{kind}/reorder
//   - Records: PUT /{kind}/{id}, DELETE /{kind}/{id}
//   - Articles: POST /articles, POST /articles/import
//
// Host applications can register the APIs on their own mux.
package http
