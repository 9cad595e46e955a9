// Package http exposes the rendered content page and its JSON views over a
// chi router.
//
// Routes:
//   - GET  /                       full page
//   - GET  /fragments/{mount}      one mount point's fragment
//   - GET  /api/collections        collection summaries
//   - GET  /api/collections/{name} last committed items and item errors
//   - POST /api/collections/{name}/refresh
//   - POST /refresh                manual refresh (form posts redirect back)
//   - GET  /healthz                loader status
package http
