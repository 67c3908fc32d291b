// Package api hosts the HTTP server, middleware, and REST handlers around the
// analysis engine. Routes:
//   - POST /api/analyze runs a full analysis and returns the profile and report.
//   - POST /api/validate-url checks whether a URL is a storefront.
//   - GET /api/health for liveness checks.
//   - GET /metrics for Prometheus scraping.
package api
