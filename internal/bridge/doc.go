// Package bridge is the local HTTP server the browser UI talks to.
//
// It owns the process-wide session store, API client and screen workflows
// and exposes them as a small JSON API under /api, a websocket event
// stream on /ws for session and redirect events, and Prometheus metrics on
// /metrics. Session failures never surface as generic errors: they render
// as 401 with a redirect to the login page.
package bridge
