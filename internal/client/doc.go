// Package client talks to the remote BizMate API.
//
// Every request goes through Client.Request, which is the one place that
// knows about session tokens and HTTP status codes:
//   - an authenticated call without a token fails with KindUnauthenticated
//     before anything reaches the network
//   - a 401 or 403 from any endpoint clears the session and fails with
//     KindAuthExpired
//   - other non-2xx statuses and transport failures fail with KindTransient
//     and are not retried
//   - a 2xx body that lacks a field the caller needs fails with
//     KindApplication
//
// Callers inspect failures with KindOf or errors.Is against the sentinel
// errors; they never look at status codes themselves.
//
// Built on go-resty/resty over the pooled transport of go-retryablehttp,
// with sonic as the JSON codec, an optional client-side rate limit and an
// optional circuit breaker that opens on outages only.
package client
