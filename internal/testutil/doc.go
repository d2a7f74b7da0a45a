// Package testutil provides test doubles for packages that talk to the
// BizMate API: an in-process fake API server with call counters and
// blocking gates, and testify mocks of the typed endpoints.
package testutil
