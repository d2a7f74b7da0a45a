/*
Package resilience provides the circuit breaker that sits in front of the
remote BizMate API.

# Overview

When the API keeps failing with transport errors or 5xx responses, the
breaker opens and subsequent calls fail fast without touching the network.
It never retries anything: a caller that gets ErrCircuitOpen decides for
itself whether to try again later.

Only errors for which Settings.IsFailure returns true count against the
breaker. The API client counts transient failures only, so an expired
session or a malformed payload never opens the circuit.

# Usage

	breaker := resilience.New("bizmate-api", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsFailure: func(err error) bool { return isTransient(err) },
	})

	resp, err := resilience.Do(breaker, func() (*resty.Response, error) {
		return req.Execute(method, url)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                         Open
*/
package resilience
