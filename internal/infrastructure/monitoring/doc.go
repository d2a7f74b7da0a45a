/*
Package monitoring provides Prometheus metrics for the BizMate controller.

# Overview

Metrics cover the remote API calls made by the client, session lifecycle
events, workflow state transitions, chat traffic and the local UI bridge.

A nil *Metrics is valid and records nothing, so library code can take metrics
as an optional dependency. Metrics are registered on the Registerer passed to
New; tests pass a fresh prometheus.NewRegistry() to avoid duplicate
registration.

# Usage

	metrics := monitoring.New(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))

	timer := monitoring.NewTimer(metrics, "chatbot.send", "POST")
	// ... perform call ...
	timer.Stop("success")
*/
package monitoring
