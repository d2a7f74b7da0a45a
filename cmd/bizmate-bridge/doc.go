// Package main is the entry point for the BizMate bridge.
//
// The bridge owns the session token and the chat, content, profile and
// schedule workflows, and exposes them to the browser UI over a local
// HTTP and WebSocket API.
//
// Architecture:
//
//	Browser UI → Bridge (workflows, session) → BizMate API
//
// Configuration:
//   - Environment variables, optionally from a .env file
//   - CLI flags (override env vars)
//
// Usage:
//
//	./bizmate-bridge -api https://api.bizmate.example -port 8787
//
//	# Development mode (console logs, debug level)
//	./bizmate-bridge -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
