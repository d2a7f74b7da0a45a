// Package config provides 12-factor configuration for the BizMate controller.
//
// Configuration is loaded from environment variables with defaults carried in
// struct tags. The entry point loads a .env file first, so local development
// can keep its settings next to the binary.
//
// Configuration Sections:
//   - API: remote BizMate API location, timeout and client-side rate limit
//   - Session: where the session token is persisted (memory or file)
//   - Content: publishing platform and the scheduling-time policy
//   - Chat: chat platform label and greeting
//   - Bridge: local UI bridge listener and CORS origins
//   - Logging: log level and output format
//   - RateLimit: per-IP limits on the bridge
//   - Breaker: circuit breaker in front of the remote API
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Talking to %s\n", cfg.API.BaseURL)
package config
