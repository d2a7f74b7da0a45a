// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components receive a *Logger and never construct their own. A nil *Logger
// is valid everywhere in this module and behaves like a no-op logger, which
// keeps tests free of logging setup.
//
// Example Usage:
//
//	logger := logging.New(logging.FromEnv(cfg.Logging.Level, cfg.Logging.Development))
//	logger.Info("Bridge starting", zap.String("addr", addr))
//	logger.Named("client").Warn("Session expired", zap.String("path", path))
package logging
