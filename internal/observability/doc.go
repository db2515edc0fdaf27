// Package observability provides logging, metrics, and context helpers for
// the ATIP dashboard.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//	logger.Info().Str("metric", "anci").Msg("leaderboard loaded")
//
// # Metrics
//
//	metrics := observability.NewMetrics("atip")
//	metrics.RecordUpstreamRequest("/rankings/{metric}", 0.12)
//	metrics.RecordPageRender("leaderboards", 0.3)
//
// A nil *Metrics is accepted everywhere and records nothing.
//
// # Standard Fields
//
//   - correlation_id: inbound request identifier
//   - route: matched chi route pattern
//   - upstream_endpoint: ATIP API endpoint template
//   - session_id: search-bar session identifier
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
