package models

import "time"

// GatewayMetrics is a point-in-time summary of gateway activity.
type GatewayMetrics struct {
	RequestsTotal             uint64    `json:"requests_total"`
	AverageRequestDurationMs  float64   `json:"average_request_duration_ms"`
	UpstreamCallsTotal        uint64    `json:"upstream_calls_total"`
	AverageUpstreamDurationMs float64   `json:"average_upstream_duration_ms"`
	RefreshSuccesses          uint64    `json:"refresh_successes"`
	RefreshFailures           uint64    `json:"refresh_failures"`
	Logouts                   uint64    `json:"logouts"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generated_at"`
}
