// Package metrics provides Prometheus metrics for the MediaWiki client.
// It tracks API calls, retries, pagination progress, logins and tool calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "mediawiki_client"
)

// Outcome labels for API calls
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport"
	OutcomeStatus    = "status"
	OutcomeParse     = "parse"
	OutcomeCookie    = "cookie"
	OutcomeAPI       = "api"
)

var (
	// APIRequestsTotal counts logical API calls by action, method and outcome
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total logical API calls by action, method and outcome",
	}, []string{"action", "method", "outcome"})

	// APIRequestDuration measures logical call latency including retries
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Logical API call latency including retry waits",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"action", "method"})

	// APIRetries counts extra attempts made by the transport
	APIRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_retries_total",
		Help:      "Retried attempts by action",
	}, []string{"action"})

	// APIErrors counts API-level error codes returned by the wiki
	APIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_errors_total",
		Help:      "API error responses by action and error code",
	}, []string{"action", "code"})

	// PagesFetched counts pages fetched by paginated queries
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "query_pages_total",
		Help:      "Pages fetched by paginated list queries",
	}, []string{"list"})

	// RecordsFetched counts records buffered by paginated queries
	RecordsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "query_records_total",
		Help:      "Records received by paginated list queries",
	}, []string{"list"})

	// Logins counts login attempts by result
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "logins_total",
		Help:      "Login attempts by result",
	}, []string{"result"})

	// TokensFetched counts capability tokens fetched by kind
	TokensFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "tokens_fetched_total",
		Help:      "Capability tokens fetched by kind",
	}, []string{"kind"})

	// CookieStoreSize tracks the number of cookies held by the most recent session
	CookieStoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "cookie_store_entries",
		Help:      "Cookies held by the session",
	})

	// RequestsTotal counts MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "tool_requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures tool call latency
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "tool_request_duration_seconds",
		Help:      "Tool call latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing tool calls
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "tool_requests_in_flight",
		Help:      "Number of tool calls currently being processed",
	}, []string{"tool"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})
)

// RecordAPICall records a completed logical API call
func RecordAPICall(action, method, outcome string, duration float64) {
	APIRequestsTotal.WithLabelValues(action, method, outcome).Inc()
	APIRequestDuration.WithLabelValues(action, method).Observe(duration)
}

// RecordRetry records one retried attempt
func RecordRetry(action string) {
	APIRetries.WithLabelValues(action).Inc()
}

// RecordAPIError records an API-level error code
func RecordAPIError(action, code string) {
	if code == "" {
		code = "unknown"
	}
	APIErrors.WithLabelValues(action, code).Inc()
}

// RecordPage records one fetched page and its record count
func RecordPage(list string, records int) {
	PagesFetched.WithLabelValues(list).Inc()
	RecordsFetched.WithLabelValues(list).Add(float64(records))
}

// RecordLogin records a login attempt result
func RecordLogin(result string) {
	Logins.WithLabelValues(result).Inc()
}

// RecordToken records a fetched token
func RecordToken(kind string) {
	TokensFetched.WithLabelValues(kind).Inc()
}

// SetCookieStoreSize updates the cookie store gauge
func SetCookieStoreSize(n int) {
	CookieStoreSize.Set(float64(n))
}

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	RequestsTotal.WithLabelValues(tool, status).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}
