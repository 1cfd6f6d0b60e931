package metrics

import (
	"fmt"
	"sync"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	mu sync.RWMutex

	// Outbound service metrics (hubspot, twilio)
	ServiceCalls   map[string]int64
	ServiceErrors  map[string]int64
	ServiceLatency map[string][]time.Duration

	// Circuit breaker metrics
	CircuitBreakerState    map[string]string
	CircuitBreakerFailures map[string]int64

	StartTime time.Time
}

var globalMetrics = &Metrics{
	ServiceCalls:           make(map[string]int64),
	ServiceErrors:          make(map[string]int64),
	ServiceLatency:         make(map[string][]time.Duration),
	CircuitBreakerState:    make(map[string]string),
	CircuitBreakerFailures: make(map[string]int64),
	StartTime:              time.Now(),
}

// RecordServiceCall records an outbound service call
func RecordServiceCall(service string, success bool, latency time.Duration) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	globalMetrics.ServiceCalls[service]++
	if !success {
		globalMetrics.ServiceErrors[service]++
	}

	// Keep only last 100 latency measurements per service
	if len(globalMetrics.ServiceLatency[service]) >= 100 {
		globalMetrics.ServiceLatency[service] = globalMetrics.ServiceLatency[service][1:]
	}
	globalMetrics.ServiceLatency[service] = append(globalMetrics.ServiceLatency[service], latency)
}

// UpdateCircuitBreaker updates circuit breaker metrics
func UpdateCircuitBreaker(service, state string, failures int64) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	globalMetrics.CircuitBreakerState[service] = state
	globalMetrics.CircuitBreakerFailures[service] = failures
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	globalMetrics.mu.RLock()
	defer globalMetrics.mu.RUnlock()

	serviceAvgLatency := make(map[string]float64)
	for service, latencies := range globalMetrics.ServiceLatency {
		if len(latencies) > 0 {
			var sum time.Duration
			for _, l := range latencies {
				sum += l
			}
			serviceAvgLatency[service] = sum.Seconds() / float64(len(latencies))
		}
	}

	calls := make(map[string]int64, len(globalMetrics.ServiceCalls))
	for k, v := range globalMetrics.ServiceCalls {
		calls[k] = v
	}
	errs := make(map[string]int64, len(globalMetrics.ServiceErrors))
	for k, v := range globalMetrics.ServiceErrors {
		errs[k] = v
	}

	uptime := time.Since(globalMetrics.StartTime)

	return map[string]interface{}{
		"uptime_seconds": uptime.Seconds(),
		"services": map[string]interface{}{
			"calls":               calls,
			"errors":              errs,
			"latency_avg_seconds": serviceAvgLatency,
		},
		"circuit_breakers": map[string]interface{}{
			"state":    globalMetrics.CircuitBreakerState,
			"failures": globalMetrics.CircuitBreakerFailures,
		},
	}
}

// GetPrometheusMetrics returns metrics in Prometheus format
func GetPrometheusMetrics() string {
	metrics := GetMetrics()
	var output string

	output += "# HELP api_uptime_seconds API uptime in seconds\n"
	output += "# TYPE api_uptime_seconds gauge\n"
	output += fmt.Sprintf("api_uptime_seconds %.2f\n", metrics["uptime_seconds"].(float64))

	services := metrics["services"].(map[string]interface{})
	serviceCalls := services["calls"].(map[string]int64)
	output += "# HELP api_service_calls_total Total calls per service\n"
	output += "# TYPE api_service_calls_total counter\n"
	for service, count := range serviceCalls {
		output += fmt.Sprintf("api_service_calls_total{service=\"%s\"} %d\n", service, count)
	}

	serviceErrors := services["errors"].(map[string]int64)
	output += "# HELP api_service_errors_total Total errors per service\n"
	output += "# TYPE api_service_errors_total counter\n"
	for service, count := range serviceErrors {
		output += fmt.Sprintf("api_service_errors_total{service=\"%s\"} %d\n", service, count)
	}

	return output
}
