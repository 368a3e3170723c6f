package shared

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceMetrics tracks request and success counts for a service.
type ServiceMetrics struct {
	ServiceName        string           `json:"service_name"`
	TotalRequests      int64            `json:"total_requests"`
	SuccessfulRequests int64            `json:"successful_requests"`
	FailedRequests     int64            `json:"failed_requests"`
	LastUpdated        time.Time        `json:"last_updated"`
	CustomCounters     map[string]int64 `json:"custom_counters"`
	mutex              sync.RWMutex
}

// NewServiceMetrics creates a new metrics tracker for a service.
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		ServiceName:    serviceName,
		LastUpdated:    time.Now(),
		CustomCounters: make(map[string]int64),
	}
}

// RecordRequest records one operation with its success status.
func (m *ServiceMetrics) RecordRequest(success bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRequests++
	if success {
		m.SuccessfulRequests++
	} else {
		m.FailedRequests++
	}
	m.LastUpdated = time.Now()
}

// IncrementCounter bumps a named custom counter.
func (m *ServiceMetrics) IncrementCounter(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.CustomCounters[name]++
	m.LastUpdated = time.Now()
}

// GetSuccessRate returns the success rate as a percentage.
func (m *ServiceMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalRequests == 0 {
		return 0.0
	}
	return float64(m.SuccessfulRequests) / float64(m.TotalRequests) * 100.0
}

// GetSnapshot returns a copy of the current metrics state.
func (m *ServiceMetrics) GetSnapshot() map[string]interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counters := make(map[string]int64, len(m.CustomCounters))
	for name, value := range m.CustomCounters {
		counters[name] = value
	}

	return map[string]interface{}{
		"service_name":        m.ServiceName,
		"total_requests":      m.TotalRequests,
		"successful_requests": m.SuccessfulRequests,
		"failed_requests":     m.FailedRequests,
		"custom_counters":     counters,
		"last_updated":        m.LastUpdated,
	}
}

// LogSummary logs the current metrics state.
func (m *ServiceMetrics) LogSummary() {
	logrus.WithFields(logrus.Fields{
		"service_name":   m.ServiceName,
		"total_requests": m.TotalRequests,
		"success_rate":   m.GetSuccessRate(),
	}).Info("Service metrics summary")
}

// Reset zeroes all counters.
func (m *ServiceMetrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRequests = 0
	m.SuccessfulRequests = 0
	m.FailedRequests = 0
	m.CustomCounters = make(map[string]int64)
	m.LastUpdated = time.Now()
}
