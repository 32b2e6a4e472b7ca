// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// index is the 1-based position in request order, so an endpoint listed
// twice keeps one series per request.
var probeLabels = []string{"index", "name", "method", "path"}

// Metrics holds the gauges describing a single run.
type Metrics struct {
	registry     *prometheus.Registry
	statusCode   *prometheus.GaugeVec
	duration     *prometheus.GaugeVec
	responseSize *prometheus.GaugeVec
	loginSuccess prometheus.Gauge
	lastRun      prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		statusCode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "apiprobe_request_status_code",
			Help: "HTTP status code returned for the request",
		}, probeLabels),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "apiprobe_request_duration_seconds",
			Help: "Time until the response body was read",
		}, probeLabels),
		responseSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "apiprobe_response_size_bytes",
			Help: "Size of the response body",
		}, probeLabels),
		loginSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "apiprobe_login_success",
			Help: "1 if the login returned 200, 0 otherwise",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "apiprobe_last_run_timestamp_seconds",
			Help: "Start time of the last run",
		}),
	}
	m.registry.MustRegister(m.statusCode, m.duration, m.responseSize, m.loginSuccess, m.lastRun)
	return m
}

// Observe records all results of report.
func (m *Metrics) Observe(report *Report) {
	m.lastRun.Set(float64(report.Started.UnixNano()) / 1e9)
	m.loginSuccess.Set(0)
	if report.LoginSucceeded() {
		m.loginSuccess.Set(1)
	}

	for i, r := range report.Results() {
		labels := []string{strconv.Itoa(i + 1), r.Name, r.Method, r.Path}
		m.statusCode.WithLabelValues(labels...).Set(float64(r.StatusCode))
		m.duration.WithLabelValues(labels...).Set(r.Duration.Seconds())
		m.responseSize.WithLabelValues(labels...).Set(float64(r.Size))
	}
}

// WriteTextfile writes the metrics in the format of the node exporter
// textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// WriteMetrics observes report and writes it to path.
func WriteMetrics(report *Report, path string) error {
	m := NewMetrics()
	m.Observe(report)
	return m.WriteTextfile(path)
}
