/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package httpmetrics

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records metrics for outgoing GitLab API requests into its own
// registry, so a short-lived process can push them once it is done.
type Recorder struct {
	registry *prometheus.Registry
	clock    clockwork.Clock

	reqCount        *prometheus.CounterVec
	reqDuration     *prometheus.HistogramVec
	rateLimitRemain prometheus.Gauge
}

// NewRecorder returns a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	return newRecorder(clockwork.NewRealClock())
}

func newRecorder(clock clockwork.Clock) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		clock:    clock,
		reqCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitlab_api_request_count",
				Help: "The total number of GitLab API requests",
			},
			[]string{"code", "method", "endpoint"},
		),
		reqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gitlab_api_request_duration_seconds",
				Help:    "The duration of GitLab API requests",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"code", "method", "endpoint"},
		),
		rateLimitRemain: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gitlab_rate_limit_remaining",
			Help: "The number of requests remaining in the current GitLab rate limit window",
		}),
	}
	r.registry.MustRegister(r.reqCount, r.reqDuration, r.rateLimitRemain)
	return r
}

// Registry returns the registry holding the recorded metrics.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WrapTransport wraps t with instrumentation. A nil t wraps http.DefaultTransport.
func (r *Recorder) WrapTransport(t http.RoundTripper) http.RoundTripper {
	if t == nil {
		t = http.DefaultTransport
	}
	return r.instrumentRequest(
		r.instrumentRateLimit(t))
}

func mapErrorToLabel(err error) string {
	if strings.Contains(err.Error(), "no such host") {
		return "no-such-host"
	}
	if strings.Contains(err.Error(), "connection refused") {
		return "connection-refused"
	}
	if strings.Contains(err.Error(), "i/o timeout") {
		return "io-timeout"
	}
	if strings.Contains(err.Error(), "TLS handshake timeout") {
		return "tls-handshake-timeout"
	}
	if strings.Contains(err.Error(), "context canceled") {
		return "context-canceled"
	}
	return "unknown-error"
}

// instrumentRequest counts requests, observes their duration and logs them.
func (r *Recorder) instrumentRequest(next http.RoundTripper) promhttp.RoundTripperFunc {
	return func(req *http.Request) (*http.Response, error) {
		endpoint := bucketizePath(req.URL.Path)
		start := r.clock.Now()

		resp, err := next.RoundTrip(req)
		elapsed := r.clock.Since(start)

		var code string
		if err != nil {
			code = mapErrorToLabel(err)
		} else {
			code = fmt.Sprintf("%d", resp.StatusCode)
		}
		labels := prometheus.Labels{
			"code":     code,
			"method":   req.Method,
			"endpoint": endpoint,
		}
		r.reqCount.With(labels).Inc()
		r.reqDuration.With(labels).Observe(elapsed.Seconds())

		clog.FromContext(req.Context()).With(
			"method", req.Method,
			"endpoint", endpoint,
			"code", code,
			"duration", elapsed,
		).Debug("GitLab API request")

		return resp, err
	}
}

// instrumentRateLimit records the RateLimit-Remaining header GitLab sends
// on authenticated requests.
// See https://docs.gitlab.com/ee/administration/settings/user_and_ip_rate_limits.html#response-headers
func (r *Recorder) instrumentRateLimit(next http.RoundTripper) promhttp.RoundTripperFunc {
	return func(req *http.Request) (*http.Response, error) {
		resp, err := next.RoundTrip(req)
		if err != nil {
			return resp, err
		}
		if v := resp.Header.Get("RateLimit-Remaining"); v != "" {
			remaining, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				clog.FromContext(req.Context()).Warnf("Failed to parse RateLimit-Remaining header: %v", perr)
			} else {
				r.rateLimitRemain.Set(remaining)
			}
		}
		return resp, err
	}
}
