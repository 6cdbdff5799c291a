package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricNamespace = "fee_manager"

	labelPath   = "path"
	labelMethod = "method"
	labelCode   = "code"
)

// InboundHTTPMetrics stores the pointers to inbound http metrics
type InboundHTTPMetrics struct {
	requestsReceived  *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	responseBodyBytes *prometheus.HistogramVec
}

// NewInboundHTTPMetrics takes in a prometheus registry and initializes
// and registers server configuration. It returns those registered metrics
// these are for requests made to the service
func NewInboundHTTPMetrics(r prometheus.Registerer) *InboundHTTPMetrics {
	return &InboundHTTPMetrics{
		requestsReceived: promauto.With(r).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      "inbound_http_requests_total",
				Help:      "the total http requests received",
			}, []string{labelPath, labelMethod, labelCode},
		),
		requestDuration: promauto.With(r).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricNamespace,
				Name:      "inbound_http_request_duration_seconds",
				Help:      "the seconds taken to respond",
				Buckets:   prometheus.ExponentialBuckets(0.001, 3, 8),
			}, []string{labelPath, labelMethod}),
		responseBodyBytes: promauto.With(r).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricNamespace,
				Name:      "inbound_http_response_bytes",
				Help:      "the total bytes sent as http response body",
				Buckets:   prometheus.ExponentialBuckets(500, 3, 8),
			}, []string{labelPath, labelMethod}),
	}
}

// httpStateRecorder wraps a request
type httpStateRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

// WriteHeader implements the ResponseWriter.WriteHeader interface
func (r *httpStateRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Write implements the ResponseWriter.Write interface and counts the bytes written
func (r *httpStateRecorder) Write(bytes []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}

	n, err := r.ResponseWriter.Write(bytes)
	r.size += n
	return n, err
}

// Middleware wraps a http handler
type Middleware func(http.Handler) http.Handler

// Chain a helper for chaining middleware functions
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

// InboundHTTPMetricMiddleware exports prometheus metrics for the http tier.
// It must run inside the router so requests are labelled by their route template.
func InboundHTTPMetricMiddleware(metrics *InboundHTTPMetrics) mux.MiddlewareFunc {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			start := time.Now()
			recorder := &httpStateRecorder{
				ResponseWriter: rw,
			}

			// handle the request
			handler.ServeHTTP(recorder, req)

			path := "not_recorded"
			if route := mux.CurrentRoute(req); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					path = tpl
				}
			}

			labels := prometheus.Labels{labelPath: path, labelMethod: req.Method}
			if recorder.size != 0 {
				metrics.responseBodyBytes.With(labels).Observe(float64(recorder.size))
			}
			metrics.requestDuration.With(labels).Observe(time.Since(start).Seconds())

			labels[labelCode] = strconv.Itoa(recorder.status)
			metrics.requestsReceived.With(labels).Inc()
		})
	}
}
