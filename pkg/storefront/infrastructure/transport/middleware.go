package transport

import (
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/infrastructure/metrics"
)

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}

func metricsMiddleware(m *metrics.ServerMetrics, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		if action == "" {
			action = r.URL.Path
		}
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		started := time.Now()
		h.ServeHTTP(recorder, r)

		m.Requests.WithLabelValues(action, strconv.Itoa(recorder.status)).Inc()
		m.LatencyMS.WithLabelValues(action).Observe(float64(time.Since(started).Milliseconds()))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
