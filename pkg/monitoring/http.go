package monitoring

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Entity ID prefixes collapsed to ":id" in route labels
var idPrefixes = []string{"mem_", "prf_", "con_", "ntf_"}

// HTTPMetricsMiddleware counts requests and records their latency per route and status
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inst := active.Load()
		if inst == nil {
			next.ServeHTTP(w, r)
			return
		}

		rw := &statusWriter{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rw, r)

		opt := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", NormalizeRoute(r.URL.Path)),
			attribute.String("http.status_code", strconv.Itoa(rw.code())),
		)
		inst.requests.Add(r.Context(), 1, opt)
		inst.requestDuration.Record(r.Context(), time.Since(start).Seconds(), opt)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(statusCode int) {
	if s.status == 0 {
		s.status = statusCode
	}
	s.ResponseWriter.WriteHeader(statusCode)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusWriter) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

func (s *statusWriter) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// NormalizeRoute keeps label cardinality bounded by hiding entity IDs
func NormalizeRoute(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if hasIDPrefix(seg) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

func hasIDPrefix(segment string) bool {
	for _, prefix := range idPrefixes {
		if len(segment) > len(prefix) && strings.HasPrefix(segment, prefix) {
			return true
		}
	}
	return false
}
