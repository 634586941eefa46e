package http

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// Policy engine metrics
	policyChecksTotal           *prometheus.CounterVec
	policyValidationErrorsTotal *prometheus.CounterVec
	policyFindingsTotal         *prometheus.CounterVec
	policyComposeCacheTotal     *prometheus.CounterVec
)

// MetricsConfig agrupa dependencias necesarias para exponer /metrics.
type MetricsConfig struct {
	Registry prometheus.Registerer
}

// RegisterMetrics inicializa las métricas HTTP y del engine de policy.
// Devuelve el handler para /metrics.
func RegisterMetrics(cfg MetricsConfig) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		// Policy metrics
		policyChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policy_checks_total",
			Help: "Evaluaciones de configuración ejecutadas por preset",
		}, []string{"preset", "result"}) // result: valid|invalid

		policyValidationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policy_validation_errors_total",
			Help: "Errores de validación detectados por preset",
		}, []string{"preset"})

		policyFindingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policy_findings_total",
			Help: "Findings del linter de seguridad por severidad",
		}, []string{"severity"})

		policyComposeCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policy_compose_cache_total",
			Help: "Accesos al cache de composiciones",
		}, []string{"outcome"}) // outcome: hit|miss

		for _, c := range []prometheus.Collector{
			httpRequestsTotal,
			httpRequestDuration,
			httpInflight,
			policyChecksTotal,
			policyValidationErrorsTotal,
			policyFindingsTotal,
			policyComposeCacheTotal,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	// Usamos el gatherer global por compatibilidad, ya que las métricas se registran allí.
	return promhttp.Handler(), nil
}

// WithMetrics instrumenta requests HTTP con métricas Prometheus (contadores, latencia, inflight).
func WithMetrics(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			duration := time.Since(start).Seconds()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(duration)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

// RecordPolicyCheck registra una evaluación completa (compose + validate + lint).
func RecordPolicyCheck(preset string, validationErrors int, findingsBySeverity map[string]int) {
	if policyChecksTotal == nil {
		return
	}
	result := "valid"
	if validationErrors > 0 {
		result = "invalid"
	}
	policyChecksTotal.WithLabelValues(preset, result).Inc()
	if validationErrors > 0 {
		policyValidationErrorsTotal.WithLabelValues(preset).Add(float64(validationErrors))
	}
	for sev, n := range findingsBySeverity {
		policyFindingsTotal.WithLabelValues(sev).Add(float64(n))
	}
}

// RecordComposeCache registra un hit o miss del cache de composiciones.
func RecordComposeCache(hit bool) {
	if policyComposeCacheTotal == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	policyComposeCacheTotal.WithLabelValues(outcome).Inc()
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// statusRecorder mínimo para instrumentación (no loguea, solo captura status).
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// normalizePath colapsa segmentos dinámicos (IDs, tokens) a :param para
// mantener acotada la cardinalidad de las labels.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		return "/"
	}
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}

	segments := strings.Split(clean, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) {
		return true
	}
	if hexSegmentRE.MatchString(seg) {
		return true
	}
	if tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
