package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	passDuration  *prom.HistogramVec
	documents     *prom.CounterVec
	fetchDuration *prom.HistogramVec
	cacheResults  *prom.CounterVec
	lastPassDocs  prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		passDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of indexing passes",
			Buckets:   prom.DefBuckets,
		}, []string{"source"}),
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed by result",
		}, []string{"result"}),
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of remote source operations",
			Buckets:   prom.DefBuckets,
		}, []string{"operation", "result"}),
		cacheResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by hit or miss",
		}, []string{"result"}),
		lastPassDocs: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_pass_documents",
			Help:      "Documents indexed by the most recent pass",
		}),
	}
	reg.MustRegister(pr.passDuration, pr.documents, pr.fetchDuration, pr.cacheResults, pr.lastPassDocs)
	return pr
}

func (p *PrometheusRecorder) ObservePassDuration(source string, d time.Duration) {
	if p == nil {
		return
	}
	p.passDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentResult(result DocumentResult) {
	if p == nil {
		return
	}
	p.documents.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveFetchDuration(operation string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.fetchDuration.WithLabelValues(operation, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheResult(hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetLastPassDocuments(n int) {
	if p == nil {
		return
	}
	p.lastPassDocs.Set(float64(n))
}
