package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// -------------------------- 链路指标创建方法 --------------------------

func (f *MetricFactory) NewLinkFramesTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_frames_total",
			Help: "Total decoded MAVLink frames received over the link",
		},
		[]string{"kind"},
	)
}

func (f *MetricFactory) NewLinkParseErrorsTotal() prometheus.Counter {
	return promauto.With(f.reg).NewCounter(
		prometheus.CounterOpts{
			Name: "link_parse_errors_total",
			Help: "Total frames the link failed to parse",
		},
	)
}

func (f *MetricFactory) NewLinkConnected() prometheus.Gauge {
	return promauto.With(f.reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "link_connected",
			Help: "Whether the vehicle link completed its heartbeat handshake (1) or is closed (0)",
		},
	)
}
