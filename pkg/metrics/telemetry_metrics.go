package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewCollectorRunning 采集循环运行状态指标
// 指标类型：Gauge - 1表示采集循环在运行，0表示已停止（含链路关闭导致的终止）
// 核心作用：循环死亡必须对外可见，不允许静默停摆
func (m *MetricFactory) NewCollectorRunning() prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "collector_running",
		Help: "Whether the collection loop is running (1) or stopped (0)",
	})
	m.reg.MustRegister(g)
	return g
}

// NewTelemetryRecordsTotal 创建「遥测记录总数」指标
// 指标类型：Counter - 按消息类型累计已入缓冲的记录条数
// 标签说明：
// kind: 消息类型（如 "ATTITUDE"、"GLOBAL_POSITION_INT"）
func (m *MetricFactory) NewTelemetryRecordsTotal() *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_records_total",
		Help: "Total telemetry records appended per message kind",
	}, []string{"kind"})
	m.reg.MustRegister(c)
	return c
}

// NewTelemetrySkippedTotal 创建「跳过消息总数」指标
// 指标类型：Counter - 未入缓冲的消息按原因累计
// 标签说明：
// kind:   消息类型（未识别类型原样携带报文名）
// reason: 跳过原因（unknown_kind=类型未登记 / malformed=已知类型但字段缺失）
func (m *MetricFactory) NewTelemetrySkippedTotal() *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_skipped_total",
		Help: "Messages skipped by the collection loop, by reason",
	}, []string{"kind", "reason"})
	m.reg.MustRegister(c)
	return c
}

// NewTelemetryBufferRecords 创建「缓冲区当前记录数」指标
func (m *MetricFactory) NewTelemetryBufferRecords() *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "telemetry_buffer_records",
		Help: "Records currently held in each kind buffer",
	}, []string{"kind"})
	m.reg.MustRegister(g)
	return g
}

// NewReceiveErrorsTotal 创建「可恢复接收错误总数」指标
// 仅统计循环跳过后继续运行的接收错误；链路关闭走 collector_running 归零
func (m *MetricFactory) NewReceiveErrorsTotal() prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "collector_receive_errors_total",
		Help: "Recoverable receive failures observed by the collection loop",
	})
	m.reg.MustRegister(c)
	return c
}
