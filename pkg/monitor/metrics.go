// Package monitor 聚合各组件持有的指标集。组件只接收自己的指标包，
// 不接触注册器本身，创建与注册统一由 pkg/metrics 的工厂完成。
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mavinsight/pkg/metrics"
)

// -------------------------- 采集核心指标结构体 --------------------------
type CollectorMetrics struct {
	Running       prometheus.Gauge       // 采集循环运行状态（1/0）
	RecordsTotal  *prometheus.CounterVec // 入缓冲记录数（按类型累计）
	SkippedTotal  *prometheus.CounterVec // 跳过消息数（按类型+原因累计）
	BufferRecords *prometheus.GaugeVec   // 缓冲区当前记录数（按类型）
	ReceiveErrors prometheus.Counter     // 可恢复接收错误（累计）
}

// NewCollectorMetrics 创建采集核心指标集
func NewCollectorMetrics(factory *metrics.MetricFactory) CollectorMetrics {
	return CollectorMetrics{
		Running:       factory.NewCollectorRunning(),
		RecordsTotal:  factory.NewTelemetryRecordsTotal(),
		SkippedTotal:  factory.NewTelemetrySkippedTotal(),
		BufferRecords: factory.NewTelemetryBufferRecords(),
		ReceiveErrors: factory.NewReceiveErrorsTotal(),
	}
}

// -------------------------- 链路指标结构体 --------------------------
type LinkMetrics struct {
	FramesTotal *prometheus.CounterVec // 已解码帧数（按报文类型累计）
	ParseErrors prometheus.Counter     // 解析失败帧数（累计）
	Connected   prometheus.Gauge       // 心跳握手完成状态（1/0）
}

// NewLinkMetrics 创建链路指标集
func NewLinkMetrics(factory *metrics.MetricFactory) LinkMetrics {
	return LinkMetrics{
		FramesTotal: factory.NewLinkFramesTotal(),
		ParseErrors: factory.NewLinkParseErrorsTotal(),
		Connected:   factory.NewLinkConnected(),
	}
}

// -------------------------- agent自监控指标结构体 --------------------------
type AgentMetrics struct {
	CPUPercent  prometheus.Gauge   // 进程CPU占用（自上次采样）
	RSSBytes    prometheus.Gauge   // 进程常驻内存（字节）
	Uptime      prometheus.Gauge   // 进程运行时长（秒）
	StatsErrors prometheus.Counter // 采样失败数（累计）
}

// NewAgentMetrics 创建agent自监控指标集
func NewAgentMetrics(factory *metrics.MetricFactory) AgentMetrics {
	return AgentMetrics{
		CPUPercent:  factory.NewAgentCPUPercent(),
		RSSBytes:    factory.NewAgentMemoryRSSBytes(),
		Uptime:      factory.NewAgentUptimeSeconds(),
		StatsErrors: factory.NewAgentStatsErrorsTotal(),
	}
}
