package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewAgentCPUPercent 创建「agent进程CPU占用」指标
// 指标类型：Gauge - 自上次采样以来本进程的CPU使用百分比
// 核心作用：观察采集进程自身的资源开销，与被采集的遥测数据无关
func (m *MetricFactory) NewAgentCPUPercent() prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agent_cpu_percent",
		Help: "CPU usage of the agent process since the previous sample",
	})
	m.reg.MustRegister(g)
	return g
}

// NewAgentMemoryRSSBytes 创建「agent进程常驻内存」指标
// 指标类型：Gauge - 进程RSS字节数，缓冲区无上限时用它观察增长
func (m *MetricFactory) NewAgentMemoryRSSBytes() prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agent_memory_rss_bytes",
		Help: "Resident set size of the agent process",
	})
	m.reg.MustRegister(g)
	return g
}

// NewAgentUptimeSeconds 创建「agent运行时长」指标
func (m *MetricFactory) NewAgentUptimeSeconds() prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agent_uptime_seconds",
		Help: "Seconds since the agent process started",
	})
	m.reg.MustRegister(g)
	return g
}

// NewAgentStatsErrorsTotal 创建「自监控采样失败总数」指标
// 指标类型：Counter - 读取进程CPU/内存失败的累计次数，采样失败不影响遥测采集
func (m *MetricFactory) NewAgentStatsErrorsTotal() prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agent_stats_errors_total",
		Help: "Total self-stats sampling failures",
	})
	m.reg.MustRegister(c)
	return c
}
