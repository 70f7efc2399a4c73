// Package stats 进程自监控：按固定间隔采样本进程 CPU/内存并更新指标，
// 同时输出遥测采集进度日志。供 /status 查询最近一次采样值。
package stats

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/mavinsight/internal/telemetry"
	"github.com/mavinsight/pkg/monitor"
)

// CountSource 进度日志的数据来源（采集器实现）
type CountSource interface {
	Counts() map[telemetry.Kind]int
	Running() bool
}

// Usage 最近一次进程采样结果
type Usage struct {
	CPUPercent float64   `json:"cpu_percent"` // 自上次采样以来的CPU占用
	RSSBytes   uint64    `json:"rss_bytes"`   // 常驻内存
	SampledAt  time.Time `json:"sampled_at"`
}

// Reporter 周期采样器。Start 启动后台循环，Stop 等待其退出。
type Reporter struct {
	interval time.Duration
	proc     *process.Process
	source   CountSource
	metrics  monitor.AgentMetrics
	logger   *zap.Logger
	startAt  time.Time

	mu      sync.Mutex
	usage   Usage
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewReporter 绑定当前进程。source 可为 nil（只采自身，不输出进度日志）。
func NewReporter(interval time.Duration, source CountSource, m monitor.AgentMetrics, logger *zap.Logger) (*Reporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("stats: attach process: %w", err)
	}
	return &Reporter{
		interval: interval,
		proc:     proc,
		source:   source,
		metrics:  m,
		logger:   logger,
		startAt:  time.Now(),
	}, nil
}

// Start 启动采样循环（立即采一次，之后按间隔）。重复启动只告警。
// 同时监听外部 ctx 与内部停止信号。
func (r *Reporter) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		r.logger.Warn("stats reporter already started")
		return
	}
	innerCtx, cancel := context.WithCancel(context.Background())
	r.running = true
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	ticker := time.NewTicker(r.interval)
	r.logger.Info("stats reporter started", zap.Duration("interval", r.interval))

	go func() {
		defer close(done)
		defer ticker.Stop()

		// 首次采样不等tick（失败仅计数告警）
		r.sample()

		for {
			select {
			case <-ticker.C:
				r.sample()
			case <-ctx.Done(): // 响应外部关闭信号
				r.logger.Info("stats reporter stopped by external context")
				return
			case <-innerCtx.Done(): // 响应主动 Stop
				return
			}
		}
	}()
}

// Stop 停止采样循环并等待退出。未启动时直接返回。
func (r *Reporter) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done
	r.logger.Info("stats reporter stopped")
}

// Usage 最近一次采样值（拷贝）
func (r *Reporter) Usage() Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage
}

// Uptime 进程自 Reporter 构造起的运行时长
func (r *Reporter) Uptime() time.Duration {
	return time.Since(r.startAt)
}

// sample 单轮采样：进程CPU/RSS → 指标与缓存，再带上各类型缓冲条数打进度日志。
// 单项失败不中断本轮其余项。
func (r *Reporter) sample() {
	cur := Usage{SampledAt: time.Now()}

	cpu, err := r.proc.Percent(0)
	if err != nil {
		r.metrics.StatsErrors.Inc()
		r.logger.Warn("sample process cpu failed", zap.Error(err))
	} else {
		cur.CPUPercent = cpu
		r.metrics.CPUPercent.Set(cpu)
	}

	mem, err := r.proc.MemoryInfo()
	if err != nil {
		r.metrics.StatsErrors.Inc()
		r.logger.Warn("sample process memory failed", zap.Error(err))
	} else {
		cur.RSSBytes = mem.RSS
		r.metrics.RSSBytes.Set(float64(mem.RSS))
	}

	r.metrics.Uptime.Set(time.Since(r.startAt).Seconds())

	r.mu.Lock()
	r.usage = cur
	r.mu.Unlock()

	if r.source == nil {
		return
	}
	fields := make([]zap.Field, 0, 4)
	for kind, n := range r.source.Counts() {
		fields = append(fields, zap.Int(string(kind), n))
	}
	fields = append(fields,
		zap.Bool("collecting", r.source.Running()),
		zap.Float64("cpu_percent", cur.CPUPercent),
		zap.Uint64("rss_bytes", cur.RSSBytes))
	r.logger.Info("telemetry progress", fields...)
}
