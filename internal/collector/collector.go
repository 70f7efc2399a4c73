// Package collector 实现遥测采集核心：后台采集循环、消息类型分发、
// 按类型缓冲与快照查询。一个 Collector 绑定一条链路，生命周期为
// Stopped → Running → Stopped，可重启，重启不清缓冲。
package collector

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mavinsight/internal/link"
	"github.com/mavinsight/internal/telemetry"
	"github.com/mavinsight/pkg/config"
	"github.com/mavinsight/pkg/monitor"
)

var (
	// ErrAlreadyRunning Start 的前置条件被破坏：采集循环已在运行
	ErrAlreadyRunning = errors.New("collector: already running")
	// ErrNotRunning Stop 的前置条件被破坏：采集循环未在运行
	ErrNotRunning = errors.New("collector: not running")
)

// Collector 遥测采集器。分发表与缓冲集在构造时一次性固定，
// 之后只有采集循环写缓冲，查询接口随时可从任意goroutine读快照。
type Collector struct {
	lk        link.Link
	logger    *zap.Logger
	metrics   monitor.CollectorMetrics
	sessionID string
	now       func() time.Time

	dispatch map[telemetry.Kind]Extractor
	buffers  map[telemetry.Kind]*buffer

	mu      sync.Mutex
	running bool          // Start 置位 / Stop 清零，循环每轮迭代检查
	done    chan struct{} // 循环退出时关闭；nil 表示从未启动
	loopErr error         // 终止循环的链路错误，正常 Stop 为 nil
}

// New 构造采集器。按配置启用的消息类型建立分发表和对应缓冲，
// 二者同生同灭；至少启用一种类型（配置校验也在更早兜住这一条）。
func New(lk link.Link, cfg *config.CollectorConfig, m monitor.CollectorMetrics, logger *zap.Logger) (*Collector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Collector{
		lk:        lk,
		logger:    logger,
		metrics:   m,
		sessionID: uuid.Must(uuid.NewV7()).String(),
		now:       time.Now,
		dispatch:  make(map[telemetry.Kind]Extractor),
		buffers:   make(map[telemetry.Kind]*buffer),
	}

	for _, mod := range Modules(cfg) {
		if !mod.Enabled {
			logger.Debug("telemetry kind disabled", zap.String("kind", string(mod.Kind)))
			continue
		}
		columns, ok := telemetry.Columns(mod.Kind)
		if !ok {
			return nil, fmt.Errorf("collector: kind %s has no column layout", mod.Kind)
		}
		c.dispatch[mod.Kind] = mod.Extractor
		c.buffers[mod.Kind] = newBuffer(mod.Kind, columns, cfg.BufferLimit)
		logger.Info("telemetry kind registered",
			zap.String("kind", string(mod.Kind)),
			zap.Strings("columns", columns))
	}
	if len(c.dispatch) == 0 {
		return nil, fmt.Errorf("collector: no telemetry kinds enabled")
	}
	return c, nil
}

// SessionID 本采集器实例的会话标识，日志与状态接口用它关联一次运行
func (c *Collector) SessionID() string {
	return c.sessionID
}

// Start 启动后台采集循环，立即返回。已在运行时返回 ErrAlreadyRunning。
// 因链路关闭而自行终止的采集器可以直接再次 Start。
func (c *Collector) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		select {
		case <-c.done:
			// 循环已因链路关闭自行退出，允许重启
		default:
			return ErrAlreadyRunning
		}
	}
	c.running = true
	c.loopErr = nil
	c.done = make(chan struct{})
	go c.run(c.done)

	c.logger.Info("collection started", zap.String("session", c.sessionID))
	return nil
}

// Stop 请求循环退出并阻塞到它真正退出（join语义）。未运行时返回
// ErrNotRunning。停止请求在当前接收/分发周期结束后才生效：在途的
// Receive 不会被打断，链路始终无消息时 Stop 会一直等。
func (c *Collector) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return ErrNotRunning
	}
	c.running = false
	done := c.done
	c.mu.Unlock()

	<-done
	c.logger.Info("collection stopped", zap.String("session", c.sessionID))
	return nil
}

// Running 采集循环当前是否存活。循环因链路关闭死亡后返回 false，
// 即使调用方还没有 Stop——循环停摆必须可观察，不允许静默。
func (c *Collector) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Err 终止上一轮循环的链路错误；正常 Stop 或尚在运行时为 nil
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loopErr
}

func (c *Collector) keepRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// run 采集循环主体。指标清零先于 close(done)，Start 以 done 关闭
// 作为上一轮完全退出的依据，保证重启不与收尾竞争。
func (c *Collector) run(done chan struct{}) {
	defer close(done)
	defer c.metrics.Running.Set(0)
	c.metrics.Running.Set(1)

	for c.keepRunning() {
		msg, err := c.lk.Receive()
		if err != nil {
			if errors.Is(err, link.ErrClosed) {
				c.mu.Lock()
				c.loopErr = err
				c.mu.Unlock()
				c.logger.Error("collection loop terminated: link closed",
					zap.String("session", c.sessionID))
				return
			}
			// 单条消息级故障：计数后继续收，绝不让一条坏消息杀死采集
			c.metrics.ReceiveErrors.Inc()
			c.logger.Warn("receive failed, continuing", zap.Error(err))
			continue
		}
		if msg == nil {
			// 链路本次唤醒无消息可交付，重新轮询
			continue
		}
		c.collect(msg)
	}
}

// collect 单条消息的分发：查表 → 提取 → 入缓冲。
// 未登记的类型与字段缺失的消息都只计数跳过。
func (c *Collector) collect(msg link.Message) {
	kind := msg.Kind()
	extract, ok := c.dispatch[kind]
	if !ok {
		c.metrics.SkippedTotal.WithLabelValues(string(kind), "unknown_kind").Inc()
		c.logger.Debug("kind not collected", zap.String("kind", string(kind)))
		return
	}

	rec, ok := extract(msg, c.now())
	if !ok {
		c.metrics.SkippedTotal.WithLabelValues(string(kind), "malformed").Inc()
		c.logger.Warn("malformed message skipped", zap.String("kind", string(kind)))
		return
	}

	buf := c.buffers[kind]
	buf.append(rec)
	c.metrics.RecordsTotal.WithLabelValues(string(kind)).Inc()
	c.metrics.BufferRecords.WithLabelValues(string(kind)).Set(float64(buf.len()))
}
