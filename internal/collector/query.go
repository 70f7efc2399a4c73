package collector

import (
	"go.uber.org/zap"

	"github.com/mavinsight/internal/telemetry"
)

// -------------------------- 快照查询接口 --------------------------
// 查询与采集循环并发安全：缓冲内部读写锁隔离，返回值全是调用时刻的副本，
// 拿到手的快照不会再被后续采集改动。

// Snapshot 单一类型的表格快照。类型未登记时 ok 为 false（属正常查询结果，
// 不是错误）；已登记但还没收到数据时返回空快照。
func (c *Collector) Snapshot(kind telemetry.Kind) (telemetry.Snapshot, bool) {
	buf, ok := c.buffers[kind]
	if !ok {
		return telemetry.Snapshot{}, false
	}
	return buf.snapshot(), true
}

// Snapshots 所有已登记类型的快照。各缓冲独立加锁，整体不构成跨类型的
// 一致性切面，单缓冲内部仍是原子快照。
func (c *Collector) Snapshots() map[telemetry.Kind]telemetry.Snapshot {
	out := make(map[telemetry.Kind]telemetry.Snapshot, len(c.buffers))
	for kind, buf := range c.buffers {
		out[kind] = buf.snapshot()
	}
	return out
}

// Counts 各类型当前缓冲条数，供状态接口与进度日志使用，比完整快照轻
func (c *Collector) Counts() map[telemetry.Kind]int {
	out := make(map[telemetry.Kind]int, len(c.buffers))
	for kind, buf := range c.buffers {
		out[kind] = buf.len()
	}
	return out
}

// Kinds 已登记的消息类型集合，无序
func (c *Collector) Kinds() []telemetry.Kind {
	out := make([]telemetry.Kind, 0, len(c.buffers))
	for kind := range c.buffers {
		out = append(out, kind)
	}
	return out
}

// Reset 清空全部缓冲并将缓冲水位指标归零。采集循环不受影响，
// 清空后新记录照常累积；已发出的快照是副本，不被回收。
func (c *Collector) Reset() {
	for kind, buf := range c.buffers {
		buf.reset()
		c.metrics.BufferRecords.WithLabelValues(string(kind)).Set(0)
	}
	c.logger.Info("telemetry buffers reset", zap.String("session", c.sessionID))
}
