package collector

import (
	"sync"

	"github.com/mavinsight/internal/telemetry"
)

// buffer 单一消息类型的记录缓冲。写入方只有采集循环一个，读取方
// 是任意goroutine的查询调用，读写都必须经过锁；快照在读锁内整体复制，
// 调用方拿到的切片与缓冲不共享底层数组。
type buffer struct {
	mu      sync.RWMutex
	kind    telemetry.Kind
	columns []string
	records []telemetry.Record
	limit   int // 0 = 不限
}

func newBuffer(kind telemetry.Kind, columns []string, limit int) *buffer {
	return &buffer{kind: kind, columns: columns, limit: limit}
}

// append 追加一条记录。超过 limit 时丢弃最旧的，保住最新 limit 条。
func (b *buffer) append(rec telemetry.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, rec)
	if b.limit > 0 && len(b.records) > b.limit {
		b.records = b.records[len(b.records)-b.limit:]
	}
}

// snapshot 调用时刻的冻结副本，记录保持到达顺序
func (b *buffer) snapshot() telemetry.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	records := make([]telemetry.Record, len(b.records))
	copy(records, b.records)
	return telemetry.Snapshot{
		Kind:    b.kind,
		Columns: b.columns,
		Records: records,
	}
}

func (b *buffer) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// reset 清空缓冲（调用方主动放弃已采数据）
func (b *buffer) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = nil
}
