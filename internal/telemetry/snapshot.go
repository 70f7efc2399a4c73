package telemetry

import "encoding/json"

// Snapshot 某一消息类型缓冲区在调用时刻的冻结副本，按到达顺序排列。
// 副本与缓冲区不共享底层数组，持有方可以任意读写。
type Snapshot struct {
	Kind    Kind
	Columns []string
	Records []Record
}

// Len 快照内的记录条数。
func (s Snapshot) Len() int { return len(s.Records) }

// Rows 将记录展开为表格形态，行序与采集顺序一致。
func (s Snapshot) Rows() [][]any {
	rows := make([][]any, len(s.Records))
	for i, rec := range s.Records {
		rows[i] = rec.Row()
	}
	return rows
}

// MarshalJSON 输出 HTTP 导出用的表格结构：{kind, columns, count, rows}。
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    Kind     `json:"kind"`
		Columns []string `json:"columns"`
		Count   int      `json:"count"`
		Rows    [][]any  `json:"rows"`
	}{
		Kind:    s.Kind,
		Columns: s.Columns,
		Count:   len(s.Records),
		Rows:    s.Rows(),
	})
}
