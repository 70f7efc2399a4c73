// Package telemetry 定义遥测数据的基础类型：消息类型标识、单条记录、表格快照。
// 不依赖任何内部包，是整个仓库的叶子包。
package telemetry

import "time"

// Kind 消息类型标识，取值与 MAVLink 报文名一致（如 "ATTITUDE"）。
// 未识别的类型原样携带其报文名。
type Kind string

const (
	KindAttitude       Kind = "ATTITUDE"
	KindGlobalPosition Kind = "GLOBAL_POSITION_INT"
	KindHeartbeat      Kind = "HEARTBEAT"
)

// Record 一条已提取的遥测记录（不可变值类型）。
type Record interface {
	Kind() Kind
	CapturedAt() time.Time // 采集端打上的接收时间戳
	Row() []any            // 按 Columns(kind) 的列顺序展开
}

// AttitudeRecord 姿态记录。角度为弧度，保持链路原值不做换算。
type AttitudeRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Roll      float32   `json:"roll"`
	Pitch     float32   `json:"pitch"`
	Yaw       float32   `json:"yaw"`
}

func (r AttitudeRecord) Kind() Kind            { return KindAttitude }
func (r AttitudeRecord) CapturedAt() time.Time { return r.Timestamp }
func (r AttitudeRecord) Row() []any            { return []any{r.Timestamp, r.Roll, r.Pitch, r.Yaw} }

// PositionRecord 位置记录。字段保持 GLOBAL_POSITION_INT 的原始线缆单位：
// 纬度/经度为 degE7，高度为毫米。换算留给消费方。
type PositionRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  int32     `json:"latitude"`
	Longitude int32     `json:"longitude"`
	Altitude  int32     `json:"altitude"`
}

func (r PositionRecord) Kind() Kind            { return KindGlobalPosition }
func (r PositionRecord) CapturedAt() time.Time { return r.Timestamp }
func (r PositionRecord) Row() []any {
	return []any{r.Timestamp, r.Latitude, r.Longitude, r.Altitude}
}

// Columns 返回某类型记录的列名（与 Record.Row 顺序一致）。
// 未定义表格形态的类型返回 ok=false。
func Columns(kind Kind) ([]string, bool) {
	switch kind {
	case KindAttitude:
		return []string{"timestamp", "roll", "pitch", "yaw"}, true
	case KindGlobalPosition:
		return []string{"timestamp", "latitude", "longitude", "altitude"}, true
	default:
		return nil, false
	}
}
