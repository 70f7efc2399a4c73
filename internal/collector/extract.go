package collector

import (
	"time"

	"github.com/mavinsight/internal/link"
	"github.com/mavinsight/internal/telemetry"
	"github.com/mavinsight/pkg/config"
)

// Extractor 从一条已知类型的消息中提取记录。纯函数：不阻塞、不修改消息、
// 不panic；消息缺少该类型必需的字段时返回 ok=false，由循环按 malformed 跳过。
// 采集时间戳由循环统一打点后传入。
type Extractor func(msg link.Message, now time.Time) (telemetry.Record, bool)

// ExtractAttitude 提取 ATTITUDE 姿态记录（roll/pitch/yaw，弧度原值）
func ExtractAttitude(msg link.Message, now time.Time) (telemetry.Record, bool) {
	att, ok := msg.(link.Attitude)
	if !ok {
		return nil, false
	}
	return telemetry.AttitudeRecord{
		Timestamp: now,
		Roll:      att.Roll,
		Pitch:     att.Pitch,
		Yaw:       att.Yaw,
	}, true
}

// ExtractPosition 提取 GLOBAL_POSITION_INT 位置记录。
// 经纬度/高度保持线缆原始单位（degE7/degE7/mm），不做换算。
func ExtractPosition(msg link.Message, now time.Time) (telemetry.Record, bool) {
	pos, ok := msg.(link.GlobalPosition)
	if !ok {
		return nil, false
	}
	return telemetry.PositionRecord{
		Timestamp: now,
		Latitude:  pos.Lat,
		Longitude: pos.Lon,
		Altitude:  pos.Alt,
	}, true
}

// Module 一种消息类型的接入声明：开关 + 类型标识 + 提取函数。
// 新增消息类型只需在 Modules 列表添加一条（并在 telemetry 里定义记录与列）。
type Module struct {
	Enabled   bool
	Kind      telemetry.Kind
	Extractor Extractor
}

// Modules 按配置展开本采集器支持的全部消息类型
func Modules(cfg *config.CollectorConfig) []Module {
	return []Module{
		{
			Enabled:   cfg.Attitude.Enable,
			Kind:      telemetry.KindAttitude,
			Extractor: ExtractAttitude,
		},
		{
			Enabled:   cfg.Position.Enable,
			Kind:      telemetry.KindGlobalPosition,
			Extractor: ExtractPosition,
		},
	}
}
