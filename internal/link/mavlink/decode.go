package mavlink

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"

	"github.com/mavinsight/internal/link"
)

// Decode 将 gomavlib 解出的报文翻译为链路消息。已建模的三种报文逐字段
// 搬运线缆原值；其余报文归为 Unknown，只携带报文名供跳过计数使用。
func Decode(msg message.Message) link.Message {
	switch m := msg.(type) {
	case *common.MessageAttitude:
		return link.Attitude{
			TimeBootMs: m.TimeBootMs,
			Roll:       m.Roll,
			Pitch:      m.Pitch,
			Yaw:        m.Yaw,
			RollSpeed:  m.Rollspeed,
			PitchSpeed: m.Pitchspeed,
			YawSpeed:   m.Yawspeed,
		}
	case *common.MessageGlobalPositionInt:
		return link.GlobalPosition{
			TimeBootMs:  m.TimeBootMs,
			Lat:         m.Lat,
			Lon:         m.Lon,
			Alt:         m.Alt,
			RelativeAlt: m.RelativeAlt,
			Vx:          m.Vx,
			Vy:          m.Vy,
			Vz:          m.Vz,
			Hdg:         m.Hdg,
		}
	case *common.MessageHeartbeat:
		return link.Heartbeat{
			Type:           uint8(m.Type),
			Autopilot:      uint8(m.Autopilot),
			BaseMode:       uint8(m.BaseMode),
			CustomMode:     m.CustomMode,
			SystemStatus:   uint8(m.SystemStatus),
			MavlinkVersion: m.MavlinkVersion,
		}
	default:
		return link.Unknown{Name: messageName(msg)}
	}
}

// messageName 从生成的报文类型名还原 MAVLink 报文名：
// 去掉 Message 前缀后按大写分词，如 MessageVfrHud → VFR_HUD。
func messageName(msg message.Message) string {
	t := reflect.TypeOf(msg)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := strings.TrimPrefix(t.Name(), "Message")

	var b strings.Builder
	b.Grow(len(name) + 8)
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
