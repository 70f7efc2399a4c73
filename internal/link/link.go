// Package link 定义采集器消费的链路抽象：一条可接收遥测消息、可关闭的连接。
// 具体实现见 link/mavlink。
package link

import (
	"errors"

	"github.com/mavinsight/internal/telemetry"
)

// ErrClosed 链路已关闭。Receive 返回该错误后不会再有消息，采集循环以此为终止信号。
var ErrClosed = errors.New("link: closed")

// Link 采集循环持有的链路句柄。
type Link interface {
	// Receive 阻塞等待下一条消息，调用方不加超时。约定：
	//   (msg, nil)        正常收到一条消息
	//   (nil, nil)        本次唤醒无消息可交付（链路内部事件），重新轮询即可
	//   (nil, ErrClosed)  链路关闭，循环终止
	//   (nil, err)        单条消息级故障（如解析失败），可恢复，继续轮询
	Receive() (Message, error)

	// Close 关闭链路并解除阻塞中的 Receive。幂等。
	Close() error
}

// Message 一条已解码的线缆消息。
type Message interface {
	Kind() telemetry.Kind
}

// Attitude ATTITUDE 报文载荷，弧度与弧度/秒，保持线缆原值。
type Attitude struct {
	TimeBootMs uint32  // 机载启动毫秒
	Roll       float32 // 横滚角（rad）
	Pitch      float32 // 俯仰角（rad）
	Yaw        float32 // 偏航角（rad）
	RollSpeed  float32
	PitchSpeed float32
	YawSpeed   float32
}

func (Attitude) Kind() telemetry.Kind { return telemetry.KindAttitude }

// GlobalPosition GLOBAL_POSITION_INT 报文载荷，保持线缆原始单位
//（经纬度 degE7、高度毫米、速度 cm/s、航向 cdeg）。
type GlobalPosition struct {
	TimeBootMs  uint32
	Lat         int32
	Lon         int32
	Alt         int32
	RelativeAlt int32
	Vx          int16
	Vy          int16
	Vz          int16
	Hdg         uint16
}

func (GlobalPosition) Kind() telemetry.Kind { return telemetry.KindGlobalPosition }

// Heartbeat HEARTBEAT 报文载荷。仅用于握手与在线判定，不进入采集缓冲。
type Heartbeat struct {
	Type           uint8
	Autopilot      uint8
	BaseMode       uint8
	CustomMode     uint32
	SystemStatus   uint8
	MavlinkVersion uint8
}

func (Heartbeat) Kind() telemetry.Kind { return telemetry.KindHeartbeat }

// Unknown 适配层未建模的消息，原样携带报文名，由采集循环按未识别类型跳过。
type Unknown struct {
	Name string
}

func (u Unknown) Kind() telemetry.Kind { return telemetry.Kind(u.Name) }

// Info 链路的静态描述，供状态接口与日志使用。
type Info struct {
	Endpoint    string `json:"endpoint"`
	SystemID    uint8  `json:"system_id"`
	ComponentID uint8  `json:"component_id"`
}
