package config

import "fmt"

// Validate 采集配置校验
// 至少启用一种消息类型，否则采集循环没有意义。
func (col *CollectorConfig) Validate() error {
	if err := valid.Struct(col); err != nil {
		return err
	}
	// 	校验至少启用一个类型，否则没有意义
	if !col.Attitude.Enable && !col.Position.Enable {
		return fmt.Errorf("at least one telemetry kind must be enabled (attitude/position)")
	}
	if col.BufferLimit < 0 {
		return fmt.Errorf("collector.buffer_limit must be >= 0 (0 = unbounded), got %d", col.BufferLimit)
	}
	return nil
}
