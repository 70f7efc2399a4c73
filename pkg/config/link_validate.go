package config

import (
	"fmt"
	"strings"
	"time"
)

// linkSchemes 支持的连接串前缀，与 pymavlink 的习惯保持一致
var linkSchemes = map[string]bool{
	"udp":    true, // 监听
	"udpin":  true, // 监听（显式写法）
	"udpout": true, // 外发
	"tcp":    true, // 客户端
	"tcpin":  true, // 服务端
	"serial": true,
}

// Validate 链路配置校验
// 这里只做早期的形态检查（前缀合法、系统ID非零、超时区间合理），
// host:port/波特率的完整解析在建链时由 mavlink 适配层完成。
func (l *LinkConfig) Validate() error {
	if err := valid.Struct(l); err != nil {
		return err
	}

	ep := strings.TrimSpace(l.Endpoint)
	if ep == "" {
		return fmt.Errorf("link.endpoint cannot be empty")
	}

	// 裸设备路径（如 /dev/ttyUSB0）直接放行
	if !strings.HasPrefix(ep, "/") {
		scheme, rest, found := strings.Cut(ep, ":")
		if !found || rest == "" {
			return fmt.Errorf("link.endpoint invalid (expected: scheme:target, e.g. udp:0.0.0.0:14550), got %s", l.Endpoint)
		}
		if !linkSchemes[strings.ToLower(scheme)] {
			return fmt.Errorf("link.endpoint scheme %q not supported (valid: udp/udpin/udpout/tcp/tcpin/serial or a device path)", scheme)
		}
	}

	if l.SystemID == 0 {
		return fmt.Errorf("link.system_id must be 1-255, got 0")
	}

	// 	超时区间（最小1秒，最大10分钟，避免误配卡死启动）
	if l.HeartbeatTimeout < time.Second || l.HeartbeatTimeout > 10*time.Minute {
		return fmt.Errorf("link.heartbeat_timeout must be between 1s and 10m, got %s", l.HeartbeatTimeout)
	}
	return nil
}
