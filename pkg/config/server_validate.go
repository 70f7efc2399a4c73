package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Validate HTTP服务配置校验
func (h *ServerConfig) Validate() error {
	if err := valid.Struct(h); err != nil {
		return err
	}
	// 	校验Addr格式(必须是 ":port" 或 "ip:port")
	if h.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}
	// 	用net包解析地址，验证格式合法性
	_, err := net.ResolveTCPAddr("tcp", h.Addr)
	if err != nil {
		return fmt.Errorf("server.addr format invalid (expected: :port or ip:port), got %s: %w", h.Addr, err)
	}

	return nil
}

// Validate 自监控配置校验
func (m *MonitorConfig) Validate() error {
	if err := valid.Struct(m); err != nil {
		return err
	}
	// 	上报间隔(最小1秒，最大1小时，避免过频/过久)
	if m.Interval < time.Second || m.Interval > 3600*time.Second {
		return fmt.Errorf("monitor.interval must be between 1 and 3600 seconds, got %s", m.Interval)
	}
	return nil
}
