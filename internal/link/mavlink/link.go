// Package mavlink 基于 gomavlib 的链路实现：建链、心跳握手、
// 事件流到链路消息的翻译。
package mavlink

import (
	"fmt"
	"sync"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"go.uber.org/zap"

	"github.com/mavinsight/internal/link"
	"github.com/mavinsight/pkg/config"
	"github.com/mavinsight/pkg/monitor"
)

var _ link.Link = (*Link)(nil)

// Link gomavlib 节点的链路封装。Receive 由采集循环独占调用，
// Target/Close 可来自任意goroutine。
type Link struct {
	node    *gomavlib.Node
	logger  *zap.Logger
	metrics monitor.LinkMetrics

	mu   sync.Mutex
	info link.Info

	once sync.Once
}

// Dial 解析连接串并启动 MAVLink 节点。节点起来即返回，对端是否在线
// 由 WaitHeartbeat 确认。
func Dial(cfg *config.LinkConfig, m monitor.LinkMetrics, logger *zap.Logger) (*Link, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ep, err := ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints:   []gomavlib.EndpointConf{ep},
		Dialect:     common.Dialect,
		OutVersion:  gomavlib.V2,
		OutSystemID: cfg.SystemID,
	})
	if err != nil {
		return nil, fmt.Errorf("link: open %s: %w", cfg.Endpoint, err)
	}

	logger.Info("link opened",
		zap.String("endpoint", cfg.Endpoint),
		zap.Uint8("own_system_id", cfg.SystemID))
	return &Link{
		node:    node,
		logger:  logger,
		metrics: m,
		info:    link.Info{Endpoint: cfg.Endpoint},
	}, nil
}

// WaitHeartbeat 阻塞等待对端首个心跳并记录其系统/组件ID，超时报错。
// 心跳前到达的其他报文在此阶段直接丢弃。
func (l *Link) WaitHeartbeat(timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case evt, ok := <-l.node.Events():
			if !ok {
				return link.ErrClosed
			}
			frm, ok := evt.(*gomavlib.EventFrame)
			if !ok {
				continue
			}
			if _, ok := frm.Message().(*common.MessageHeartbeat); !ok {
				continue
			}

			l.mu.Lock()
			l.info.SystemID = frm.SystemID()
			l.info.ComponentID = frm.ComponentID()
			info := l.info
			l.mu.Unlock()

			l.metrics.Connected.Set(1)
			l.logger.Info("heartbeat received",
				zap.Uint8("system_id", info.SystemID),
				zap.Uint8("component_id", info.ComponentID))
			return nil
		case <-deadline.C:
			return fmt.Errorf("link: no heartbeat within %s", timeout)
		}
	}
}

// Receive 取下一个节点事件并翻译成链路约定：
// 解码帧 → 消息；解析失败 → 可恢复错误；通道开合等内部事件 → 空唤醒；
// 事件流关闭 → ErrClosed。
func (l *Link) Receive() (link.Message, error) {
	evt, ok := <-l.node.Events()
	if !ok {
		l.metrics.Connected.Set(0)
		return nil, link.ErrClosed
	}

	switch e := evt.(type) {
	case *gomavlib.EventFrame:
		msg := Decode(e.Message())
		l.metrics.FramesTotal.WithLabelValues(string(msg.Kind())).Inc()
		return msg, nil
	case *gomavlib.EventParseError:
		l.metrics.ParseErrors.Inc()
		return nil, fmt.Errorf("link: parse frame: %w", e.Error)
	case *gomavlib.EventChannelOpen:
		l.logger.Debug("link channel open")
		return nil, nil
	case *gomavlib.EventChannelClose:
		l.logger.Debug("link channel close")
		return nil, nil
	default:
		return nil, nil
	}
}

// Close 关闭节点。事件流随之关闭，阻塞中的 Receive 以 ErrClosed 解除。幂等。
func (l *Link) Close() error {
	l.once.Do(func() {
		l.node.Close()
		l.metrics.Connected.Set(0)
		l.logger.Info("link closed", zap.String("endpoint", l.info.Endpoint))
	})
	return nil
}

// Target 链路静态描述：连接串与心跳握手记下的对端ID
func (l *Link) Target() link.Info {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.info
}
