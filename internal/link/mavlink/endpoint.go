package mavlink

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/bluenviron/gomavlib/v3"
)

// defaultSerialBaud 连接串未指定波特率时的缺省值
const defaultSerialBaud = 115200

// ParseEndpoint 解析连接串为 gomavlib 端点配置。支持的形式：
//
//	udp:host:port     UDP监听（udpin 同义）
//	udpout:host:port  UDP外发
//	tcp:host:port     TCP客户端
//	tcpin:host:port   TCP监听
//	serial:dev:baud   串口（baud 可省略）
//	/dev/ttyUSB0      裸设备路径，等价于 serial:/dev/ttyUSB0:115200
func ParseEndpoint(raw string) (gomavlib.EndpointConf, error) {
	if strings.HasPrefix(raw, "/") {
		return gomavlib.EndpointSerial{Device: raw, Baud: defaultSerialBaud}, nil
	}

	scheme, rest, found := strings.Cut(raw, ":")
	if !found || rest == "" {
		return nil, fmt.Errorf("link: invalid endpoint %q", raw)
	}

	switch scheme {
	case "udp", "udpin":
		if err := checkHostPort(rest); err != nil {
			return nil, fmt.Errorf("link: invalid endpoint %q: %w", raw, err)
		}
		return gomavlib.EndpointUDPServer{Address: rest}, nil
	case "udpout":
		if err := checkHostPort(rest); err != nil {
			return nil, fmt.Errorf("link: invalid endpoint %q: %w", raw, err)
		}
		return gomavlib.EndpointUDPClient{Address: rest}, nil
	case "tcp":
		if err := checkHostPort(rest); err != nil {
			return nil, fmt.Errorf("link: invalid endpoint %q: %w", raw, err)
		}
		return gomavlib.EndpointTCPClient{Address: rest}, nil
	case "tcpin":
		if err := checkHostPort(rest); err != nil {
			return nil, fmt.Errorf("link: invalid endpoint %q: %w", raw, err)
		}
		return gomavlib.EndpointTCPServer{Address: rest}, nil
	case "serial":
		device, baudStr, hasBaud := strings.Cut(rest, ":")
		if device == "" {
			return nil, fmt.Errorf("link: invalid endpoint %q: empty device", raw)
		}
		baud := defaultSerialBaud
		if hasBaud {
			b, err := strconv.Atoi(baudStr)
			if err != nil || b <= 0 {
				return nil, fmt.Errorf("link: invalid endpoint %q: bad baud %q", raw, baudStr)
			}
			baud = b
		}
		return gomavlib.EndpointSerial{Device: device, Baud: baud}, nil
	default:
		return nil, fmt.Errorf("link: unsupported endpoint scheme %q", scheme)
	}
}

func checkHostPort(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if port == "" {
		return fmt.Errorf("missing port")
	}
	return nil
}
