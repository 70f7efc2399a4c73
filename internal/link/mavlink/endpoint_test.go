package mavlink_test

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavinsight/internal/link/mavlink"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want gomavlib.EndpointConf
	}{
		{
			name: "udp监听",
			raw:  "udp:0.0.0.0:14550",
			want: gomavlib.EndpointUDPServer{Address: "0.0.0.0:14550"},
		},
		{
			name: "udpin同义",
			raw:  "udpin:127.0.0.1:14550",
			want: gomavlib.EndpointUDPServer{Address: "127.0.0.1:14550"},
		},
		{
			name: "udp外发",
			raw:  "udpout:10.0.0.2:14550",
			want: gomavlib.EndpointUDPClient{Address: "10.0.0.2:14550"},
		},
		{
			name: "tcp客户端",
			raw:  "tcp:10.0.0.2:5760",
			want: gomavlib.EndpointTCPClient{Address: "10.0.0.2:5760"},
		},
		{
			name: "tcp监听",
			raw:  "tcpin:0.0.0.0:5760",
			want: gomavlib.EndpointTCPServer{Address: "0.0.0.0:5760"},
		},
		{
			name: "串口带波特率",
			raw:  "serial:/dev/ttyUSB0:57600",
			want: gomavlib.EndpointSerial{Device: "/dev/ttyUSB0", Baud: 57600},
		},
		{
			name: "串口缺省波特率",
			raw:  "serial:/dev/ttyUSB0",
			want: gomavlib.EndpointSerial{Device: "/dev/ttyUSB0", Baud: 115200},
		},
		{
			name: "裸设备路径",
			raw:  "/dev/ttyACM0",
			want: gomavlib.EndpointSerial{Device: "/dev/ttyACM0", Baud: 115200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mavlink.ParseEndpoint(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEndpointInvalid(t *testing.T) {
	invalid := []string{
		"",
		"udp:",
		"udp:nohostport",
		"udpout:0.0.0.0",         // 缺端口
		"http:localhost:80",      // 不支持的协议
		"serial::57600",          // 空设备
		"serial:/dev/ttyUSB0:x",  // 非数字波特率
		"serial:/dev/ttyUSB0:-1", // 非法波特率
		"14550",                  // 纯端口无协议
	}

	for _, raw := range invalid {
		t.Run(raw, func(t *testing.T) {
			_, err := mavlink.ParseEndpoint(raw)
			assert.Error(t, err, "endpoint %q should be rejected", raw)
		})
	}
}
