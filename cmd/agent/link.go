package agent

import (
	"github.com/spf13/cobra"
)

// initLinkFlags MAVLink链路 flag 组
func initLinkFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.String("link.endpoint", defaultCfg.Link.Endpoint,
		"-> Connection string, e.g. udp:0.0.0.0:14550 / tcp:host:port / serial:/dev/ttyUSB0:57600 (连接串)")
	f.Uint8("link.system_id", defaultCfg.Link.SystemID,
		"-> Own MAVLink system id, ground side convention 255 (本端系统ID)")
	f.Duration("link.heartbeat_timeout", defaultCfg.Link.HeartbeatTimeout,
		"-> Max wait for the first heartbeat (等待首个心跳的超时)")
}
