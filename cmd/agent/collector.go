package agent

import (
	"github.com/spf13/cobra"
)

// initCollectorFlags 遥测采集 flag 组
func initCollectorFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.Bool("collector.attitude.enable", defaultCfg.Collector.Attitude.Enable,
		"-> Collect ATTITUDE messages (采集姿态报文)")
	f.Bool("collector.position.enable", defaultCfg.Collector.Position.Enable,
		"-> Collect GLOBAL_POSITION_INT messages (采集位置报文)")
	f.Int("collector.buffer_limit", defaultCfg.Collector.BufferLimit,
		"-> Per-kind buffer cap, 0 = unbounded, oldest dropped beyond (单类型缓冲上限)")
}
