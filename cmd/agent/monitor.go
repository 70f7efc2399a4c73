package agent

import (
	"github.com/spf13/cobra"
)

// initMonitorFlags 自监控上报 flag 组
func initMonitorFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.Duration("monitor.interval", defaultCfg.Monitor.Interval,
		"-> Self stats sampling / progress log interval (自监控采样与进度日志间隔)")
}
