package agent

import (
	"github.com/spf13/cobra"

	"github.com/mavinsight/pkg/config"
)

// defaultCfg flag 缺省值的唯一来源，与 NewDefaultConfig 保持一致
var defaultCfg = config.NewDefaultConfig()

// initServerFlags HTTP服务 flag 组。flag 名与配置键一一对应
// （server.read_timeout → server.read_timeout），viper 直接透传。
func initServerFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.String("server.addr", defaultCfg.Server.Addr, "-> HTTP listening address (HTTP监听地址)")
	f.Duration("server.read_timeout", defaultCfg.Server.ReadTimeout, "-> Read timeout duration (读取超时时间)")
	f.Duration("server.write_timeout", defaultCfg.Server.WriteTimeout, "-> Write timeout duration (写入超时时间)")
	f.Duration("server.idle_timeout", defaultCfg.Server.IdleTimeout, "-> Idle connection timeout duration (空闲连接超时时间)")
}
