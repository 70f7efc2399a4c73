// Package agent 组装并运行遥测采集agent：配置加载、日志、链路握手、
// 采集循环、自监控与HTTP服务，以及信号驱动的优雅关停。
package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mavinsight/internal/collector"
	"github.com/mavinsight/internal/link/mavlink"
	"github.com/mavinsight/internal/server"
	"github.com/mavinsight/internal/stats"
	"github.com/mavinsight/pkg/config"
	"github.com/mavinsight/pkg/logger"
	"github.com/mavinsight/pkg/metrics"
	"github.com/mavinsight/pkg/monitor"
	"github.com/mavinsight/pkg/signal"
	"github.com/mavinsight/pkg/util"
)

const version = "v1.0.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mavinsight",
	Short: "Drone telemetry collection agent (MAVLink link → tabular snapshots + Prometheus)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithCli(cmd)
		if err != nil {
			// 统一输出错误到 stderr，不返回给 cobra
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "请检查配置文件路径或使用 -c 参数指定\n")
			os.Exit(1)
		}
		if err := runAgent(cmd.Context(), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}
		return nil
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "配置文件路径")
	// 注册分组 flag
	initServerFlags(rootCmd)
	initLinkFlags(rootCmd)
	initCollectorFlags(rootCmd)
	initMonitorFlags(rootCmd)
	initLogFlags(rootCmd)
}

// runAgent 按依赖顺序拉起各组件，阻塞到退出信号，再按逆序关停
func runAgent(ctx context.Context, cfg *config.Config) error {
	// 1. 日志
	if _, err := logger.Init(&cfg.Log); err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// 2. banner
	util.PrintBanner("MAVInsight", version)
	logger.Info("configuration loaded",
		zap.String("endpoint", cfg.Link.Endpoint),
		zap.String("listen_addr", cfg.Server.Addr),
		zap.String("config_file", cfgFile))

	// 3. 指标注册器与工厂（挂进程指标，不挂Go指标）
	registry, factory := metrics.InitPromRegistry(true)

	// 4. 建链并等待首个心跳，握手失败即退出
	lk, err := mavlink.Dial(&cfg.Link, monitor.NewLinkMetrics(factory), logger.GetLogger())
	if err != nil {
		return fmt.Errorf("open link failed: %w", err)
	}
	logger.Info("waiting for heartbeat",
		zap.Duration("timeout", cfg.Link.HeartbeatTimeout))
	if err := lk.WaitHeartbeat(cfg.Link.HeartbeatTimeout); err != nil {
		_ = lk.Close()
		return fmt.Errorf("wait heartbeat failed: %w", err)
	}
	target := lk.Target()
	logger.Info("vehicle online",
		zap.Uint8("system_id", target.SystemID),
		zap.Uint8("component_id", target.ComponentID))

	// 5. 采集器
	col, err := collector.New(lk, &cfg.Collector, monitor.NewCollectorMetrics(factory), logger.GetLogger())
	if err != nil {
		_ = lk.Close()
		return fmt.Errorf("build collector failed: %w", err)
	}
	if err := col.Start(); err != nil {
		_ = lk.Close()
		return fmt.Errorf("start collector failed: %w", err)
	}

	// 6. 进程自监控与进度日志
	rep, err := stats.NewReporter(cfg.Monitor.Interval, col, monitor.NewAgentMetrics(factory), logger.GetLogger())
	if err != nil {
		_ = col.Stop()
		_ = lk.Close()
		return fmt.Errorf("build stats reporter failed: %w", err)
	}
	rep.Start(ctx)

	// 7. HTTP服务（指标、状态、遥测快照导出）
	httpServer := server.NewHTTPServer(&cfg.Server, logger.GetLogger(), registry, col, rep, target)
	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("start HTTP server failed: %w", err)
	}

	// 8. 等待退出信号，逆序关停：HTTP → 自监控 → 采集循环 → 链路。
	// 采集循环的停止要等在途接收返回，整体受 signal 包的关停预算兜底。
	signal.WaitForShutdown(logger.GetLogger(), func() error {
		if err := httpServer.Shutdown(); err != nil {
			return fmt.Errorf("shutdown HTTP server failed: %w", err)
		}
		rep.Stop()
		if err := col.Stop(); err != nil {
			return fmt.Errorf("stop collector failed: %w", err)
		}
		if err := lk.Close(); err != nil {
			return fmt.Errorf("close link failed: %w", err)
		}
		logger.Info("all services shutdown successfully")
		return nil
	})
	return nil
}
