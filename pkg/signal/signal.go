package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout 优雅关闭的总预算，超时后直接返回交还主流程退出
const shutdownTimeout = 5 * time.Second

// WaitForShutdown 阻塞等待退出信号（SIGINT/SIGTERM），收到后执行优雅关闭。
// shutdownFunc 在独立 goroutine 中运行，超出预算则放弃等待。
func WaitForShutdown(logger *zap.Logger, shutdownFunc func() error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// 阻塞等待信号
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// 超时控制关闭逻辑
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- shutdownFunc()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			return
		}
		logger.Info("shutdown completed")
	case <-ctx.Done():
		logger.Error("shutdown timed out", zap.Duration("timeout", shutdownTimeout))
	}
}
