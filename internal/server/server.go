// Package server 提供HTTP服务核心功能：Prometheus指标暴露、健康检查、
// 遥测快照导出与运行状态查询，支持优雅启动/关闭。
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mavinsight/internal/link"
	"github.com/mavinsight/internal/stats"
	"github.com/mavinsight/internal/telemetry"
	"github.com/mavinsight/pkg/config"
)

// TelemetryStore 遥测查询面（采集器实现）
type TelemetryStore interface {
	SessionID() string
	Running() bool
	Err() error
	Snapshot(kind telemetry.Kind) (telemetry.Snapshot, bool)
	Snapshots() map[telemetry.Kind]telemetry.Snapshot
	Counts() map[telemetry.Kind]int
}

// UsageSource 进程用量查询面（stats.Reporter实现）
type UsageSource interface {
	Usage() stats.Usage
	Uptime() time.Duration
}

// Server HTTP服务实例，封装核心依赖和配置
type Server struct {
	cfg      *config.ServerConfig
	logger   *zap.Logger
	registry *prometheus.Registry
	store    TelemetryStore
	usage    UsageSource
	target   link.Info

	server *http.Server
	mux    *customMux
}

// statusWriter 包装ResponseWriter，捕获状态码
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader 捕获状态码
func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// customMux 自定义Mux，兼容原生用法并记录路由
type customMux struct {
	http.ServeMux
	routes []string
	mu     sync.Mutex
}

// Handle 重写Handle，注册路由时记录路径
func (m *customMux) Handle(pattern string, handler http.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, route := range m.routes {
		if route == pattern {
			m.ServeMux.Handle(pattern, handler)
			return
		}
	}

	m.routes = append(m.routes, pattern)
	m.ServeMux.Handle(pattern, handler)
}

// HandleFunc 重写HandleFunc
func (m *customMux) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	m.Handle(pattern, http.HandlerFunc(handler))
}

const defaultShutdownTimeout = 5 * time.Second

// NewHTTPServer 创建HTTP服务实例。超时参数取自配置；
// target 为心跳握手后的链路描述，仅作状态展示。
func NewHTTPServer(
	cfg *config.ServerConfig,
	logger *zap.Logger,
	registry *prometheus.Registry,
	store TelemetryStore,
	usage UsageSource,
	target link.Info,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		store:    store,
		usage:    usage,
		target:   target,
		mux:      &customMux{},
	}

	srv.registerEndpoints()

	srv.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.logMiddleware(srv.mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return srv
}

// logMiddleware 统一日志记录
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.logger.Info(
			"HTTP request",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Handler 完整处理链（含日志中间件），测试用
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start 启动HTTP服务（非阻塞）
func (s *Server) Start() error {
	s.logger.Info(
		"starting HTTP server",
		zap.String("listen_addr", s.cfg.Addr),
		zap.Strings("handle_funcs", s.mux.routes),
	)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown 优雅关闭HTTP服务，等待在途请求完成，超时视为已完成
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("shutdown timeout exceeded")
			return nil
		}
		s.logger.Error("HTTP server shutdown failed", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server shutdown successfully")
	return nil
}
