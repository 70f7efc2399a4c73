package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mavinsight/internal/link"
	"github.com/mavinsight/internal/stats"
	"github.com/mavinsight/internal/telemetry"
)

const telemetryPrefix = "/api/v1/telemetry"

// registerEndpoints 注册核心路由
func (s *Server) registerEndpoints() {
	// 根路径 / 显示 HTML 页面，包含可点击的链接
	s.mux.HandleFunc("/", s.handleIndex)

	// /metrics 端点
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(s.logger),
	}))

	// /health 端点
	s.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// /status 运行状态
	s.mux.HandleFunc("/status", s.handleStatus)

	// 遥测快照导出：全量与单类型
	s.mux.HandleFunc(telemetryPrefix, s.handleTelemetryList)
	s.mux.HandleFunc(telemetryPrefix+"/", s.handleTelemetryKind)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// ServeMux 把 "/" 当兜底，未注册路径一律进这里，非根路径按404处理
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	html := `
	<!DOCTYPE html>
	<html lang="zh-CN">
	<head>
		<meta charset="UTF-8">
		<title>MAVInsight</title>
		<style>
			body { font-family: Arial, sans-serif; margin: 40px; }
			h1 { color: #333; }
			a { display: block; margin: 8px 0; font-size: 18px; }
			code { background-color: #f0f0f0; padding: 2px 4px; }
		</style>
	</head>
	<body>
		<h1>MAVInsight Telemetry Agent</h1>
		<p>Link: <code>` + s.target.Endpoint + `</code></p>
		<p>Service is running.</p>
		<h2>Available Endpoints:</h2>
		<a href="/health">/health - 健康检查</a>
		<a href="/metrics">/metrics - Prometheus 指标暴露</a>
		<a href="/status">/status - 运行状态</a>
		<a href="/api/v1/telemetry">/api/v1/telemetry - 全部遥测快照</a>
		<a href="/api/v1/telemetry/ATTITUDE">/api/v1/telemetry/{kind} - 单类型快照</a>
	</body>
	</html>
	`
	_, _ = w.Write([]byte(html))
}

// statusResponse /status 响应体
type statusResponse struct {
	Session       string                 `json:"session"`
	Collecting    bool                   `json:"collecting"`
	LoopError     string                 `json:"loop_error,omitempty"`
	Link          link.Info              `json:"link"`
	Counts        map[telemetry.Kind]int `json:"counts"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Usage         stats.Usage            `json:"usage"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Session:       s.store.SessionID(),
		Collecting:    s.store.Running(),
		Link:          s.target,
		Counts:        s.store.Counts(),
		UptimeSeconds: s.usage.Uptime().Seconds(),
		Usage:         s.usage.Usage(),
	}
	if err := s.store.Err(); err != nil {
		resp.LoopError = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTelemetryList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Snapshots())
}

func (s *Server) handleTelemetryKind(w http.ResponseWriter, r *http.Request) {
	kind := strings.TrimPrefix(r.URL.Path, telemetryPrefix+"/")
	if kind == "" {
		s.handleTelemetryList(w, r)
		return
	}

	snap, ok := s.store.Snapshot(telemetry.Kind(kind))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "unknown kind",
			"kind":  kind,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
