// Package api 暴露预测服务的 HTTP 接口。
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rushteam/slotkit/core"
	"github.com/rushteam/slotkit/service"
)

// Server 持有组件装配中心与日志器，注册全部路由。
//
// 错误映射约定：
//   - 输入校验错误 → 400，消息原样返回（含期望值与实际值）
//   - 上游协作方错误 → 502
//   - 资源不存在 → 404
//   - 其他（含 panic）→ 500，响应体不泄漏内部细节
type Server struct {
	registry *service.Registry
	log      *slog.Logger
}

// NewServer 创建 HTTP 服务。log 为 nil 时使用默认日志器。
func NewServer(registry *service.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{registry: registry, log: log}
}

// Router 构建路由。panic 恢复在最外层：单个请求的故障不拖垮进程。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/embed/channel-embedding", s.handleChannelEmbedding)
	r.Post("/video-tower/get-video-embedding", s.handleVideoEmbedding)
	r.Post("/bicross-fusion/predict-slot-heatmap", s.handleSlotHeatmap)
	r.Post("/api/predictions", s.handlePredictions)
	r.Get("/test/channel-info/{channelID}", s.handleChannelInfo)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse 是统一的错误响应体。
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError 把领域错误映射为 HTTP 状态码。
// 非领域错误一律 500 且不泄漏内部消息。
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	de := core.GetDomainError(err)
	switch {
	case core.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: de.Message, Code: de.Code})
	case core.IsUpstreamError(err):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: de.Message, Code: de.Code})
	case core.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: de.Message, Code: de.Code})
	default:
		s.log.Error("internal error",
			"path", r.URL.Path,
			"err", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "internal server error",
			Code:  core.ErrorCodeInternalError,
		})
	}
}

// decodeJSON 解析请求体，格式非法归为输入校验错误。
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.NewDomainError(core.ModuleService, core.ErrorCodeMissingField,
			"invalid json body: "+err.Error())
	}
	return nil
}
