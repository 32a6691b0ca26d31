package api

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/rushteam/slotkit/core"
	"github.com/rushteam/slotkit/feast"
	"github.com/rushteam/slotkit/rerank"
)

// channelIDRe 从频道 URL 中提取频道 ID（.../channel/<id> 形态）。
var channelIDRe = regexp.MustCompile(`channel/([\w-]+)`)

// resolveChannelID 接受裸频道 ID 或含 /channel/ 段的 URL。
func resolveChannelID(raw string) (string, error) {
	if raw == "" {
		return "", core.NewDomainError(core.ModuleService, core.ErrorCodeMissingField,
			"channel_id or channel_url is required")
	}
	if m := channelIDRe.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	return raw, nil
}

// POST /embed/channel-embedding

type channelEmbeddingRequest struct {
	// 内联频道档案：元数据协作方的响应原样转发（channel_title / recent_videos 等）
	core.ChannelProfile

	// 或只给频道标识，由服务端代为拉取档案
	ChannelID  string `json:"channel_id"`
	ChannelURL string `json:"channel_url"`
}

func (s *Server) handleChannelEmbedding(w http.ResponseWriter, r *http.Request) {
	var req channelEmbeddingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tower, err := s.registry.ChannelTower()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// 档案内联时直接聚合，不再访问元数据协作方
	if req.Title != "" || len(req.RecentVideos) > 0 {
		emb, err := tower.EmbedProfile(r.Context(), &req.ChannelProfile)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, emb)
		return
	}

	raw := req.ChannelID
	if raw == "" {
		raw = req.ChannelURL
	}
	channelID, err := resolveChannelID(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	emb, err := tower.ChannelEmbedding(r.Context(), channelID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emb)
}

// POST /video-tower/get-video-embedding

type videoEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
	Dim       int       `json:"dim"`
}

func (s *Server) handleVideoEmbedding(w http.ResponseWriter, r *http.Request) {
	var q core.ContentQuery
	if err := decodeJSON(r, &q); err != nil {
		s.writeError(w, r, err)
		return
	}

	vec, err := s.registry.ContentTower().ContentEmbedding(r.Context(), &q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, videoEmbeddingResponse{Embedding: vec, Dim: len(vec)})
}

// POST /bicross-fusion/predict-slot-heatmap

type slotHeatmapResponse struct {
	Heatmap map[string]float64 `json:"heatmap"`
}

func (s *Server) handleSlotHeatmap(w http.ResponseWriter, r *http.Request) {
	var in core.FusionInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	fusion, err := s.registry.Fusion()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	probs, err := fusion.PredictSlots(&in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	heatmap := make(map[string]float64, len(probs))
	for i, p := range probs {
		heatmap[fmt.Sprintf("slot_%d", i)] = p
	}
	writeJSON(w, http.StatusOK, slotHeatmapResponse{Heatmap: heatmap})
}

// POST /api/predictions

type predictionsRequest struct {
	ChannelURL       string `json:"channelUrl"`
	ChannelID        string `json:"channelId"`
	VideoTitle       string `json:"videoTitle"`
	VideoDescription string `json:"videoDescription"`
	VideoTags        string `json:"videoTags"`
	ThumbnailURL     string `json:"thumbnailUrl"`
}

type predictionsResponse struct {
	Heatmap         rerank.Heatmap      `json:"heatmap"`
	TopThree        []core.TopSlot      `json:"topThree"`
	ChannelTitle    string              `json:"channelTitle"`
	VideosProcessed int                 `json:"videosProcessed"`
	ChannelStats    *feast.ChannelStats `json:"channelStats,omitempty"`
}

// handlePredictions 是端到端预测：
// 通道塔 → 内容塔 → 融合网络 → 周视图重塑 → 规则过滤 + Top-K。
func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	var req predictionsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	raw := req.ChannelID
	if raw == "" {
		raw = req.ChannelURL
	}
	channelID, err := resolveChannelID(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	channelTower, err := s.registry.ChannelTower()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	channelEmb, err := channelTower.ChannelEmbedding(ctx, channelID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contentVec, err := s.registry.ContentTower().ContentEmbedding(ctx, &core.ContentQuery{
		Title:        req.VideoTitle,
		Description:  req.VideoDescription,
		Tags:         req.VideoTags,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fusion, err := s.registry.Fusion()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	probs, err := fusion.PredictSlots(&core.FusionInput{
		ChannelEmbedding: channelEmb.Vector,
		ContentEmbedding: contentVec,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	heatmap, err := rerank.NewHeatmap(probs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter, err := s.registry.RuleFilter()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	top, err := rerank.RankSlots(probs, s.registry.Config().Rerank.TopK, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := predictionsResponse{
		Heatmap:         heatmap,
		TopThree:        top,
		ChannelTitle:    channelEmb.ChannelTitle,
		VideosProcessed: channelEmb.VideosProcessed,
	}
	// 统计特征是尽力而为的补充，不影响预测主链路
	if stats := s.registry.StatsProvider(); stats != nil {
		if cs, err := stats.ChannelStats(ctx, channelID); err == nil {
			resp.ChannelStats = cs
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /test/channel-info/{channelID}

type channelInfoResponse struct {
	ChannelID       string `json:"channel_id"`
	Title           string `json:"channel_name"`
	SubscriberCount int64  `json:"subscriber_count"`
}

func (s *Server) handleChannelInfo(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	title, subscribers, err := s.registry.YouTube().GetChannelInfo(r.Context(), channelID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, channelInfoResponse{
		ChannelID:       channelID,
		Title:           title,
		SubscriberCount: subscribers,
	})
}
