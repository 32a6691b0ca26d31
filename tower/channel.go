package tower

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/slotkit/core"
	"github.com/rushteam/slotkit/feature"
)

// ChannelTower 是通道塔：把一个频道的近期发布历史聚合为 ChannelDim 维嵌入。
//
// 流程：
//  1. 从元数据协作方拉取频道档案与近期视频（含播放量）
//  2. 每条视频：规范化 → 实体/主题抽取 → 加权文本分量 → 句向量编码 → 分量加权和
//  3. 视频向量按相对热度缩放：weight = view_count / max(1, 本批最大播放量)
//  4. 通道嵌入 = 缩放后视频向量的算术平均
//
// 降级约定：
//   - 频道无可用视频 → 全零向量 + VideosProcessed=0（正常结果，不是错误）
//   - 单条视频无可编码文本 → 跳过该视频，不计入 VideosProcessed
//   - 频道本体查询失败 → 上游错误原样返回，由 HTTP 层映射 502
//
// 工程特征：
//   - 视频级并发抽取+编码（errgroup + semaphore 限流）
//   - 可选通道嵌入缓存（KeyValueStore）：同一频道短时间内重复预测免重算
type ChannelTower struct {
	metadata  core.MetadataService
	encoder   core.TextEncoder
	extractor *feature.Extractor
	composer  *feature.Composer

	cache    core.KeyValueStore
	cacheTTL time.Duration

	maxVideos     int
	maxConcurrent int
}

// ChannelTowerOption 配置通道塔。
type ChannelTowerOption func(*ChannelTower)

// WithChannelCache 启用通道嵌入缓存。
func WithChannelCache(cache core.KeyValueStore, ttl time.Duration) ChannelTowerOption {
	return func(t *ChannelTower) {
		t.cache = cache
		t.cacheTTL = ttl
	}
}

// WithMaxVideos 设置聚合的近期视频数上限（默认 10）。
func WithMaxVideos(n int) ChannelTowerOption {
	return func(t *ChannelTower) {
		if n > 0 {
			t.maxVideos = n
		}
	}
}

// WithMaxConcurrent 设置视频级并发上限（默认 4，0 表示无限制）。
func WithMaxConcurrent(n int) ChannelTowerOption {
	return func(t *ChannelTower) {
		t.maxConcurrent = n
	}
}

// NewChannelTower 创建通道塔。
func NewChannelTower(
	metadata core.MetadataService,
	encoder core.TextEncoder,
	extractor *feature.Extractor,
	opts ...ChannelTowerOption,
) *ChannelTower {
	t := &ChannelTower{
		metadata:      metadata,
		encoder:       encoder,
		extractor:     extractor,
		composer:      feature.NewComposer(),
		maxVideos:     10,
		maxConcurrent: 4,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ChannelEmbedding 聚合一个频道的嵌入。
func (t *ChannelTower) ChannelEmbedding(ctx context.Context, channelID string) (*core.ChannelEmbedding, error) {
	if channelID == "" {
		return nil, core.NewDomainError(core.ModuleTower, core.ErrorCodeMissingField, "channel_id is required")
	}

	if cached := t.cacheGet(ctx, channelID); cached != nil {
		return cached, nil
	}

	profile, err := t.metadata.GetChannelProfile(ctx, channelID, t.maxVideos)
	if err != nil {
		return nil, err
	}

	emb := t.aggregate(ctx, profile)
	t.cacheSet(ctx, channelID, emb)
	return emb, nil
}

// EmbedProfile 直接聚合调用方提供的频道档案，不经元数据协作方、不读写缓存。
// 用于调用方已持有频道近期发布数据的场景（元数据响应原样转发进来）。
func (t *ChannelTower) EmbedProfile(ctx context.Context, profile *core.ChannelProfile) (*core.ChannelEmbedding, error) {
	if profile == nil {
		return nil, core.NewDomainError(core.ModuleTower, core.ErrorCodeMissingField, "channel profile is required")
	}
	return t.aggregate(ctx, profile), nil
}

func (t *ChannelTower) aggregate(ctx context.Context, profile *core.ChannelProfile) *core.ChannelEmbedding {
	dim := t.encoder.Dimension()
	emb := &core.ChannelEmbedding{
		Vector:       core.ZeroVector(dim),
		Dim:          dim,
		ChannelTitle: profile.Title,
	}
	if len(profile.RecentVideos) == 0 {
		return emb
	}

	cleaned := make([]core.CleanVideoRecord, 0, len(profile.RecentVideos))
	var maxViews int64
	for _, v := range profile.RecentVideos {
		clean := feature.CleanVideo(v)
		cleaned = append(cleaned, clean)
		if clean.ViewCount > maxViews {
			maxViews = clean.ViewCount
		}
	}
	if maxViews < 1 {
		maxViews = 1
	}

	var (
		mu    sync.Mutex
		sum   = core.ZeroVector(dim)
		used  = 0
		eg, _ = errgroup.WithContext(ctx)
	)

	sem := make(chan struct{}, max(t.maxConcurrent, 0))
	if t.maxConcurrent <= 0 {
		close(sem)
	}

	for _, clean := range cleaned {
		clean := clean
		eg.Go(func() error {
			if t.maxConcurrent > 0 {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			vec, ok := t.encodeVideo(ctx, clean)
			if !ok {
				return nil
			}

			// 相对热度缩放
			weight := float64(clean.ViewCount) / float64(maxViews)
			for i := range vec {
				vec[i] *= weight
			}

			mu.Lock()
			for i := range sum {
				sum[i] += vec[i]
			}
			used++
			mu.Unlock()
			return nil
		})
	}
	// 单视频失败静默跳过，eg.Wait 不会返回错误
	_ = eg.Wait()

	if used == 0 {
		return emb
	}
	for i := range sum {
		sum[i] /= float64(used)
	}
	emb.Vector = sum
	emb.VideosProcessed = used
	return emb
}

// encodeVideo 把一条视频编码为向量：信号抽取 → 加权文本分量 → 分量向量加权和。
// 无可编码文本时返回 ok=false。
func (t *ChannelTower) encodeVideo(ctx context.Context, clean core.CleanVideoRecord) ([]float64, bool) {
	signals := t.extractor.Extract(ctx, clean)
	components := t.composer.Compose(signals)
	if len(components) == 0 {
		return nil, false
	}

	dim := t.encoder.Dimension()
	vec := core.ZeroVector(dim)
	encoded := false
	for _, comp := range components {
		compVec, err := t.encoder.EncodeText(ctx, comp.Text)
		if err != nil || len(compVec) != dim {
			continue
		}
		encoded = true
		for i := range vec {
			vec[i] += comp.Weight * compVec[i]
		}
	}
	if !encoded {
		return nil, false
	}
	return vec, true
}

const channelCachePrefix = "slotkit:channel_emb:"

func (t *ChannelTower) cacheGet(ctx context.Context, channelID string) *core.ChannelEmbedding {
	if t.cache == nil {
		return nil
	}
	data, err := t.cache.Get(ctx, channelCachePrefix+channelID)
	if err != nil {
		return nil
	}
	var emb core.ChannelEmbedding
	if err := json.Unmarshal(data, &emb); err != nil || emb.Dim != len(emb.Vector) {
		return nil
	}
	return &emb
}

func (t *ChannelTower) cacheSet(ctx context.Context, channelID string, emb *core.ChannelEmbedding) {
	if t.cache == nil {
		return
	}
	data, err := json.Marshal(emb)
	if err != nil {
		return
	}
	ttl := int(t.cacheTTL.Seconds())
	if ttl > 0 {
		_ = t.cache.Set(ctx, channelCachePrefix+channelID, data, ttl)
		return
	}
	_ = t.cache.Set(ctx, channelCachePrefix+channelID, data)
}
