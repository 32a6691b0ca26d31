package tower

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/rushteam/slotkit/core"
	"github.com/rushteam/slotkit/feature"
)

// fakeMetadata 返回固定档案的元数据协作方。
type fakeMetadata struct {
	profile *core.ChannelProfile
	err     error
}

func (f *fakeMetadata) GetChannelProfile(_ context.Context, _ string, _ int) (*core.ChannelProfile, error) {
	return f.profile, f.err
}

func (f *fakeMetadata) GetChannelInfo(_ context.Context, _ string) (string, int64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return f.profile.Title, f.profile.SubscriberCount, nil
}

// unitEncoder 把任意非空文本编码为固定单位向量（dim 维，首分量为 1）。
type unitEncoder struct{ dim int }

func (e *unitEncoder) EncodeText(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dim)
	if text != "" {
		vec[0] = 1
	}
	return vec, nil
}

func (e *unitEncoder) EncodeTexts(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i], _ = e.EncodeText(ctx, t)
	}
	return out, nil
}

func (e *unitEncoder) Dimension() int { return e.dim }

// memCache 进程内 map 缓存，统计命中次数。
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	hits int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Name() string { return "test" }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if v, ok := c.data[key]; ok {
		c.hits++
		return v, nil
	}
	return nil, core.ErrStoreNotFound
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ ...int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func newTestTower(profile *core.ChannelProfile, opts ...ChannelTowerOption) *ChannelTower {
	enc := &unitEncoder{dim: 4}
	extractor := feature.NewExtractor(nil, nil, nil)
	return NewChannelTower(&fakeMetadata{profile: profile}, enc, extractor, opts...)
}

func TestChannelTower_ViewWeightedMean(t *testing.T) {
	// 两条视频，播放量 100 与 900：权重 100/900≈0.111 与 900/900=1.0，
	// 均值 = (0.111 + 1.0) / 2
	tower := newTestTower(&core.ChannelProfile{
		Title: "Test Channel",
		RecentVideos: []core.VideoRecord{
			{Title: "first video", ViewCount: 100},
			{Title: "second video", ViewCount: 900},
		},
	})

	emb, err := tower.ChannelEmbedding(context.Background(), "UC123")
	if err != nil {
		t.Fatalf("ChannelEmbedding() error = %v", err)
	}
	if emb.VideosProcessed != 2 {
		t.Fatalf("VideosProcessed = %d, want 2", emb.VideosProcessed)
	}
	if emb.ChannelTitle != "Test Channel" {
		t.Errorf("ChannelTitle = %q", emb.ChannelTitle)
	}

	want := (100.0/900.0 + 1.0) / 2
	if math.Abs(emb.Vector[0]-want) > 1e-9 {
		t.Errorf("Vector[0] = %v, want %v", emb.Vector[0], want)
	}
	for i := 1; i < len(emb.Vector); i++ {
		if emb.Vector[i] != 0 {
			t.Errorf("Vector[%d] = %v, want 0", i, emb.Vector[i])
		}
	}
}

func TestChannelTower_EmptyChannel(t *testing.T) {
	tower := newTestTower(&core.ChannelProfile{Title: "Fresh", RecentVideos: nil})

	emb, err := tower.ChannelEmbedding(context.Background(), "UC123")
	if err != nil {
		t.Fatalf("ChannelEmbedding() error = %v", err)
	}
	if emb.VideosProcessed != 0 {
		t.Errorf("VideosProcessed = %d, want 0", emb.VideosProcessed)
	}
	if len(emb.Vector) != 4 {
		t.Fatalf("len(Vector) = %d, want 4", len(emb.Vector))
	}
	for i, v := range emb.Vector {
		if v != 0 {
			t.Errorf("Vector[%d] = %v, want 0", i, v)
		}
	}
}

func TestChannelTower_ZeroViewVideos(t *testing.T) {
	// 全零播放量：分母按 max(1, maxViews)=1，各视频权重 0，均值为零向量，
	// 但视频仍计入 VideosProcessed
	tower := newTestTower(&core.ChannelProfile{
		RecentVideos: []core.VideoRecord{
			{Title: "a video", ViewCount: 0},
			{Title: "b video", ViewCount: 0},
		},
	})

	emb, err := tower.ChannelEmbedding(context.Background(), "UC123")
	if err != nil {
		t.Fatalf("ChannelEmbedding() error = %v", err)
	}
	if emb.VideosProcessed != 2 {
		t.Errorf("VideosProcessed = %d, want 2", emb.VideosProcessed)
	}
	if emb.Vector[0] != 0 {
		t.Errorf("Vector[0] = %v, want 0", emb.Vector[0])
	}
}

func TestChannelTower_SkipsTextlessVideos(t *testing.T) {
	tower := newTestTower(&core.ChannelProfile{
		RecentVideos: []core.VideoRecord{
			{Title: "", Description: "", ViewCount: 500},
			{Title: "real video", ViewCount: 500},
		},
	})

	emb, err := tower.ChannelEmbedding(context.Background(), "UC123")
	if err != nil {
		t.Fatalf("ChannelEmbedding() error = %v", err)
	}
	if emb.VideosProcessed != 1 {
		t.Errorf("VideosProcessed = %d, want 1", emb.VideosProcessed)
	}
}

func TestChannelTower_EmbedProfile(t *testing.T) {
	// 内联档案直接聚合：不访问元数据协作方（fakeMetadata 返回的档案不同，
	// 结果必须来自入参档案）
	tower := newTestTower(&core.ChannelProfile{Title: "Other Channel"})

	emb, err := tower.EmbedProfile(context.Background(), &core.ChannelProfile{
		Title:           "Inline Channel",
		SubscriberCount: 5000,
		TotalVideos:     42,
		RecentVideos: []core.VideoRecord{
			{Title: "first video", ViewCount: 100},
			{Title: "second video", ViewCount: 900},
		},
	})
	if err != nil {
		t.Fatalf("EmbedProfile() error = %v", err)
	}
	if emb.ChannelTitle != "Inline Channel" {
		t.Errorf("ChannelTitle = %q, want %q", emb.ChannelTitle, "Inline Channel")
	}
	if emb.VideosProcessed != 2 {
		t.Fatalf("VideosProcessed = %d, want 2", emb.VideosProcessed)
	}
	want := (100.0/900.0 + 1.0) / 2
	if math.Abs(emb.Vector[0]-want) > 1e-9 {
		t.Errorf("Vector[0] = %v, want %v", emb.Vector[0], want)
	}
}

func TestChannelTower_EmbedProfileNil(t *testing.T) {
	tower := newTestTower(&core.ChannelProfile{})
	_, err := tower.EmbedProfile(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for nil profile")
	}
	if !core.IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestChannelTower_MissingChannelID(t *testing.T) {
	tower := newTestTower(&core.ChannelProfile{})
	_, err := tower.ChannelEmbedding(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty channel_id")
	}
	if !core.IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestChannelTower_UpstreamErrorPropagated(t *testing.T) {
	enc := &unitEncoder{dim: 4}
	upstreamErr := core.NewUpstreamError(core.ModuleService, "channel lookup failed")
	tower := NewChannelTower(&fakeMetadata{err: upstreamErr}, enc, feature.NewExtractor(nil, nil, nil))

	_, err := tower.ChannelEmbedding(context.Background(), "UC123")
	if !core.IsUpstreamError(err) {
		t.Fatalf("error = %v, want upstream error", err)
	}
}

func TestChannelTower_CacheRoundTrip(t *testing.T) {
	cache := newMemCache()
	tower := newTestTower(&core.ChannelProfile{
		Title:        "Cached",
		RecentVideos: []core.VideoRecord{{Title: "a video", ViewCount: 10}},
	}, WithChannelCache(cache, 0))

	ctx := context.Background()
	first, err := tower.ChannelEmbedding(ctx, "UC123")
	if err != nil {
		t.Fatalf("first call error = %v", err)
	}
	second, err := tower.ChannelEmbedding(ctx, "UC123")
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
	if first.VideosProcessed != second.VideosProcessed {
		t.Errorf("cached result differs: %d != %d", first.VideosProcessed, second.VideosProcessed)
	}
	for i := range first.Vector {
		if first.Vector[i] != second.Vector[i] {
			t.Fatalf("cached vector differs at %d", i)
		}
	}
}
