package service

import (
	"sync"

	"github.com/rushteam/slotkit/config"
	"github.com/rushteam/slotkit/core"
	"github.com/rushteam/slotkit/feast"
	"github.com/rushteam/slotkit/feature"
	"github.com/rushteam/slotkit/model"
	"github.com/rushteam/slotkit/rerank"
	"github.com/rushteam/slotkit/store"
	"github.com/rushteam/slotkit/tower"
)

// Registry 是服务的组件装配中心：按配置惰性构建各组件，进程内单例共享。
//
// 设计原则：
//   - 每个组件 sync.Once 保护，构建一次后只读
//   - 构建错误被缓存：失败的组件不会被反复重建
//   - 模型类组件（编码器/词表/融合网络）权重加载失败是启动期致命错误，
//     调用方应在开始服务前通过 Warmup 触发全部构建
type Registry struct {
	cfg *config.Config

	encoderOnce sync.Once
	encoder     *model.SentenceEncoder
	encoderErr  error

	recognizerOnce sync.Once
	recognizer     *model.LexiconRecognizer
	recognizerErr  error

	classifierOnce sync.Once
	classifier     *model.ZeroShotClassifier
	classifierErr  error

	fusionOnce sync.Once
	fusion     *model.BiCrossFusion
	fusionErr  error

	cacheOnce sync.Once
	cache     core.KeyValueStore

	statsOnce sync.Once
	stats     *feast.StatsProvider

	channelOnce sync.Once
	channel     *tower.ChannelTower
	channelErr  error

	contentOnce sync.Once
	content     *tower.ContentTower

	filterOnce sync.Once
	filter     *rerank.RuleFilter
	filterErr  error

	youtubeOnce sync.Once
	youtube     *YouTubeClient

	vidtowerOnce sync.Once
	vidtower     *VidTowerClient
}

// NewRegistry 创建组件装配中心。
func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{cfg: cfg}
}

// Config 返回装配所用的配置。
func (r *Registry) Config() *config.Config { return r.cfg }

// Warmup 触发所有启动期必需组件的构建，返回首个失败。
// 在监听端口之前调用：权重缺失/损坏、规则语法错误都不允许开始服务。
func (r *Registry) Warmup() error {
	if _, err := r.Encoder(); err != nil {
		return err
	}
	if _, err := r.Recognizer(); err != nil {
		return err
	}
	if _, err := r.Classifier(); err != nil {
		return err
	}
	if _, err := r.Fusion(); err != nil {
		return err
	}
	if _, err := r.RuleFilter(); err != nil {
		return err
	}
	if _, err := r.ChannelTower(); err != nil {
		return err
	}
	return nil
}

// Encoder 返回句向量编码器。
func (r *Registry) Encoder() (*model.SentenceEncoder, error) {
	r.encoderOnce.Do(func() {
		r.encoder, r.encoderErr = model.NewSentenceEncoderFromFile(r.cfg.Models.EncoderWeights)
	})
	return r.encoder, r.encoderErr
}

// Recognizer 返回实体识别器（兼实体链接器）。
func (r *Registry) Recognizer() (*model.LexiconRecognizer, error) {
	r.recognizerOnce.Do(func() {
		r.recognizer, r.recognizerErr = model.NewLexiconRecognizerFromFile(r.cfg.Models.EntityLexicon)
	})
	return r.recognizer, r.recognizerErr
}

// Classifier 返回零样本主题分类器（标签嵌入在首次构建时预计算）。
func (r *Registry) Classifier() (*model.ZeroShotClassifier, error) {
	r.classifierOnce.Do(func() {
		encoder, err := r.Encoder()
		if err != nil {
			r.classifierErr = err
			return
		}
		r.classifier, r.classifierErr = model.NewZeroShotClassifier(encoder, nil)
	})
	return r.classifier, r.classifierErr
}

// Fusion 返回融合网络。
func (r *Registry) Fusion() (*model.BiCrossFusion, error) {
	r.fusionOnce.Do(func() {
		r.fusion, r.fusionErr = model.LoadBiCrossFusion(r.cfg.Models.FusionWeights)
	})
	return r.fusion, r.fusionErr
}

// Cache 返回通道嵌入缓存。Redis 未配置或不可达时返回 nil（缓存是可选优化）。
func (r *Registry) Cache() core.KeyValueStore {
	r.cacheOnce.Do(func() {
		if r.cfg.Redis.Addr == "" {
			return
		}
		rs, err := store.NewRedisStore(r.cfg.Redis.Addr, r.cfg.Redis.Password, r.cfg.Redis.DB)
		if err != nil {
			return
		}
		r.cache = rs
	})
	return r.cache
}

// StatsProvider 返回频道统计特征提供方。Feast 未配置或不可达时返回 nil。
func (r *Registry) StatsProvider() *feast.StatsProvider {
	r.statsOnce.Do(func() {
		if r.cfg.Feast.Host == "" {
			return
		}
		sp, err := feast.NewStatsProvider(r.cfg.Feast.Host, r.cfg.Feast.Port, r.cfg.Feast.Project)
		if err != nil {
			return
		}
		r.stats = sp
	})
	return r.stats
}

// YouTube 返回频道元数据客户端。
func (r *Registry) YouTube() *YouTubeClient {
	r.youtubeOnce.Do(func() {
		opts := []YouTubeOption{WithYouTubeTimeout(r.cfg.YouTube.Timeout())}
		if r.cfg.YouTube.BaseURL != "" {
			opts = append(opts, WithYouTubeBaseURL(r.cfg.YouTube.BaseURL))
		}
		r.youtube = NewYouTubeClient(r.cfg.YouTube.APIKey, opts...)
	})
	return r.youtube
}

// VidTower 返回内容塔推理客户端。
func (r *Registry) VidTower() *VidTowerClient {
	r.vidtowerOnce.Do(func() {
		r.vidtower = NewVidTowerClient(r.cfg.VidTower.Endpoint, WithVidTowerTimeout(r.cfg.VidTower.Timeout()))
	})
	return r.vidtower
}

// ChannelTower 返回通道塔。
func (r *Registry) ChannelTower() (*tower.ChannelTower, error) {
	r.channelOnce.Do(func() {
		encoder, err := r.Encoder()
		if err != nil {
			r.channelErr = err
			return
		}
		recognizer, err := r.Recognizer()
		if err != nil {
			r.channelErr = err
			return
		}
		classifier, err := r.Classifier()
		if err != nil {
			r.channelErr = err
			return
		}

		extractor := feature.NewExtractor(recognizer, recognizer, classifier)
		opts := []tower.ChannelTowerOption{tower.WithMaxVideos(r.cfg.YouTube.MaxVideos)}
		if cache := r.Cache(); cache != nil {
			opts = append(opts, tower.WithChannelCache(cache, r.cfg.Redis.CacheTTL()))
		}
		r.channel = tower.NewChannelTower(r.YouTube(), encoder, extractor, opts...)
	})
	return r.channel, r.channelErr
}

// ContentTower 返回内容塔。
func (r *Registry) ContentTower() *tower.ContentTower {
	r.contentOnce.Do(func() {
		r.content = tower.NewContentTower(r.VidTower())
	})
	return r.content
}

// RuleFilter 返回时段规则过滤器（规则为空时放行一切）。
func (r *Registry) RuleFilter() (*rerank.RuleFilter, error) {
	r.filterOnce.Do(func() {
		r.filter, r.filterErr = rerank.NewRuleFilter(r.cfg.Rerank.SlotRule)
	})
	return r.filter, r.filterErr
}

// Close 释放持有连接的组件。
func (r *Registry) Close() error {
	var firstErr error
	if r.cache != nil {
		if err := r.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.stats != nil {
		if err := r.stats.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
