package core

import "context"

// TextEncoder 是句向量编码的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由 model 包实现
//   - 进程内加载一次，只读共享，可被多个请求并发调用
//
// 实现：
//   - model.SentenceEncoder（本地词向量表 + 平均池化）
type TextEncoder interface {
	// EncodeText 将单个文本编码为定维向量
	EncodeText(ctx context.Context, text string) ([]float64, error)

	// EncodeTexts 批量编码
	EncodeTexts(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension 返回向量维度
	Dimension() int
}

// EntityRecognizer 是命名实体识别的领域接口。
// 输入为规范化后的文本；长度 ≤ 1 的提及由实现方丢弃。
type EntityRecognizer interface {
	// Recognize 识别文本中的实体提及
	Recognize(ctx context.Context, text string) ([]EntityMention, error)
}

// EntityLinker 是实体链接的领域接口。
// 链接是尽力而为的：查不到规范名时返回 ok=false，调用方降级使用原始提及。
type EntityLinker interface {
	// Link 将提及映射到规范实体名
	Link(ctx context.Context, mention string) (entity string, ok bool)
}

// TopicClassifier 是零样本主题分类的领域接口。
// 针对固定候选标签表独立打分（multi-label），返回至多 5 个主题。
type TopicClassifier interface {
	// Classify 对文本打主题分
	Classify(ctx context.Context, text string) ([]TopicScore, error)
}

// ContentEmbeddingService 是内容塔推理服务的领域接口。
//
// 实现：
//   - service.VidTowerClient（HTTP，多形态响应归一化）
//
// 约定：返回 ContentDim 维向量；无法解析的响应是该请求的终局失败（不重试、不缓存）。
type ContentEmbeddingService interface {
	// GetContentEmbedding 获取候选内容的嵌入向量
	GetContentEmbedding(ctx context.Context, q *ContentQuery) ([]float64, error)
}

// MetadataService 是频道元数据协作方的领域接口（黑盒）。
//
// 实现：
//   - service.YouTubeClient
//
// 降级约定：频道本体查询失败是 UPSTREAM_FAILURE；近期视频列表获取失败时，
// 能容忍部分数据的调用方应得到空列表而非硬失败。
type MetadataService interface {
	// GetChannelProfile 获取频道档案与近期视频（含播放量）
	GetChannelProfile(ctx context.Context, channelID string, maxVideos int) (*ChannelProfile, error)

	// GetChannelInfo 获取频道标题与订阅数（轻量查询）
	GetChannelInfo(ctx context.Context, channelID string) (title string, subscribers int64, err error)
}

// SlotPredictor 是融合网络的领域接口：一对定维向量 → 168 个时段独立概率。
//
// 实现：
//   - model.BiCrossFusion（本地确定性推理，权重启动期加载后只读）
type SlotPredictor interface {
	// PredictSlots 返回 NumSlots 个 [0,1] 概率，day-major 平铺
	PredictSlots(in *FusionInput) ([]float64, error)
}
