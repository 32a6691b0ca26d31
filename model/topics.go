package model

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/slotkit/core"
)

// CandidateTopicLabels 是零样本主题分类的固定候选标签表。
// 覆盖常见内容品类；标签之间允许语义重叠，分类为 multi-label 独立打分。
var CandidateTopicLabels = []string{
	"animation", "cartoon", "3d", "short film", "stop motion",
	"car", "motorcycle", "automobile", "driving", "vehicles",
	"song", "instrument", "concert", "album", "lyrics",
	"dog", "cat", "wildlife", "pet care", "animals",
	"soccer", "basketball", "tennis", "athlete", "game",
	"drama", "cinema", "indie", "story",
	"travel", "vacation", "tour", "event", "adventure",
	"video game", "gameplay", "stream", "gamer", "console",
	"vlog", "daily life", "personal", "experience", "journey", "life",
	"opinion", "diary", "blog", "funny", "skit", "humor", "jokes", "prank",
	"movie", "show", "celebrity", "tv", "music video",
	"news", "politics", "report", "journalism", "current events",
	"tutorial", "diy", "fashion", "style", "guide",
	"learning", "lecture", "lesson", "study",
	"science", "tech", "innovation", "research", "gadgets",
	"charity", "cause", "awareness", "volunteer", "campaign",
	"film", "actor", "director", "screenplay",
	"anime", "manga", "series",
	"action", "hero", "battle", "quest",
	"classic", "vintage", "old movie", "legendary", "historic",
	"documentary", "real life", "storytelling", "facts", "exploration",
	"emotional", "conflict", "characters",
	"family", "kids", "parenting", "home", "children",
	"foreign", "international", "language", "culture",
	"horror", "scary", "thriller", "monster", "fear",
	"science fiction", "fantasy", "space", "magic", "future",
	"suspense", "mystery", "crime", "detective",
	"short", "clip", "quick", "mini", "snippet", "episode",
	"performance", "trailer", "preview", "teaser",
	"announcement",
}

// ZeroShotClassifier 是基于嵌入相似度的零样本主题分类器。
//
// 核心思想：
//   - 候选标签的嵌入在构造期预计算一次，之后只读
//   - 文本分数 = 文本向量与标签向量的余弦相似度，线性映射到 [0,1]
//   - multi-label：各标签独立打分，不做归一化
//
// 工程特征：
//   - 实时性：好（一次文本编码 + 线性扫描标签表）
//   - 并发：构造后只读，可被任意多请求并发调用
type ZeroShotClassifier struct {
	encoder   core.TextEncoder
	labels    []string
	labelVecs [][]float64

	// TopK 返回的主题数上限
	TopK int
}

var _ core.TopicClassifier = (*ZeroShotClassifier)(nil)

// NewZeroShotClassifier 创建分类器并预计算标签嵌入。
// labels 为空时使用 CandidateTopicLabels。
func NewZeroShotClassifier(encoder core.TextEncoder, labels []string) (*ZeroShotClassifier, error) {
	if encoder == nil {
		return nil, fmt.Errorf("text encoder is required")
	}
	if len(labels) == 0 {
		labels = CandidateTopicLabels
	}
	labelVecs, err := encoder.EncodeTexts(context.Background(), labels)
	if err != nil {
		return nil, fmt.Errorf("precompute label embeddings: %w", err)
	}
	return &ZeroShotClassifier{
		encoder:   encoder,
		labels:    labels,
		labelVecs: labelVecs,
		TopK:      5,
	}, nil
}

// Classify 对文本打主题分，返回分数最高的至多 TopK 个主题。
// 全 OOV 文本（零向量）与所有标签的相似度均为 0，返回空列表。
func (m *ZeroShotClassifier) Classify(ctx context.Context, text string) ([]core.TopicScore, error) {
	if text == "" {
		return nil, nil
	}
	textVec, err := m.encoder.EncodeText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("encode text for classification: %w", err)
	}

	scored := make([]core.TopicScore, 0, len(m.labels))
	for i, label := range m.labels {
		cos := cosineSimilarity(textVec, m.labelVecs[i])
		if cos == 0 {
			continue
		}
		// 余弦 [-1,1] 线性映射到 [0,1]
		scored = append(scored, core.TopicScore{
			Topic: label,
			Score: (cos + 1) / 2,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	topK := m.TopK
	if topK <= 0 {
		topK = 5
	}
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}
