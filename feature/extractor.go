package feature

import (
	"context"

	"github.com/rushteam/slotkit/core"
)

// Extractor 是实体/主题抽取器：对一条规范化视频文本运行命名实体识别与
// 零样本主题分类，产出通道塔所需的全部信号。
//
// 降级约定（尽力而为，绝不让单个视频中断整体请求）：
//   - 识别器出错 → 该视频无实体
//   - 实体链接失败 → 退化为使用原始提及文本
//   - 分类器出错 → 该视频无主题
//   - 提及数超过 MaxMentionsForTopics → 跳过主题分类（压制实体密集文本的时延）
type Extractor struct {
	// Recognizer 命名实体识别器
	Recognizer core.EntityRecognizer

	// Linker 实体链接器（可选；为 nil 时所有提及退化为原始文本）
	Linker core.EntityLinker

	// Classifier 零样本主题分类器
	Classifier core.TopicClassifier

	// MaxMentionsForTopics 提及数上限，超过则跳过主题分类
	MaxMentionsForTopics int
}

// NewExtractor 创建抽取器，提及数上限默认为 10。
func NewExtractor(recognizer core.EntityRecognizer, linker core.EntityLinker, classifier core.TopicClassifier) *Extractor {
	return &Extractor{
		Recognizer:           recognizer,
		Linker:               linker,
		Classifier:           classifier,
		MaxMentionsForTopics: 10,
	}
}

// Extract 对一条规范化视频抽取实体与主题。
func (e *Extractor) Extract(ctx context.Context, clean core.CleanVideoRecord) core.VideoSignals {
	signals := core.VideoSignals{Clean: clean}
	text := clean.Text()
	if text == "" {
		return signals
	}

	mentions := e.recognize(ctx, text)
	signals.LinkedEntities = e.link(ctx, mentions)

	if len(mentions) <= e.maxMentions() {
		signals.Topics = e.classify(ctx, text)
	}
	return signals
}

func (e *Extractor) maxMentions() int {
	if e.MaxMentionsForTopics > 0 {
		return e.MaxMentionsForTopics
	}
	return 10
}

func (e *Extractor) recognize(ctx context.Context, text string) []core.EntityMention {
	if e.Recognizer == nil {
		return nil
	}
	raw, err := e.Recognizer.Recognize(ctx, text)
	if err != nil {
		return nil
	}
	// 丢弃长度 ≤ 1 的提及（单字符多为识别噪声）
	mentions := make([]core.EntityMention, 0, len(raw))
	for _, m := range raw {
		if len(m.Mention) <= 1 {
			continue
		}
		mentions = append(mentions, m)
	}
	return mentions
}

func (e *Extractor) link(ctx context.Context, mentions []core.EntityMention) []core.LinkedEntity {
	if len(mentions) == 0 {
		return nil
	}
	linked := make([]core.LinkedEntity, 0, len(mentions))
	for _, m := range mentions {
		entity := m.Mention
		if e.Linker != nil {
			if canonical, ok := e.Linker.Link(ctx, m.Mention); ok {
				entity = canonical
			}
		}
		linked = append(linked, core.LinkedEntity{
			Mention: m.Mention,
			Entity:  entity,
			Score:   m.Score,
		})
	}
	return linked
}

func (e *Extractor) classify(ctx context.Context, text string) []core.TopicScore {
	if e.Classifier == nil {
		return nil
	}
	topics, err := e.Classifier.Classify(ctx, text)
	if err != nil {
		return nil
	}
	return topics
}
