package feature

import (
	"strings"

	"github.com/rushteam/slotkit/core"
)

// WeightedText 是一个待编码的文本分量及其归一化权重。
type WeightedText struct {
	Text   string
	Weight float64
}

// Composer 把一个视频的信号组合为加权文本分量：
//   - 标题+描述是主信号（权重 0.6）
//   - 链接后的实体规范名（权重 0.25）
//   - 主题标签（权重 0.15）
//
// 缺失的分量被省略，有效权重在剩余分量上重新归一化，保证权重和为 1。
type Composer struct {
	TitleDescWeight float64
	EntityWeight    float64
	TopicWeight     float64
}

// NewComposer 创建默认权重的组合器。
func NewComposer() *Composer {
	return &Composer{
		TitleDescWeight: 0.6,
		EntityWeight:    0.25,
		TopicWeight:     0.15,
	}
}

// Compose 返回存在内容的加权文本分量；视频无任何可编码文本时返回空切片。
func (c *Composer) Compose(signals core.VideoSignals) []WeightedText {
	components := make([]WeightedText, 0, 3)

	if text := signals.Clean.Text(); text != "" {
		components = append(components, WeightedText{Text: text, Weight: c.TitleDescWeight})
	}

	if names := entityNames(signals.LinkedEntities); len(names) > 0 {
		components = append(components, WeightedText{
			Text:   strings.Join(names, " "),
			Weight: c.EntityWeight,
		})
	}

	if labels := topicLabels(signals.Topics); len(labels) > 0 {
		components = append(components, WeightedText{
			Text:   strings.Join(labels, " "),
			Weight: c.TopicWeight,
		})
	}

	return renormalize(components)
}

// renormalize 把分量权重除以权重和，使有效权重和为 1。
func renormalize(components []WeightedText) []WeightedText {
	total := 0.0
	for _, comp := range components {
		total += comp.Weight
	}
	if total <= 0 {
		return components
	}
	for i := range components {
		components[i].Weight /= total
	}
	return components
}

func entityNames(linked []core.LinkedEntity) []string {
	names := make([]string, 0, len(linked))
	for _, le := range linked {
		if le.Entity != "" {
			names = append(names, le.Entity)
		}
	}
	return names
}

func topicLabels(topics []core.TopicScore) []string {
	labels := make([]string, 0, len(topics))
	for _, t := range topics {
		if t.Topic != "" {
			labels = append(labels, t.Topic)
		}
	}
	return labels
}
