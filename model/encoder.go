package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rushteam/slotkit/core"
)

// SentenceEncoder 是句向量编码模型。
//
// 核心思想：
//   - 预加载词向量表（word -> vector），O(1) 查找
//   - 句向量 = 文本分词后已知词向量的平均（mean pooling）
//   - OOV（Out-of-Vocabulary）词被跳过；全 OOV 文本得到零向量
//
// 工程特征：
//   - 实时性：好（本地推理，无 RPC）
//   - 计算复杂度：低（向量平均）
//   - 并发：加载后只读，可被任意多请求并发调用
//
// 使用场景：
//   - 通道塔：视频标题/描述/实体名/主题标签 → 向量
//   - 零样本主题分类：候选标签 → 向量
type SentenceEncoder struct {
	// WordVectors 词向量表：word -> vector
	WordVectors map[string][]float64

	// Dim 向量维度（通道塔约定为 core.ChannelDim）
	Dim int
}

var _ core.TextEncoder = (*SentenceEncoder)(nil)

// NewSentenceEncoder 从词向量表创建编码器。维度从首个向量推断（dim <= 0 时）。
func NewSentenceEncoder(wordVectors map[string][]float64, dim int) *SentenceEncoder {
	if dim <= 0 {
		for _, vec := range wordVectors {
			dim = len(vec)
			break
		}
	}
	return &SentenceEncoder{
		WordVectors: wordVectors,
		Dim:         dim,
	}
}

// encoderWeights 是词向量权重文件的 JSON 结构。
type encoderWeights struct {
	Dimension int                  `json:"dimension"`
	Vectors   map[string][]float64 `json:"vectors"`
}

// NewSentenceEncoderFromFile 从权重文件加载编码器。
// 文件缺失或维度不一致是启动期致命错误（MODEL_LOAD）。
func NewSentenceEncoderFromFile(path string) (*SentenceEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("read encoder weights %s: %v", path, err))
	}
	var w encoderWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("parse encoder weights %s: %v", path, err))
	}
	if w.Dimension <= 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("encoder weights %s: dimension must be positive", path))
	}
	for word, vec := range w.Vectors {
		if len(vec) != w.Dimension {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
				fmt.Sprintf("encoder weights %s: word %q has dim %d, want %d", path, word, len(vec), w.Dimension))
		}
	}
	return NewSentenceEncoder(w.Vectors, w.Dimension), nil
}

// Dimension 返回向量维度。
func (m *SentenceEncoder) Dimension() int {
	return m.Dim
}

// EncodeText 将单个文本编码为向量。文本按空白分词。
func (m *SentenceEncoder) EncodeText(_ context.Context, text string) ([]float64, error) {
	return m.encode(text), nil
}

// EncodeTexts 批量编码。
func (m *SentenceEncoder) EncodeTexts(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = m.encode(t)
	}
	return out, nil
}

func (m *SentenceEncoder) encode(text string) []float64 {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	aggregated := make([]float64, m.Dim)
	if len(words) == 0 {
		return aggregated
	}

	known := 0
	for _, word := range words {
		vec, ok := m.WordVectors[word]
		if !ok || len(vec) != m.Dim {
			continue
		}
		known++
		for i := 0; i < m.Dim; i++ {
			aggregated[i] += vec[i]
		}
	}
	if known == 0 {
		return aggregated
	}
	for i := 0; i < m.Dim; i++ {
		aggregated[i] /= float64(known)
	}
	return aggregated
}
