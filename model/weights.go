package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rushteam/slotkit/core"
)

// 融合网络权重文件（JSON）的结构。导出训练产物时与此对齐。
// 所有形状在加载期校验；任何不一致都是启动期致命错误（MODEL_LOAD）。

type linearWeights struct {
	W [][]float64 `json:"w"` // [out][in]
	B []float64   `json:"b"` // [out]
}

type layerNormWeights struct {
	Gamma []float64 `json:"gamma"`
	Beta  []float64 `json:"beta"`
}

type attentionWeights struct {
	WQ linearWeights `json:"wq"`
	WK linearWeights `json:"wk"`
	WV linearWeights `json:"wv"`
	WO linearWeights `json:"wo"`
}

type crossBlockWeights struct {
	Attn  attentionWeights `json:"attn"`
	Norm1 layerNormWeights `json:"norm1"`
	FF1   linearWeights    `json:"ff1"`
	FF2   linearWeights    `json:"ff2"`
	Norm2 layerNormWeights `json:"norm2"`
}

type fusionWeights struct {
	HiddenDim        int               `json:"hidden_dim"`
	NumHeads         int               `json:"num_heads"`
	NumSlots         int               `json:"num_slots"`
	ChannelProj      linearWeights     `json:"channel_proj"`
	ContentProj      linearWeights     `json:"content_proj"`
	ContentToChannel crossBlockWeights `json:"content_to_channel"`
	ChannelToContent crossBlockWeights `json:"channel_to_content"`
	Fusion           linearWeights     `json:"fusion"`
	Head1            linearWeights     `json:"head1"`
	Head2            linearWeights     `json:"head2"`
}

// LoadBiCrossFusion 从权重文件加载融合网络。
// 文件缺失、JSON 损坏或任一权重形状不符都返回 MODEL_LOAD 错误，进程不得开始服务。
func LoadBiCrossFusion(path string) (*BiCrossFusion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("read fusion weights %s: %v", path, err))
	}
	var w fusionWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("parse fusion weights %s: %v", path, err))
	}

	hidden := w.HiddenDim
	if hidden <= 0 {
		hidden = FusionHiddenDim
	}
	numHeads := w.NumHeads
	if numHeads <= 0 {
		numHeads = FusionNumHeads
	}
	numSlots := w.NumSlots
	if numSlots <= 0 {
		numSlots = core.NumSlots
	}
	if numSlots != core.NumSlots {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("fusion weights %s: num_slots %d, want %d", path, numSlots, core.NumSlots))
	}
	if hidden%numHeads != 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("fusion weights %s: hidden_dim %d not divisible by num_heads %d", path, hidden, numHeads))
	}

	loader := &weightsLoader{path: path}
	m := &BiCrossFusion{
		ChannelProj:      loader.linear("channel_proj", w.ChannelProj, core.ChannelDim, hidden),
		ContentProj:      loader.linear("content_proj", w.ContentProj, core.ContentDim, hidden),
		ContentToChannel: loader.crossBlock("content_to_channel", w.ContentToChannel, hidden, numHeads),
		ChannelToContent: loader.crossBlock("channel_to_content", w.ChannelToContent, hidden, numHeads),
		Fusion:           loader.linear("fusion", w.Fusion, hidden*2, hidden),
		Head1:            loader.linear("head1", w.Head1, hidden, hidden),
		Head2:            loader.linear("head2", w.Head2, hidden, numSlots),
		HiddenDim:        hidden,
		NumSlots:         numSlots,
	}
	if loader.err != nil {
		return nil, loader.err
	}
	return m, nil
}

// weightsLoader 聚合各层的形状校验，首个错误即终止（err 置位后后续调用为 no-op）。
type weightsLoader struct {
	path string
	err  error
}

func (l *weightsLoader) fail(format string, args ...any) {
	if l.err == nil {
		l.err = core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("fusion weights %s: %s", l.path, fmt.Sprintf(format, args...)))
	}
}

func (l *weightsLoader) linear(name string, w linearWeights, inDim, outDim int) *Linear {
	if l.err != nil {
		return nil
	}
	if len(w.W) != outDim {
		l.fail("%s: weight rows %d, want %d", name, len(w.W), outDim)
		return nil
	}
	for j, row := range w.W {
		if len(row) != inDim {
			l.fail("%s: weight row %d has %d cols, want %d", name, j, len(row), inDim)
			return nil
		}
	}
	if len(w.B) != outDim {
		l.fail("%s: bias len %d, want %d", name, len(w.B), outDim)
		return nil
	}
	return &Linear{Weights: w.W, Biases: w.B}
}

func (l *weightsLoader) layerNorm(name string, w layerNormWeights, dim int) *LayerNorm {
	if l.err != nil {
		return nil
	}
	if len(w.Gamma) != dim || len(w.Beta) != dim {
		l.fail("%s: layernorm dims gamma=%d beta=%d, want %d", name, len(w.Gamma), len(w.Beta), dim)
		return nil
	}
	return &LayerNorm{Gamma: w.Gamma, Beta: w.Beta, Eps: 1e-5}
}

func (l *weightsLoader) crossBlock(name string, w crossBlockWeights, dim, numHeads int) *CrossAttentionBlock {
	if l.err != nil {
		return nil
	}
	return &CrossAttentionBlock{
		Attn: &MultiHeadAttention{
			NumHeads: numHeads,
			WQ:       l.linear(name+".attn.wq", w.Attn.WQ, dim, dim),
			WK:       l.linear(name+".attn.wk", w.Attn.WK, dim, dim),
			WV:       l.linear(name+".attn.wv", w.Attn.WV, dim, dim),
			WO:       l.linear(name+".attn.wo", w.Attn.WO, dim, dim),
		},
		Norm1: l.layerNorm(name+".norm1", w.Norm1, dim),
		FF1:   l.linear(name+".ff1", w.FF1, dim, dim*4),
		FF2:   l.linear(name+".ff2", w.FF2, dim*4, dim),
		Norm2: l.layerNorm(name+".norm2", w.Norm2, dim),
	}
}
