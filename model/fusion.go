package model

import (
	"github.com/rushteam/slotkit/core"
)

// BiCrossFusion 是双向交叉注意力融合网络：
// (通道嵌入 768, 内容嵌入 384) → 168 个发布时段的独立概率。
//
// 结构：
//   - 通道 768→256、内容 384→256 线性投影，各视为长度 1 的序列
//   - 两个独立交叉注意力块：内容→通道 与 通道→内容（4 头，残差 + LayerNorm，
//     前馈扩张 4 倍 ReLU 回投影，第二次残差 + LayerNorm）
//   - 两个精炼向量拼接（512）→ 融合线性层（256）→ 两层前馈头（256→256→168）
//   - 每个时段独立过 sigmoid；168 个输出不要求和为 1
//
// 工程特征：
//   - 确定性推理：同一输入必得同一输出
//   - 并发：权重加载后只读，可被任意多请求并发调用
//
// 维度校验：投影前强制校验两个输入向量维度；不符是调用方输入错误，不是模型故障。
type BiCrossFusion struct {
	// ChannelProj / ContentProj 输入投影层
	ChannelProj *Linear
	ContentProj *Linear

	// ContentToChannel 内容作为 query、通道作为 key/value 的交叉注意力块
	ContentToChannel *CrossAttentionBlock

	// ChannelToContent 通道作为 query、内容作为 key/value 的交叉注意力块
	ChannelToContent *CrossAttentionBlock

	// Fusion 拼接向量（2×hidden）→ hidden 的融合层
	Fusion *Linear

	// Head1 / Head2 输出头：hidden → hidden → NumSlots
	Head1 *Linear
	Head2 *Linear

	// HiddenDim 隐层维度
	HiddenDim int

	// NumSlots 输出时段数
	NumSlots int
}

var _ core.SlotPredictor = (*BiCrossFusion)(nil)

// FusionHiddenDim / FusionNumHeads 是融合网络的默认结构参数。
const (
	FusionHiddenDim = 256
	FusionNumHeads  = 4
)

// NewBiCrossFusion 创建确定性初始化的融合网络（开发/测试用）。
// 生产权重通过 LoadBiCrossFusion 从权重文件加载。
func NewBiCrossFusion() *BiCrossFusion {
	return &BiCrossFusion{
		ChannelProj:      NewLinear(core.ChannelDim, FusionHiddenDim),
		ContentProj:      NewLinear(core.ContentDim, FusionHiddenDim),
		ContentToChannel: NewCrossAttentionBlock(FusionHiddenDim, FusionNumHeads),
		ChannelToContent: NewCrossAttentionBlock(FusionHiddenDim, FusionNumHeads),
		Fusion:           NewLinear(FusionHiddenDim*2, FusionHiddenDim),
		Head1:            NewLinear(FusionHiddenDim, FusionHiddenDim),
		Head2:            NewLinear(FusionHiddenDim, core.NumSlots),
		HiddenDim:        FusionHiddenDim,
		NumSlots:         core.NumSlots,
	}
}

// Name 返回模型名称。
func (m *BiCrossFusion) Name() string {
	return "bicross_fusion"
}

// PredictSlots 执行一次确定性推理，返回 NumSlots 个 [0,1] 概率（day-major 平铺）。
//
// 参数按声明维度传入：通道嵌入 768 在前、内容嵌入 384 在后。
// 历史实现中存在一处调换两者实参顺序的调用点，此处视为缺陷、不予继承。
func (m *BiCrossFusion) PredictSlots(in *core.FusionInput) ([]float64, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	u := m.ChannelProj.Apply(in.ChannelEmbedding)
	v := m.ContentProj.Apply(in.ContentEmbedding)

	// 双向精炼：各块独立，互不共享权重
	refinedV := m.ContentToChannel.Forward(v, u)
	refinedU := m.ChannelToContent.Forward(u, v)

	fused := m.Fusion.Apply(concatVec(refinedV, refinedU))
	hidden := reluVec(m.Head1.Apply(fused))
	logits := m.Head2.Apply(hidden)

	// 每时段独立 sigmoid（区别于 softmax 单分布变体，见 DESIGN.md）
	probs := make([]float64, len(logits))
	for i, logit := range logits {
		probs[i] = sigmoid(logit)
	}
	return probs, nil
}
