package model

import "math"

// MultiHeadAttention 是多头注意力层。
//
// 计算：Q = WQ·q，K = WK·k，V = WV·v，按头切分后
// softmax(QKᵀ/√d_head)·V，各头拼接后过 WO 投影。
// 本系统中 query 与 key/value 各为长度 1 的序列（单 token），实现保持通用序列形态。
type MultiHeadAttention struct {
	NumHeads int
	WQ       *Linear
	WK       *Linear
	WV       *Linear
	WO       *Linear
}

// NewMultiHeadAttention 创建确定性初始化的多头注意力层（开发/测试用）。
func NewMultiHeadAttention(dim, numHeads int) *MultiHeadAttention {
	return &MultiHeadAttention{
		NumHeads: numHeads,
		WQ:       NewLinear(dim, dim),
		WK:       NewLinear(dim, dim),
		WV:       NewLinear(dim, dim),
		WO:       NewLinear(dim, dim),
	}
}

// Forward 计算 query 序列对 keyValue 序列的注意力输出，形状与 query 一致。
func (a *MultiHeadAttention) Forward(query, keyValue [][]float64) [][]float64 {
	dim := a.WQ.OutDim()
	headDim := dim / a.NumHeads

	qs := make([][]float64, len(query))
	for i, q := range query {
		qs[i] = a.WQ.Apply(q)
	}
	ks := make([][]float64, len(keyValue))
	vs := make([][]float64, len(keyValue))
	for i, kv := range keyValue {
		ks[i] = a.WK.Apply(kv)
		vs[i] = a.WV.Apply(kv)
	}

	out := make([][]float64, len(query))
	invSqrt := 1.0 / math.Sqrt(float64(headDim))
	for qi := range qs {
		merged := make([]float64, dim)
		for h := 0; h < a.NumHeads; h++ {
			lo, hi := h*headDim, (h+1)*headDim

			// 该头下 query 对每个 key 的打分
			scores := make([]float64, len(ks))
			for ki := range ks {
				scores[ki] = dotProduct(qs[qi][lo:hi], ks[ki][lo:hi]) * invSqrt
			}
			weights := softmax(scores)

			// 加权求和 value
			for ki, w := range weights {
				for d := lo; d < hi; d++ {
					merged[d] += w * vs[ki][d]
				}
			}
		}
		out[qi] = a.WO.Apply(merged)
	}
	return out
}

// CrossAttentionBlock 是交叉注意力块：
// 多头注意力 → 残差 + LayerNorm → 前馈子层（扩张 4 倍，ReLU，回投影）→ 残差 + LayerNorm。
type CrossAttentionBlock struct {
	Attn  *MultiHeadAttention
	Norm1 *LayerNorm
	FF1   *Linear
	FF2   *Linear
	Norm2 *LayerNorm
}

// NewCrossAttentionBlock 创建确定性初始化的交叉注意力块（开发/测试用）。
func NewCrossAttentionBlock(dim, numHeads int) *CrossAttentionBlock {
	return &CrossAttentionBlock{
		Attn:  NewMultiHeadAttention(dim, numHeads),
		Norm1: NewLayerNorm(dim),
		FF1:   NewLinear(dim, dim*4),
		FF2:   NewLinear(dim*4, dim),
		Norm2: NewLayerNorm(dim),
	}
}

// Forward 让 query 向量对 keyValue 向量做一次交叉注意力精炼（单 token 形态）。
func (b *CrossAttentionBlock) Forward(query, keyValue []float64) []float64 {
	attnOut := b.Attn.Forward([][]float64{query}, [][]float64{keyValue})[0]
	x := b.Norm1.Apply(addVec(query, attnOut))
	ffOut := b.FF2.Apply(reluVec(b.FF1.Apply(x)))
	return b.Norm2.Apply(addVec(x, ffOut))
}
