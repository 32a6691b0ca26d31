package model

import "math"

// 本文件是 model 包共享的数值原语：线性层、LayerNorm、激活函数与向量运算。
// 所有运算使用 float64，推理是确定性的。

// Linear 是全连接线性层：y = Wx + b。
// Weights[neuron][input] 与偏置 Biases[neuron] 来自预训练权重。
type Linear struct {
	Weights [][]float64
	Biases  []float64
}

// NewLinear 创建一个确定性初始化的线性层（Xavier 缩放常量）。
// 仅用于开发/测试；生产权重从权重文件加载。
func NewLinear(inDim, outDim int) *Linear {
	weights := make([][]float64, outDim)
	scale := math.Sqrt(2.0/float64(inDim+outDim)) * 0.1
	for j := range weights {
		weights[j] = make([]float64, inDim)
		for k := range weights[j] {
			// 行列位置参与取值，避免所有神经元输出相同
			weights[j][k] = scale * math.Sin(float64(j*inDim+k+1))
		}
	}
	return &Linear{
		Weights: weights,
		Biases:  make([]float64, outDim),
	}
}

// InDim 返回输入维度。
func (l *Linear) InDim() int {
	if len(l.Weights) == 0 {
		return 0
	}
	return len(l.Weights[0])
}

// OutDim 返回输出维度。
func (l *Linear) OutDim() int {
	return len(l.Weights)
}

// Apply 计算 Wx + b。输入维度不符时返回 nil（调用方在边界已校验维度）。
func (l *Linear) Apply(x []float64) []float64 {
	if len(x) != l.InDim() {
		return nil
	}
	out := make([]float64, len(l.Weights))
	for j, row := range l.Weights {
		sum := l.Biases[j]
		for k, w := range row {
			sum += w * x[k]
		}
		out[j] = sum
	}
	return out
}

// LayerNorm 是层归一化：对单个向量按特征维归一化后仿射变换。
type LayerNorm struct {
	Gamma []float64
	Beta  []float64
	Eps   float64
}

// NewLayerNorm 创建单位缩放、零偏移的 LayerNorm。
func NewLayerNorm(dim int) *LayerNorm {
	gamma := make([]float64, dim)
	for i := range gamma {
		gamma[i] = 1.0
	}
	return &LayerNorm{
		Gamma: gamma,
		Beta:  make([]float64, dim),
		Eps:   1e-5,
	}
}

// Apply 归一化一个向量。
func (n *LayerNorm) Apply(x []float64) []float64 {
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	variance := 0.0
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(x))

	inv := 1.0 / math.Sqrt(variance+n.Eps)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v-mean)*inv*n.Gamma[i] + n.Beta[i]
	}
	return out
}

// relu ReLU 激活函数。
func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// sigmoid Sigmoid 激活函数。
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// softmax 对一组打分做 softmax 归一化（数值稳定版）。
func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	sum := 0.0
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// reluVec 对向量逐元素应用 ReLU。
func reluVec(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = relu(v)
	}
	return out
}

// addVec 返回 a + b。
func addVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// concatVec 返回 a 与 b 的拼接。
func concatVec(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// dotProduct 计算向量内积。
func dotProduct(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// cosineSimilarity 计算余弦相似度。
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	dot := dotProduct(a, b)
	normA := 0.0
	normB := 0.0
	for i := range a {
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
