package core

// 维度约定：各边界处显式校验，不做推断。
const (
	// ChannelDim 是通道（用户塔）嵌入维度，由句向量模型固定
	ChannelDim = 768

	// ContentDim 是内容（视频塔）嵌入维度，由外部推理服务固定
	ContentDim = 384

	// DaysPerWeek / HoursPerDay / NumSlots 定义一周的发布时段划分
	DaysPerWeek = 7
	HoursPerDay = 24
	NumSlots    = DaysPerWeek * HoursPerDay // 168
)

// ChannelEmbedding 是通道塔的产出：对频道近期视频加权嵌入的算术平均。
// 无可用视频时 Vector 为全零向量且 VideosProcessed = 0（不是错误）。
// 产出后不可变。
type ChannelEmbedding struct {
	Vector          []float64 `json:"embedding"`
	Dim             int       `json:"dim"`
	VideosProcessed int       `json:"videos_processed"`
	ChannelTitle    string    `json:"channel_title"`
}

// FusionInput 是融合网络的输入：一对定维向量。
type FusionInput struct {
	ChannelEmbedding []float64 `json:"user_embedding"`
	ContentEmbedding []float64 `json:"video_embedding"`
}

// Validate 校验两个向量的维度约定。维度不符是调用方输入错误，不是模型故障。
func (in *FusionInput) Validate() error {
	if len(in.ChannelEmbedding) != ChannelDim {
		return NewDimensionError(ModuleModel, "user_emb", ChannelDim, len(in.ChannelEmbedding))
	}
	if len(in.ContentEmbedding) != ContentDim {
		return NewDimensionError(ModuleModel, "video_emb", ContentDim, len(in.ContentEmbedding))
	}
	return nil
}

// TopSlot 是排名产出的一个时段：day ∈ [0,7)，hour ∈ [0,24)。
type TopSlot struct {
	Day   int     `json:"dayIdx"`
	Hour  int     `json:"hourIdx"`
	Score float64 `json:"score"`
}

// SlotIndex 返回 (day, hour) 的 day-major 平铺下标。
func SlotIndex(day, hour int) int {
	return day*HoursPerDay + hour
}

// SlotOf 返回平铺下标 i 对应的 (day, hour)。
func SlotOf(i int) (day, hour int) {
	return i / HoursPerDay, i % HoursPerDay
}

// ZeroVector 返回指定维度的全零向量。
func ZeroVector(dim int) []float64 {
	return make([]float64, dim)
}
