// Package slotkit 是一个发布时段预测工具包（Slot Kit）。
//
// 设计要点：
// - 双塔结构: 通道塔（发布历史 → 768 维嵌入）与内容塔（候选内容 → 384 维嵌入）独立产出
// - 本地融合: 双向交叉注意力融合网络在进程内确定性推理，产出 168 个时段的独立概率
// - 分层清晰: core 定义领域接口，model/tower/service/store 提供实现，api 只做协议映射
package slotkit

import "github.com/rushteam/slotkit/core"

// 轻量 facade：便于用户直接 import "slotkit" 使用核心抽象。
type ChannelEmbedding = core.ChannelEmbedding
type FusionInput = core.FusionInput
type TopSlot = core.TopSlot
type ContentQuery = core.ContentQuery

const (
	ChannelDim = core.ChannelDim
	ContentDim = core.ContentDim
	NumSlots   = core.NumSlots
)
