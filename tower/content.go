package tower

import (
	"context"
	"fmt"

	"github.com/rushteam/slotkit/core"
)

// ContentTower 是内容塔：候选内容元数据 → ContentDim 维嵌入。
// 推理委托给外部服务（core.ContentEmbeddingService），本层只负责
// 入参校验与出参维度约定的强制。
type ContentTower struct {
	embedding core.ContentEmbeddingService
}

// NewContentTower 创建内容塔。
func NewContentTower(embedding core.ContentEmbeddingService) *ContentTower {
	return &ContentTower{embedding: embedding}
}

// ContentEmbedding 获取候选内容的嵌入向量。
// 标题为必填；上游返回的向量维度不符时是上游故障（UPSTREAM_FAILURE），
// 不能当作调用方输入错误。
func (t *ContentTower) ContentEmbedding(ctx context.Context, q *core.ContentQuery) ([]float64, error) {
	if q == nil || q.Title == "" {
		return nil, core.NewDomainError(core.ModuleTower, core.ErrorCodeMissingField, "title is required")
	}

	vec, err := t.embedding.GetContentEmbedding(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(vec) != core.ContentDim {
		return nil, core.NewUpstreamError(core.ModuleTower,
			fmt.Sprintf("content embedding service returned dim %d, want %d", len(vec), core.ContentDim))
	}
	return vec, nil
}
