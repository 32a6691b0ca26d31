package tower

import (
	"context"
	"testing"

	"github.com/rushteam/slotkit/core"
)

type fakeEmbeddingService struct {
	vec []float64
	err error
}

func (f *fakeEmbeddingService) GetContentEmbedding(_ context.Context, _ *core.ContentQuery) ([]float64, error) {
	return f.vec, f.err
}

func TestContentTower_ContentEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("valid response", func(t *testing.T) {
		tower := NewContentTower(&fakeEmbeddingService{vec: make([]float64, core.ContentDim)})
		vec, err := tower.ContentEmbedding(ctx, &core.ContentQuery{Title: "my video"})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if len(vec) != core.ContentDim {
			t.Errorf("len = %d, want %d", len(vec), core.ContentDim)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		tower := NewContentTower(&fakeEmbeddingService{vec: make([]float64, core.ContentDim)})
		_, err := tower.ContentEmbedding(ctx, &core.ContentQuery{Description: "no title"})
		if !core.IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("nil query", func(t *testing.T) {
		tower := NewContentTower(&fakeEmbeddingService{})
		_, err := tower.ContentEmbedding(ctx, nil)
		if !core.IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("wrong upstream dimension is upstream failure", func(t *testing.T) {
		tower := NewContentTower(&fakeEmbeddingService{vec: make([]float64, 100)})
		_, err := tower.ContentEmbedding(ctx, &core.ContentQuery{Title: "my video"})
		if !core.IsUpstreamError(err) {
			t.Errorf("error = %v, want upstream error", err)
		}
	})

	t.Run("service error propagated", func(t *testing.T) {
		svcErr := core.NewUpstreamError(core.ModuleService, "vidtower unreachable")
		tower := NewContentTower(&fakeEmbeddingService{err: svcErr})
		_, err := tower.ContentEmbedding(ctx, &core.ContentQuery{Title: "my video"})
		if !core.IsUpstreamError(err) {
			t.Errorf("error = %v, want upstream error", err)
		}
	})
}
