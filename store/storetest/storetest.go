// Package storetest checks that a store.Store implementation behaves like
// the reference in-memory store.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/store"
)

// Run exercises s through the store.Store contract. newStore must return
// an empty store each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p, err := s.Create(ctx, "gen-1", artboard.NewProject("", "https://cdn/a.png", 640, 480))
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "gen-1", p.GenerationID)

		byID, err := s.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, byID.ID)
		assert.Equal(t, 640, byID.BaseWidth)
		assert.Equal(t, artboard.NeutralFilters(), byID.Filters)
		assert.NotNil(t, byID.Layers)

		byGen, err := s.Get(ctx, "gen-1")
		require.NoError(t, err)
		assert.Equal(t, p.ID, byGen.ID)
	})

	t.Run("CreateIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		first, err := s.Create(ctx, "gen-2", artboard.NewProject("", "a.png", 100, 100))
		require.NoError(t, err)
		second, err := s.Create(ctx, "gen-2", artboard.NewProject("", "b.png", 200, 200))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "a.png", second.BaseAssetURL)
	})

	t.Run("CreateConcurrent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		const n = 8
		ids := make([]string, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p, err := s.Create(ctx, "gen-race", artboard.NewProject("", "a.png", 10, 10))
				if assert.NoError(t, err) {
					ids[i] = p.ID
				}
			}()
		}
		wg.Wait()
		for _, id := range ids[1:] {
			assert.Equal(t, ids[0], id)
		}
	})

	t.Run("CreateRejects", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.Create(ctx, "", artboard.NewProject("", "a.png", 10, 10))
		assert.ErrorIs(t, err, store.ErrNoGeneration)
		_, err = s.Create(ctx, "gen-3", artboard.NewProject("", "a.png", 0, 10))
		assert.ErrorIs(t, err, artboard.ErrInvalidProject)
		_, err = s.Get(ctx, "gen-3")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p, err := s.Create(ctx, "gen-4", artboard.NewProject("", "a.png", 100, 100))
		require.NoError(t, err)

		layer := artboard.NewTextLayer("Hello", 50, 50)
		p, err = artboard.Apply(p, artboard.AddLayer{Layer: layer})
		require.NoError(t, err)
		filters := artboard.NeutralFilters()
		filters.Grain = 40
		patch := artboard.FullPatch(p)
		patch.Filters = &filters

		updated, err := s.Update(ctx, p.ID, patch)
		require.NoError(t, err)
		assert.Len(t, updated.Layers, 1)
		assert.Equal(t, 40.0, updated.Filters.Grain)

		got, err := s.Get(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, got.Layers, 1)
		text, ok := artboard.AsText(got.Layers[0])
		require.True(t, ok)
		assert.Equal(t, "Hello", text.Text)
		assert.Equal(t, "gen-4", got.GenerationID)

		url := "b.png"
		partial, err := s.Update(ctx, p.ID, artboard.Patch{BaseAssetURL: &url})
		require.NoError(t, err)
		assert.Equal(t, "b.png", partial.BaseAssetURL)
		assert.Len(t, partial.Layers, 1, "partial update keeps layers")
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Update(context.Background(), "nope", artboard.Patch{})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("UpdateInvalid", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p, err := s.Create(ctx, "gen-5", artboard.NewProject("", "a.png", 100, 100))
		require.NoError(t, err)
		bad := artboard.NewTextLayer("x", 1, 1)
		bad.Opacity = 3
		layers := artboard.Layers{bad}
		_, err = s.Update(ctx, p.ID, artboard.Patch{Layers: &layers})
		assert.ErrorIs(t, err, artboard.ErrInvalidProject)

		got, err := s.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Layers)
	})

	t.Run("Isolation", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p, err := s.Create(ctx, "gen-6", artboard.NewProject("", "a.png", 100, 100))
		require.NoError(t, err)
		p.BaseAssetURL = "mutated"
		got, err := s.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "a.png", got.BaseAssetURL)
	})
}
