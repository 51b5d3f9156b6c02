package screens_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote/remotetest"
	"github.com/isaac-const/upple/internal/screens"
)

func TestSearchMatchesNameAndDescription(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	f.SeedPost(models.Post{ID: "p1", Name: "eslinter", Description: "lints javascript"})
	f.SeedPost(models.Post{ID: "p2", Name: "prettier", Description: "formats code"})
	f.SeedPost(models.Post{ID: "p3", Name: "bun", Description: "runtime"})

	s := screens.NewSearch(f)
	require.NoError(t, s.Run(ctx, "linter"))

	results := s.Results.Items()
	require.Len(t, results, 1)
	assert.Equal(t, "eslinter", results[0].Name)
	assert.True(t, s.Searched())

	// Description text matches too, case-insensitively.
	require.NoError(t, s.Run(ctx, "JAVASCRIPT"))
	results = s.Results.Items()
	require.Len(t, results, 1)
	assert.Equal(t, "eslinter", results[0].Name)
}

func TestBlankQueryIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	f.SeedPost(models.Post{ID: "p1", Name: "eslinter"})

	s := screens.NewSearch(f)
	require.NoError(t, s.Run(ctx, "eslinter"))
	require.Equal(t, 1, s.Results.Len())

	calls := len(f.Calls())
	require.NoError(t, s.Run(ctx, "   "))

	// No request went out and the previous results are intact.
	assert.Len(t, f.Calls(), calls)
	assert.Equal(t, 1, s.Results.Len())
}

func TestSearchedIsSafeUnderConcurrentRuns(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	f.SeedPost(models.Post{ID: "p1", Name: "eslinter"})

	s := screens.NewSearch(f)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Run(ctx, "eslinter")
		}()
		go func() {
			defer wg.Done()
			_ = s.Searched()
		}()
	}
	wg.Wait()

	assert.True(t, s.Searched())
	assert.Equal(t, 1, s.Results.Len())
}
