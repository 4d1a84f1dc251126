// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DataDir: t.TempDir(), MaxSessions: 2})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSession(id string, created time.Time) types.Session {
	return types.Session{
		ID:        id,
		Document:  id + ".pdf",
		CreatedAt: created,
		Pages:     2,
		Extraction: types.ExtractionResult{
			FullText: "1. Ein Schiff\n2. Ein Zug",
			CoreText: "1. 15 × 40\n2. 80 ÷ 4",
		},
		Tasks: []types.TaskRecord{
			{Index: 1, FullText: "1. Ein Schiff", CoreText: "1. 15 × 40"},
			{Index: 2, FullText: "2. Ein Zug", CoreText: "2. 80 ÷ 4"},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 10, 0, 0, 123000000, time.UTC)

	sess := testSession("a", created)
	require.NoError(t, s.SaveAnalysis(ctx, sess))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.Document, got.Document)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, sess.Pages, got.Pages)
	assert.Equal(t, sess.Extraction, got.Extraction)
	assert.Equal(t, sess.Tasks, got.Tasks)
	assert.Empty(t, got.Transformed)
}

func TestSaveTransformation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveAnalysis(ctx, testSession("a", time.Now())))

	first := []types.TransformedTask{
		{Index: 1, Topic: "Space", Content: "Eine Rakete"},
		{Index: 2, Topic: "Space", Content: "Ein Satellit"},
	}
	require.NoError(t, s.SaveTransformation(ctx, "a", "Space", first))

	second := []types.TransformedTask{
		{Index: 1, Topic: "Zoo", Content: "Ein Elefant"},
		{Index: 2, Topic: "Zoo", Content: "Ein Löwe"},
	}
	require.NoError(t, s.SaveTransformation(ctx, "a", "Zoo", second))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Zoo", got.Topic)
	assert.Equal(t, second, got.Transformed)
}

func TestSaveTransformation_UnknownSession(t *testing.T) {
	s := testStore(t)
	err := s.SaveTransformation(context.Background(), "missing", "Space", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAnalysis_ReplacesTasks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	sess := testSession("a", time.Now())
	require.NoError(t, s.SaveAnalysis(ctx, sess))
	require.NoError(t, s.SaveTransformation(ctx, "a", "Space", []types.TransformedTask{{Index: 1, Topic: "Space", Content: "x"}}))

	sess.Tasks = sess.Tasks[:1]
	require.NoError(t, s.SaveAnalysis(ctx, sess))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, got.Tasks, 1)
	assert.Empty(t, got.Transformed)
	assert.Empty(t, got.Topic)
}

func TestSessionsAndLatest(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.SaveAnalysis(ctx, testSession(id, base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, s.SaveTransformation(ctx, "new", "Space", []types.TransformedTask{{Index: 1, Topic: "Space", Content: "x"}}))

	list, err := s.Sessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2, "limited to MaxSessions")
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, 2, list[0].Tasks)
	assert.Equal(t, 1, list[0].Transformed)
	assert.Equal(t, "Space", list[0].Topic)

	all, err := s.Sessions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", latest.ID)
}

func TestLoad_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimestampsSortLexically(t *testing.T) {
	a := time.Date(2026, 1, 1, 0, 0, 5, 100000000, time.UTC).Format(timeLayout)
	b := time.Date(2026, 1, 1, 0, 0, 5, 120000000, time.UTC).Format(timeLayout)
	assert.Less(t, a, b, fmt.Sprintf("%s < %s", a, b))
}
