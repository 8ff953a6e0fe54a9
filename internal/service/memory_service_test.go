package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/testutil"
)

type memoryFixture struct {
	env          *testutil.Env
	contributors *ContributorService
	memories     *MemoryService
}

func newMemoryFixture(t *testing.T) *memoryFixture {
	t.Helper()
	env := testutil.NewEnv(t, testutil.TestPalette(t))
	contributors := NewContributorService(env.Contributors, env.Engine, nil)
	memories := NewMemoryService(env.Memories, env.Contributors, env.Engine, NewMemberService(testutil.TestMembers()), nil)

	n := 0
	memories.newID = func() string {
		n++
		return fmt.Sprintf("mem%03d", n)
	}
	memories.now = func() string { return fmt.Sprintf("2025-10-10T08:00:%02d.000Z", n) }
	return &memoryFixture{env: env, contributors: contributors, memories: memories}
}

func TestMemoryService_AddFromRegisteredContributor(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	ada, err := f.contributors.Register(ctx, RegisterInput{Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)

	m, err := f.memories.Add(ctx, AddMemoryInput{
		Title:            " Coffee ",
		TargetUserID:     "user001",
		ContributorEmail: "ada@example.com",
		Coordinates:      []float64{103.7764, 1.2966},
		Media:            model.Media{Images: []string{"uploads/images/a.png"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "mem001", m.ID)
	assert.Equal(t, "Coffee", m.Title)
	assert.Equal(t, ada.Color, m.ContributorColor)
	assert.Equal(t, "ada@example.com", m.RegisteredContributorID)
	assert.Equal(t, "Ada", m.ContributorName)
	assert.Equal(t, model.DefaultMemoryType, m.Type)
	assert.NotEmpty(t, m.Timestamp)

	stored, err := f.env.Contributors.Get(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"mem001"}, stored.MemoriesContributed)
}

func TestMemoryService_AddAnonymous(t *testing.T) {
	f := newMemoryFixture(t)

	m, err := f.memories.Add(context.Background(), AddMemoryInput{
		TargetUserID:    "user002",
		ContributorName: "Passer-by",
		Coordinates:     []float64{0, 0},
		Type:            "photo_memory",
	})
	require.NoError(t, err)
	assert.Empty(t, m.ContributorColor)
	assert.Empty(t, m.RegisteredContributorID)
	assert.Equal(t, "photo_memory", m.Type)
}

func TestMemoryService_AddValidation(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input AddMemoryInput
	}{
		{"missing target", AddMemoryInput{Coordinates: []float64{0, 0}}},
		{"unknown target", AddMemoryInput{TargetUserID: "user999", Coordinates: []float64{0, 0}}},
		{"no coordinates", AddMemoryInput{TargetUserID: "user001"}},
		{"one coordinate", AddMemoryInput{TargetUserID: "user001", Coordinates: []float64{1}}},
		{"longitude", AddMemoryInput{TargetUserID: "user001", Coordinates: []float64{181, 0}}},
		{"latitude", AddMemoryInput{TargetUserID: "user001", Coordinates: []float64{0, -90.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.memories.Add(ctx, tt.input)
			assert.True(t, memerr.IsValidationError(err), "got %v", err)
		})
	}
}

func TestMemoryService_ForTargetAndDelete(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	_, err := f.contributors.Register(ctx, RegisterInput{Email: "ada@example.com"})
	require.NoError(t, err)

	for _, target := range []string{"user001", "user002", "user001"} {
		_, err := f.memories.Add(ctx, AddMemoryInput{
			TargetUserID:     target,
			ContributorEmail: "ada@example.com",
			Coordinates:      []float64{1, 1},
		})
		require.NoError(t, err)
	}

	forAda, err := f.memories.ForTarget(ctx, "user001")
	require.NoError(t, err)
	require.Len(t, forAda, 2)
	assert.Equal(t, "mem001", forAda[0].ID)
	assert.Equal(t, "mem003", forAda[1].ID)

	require.NoError(t, f.memories.Delete(ctx, "mem001"))
	_, err = f.memories.Get(ctx, "mem001")
	assert.True(t, memerr.IsNotFound(err))

	stored, err := f.env.Contributors.Get(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"mem002", "mem003"}, stored.MemoriesContributed)

	assert.True(t, memerr.IsNotFound(f.memories.Delete(ctx, "mem001")))
}

func TestMemoryService_RefreshContributions(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	require.NoError(t, f.env.Contributors.Save(ctx, testutil.TestContributor("ada@example.com", "#ff0000")))
	stale := testutil.TestContributor("bob@example.com", "#00ff00")
	stale.MemoriesContributed = []string{"gone"}
	require.NoError(t, f.env.Contributors.Save(ctx, stale))
	require.NoError(t, f.env.Contributors.Save(ctx, testutil.TestContributor("cy@example.com", "#0000ff")))

	legacy := testutil.TestMemory("m2", "user001", "")
	legacy.RegisteredContributorID = "ada@example.com"
	require.NoError(t, f.memories.SaveAll(ctx, []*model.Memory{
		testutil.TestMemory("m1", "user001", "ada@example.com"),
		legacy,
		testutil.TestMemory("m3", "user002", "stranger@example.com"),
	}))

	updated, err := f.memories.RefreshContributions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	ada, err := f.env.Contributors.Get(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ada.MemoriesContributed)

	bob, err := f.env.Contributors.Get(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, bob.MemoriesContributed)

	// Nothing changed the second time.
	updated, err = f.memories.RefreshContributions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestMemoryService_SaveAllFillsColors(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	_, err := f.contributors.Register(ctx, RegisterInput{Email: "ada@example.com"})
	require.NoError(t, err)

	require.NoError(t, f.memories.SaveAll(ctx, []*model.Memory{
		testutil.TestMemory("m1", "user001", "ada@example.com"),
	}))
	m, err := f.memories.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", m.ContributorColor)
}
