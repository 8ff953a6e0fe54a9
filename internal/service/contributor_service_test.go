package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/memmap/internal/color"
	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/testutil"
)

func newTestContributorService(t *testing.T) (*ContributorService, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t, testutil.TestPalette(t))
	svc := NewContributorService(env.Contributors, env.Engine, nil)
	svc.now = func() string { return "2025-10-10T08:00:00.000Z" }
	return svc, env
}

func TestContributorService_Register(t *testing.T) {
	svc, env := newTestContributorService(t)
	ctx := context.Background()

	c, err := svc.Register(ctx, RegisterInput{
		Email:      "  ada@example.com ",
		Name:       "Ada",
		Department: "Maths",
		Extra:      map[string]any{"cohort": "2024"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", c.ID)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, "#ff0000", c.Color)
	assert.Equal(t, "2025-10-10T08:00:00.000Z", c.RegistrationDate)

	stored, err := env.Contributors.Get(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", stored.Color)
	assert.Equal(t, "2024", stored.Extra["cohort"])

	// The assignment was persisted alongside the record.
	state, err := env.ColorState.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", state.Assignments["ada@example.com"])
}

func TestContributorService_ReRegisterKeepsColorAndHistory(t *testing.T) {
	svc, env := newTestContributorService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "bob@example.com", Name: "Bob"})
	require.NoError(t, err)

	stored, err := env.Contributors.Get(ctx, "ada@example.com")
	require.NoError(t, err)
	stored.MemoriesContributed = []string{"m1"}
	stored.RegistrationDate = "2025-01-01T00:00:00.000Z"
	require.NoError(t, env.Contributors.Save(ctx, stored))

	svc.now = func() string { return "2026-01-01T00:00:00.000Z" }
	again, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Biography: "Analyst"})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", again.Color)
	assert.Equal(t, "Ada", again.Name)
	assert.Equal(t, "Analyst", again.Biography)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", again.RegistrationDate)
	assert.Equal(t, []string{"m1"}, again.MemoriesContributed)
	assert.Equal(t, 2, env.Engine.Len())
}

func TestContributorService_RegisterValidatesEmail(t *testing.T) {
	svc, _ := newTestContributorService(t)

	for _, email := range []string{"", "   ", "no-at-sign", "@example.com", "ada@", "a b@example.com", "../x@y"} {
		_, err := svc.Register(context.Background(), RegisterInput{Email: email})
		assert.True(t, memerr.IsValidationError(err), "email %q: %v", email, err)
	}
}

func TestContributorService_DistinctColors(t *testing.T) {
	svc, _ := newTestContributorService(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		c, err := svc.Register(ctx, RegisterInput{Email: email})
		require.NoError(t, err)
		assert.False(t, seen[c.Color], "color %s reused", c.Color)
		seen[c.Color] = true
	}
}

func TestContributorService_SaveAdoptsRecordColor(t *testing.T) {
	svc, env := newTestContributorService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, &model.Contributor{Email: "legacy@example.com", Color: "#123456"})
	require.NoError(t, err)
	assert.Equal(t, "legacy@example.com", saved.ID)

	c, ok := env.Engine.Lookup("legacy@example.com")
	require.True(t, ok)
	assert.Equal(t, "#123456", c)

	// A record without a color gets one.
	saved, err = svc.Save(ctx, &model.Contributor{ID: "new@example.com", Email: "new@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.Color)

	_, err = svc.Save(ctx, &model.Contributor{})
	assert.True(t, memerr.IsValidationError(err))
}

func TestContributorService_SaveAll(t *testing.T) {
	svc, env := newTestContributorService(t)
	ctx := context.Background()

	err := svc.SaveAll(ctx, []*model.Contributor{
		{ID: "a@example.com", Email: "a@example.com", Color: "#0000ff"},
		{ID: "b@example.com", Email: "b@example.com"},
	})
	require.NoError(t, err)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "#0000ff", listed[0].Color)
	assert.NotEmpty(t, listed[1].Color)
	assert.NotEqual(t, listed[0].Color, listed[1].Color)
	assert.Equal(t, 2, env.Engine.Len())
}

func TestContributorService_SaveAllAssignsInRegistrationOrder(t *testing.T) {
	svc, env := newTestContributorService(t)
	ctx := context.Background()

	records := []*model.Contributor{
		{ID: "carol@example.com", RegistrationDate: "2025-03-01T00:00:00.000Z"},
		{ID: "bob@example.com", RegistrationDate: "2025-02-01T00:00:00.000Z"},
		{ID: "ada@example.com", RegistrationDate: "2025-01-01T00:00:00.000Z"},
	}
	require.NoError(t, svc.SaveAll(ctx, records))

	assert.Equal(t, "#ff0000", env.Engine.Color("ada@example.com"))
	assert.Equal(t, "#00ff00", env.Engine.Color("bob@example.com"))
	assert.Equal(t, "#0000ff", env.Engine.Color("carol@example.com"))
}

func TestContributorService_RejectsUnstorableIDs(t *testing.T) {
	svc, env := newTestContributorService(t)
	ctx := context.Background()

	for _, id := range []string{"a/b", "a b", ".hidden", "contributors-2025", "é@example.com"} {
		_, err := svc.Save(ctx, &model.Contributor{ID: id})
		assert.True(t, memerr.IsValidationError(err), "id %q: %v", id, err)

		err = svc.SaveAll(ctx, []*model.Contributor{{ID: "ok@example.com"}, {ID: id}})
		assert.True(t, memerr.IsValidationError(err), "bulk id %q: %v", id, err)
	}

	_, err := svc.Register(ctx, RegisterInput{Email: "contributors-x@example.com"})
	assert.True(t, memerr.IsValidationError(err))

	// Nothing was stored or assigned.
	listed, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Equal(t, 0, env.Engine.Len())
}

func TestContributorService_ColorAndRecordColors(t *testing.T) {
	svc, env := newTestContributorService(t)
	ctx := context.Background()

	c, assigned := svc.Color("nobody@example.com")
	assert.False(t, assigned)
	assert.Equal(t, color.DefaultColor, c)

	_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com"})
	require.NoError(t, err)
	c, assigned = svc.Color("ada@example.com")
	assert.True(t, assigned)
	assert.Equal(t, "#ff0000", c)
	assert.Equal(t, map[string]string{"ada@example.com": "#ff0000"}, svc.Colors())

	// Records feed a fresh engine at startup.
	colors, err := svc.RecordColors(ctx)
	require.NoError(t, err)
	fresh := color.NewEngine(env.Engine.Palette())
	fresh.Restore(ctx, colors)
	assert.Equal(t, "#ff0000", fresh.Color("ada@example.com"))
}
