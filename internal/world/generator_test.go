package world

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"

	"github.com/samdwyer/cardrun/internal/gamedata"
)

func testCatalog(t *testing.T) *gamedata.Catalog {
	t.Helper()
	catalog, err := gamedata.LoadCatalog()
	require.NoError(t, err)
	return catalog
}

func TestGenerateProducesValidGraphs(t *testing.T) {
	catalog := testCatalog(t)
	ctx := context.Background()

	for seed := int64(1); seed <= 25; seed++ {
		gen := NewGenerator(catalog, rand.New(rand.NewSource(seed)))
		g, err := gen.Generate(ctx)
		require.NoError(t, err, "seed %d", seed)

		assert.GreaterOrEqual(t, len(g.Nodes), DefaultMinNodes)
		assert.Less(t, len(g.Nodes), DefaultMaxNodes)
		assert.True(t, g.IsConnected(), "seed %d: graph not connected", seed)

		start, finish, seedNode, shop := g.Start(), g.Finish(), g.Seed(), g.Shop()
		require.NotNil(t, start)
		require.NotNil(t, finish)
		require.NotNil(t, seedNode)
		require.NotNil(t, shop)
		assert.NotEqual(t, start.ID, seedNode.ID)
		assert.True(t, g.Adjacent(start.ID, seedNode.ID), "seed must neighbor start")

		obstacles := mapset.New[int]()
		obstacles.Put(seedNode.ID)
		obstacles.Put(shop.ID)
		assert.NotNil(t, g.ShortestPath(start.ID, finish.ID, obstacles), "seed %d: finish unreachable", seed)

		for _, n := range g.Nodes {
			assert.LessOrEqual(t, n.X, start.X)
			assert.LessOrEqual(t, Distance(start, n), Distance(start, finish))
		}
	}
}

func TestGenerateRolesAndTiers(t *testing.T) {
	catalog := testCatalog(t)
	gen := NewGenerator(catalog, rand.New(rand.NewSource(7)))
	g, err := gen.Generate(context.Background())
	require.NoError(t, err)

	strong, medium := 0, 0
	for _, n := range g.Nodes {
		roles := 0
		for _, flag := range []bool{n.IsStart, n.IsFinish, n.IsSeed, n.IsShop, n.IsBattle} {
			if flag {
				roles++
			}
		}
		assert.Equal(t, 1, roles, "node %d has %d roles", n.ID, roles)

		if !n.IsBattle {
			assert.Empty(t, n.Enemies)
			continue
		}
		assert.GreaterOrEqual(t, len(n.Enemies), 1)
		assert.LessOrEqual(t, len(n.Enemies), maxTeamSize)
		for _, idx := range n.Enemies {
			assert.NotNil(t, catalog.Get(idx))
		}
		switch n.Tier {
		case TierStrong:
			strong++
			assert.GreaterOrEqual(t, gen.difficulty(n.Enemies), strongThreshold)
		case TierMedium:
			medium++
			assert.GreaterOrEqual(t, gen.difficulty(n.Enemies), mediumThreshold)
		}
	}
	assert.LessOrEqual(t, strong, maxStrongNodes)
	assert.LessOrEqual(t, medium, maxMediumNodes)
}

func TestGenerateReproducible(t *testing.T) {
	catalog := testCatalog(t)
	ctx := context.Background()

	g1, err := NewGenerator(catalog, rand.New(rand.NewSource(12345))).Generate(ctx)
	require.NoError(t, err)
	g2, err := NewGenerator(catalog, rand.New(rand.NewSource(12345))).Generate(ctx)
	require.NoError(t, err)

	require.Equal(t, len(g1.Nodes), len(g2.Nodes))
	assert.Equal(t, g1.Edges, g2.Edges)
	for i := range g1.Nodes {
		a, b := g1.Nodes[i], g2.Nodes[i]
		assert.Equal(t, a.X, b.X)
		assert.Equal(t, a.Y, b.Y)
		assert.Equal(t, a.Enemies, b.Enemies)
		assert.Equal(t, a.Tier, b.Tier)
	}
}

func TestGenerateDifferentSeeds(t *testing.T) {
	catalog := testCatalog(t)
	ctx := context.Background()

	g1, err := NewGenerator(catalog, rand.New(rand.NewSource(12345))).Generate(ctx)
	require.NoError(t, err)
	g2, err := NewGenerator(catalog, rand.New(rand.NewSource(54321))).Generate(ctx)
	require.NoError(t, err)

	identical := len(g1.Nodes) == len(g2.Nodes)
	for i := 0; identical && i < len(g1.Nodes); i++ {
		if g1.Nodes[i].X != g2.Nodes[i].X || g1.Nodes[i].Y != g2.Nodes[i].Y {
			identical = false
		}
	}
	assert.False(t, identical, "graphs with different seeds should differ")
}

func TestGenerateSmallGraphSkipsRoles(t *testing.T) {
	gen := NewGenerator(testCatalog(t), rand.New(rand.NewSource(3)), WithNodeRange(3, 4))
	g, err := gen.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, g.Nodes, 3)
	assert.True(t, g.IsConnected())
	assert.Nil(t, g.Start())
	assert.Nil(t, g.Shop())
}

func TestGenerateRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(testCatalog(t), rand.New(rand.NewSource(1))).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateBoundedAttempts(t *testing.T) {
	// Five-node graphs are frequently blocked by the seed or the shop, so a
	// one-attempt budget must fail cleanly on at least one seed.
	catalog := testCatalog(t)
	failures := 0
	for seed := int64(1); seed <= 200; seed++ {
		gen := NewGenerator(catalog, rand.New(rand.NewSource(seed)), WithNodeRange(5, 6), WithMaxAttempts(1))
		g, err := gen.Generate(context.Background())
		if err != nil {
			assert.True(t, errors.Is(err, ErrGenerationFailed))
			assert.Nil(t, g)
			failures++
			continue
		}
		assert.True(t, IsValid(g))
	}
	assert.Greater(t, failures, 0)
}
