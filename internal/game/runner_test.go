package game

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/cardrun/internal/combat"
	"github.com/samdwyer/cardrun/internal/deck"
	"github.com/samdwyer/cardrun/internal/gamedata"
	"github.com/samdwyer/cardrun/internal/session"
	"github.com/samdwyer/cardrun/internal/world"
)

// weakestIndex returns the catalog index of the lowest-power card.
func weakestIndex(catalog *gamedata.Catalog) int {
	best := 0
	for i := 1; i < catalog.Count(); i++ {
		if catalog.Power(i) < catalog.Power(best) {
			best = i
		}
	}
	return best
}

// smallMap builds:
//
//	1(seed) - 0(start) - 3(shop)
//	    \      |          |
//	     ---  2(battle) - 4(finish)
func smallMap(enemies []int) *world.Graph {
	g := world.NewGraph()
	start := g.AddNode(400, 80)
	seed := g.AddNode(320, 80)
	battle := g.AddNode(400, 160)
	shop := g.AddNode(480, 160)
	finish := g.AddNode(400, 240)

	start.IsStart = true
	seed.IsSeed = true
	shop.IsShop = true
	finish.IsFinish = true
	battle.IsBattle = true
	battle.Tier = world.TierWeak
	battle.Enemies = enemies

	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(0, 3)
	g.AddEdge(2, 4)
	g.AddEdge(3, 4)
	g.AddEdge(1, 2)
	return g
}

type fixture struct {
	catalog *gamedata.Catalog
	store   *deck.MemoryStore
	runner  *Runner
}

func newFixture(t *testing.T, cards ...string) *fixture {
	t.Helper()
	catalog := gamedata.MustLoadCatalog()

	d := deck.Deck{}
	for _, name := range cards {
		idx := catalog.IndexOf(name)
		require.GreaterOrEqual(t, idx, 0, name)
		d = append(d, catalog.Get(idx).Clone())
	}
	store := deck.NewMemoryStore(d)
	runner := NewRunner(catalog, store, rand.New(rand.NewSource(1)),
		WithEngine(combat.NewEngine(combat.WithPacing(0))))
	return &fixture{catalog: catalog, store: store, runner: runner}
}

func (f *fixture) run(t *testing.T, graph *world.Graph, gold int) *Run {
	t.Helper()
	state, err := session.NewState(graph, session.WithGold(gold))
	require.NoError(t, err)
	return &Run{State: state, Deck: f.store.LoadDeck(), Upgrades: f.store.LoadUpgrades()}
}

func TestNewRunRequiresDeck(t *testing.T) {
	f := newFixture(t)

	_, err := f.runner.NewRun(context.Background())

	assert.ErrorIs(t, err, deck.ErrEmptyDeck)
}

func TestNewRun(t *testing.T) {
	f := newFixture(t, "Void Dragon")

	run, err := f.runner.NewRun(context.Background())
	require.NoError(t, err)

	assert.True(t, run.State.Player.IsStart)
	assert.Equal(t, 1, run.State.HeldCount())
	assert.Len(t, run.Deck, 1)
	assert.False(t, run.Over)
}

func TestMoveWinsBattleThenFinishes(t *testing.T) {
	f := newFixture(t, "Void Dragon")
	weak := weakestIndex(f.catalog)
	graph := smallMap([]int{weak})
	run := f.run(t, graph, 0)

	result, err := f.runner.Move(context.Background(), run, graph.Node(2), combat.AutoController{})
	require.NoError(t, err)

	require.NotNil(t, result.Battle)
	assert.True(t, result.Battle.Won)
	assert.True(t, graph.Node(2).Cleared)
	assert.Equal(t, f.catalog.Power(weak)*session.GoldPerPower, run.State.Gold)
	assert.False(t, result.Finished)

	result, err = f.runner.Move(context.Background(), run, graph.Node(4), combat.AutoController{})
	require.NoError(t, err)

	assert.True(t, result.Finished)
	assert.True(t, result.Won)
	assert.True(t, run.Over)

	_, err = f.runner.Move(context.Background(), run, graph.Node(2), combat.AutoController{})
	assert.ErrorIs(t, err, ErrRunOver)
}

func TestMoveLosingBattleEndsRun(t *testing.T) {
	f := newFixture(t)
	weak := weakestIndex(f.catalog)
	dragon := f.catalog.IndexOf("Void Dragon")
	require.NoError(t, f.store.SaveDeck(deck.Deck{f.catalog.Get(weak).Clone()}))

	graph := smallMap([]int{dragon, dragon, dragon})
	run := f.run(t, graph, 0)

	result, err := f.runner.Move(context.Background(), run, graph.Node(2), combat.AutoController{})
	require.NoError(t, err)

	require.NotNil(t, result.Battle)
	assert.False(t, result.Battle.Won)
	assert.True(t, result.Finished)
	assert.False(t, result.Won)
	assert.False(t, graph.Node(2).Cleared)
	assert.Zero(t, run.State.Gold)
}

func TestMoveRejectsNonAdjacent(t *testing.T) {
	f := newFixture(t, "Void Dragon")
	graph := smallMap(nil)
	run := f.run(t, graph, 0)

	result, err := f.runner.Move(context.Background(), run, graph.Node(4), nil)
	require.NoError(t, err)
	assert.False(t, result.Moved)
	assert.Equal(t, 0, run.State.Player.ID)

	_, err = f.runner.Move(context.Background(), run, nil, nil)
	assert.ErrorIs(t, err, session.ErrNilDestination)
}

func TestMoveIntoTerritoryIsReported(t *testing.T) {
	f := newFixture(t, "Void Dragon")
	graph := smallMap(nil)
	run := f.run(t, graph, 0)

	result, err := f.runner.Move(context.Background(), run, graph.Node(1), nil)
	require.NoError(t, err)

	assert.True(t, result.EnteredTerritory)
	assert.True(t, graph.Node(1).VisitedWhileHeld)
}

func TestShop(t *testing.T) {
	f := newFixture(t, "Void Dragon")
	graph := smallMap(nil)
	run := f.run(t, graph, 120)

	assert.ErrorIs(t, f.runner.BuyUpgrade(run, 0), ErrNotAtShop)

	result, err := f.runner.Move(context.Background(), run, graph.Node(3), nil)
	require.NoError(t, err)
	require.True(t, result.AtShop)

	assert.ErrorIs(t, f.runner.BuyUpgrade(run, 3), ErrNoSuchSlot)
	require.NoError(t, f.runner.BuyUpgrade(run, 0))
	assert.Equal(t, 70, run.State.Gold)
	assert.Equal(t, 1, f.store.LoadUpgrades().Level(0))
	assert.ErrorIs(t, f.runner.BuyUpgrade(run, 0), ErrNotEnoughGold)

	base := f.catalog.Get(f.catalog.IndexOf("Void Dragon"))
	assert.Equal(t, base.MaxHP+3, run.Roster()[0].MaxHP)

	after := f.runner.LeaveShop(context.Background(), run)
	assert.False(t, after.Finished)
}

func TestAutoShopBuysCheapestFirst(t *testing.T) {
	f := newFixture(t, "Void Dragon")
	weak := f.catalog.Get(weakestIndex(f.catalog)).Clone()
	require.NoError(t, f.store.SaveDeck(deck.Deck{f.catalog.Get(f.catalog.IndexOf("Void Dragon")).Clone(), weak}))
	graph := smallMap(nil)
	run := f.run(t, graph, 200)
	_, err := f.runner.Move(context.Background(), run, graph.Node(3), nil)
	require.NoError(t, err)

	bought := f.runner.AutoShop(run)

	// 50 + 50 + 100 = 200
	assert.Equal(t, 3, bought)
	assert.Zero(t, run.State.Gold)
	assert.Equal(t, 2, run.Upgrades.Level(0))
	assert.Equal(t, 1, run.Upgrades.Level(1))
}

func TestNextAutoMoveAvoidsTerritory(t *testing.T) {
	graph := smallMap(nil)
	state, err := session.NewState(graph)
	require.NoError(t, err)

	assert.Equal(t, 2, NextAutoMove(state).ID)

	state.ExpandTerritory(graph.Node(2))
	assert.Equal(t, 3, NextAutoMove(state).ID)

	state.ExpandTerritory(graph.Node(4))
	next := NextAutoMove(state)
	require.NotNil(t, next, "finish stays reachable even when held")
}

func TestAutoDeckIsValid(t *testing.T) {
	catalog := gamedata.MustLoadCatalog()

	for seed := int64(1); seed <= 20; seed++ {
		d := AutoDeck(catalog, rand.New(rand.NewSource(seed)))
		require.NotEmpty(t, d)
		assert.NoError(t, d.ValidateForRun())
	}
}

func TestAutoplayFinishes(t *testing.T) {
	catalog := gamedata.MustLoadCatalog()
	rng := rand.New(rand.NewSource(7))
	store := deck.NewMemoryStore(AutoDeck(catalog, rng))
	runner := NewRunner(catalog, store, rng, WithEngine(combat.NewEngine(combat.WithPacing(0))))

	for i := 0; i < 3; i++ {
		run, err := runner.NewRun(context.Background())
		require.NoError(t, err)

		require.NoError(t, runner.Autoplay(context.Background(), run))
		assert.True(t, run.Over)
		if run.Won {
			assert.True(t, run.State.AtFinish())
		}
	}
}
