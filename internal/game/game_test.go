package game

import (
	"context"
	"math/rand"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/cardrun/internal/combat"
	"github.com/samdwyer/cardrun/internal/deck"
	"github.com/samdwyer/cardrun/internal/entity"
	"github.com/samdwyer/cardrun/internal/gamedata"
	"github.com/samdwyer/cardrun/internal/session"
	"github.com/samdwyer/cardrun/internal/ui"
)

func newTestGame(t *testing.T, store deck.Store) *Game {
	t.Helper()
	screen, _, err := ui.NewSimulationScreen(100, 40)
	require.NoError(t, err)
	catalog := gamedata.MustLoadCatalog()
	return newGame(screen, catalog, store, rand.New(rand.NewSource(3)), []combat.Option{combat.WithPacing(0)})
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func special(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func TestGameDraftsStarterDeckAndQuits(t *testing.T) {
	store := deck.NewMemoryStore(nil)
	g := newTestGame(t, store)
	require.NoError(t, g.screen.PostEvent(key('q')))

	require.NoError(t, g.Run(context.Background()))

	assert.NoError(t, store.LoadDeck().ValidateForRun())
	assert.NotNil(t, g.run)
	assert.False(t, g.running)
}

func TestKeyControllerChoose(t *testing.T) {
	g := newTestGame(t, deck.NewMemoryStore(nil))
	defer g.screen.Close()

	shielder := entity.NewUnit(&gamedata.CardDef{Name: "Squire", MaxHP: 10, Speed: 5, Power: 1,
		DefenseMove: gamedata.DefenseShield, ShieldValue: 5})
	friend := entity.NewUnit(&gamedata.CardDef{Name: "Friend", MaxHP: 10, Speed: 5, Power: 1})
	foe := entity.NewUnit(&gamedata.CardDef{Name: "Foe", MaxHP: 10, Speed: 5, Power: 1})
	turn := combat.Turn{
		Actor:  shielder,
		Allies: entity.Roster{shielder, friend},
		Foes:   entity.Roster{foe},
	}
	ctrl := &keyController{game: g}

	t.Run("digit attacks", func(t *testing.T) {
		require.NoError(t, g.screen.PostEvent(key('1')))
		d, err := ctrl.Choose(context.Background(), turn)
		require.NoError(t, err)
		assert.Equal(t, combat.ActionAttack, d.Action)
		assert.Same(t, foe, d.Target)
	})

	t.Run("out of range digit is ignored", func(t *testing.T) {
		require.NoError(t, g.screen.PostEvent(key('5')))
		require.NoError(t, g.screen.PostEvent(key('a')))
		d, err := ctrl.Choose(context.Background(), turn)
		require.NoError(t, err)
		assert.Same(t, foe, d.Target)
	})

	t.Run("defend picks ally", func(t *testing.T) {
		require.NoError(t, g.screen.PostEvent(key('d')))
		require.NoError(t, g.screen.PostEvent(key('2')))
		d, err := ctrl.Choose(context.Background(), turn)
		require.NoError(t, err)
		assert.Equal(t, combat.ActionDefend, d.Action)
		assert.Same(t, friend, d.Target)
	})

	t.Run("escape flees", func(t *testing.T) {
		require.NoError(t, g.screen.PostEvent(special(tcell.KeyEscape)))
		_, err := ctrl.Choose(context.Background(), turn)
		assert.ErrorIs(t, err, errFled)
	})
}

func TestKeyControllerQuitsOnClosedScreen(t *testing.T) {
	g := newTestGame(t, deck.NewMemoryStore(nil))
	g.running = true
	foe := entity.NewUnit(&gamedata.CardDef{Name: "Foe", MaxHP: 10, Speed: 5, Power: 1})
	actor := entity.NewUnit(&gamedata.CardDef{Name: "Hero", MaxHP: 10, Speed: 5, Power: 1})
	ctrl := &keyController{game: g}

	g.screen.Close()
	_, err := ctrl.Choose(context.Background(), combat.Turn{
		Actor:  actor,
		Allies: entity.Roster{actor},
		Foes:   entity.Roster{foe},
	})

	assert.ErrorIs(t, err, errQuit)
	assert.False(t, g.running)
}

func TestShopKeys(t *testing.T) {
	catalog := gamedata.MustLoadCatalog()
	store := deck.NewMemoryStore(deck.Deck{catalog.Get(catalog.IndexOf("Void Dragon")).Clone()})
	g := newTestGame(t, store)
	defer g.screen.Close()

	graph := smallMap(nil)
	state, err := session.NewState(graph, session.WithGold(60))
	require.NoError(t, err)
	g.run = &Run{State: state, Deck: store.LoadDeck(), Upgrades: deck.Upgrades{}}

	ok, err := state.MovePlayer(graph.Node(3))
	require.NoError(t, err)
	require.True(t, ok)
	g.state = StateShop

	g.handleShopKey(context.Background(), key('1'))
	assert.Equal(t, 10, state.Gold)
	assert.Contains(t, g.message, "level 1")

	g.handleShopKey(context.Background(), key('1'))
	assert.Equal(t, ErrNotEnoughGold.Error(), g.message)

	g.handleShopKey(context.Background(), special(tcell.KeyEscape))
	assert.Equal(t, StateMap, g.state)
}

func TestDeckEditing(t *testing.T) {
	store := deck.NewMemoryStore(nil)
	g := newTestGame(t, store)
	defer g.screen.Close()
	catalog := g.runner.Catalog()
	dragon := catalog.IndexOf("Void Dragon")

	g.addToDeck(dragon)
	require.Len(t, store.LoadDeck(), 1)

	g.addToDeck(dragon)
	assert.Contains(t, g.message, "more than one power≥9 card")
	assert.Len(t, store.LoadDeck(), 1)

	require.NoError(t, store.SaveUpgrades(deck.Upgrades{0: 2}))
	g.removeFromDeck(dragon)
	assert.Empty(t, store.LoadDeck())
	assert.Empty(t, store.LoadUpgrades())

	g.removeFromDeck(dragon)
	assert.Contains(t, g.message, "not in your deck")
}
