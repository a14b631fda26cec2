package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/samdwyer/cardrun/internal/combat"
	"github.com/samdwyer/cardrun/internal/deck"
	"github.com/samdwyer/cardrun/internal/gamedata"
	"github.com/samdwyer/cardrun/internal/ui"
)

var (
	// errQuit ends the game loop from inside a blocking prompt.
	errQuit = errors.New("player quit")
	// errFled abandons the current battle.
	errFled = errors.New("player fled")
)

// Game holds the entire terminal game state.
type Game struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	runner   *Runner
	run      *Run
	rng      *rand.Rand
	logger   zerolog.Logger
	state    State
	running  bool

	message string
	warning string

	battle    ui.BattleView
	deckIndex int // Cursor in the deck editor
}

// New creates a game on the terminal. engineOpts configure the battle
// engine; the game subscribes its own listener to render battles.
func New(catalog *gamedata.Catalog, store deck.Store, rng *rand.Rand, engineOpts []combat.Option, opts ...RunnerOption) (*Game, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	return newGame(screen, catalog, store, rng, engineOpts, opts...), nil
}

func newGame(screen *ui.Screen, catalog *gamedata.Catalog, store deck.Store, rng *rand.Rand, engineOpts []combat.Option, opts ...RunnerOption) *Game {
	g := &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		rng:      rng,
		logger:   zerolog.Nop(),
		state:    StateMap,
		running:  true,
	}

	engineOpts = append(engineOpts, combat.WithListener(g.onBattleEvent))
	g.runner = NewRunner(catalog, store, rng, append(opts, WithEngine(combat.NewEngine(engineOpts...)))...)
	g.logger = g.runner.logger
	return g
}

// Run executes the main game loop.
func (g *Game) Run(ctx context.Context) error {
	defer g.screen.Close()

	if err := g.startRun(ctx); err != nil {
		return err
	}

	for g.running {
		if err := ctx.Err(); err != nil {
			return nil
		}
		g.render()
		g.handleInput(ctx)
	}
	return nil
}

// startRun drafts a starter deck if none is saved, then generates a map.
func (g *Game) startRun(ctx context.Context) error {
	store := g.runner.Store()
	if len(store.LoadDeck()) == 0 {
		starter := AutoDeck(g.runner.Catalog(), g.rng)
		if err := store.SaveDeck(starter); err != nil {
			g.logger.Warn().Err(err).Msg("saving starter deck failed")
		}
		g.message = "A starter deck was drafted for you. Press d to edit it."
	}

	run, err := g.runner.NewRun(ctx)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	g.run = run
	g.state = StateMap
	g.warning = ""
	return nil
}

func (g *Game) render() {
	switch g.state {
	case StateMap:
		g.renderer.RenderMap(ui.MapView{
			State:   g.run.State,
			Moves:   g.run.State.AvailableMoves(),
			Message: g.message,
			Warning: g.warning,
		})
	case StateShop:
		g.renderer.RenderShop(g.shopView())
	case StateDeck:
		g.renderer.RenderLines("DECK", g.deckLines(), "up/down select   enter add/remove   esc back")
	case StateSummary:
		g.renderer.RenderLines(g.summaryTitle(), g.summaryLines(), "enter new run   q quit")
	case StateBattle:
		g.renderer.RenderBattle(g.battle)
	}
}

// handleInput processes a single input event.
func (g *Game) handleInput(ctx context.Context) {
	ev := g.screen.PollEvent()

	switch ev := ev.(type) {
	case nil:
		// Screen finalized.
		g.running = false
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input for the current screen.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		g.running = false
		return
	}

	switch g.state {
	case StateMap:
		g.handleMapKey(ctx, ev)
	case StateShop:
		g.handleShopKey(ctx, ev)
	case StateDeck:
		g.handleDeckKey(ev)
	case StateSummary:
		g.handleSummaryKey(ctx, ev)
	}
}

func (g *Game) handleMapKey(ctx context.Context, ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' || ev.Rune() == 'Q':
		g.running = false
	case ev.Rune() == 'd' || ev.Rune() == 'D':
		if g.run.State.Moves > 0 {
			g.message = "The deck can only be changed before the first move."
			return
		}
		g.state = StateDeck
	case ev.Rune() >= '1' && ev.Rune() <= '9':
		moves := g.run.State.AvailableMoves()
		if i := int(ev.Rune() - '1'); i < len(moves) {
			g.tryMove(ctx, i)
		}
	}
}

// tryMove moves the player to the i-th available node and plays out the turn.
func (g *Game) tryMove(ctx context.Context, i int) {
	dest := g.run.State.AvailableMoves()[i]
	g.message, g.warning = "", ""

	result, err := g.runner.Move(ctx, g.run, dest, &keyController{game: g})
	if err != nil {
		g.message = err.Error()
		return
	}
	g.applyTurn(result)
	if result.AtShop {
		g.state = StateShop
	}
}

func (g *Game) applyTurn(result TurnResult) {
	g.state = StateMap
	if result.EnteredTerritory {
		g.warning = "You are standing in enemy territory!"
	}
	if result.Battle != nil {
		if result.Battle.Cancelled {
			g.message = "You fled the battle."
		} else if result.Battle.Won {
			g.message = fmt.Sprintf("Victory! %d opponents defeated.", len(result.Battle.Defeated))
		}
	}
	if result.Expanded != nil {
		g.message = joinMessages(g.message, "The territory spreads.")
	}
	if result.Finished {
		g.state = StateSummary
	}
}

func (g *Game) handleShopKey(ctx context.Context, ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
		g.message, g.warning = "", ""
		g.applyTurn(g.runner.LeaveShop(ctx, g.run))
	case ev.Rune() >= '1' && ev.Rune() <= '9':
		slot := int(ev.Rune() - '1')
		if err := g.runner.BuyUpgrade(g.run, slot); err != nil {
			g.message = err.Error()
			return
		}
		g.message = fmt.Sprintf("%s upgraded to level %d.", g.run.Deck[slot].Name, g.run.Upgrades.Level(slot))
	}
}

func (g *Game) shopView() ui.ShopView {
	view := ui.ShopView{Gold: g.run.State.Gold, Message: g.message}
	for i, card := range g.run.Deck {
		view.Slots = append(view.Slots, ui.ShopSlot{
			Name:  card.Name,
			Level: g.run.Upgrades.Level(i),
			Cost:  g.run.Upgrades.NextCost(i),
		})
	}
	return view
}

func (g *Game) handleSummaryKey(ctx context.Context, ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEnter:
		g.message = ""
		if err := g.startRun(ctx); err != nil {
			g.message = err.Error()
			g.state = StateDeck
		}
	case ev.Rune() == 'd' || ev.Rune() == 'D':
		g.state = StateDeck
	case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' || ev.Rune() == 'Q':
		g.running = false
	}
}

func (g *Game) summaryTitle() string {
	if g.run.Won {
		return "YOU ESCAPED"
	}
	return "YOUR RUN IS OVER"
}

func (g *Game) summaryLines() []string {
	st := g.run.State.Stats
	strongest := st.StrongestEnemy
	if strongest == "" {
		strongest = "none"
	}
	return []string{
		fmt.Sprintf("Moves:             %d", g.run.State.Moves),
		fmt.Sprintf("Nodes visited:     %d", st.NodesVisited),
		fmt.Sprintf("Battles won:       %d", st.BattlesWon),
		fmt.Sprintf("Enemies defeated:  %d", st.EnemiesDefeated),
		fmt.Sprintf("Strongest enemy:   %s", strongest),
		fmt.Sprintf("Gold earned:       %d", st.GoldEarned),
		fmt.Sprintf("Territory held:    %d nodes", g.run.State.HeldCount()),
		"",
		"Press d to edit your deck before the next run.",
	}
}

func joinMessages(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}
