package game

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/cardrun/internal/deck"
)

// handleDeckKey edits the saved deck. Changes apply to the current run only
// before its first move, otherwise to the next run.
func (g *Game) handleDeckKey(ev *tcell.EventKey) {
	catalog := g.runner.Catalog()

	switch {
	case ev.Key() == tcell.KeyUp:
		g.deckIndex = max(g.deckIndex-1, 0)
	case ev.Key() == tcell.KeyDown:
		g.deckIndex = min(g.deckIndex+1, catalog.Count()-1)
	case ev.Key() == tcell.KeyEnter:
		g.addToDeck(g.deckIndex)
	case ev.Key() == tcell.KeyBackspace || ev.Key() == tcell.KeyBackspace2 || ev.Key() == tcell.KeyDelete || ev.Rune() == 'x':
		g.removeFromDeck(g.deckIndex)
	case ev.Key() == tcell.KeyEscape:
		g.leaveDeck()
	}
}

func (g *Game) addToDeck(index int) {
	store := g.runner.Store()
	card := g.runner.Catalog().Get(index)
	if card == nil {
		return
	}

	next, err := store.LoadDeck().Add(*card)
	if err != nil {
		g.message = "Cannot add " + card.Name + ": " + err.Error()
		return
	}
	if err := store.SaveDeck(next); err != nil {
		g.message = err.Error()
		return
	}
	g.message = card.Name + " added."
}

// removeFromDeck drops the last copy of the catalog card and its upgrades.
func (g *Game) removeFromDeck(index int) {
	store := g.runner.Store()
	card := g.runner.Catalog().Get(index)
	if card == nil {
		return
	}

	d := store.LoadDeck()
	slot := -1
	for i, c := range d {
		if c.Name == card.Name {
			slot = i
		}
	}
	if slot < 0 {
		g.message = card.Name + " is not in your deck."
		return
	}

	upgrades := store.LoadUpgrades()
	upgrades.RemoveSlot(slot)
	if err := store.SaveDeck(d.Remove(slot)); err != nil {
		g.message = err.Error()
		return
	}
	if err := store.SaveUpgrades(upgrades); err != nil {
		g.message = err.Error()
		return
	}
	g.message = card.Name + " removed."
}

// leaveDeck returns to the map, reloading the deck into an unstarted run.
func (g *Game) leaveDeck() {
	if g.run.Over {
		g.state = StateSummary
		return
	}

	d := g.runner.Store().LoadDeck()
	if err := d.ValidateForRun(); err != nil {
		g.message = err.Error()
		return
	}
	g.run.Deck = d
	g.run.Upgrades = g.runner.Store().LoadUpgrades()
	g.state = StateMap
	g.message = ""
}

func (g *Game) deckLines() []string {
	d := g.runner.Store().LoadDeck()
	counts := make(map[string]int, len(d))
	for _, c := range d {
		counts[c.Name]++
	}

	lines := []string{
		fmt.Sprintf("%d/%d cards, power %d/%d", len(d), deck.MaxCards, d.TotalPower(), deck.MaxPowerBudget),
		"",
	}
	for i, card := range g.runner.Catalog().All() {
		cursor := "  "
		if i == g.deckIndex {
			cursor = "> "
		}
		owned := ""
		if n := counts[card.Name]; n > 0 {
			owned = fmt.Sprintf("x%d", n)
		}
		lines = append(lines, fmt.Sprintf("%s%-16s power %2d  hp %3d  spd %2d  %-10s %-10s %s",
			cursor, card.Name, card.Power, card.MaxHP, card.Speed, card.AttackType, card.Archetype, owned))
	}
	if g.message != "" {
		lines = append(lines, "", g.message)
	}
	return lines
}
