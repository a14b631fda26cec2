package game

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/cardrun/internal/combat"
	"github.com/samdwyer/cardrun/internal/entity"
)

const maxBattleLog = 50

// onBattleEvent keeps the battle view current and redraws it.
func (g *Game) onBattleEvent(ev combat.Event) {
	switch ev.Kind {
	case combat.EventBattleStarted:
		g.state = StateBattle
		g.battle.Players = ev.Players
		g.battle.Opponents = ev.Opponents
		g.battle.Log = nil
		g.battle.Actor = nil
	case combat.EventTurnStarted:
		g.battle.Actor = g.findUnit(ev)
		return
	case combat.EventBattleEnded:
		g.battle.Actor = nil
		g.battle.Prompt = ""
	}

	if ev.Message != "" {
		g.battle.Log = append(g.battle.Log, ev.Message)
		if len(g.battle.Log) > maxBattleLog {
			g.battle.Log = g.battle.Log[len(g.battle.Log)-maxBattleLog:]
		}
	}
	g.renderer.RenderBattle(g.battle)
}

func (g *Game) findUnit(ev combat.Event) *entity.Unit {
	roster := g.battle.Players
	if ev.Side == combat.SideOpponent {
		roster = g.battle.Opponents
	}
	for _, u := range roster {
		if u.Name() == ev.Actor && u.IsAlive() {
			return u
		}
	}
	return nil
}

// keyController lets the player choose actions for their cards.
type keyController struct {
	game *Game
}

// Choose renders the turn and waits for a key. Digits attack that opponent,
// a attacks the suggested target, d uses the card's defensive move (then a
// digit picks the ally for ally-targeted moves) and esc flees.
func (c *keyController) Choose(ctx context.Context, turn combat.Turn) (combat.Decision, error) {
	g := c.game
	g.battle.Actor = turn.Actor

	move := turn.Actor.DefenseMove()
	base := fmt.Sprintf("%s: 1-%d attack  a auto-target", turn.Actor.Name(), len(turn.Foes))
	if move.HasEffect() {
		base += fmt.Sprintf("  d %s", move)
	}
	base += "  esc flee"
	g.battle.Prompt = base

	pickingAlly := false
	for {
		if err := ctx.Err(); err != nil {
			return combat.Decision{}, err
		}
		g.renderer.RenderBattle(g.battle)

		raw := g.screen.PollEvent()
		if raw == nil {
			g.running = false
			return combat.Decision{}, errQuit
		}
		ev, ok := raw.(*tcell.EventKey)
		if !ok {
			g.screen.Sync()
			continue
		}

		switch {
		case ev.Key() == tcell.KeyCtrlC:
			g.running = false
			return combat.Decision{}, errQuit
		case ev.Key() == tcell.KeyEscape && pickingAlly:
			pickingAlly = false
			g.battle.Prompt = base
		case ev.Key() == tcell.KeyEscape:
			return combat.Decision{}, errFled
		case ev.Rune() == 'a':
			return combat.Decision{Action: combat.ActionAttack, Target: combat.BestTarget(turn.Actor, turn.Foes)}, nil
		case ev.Rune() == 'd' && move.HasEffect() && !pickingAlly:
			if !move.TargetsAlly() {
				return combat.Decision{Action: combat.ActionDefend, Target: turn.Actor}, nil
			}
			pickingAlly = true
			g.battle.Prompt = fmt.Sprintf("%s: pick ally 1-%d  esc back", move, len(turn.Allies))
		case ev.Rune() >= '1' && ev.Rune() <= '9':
			i := int(ev.Rune() - '1')
			if pickingAlly && i < len(turn.Allies) && turn.Allies[i].IsAlive() {
				return combat.Decision{Action: combat.ActionDefend, Target: turn.Allies[i]}, nil
			}
			if !pickingAlly && i < len(turn.Foes) && turn.Foes[i].IsAlive() {
				return combat.Decision{Action: combat.ActionAttack, Target: turn.Foes[i]}, nil
			}
		}
	}
}
