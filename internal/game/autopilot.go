package game

import (
	"context"
	"errors"
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"github.com/samdwyer/cardrun/internal/combat"
	"github.com/samdwyer/cardrun/internal/deck"
	"github.com/samdwyer/cardrun/internal/gamedata"
	"github.com/samdwyer/cardrun/internal/session"
	"github.com/samdwyer/cardrun/internal/world"
)

// MaxAutoMoves stops an automatic run that wanders without finishing.
const MaxAutoMoves = 200

// NextAutoMove picks the next step toward the finish, avoiding held
// territory when a clear path exists. Returns nil at the finish.
func NextAutoMove(s *session.State) *world.Node {
	finish := s.Graph.Finish()
	if finish == nil || s.Player.ID == finish.ID {
		return nil
	}

	held := mapset.New[int]()
	for _, id := range s.Held() {
		if id != finish.ID {
			held.Put(id)
		}
	}

	path := s.Graph.ShortestPath(s.Player.ID, finish.ID, held)
	if len(path) < 2 {
		path = s.Graph.ShortestPath(s.Player.ID, finish.ID, mapset.New[int]())
	}
	if len(path) < 2 {
		return nil
	}
	return path[1]
}

// AutoDeck drafts a random valid deck of up to deck.MaxCards cards.
func AutoDeck(catalog *gamedata.Catalog, rng *rand.Rand) deck.Deck {
	d := deck.Deck{}
	for _, idx := range rng.Perm(catalog.Count()) {
		if len(d) == deck.MaxCards {
			break
		}
		if next, err := d.Add(*catalog.Get(idx)); err == nil {
			d = next
		}
	}
	return d
}

// AutoShop spends gold on the cheapest upgrades until nothing is affordable.
func (r *Runner) AutoShop(run *Run) int {
	bought := 0
	for {
		cheapest, cost := -1, 0
		for slot := range run.Deck {
			if c := run.Upgrades.NextCost(slot); cheapest < 0 || c < cost {
				cheapest, cost = slot, c
			}
		}
		if cheapest < 0 || r.BuyUpgrade(run, cheapest) != nil {
			return bought
		}
		bought++
	}
}

// Autoplay plays run to the end with automatic moves, shopping and battle
// decisions. It returns early if ctx is cancelled.
func (r *Runner) Autoplay(ctx context.Context, run *Run) error {
	for !run.Over {
		if err := ctx.Err(); err != nil {
			return err
		}
		if run.State.Moves >= MaxAutoMoves {
			r.finish(run, false)
			return nil
		}

		dest := NextAutoMove(run.State)
		if dest == nil {
			return errors.New("autoplay: no move available")
		}
		result, err := r.Move(ctx, run, dest, combat.AutoController{})
		if err != nil {
			return err
		}
		if result.AtShop {
			r.AutoShop(run)
			r.LeaveShop(ctx, run)
		}
	}
	return nil
}
