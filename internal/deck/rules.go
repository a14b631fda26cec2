// Package deck provides the player's deck: building rules, card upgrades
// and persistence.
package deck

import (
	"errors"

	"github.com/samdwyer/cardrun/internal/gamedata"
)

const (
	MaxCards       = 5
	MaxPowerBudget = 35

	elitePower      = 9 // Cards at or above this power are elite
	veteranMinPower = 7 // Cards in [veteranMinPower, elitePower) are veterans
	maxElite        = 1
	maxVeteran      = 3
)

// Rule sentinels. Violations are reported as *RuleError wrapping one of these.
var (
	ErrTooManyCards   = errors.New("more than 5 cards")
	ErrTooManyElite   = errors.New("more than one power≥9 card")
	ErrTooManyVeteran = errors.New("more than three power 7-8 cards")
	ErrPowerBudget    = errors.New("total power exceeds 35")
	ErrEmptyDeck      = errors.New("deck is empty")
)

// RuleError describes a deck building rule the deck breaks.
type RuleError struct {
	Rule    error  // One of the Err* sentinels
	Message string // User-facing text
}

func (e *RuleError) Error() string { return e.Message }

// Unwrap lets errors.Is match the rule sentinel.
func (e *RuleError) Unwrap() error { return e.Rule }

func violation(rule error) *RuleError {
	return &RuleError{Rule: rule, Message: rule.Error()}
}

// Deck is an ordered list of card copies. Index i is the deck slot that
// upgrades are keyed by.
type Deck []gamedata.CardDef

// TotalPower sums card power.
func (d Deck) TotalPower() int {
	total := 0
	for _, c := range d {
		total += c.Power
	}
	return total
}

// Validate checks the building rules in order and returns the first broken
// one. An empty deck is valid to build; use ValidateForRun before playing.
func (d Deck) Validate() error {
	if len(d) > MaxCards {
		return violation(ErrTooManyCards)
	}

	elite, veteran := 0, 0
	for _, c := range d {
		switch {
		case c.Power >= elitePower:
			elite++
		case c.Power >= veteranMinPower:
			veteran++
		}
	}
	if elite > maxElite {
		return violation(ErrTooManyElite)
	}
	if veteran > maxVeteran {
		return violation(ErrTooManyVeteran)
	}
	if d.TotalPower() > MaxPowerBudget {
		return violation(ErrPowerBudget)
	}
	return nil
}

// ValidateForRun is Validate plus the requirement of at least one card.
func (d Deck) ValidateForRun() error {
	if len(d) == 0 {
		return violation(ErrEmptyDeck)
	}
	return d.Validate()
}

// CanAdd reports whether adding card keeps the deck valid.
func (d Deck) CanAdd(card gamedata.CardDef) error {
	next := make(Deck, 0, len(d)+1)
	next = append(next, d...)
	return append(next, card).Validate()
}

// Add returns the deck with a copy of card appended, or the rule it breaks.
// The receiver is never modified.
func (d Deck) Add(card gamedata.CardDef) (Deck, error) {
	if err := d.CanAdd(card); err != nil {
		return d, err
	}
	next := make(Deck, 0, len(d)+1)
	next = append(next, d...)
	return append(next, card.Clone()), nil
}

// Remove returns the deck without slot i. Out of range indices are ignored.
func (d Deck) Remove(i int) Deck {
	if i < 0 || i >= len(d) {
		return d
	}
	next := make(Deck, 0, len(d)-1)
	next = append(next, d[:i]...)
	return append(next, d[i+1:]...)
}
