package gamedata

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-playground/validator/v10"
)

// CatalogFile is the embedded card list.
const CatalogFile = "cards.json"

// ErrEmptyCatalog is returned when a catalog source holds no cards.
var ErrEmptyCatalog = errors.New("card catalog is empty")

// Catalog is an ordered, immutable collection of card templates.
// A card is identified by its index, which is stable for the catalog's lifetime.
type Catalog struct {
	cards []CardDef
}

// NewCatalog creates a catalog from card definitions, applying data defaults.
// The slice is copied so later changes by the caller do not leak in.
func NewCatalog(cards []CardDef) *Catalog {
	owned := make([]CardDef, len(cards))
	for i := range cards {
		owned[i] = cards[i].Clone()
		owned[i].applyDefaults()
	}
	return &Catalog{cards: owned}
}

// LoadCatalog loads, validates and indexes the embedded cards.json.
func LoadCatalog() (*Catalog, error) {
	cards, err := Load[[]CardDef](CatalogFile)
	if err != nil {
		return nil, err
	}
	return BuildCatalog(cards)
}

// BuildCatalog validates card definitions and wraps them in a catalog.
func BuildCatalog(cards []CardDef) (*Catalog, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyCatalog
	}
	catalog := NewCatalog(cards)
	validate := validator.New()
	for i := range catalog.cards {
		if err := validate.Struct(&catalog.cards[i]); err != nil {
			return nil, fmt.Errorf("card %d (%s): %w", i, catalog.cards[i].Name, err)
		}
	}
	return catalog, nil
}

// MustLoadCatalog loads the catalog, panicking on error.
func MustLoadCatalog() *Catalog {
	catalog, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

// Get returns the template at index, or nil if the index is out of range.
// The pointer refers to catalog storage and must not be modified.
func (c *Catalog) Get(index int) *CardDef {
	if index < 0 || index >= len(c.cards) {
		return nil
	}
	return &c.cards[index]
}

// Power returns the power rating of the card at index, or 0 if out of range.
func (c *Catalog) Power(index int) int {
	if card := c.Get(index); card != nil {
		return card.Power
	}
	return 0
}

// IndexOf returns the index of the first card with the given name, or -1.
func (c *Catalog) IndexOf(name string) int {
	for i := range c.cards {
		if c.cards[i].Name == name {
			return i
		}
	}
	return -1
}

// Select returns copies of the templates at the given indices, skipping unknown ones.
func (c *Catalog) Select(indices []int) []CardDef {
	selected := make([]CardDef, 0, len(indices))
	for _, idx := range indices {
		if card := c.Get(idx); card != nil {
			selected = append(selected, card.Clone())
		}
	}
	return selected
}

// RandomIndex draws a uniformly distributed card index.
func (c *Catalog) RandomIndex(rng *rand.Rand) int {
	return rng.Intn(len(c.cards))
}

// All returns copies of every template in catalog order.
func (c *Catalog) All() []CardDef {
	all := make([]CardDef, len(c.cards))
	for i := range c.cards {
		all[i] = c.cards[i].Clone()
	}
	return all
}

// Count returns the number of templates in the catalog.
func (c *Catalog) Count() int {
	return len(c.cards)
}
