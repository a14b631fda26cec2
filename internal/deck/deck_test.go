package deck

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/cardrun/internal/gamedata"
)

func cardWithPower(power int) gamedata.CardDef {
	return gamedata.CardDef{
		Name:        "Card",
		MaxHP:       10,
		Speed:       5,
		Attack:      2,
		Strength:    2,
		Power:       power,
		ShieldValue: 5,
		HealValue:   7,
		DefenseMove: gamedata.DefenseShield,
	}
}

func deckOf(powers ...int) Deck {
	d := make(Deck, len(powers))
	for i, p := range powers {
		d[i] = cardWithPower(p)
	}
	return d
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		deck    Deck
		wantErr error
		message string
	}{
		{"empty", deckOf(), nil, ""},
		{"typical", deckOf(9, 8, 7, 5, 3), nil, ""},
		{"too many cards", deckOf(1, 1, 1, 1, 1, 1), ErrTooManyCards, "more than 5 cards"},
		{"two elite", deckOf(9, 9, 1, 1, 1), ErrTooManyElite, "more than one power≥9 card"},
		{"four veterans", deckOf(7, 7, 8, 8), ErrTooManyVeteran, "more than three power 7-8 cards"},
		{"over budget", deckOf(10, 8, 8, 8, 2), ErrPowerBudget, "total power exceeds 35"},
		{"budget exactly", deckOf(10, 8, 8, 8, 1), nil, ""},
		{"card count checked first", deckOf(9, 9, 9, 9, 9, 9), ErrTooManyCards, "more than 5 cards"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.deck.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.message, err.Error())

			var ruleErr *RuleError
			require.True(t, errors.As(err, &ruleErr))
			assert.Equal(t, tt.wantErr, ruleErr.Rule)
		})
	}
}

func TestValidateForRunRejectsEmpty(t *testing.T) {
	err := deckOf().ValidateForRun()

	assert.ErrorIs(t, err, ErrEmptyDeck)
	assert.EqualError(t, err, "deck is empty")
	assert.NoError(t, deckOf(3).ValidateForRun())
}

func TestAddChecksBeforeInsert(t *testing.T) {
	d := deckOf(9, 1, 1, 1)

	next, err := d.Add(cardWithPower(9))
	assert.ErrorIs(t, err, ErrTooManyElite)
	assert.Len(t, next, 4, "rejected card is not inserted")

	next, err = d.Add(cardWithPower(2))
	require.NoError(t, err)
	assert.Len(t, next, 5)
	assert.Len(t, d, 4, "receiver untouched")
}

func TestRemove(t *testing.T) {
	d := deckOf(1, 2, 3)

	assert.Equal(t, []int{1, 3}, powers(d.Remove(1)))
	assert.Equal(t, []int{1, 2, 3}, powers(d.Remove(7)))
	assert.Equal(t, []int{1, 2, 3}, powers(d))
}

func powers(d Deck) []int {
	out := make([]int, len(d))
	for i, c := range d {
		out[i] = c.Power
	}
	return out
}

func TestApplyUpgrade(t *testing.T) {
	base := cardWithPower(3)

	upgraded := ApplyUpgrade(base, 2)

	assert.Equal(t, 16, upgraded.MaxHP)
	assert.Equal(t, 4, upgraded.Attack)
	assert.Equal(t, 7, upgraded.ShieldValue)
	assert.Equal(t, 9, upgraded.HealValue)
	assert.Equal(t, 10, base.MaxHP, "template untouched")
	assert.Equal(t, base, ApplyUpgrade(base, 0))
}

func TestUpgrades(t *testing.T) {
	u := Upgrades{}

	assert.Equal(t, 50, u.NextCost(0))
	assert.Equal(t, 1, u.Raise(0))
	assert.Equal(t, 100, u.NextCost(0))
	assert.Equal(t, 150, UpgradeCost(2))

	cards := u.Apply(deckOf(1, 2))
	assert.Equal(t, 13, cards[0].MaxHP)
	assert.Equal(t, 10, cards[1].MaxHP)
}

func TestUpgradesRemoveSlot(t *testing.T) {
	u := Upgrades{0: 1, 1: 2, 3: 4}

	u.RemoveSlot(1)

	assert.Equal(t, Upgrades{0: 1, 2: 4}, u)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "save"), zerolog.Nop())
	d := deckOf(5, 3)
	d[0].Resists = []gamedata.DamageType{gamedata.DamageFire}

	require.NoError(t, store.SaveDeck(d))
	require.NoError(t, store.SaveUpgrades(Upgrades{1: 2}))

	assert.Equal(t, d, store.LoadDeck())
	assert.Equal(t, Upgrades{1: 2}, store.LoadUpgrades())
}

func TestFileStoreMissingFilesAreEmpty(t *testing.T) {
	store := NewFileStore(t.TempDir(), zerolog.Nop())

	assert.Empty(t, store.LoadDeck())
	assert.NotNil(t, store.LoadDeck())
	assert.Empty(t, store.LoadUpgrades())
}

func TestFileStoreCorruptFilesAreEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DeckFile), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, UpgradesFile), []byte(":\n- ["), 0o644))
	store := NewFileStore(dir, zerolog.Nop())

	assert.Empty(t, store.LoadDeck())
	assert.Empty(t, store.LoadUpgrades())
}

func TestFileStoreReadsCaseInsensitiveFields(t *testing.T) {
	dir := t.TempDir()
	raw := `[{"NAME": "Goblin", "MAXHP": 12, "Speed": 4, "POWER": 2, "attacktype": "fire"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DeckFile), []byte(raw), 0o644))

	d := NewFileStore(dir, zerolog.Nop()).LoadDeck()

	require.Len(t, d, 1)
	assert.Equal(t, "Goblin", d[0].Name)
	assert.Equal(t, 12, d[0].MaxHP)
	assert.Equal(t, gamedata.DamageFire, d[0].AttackType)
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore(deckOf(1))

	d := store.LoadDeck()
	d[0].Power = 9
	assert.Equal(t, 1, store.LoadDeck()[0].Power)

	u := Upgrades{0: 1}
	require.NoError(t, store.SaveUpgrades(u))
	u[0] = 5
	assert.Equal(t, 1, store.LoadUpgrades().Level(0))
}
