package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/cardrun/internal/entity"
	"github.com/samdwyer/cardrun/internal/gamedata"
)

// testCard returns a plain aggressive physical card with the given stats.
func testCard(name string, hp, speed, defense, attack int) gamedata.CardDef {
	return gamedata.CardDef{
		Name:       name,
		MaxHP:      hp,
		Speed:      speed,
		Defense:    defense,
		Attack:     attack,
		AttackType: gamedata.DamagePhysical,
		Strength:   2,
		Archetype:  gamedata.Aggressive,
		Power:      1,
	}
}

func unitOf(def gamedata.CardDef) *entity.Unit {
	return entity.NewUnit(&def)
}

func TestRawDamageDefenseFactor(t *testing.T) {
	attacker := unitOf(testCard("Brute", 30, 5, 0, 10))

	plain := testCard("Wall", 20, 5, 5, 1)
	resistant := plain
	resistant.Resists = []gamedata.DamageType{gamedata.DamagePhysical}
	weak := plain
	weak.Weaknesses = []gamedata.DamageType{gamedata.DamagePhysical}
	both := plain
	both.Resists = []gamedata.DamageType{gamedata.DamagePhysical}
	both.Weaknesses = []gamedata.DamageType{gamedata.DamagePhysical}

	tests := []struct {
		name     string
		defender gamedata.CardDef
		factor   float64
		damage   int
	}{
		{"neutral", plain, 1.0, 15},
		{"resisted", resistant, 1.5, 12}, // floor(20 - 7.5)
		{"weakness", weak, 0.5, 17},      // floor(20 - 2.5)
		{"resistance wins", both, 1.5, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defender := unitOf(tt.defender)
			assert.Equal(t, tt.factor, DefenseFactor(attacker, defender))
			assert.Equal(t, tt.damage, RawDamage(attacker, defender))
		})
	}
}

func TestRawDamageNeverNegative(t *testing.T) {
	weakling := unitOf(testCard("Weakling", 10, 5, 0, 1))
	fortress := unitOf(testCard("Fortress", 10, 5, 50, 0))

	assert.Equal(t, 0, RawDamage(weakling, fortress))
}

func TestAttackShieldAbsorbsFirst(t *testing.T) {
	r := NewResolver()
	atk := testCard("Brute", 30, 5, 0, 10)
	atk.AttackType = gamedata.DamageFire
	attacker := unitOf(atk)
	def := testCard("Knight", 20, 5, 5, 1)
	def.Resists = []gamedata.DamageType{gamedata.DamageFire}
	defender := unitOf(def)
	defender.Shield = 5

	result := r.Attack(attacker, defender)

	require.True(t, result.Success)
	assert.Equal(t, 12, result.Damage)
	assert.Equal(t, 5, result.Absorbed)
	assert.Equal(t, 7, result.Lost)
	assert.Equal(t, 0, defender.Shield)
	assert.Equal(t, 13, defender.HP)
	assert.False(t, result.Killed)
}

func TestAttackKills(t *testing.T) {
	r := NewResolver()
	attacker := unitOf(testCard("Brute", 30, 5, 0, 10))
	defender := unitOf(testCard("Imp", 5, 5, 0, 1))

	result := r.Attack(attacker, defender)

	assert.True(t, result.Killed)
	assert.Equal(t, 0, defender.HP)
	assert.Equal(t, gamedata.StatusDead, defender.Status)
	assert.Contains(t, result.Message, "defeats")
}

func TestAttackDeadTargetIsNoOp(t *testing.T) {
	r := NewResolver()
	attacker := unitOf(testCard("Brute", 30, 5, 0, 10))
	defender := unitOf(testCard("Imp", 5, 5, 0, 1))
	r.Attack(attacker, defender)

	result := r.Attack(attacker, defender)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Damage)
	assert.Equal(t, 0, defender.HP)
}

func TestDefendMoves(t *testing.T) {
	r := NewResolver()

	newActor := func(move gamedata.DefenseMove) *entity.Unit {
		def := testCard("Cleric", 20, 5, 0, 1)
		def.DefenseMove = move
		def.ShieldValue = 5
		def.HealValue = 7
		return unitOf(def)
	}

	t.Run("self shield", func(t *testing.T) {
		actor := newActor(gamedata.DefenseSelfShield)
		ally := unitOf(testCard("Ally", 20, 5, 0, 1))

		result := r.Defend(actor, ally, entity.Roster{actor, ally})

		assert.True(t, result.Success)
		assert.Same(t, actor, result.Target)
		assert.Equal(t, 5, actor.Shield)
		assert.Equal(t, 0, ally.Shield)
	})

	t.Run("shield ally", func(t *testing.T) {
		actor := newActor(gamedata.DefenseShield)
		ally := unitOf(testCard("Ally", 20, 5, 0, 1))

		r.Defend(actor, ally, entity.Roster{actor, ally})

		assert.Equal(t, 5, ally.Shield)
		assert.Equal(t, 0, actor.Shield)
	})

	t.Run("shield non ally redirects to self", func(t *testing.T) {
		actor := newActor(gamedata.DefenseShield)
		stranger := unitOf(testCard("Stranger", 20, 5, 0, 1))

		result := r.Defend(actor, stranger, entity.Roster{actor})

		assert.Same(t, actor, result.Target)
		assert.Equal(t, 5, actor.Shield)
		assert.Equal(t, 0, stranger.Shield)
	})

	t.Run("heal capped at max", func(t *testing.T) {
		actor := newActor(gamedata.DefenseHeal)
		ally := unitOf(testCard("Ally", 20, 5, 0, 1))
		ally.HP = 17

		result := r.Defend(actor, ally, entity.Roster{actor, ally})

		assert.True(t, result.Success)
		assert.Equal(t, 3, result.Healing)
		assert.Equal(t, 20, ally.HP)
	})

	t.Run("heal dead ally does nothing", func(t *testing.T) {
		actor := newActor(gamedata.DefenseHeal)
		ally := unitOf(testCard("Ally", 20, 5, 0, 1))
		ally.TakeDamage(100)

		result := r.Defend(actor, ally, entity.Roster{actor, ally})

		assert.False(t, result.Success)
		assert.Equal(t, 0, ally.HP)
	})

	t.Run("self heal", func(t *testing.T) {
		actor := newActor(gamedata.DefenseSelfHeal)
		actor.HP = 5

		r.Defend(actor, nil, entity.Roster{actor})

		assert.Equal(t, 12, actor.HP)
	})

	for _, move := range []gamedata.DefenseMove{gamedata.DefenseNone, gamedata.DefenseStasis} {
		t.Run(move.String()+" has no effect", func(t *testing.T) {
			actor := newActor(move)
			actor.HP = 5

			result := r.Defend(actor, actor, entity.Roster{actor})

			assert.False(t, result.Success)
			assert.Equal(t, 5, actor.HP)
			assert.Equal(t, 0, actor.Shield)
		})
	}
}
