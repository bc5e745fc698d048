package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() rawCatalog {
	return rawCatalog{
		HandSize:        2,
		DeckSize:        10,
		WinThreshold:    100,
		DefeatThreshold: -100,
		DaysInTerm:      30,
		HoursPerDay:     16,
		Effects: []rawEffect{
			{ID: "e0", Name: "Coffee", Period: 1, Delay: 0,
				InitEvents: []rawEvent{{Kind: "add hours", Hours: 6}}},
		},
		Tasks: []rawTask{
			{ID: "t0", Name: "Calculus", Difficulty: 3, Window: 3, Award: 3, Penalty: -6},
			{ID: "t1", Name: "Peer review", Difficulty: 1, Window: 7, Penalty: -5},
		},
		TaskCards: []rawTaskCard{
			{ID: "tc0", Name: "Calculus", Target: "OPPONENT", Task: "t0"},
		},
		ActionCards: []rawActionCard{
			{ID: "ac0", Name: "Coffee", Target: "PLAYER", Cost: 0, Effect: "e0"},
		},
	}
}

func TestBuildValidCatalog(t *testing.T) {
	cat, err := build(validRaw())
	require.NoError(t, err)

	assert.Len(t, cat.Tasks, 2)
	assert.Len(t, cat.Effects, 1)
	assert.Len(t, cat.Cards, 2)

	card, ok := cat.Cards["ac0"]
	require.True(t, ok)
	assert.Equal(t, CardAction, card.Kind)
	assert.Equal(t, EffectID("e0"), card.EffectID)
	assert.Equal(t, TargetSelf, card.ValidTarget)

	card, ok = cat.Cards["tc0"]
	require.True(t, ok)
	assert.Equal(t, CardTask, card.Kind)
	assert.Equal(t, TaskID("t0"), card.TaskID)

	eff := cat.Effects["e0"]
	require.Len(t, eff.InitEvents, 1)
	assert.Equal(t, EventAdjustHours, eff.InitEvents[0].Kind)
	assert.Equal(t, 6, eff.InitEvents[0].Hours)
}

func TestBuildConstantConsistency(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*rawCatalog)
	}{
		{"zero hand size", func(r *rawCatalog) { r.HandSize = 0 }},
		{"deck smaller than two hands", func(r *rawCatalog) { r.DeckSize = 3 }},
		{"win threshold not positive", func(r *rawCatalog) { r.WinThreshold = 0 }},
		{"win below defeat", func(r *rawCatalog) { r.WinThreshold = 10; r.DefeatThreshold = 20 }},
		{"hours above ceiling", func(r *rawCatalog) { r.HoursPerDay = 30 }},
		{"zero days in term", func(r *rawCatalog) { r.DaysInTerm = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := validRaw()
			tc.mutate(&raw)
			_, err := build(raw)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestBuildRejectsUnknownEventKind(t *testing.T) {
	raw := validRaw()
	raw.Effects[0].InitEvents = []rawEvent{{Kind: "ocean of deadlines"}}

	_, err := build(raw)
	require.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Contains(t, err.Error(), "unknown event kind")
}

func TestBuildRejectsDanglingReferences(t *testing.T) {
	t.Run("card to missing task", func(t *testing.T) {
		raw := validRaw()
		raw.TaskCards[0].Task = "t99"
		_, err := build(raw)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
	t.Run("card to missing effect", func(t *testing.T) {
		raw := validRaw()
		raw.ActionCards[0].Effect = "e99"
		_, err := build(raw)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
	t.Run("event to missing task", func(t *testing.T) {
		raw := validRaw()
		raw.Tasks[0].OnSuccess = []rawEvent{{Kind: "special task", Task: "t99"}}
		_, err := build(raw)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
}

func TestBuildRejectsDuplicateAndInvalidEntries(t *testing.T) {
	t.Run("duplicate card id across variants", func(t *testing.T) {
		raw := validRaw()
		raw.ActionCards[0].ID = "tc0"
		_, err := build(raw)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
	t.Run("bad target string", func(t *testing.T) {
		raw := validRaw()
		raw.TaskCards[0].Target = "EVERYONE"
		_, err := build(raw)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
	t.Run("all cards special", func(t *testing.T) {
		raw := validRaw()
		raw.TaskCards[0].Special = true
		raw.ActionCards[0].Special = true
		_, err := build(raw)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
	t.Run("adjust hours without delta", func(t *testing.T) {
		raw := validRaw()
		raw.Effects[0].InitEvents = []rawEvent{{Kind: "add hours"}}
		_, err := build(raw)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
}

func TestDealableCardsExcludeSpecial(t *testing.T) {
	raw := validRaw()
	raw.TaskCards = append(raw.TaskCards, rawTaskCard{
		ID: "tc9", Name: "Secret", Target: "PLAYER", Special: true, Task: "t1",
	})
	cat, err := build(raw)
	require.NoError(t, err)

	ids := cat.DealableCards()
	assert.ElementsMatch(t, []CardID{"tc0", "ac0"}, ids)
}

func TestLoadFromFile(t *testing.T) {
	doc := `
hand_size: 1
deck_size: 2
win_threshold: 10
defeat_threshold: -10
days_in_term: 5
hours_per_day: 8
tasks:
  - id: t0
    name: Calculus
    difficulty: 2
    window: 2
    award: 1
    penalty: -1
task_cards:
  - id: tc0
    name: Calculus
    target: OPPONENT
    task: t0
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.HandSize)
	assert.Len(t, cat.Cards, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

// The catalog shipped with the repository must itself load.
func TestLoadShippedCatalog(t *testing.T) {
	cat, err := Load(filepath.Join("..", "..", "config", "catalog.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 6, cat.HandSize)
	assert.Equal(t, 50, cat.DeckSize)
	assert.NotEmpty(t, cat.DealableCards())
}
