package game

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deadline-game/deadline-server/internal/catalog"
	"github.com/deadline-game/deadline-server/internal/netplay"
)

const testCatalogDoc = `
hand_size: 6
deck_size: 50
win_threshold: 20
defeat_threshold: -20
days_in_term: 30
hours_per_day: 16

effects:
  - id: e_coffee
    name: Coffee
    period: 1
    delay: 0
    init_events:
      - kind: add hours
        hours: 6
  - id: e_crunch
    name: Crunch
    period: 2
    delay: 1
    init_events:
      - kind: add hours
        hours: -4
  - id: e_global
    name: Blackout
    period: 2
    delay: 0
    daily_events:
      - kind: add hours
        hours: -1
  - id: e_draw
    name: Library run
    period: 1
    delay: 0
    init_events:
      - kind: take card

tasks:
  - id: t_easy
    name: Easy
    difficulty: 3
    window: 3
    award: 3
    penalty: -6
  - id: t_big
    name: Big
    difficulty: 2
    window: 5
    award: 20
    penalty: -1
  - id: t_chain
    name: Chain
    difficulty: 1
    window: 3
    award: 1
    penalty: -1
    on_success:
      - kind: special task
        task: t_secret
  - id: t_secret
    name: Secret
    difficulty: 1
    window: 2
    award: 0
    penalty: -1
  - id: t_meet
    name: Meeting
    difficulty: 1
    window: 3
    award: 0
    penalty: 0
    on_success:
      - kind: met opt
        task: t_secret
  - id: t_drop
    name: Doomed course
    difficulty: 10
    window: 2
    award: 5
    penalty: 0
    on_fail:
      - kind: kurs failed
        task: t_drop

task_cards:
  - id: tc_easy
    name: Easy
    target: OPPONENT
    task: t_easy
  - id: tc_big
    name: Big
    target: ANY
    task: t_big
  - id: tc_chain
    name: Chain
    target: ANY
    task: t_chain
  - id: tc_secret
    name: Secret handout
    target: PLAYER
    special: true
    task: t_secret

action_cards:
  - id: ac_coffee
    name: Coffee
    target: PLAYER
    cost: 0
    effect: e_coffee
  - id: ac_crunch
    name: Crunch
    target: OPPONENT
    cost: 1
    effect: e_crunch
  - id: ac_global
    name: Blackout
    target: GLOBAL
    cost: 0
    effect: e_global
  - id: ac_draw
    name: Library run
    target: PLAYER
    cost: 0
    effect: e_draw
`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogDoc), 0o644))
	cat, err := catalog.Load(path)
	require.NoError(t, err)
	return cat
}

// newTestGame constructs an authority-side game against a loopback peer
// whose other end is discarded. Deck sampling is deterministic.
func newTestGame(t *testing.T, cat *catalog.Catalog) *Game {
	t.Helper()
	a, b := netplay.NewLoopbackPair()
	t.Cleanup(func() { a.Close() })
	_ = b
	g, err := New(context.Background(), cat, Options{
		PlayerName:   "player1",
		OpponentName: "player2",
		IsFirst:      true,
		Peer:         a,
		Rand:         rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)
	return g
}

// newTestPair constructs both peers' engines over a loopback link, the
// way two real processes would.
func newTestPair(t *testing.T, cat *catalog.Catalog) (*Game, *Game) {
	t.Helper()
	a, b := netplay.NewLoopbackPair()
	t.Cleanup(func() { a.Close() })

	g1, err := New(context.Background(), cat, Options{
		PlayerName:   "player1",
		OpponentName: "player2",
		IsFirst:      true,
		Peer:         a,
		Rand:         rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	g2, err := New(ctx, cat, Options{
		PlayerName:   "player2",
		OpponentName: "player1",
		IsFirst:      false,
		Peer:         b,
	})
	require.NoError(t, err)
	return g1, g2
}

// giveCards replaces pid's hand, bypassing the deal.
func giveCards(g *Game, pid PlayerID, ids ...catalog.CardID) {
	g.players[pid].Hand = append([]catalog.CardID(nil), ids...)
}

// giveDeadline appends a deadline for task tid anchored at the current
// day and returns it.
func giveDeadline(g *Game, pid PlayerID, tid catalog.TaskID) *Deadline {
	d := NewDeadline(g.cat.Tasks[tid], g.day)
	g.players[pid].Deadlines = append(g.players[pid].Deadlines, d)
	return d
}
