package game

import (
	"fmt"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

// CheckResult is the outcome of a legality predicate: a verdict plus a
// human-readable reason when the action is not allowed. Drivers must not
// invoke the corresponding mutating action unless OK is true.
type CheckResult struct {
	OK     bool
	Reason string
}

func allowed() CheckResult { return CheckResult{OK: true} }

func denied(format string, args ...any) CheckResult {
	return CheckResult{Reason: fmt.Sprintf(format, args...)}
}

// CanTakeCard reports whether pid may draw from the deck. Pure; never
// mutates state.
func (g *Game) CanTakeCard(pid PlayerID) CheckResult {
	p, err := g.player(pid)
	if err != nil {
		return denied("%v", err)
	}
	if len(g.deck) == 0 {
		return denied("%v", ErrEmptyDeck)
	}
	if len(p.Hand) >= g.cat.HandSize {
		return denied("%v", ErrHandFull)
	}
	return allowed()
}

// CanUseCard reports whether pid may play the given card. Only action
// cards have a cost to check; task cards are always playable. Pure.
func (g *Game) CanUseCard(pid PlayerID, cid catalog.CardID) CheckResult {
	p, err := g.player(pid)
	if err != nil {
		return denied("%v", err)
	}
	card, ok := g.cat.Cards[cid]
	if !ok {
		return denied("unknown card %q", cid)
	}
	if card.Kind == catalog.CardAction && card.Cost > p.FreeHours() {
		return denied("not enough free time: card costs %d, %d free", card.Cost, p.FreeHours())
	}
	return allowed()
}

// CanSpendTime reports whether pid may work hours on the deadline at
// deadlineIdx. Pure.
func (g *Game) CanSpendTime(pid PlayerID, deadlineIdx int, hours catalog.Hours) CheckResult {
	p, err := g.player(pid)
	if err != nil {
		return denied("%v", err)
	}
	if deadlineIdx < 0 || deadlineIdx >= len(p.Deadlines) {
		return denied("no deadline at index %d", deadlineIdx)
	}
	if hours > p.Deadlines[deadlineIdx].RemainingHours() {
		return denied("you are trying to spend too much time: %d requested, %d remaining",
			hours, p.Deadlines[deadlineIdx].RemainingHours())
	}
	if hours > p.FreeHours() {
		return denied("not enough free time: %d requested, %d free", hours, p.FreeHours())
	}
	return allowed()
}
