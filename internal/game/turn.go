package game

import (
	"fmt"

	"go.uber.org/zap"
)

// TurnState tracks where the local player is inside the turn cycle.
type TurnState int

const (
	StateTurnBegin TurnState = iota
	StateTurnActive
	StateTurnEnd
	StateGameOver
)

var turnStateNames = map[TurnState]string{
	StateTurnBegin:  "TURN_BEGIN",
	StateTurnActive: "TURN_ACTIVE",
	StateTurnEnd:    "TURN_END",
	StateGameOver:   "GAME_OVER",
}

func (s TurnState) String() string {
	if name, ok := turnStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}

// Outcome is the terminal result of a match as seen by the local player.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeDefeat
	OutcomeDraw
)

var outcomeNames = map[Outcome]string{
	OutcomeNone:   "none",
	OutcomeWin:    "win",
	OutcomeDefeat: "defeat",
	OutcomeDraw:   "draw",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OUTCOME_%d", int(o))
}

// TurnBegin opens the local player's turn: it scores the opponent's
// deadlines completed during the prior round, restores the player's hour
// budget, ticks the player's and the global effects, prunes the expired
// ones, and finally fails any of the player's deadlines that came due
// today.
func (g *Game) TurnBegin() error {
	if g.outcome != OutcomeNone {
		return ErrGameOver
	}

	g.resolveCompleted(g.opponentPID)
	g.players[g.playerPID].ResetDay(g.cat.HoursPerDay)
	g.tickEffects(g.playerPID, true)
	g.pruneEffects(g.playerPID)
	g.resolveFailed(g.playerPID)

	g.state = StateTurnActive
	g.logger.Debug("turn begun", zap.Int("day", g.day), zap.Int("pid", g.playerPID))
	return nil
}

// TurnEnd closes the local player's turn: the day advances, the player's
// completed deadlines are scored, the opponent's day is prepared
// (mirrors of the TurnBegin bookkeeping), the player's expired deadlines
// fail, and the terminal conditions are evaluated. The returned outcome
// is OutcomeNone while the match continues.
func (g *Game) TurnEnd() (Outcome, error) {
	if g.outcome != OutcomeNone {
		return g.outcome, ErrGameOver
	}
	g.state = StateTurnEnd

	g.day++
	if g.day > g.cat.DaysInTerm {
		g.haveExams = true
	}

	g.resolveCompleted(g.playerPID)
	g.players[g.opponentPID].ResetDay(g.cat.HoursPerDay)
	g.tickEffects(g.opponentPID, true)
	g.pruneEffects(g.opponentPID)
	g.resolveFailed(g.opponentPID)

	outcome := g.evaluateOutcome()
	if outcome != OutcomeNone {
		g.outcome = outcome
		g.state = StateGameOver
		g.logger.Info("game over",
			zap.String("outcome", outcome.String()),
			zap.Int("player_score", g.players[g.playerPID].Score),
			zap.Int("opponent_score", g.players[g.opponentPID].Score),
		)
	} else {
		g.state = StateTurnBegin
		g.logger.Debug("turn ended", zap.Int("day", g.day))
	}
	return outcome, nil
}

// resolveCompleted scores and removes pid's fully-worked deadlines,
// firing their success events. Collect-then-remove keeps each entry
// resolved at most once.
func (g *Game) resolveCompleted(pid PlayerID) {
	p := g.players[pid]
	var remaining []*Deadline
	for _, d := range p.Deadlines {
		if !d.Done() {
			remaining = append(remaining, d)
		}
	}
	completed := make([]*Deadline, 0, len(p.Deadlines)-len(remaining))
	for _, d := range p.Deadlines {
		if d.Done() {
			completed = append(completed, d)
		}
	}
	p.Deadlines = remaining
	for _, d := range completed {
		p.Score += d.Task.Award
		g.applyEvents(d.Task.OnSuccess, pid)
		g.logger.Debug("deadline completed",
			zap.Int("pid", pid),
			zap.String("task", string(d.Task.ID)),
			zap.Int("award", d.Task.Award),
		)
	}
}

// resolveFailed applies penalties for pid's deadlines that came due
// today, fires their failure events and removes them.
func (g *Game) resolveFailed(pid PlayerID) {
	p := g.players[pid]
	var remaining, failed []*Deadline
	for _, d := range p.Deadlines {
		if d.DueDay == g.day {
			failed = append(failed, d)
		} else {
			remaining = append(remaining, d)
		}
	}
	p.Deadlines = remaining
	for _, d := range failed {
		p.Score += d.Task.Penalty
		g.applyEvents(d.Task.OnFail, pid)
		g.logger.Debug("deadline failed",
			zap.Int("pid", pid),
			zap.String("task", string(d.Task.ID)),
			zap.Int("penalty", d.Task.Penalty),
		)
	}
}

// tickEffects fires the day's events for every effect on pid's personal
// list and, when includeGlobal is set, on the shared list, in insertion
// order. An effect fires init events on the day it becomes active, final
// events on the day it ends, and its daily events on every day in
// between.
func (g *Game) tickEffects(pid PlayerID, includeGlobal bool) {
	lists := [][]ActiveEffect{g.players[pid].Effects}
	if includeGlobal {
		lists = append(lists, g.effects)
	}
	for _, list := range lists {
		snapshot := make([]ActiveEffect, len(list))
		copy(snapshot, list)
		for _, ae := range snapshot {
			effect := g.cat.Effects[ae.EffectID]
			switch g.day {
			case ae.AppliedDay + effect.Delay:
				g.applyEvents(effect.InitEvents, pid)
			case ae.AppliedDay + effect.Delay + effect.Period:
				g.applyEvents(effect.FinalEvents, pid)
			default:
				g.applyEvents(effect.DailyEvents, pid)
			}
		}
	}
}

// pruneEffects drops expired entries from pid's personal list and from
// the global list.
func (g *Game) pruneEffects(pid PlayerID) {
	expired := func(ae ActiveEffect) bool {
		effect := g.cat.Effects[ae.EffectID]
		return g.day == ae.AppliedDay+effect.Delay+effect.Period
	}
	keep := func(list []ActiveEffect) []ActiveEffect {
		var out []ActiveEffect
		for _, ae := range list {
			if !expired(ae) {
				out = append(out, ae)
			}
		}
		return out
	}
	g.players[pid].Effects = keep(g.players[pid].Effects)
	g.effects = keep(g.effects)
}

// evaluateOutcome checks the terminal conditions after the local
// player's turn: the score thresholds first, then resource exhaustion.
// When every resource is gone the higher score wins and equal scores
// draw.
func (g *Game) evaluateOutcome() Outcome {
	player := g.players[g.playerPID]
	opponent := g.players[g.opponentPID]

	if player.Score >= g.cat.WinThreshold {
		return OutcomeWin
	}
	if player.Score <= g.cat.DefeatThreshold {
		return OutcomeDefeat
	}

	exhausted := len(g.deck) == 0 &&
		len(player.Hand) == 0 && len(opponent.Hand) == 0 &&
		len(player.Deadlines) == 0 && len(opponent.Deadlines) == 0 &&
		len(player.Effects) == 0 && len(opponent.Effects) == 0 &&
		len(g.effects) == 0
	if exhausted {
		switch {
		case player.Score > opponent.Score:
			return OutcomeWin
		case player.Score < opponent.Score:
			return OutcomeDefeat
		default:
			return OutcomeDraw
		}
	}
	return OutcomeNone
}
