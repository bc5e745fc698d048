package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

// TakeCard draws the deck's head card into pid's hand. Callers must have
// passed CanTakeCard; a failed re-check is a contract violation and the
// state is left untouched.
func (g *Game) TakeCard(pid PlayerID) error {
	if g.outcome != OutcomeNone {
		return ErrGameOver
	}
	if res := g.CanTakeCard(pid); !res.OK {
		return fmt.Errorf("%w: %s", ErrIllegalAction, res.Reason)
	}
	p := g.players[pid]
	p.TakeCards(g.deck[0])
	g.deck = g.deck[1:]

	g.logger.Debug("card taken",
		zap.Int("pid", pid),
		zap.String("card", string(p.Hand[len(p.Hand)-1])),
		zap.Int("deck_size", len(g.deck)),
	)
	return nil
}

// UseCard plays the card at handIdx from pid's hand. targetPID names the
// concrete target for PLAYER/OPPONENT/ANY cards, already resolved by the
// driver; pass NoTarget to apply the card to the actor. Global cards
// ignore targetPID.
//
// Action cards charge their cost to the actor and append the bound
// effect, tagged with the current day, to the target's list (or the
// global list); a zero-delay effect fires its init events immediately.
// Task cards create a deadline for the target anchored at the current
// day.
func (g *Game) UseCard(pid PlayerID, handIdx int, targetPID PlayerID) error {
	if g.outcome != OutcomeNone {
		return ErrGameOver
	}
	actor, err := g.player(pid)
	if err != nil {
		return err
	}
	card, err := g.CardAt(pid, handIdx)
	if err != nil {
		return err
	}
	if res := g.CanUseCard(pid, card.ID); !res.OK {
		return fmt.Errorf("%w: %s", ErrIllegalAction, res.Reason)
	}

	target := pid
	if targetPID != NoTarget {
		if _, err := g.player(targetPID); err != nil {
			return err
		}
		target = targetPID
	}
	if card.ValidTarget == catalog.TargetGlobal && card.Kind != catalog.CardAction {
		return fmt.Errorf("%w: task card %q cannot target the whole game", ErrWrongCardKind, card.ID)
	}

	// All checks passed; from here the action applies fully.
	if _, err := actor.RemoveCardAt(handIdx); err != nil {
		return err
	}

	switch {
	case card.ValidTarget == catalog.TargetGlobal:
		if err := actor.SpendTime(card.Cost); err != nil {
			return fmt.Errorf("%w: %v", ErrIllegalAction, err)
		}
		g.effects = append(g.effects, ActiveEffect{AppliedDay: g.day, EffectID: card.EffectID})
		g.fireZeroDelayInit(card.EffectID, pid)

	case card.Kind == catalog.CardAction:
		if err := actor.SpendTime(card.Cost); err != nil {
			return fmt.Errorf("%w: %v", ErrIllegalAction, err)
		}
		tp := g.players[target]
		tp.Effects = append(tp.Effects, ActiveEffect{AppliedDay: g.day, EffectID: card.EffectID})
		g.fireZeroDelayInit(card.EffectID, pid)

	default: // task card on a concrete player
		task := g.cat.Tasks[card.TaskID]
		g.players[target].Deadlines = append(g.players[target].Deadlines, NewDeadline(task, g.day))
	}

	g.logger.Debug("card used",
		zap.Int("pid", pid),
		zap.String("card", string(card.ID)),
		zap.String("kind", card.Kind.String()),
		zap.Int("target", target),
	)
	return nil
}

// fireZeroDelayInit fires an effect's init events right away when it has
// no onset delay. Delayed effects fire their init events during the turn
// transitions instead.
func (g *Game) fireZeroDelayInit(eid catalog.EffectID, pid PlayerID) {
	effect := g.cat.Effects[eid]
	if effect.Delay == 0 {
		g.applyEvents(effect.InitEvents, pid)
	}
}

// SpendTime lets pid work hours on the deadline at deadlineIdx. A
// completed deadline stays on the list; scoring and removal happen only
// during turn transitions so that all scoring is centralized.
func (g *Game) SpendTime(pid PlayerID, deadlineIdx int, hours catalog.Hours) error {
	if g.outcome != OutcomeNone {
		return ErrGameOver
	}
	if res := g.CanSpendTime(pid, deadlineIdx, hours); !res.OK {
		return fmt.Errorf("%w: %s", ErrIllegalAction, res.Reason)
	}
	p := g.players[pid]
	if err := p.SpendTime(hours); err != nil {
		return err
	}
	done, err := p.Deadlines[deadlineIdx].Work(hours)
	if err != nil {
		return err
	}
	if done {
		g.logger.Debug("deadline worked off",
			zap.Int("pid", pid),
			zap.String("task", string(p.Deadlines[deadlineIdx].Task.ID)),
		)
	}
	return nil
}

// applyEvents interprets an ordered event list against the player pid.
// The kinds form a closed set; the catalog loader guarantees no other
// value reaches this switch.
func (g *Game) applyEvents(events []catalog.Event, pid PlayerID) {
	p := g.players[pid]
	for _, ev := range events {
		switch ev.Kind {
		case catalog.EventGrantTask:
			g.grantTask(pid, ev.TaskID)

		case catalog.EventAdjustHours:
			p.AdjustHours(ev.Hours)

		case catalog.EventDrawCard:
			// Same bounds as a regular draw, but silent when they fail:
			// an event cannot be pre-checked by the driver.
			if len(g.deck) > 0 && len(p.Hand) < g.cat.HandSize {
				p.TakeCards(g.deck[0])
				g.deck = g.deck[1:]
			}

		case catalog.EventChanceMeeting:
			if g.rng.Intn(3) == 0 {
				p.Score += 4
			} else {
				g.grantTask(pid, ev.TaskID)
			}

		case catalog.EventDropCourse:
			g.dropDeadline(pid, ev.TaskID)
		}
	}
}

func (g *Game) grantTask(pid PlayerID, tid catalog.TaskID) {
	p := g.players[pid]
	p.Deadlines = append(p.Deadlines, NewDeadline(g.cat.Tasks[tid], g.day))
}

// dropDeadline removes the first deadline bound to tid and charges twice
// its remaining hours as a penalty. A missing deadline is a no-op: the
// task may already have been resolved by the time the event fires.
func (g *Game) dropDeadline(pid PlayerID, tid catalog.TaskID) {
	p := g.players[pid]
	for i, d := range p.Deadlines {
		if d.Task.ID == tid {
			p.Score -= d.RemainingHours() * 2
			p.Deadlines = append(p.Deadlines[:i], p.Deadlines[i+1:]...)
			return
		}
	}
	g.logger.Warn("drop-course event found no deadline",
		zap.Int("pid", pid),
		zap.String("task", string(tid)),
	)
}
