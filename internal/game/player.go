package game

import (
	"fmt"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

// PlayerID identifies one of the two seats. The first player holds pid 1
// on both peers; the mapping of pid to "local player" differs per peer.
type PlayerID = int

// NoTarget is passed to UseCard when a card has no explicit target and
// should apply to the acting player.
const NoTarget PlayerID = -1

// ActiveEffect is an effect entry on a player or on the global list,
// tagged with the day it was applied. Insertion order is the resolution
// order.
type ActiveEffect struct {
	AppliedDay catalog.Day
	EffectID   catalog.EffectID
}

// Player holds one seat's mutable match state.
type Player struct {
	PID             PlayerID
	Name            string
	HoursToday      catalog.Hours
	SpentHoursToday catalog.Hours
	Score           catalog.Points
	Hand            []catalog.CardID
	Deadlines       []*Deadline
	Effects         []ActiveEffect
}

// NewPlayer creates a player with a full day of free hours, an empty
// hand and no obligations.
func NewPlayer(pid PlayerID, name string, hoursPerDay catalog.Hours) *Player {
	return &Player{
		PID:        pid,
		Name:       name,
		HoursToday: hoursPerDay,
	}
}

// FreeHours returns the unspent hours left today.
func (p *Player) FreeHours() catalog.Hours {
	return p.HoursToday - p.SpentHoursToday
}

// TakeCards appends card ids to the hand. Hand-size enforcement belongs
// to the legality layer; this is a raw mutator.
func (p *Player) TakeCards(ids ...catalog.CardID) {
	p.Hand = append(p.Hand, ids...)
}

// RemoveCardAt removes and returns the card at idx in the hand.
func (p *Player) RemoveCardAt(idx int) (catalog.CardID, error) {
	if idx < 0 || idx >= len(p.Hand) {
		return "", fmt.Errorf("%w: hand index %d with %d cards", ErrIndexOutOfRange, idx, len(p.Hand))
	}
	id := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return id, nil
}

// SpendTime marks hours as spent. Spending beyond the free hours is an
// ErrInsufficientTime contract violation and leaves the counter
// untouched.
func (p *Player) SpendTime(hours catalog.Hours) error {
	if hours > p.FreeHours() {
		return fmt.Errorf("%w: %d requested, %d free", ErrInsufficientTime, hours, p.FreeHours())
	}
	p.SpentHoursToday += hours
	return nil
}

// ResetDay restores the daily hour budget at the start of the player's
// day.
func (p *Player) ResetDay(hoursPerDay catalog.Hours) {
	p.HoursToday = hoursPerDay
	p.SpentHoursToday = 0
}

// AdjustHours applies a signed delta to today's hour budget, clamped to
// [0, HoursMax].
func (p *Player) AdjustHours(delta catalog.Hours) {
	p.HoursToday += delta
	if p.HoursToday > catalog.HoursMax {
		p.HoursToday = catalog.HoursMax
	}
	if p.HoursToday < 0 {
		p.HoursToday = 0
	}
}

func (p *Player) String() string {
	return fmt.Sprintf("player %d %q: score %d, %d/%d hours, %d cards, %d deadlines, %d effects",
		p.PID, p.Name, p.Score, p.FreeHours(), p.HoursToday,
		len(p.Hand), len(p.Deadlines), len(p.Effects))
}
