package game

import "github.com/deadline-game/deadline-server/internal/catalog"

// DeadlineView is a deadline as exposed to the driver.
type DeadlineView struct {
	TaskID         catalog.TaskID
	InitDay        catalog.Day
	DueDay         catalog.Day
	Progress       catalog.Hours
	RemainingHours catalog.Hours
}

// PlayerView is the local player's full observable state.
type PlayerView struct {
	PID             PlayerID
	Name            string
	Score           catalog.Points
	HoursToday      catalog.Hours
	SpentHoursToday catalog.Hours
	FreeHours       catalog.Hours
	Hand            []catalog.CardID
	Deadlines       []DeadlineView
	Effects         []ActiveEffect
}

// OpponentView mirrors PlayerView but hides the hand contents: only the
// count crosses the privacy boundary.
type OpponentView struct {
	PID             PlayerID
	Name            string
	Score           catalog.Points
	HoursToday      catalog.Hours
	SpentHoursToday catalog.Hours
	FreeHours       catalog.Hours
	HandSize        int
	Deadlines       []DeadlineView
	Effects         []ActiveEffect
}

// GlobalView is the shared, non-seat state.
type GlobalView struct {
	Day       catalog.Day
	HaveExams bool
	Effects   []ActiveEffect
	DeckSize  int
}

// ConstantsView exposes the match constants the driver may display.
type ConstantsView struct {
	InitDeckSize    int
	MaxHandSize     int
	WinThreshold    catalog.Points
	DefeatThreshold catalog.Points
	DaysInTerm      catalog.Days
	HoursPerDay     catalog.Hours
}

// Snapshot is the single read-only view of the whole observable state.
type Snapshot struct {
	Player    PlayerView
	Opponent  OpponentView
	Global    GlobalView
	Constants ConstantsView
	State     TurnState
	Outcome   Outcome
}

// Snapshot returns a copy of the observable state. The opponent's hand
// is reported as a count only; its contents never leave the engine
// through this accessor.
func (g *Game) Snapshot() Snapshot {
	player := g.players[g.playerPID]
	opponent := g.players[g.opponentPID]

	return Snapshot{
		Player: PlayerView{
			PID:             player.PID,
			Name:            player.Name,
			Score:           player.Score,
			HoursToday:      player.HoursToday,
			SpentHoursToday: player.SpentHoursToday,
			FreeHours:       player.FreeHours(),
			Hand:            append([]catalog.CardID(nil), player.Hand...),
			Deadlines:       deadlineViews(player.Deadlines),
			Effects:         append([]ActiveEffect(nil), player.Effects...),
		},
		Opponent: OpponentView{
			PID:             opponent.PID,
			Name:            opponent.Name,
			Score:           opponent.Score,
			HoursToday:      opponent.HoursToday,
			SpentHoursToday: opponent.SpentHoursToday,
			FreeHours:       opponent.FreeHours(),
			HandSize:        len(opponent.Hand),
			Deadlines:       deadlineViews(opponent.Deadlines),
			Effects:         append([]ActiveEffect(nil), opponent.Effects...),
		},
		Global: GlobalView{
			Day:       g.day,
			HaveExams: g.haveExams,
			Effects:   append([]ActiveEffect(nil), g.effects...),
			DeckSize:  len(g.deck),
		},
		Constants: ConstantsView{
			InitDeckSize:    g.cat.DeckSize,
			MaxHandSize:     g.cat.HandSize,
			WinThreshold:    g.cat.WinThreshold,
			DefeatThreshold: g.cat.DefeatThreshold,
			DaysInTerm:      g.cat.DaysInTerm,
			HoursPerDay:     g.cat.HoursPerDay,
		},
		State:   g.state,
		Outcome: g.outcome,
	}
}

func deadlineViews(list []*Deadline) []DeadlineView {
	if len(list) == 0 {
		return nil
	}
	out := make([]DeadlineView, len(list))
	for i, d := range list {
		out[i] = DeadlineView{
			TaskID:         d.Task.ID,
			InitDay:        d.InitDay,
			DueDay:         d.DueDay,
			Progress:       d.Progress,
			RemainingHours: d.RemainingHours(),
		}
	}
	return out
}
