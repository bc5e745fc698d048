package catalog

import "fmt"

// Domain units shared across the engine.
type (
	Day    = int
	Days   = int
	Hours  = int
	Points = int
)

// Identifier types for the three catalog collections.
type (
	TaskID   string
	EffectID string
	CardID   string
)

// Target describes which players a card may legally be played on.
type Target int

const (
	TargetGlobal   Target = iota // affects both players through the global effect list
	TargetSelf                   // affects the player who plays the card
	TargetOpponent               // affects the other player
	TargetAny                    // caller picks either player
)

var targetNames = map[Target]string{
	TargetGlobal:   "GLOBAL",
	TargetSelf:     "PLAYER",
	TargetOpponent: "OPPONENT",
	TargetAny:      "ANY",
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TARGET_%d", int(t))
}

// ParseTarget converts a catalog string to a Target.
func ParseTarget(s string) (Target, error) {
	for t, name := range targetNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown card target %q", s)
}

// EventKind is the closed set of instructions an effect or task outcome
// may issue against a player. Unknown kinds never reach the engine: the
// loader rejects them.
type EventKind int

const (
	// EventGrantTask hands the target player a deadline for a special task.
	EventGrantTask EventKind = iota
	// EventAdjustHours adds a signed delta to the target's free hours for
	// the day, clamped to [0, HoursMax].
	EventAdjustHours
	// EventDrawCard moves the top deck card into the target's hand if the
	// deck and hand limits allow it.
	EventDrawCard
	// EventChanceMeeting resolves a 1-in-3 chance: points on success, a
	// special task otherwise.
	EventChanceMeeting
	// EventDropCourse removes the named deadline and charges twice its
	// remaining hours as a score penalty.
	EventDropCourse
)

var eventKindNames = map[EventKind]string{
	EventGrantTask:     "special task",
	EventAdjustHours:   "add hours",
	EventDrawCard:      "take card",
	EventChanceMeeting: "met opt",
	EventDropCourse:    "kurs failed",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EVENT_%d", int(k))
}

// ParseEventKind converts a catalog string to an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	for k, name := range eventKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Event is a single instruction interpreted by the action engine. The
// payload fields are populated per kind: TaskID for EventGrantTask,
// EventChanceMeeting and EventDropCourse; Hours for EventAdjustHours.
type Event struct {
	Kind   EventKind
	TaskID TaskID
	Hours  Hours
}

// Task is an obligation a deadline binds a player to.
type Task struct {
	ID          TaskID
	Name        string
	Description string
	Image       string
	Difficulty  Hours // hours of work to complete
	Window      Days  // days allowed before the deadline expires
	Award       Points
	Penalty     Points
	OnSuccess   []Event
	OnFail      []Event
}

// Effect is a timed modifier applied to a player or to the whole game.
type Effect struct {
	ID          EffectID
	Name        string
	Description string
	Image       string
	Period      Days // duration once active
	Delay       Days // days before it starts acting
	Removable   bool
	InitEvents  []Event // fired on the day the effect becomes active
	FinalEvents []Event // fired on the day the effect ends
	DailyEvents []Event // fired every active day in between
}

// CardKind discriminates the two card variants.
type CardKind int

const (
	CardTask CardKind = iota
	CardAction
)

func (k CardKind) String() string {
	switch k {
	case CardTask:
		return "TaskCard"
	case CardAction:
		return "ActionCard"
	}
	return fmt.Sprintf("CARD_%d", int(k))
}

// Card is a playing card. Kind selects the variant: task cards carry
// TaskID, action cards carry Cost and EffectID. Special cards are never
// dealt from the deck; events are the only way to obtain them.
type Card struct {
	ID          CardID
	Name        string
	Description string
	Image       string
	ValidTarget Target
	Special     bool
	Kind        CardKind

	// TaskCard variant
	TaskID TaskID

	// ActionCard variant
	Cost     Hours
	EffectID EffectID
}
