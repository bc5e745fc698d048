package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// HoursMax is the hard ceiling on a player's free hours per day. Effects
// can never push hours_today above it.
const HoursMax Hours = 24

// ErrInvalidCatalog marks any load-time failure: malformed documents,
// inconsistent constants, dangling references, unknown enum strings.
// These are fatal; the engine cannot start on a partial catalog.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the immutable static definition set loaded once per
// process: every task, effect and card the game can reference, plus the
// match constants.
type Catalog struct {
	HandSize        int
	DeckSize        int
	WinThreshold    Points
	DefeatThreshold Points
	DaysInTerm      Days
	HoursPerDay     Hours

	Tasks   map[TaskID]Task
	Effects map[EffectID]Effect
	Cards   map[CardID]Card

	dealable []CardID // non-special card ids, sorted
}

// DealableCards returns the ids of all cards the deck may contain, in a
// stable order. Special cards are excluded; events are the only way to
// obtain them.
func (c *Catalog) DealableCards() []CardID {
	out := make([]CardID, len(c.dealable))
	copy(out, c.dealable)
	return out
}

// Raw document shapes decoded by viper before validation.

type rawEvent struct {
	Kind  string `mapstructure:"kind"`
	Task  string `mapstructure:"task"`
	Hours int    `mapstructure:"hours"`
}

type rawTask struct {
	ID          string     `mapstructure:"id"`
	Name        string     `mapstructure:"name"`
	Description string     `mapstructure:"description"`
	Image       string     `mapstructure:"image"`
	Difficulty  int        `mapstructure:"difficulty"`
	Window      int        `mapstructure:"window"`
	Award       int        `mapstructure:"award"`
	Penalty     int        `mapstructure:"penalty"`
	OnSuccess   []rawEvent `mapstructure:"on_success"`
	OnFail      []rawEvent `mapstructure:"on_fail"`
}

type rawEffect struct {
	ID          string     `mapstructure:"id"`
	Name        string     `mapstructure:"name"`
	Description string     `mapstructure:"description"`
	Image       string     `mapstructure:"image"`
	Period      int        `mapstructure:"period"`
	Delay       int        `mapstructure:"delay"`
	Removable   bool       `mapstructure:"removable"`
	InitEvents  []rawEvent `mapstructure:"init_events"`
	FinalEvents []rawEvent `mapstructure:"final_events"`
	DailyEvents []rawEvent `mapstructure:"daily_events"`
}

type rawTaskCard struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Image       string `mapstructure:"image"`
	Target      string `mapstructure:"target"`
	Special     bool   `mapstructure:"special"`
	Task        string `mapstructure:"task"`
}

type rawActionCard struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Image       string `mapstructure:"image"`
	Target      string `mapstructure:"target"`
	Special     bool   `mapstructure:"special"`
	Cost        int    `mapstructure:"cost"`
	Effect      string `mapstructure:"effect"`
}

type rawCatalog struct {
	HandSize        int             `mapstructure:"hand_size"`
	DeckSize        int             `mapstructure:"deck_size"`
	WinThreshold    int             `mapstructure:"win_threshold"`
	DefeatThreshold int             `mapstructure:"defeat_threshold"`
	DaysInTerm      int             `mapstructure:"days_in_term"`
	HoursPerDay     int             `mapstructure:"hours_per_day"`
	Effects         []rawEffect     `mapstructure:"effects"`
	Tasks           []rawTask       `mapstructure:"tasks"`
	TaskCards       []rawTaskCard   `mapstructure:"task_cards"`
	ActionCards     []rawActionCard `mapstructure:"action_cards"`
}

// Load reads and validates the catalog document at path. Loading is
// all-or-nothing: any failure returns a nil catalog wrapped in
// ErrInvalidCatalog.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidCatalog, path, err)
	}
	return Parse(v)
}

// Parse validates and converts an already-read viper document.
func Parse(v *viper.Viper) (*Catalog, error) {
	var raw rawCatalog
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrInvalidCatalog, err)
	}
	return build(raw)
}

func build(raw rawCatalog) (*Catalog, error) {
	cat := &Catalog{
		HandSize:        raw.HandSize,
		DeckSize:        raw.DeckSize,
		WinThreshold:    raw.WinThreshold,
		DefeatThreshold: raw.DefeatThreshold,
		DaysInTerm:      raw.DaysInTerm,
		HoursPerDay:     raw.HoursPerDay,
		Tasks:           make(map[TaskID]Task, len(raw.Tasks)),
		Effects:         make(map[EffectID]Effect, len(raw.Effects)),
		Cards:           make(map[CardID]Card, len(raw.TaskCards)+len(raw.ActionCards)),
	}

	if err := cat.checkConstants(); err != nil {
		return nil, err
	}

	for _, rt := range raw.Tasks {
		if rt.ID == "" {
			return nil, fmt.Errorf("%w: task with empty id", ErrInvalidCatalog)
		}
		id := TaskID(rt.ID)
		if _, dup := cat.Tasks[id]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %q", ErrInvalidCatalog, id)
		}
		if rt.Difficulty <= 0 {
			return nil, fmt.Errorf("%w: task %q: difficulty must be positive", ErrInvalidCatalog, id)
		}
		if rt.Window <= 0 {
			return nil, fmt.Errorf("%w: task %q: window must be positive", ErrInvalidCatalog, id)
		}
		onSuccess, err := buildEvents(rt.OnSuccess)
		if err != nil {
			return nil, fmt.Errorf("%w: task %q on_success: %v", ErrInvalidCatalog, id, err)
		}
		onFail, err := buildEvents(rt.OnFail)
		if err != nil {
			return nil, fmt.Errorf("%w: task %q on_fail: %v", ErrInvalidCatalog, id, err)
		}
		cat.Tasks[id] = Task{
			ID:          id,
			Name:        rt.Name,
			Description: rt.Description,
			Image:       rt.Image,
			Difficulty:  rt.Difficulty,
			Window:      rt.Window,
			Award:       rt.Award,
			Penalty:     rt.Penalty,
			OnSuccess:   onSuccess,
			OnFail:      onFail,
		}
	}

	for _, re := range raw.Effects {
		if re.ID == "" {
			return nil, fmt.Errorf("%w: effect with empty id", ErrInvalidCatalog)
		}
		id := EffectID(re.ID)
		if _, dup := cat.Effects[id]; dup {
			return nil, fmt.Errorf("%w: duplicate effect id %q", ErrInvalidCatalog, id)
		}
		if re.Period < 0 || re.Delay < 0 {
			return nil, fmt.Errorf("%w: effect %q: period and delay must be non-negative", ErrInvalidCatalog, id)
		}
		init, err := buildEvents(re.InitEvents)
		if err != nil {
			return nil, fmt.Errorf("%w: effect %q init_events: %v", ErrInvalidCatalog, id, err)
		}
		final, err := buildEvents(re.FinalEvents)
		if err != nil {
			return nil, fmt.Errorf("%w: effect %q final_events: %v", ErrInvalidCatalog, id, err)
		}
		daily, err := buildEvents(re.DailyEvents)
		if err != nil {
			return nil, fmt.Errorf("%w: effect %q daily_events: %v", ErrInvalidCatalog, id, err)
		}
		cat.Effects[id] = Effect{
			ID:          id,
			Name:        re.Name,
			Description: re.Description,
			Image:       re.Image,
			Period:      re.Period,
			Delay:       re.Delay,
			Removable:   re.Removable,
			InitEvents:  init,
			FinalEvents: final,
			DailyEvents: daily,
		}
	}

	for _, rc := range raw.TaskCards {
		card, err := buildCardBase(rc.ID, rc.Name, rc.Description, rc.Image, rc.Target, rc.Special)
		if err != nil {
			return nil, err
		}
		card.Kind = CardTask
		card.TaskID = TaskID(rc.Task)
		if err := cat.addCard(card); err != nil {
			return nil, err
		}
	}
	for _, rc := range raw.ActionCards {
		card, err := buildCardBase(rc.ID, rc.Name, rc.Description, rc.Image, rc.Target, rc.Special)
		if err != nil {
			return nil, err
		}
		card.Kind = CardAction
		card.Cost = rc.Cost
		card.EffectID = EffectID(rc.Effect)
		if card.Cost < 0 {
			return nil, fmt.Errorf("%w: card %q: cost must be non-negative", ErrInvalidCatalog, card.ID)
		}
		if err := cat.addCard(card); err != nil {
			return nil, err
		}
	}

	if err := cat.checkReferences(); err != nil {
		return nil, err
	}

	for id, card := range cat.Cards {
		if !card.Special {
			cat.dealable = append(cat.dealable, id)
		}
	}
	sort.Slice(cat.dealable, func(i, j int) bool { return cat.dealable[i] < cat.dealable[j] })
	if len(cat.dealable) == 0 {
		return nil, fmt.Errorf("%w: no dealable cards; every card is special", ErrInvalidCatalog)
	}

	return cat, nil
}

func (c *Catalog) checkConstants() error {
	if c.HandSize <= 0 {
		return fmt.Errorf("%w: hand_size must be positive, got %d", ErrInvalidCatalog, c.HandSize)
	}
	if c.DeckSize < 2*c.HandSize {
		return fmt.Errorf("%w: deck_size %d must be at least twice hand_size %d",
			ErrInvalidCatalog, c.DeckSize, c.HandSize)
	}
	if c.WinThreshold <= 0 {
		return fmt.Errorf("%w: win_threshold must be positive, got %d", ErrInvalidCatalog, c.WinThreshold)
	}
	if c.WinThreshold <= c.DefeatThreshold {
		return fmt.Errorf("%w: win_threshold %d must exceed defeat_threshold %d",
			ErrInvalidCatalog, c.WinThreshold, c.DefeatThreshold)
	}
	if c.DaysInTerm <= 0 {
		return fmt.Errorf("%w: days_in_term must be positive, got %d", ErrInvalidCatalog, c.DaysInTerm)
	}
	if c.HoursPerDay <= 0 || c.HoursPerDay > HoursMax {
		return fmt.Errorf("%w: hours_per_day %d must be in (0, %d]", ErrInvalidCatalog, c.HoursPerDay, HoursMax)
	}
	return nil
}

func buildCardBase(id, name, description, image, target string, special bool) (Card, error) {
	if id == "" {
		return Card{}, fmt.Errorf("%w: card with empty id", ErrInvalidCatalog)
	}
	tgt, err := ParseTarget(target)
	if err != nil {
		return Card{}, fmt.Errorf("%w: card %q: %v", ErrInvalidCatalog, id, err)
	}
	return Card{
		ID:          CardID(id),
		Name:        name,
		Description: description,
		Image:       image,
		ValidTarget: tgt,
		Special:     special,
	}, nil
}

func (c *Catalog) addCard(card Card) error {
	if _, dup := c.Cards[card.ID]; dup {
		return fmt.Errorf("%w: duplicate card id %q", ErrInvalidCatalog, card.ID)
	}
	c.Cards[card.ID] = card
	return nil
}

func buildEvents(raws []rawEvent) ([]Event, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	out := make([]Event, 0, len(raws))
	for _, r := range raws {
		kind, err := ParseEventKind(r.Kind)
		if err != nil {
			return nil, err
		}
		ev := Event{Kind: kind}
		switch kind {
		case EventGrantTask, EventChanceMeeting, EventDropCourse:
			if r.Task == "" {
				return nil, fmt.Errorf("event %q requires a task id", kind)
			}
			ev.TaskID = TaskID(r.Task)
		case EventAdjustHours:
			if r.Hours == 0 {
				return nil, fmt.Errorf("event %q requires a non-zero hours delta", kind)
			}
			ev.Hours = r.Hours
		case EventDrawCard:
			// no payload
		}
		out = append(out, ev)
	}
	return out, nil
}

// checkReferences verifies that every cross-collection reference
// resolves: cards to tasks/effects, events to tasks.
func (c *Catalog) checkReferences() error {
	for id, card := range c.Cards {
		switch card.Kind {
		case CardTask:
			if _, ok := c.Tasks[card.TaskID]; !ok {
				return fmt.Errorf("%w: card %q references unknown task %q", ErrInvalidCatalog, id, card.TaskID)
			}
		case CardAction:
			if _, ok := c.Effects[card.EffectID]; !ok {
				return fmt.Errorf("%w: card %q references unknown effect %q", ErrInvalidCatalog, id, card.EffectID)
			}
		}
	}
	check := func(owner string, events []Event) error {
		for _, ev := range events {
			if ev.TaskID == "" {
				continue
			}
			if _, ok := c.Tasks[ev.TaskID]; !ok {
				return fmt.Errorf("%w: %s references unknown task %q", ErrInvalidCatalog, owner, ev.TaskID)
			}
		}
		return nil
	}
	for id, task := range c.Tasks {
		if err := check(fmt.Sprintf("task %q", id), task.OnSuccess); err != nil {
			return err
		}
		if err := check(fmt.Sprintf("task %q", id), task.OnFail); err != nil {
			return err
		}
	}
	for id, eff := range c.Effects {
		for _, events := range [][]Event{eff.InitEvents, eff.FinalEvents, eff.DailyEvents} {
			if err := check(fmt.Sprintf("effect %q", id), events); err != nil {
				return err
			}
		}
	}
	return nil
}
