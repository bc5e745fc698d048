// Package netplay carries the peer-to-peer message contract: newline
// delimited text lines of the form "action[,arg]*". One peer hosts, the
// other joins; after the hello exchange both sides mirror every local
// game action to keep the two engine instances applying the same
// sequence.
package netplay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

// Wire action names.
const (
	ActionHello      = "hello"
	ActionCreateDeck = "create_deck"
	ActionDraw       = "draw"
	ActionTakeCard   = "take_card"
	ActionUseCard    = "use_card"
	ActionWork       = "work"
	ActionEndTurn    = "end_turn"
	ActionQuit       = "quit"
)

// Message is one decoded wire line.
type Message struct {
	Action string
	Args   []string
}

// Encode renders the message as a single newline-terminated wire line.
func (m Message) Encode() string {
	if len(m.Args) == 0 {
		return m.Action + "\n"
	}
	return m.Action + "," + strings.Join(m.Args, ",") + "\n"
}

// Decode parses one wire line. The trailing newline is optional; empty
// lines and empty action names are rejected.
func Decode(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Message{}, fmt.Errorf("empty message line")
	}
	parts := strings.Split(line, ",")
	if parts[0] == "" {
		return Message{}, fmt.Errorf("message with empty action: %q", line)
	}
	msg := Message{Action: parts[0]}
	if len(parts) > 1 {
		msg.Args = parts[1:]
	}
	return msg, nil
}

// HelloMessage announces a match id when the link comes up.
func HelloMessage(matchID string) Message {
	return Message{Action: ActionHello, Args: []string{matchID}}
}

// DeckMessage carries the deck-sync payload from the authority.
func DeckMessage(ids []catalog.CardID) Message {
	args := make([]string, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}
	return Message{Action: ActionCreateDeck, Args: args}
}

// DeckPayload extracts the card ids from a create_deck message.
func (m Message) DeckPayload() ([]catalog.CardID, error) {
	if m.Action != ActionCreateDeck {
		return nil, fmt.Errorf("not a %s message: %q", ActionCreateDeck, m.Action)
	}
	if len(m.Args) == 0 {
		return nil, fmt.Errorf("%s message with empty deck", ActionCreateDeck)
	}
	ids := make([]catalog.CardID, len(m.Args))
	for i, arg := range m.Args {
		if arg == "" {
			return nil, fmt.Errorf("%s message with empty card id at %d", ActionCreateDeck, i)
		}
		ids[i] = catalog.CardID(arg)
	}
	return ids, nil
}

// TakeCardMessage mirrors a deck draw.
func TakeCardMessage() Message {
	return Message{Action: ActionTakeCard}
}

// UseCardMessage mirrors a card play: the hand index on the sender's
// side and the target pid (-1 for no explicit target).
func UseCardMessage(handIdx, targetPID int) Message {
	return Message{Action: ActionUseCard, Args: []string{
		strconv.Itoa(handIdx), strconv.Itoa(targetPID),
	}}
}

// UseCardPayload extracts the hand index and target pid.
func (m Message) UseCardPayload() (handIdx, targetPID int, err error) {
	if m.Action != ActionUseCard {
		return 0, 0, fmt.Errorf("not a %s message: %q", ActionUseCard, m.Action)
	}
	if len(m.Args) != 2 {
		return 0, 0, fmt.Errorf("%s message needs 2 args, got %d", ActionUseCard, len(m.Args))
	}
	if handIdx, err = strconv.Atoi(m.Args[0]); err != nil {
		return 0, 0, fmt.Errorf("%s hand index: %w", ActionUseCard, err)
	}
	if targetPID, err = strconv.Atoi(m.Args[1]); err != nil {
		return 0, 0, fmt.Errorf("%s target pid: %w", ActionUseCard, err)
	}
	return handIdx, targetPID, nil
}

// WorkMessage mirrors hours spent on a deadline.
func WorkMessage(deadlineIdx, hours int) Message {
	return Message{Action: ActionWork, Args: []string{
		strconv.Itoa(deadlineIdx), strconv.Itoa(hours),
	}}
}

// WorkPayload extracts the deadline index and hours.
func (m Message) WorkPayload() (deadlineIdx, hours int, err error) {
	if m.Action != ActionWork {
		return 0, 0, fmt.Errorf("not a %s message: %q", ActionWork, m.Action)
	}
	if len(m.Args) != 2 {
		return 0, 0, fmt.Errorf("%s message needs 2 args, got %d", ActionWork, len(m.Args))
	}
	if deadlineIdx, err = strconv.Atoi(m.Args[0]); err != nil {
		return 0, 0, fmt.Errorf("%s deadline index: %w", ActionWork, err)
	}
	if hours, err = strconv.Atoi(m.Args[1]); err != nil {
		return 0, 0, fmt.Errorf("%s hours: %w", ActionWork, err)
	}
	return deadlineIdx, hours, nil
}

// DrawMessage settles move order at game start: flag is 1 when the
// receiver moves first.
func DrawMessage(firstFlag int) Message {
	return Message{Action: ActionDraw, Args: []string{strconv.Itoa(firstFlag)}}
}

// EndTurnMessage signals the sender finished their turn.
func EndTurnMessage() Message {
	return Message{Action: ActionEndTurn}
}

// QuitMessage signals the sender left the match.
func QuitMessage() Message {
	return Message{Action: ActionQuit}
}
