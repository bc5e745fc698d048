package game

import "errors"

// Contract-violation errors. The public contract requires drivers to
// pre-check every action through the legality predicates; a well-behaved
// driver never sees these.
var (
	// ErrIndexOutOfRange reports a hand or deadline index outside the
	// list bounds.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInsufficientTime reports an attempt to spend more hours than the
	// player has free today.
	ErrInsufficientTime = errors.New("not enough free time")

	// ErrOverwork reports an attempt to work more hours on a deadline
	// than it has remaining.
	ErrOverwork = errors.New("more hours than the deadline has remaining")

	// ErrEmptyDeck reports a draw from an exhausted deck. The deck is
	// never replenished, so once raised the draw stays illegal for the
	// rest of the match.
	ErrEmptyDeck = errors.New("no more cards in deck")

	// ErrHandFull reports a draw into a hand already at the size limit.
	ErrHandFull = errors.New("cards limit is reached")

	// ErrWrongCardKind reports a card played in a position its variant
	// does not allow, e.g. a task card on the global target.
	ErrWrongCardKind = errors.New("card kind not valid for this target")

	// ErrIllegalAction wraps a failed legality re-check inside a mutating
	// action.
	ErrIllegalAction = errors.New("illegal action")

	// ErrGameOver reports a turn transition or action after the match has
	// reached a terminal outcome.
	ErrGameOver = errors.New("game is over")

	// ErrUnknownPlayer reports a pid outside {0, 1}.
	ErrUnknownPlayer = errors.New("unknown player id")

	// ErrDeckSync reports a failed or timed-out deck synchronization with
	// the peer at construction.
	ErrDeckSync = errors.New("deck synchronization failed")
)
