package game

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

// DeckSync is the slice of the network collaborator the engine needs at
// construction: sending the shared deck to the peer, or blocking until
// the peer delivers one.
type DeckSync interface {
	// SendDeck transmits the ordered deck to the peer.
	SendDeck(ids []catalog.CardID) error
	// AwaitDeck blocks until a deck payload arrives or ctx is done.
	AwaitDeck(ctx context.Context) ([]catalog.CardID, error)
}

// Options configures a Game instance. Each peer constructs its own Game
// with mirrored names and an inverted IsFirst flag.
type Options struct {
	PlayerName   string
	OpponentName string
	// IsFirst marks the deck authority: it samples the shared deck and
	// transmits it; the other peer adopts the received deck verbatim.
	IsFirst bool
	Peer    DeckSync
	Logger  *zap.Logger
	// Rand drives deck sampling on the authority. Defaults to a
	// time-seeded source.
	Rand *rand.Rand
}

// Game is the authoritative per-peer match state. It is single-threaded:
// the driver must serialize calls, and every method runs to completion
// before returning. Construction performs the deck-sync handshake and
// the initial deal; after that the instance lives until process exit.
type Game struct {
	cat    *catalog.Catalog
	logger *zap.Logger

	isFirst     bool
	playerPID   PlayerID
	opponentPID PlayerID
	players     [2]*Player

	day       catalog.Day
	haveExams bool
	effects   []ActiveEffect // global effects, insertion-ordered
	deck      []catalog.CardID

	state   TurnState
	outcome Outcome
	rng     *rand.Rand
}

// New constructs a game, synchronizes the deck with the peer and deals
// the opening hands. The ctx bounds the deck-sync wait for the
// non-authority peer; a driver should pass a deadline so a silent peer
// surfaces as a recoverable ErrDeckSync instead of blocking forever.
func New(ctx context.Context, cat *catalog.Catalog, opts Options) (*Game, error) {
	if opts.Peer == nil {
		return nil, fmt.Errorf("%w: no peer handle", ErrDeckSync)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Game{
		cat:     cat,
		logger:  logger,
		isFirst: opts.IsFirst,
		day:     1,
		state:   StateTurnBegin,
	}
	if g.isFirst {
		g.playerPID, g.opponentPID = 1, 0
	} else {
		g.playerPID, g.opponentPID = 0, 1
	}
	g.players[g.playerPID] = NewPlayer(g.playerPID, opts.PlayerName, cat.HoursPerDay)
	g.players[g.opponentPID] = NewPlayer(g.opponentPID, opts.OpponentName, cat.HoursPerDay)

	if err := g.createDeck(ctx, opts.Peer, opts.Rand); err != nil {
		return nil, err
	}
	g.dealCards()

	// Both peers hold an identical deck after the handshake; seeding the
	// engine RNG from it keeps chance events consistent across peers.
	g.rng = rand.New(rand.NewSource(int64(deckSeed(g.deck))))

	logger.Info("game constructed",
		zap.Bool("is_first", g.isFirst),
		zap.Int("player_pid", g.playerPID),
		zap.Int("deck_size", len(g.deck)),
	)
	return g, nil
}

// createDeck runs the UNINITIALIZED -> DECK_READY half of the dealing
// state machine. The authority samples deckSize card ids uniformly with
// replacement from the dealable catalog cards; the other peer adopts
// whatever arrives on the create_deck channel.
func (g *Game) createDeck(ctx context.Context, peer DeckSync, rng *rand.Rand) error {
	if g.isFirst {
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		pool := g.cat.DealableCards()
		g.deck = make([]catalog.CardID, g.cat.DeckSize)
		for i := range g.deck {
			g.deck[i] = pool[rng.Intn(len(pool))]
		}
		if err := peer.SendDeck(g.deck); err != nil {
			return fmt.Errorf("%w: sending deck: %v", ErrDeckSync, err)
		}
		return nil
	}

	deck, err := peer.AwaitDeck(ctx)
	if err != nil {
		return fmt.Errorf("%w: waiting for deck: %v", ErrDeckSync, err)
	}
	if len(deck) != g.cat.DeckSize {
		return fmt.Errorf("%w: received %d cards, expected %d", ErrDeckSync, len(deck), g.cat.DeckSize)
	}
	for _, id := range deck {
		if _, ok := g.cat.Cards[id]; !ok {
			return fmt.Errorf("%w: received unknown card %q", ErrDeckSync, id)
		}
	}
	g.deck = deck
	return nil
}

// dealCards distributes the deck prefix: pid 1 takes the first hand, pid
// 0 the next one. The split is pid-based rather than local/remote so
// both peers deal identically.
func (g *Game) dealCards() {
	h := g.cat.HandSize
	g.players[1].TakeCards(g.deck[:h]...)
	g.players[0].TakeCards(g.deck[h : 2*h]...)
	g.deck = g.deck[2*h:]
}

func deckSeed(deck []catalog.CardID) uint64 {
	h := fnv.New64a()
	for _, id := range deck {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Catalog returns the immutable definition set the game was built from.
func (g *Game) Catalog() *catalog.Catalog { return g.cat }

// PlayerPID returns the pid of the local player on this peer.
func (g *Game) PlayerPID() PlayerID { return g.playerPID }

// OpponentPID returns the pid of the remote player on this peer.
func (g *Game) OpponentPID() PlayerID { return g.opponentPID }

// Day returns the current in-game day, starting at 1.
func (g *Game) Day() catalog.Day { return g.day }

// DeckSize returns the number of undrawn cards.
func (g *Game) DeckSize() int { return len(g.deck) }

// State returns the current turn-machine state.
func (g *Game) State() TurnState { return g.state }

// Outcome returns the terminal result, or OutcomeNone while the match is
// live.
func (g *Game) Outcome() Outcome { return g.outcome }

func (g *Game) player(pid PlayerID) (*Player, error) {
	if pid != 0 && pid != 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, pid)
	}
	return g.players[pid], nil
}

// CardAt resolves the card id at idx in pid's hand without mutating it.
func (g *Game) CardAt(pid PlayerID, idx int) (catalog.Card, error) {
	p, err := g.player(pid)
	if err != nil {
		return catalog.Card{}, err
	}
	if idx < 0 || idx >= len(p.Hand) {
		return catalog.Card{}, fmt.Errorf("%w: hand index %d with %d cards", ErrIndexOutOfRange, idx, len(p.Hand))
	}
	return g.cat.Cards[p.Hand[idx]], nil
}
