package netplay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

// ErrPeerClosed reports a send or receive on a link that has shut down.
var ErrPeerClosed = errors.New("peer connection closed")

// Peer is one end of the two-player link. Implementations deliver
// messages in the order the remote side sent them.
type Peer interface {
	// Send transmits one message to the remote side.
	Send(Message) error
	// Next blocks for the next inbound message.
	Next(ctx context.Context) (Message, error)
	// SendDeck transmits the deck-sync payload.
	SendDeck(ids []catalog.CardID) error
	// AwaitDeck blocks until a create_deck message arrives. Other
	// messages received first are retained and delivered by Next later.
	AwaitDeck(ctx context.Context) ([]catalog.CardID, error)
	Close() error
}

// WSPeer is a Peer over a gorilla websocket connection.
type WSPeer struct {
	conn    *websocket.Conn
	logger  *zap.Logger
	matchID uuid.UUID

	inbound  chan Message
	deferred []Message

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// PlayPath is the websocket endpoint the host serves and the joiner
// dials.
const PlayPath = "/play"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Host listens on addr, accepts exactly one websocket peer and performs
// the hello handshake as the match-id authority. The listener stops
// accepting once the peer is connected.
func Host(ctx context.Context, addr string, logger *zap.Logger) (*WSPeer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	connCh := make(chan *websocket.Conn, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(PlayPath, func(w http.ResponseWriter, r *http.Request) {
		conn, upErr := upgrader.Upgrade(w, r, nil)
		if upErr != nil {
			logger.Warn("websocket upgrade failed", zap.Error(upErr))
			return
		}
		select {
		case connCh <- conn:
		default:
			// A peer is already seated; this is a two-player game.
			conn.Close()
		}
	})
	srv := &http.Server{Handler: mux}
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Warn("peer listener stopped", zap.Error(serveErr))
		}
	}()

	logger.Info("waiting for peer", zap.String("addr", ln.Addr().String()))
	var conn *websocket.Conn
	select {
	case conn = <-connCh:
	case <-ctx.Done():
		srv.Close()
		return nil, fmt.Errorf("waiting for peer: %w", ctx.Err())
	}
	// The websocket connection is hijacked; closing the listener does not
	// touch it.
	ln.Close()

	p := newWSPeer(conn, logger)
	p.matchID = uuid.New()
	if err := p.Send(HelloMessage(p.matchID.String())); err != nil {
		p.Close()
		return nil, fmt.Errorf("sending hello: %w", err)
	}
	p.start()
	logger.Info("peer connected", zap.String("match_id", p.matchID.String()))
	return p, nil
}

// Dial connects to a hosting peer at rawURL (e.g. ws://host:port/play)
// and waits for its hello.
func Dial(ctx context.Context, rawURL string, logger *zap.Logger) (*WSPeer, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "ws://" + rawURL
	}
	if !strings.HasSuffix(rawURL, PlayPath) {
		rawURL = strings.TrimRight(rawURL, "/") + PlayPath
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", rawURL, err)
	}

	p := newWSPeer(conn, logger)
	// The hello arrives before the read pump starts, so read it directly.
	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("reading hello: %w", err)
	}
	msg, err := Decode(string(data))
	if err != nil || msg.Action != ActionHello || len(msg.Args) != 1 {
		conn.Close()
		return nil, fmt.Errorf("expected hello, got %q", string(data))
	}
	id, err := uuid.Parse(msg.Args[0])
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("parsing match id: %w", err)
	}
	p.matchID = id
	p.start()
	logger.Info("connected to host", zap.String("match_id", id.String()))
	return p, nil
}

func newWSPeer(conn *websocket.Conn, logger *zap.Logger) *WSPeer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSPeer{
		conn:    conn,
		logger:  logger,
		inbound: make(chan Message, 64),
		done:    make(chan struct{}),
	}
}

// MatchID returns the id agreed in the hello exchange.
func (p *WSPeer) MatchID() uuid.UUID { return p.matchID }

func (p *WSPeer) start() {
	go p.readPump()
}

// readPump drains the connection and feeds the inbound queue until the
// link drops. A single websocket frame may carry several newline
// separated wire lines.
func (p *WSPeer) readPump() {
	defer close(p.inbound)
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			select {
			case <-p.done:
			default:
				p.logger.Info("peer link closed", zap.Error(err))
			}
			return
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line == "" {
				continue
			}
			msg, decErr := Decode(line)
			if decErr != nil {
				p.logger.Warn("dropping malformed message", zap.String("line", line), zap.Error(decErr))
				continue
			}
			select {
			case p.inbound <- msg:
			case <-p.done:
				return
			}
		}
	}
}

func (p *WSPeer) Send(m Message) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	select {
	case <-p.done:
		return ErrPeerClosed
	default:
	}
	if err := p.conn.WriteMessage(websocket.TextMessage, []byte(m.Encode())); err != nil {
		return fmt.Errorf("sending %s: %w", m.Action, err)
	}
	return nil
}

func (p *WSPeer) Next(ctx context.Context) (Message, error) {
	if len(p.deferred) > 0 {
		msg := p.deferred[0]
		p.deferred = p.deferred[1:]
		return msg, nil
	}
	select {
	case msg, ok := <-p.inbound:
		if !ok {
			return Message{}, ErrPeerClosed
		}
		return msg, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (p *WSPeer) SendDeck(ids []catalog.CardID) error {
	return p.Send(DeckMessage(ids))
}

func (p *WSPeer) AwaitDeck(ctx context.Context) ([]catalog.CardID, error) {
	for {
		select {
		case msg, ok := <-p.inbound:
			if !ok {
				return nil, ErrPeerClosed
			}
			if msg.Action == ActionCreateDeck {
				return msg.DeckPayload()
			}
			p.deferred = append(p.deferred, msg)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (p *WSPeer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		p.writeMu.Lock()
		p.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		p.writeMu.Unlock()
		err = p.conn.Close()
	})
	return err
}
