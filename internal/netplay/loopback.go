package netplay

import (
	"context"
	"sync"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

// Loopback is an in-process Peer, used by tests and by the engine's
// end-to-end scenarios to run two game instances against each other
// without a socket.
type Loopback struct {
	in        chan Message
	out       chan Message
	deferred  []Message
	closed    chan struct{}
	closeOnce *sync.Once
}

// NewLoopbackPair returns two connected peers: everything sent on one is
// delivered on the other.
func NewLoopbackPair() (*Loopback, *Loopback) {
	ab := make(chan Message, 256)
	ba := make(chan Message, 256)
	closed := make(chan struct{})
	once := new(sync.Once)
	a := &Loopback{in: ba, out: ab, closed: closed, closeOnce: once}
	b := &Loopback{in: ab, out: ba, closed: closed, closeOnce: once}
	return a, b
}

func (l *Loopback) Send(m Message) error {
	select {
	case <-l.closed:
		return ErrPeerClosed
	case l.out <- m:
		return nil
	}
}

func (l *Loopback) Next(ctx context.Context) (Message, error) {
	if len(l.deferred) > 0 {
		msg := l.deferred[0]
		l.deferred = l.deferred[1:]
		return msg, nil
	}
	select {
	case msg := <-l.in:
		return msg, nil
	case <-l.closed:
		return Message{}, ErrPeerClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (l *Loopback) SendDeck(ids []catalog.CardID) error {
	return l.Send(DeckMessage(ids))
}

func (l *Loopback) AwaitDeck(ctx context.Context) ([]catalog.CardID, error) {
	for {
		select {
		case msg := <-l.in:
			if msg.Action == ActionCreateDeck {
				return msg.DeckPayload()
			}
			l.deferred = append(l.deferred, msg)
		case <-l.closed:
			return nil, ErrPeerClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close shuts down both ends of the pair.
func (l *Loopback) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	return nil
}
