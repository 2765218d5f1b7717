// Package events bridges controller notifications onto a mangos pub/sub
// socket so detail panels in other processes can follow the selection.
//
// Each message is the event kind, a colon, then the JSON-encoded event.
// Subscribers filter on the "<kind>:" prefix.
package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/cluso-netgraph/pkg/logging"
	"github.com/dd0wney/cluso-netgraph/pkg/viewport"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// ErrClosed is returned by a publisher or subscriber after Close.
var ErrClosed = errors.New("events: closed")

const separator = ':'

// Topic is the subscription prefix for kind.
func Topic(kind viewport.EventKind) []byte {
	return append([]byte(kind), separator)
}

// Encode frames an event for the wire.
func Encode(ev viewport.Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Kind, err)
	}
	return append(Topic(ev.Kind), body...), nil
}

// Decode parses a framed event. The topic must match the body's kind.
func Decode(msg []byte) (viewport.Event, error) {
	var ev viewport.Event
	i := bytes.IndexByte(msg, separator)
	if i <= 0 {
		return ev, fmt.Errorf("decode event: missing topic")
	}
	if err := json.Unmarshal(msg[i+1:], &ev); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	if string(msg[:i]) != string(ev.Kind) {
		return ev, fmt.Errorf("decode event: topic %q does not match kind %q", msg[:i], ev.Kind)
	}
	return ev, nil
}

// Publisher owns a listening PUB socket.
type Publisher struct {
	mu     sync.Mutex
	sock   mangos.Socket
	addr   string
	logger logging.Logger
	closed bool
	sent   int
	detach []func()
}

// NewPublisher binds a PUB socket to addr, e.g. tcp://127.0.0.1:40899.
func NewPublisher(addr string, logger logging.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind PUB socket to %s: %w", addr, err)
	}
	logger = logger.With(logging.Component("events"))
	logger.Info("event publisher bound", logging.String("addr", addr))
	return &Publisher{sock: sock, addr: addr, logger: logger}, nil
}

// Addr is the bound address.
func (p *Publisher) Addr() string { return p.addr }

// Sent is the number of events handed to the socket.
func (p *Publisher) Sent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

// Publish sends one event. PUB never blocks; events are dropped for
// subscribers that are not connected or not keeping up.
func (p *Publisher) Publish(ev viewport.Event) error {
	msg, err := Encode(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.sock.Send(msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	p.sent++
	return nil
}

// Attach forwards every event of c until Close. Send failures are logged.
func (p *Publisher) Attach(c *viewport.Controller) {
	unsubscribe := c.Subscribe(func(ev viewport.Event) {
		if err := p.Publish(ev); err != nil && !errors.Is(err, ErrClosed) {
			p.logger.Warn("event publish failed", logging.Error(err))
		}
	})
	p.mu.Lock()
	p.detach = append(p.detach, unsubscribe)
	p.mu.Unlock()
}

// Close detaches from controllers and closes the socket.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	detach := p.detach
	p.detach = nil
	p.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
	return p.sock.Close()
}

// Subscriber owns a dialled SUB socket.
type Subscriber struct {
	sock mangos.Socket
}

// NewSubscriber dials addr and subscribes to kinds, or to everything when
// none are given.
func NewSubscriber(addr string, kinds ...viewport.EventKind) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}

	topics := [][]byte{{}}
	if len(kinds) > 0 {
		topics = topics[:0]
		for _, k := range kinds {
			topics = append(topics, Topic(k))
		}
	}
	for _, t := range topics {
		if err := sock.SetOption(mangos.OptionSubscribe, t); err != nil {
			sock.Close()
			return nil, fmt.Errorf("failed to subscribe to %q: %w", t, err)
		}
	}

	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to connect SUB socket to %s: %w", addr, err)
	}
	return &Subscriber{sock: sock}, nil
}

// Receive waits up to timeout for the next event; 0 waits forever.
func (s *Subscriber) Receive(timeout time.Duration) (viewport.Event, error) {
	if err := s.sock.SetOption(mangos.OptionRecvDeadline, timeout); err != nil {
		return viewport.Event{}, fmt.Errorf("set receive deadline: %w", err)
	}
	msg, err := s.sock.Recv()
	if err != nil {
		if errors.Is(err, mangos.ErrClosed) {
			return viewport.Event{}, ErrClosed
		}
		return viewport.Event{}, err
	}
	return Decode(msg)
}

// Close closes the socket.
func (s *Subscriber) Close() error {
	return s.sock.Close()
}
