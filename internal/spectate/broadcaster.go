// Package spectate serves a running battle over HTTP and websockets. One
// goroutine owns the driver; everything else talks to it through channels.
package spectate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

const (
	frameInterval = 50 * time.Millisecond
	writeWait     = 2 * time.Second
)

// ErrNotPlayerUnit rejects outside requests for AI-driven units.
var ErrNotPlayerUnit = errors.New("unit is not player-controlled")

// ErrStopped is returned once the broadcaster loop has exited.
var ErrStopped = errors.New("broadcaster stopped")

// Frame is the message pushed to every spectator.
type Frame struct {
	Type     string         `json:"type"` // "snapshot" or "error"
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Events   []string       `json:"events,omitempty"`
	Outcome  string         `json:"outcome,omitempty"`
	Paused   bool           `json:"paused"`
	Speed    float64        `json:"speed"`
	Error    string         `json:"error,omitempty"`
}

type submission struct {
	unit  game.UnitID
	req   game.ActionRequest
	reply chan error      // HTTP callers wait here
	conn  *websocket.Conn // socket callers get an error frame instead
	err   error           // set when the message was rejected before decoding
}

// Broadcaster runs the driver and fans snapshots out to websocket clients.
type Broadcaster struct {
	driver *game.Driver
	log    zerolog.Logger

	clients    map[*websocket.Conn]bool // Run goroutine only
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	submit     chan submission
	control    chan func()
	done       chan struct{}

	mu     sync.RWMutex
	latest Frame
	paused bool
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// StartPaused holds the battle until a client unpauses it.
func StartPaused() Option {
	return func(b *Broadcaster) {
		b.paused = true
	}
}

// WithLogger sets the operational logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Broadcaster) {
		b.log = l
	}
}

// NewBroadcaster wraps d. Call Run to start the battle.
func NewBroadcaster(d *game.Driver, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		driver:     d,
		log:        zerolog.Nop(),
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		submit:     make(chan submission),
		control:    make(chan func()),
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}
	b.publish(nil)
	return b
}

// Run owns the driver until ctx is cancelled. Wall time is fed to the driver
// every frame; the driver turns it into whole ticks.
func (b *Broadcaster) Run(ctx context.Context) error {
	defer close(b.done)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			for conn := range b.clients {
				_ = conn.Close()
			}
			b.clients = map[*websocket.Conn]bool{}
			return ctx.Err()

		case conn := <-b.register:
			b.clients[conn] = true
			b.send(conn, b.Latest())
			b.log.Debug().Int("clients", len(b.clients)).Msg("spectator joined")

		case conn := <-b.unregister:
			if b.clients[conn] {
				delete(b.clients, conn)
				_ = conn.Close()
				b.log.Debug().Int("clients", len(b.clients)).Msg("spectator left")
			}

		case s := <-b.submit:
			err := s.err
			if err == nil {
				err = b.accept(s.unit, s.req)
			}
			if s.reply != nil {
				s.reply <- err
			}
			if err != nil {
				if s.conn != nil && b.clients[s.conn] {
					b.send(s.conn, Frame{Type: "error", Error: err.Error()})
				}
				continue
			}
			b.broadcast(b.publish(nil))

		case fn := <-b.control:
			fn()
			b.broadcast(b.publish(nil))

		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if b.isPaused() || b.finished() {
				continue
			}
			reps := b.driver.Advance(elapsed)
			if len(reps) == 0 {
				continue
			}
			var events []string
			for _, rep := range reps {
				for _, r := range rep.Resolutions {
					events = append(events, r.String())
				}
			}
			b.broadcast(b.publish(events))
		}
	}
}

// accept runs on the loop goroutine.
func (b *Broadcaster) accept(id game.UnitID, req game.ActionRequest) error {
	w := b.driver.World()
	u, ok := w.Unit(id)
	if !ok {
		return fmt.Errorf("unit %d: %w", id, game.ErrUnknownUnit)
	}
	if u.Controller() != game.ControllerPlayer {
		return fmt.Errorf("%s: %w", u.Label(), ErrNotPlayerUnit)
	}
	return w.Submit(id, req)
}

func (b *Broadcaster) finished() bool {
	return game.DetermineBattleOutcome(b.driver.World()).Outcome != game.OutcomeInconclusive
}

// publish rebuilds the latest frame from the world. Loop goroutine only.
func (b *Broadcaster) publish(events []string) Frame {
	w := b.driver.World()
	snap := w.Snapshot()
	f := Frame{
		Type:     "snapshot",
		Snapshot: &snap,
		Events:   events,
		Speed:    b.driver.Speed(),
	}
	if out := game.DetermineBattleOutcome(w); out.Outcome != game.OutcomeInconclusive {
		f.Outcome = out.Description
	}
	b.mu.Lock()
	f.Paused = b.paused
	b.latest = f
	b.mu.Unlock()
	return f
}

func (b *Broadcaster) broadcast(f Frame) {
	for conn := range b.clients {
		b.send(conn, f)
	}
}

// send writes one frame; a failed client is dropped on the spot.
func (b *Broadcaster) send(conn *websocket.Conn, f Frame) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(f); err != nil {
		b.log.Debug().Err(err).Msg("spectator write failed")
		delete(b.clients, conn)
		_ = conn.Close()
	}
}

func (b *Broadcaster) isPaused() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.paused
}

// Latest returns the most recent frame. Safe from any goroutine.
func (b *Broadcaster) Latest() Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest
}

// Register adds a websocket client.
func (b *Broadcaster) Register(conn *websocket.Conn) error {
	select {
	case b.register <- conn:
		return nil
	case <-b.done:
		return ErrStopped
	}
}

// Unregister drops a websocket client.
func (b *Broadcaster) Unregister(conn *websocket.Conn) {
	select {
	case b.unregister <- conn:
	case <-b.done:
		_ = conn.Close()
	}
}

// Submit queues req for a player unit and waits for the verdict.
func (b *Broadcaster) Submit(ctx context.Context, id game.UnitID, req game.ActionRequest) error {
	reply := make(chan error, 1)
	select {
	case b.submit <- submission{unit: id, req: req, reply: reply}:
	case <-b.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-reply
}

// submitFrom queues req on behalf of a socket; failures come back as frames.
func (b *Broadcaster) submitFrom(conn *websocket.Conn, id game.UnitID, req game.ActionRequest) {
	select {
	case b.submit <- submission{unit: id, req: req, conn: conn}:
	case <-b.done:
	}
}

// rejectFrom sends err back to a socket as an error frame.
func (b *Broadcaster) rejectFrom(conn *websocket.Conn, err error) {
	select {
	case b.submit <- submission{conn: conn, err: err}:
	case <-b.done:
	}
}

func (b *Broadcaster) do(fn func()) {
	select {
	case b.control <- fn:
	case <-b.done:
	}
}

// SetSpeed changes the time multiplier.
func (b *Broadcaster) SetSpeed(mult float64) {
	b.do(func() { b.driver.SetSpeed(mult) })
}

// TogglePause pauses or resumes the battle.
func (b *Broadcaster) TogglePause() {
	b.do(func() {
		b.mu.Lock()
		b.paused = !b.paused
		b.mu.Unlock()
	})
}
