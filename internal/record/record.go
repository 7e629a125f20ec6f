// Package record owns the lifecycle of the single recording session:
// one audio-capture plus speech-recognition pair tied to one event.
//
// The controller is a small state machine, Idle → Recording ⇄ Paused →
// Idle. Its active Session is the only "recording in progress" signal;
// there is no separate flag.
package record

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/myasin/meetnotes/internal/clock"
	"github.com/myasin/meetnotes/internal/model"
	"github.com/myasin/meetnotes/internal/transcript"
)

// DefaultSettleDelay bounds the wait for a final recognition callback
// after stop before the transcript is committed.
const DefaultSettleDelay = 500 * time.Millisecond

// Stream is one open capture + recognition session. Results delivers
// recognition callbacks in emission order and is closed once the stream
// has fully stopped.
type Stream interface {
	Results() <-chan []transcript.Result
	// Pause suspends recognition; capture is paused by the same call on
	// the recorder side.
	Pause() error
	Resume() error
	// Stop ends recognition and capture and releases all device handles.
	Stop() error
}

// Recorder opens capture/recognition streams. Open fails with
// model.ErrDevice when the microphone is denied or absent, and with
// model.ErrUnsupported when the platform offers no speech recognition.
type Recorder interface {
	Open() (Stream, error)
}

// EventStore is the slice of the repository the controller needs.
type EventStore interface {
	GetEvent(id int64) (model.Event, error)
	SetTranscription(id int64, text string) error
}

// Session describes the one active recording, if any.
type Session struct {
	ID        string
	EventID   int64
	StartedAt time.Time
	Paused    bool
}

// Controller manages at most one session system-wide.
type Controller struct {
	recorder Recorder
	store    EventStore

	// OnUpdate, when set, receives the live display text after every
	// recognition callback. It must treat the text as read-only.
	OnUpdate func(eventID int64, text string)

	clock  clock.Clock
	settle time.Duration

	mu     sync.Mutex
	active *Session
	stream Stream
	asm    *transcript.Assembler
	done   chan struct{}
}

// New creates an idle controller.
func New(rec Recorder, store EventStore) *Controller {
	return &Controller{
		recorder: rec,
		store:    store,
		clock:    clock.System{},
		settle:   DefaultSettleDelay,
	}
}

// Start opens a session for the given event. A session already running
// for another event is fully stopped first, through the same path as an
// explicit stop.
func (c *Controller) Start(eventID int64) (Session, error) {
	if err := c.Stop(); err != nil {
		return Session{}, fmt.Errorf("stop prior session: %w", err)
	}

	ev, err := c.store.GetEvent(eventID)
	if err != nil {
		return Session{}, err
	}

	stream, err := c.recorder.Open()
	if err != nil {
		return Session{}, err
	}

	c.mu.Lock()
	sess := &Session{
		ID:        uuid.NewString(),
		EventID:   eventID,
		StartedAt: c.clock.Now(),
	}
	c.active = sess
	c.stream = stream
	c.asm = transcript.NewAssembler(ev.Transcription, sess.StartedAt)
	c.done = make(chan struct{})
	go c.consume(stream, c.asm, eventID, c.done)
	c.mu.Unlock()

	return *sess, nil
}

// consume applies recognition callbacks in delivery order until the
// stream closes. The assembler is bound to this session at start; a
// later session never shares it.
func (c *Controller) consume(stream Stream, asm *transcript.Assembler, eventID int64, done chan struct{}) {
	defer close(done)
	for batch := range stream.Results() {
		c.mu.Lock()
		asm.Apply(batch)
		text := asm.Display()
		cb := c.OnUpdate
		c.mu.Unlock()

		if cb != nil {
			cb(eventID, text)
		}
	}
}

// Pause suspends recognition. A no-op when idle or already paused.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.active.Paused {
		return nil
	}
	if err := c.stream.Pause(); err != nil {
		return fmt.Errorf("pause stream: %w", err)
	}
	c.active.Paused = true
	return nil
}

// Resume restarts recognition after a pause. A no-op when idle or not
// paused.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || !c.active.Paused {
		return nil
	}
	if err := c.stream.Resume(); err != nil {
		return fmt.Errorf("resume stream: %w", err)
	}
	c.active.Paused = false
	return nil
}

// Stop ends the session, releases the streams, and commits the
// accumulated transcript to the owning event. Idempotent: stopping twice
// or while idle is a no-op. Device handles are released even if the final
// recognition callback never fires; the wait for it is bounded by the
// settling delay.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return nil
	}
	// Take everything belonging to this session in one locked section so
	// a Start landing during the settling wait can never hand its
	// assembler to this stop.
	sess := c.active
	stream := c.stream
	done := c.done
	asm := c.asm
	c.active = nil
	c.stream = nil
	c.asm = nil
	c.mu.Unlock()

	stopErr := stream.Stop()

	select {
	case <-done:
	case <-time.After(c.settle):
	}

	if stopErr != nil {
		return fmt.Errorf("stop stream: %w", stopErr)
	}

	// The consume goroutine may still be applying late callbacks when the
	// settling wait times out.
	c.mu.Lock()
	dirty := asm.Dirty()
	text := asm.Final()
	c.mu.Unlock()

	if !dirty {
		// Session produced no finalized text; leave the event unchanged.
		return nil
	}
	return c.store.SetTranscription(sess.EventID, text)
}

// Active returns the running session, or nil when idle.
func (c *Controller) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil
	}
	s := *c.active
	return &s
}

// Recording reports whether the given event is the one being recorded.
func (c *Controller) Recording(eventID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil && c.active.EventID == eventID
}
