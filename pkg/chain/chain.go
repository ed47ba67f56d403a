package chain

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vibe-coding/cliprelay/pkg/clip"
	"github.com/vibe-coding/cliprelay/pkg/relay"
)

// Event tags on the relay.
const (
	TagCopy     = "copy-event"
	TagDelete   = "delete-event"
	TagPrint    = "print-event"
	TagWindow   = "window-event"
	TagCaptured = "captured-event"

	// TagEnigo is an older name for TagCopy, accepted in hotkey bindings.
	TagEnigo = "enigo-event"
)

// Stage is a step of the copy/delete/print chain.
type Stage int

const (
	StageCopy Stage = iota
	StageDelete
	StagePrint
	StageDone
)

// Next returns the stage that follows s. StageDone is terminal.
func Next(s Stage) Stage {
	switch s {
	case StageCopy:
		return StageDelete
	case StageDelete:
		return StagePrint
	}
	return StageDone
}

// Tag returns the relay tag that triggers s, or "" for StageDone.
func (s Stage) Tag() string {
	switch s {
	case StageCopy:
		return TagCopy
	case StageDelete:
		return TagDelete
	case StagePrint:
		return TagPrint
	}
	return ""
}

func (s Stage) String() string {
	if s == StageDone {
		return "done"
	}
	return s.Tag()
}

// Keyboard synthesizes the two keystroke sequences the chain needs.
type Keyboard interface {
	Copy() error
	Delete() error
}

// Recorder receives capture statistics. The captured text itself is not
// passed on.
type Recorder interface {
	RecordCapture(length int, at time.Time) error
}

type Options struct {
	Keyboard  Keyboard
	Clipboard clip.Clipboard
	Recorder  Recorder // optional
	Logger    *slog.Logger
	Now       func() time.Time
}

// Chain holds the stateless handlers for each stage.
type Chain struct {
	keys     Keyboard
	clip     clip.Clipboard
	recorder Recorder
	log      *slog.Logger
	now      func() time.Time
	relay    *relay.Relay
}

func New(opts Options) *Chain {
	c := &Chain{
		keys:     opts.Keyboard,
		clip:     opts.Clipboard,
		recorder: opts.Recorder,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Register installs the stage handlers and the window handler on r.
func (c *Chain) Register(r *relay.Relay) error {
	if c.keys == nil || c.clip == nil {
		return fmt.Errorf("chain: keyboard and clipboard are required")
	}
	c.relay = r

	handlers := []struct {
		tag string
		h   relay.Handler
	}{
		{TagCopy, c.onCopy},
		{TagDelete, c.onDelete},
		{TagPrint, c.onPrint},
		{TagWindow, c.onWindow},
	}
	for _, h := range handlers {
		if err := r.Listen(h.tag, h.h); err != nil {
			return fmt.Errorf("chain: register %s: %w", h.tag, err)
		}
	}
	return nil
}

// Start begins a new run with a fresh run ID. It returns once the whole
// chain has been handled on the calling goroutine.
func (c *Chain) Start(source string) error {
	if c.relay == nil {
		return fmt.Errorf("chain: not registered")
	}
	id := uuid.NewString()
	c.log.Info("chain started", "run", id, "source", source)
	err := c.relay.Emit(StageCopy.Tag(), id)
	if err != nil {
		c.log.Error("chain failed", "run", id, "error", err)
	}
	return err
}

func (c *Chain) onCopy(ev relay.Event) error {
	c.log.Debug("copy handle", "run", ev.Payload)
	if err := c.keys.Copy(); err != nil {
		return err
	}
	return c.advance(StageCopy, ev.Payload)
}

func (c *Chain) onDelete(ev relay.Event) error {
	c.log.Debug("delete handle", "run", ev.Payload)
	if err := c.keys.Delete(); err != nil {
		return err
	}
	return c.advance(StageDelete, ev.Payload)
}

func (c *Chain) onPrint(ev relay.Event) error {
	text := clip.ReadOrEmpty(c.clip, c.log)
	c.log.Info("copied", "run", ev.Payload, "text", text)

	if c.recorder != nil {
		if err := c.recorder.RecordCapture(len(text), c.now()); err != nil {
			c.log.Warn("failed to record capture", "run", ev.Payload, "error", err)
		}
	}
	// Listeners of the captured text are outside the chain; their failures
	// are not the chain's.
	if err := c.relay.Emit(TagCaptured, text); err != nil {
		c.log.Warn("captured listener failed", "run", ev.Payload, "error", err)
	}
	return nil
}

func (c *Chain) onWindow(ev relay.Event) error {
	c.log.Info("window", "payload", ev.Payload)
	return nil
}

func (c *Chain) advance(from Stage, runID string) error {
	next := Next(from)
	if next == StageDone {
		return nil
	}
	return c.relay.Emit(next.Tag(), runID)
}
