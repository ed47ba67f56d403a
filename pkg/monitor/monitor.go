package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vibe-coding/cliprelay/pkg/chain"
	"github.com/vibe-coding/cliprelay/pkg/clip"
	"github.com/vibe-coding/cliprelay/pkg/config"
	"github.com/vibe-coding/cliprelay/pkg/hotkey"
	"github.com/vibe-coding/cliprelay/pkg/relay"
	"github.com/vibe-coding/cliprelay/pkg/state"
	"github.com/vibe-coding/cliprelay/pkg/timer"
	"github.com/vibe-coding/cliprelay/pkg/watch"
)

// Chain start sources, as logged.
const (
	SourceHotkey = "hotkey"
	SourceTimer  = "timer"
	SourceManual = "manual"
)

type Options struct {
	Config    *config.Config
	Keyboard  chain.Keyboard
	Clipboard clip.Clipboard
	Hook      hotkey.Hook
	State     *state.Manager // optional
	// StatePath enables live reload of the state file when set.
	StatePath string
	// OnCapture receives the text of every completed chain.
	OnCapture func(text string)
	// Ticks replaces the timer's ticker, for tests.
	Ticks  <-chan time.Time
	Logger *slog.Logger
}

// Monitor owns the relay and every event source feeding it.
type Monitor struct {
	cfg       *config.Config
	relay     *relay.Relay
	chain     *chain.Chain
	listener  *hotkey.Listener
	state     *state.Manager
	statePath string
	ticks     <-chan time.Time
	log       *slog.Logger
}

// New registers every handler and hotkey, then seals the relay. Any
// registration failure is returned and must abort startup.
func New(opts Options) (*Monitor, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("monitor: nil config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{
		cfg:       opts.Config,
		relay:     relay.New(logger.With("component", "relay")),
		state:     opts.State,
		statePath: opts.StatePath,
		ticks:     opts.Ticks,
		log:       logger,
	}

	chainOpts := chain.Options{
		Keyboard:  opts.Keyboard,
		Clipboard: opts.Clipboard,
		Logger:    logger.With("component", "chain"),
	}
	if opts.State != nil {
		chainOpts.Recorder = opts.State
	}
	m.chain = chain.New(chainOpts)
	if err := m.chain.Register(m.relay); err != nil {
		return nil, err
	}

	if opts.Hook != nil {
		m.listener = hotkey.NewListener(opts.Hook, logger.With("component", "hotkey"))
		for i, hk := range opts.Config.Hotkeys {
			fire, err := m.hotkeyAction(hk)
			if err != nil {
				return nil, fmt.Errorf("monitor: hotkeys[%d]: %w", i, err)
			}
			if err := m.listener.Bind(hk.Combo, fire); err != nil {
				return nil, fmt.Errorf("monitor: hotkeys[%d]: %w", i, err)
			}
		}
	}

	if opts.OnCapture != nil {
		err := m.relay.Listen(chain.TagCaptured, func(ev relay.Event) error {
			opts.OnCapture(ev.Payload)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("monitor: %w", err)
		}
	}

	m.relay.Seal()
	return m, nil
}

func (m *Monitor) hotkeyAction(hk config.HotkeyConfig) (func(), error) {
	tag, ok := config.EventTag(hk.Event)
	if !ok {
		return nil, fmt.Errorf("unknown event %q", hk.Event)
	}
	if tag == chain.TagCopy {
		return func() { m.chain.Start(SourceHotkey) }, nil
	}
	return func() {
		m.log.Debug("hotkey pressed", "event", tag)
		if err := m.relay.Emit(tag, hk.Payload); err != nil {
			m.log.Error("hotkey event failed", "event", tag, "error", err)
		}
	}, nil
}

func (m *Monitor) boundHotkeys() int {
	if m.listener == nil {
		return 0
	}
	return m.listener.Bound()
}

// Trigger runs one chain on the calling goroutine.
func (m *Monitor) Trigger(source string) error {
	return m.chain.Start(source)
}

// Run starts the hotkey listener, the timer and the state watcher and
// blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				m.log.Error("component stopped", "component", name, "error", err)
				errOnce.Do(func() { firstErr = err })
				cancel()
			}
		}()
	}

	if m.listener != nil {
		run("hotkey", m.listener.Run)
	}
	if m.cfg.Timer.Enabled {
		t := &timer.Timer{
			Interval: m.cfg.Interval(),
			Fire:     func() { m.chain.Start(SourceTimer) },
			Ticks:    m.ticks,
			Logger:   m.log.With("component", "timer"),
		}
		if m.state != nil {
			t.Active = m.state.IsActive
		}
		run("timer", t.Run)
	}
	if m.state != nil && m.statePath != "" {
		w := &watch.File{
			Path:     m.statePath,
			OnChange: m.state.Reload,
			Logger:   m.log.With("component", "watch"),
		}
		run("watch", w.Run)
	}

	m.log.Info("monitor started",
		"hotkeys", m.boundHotkeys(),
		"capture_listeners", m.relay.Listeners(chain.TagCaptured),
		"timer", m.cfg.Timer.Enabled)
	<-ctx.Done()
	wg.Wait()
	m.log.Info("monitor stopped")
	return firstErr
}
