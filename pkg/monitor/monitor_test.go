package monitor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vibe-coding/cliprelay/pkg/config"
	"github.com/vibe-coding/cliprelay/pkg/hotkey"
	"github.com/vibe-coding/cliprelay/pkg/state"
	"github.com/vibe-coding/cliprelay/pkg/storage"
)

type MockKeyboard struct {
	mu      sync.Mutex
	copies  int
	deletes int
}

func (m *MockKeyboard) Copy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copies++
	return nil
}

func (m *MockKeyboard) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	return nil
}

type MockClipboard struct {
	mu      sync.Mutex
	content string
	reads   int
}

func (m *MockClipboard) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return m.content, nil
}

func (m *MockClipboard) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// MockHook stores callbacks so tests can press combos.
type MockHook struct {
	mu  sync.Mutex
	cbs map[string]func()
}

func (h *MockHook) Register(keys []string, cb func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cbs == nil {
		h.cbs = map[string]func(){}
	}
	h.cbs[strings.Join(keys, "+")] = cb
}

func (h *MockHook) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (h *MockHook) Press(combo string) {
	h.mu.Lock()
	cb := h.cbs[combo]
	h.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Timer.Enabled = false
	return cfg
}

func TestMonitor_HotkeyStartsChain(t *testing.T) {
	kb := &MockKeyboard{}
	cb := &MockClipboard{content: "hello"}
	h := &MockHook{}
	var captured []string

	_, err := New(Options{
		Config:    testConfig(),
		Keyboard:  kb,
		Clipboard: cb,
		Hook:      h,
		OnCapture: func(text string) { captured = append(captured, text) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.Press("alt+ctrl+c")
	if kb.copies != 1 || kb.deletes != 1 || cb.Reads() != 1 {
		t.Errorf("expected one full chain, got copies=%d deletes=%d reads=%d", kb.copies, kb.deletes, cb.Reads())
	}
	if len(captured) != 1 || captured[0] != "hello" {
		t.Errorf("expected captured hello, got %v", captured)
	}

	h.Press("alt+ctrl+n")
	if cb.Reads() != 1 {
		t.Errorf("window hotkey must not start the chain, reads=%d", cb.Reads())
	}
}

func TestMonitor_DoublePressRunsTwoChains(t *testing.T) {
	cb := &MockClipboard{}
	h := &MockHook{}
	if _, err := New(Options{Config: testConfig(), Keyboard: &MockKeyboard{}, Clipboard: cb, Hook: h}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Press("alt+ctrl+c")
		}()
	}
	wg.Wait()

	if cb.Reads() != 2 {
		t.Errorf("expected two clipboard reads, got %d", cb.Reads())
	}
}

func TestMonitor_BothHotkeysCanStartChain(t *testing.T) {
	cfg := testConfig()
	cfg.Hotkeys[1].Event = "enigo-event"
	cb := &MockClipboard{}
	h := &MockHook{}
	if _, err := New(Options{Config: cfg, Keyboard: &MockKeyboard{}, Clipboard: cb, Hook: h}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.Press("alt+ctrl+c")
	h.Press("alt+ctrl+n")
	if cb.Reads() != 2 {
		t.Errorf("expected two reads, got %d", cb.Reads())
	}
}

func TestMonitor_DuplicateHotkeyAbortsStartup(t *testing.T) {
	cfg := testConfig()
	cfg.Hotkeys = append(cfg.Hotkeys, config.HotkeyConfig{Combo: "ctrl+alt+c", Event: "window-event"})

	_, err := New(Options{Config: cfg, Keyboard: &MockKeyboard{}, Clipboard: &MockClipboard{}, Hook: &MockHook{}})
	if !errors.Is(err, hotkey.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestMonitor_MissingCollaboratorsAbortStartup(t *testing.T) {
	if _, err := New(Options{Config: testConfig()}); err == nil {
		t.Error("expected error without keyboard and clipboard")
	}
	if _, err := New(Options{}); err == nil {
		t.Error("expected error without config")
	}
}

func TestMonitor_TimerTickRunsOneChain(t *testing.T) {
	cfg := testConfig()
	cfg.Timer.Enabled = true
	ticks := make(chan time.Time)
	kb := &MockKeyboard{}
	cb := &MockClipboard{}
	st := state.NewManager(storage.NewJSONStorage(filepath.Join(t.TempDir(), "state.json")))

	m, err := New(Options{
		Config:    cfg,
		Keyboard:  kb,
		Clipboard: cb,
		Hook:      &MockHook{},
		State:     st,
		Ticks:     ticks,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	ticks <- time.Now().Add(20 * time.Second)
	waitFor(t, func() bool { return cb.Reads() == 1 })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cb.Reads() != 1 || kb.copies != 1 || kb.deletes != 1 {
		t.Errorf("expected exactly one chain, got copies=%d deletes=%d reads=%d", kb.copies, kb.deletes, cb.Reads())
	}
	status, _ := st.Status()
	if status.Captures != 1 {
		t.Errorf("expected one recorded capture, got %d", status.Captures)
	}
}

func TestMonitor_PausedTimerSkipsTicks(t *testing.T) {
	cfg := testConfig()
	cfg.Timer.Enabled = true
	ticks := make(chan time.Time)
	cb := &MockClipboard{}
	st := state.NewManager(storage.NewJSONStorage(filepath.Join(t.TempDir(), "state.json")))
	if err := st.SetActive(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := New(Options{Config: cfg, Keyboard: &MockKeyboard{}, Clipboard: cb, State: st, Ticks: ticks})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	ticks <- time.Now()
	ticks <- time.Now()
	cancel()
	<-done

	if cb.Reads() != 0 {
		t.Errorf("paused timer started %d chains", cb.Reads())
	}
}

func TestMonitor_Trigger(t *testing.T) {
	cb := &MockClipboard{content: "x"}
	m, err := New(Options{Config: testConfig(), Keyboard: &MockKeyboard{}, Clipboard: cb})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Trigger(SourceManual); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.Reads() != 1 {
		t.Errorf("expected one read, got %d", cb.Reads())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestMonitor_StartupLogReportsRegistrations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	m, err := New(Options{
		Config:    testConfig(),
		Keyboard:  &MockKeyboard{},
		Clipboard: &MockClipboard{},
		Hook:      &MockHook{},
		OnCapture: func(string) {},
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"hotkeys":2`) || !strings.Contains(out, `"capture_listeners":1`) {
		t.Errorf("expected bound hotkey and listener counts in startup log, got %s", out)
	}
}
