package keys

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// MockInjector records every stroke it receives.
type MockInjector struct {
	calls  []string
	failOn string
	err    error
}

func (m *MockInjector) Toggle(key string, down bool) error {
	dir := "up"
	if down {
		dir = "down"
	}
	return m.record(key + ":" + dir)
}

func (m *MockInjector) Tap(key string) error {
	return m.record(key + ":tap")
}

func (m *MockInjector) record(call string) error {
	m.calls = append(m.calls, call)
	if call == m.failOn {
		return m.err
	}
	return nil
}

func TestCopySequence_Darwin(t *testing.T) {
	want := []Stroke{
		{KeyCmd, Release},
		{KeyCmd, Press},
		{KeyC, Click},
		{KeyCmd, Release},
	}
	if got := CopySequence("darwin"); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCopySequence_EveryOtherOSUsesCtrl(t *testing.T) {
	want := []Stroke{
		{KeyLeftCtrl, Press},
		{KeyC, Click},
		{KeyLeftCtrl, Release},
	}
	for _, goos := range []string{
		"linux", "windows", "freebsd", "openbsd", "netbsd", "dragonfly",
		"solaris", "illumos", "android", "ios", "plan9", "aix", "js", "wasip1", "",
	} {
		if got := CopySequence(goos); !reflect.DeepEqual(got, want) {
			t.Errorf("%q: expected %v, got %v", goos, want, got)
		}
	}
}

func TestSimulator_Copy(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "cmd:up,cmd:down,c:tap,cmd:up"},
		{"linux", "lctrl:down,c:tap,lctrl:up"},
		{"windows", "lctrl:down,c:tap,lctrl:up"},
	}
	for _, tt := range tests {
		inj := &MockInjector{}
		s := &Simulator{Injector: inj, GOOS: tt.goos}
		if err := s.Copy(); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.goos, err)
		}
		if got := strings.Join(inj.calls, ","); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.goos, tt.want, got)
		}
	}
}

func TestSimulator_Delete(t *testing.T) {
	inj := &MockInjector{}
	s := &Simulator{Injector: inj, GOOS: "linux"}
	if err := s.Delete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inj.calls) != 1 || inj.calls[0] != "backspace:tap" {
		t.Errorf("expected a single backspace tap, got %v", inj.calls)
	}
}

func TestSimulator_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("no display")
	inj := &MockInjector{failOn: "c:tap", err: boom}
	s := &Simulator{Injector: inj, GOOS: "linux"}

	err := s.Copy()
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped injector error, got %v", err)
	}
	if !strings.Contains(err.Error(), "click c") {
		t.Errorf("expected stroke in error, got %v", err)
	}
	if len(inj.calls) != 2 {
		t.Errorf("expected sequence to stop after 2 strokes, got %v", inj.calls)
	}
}

func TestDirection_String(t *testing.T) {
	for d, want := range map[Direction]string{Press: "press", Release: "release", Click: "click"} {
		if d.String() != want {
			t.Errorf("expected %s, got %s", want, d)
		}
	}
	if got := Direction(9).String(); got != fmt.Sprintf("direction(%d)", 9) {
		t.Errorf("unexpected unknown direction string %s", got)
	}
}
