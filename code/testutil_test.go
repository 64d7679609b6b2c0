package code

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/scriptbridge/runtime"
)

// mockHost implements runtime.Host for testing.
type mockHost struct {
	mu sync.Mutex

	// Configurable returns
	available   bool
	path        string
	runOutput   runtime.CommandOutput
	runErr      error
	runDelay    time.Duration
	runPanic    any
	outputsFunc func(cmd runtime.Command) (runtime.CommandOutput, error)

	// Call tracking
	runCalls       []runtime.Command
	availableCalls int
}

func newMockHost() *mockHost {
	return &mockHost{available: true, path: "/usr/bin/python3"}
}

func (m *mockHost) Kind() runtime.HostKind {
	return runtime.HostSubprocess
}

func (m *mockHost) Available(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availableCalls++
	return m.available
}

func (m *mockHost) InterpreterPath() string {
	return m.path
}

func (m *mockHost) Run(_ context.Context, cmd runtime.Command) (runtime.CommandOutput, error) {
	m.mu.Lock()
	m.runCalls = append(m.runCalls, cmd)
	delay, panicValue, fn := m.runDelay, m.runPanic, m.outputsFunc
	out, err := m.runOutput, m.runErr
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if panicValue != nil {
		panic(panicValue)
	}
	if fn != nil {
		return fn(cmd)
	}
	return out, err
}

func (m *mockHost) calls() []runtime.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]runtime.Command(nil), m.runCalls...)
}

// recordingLogger implements Logger and keeps every message.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	infos []string
	errs  []string
}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

func newTestExecutor(host runtime.Host) *DefaultExecutor {
	exec, err := NewDefaultExecutor(Config{Host: host})
	if err != nil {
		panic(err)
	}
	return exec
}

func info(lines ...string) []runtime.LogEntry {
	out := make([]runtime.LogEntry, 0, len(lines))
	for _, l := range lines {
		out = append(out, runtime.LogEntry{Type: runtime.LogInfo, Output: l})
	}
	return out
}
