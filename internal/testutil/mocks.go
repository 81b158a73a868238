package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrMockFailure is returned by MockTranslator when FailAll is set
var ErrMockFailure = errors.New("mock backend failure")

// MockTranslator mocks a translation backend
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	// FailAll makes every call fail with ErrMockFailure
	FailAll bool
	// FailFirst makes the first N calls fail with ErrMockFailure
	FailFirst    int
	Unavailable  error
	BackendName  string
	mu           sync.Mutex
	Calls        []string
	AvailableHit int
}

// Translate mocks translating text. Unknown texts are returned prefixed
// with the target code in brackets.
func (m *MockTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := fmt.Sprintf("Translate: %s (%s->%s)", text, fromLang, toLang)
	m.Calls = append(m.Calls, call)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.FailAll || len(m.Calls) <= m.FailFirst {
		return "", ErrMockFailure
	}
	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	return fmt.Sprintf("[%s] %s", toLang, text), nil
}

// Name returns the configured backend name, "mock" by default
func (m *MockTranslator) Name() string {
	if m.BackendName == "" {
		return "mock"
	}
	return m.BackendName
}

// IsAvailable returns the Unavailable error
func (m *MockTranslator) IsAvailable(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AvailableHit++
	return m.Unavailable
}

// CallCount returns the number of Translate calls
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CallsContaining returns the calls whose text contains substr
func (m *MockTranslator) CallsContaining(substr string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []string
	for _, c := range m.Calls {
		if strings.Contains(c, substr) {
			result = append(result, c)
		}
	}
	return result
}

// MockResult is a canned reply of FakeGitRunner
type MockResult struct {
	Stdout string
	Stderr string
	Err    error
}

// FakeGitRunner records git invocations and replays canned results keyed
// by the first argument (the git subcommand)
type FakeGitRunner struct {
	Results map[string]MockResult
	Calls   [][]string
}

// Run records args and returns the canned result for args[0]
func (f *FakeGitRunner) Run(ctx context.Context, dir string, args ...string) (string, string, error) {
	f.Calls = append(f.Calls, append([]string(nil), args...))
	if len(args) == 0 {
		return "", "", fmt.Errorf("no git arguments")
	}
	res := f.Results[args[0]]
	return res.Stdout, res.Stderr, res.Err
}

// Called reports whether a git subcommand was invoked
func (f *FakeGitRunner) Called(subcommand string) bool {
	for _, c := range f.Calls {
		if len(c) > 0 && c[0] == subcommand {
			return true
		}
	}
	return false
}
