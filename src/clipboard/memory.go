package clipboard

import "sync"

// Memory is an in-process clipboard used by headless runs and tests.
// History records every write in order.
type Memory struct {
	mu      sync.Mutex
	text    string
	History []string
	// OnWrite, if set, is called after each write with the new content.
	OnWrite func(text string)
}

func NewMemory(initial string) *Memory {
	return &Memory{text: initial}
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	m.text = text
	m.History = append(m.History, text)
	hook := m.OnWrite
	m.mu.Unlock()
	if hook != nil {
		hook(text)
	}
	return nil
}

// Text returns the current content without error plumbing.
func (m *Memory) Text() string {
	t, _ := m.Read()
	return t
}

// Writes returns a copy of the write history.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.History...)
}
