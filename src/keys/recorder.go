package keys

import "sync"

// Recorder is a Synthesizer that only counts presses. OnCopy runs inside
// Copy, letting a caller emulate the focused application answering the copy.
type Recorder struct {
	mu     sync.Mutex
	copies int
	pastes int
	OnCopy func()
	Err    error
}

func (r *Recorder) Copy() error {
	r.mu.Lock()
	r.copies++
	hook, err := r.OnCopy, r.Err
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook()
	}
	return nil
}

func (r *Recorder) Paste() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pastes++
	return r.Err
}

func (r *Recorder) Copies() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copies
}

func (r *Recorder) Pastes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pastes
}
