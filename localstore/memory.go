package localstore

import "sync"

// Memory is a map-backed local store used in tests and for throwaway sessions.
// Failures can be injected per operation.
type Memory struct {
	mu       sync.Mutex
	data     map[string][]byte
	loadErr  error
	saveErr  error
	clearErr error
	keyErrs  map[string]error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load returns the blob for key.
func (m *Memory) Load(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	blob, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

// Save stores blob under key.
func (m *Memory) Save(key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if err := m.keyErrs[key]; err != nil {
		return err
	}
	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.data[key] = stored
	return nil
}

// Clear removes key.
func (m *Memory) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	delete(m.data, key)
	return nil
}

// Has reports whether key is present.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// FailLoads makes every Load return err. Pass nil to stop failing.
func (m *Memory) FailLoads(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

// FailSaves makes every Save return err. Pass nil to stop failing.
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

// FailSavesFor makes Save of key return err while other keys still succeed.
// Pass nil to stop failing.
func (m *Memory) FailSavesFor(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.keyErrs, key)
		return
	}
	if m.keyErrs == nil {
		m.keyErrs = make(map[string]error)
	}
	m.keyErrs[key] = err
}

// FailClears makes every Clear return err. Pass nil to stop failing.
func (m *Memory) FailClears(err error) {
	m.mu.Lock()
	m.clearErr = err
	m.mu.Unlock()
}
