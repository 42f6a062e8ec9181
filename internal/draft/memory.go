package draft

import (
	"encoding/json"
	"sync"
)

// MemoryStore keeps drafts in process memory. Values are stored encoded so a
// caller can never alias stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		fail("set", key, err)
		return
	}
	s.mu.Lock()
	s.entries[key] = data
	s.mu.Unlock()
}

func (s *MemoryStore) Get(key string, dst any) bool {
	s.mu.RLock()
	data, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		fail("decode", key, err)
		return false
	}
	return true
}

func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// SetRaw stores data under key without encoding it.
func (s *MemoryStore) SetRaw(key string, data []byte) {
	s.mu.Lock()
	s.entries[key] = data
	s.mu.Unlock()
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
