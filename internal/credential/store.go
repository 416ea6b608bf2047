// Package credential хранит необязательный API ключ пользователя.
package credential

import (
	"sync"
)

// DefaultKey имя ключа в хранилище
const DefaultKey = "openai_api_key"

type Store interface {
	Get() (string, error)
	Set(value string) error
	Clear() error
}

type MemoryStore struct {
	mu    sync.RWMutex
	value string
}

func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{value: initial}
}

func (s *MemoryStore) Get() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, nil
}

func (s *MemoryStore) Set(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Set("")
}
