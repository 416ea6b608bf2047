package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// FileStore держит ключ в yaml файле в каталоге конфигурации пользователя
type FileStore struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
	key  string
}

func NewFileStore(path, key string) (*FileStore, error) {
	if key == "" {
		key = DefaultKey
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read credential file: %w", err)
		}
	}

	return &FileStore{
		v:    v,
		path: path,
		key:  key,
	}, nil
}

// DefaultPath ~/.config/similarity-client/credentials.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "similarity-client", "credentials.yaml")
}

func (s *FileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(s.key), nil
}

func (s *FileStore) Set(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(s.key, value)
	return s.write()
}

func (s *FileStore) Clear() error {
	return s.Set("")
}

func (s *FileStore) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential dir: %w", err)
	}

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}

	// ключ не должен читаться другими пользователями
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict credential file: %w", err)
	}
	return nil
}
