package session

import (
	"encoding/json"
	"os"
	"sync"

	"personquiz/internal/domain"
)

const (
	keyLang       = "lang"
	keyPlayerName = "player_name"
)

// Store persists the small bits of session configuration that survive a
// restart: chosen language and player name.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Profile is the explicit session configuration handed to a Session at
// construction. Reset clears everything atomically ("start over").
type Profile struct {
	mu    sync.Mutex
	store Store
	lang  domain.Lang
	name  string
}

// LoadProfile reads any persisted language and name from the store.
func LoadProfile(store Store) *Profile {
	p := &Profile{store: store, lang: domain.LangSwedish}
	if v, ok := store.Get(keyLang); ok {
		p.lang = domain.Lang(v)
	}
	if v, ok := store.Get(keyPlayerName); ok {
		p.name = v
	}
	return p
}

func (p *Profile) Lang() domain.Lang {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lang
}

func (p *Profile) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *Profile) SetLang(lang domain.Lang) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lang = lang
	return p.store.Set(keyLang, string(lang))
}

func (p *Profile) SetName(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
	return p.store.Set(keyPlayerName, name)
}

// Reset clears all fields and their persisted values in one step.
func (p *Profile) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lang = domain.LangSwedish
	p.name = ""
	return p.store.Delete(keyLang, keyPlayerName)
}

// MemoryStore keeps profile values for the lifetime of the process.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

// FileStore persists profile values as a small JSON file, the closest
// server-side analogue to browser local storage.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileStore loads path if it exists; a missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flushLocked()
}

func (s *FileStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return s.flushLocked()
}

func (s *FileStore) flushLocked() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
