package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DeckFile     = "PlayerDeck.json"
	UpgradesFile = "Upgrades.yaml"
)

// Store persists the deck and its upgrades. Loads never fail: missing or
// unreadable data comes back empty.
type Store interface {
	LoadDeck() Deck
	SaveDeck(Deck) error
	LoadUpgrades() Upgrades
	SaveUpgrades(Upgrades) error
}

// FileStore keeps the deck as indented JSON and the upgrades as YAML in one
// directory.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first save.
func NewFileStore(dir string, logger zerolog.Logger) *FileStore {
	return &FileStore{dir: dir, logger: logger.With().Str("component", "deck_store").Logger()}
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

// LoadDeck reads the saved deck. A missing or corrupt file yields an empty deck.
func (s *FileStore) LoadDeck() Deck {
	var d Deck
	if err := s.read(DeckFile, func(data []byte) error { return json.Unmarshal(data, &d) }); err != nil {
		return Deck{}
	}
	if d == nil {
		return Deck{}
	}
	return d
}

// SaveDeck writes the deck, replacing any previous file.
func (s *FileStore) SaveDeck(d Deck) error {
	if d == nil {
		d = Deck{}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode deck: %w", err)
	}
	return s.write(DeckFile, data)
}

// LoadUpgrades reads saved upgrade levels. A missing or corrupt file yields
// no upgrades.
func (s *FileStore) LoadUpgrades() Upgrades {
	u := Upgrades{}
	if err := s.read(UpgradesFile, func(data []byte) error { return yaml.Unmarshal(data, &u) }); err != nil {
		return Upgrades{}
	}
	if u == nil {
		return Upgrades{}
	}
	return u
}

// SaveUpgrades writes the upgrade levels, replacing any previous file.
func (s *FileStore) SaveUpgrades(u Upgrades) error {
	data, err := yaml.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode upgrades: %w", err)
	}
	return s.write(UpgradesFile, data)
}

// read loads name and decodes it. Missing files are expected and not logged.
func (s *FileStore) read(name string, decode func([]byte) error) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("unreadable save file, using empty state")
		return err
	}
	if err := decode(data); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("corrupt save file, using empty state")
		return err
	}
	return nil
}

// write replaces name atomically through a temp file in the same directory.
func (s *FileStore) write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// MemoryStore is an in-process Store for the simulator and tests.
type MemoryStore struct {
	mu       sync.Mutex
	deck     Deck
	upgrades Upgrades
}

// NewMemoryStore creates a store holding a copy of d.
func NewMemoryStore(d Deck) *MemoryStore {
	return &MemoryStore{deck: append(Deck{}, d...), upgrades: Upgrades{}}
}

func (m *MemoryStore) LoadDeck() Deck {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(Deck{}, m.deck...)
}

func (m *MemoryStore) SaveDeck(d Deck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deck = append(Deck{}, d...)
	return nil
}

func (m *MemoryStore) LoadUpgrades() Upgrades {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := make(Upgrades, len(m.upgrades))
	for k, v := range m.upgrades {
		u[k] = v
	}
	return u
}

func (m *MemoryStore) SaveUpgrades(u Upgrades) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upgrades = make(Upgrades, len(u))
	for k, v := range u {
		m.upgrades[k] = v
	}
	return nil
}
