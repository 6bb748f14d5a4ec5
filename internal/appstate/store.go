// Package appstate holds user-interface preferences and session view state.
package appstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
	"gopkg.in/yaml.v3"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ErrUnknownKey is returned by Get and Set for keys the store does not hold.
var ErrUnknownKey = errors.New("unknown state key")

// Keys accepted by Get and Set.
const (
	KeyTheme            = "theme"
	KeySidebarCollapsed = "sidebar_collapsed"
	KeySearchQuery      = "search_query"
	KeySelectedDate     = "selected_date"
)

// Keys lists every key in display order.
var Keys = []string{KeyTheme, KeySidebarCollapsed, KeySearchQuery, KeySelectedDate}

// State is a point-in-time copy of the store.
type State struct {
	Theme            Theme
	SidebarCollapsed bool
	SearchQuery      string
	SelectedDate     *time.Time
}

// persisted is the on-disk subset of State.
type persisted struct {
	Theme            Theme `yaml:"theme"`
	SidebarCollapsed bool  `yaml:"sidebar_collapsed"`
}

// Store is safe for concurrent use. Theme and SidebarCollapsed survive
// restarts; SearchQuery and SelectedDate live only as long as the Store.
type Store struct {
	mu    sync.RWMutex
	path  string
	state State
}

// NewMemoryStore returns a store that never touches disk.
func NewMemoryStore() *Store {
	return &Store{state: State{Theme: ThemeSystem}}
}

// Open loads the persisted fields from path. A missing file yields defaults.
func Open(path string) (*Store, error) {
	s := &Store{path: path, state: State{Theme: ThemeSystem}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var p persisted
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	if p.Theme != "" {
		if err := validateTheme(p.Theme); err != nil {
			return nil, err
		}
		s.state.Theme = p.Theme
	}
	s.state.SidebarCollapsed = p.SidebarCollapsed
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.SelectedDate != nil {
		d := *st.SelectedDate
		st.SelectedDate = &d
	}
	return st
}

func (s *Store) SetTheme(t Theme) error {
	if err := validateTheme(t); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = t
	return s.saveLocked()
}

func (s *Store) SetSidebarCollapsed(collapsed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SidebarCollapsed = collapsed
	return s.saveLocked()
}

// ToggleSidebar flips SidebarCollapsed and returns the new value.
func (s *Store) ToggleSidebar() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SidebarCollapsed = !s.state.SidebarCollapsed
	return s.state.SidebarCollapsed, s.saveLocked()
}

func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchQuery = strings.TrimSpace(q)
}

// SetSelectedDate stores the calendar date of d; nil clears the selection.
func (s *Store) SetSelectedDate(d *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == nil {
		s.state.SelectedDate = nil
		return
	}
	day := domain.DateOf(*d)
	s.state.SelectedDate = &day
}

// Get renders one key as text.
func (s *Store) Get(key string) (string, error) {
	st := s.Snapshot()
	switch key {
	case KeyTheme:
		return string(st.Theme), nil
	case KeySidebarCollapsed:
		return strconv.FormatBool(st.SidebarCollapsed), nil
	case KeySearchQuery:
		return st.SearchQuery, nil
	case KeySelectedDate:
		if st.SelectedDate == nil {
			return "", nil
		}
		return domain.FormatDate(*st.SelectedDate), nil
	}
	return "", fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

// Set parses value for key and applies it.
func (s *Store) Set(key, value string) error {
	switch key {
	case KeyTheme:
		return s.SetTheme(Theme(strings.ToLower(value)))
	case KeySidebarCollapsed:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("sidebar_collapsed must be true or false: %w", err)
		}
		return s.SetSidebarCollapsed(b)
	case KeySearchQuery:
		s.SetSearchQuery(value)
		return nil
	case KeySelectedDate:
		if value == "" {
			s.SetSelectedDate(nil)
			return nil
		}
		d, err := domain.ParseDate(value)
		if err != nil {
			return err
		}
		s.SetSelectedDate(&d)
		return nil
	}
	return fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(persisted{
		Theme:            s.state.Theme,
		SidebarCollapsed: s.state.SidebarCollapsed,
	})
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

func validateTheme(t Theme) error {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return nil
	}
	return fmt.Errorf("invalid theme %q (want light, dark or system)", t)
}
