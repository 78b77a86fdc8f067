package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/RustedSwords/A-Star-Path-Visualization/search/engine"
	"github.com/RustedSwords/A-Star-Path-Visualization/search/service"
)

var (
	ErrLayoutNotFound = errors.New("layout not found")
	ErrInvalidLayout  = errors.New("invalid layout")
)

// DefaultGridSize is the edge length of the built-in blank layout.
const DefaultGridSize = 20

// Manager handles layout loading and caching.
type Manager struct {
	layoutDir     string
	defaultLayout *engine.Layout
	layouts       map[string]*engine.Layout
	mu            sync.RWMutex
}

// NewManager creates a new layout manager reading from layoutDir.
func NewManager(layoutDir string) (*Manager, error) {
	if _, err := os.Stat(layoutDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("layout directory does not exist: %s", layoutDir)
	}

	m := &Manager{
		layoutDir: layoutDir,
		layouts:   make(map[string]*engine.Layout),
	}
	m.loadDefaultLayout()
	return m, nil
}

// LoadLayout loads a layout by name, using the cache when possible.
func (m *Manager) LoadLayout(name string) (*engine.Layout, error) {
	m.mu.RLock()
	if layout, exists := m.layouts[name]; exists {
		m.mu.RUnlock()
		return layout, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if layout, exists := m.layouts[name]; exists {
		return layout, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}
	layoutPath := filepath.Join(m.layoutDir, filename)

	data, err := os.ReadFile(layoutPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var layout engine.Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := engine.ValidateLayout(&layout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	m.layouts[name] = &layout
	return &layout, nil
}

// ListLayouts returns information about all available layouts.
func (m *Manager) ListLayouts() ([]*service.LayoutInfo, error) {
	entries, err := os.ReadDir(m.layoutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout directory: %w", err)
	}

	var layouts []*service.LayoutInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")

		layout, err := m.LoadLayout(name)
		if err != nil {
			// Skip invalid layout files
			continue
		}

		layouts = append(layouts, &service.LayoutInfo{
			Filename:    entry.Name(),
			LayoutID:    name,
			Name:        layout.Name,
			Description: layout.Description,
			Rows:        layout.Rows,
			Cols:        layout.Cols,
			Barriers:    countBarriers(layout),
		})
	}
	return layouts, nil
}

// GetDefault returns the default layout.
func (m *Manager) GetDefault() *engine.Layout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLayout
}

// RefreshCache drops all cached layouts and reloads the default.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.layouts = make(map[string]*engine.Layout)
	m.mu.Unlock()
	m.loadDefaultLayout()
}

func (m *Manager) loadDefaultLayout() {
	layout, err := m.LoadLayout("classic")
	if err != nil {
		layouts, listErr := m.ListLayouts()
		if listErr == nil && len(layouts) > 0 {
			layout, err = m.LoadLayout(layouts[0].LayoutID)
		}
		if layout == nil || err != nil {
			layout = blankLayout()
		}
	}

	m.mu.Lock()
	m.defaultLayout = layout
	m.mu.Unlock()
}

// blankLayout is the built-in fallback: an empty grid the user edits from
// scratch, exactly like the original visualizer starts.
func blankLayout() *engine.Layout {
	rows := make([]string, DefaultGridSize)
	for i := range rows {
		rows[i] = strings.Repeat(".", DefaultGridSize)
	}
	return &engine.Layout{
		Name:        "blank",
		Description: "Empty grid with no barriers, start, or end",
		Rows:        DefaultGridSize,
		Cols:        DefaultGridSize,
		Layout:      rows,
	}
}

func countBarriers(layout *engine.Layout) int {
	count := 0
	for _, row := range layout.Layout {
		count += strings.Count(row, string(rune(engine.LayoutBarrier)))
	}
	return count
}
