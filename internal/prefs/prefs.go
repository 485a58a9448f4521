// Package prefs provides JSON-based user preferences.
package prefs

import (
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"layout-hypertext/internal/hypertext"
)

const (
	appDir    = "layout-hypertext"
	prefsFile = "preferences.json"
)

// Preference keys.
const (
	KeyNamingMode      = "naming.mode"
	KeyNamingSeparator = "naming.separator"
	KeyTolerance       = "resolve.tolerance"
	KeyDrift           = "resolve.drift"
	KeyExportLongText  = "longtext.export"
	KeyUndoLimit       = "undo.limit"
)

// Prefs stores user preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]any
	path   string
}

// DefaultPath returns ~/.config/layout-hypertext/preferences.json, or the
// platform equivalent.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, prefsFile)
}

// Load reads preferences from the default path.
// Returns empty preferences if the file doesn't exist.
func Load() *Prefs {
	return LoadFile(DefaultPath())
}

// LoadFile reads preferences from path. A missing or unreadable file gives
// empty preferences that will be saved to path.
func LoadFile(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]any),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string { return p.path }

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// Int returns an integer preference, or fallback if not set.
func (p *Prefs) Int(key string, fallback int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return fallback
}

// SetInt stores an integer preference.
func (p *Prefs) SetInt(key string, val int) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string preference, or fallback if not set.
func (p *Prefs) String(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Naming returns the hierarchical naming convention. Unknown modes and
// multi-character separators fall back to the defaults.
func (p *Prefs) Naming() hypertext.NamingOptions {
	opts := hypertext.DefaultNaming()
	if mode, ok := hypertext.ParseNamingMode(p.String(KeyNamingMode, "")); ok {
		opts.Mode = mode
	}
	if sep := p.String(KeyNamingSeparator, ""); len(sep) == 1 {
		opts.Separator = sep[0]
	}
	return opts
}

// EngineOptions returns the reference engine settings held in the
// preferences.
func (p *Prefs) EngineOptions() []hypertext.Option {
	return []hypertext.Option{
		hypertext.WithNaming(p.Naming()),
		hypertext.WithTolerance(p.Int(KeyTolerance, hypertext.DefaultTolerance)),
		hypertext.WithDrift(p.Int(KeyDrift, hypertext.DefaultDrift)),
	}
}
