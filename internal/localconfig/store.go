// Package localconfig implements the on-disk sectioned key/value store the
// core consumes for per-asset check configuration overrides. The file
// format itself is out of this library's scope beyond the lookup contract:
// a probe-wide default section and per-asset override sections.
package localconfig

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/ini.v1"

	"github.com/marmos91/oversightprobe/internal/logger"
)

// Store reloads a sectioned key/value file on demand, gated on mtime, and
// resolves per-asset overrides layered over a probe-wide default section.
type Store struct {
	path      string
	probeName string

	mu       sync.RWMutex
	lastMod  time.Time
	sections map[string]map[string]string
}

// NewStore builds a Store for the given file path and probe name. Call
// LoadInitial once at startup before serving any AssetConfig lookups.
func NewStore(path, probeName string) *Store {
	return &Store{path: path, probeName: probeName, sections: make(map[string]map[string]string)}
}

// LoadInitial performs the mandatory first read at process startup. Unlike
// Read, a missing or unparseable file here is reported to the caller as an
// error rather than tolerated: this is fatal, and the host process logs
// and exits.
func (s *Store) LoadInitial() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("local config: %w", err)
	}
	sections, err := loadSections(s.path)
	if err != nil {
		return fmt.Errorf("local config: %w", err)
	}

	s.mu.Lock()
	s.sections = sections
	s.lastMod = info.ModTime()
	s.mu.Unlock()
	return nil
}

// Read stats the file; if mtime is unchanged since the last successful
// read, it is a no-op. A missing file, or one that fails to parse, is
// tolerated: the previous good version is kept and a warning is logged.
func (s *Store) Read() {
	info, err := os.Stat(s.path)
	if err != nil {
		logger.Warn("local config file unreadable, keeping previous version", "path", s.path, "error", err)
		return
	}

	s.mu.RLock()
	unchanged := !info.ModTime().After(s.lastMod)
	s.mu.RUnlock()
	if unchanged {
		return
	}

	sections, err := loadSections(s.path)
	if err != nil {
		logger.Warn("local config parse failed, keeping previous version", "path", s.path, "error", err)
		return
	}

	s.mu.Lock()
	s.sections = sections
	s.lastMod = info.ModTime()
	s.mu.Unlock()
}

// AssetConfig resolves section "<probe_name>/<asset_id>", falling back to
// "<probe_name>", else returns an empty map. Values are string-typed;
// numeric coercion is each check's responsibility.
func (s *Store) AssetConfig(assetID int64) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assetSection := fmt.Sprintf("%s/%d", s.probeName, assetID)
	if kv, ok := s.sections[assetSection]; ok {
		return kv
	}
	if kv, ok := s.sections[s.probeName]; ok {
		return kv
	}
	return map[string]string{}
}

func loadSections(path string) (map[string]map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	sections := make(map[string]map[string]string, len(cfg.Sections()))
	for _, sec := range cfg.Sections() {
		kv := make(map[string]string, len(sec.Keys()))
		for _, key := range sec.Keys() {
			kv[key.Name()] = key.Value()
		}
		sections[sec.Name()] = kv
	}
	return sections, nil
}
