// Package skipset persists the set of crawl keys that have already been
// handled, so interrupted runs resume without re-processing finished work.
package skipset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"catalogworker/logger"
)

// defaultKeys seeds the skip set when no durable copy exists. These are
// leaf categories known to be fully captured already.
var defaultKeys = []string{
	"", "Socket Head Screws", "Rounded Head Screws", "Hex Head Screws",
	"Flat Head Screws", "Tapping Screws", "Shoulder Screws", "Set Screws",
	"Wood Screws", "Thumb Screws", "Carriage Bolts", "12-Point Screws",
	"Captive Panel Screws", "Drywall Screws", "Fastener Assortments", "Studs",
	"Square Head Screws", "Elevator Bolts", "Hanger Bolts", "T-Bolts",
	"Plow Bolts", "Pentagon Head Screws", "Hold-Down Bolts", "Jack Screws",
	"Joint Clamps for Wood", "Binding Barrels and Screws", "Threaded Rods",
	"Standoffs", "Standoff Caps", "Single-End Studs", "Thread Adapters",
	"Rivet Nuts", "Weld Nuts", "Anchors", "Spring Plungers", "Captive Pins",
	"Screw Nails", "Nails", "Anchor Toggles", "Rivets", "Antislip Fluid",
	"Tapping Screw Installation Tools", "Hanger Bolt Driver Bits",
	"Anchor Installation Tools", "Magnets", "Setup Studs", "T-Slot Bolts",
	"Drill Bushing Lock Screws",
}

// SkipSet is the persisted set of already-handled crawl keys.
// It has a single writer (the traversal controller) and flushes the
// whole set to disk after every mutation, so a crash loses at most the
// in-flight unit. Entries are never removed.
type SkipSet struct {
	path string
	keys map[string]struct{}
	log  *logger.Logger
}

// Load reads the skip set from path. When no durable copy exists the
// built-in default list is written out and used instead.
func Load(path string) (*SkipSet, error) {
	s := &SkipSet{
		path: path,
		keys: make(map[string]struct{}),
		log:  logger.ForSkipSet(),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		for _, k := range defaultKeys {
			s.keys[k] = struct{}{}
		}
		if err := s.flush(); err != nil {
			return nil, fmt.Errorf("failed to seed skip list: %w", err)
		}
		s.log.Info().Int("keys", len(s.keys)).Str("path", path).Msg("Seeded default skip list")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read skip list: %w", err)
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse skip list %s: %w", path, err)
	}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	s.log.Info().Int("keys", len(s.keys)).Str("path", path).Msg("Loaded skip list")
	return s, nil
}

// Contains reports whether key has already been handled
func (s *SkipSet) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Add records key as handled and flushes the whole set to disk.
// Adding a key that is already present is a no-op.
func (s *SkipSet) Add(key string) error {
	if s.Contains(key) {
		return nil
	}
	s.keys[key] = struct{}{}
	if err := s.flush(); err != nil {
		// Keep the in-memory entry; the next successful flush carries it.
		return fmt.Errorf("failed to persist skip list: %w", err)
	}
	s.log.Info().Str("key", key).Int("keys", len(s.keys)).Msg("Added to skip list")
	return nil
}

// Len returns the number of keys in the set
func (s *SkipSet) Len() int {
	return len(s.keys)
}

// Keys returns the keys in sorted order
func (s *SkipSet) Keys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flush rewrites the durable copy. It writes to a temp file in the same
// directory and renames it over the target so a crash mid-write leaves
// the previous version intact.
func (s *SkipSet) flush() error {
	data, err := json.MarshalIndent(s.Keys(), "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
