// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kb implements the persistent knowledge base of brand terms and
// learned spelling corrections. The store is the one resource shared
// between parallel document jobs: learns take exclusive access, lookups
// proceed concurrently and never observe a partial update.
package kb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docpipe/pkg/types"
)

// ErrConfiguredConflict is returned when a learn attempt would overwrite a
// configured-origin entry with a different canonical form. The store is
// left unchanged; the caller reports the conflict as a warning.
var ErrConfiguredConflict = errors.New("conflicting canonical form for configured term")

// file is the on-disk YAML shape.
type file struct {
	Terms map[string]types.TermEntry `yaml:"terms"`
}

// Store is an in-memory view of the knowledge base backed by a YAML file.
type Store struct {
	mu      sync.RWMutex
	path    string
	entries map[string]types.TermEntry // keyed by lowercased term
	now     func() time.Time
}

// Load reads the store at cfg.Path (a missing file yields an empty store)
// and seeds configured-origin entries from cfg.BrandTerms. Brand term
// configuration is authoritative: a configured entry whose canonical form
// changed in config is updated in place.
func Load(cfg types.KnowledgeBaseConfig) (*Store, error) {
	s := &Store{
		path:    cfg.Path,
		entries: make(map[string]types.TermEntry),
		now:     time.Now,
	}

	data, err := os.ReadFile(cfg.Path)
	switch {
	case err == nil:
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing knowledge base %s: %w", cfg.Path, err)
		}
		for k, v := range f.Terms {
			s.entries[strings.ToLower(k)] = v
		}
	case os.IsNotExist(err):
		// First run; the store starts empty.
	default:
		return nil, fmt.Errorf("reading knowledge base %s: %w", cfg.Path, err)
	}

	for variant, canonical := range cfg.BrandTerms {
		key := strings.ToLower(variant)
		s.entries[key] = types.TermEntry{
			Canonical: canonical,
			FirstSeen: firstSeen(s.entries, key, s.now()),
			Origin:    types.OriginConfigured,
		}
	}

	return s, nil
}

func firstSeen(entries map[string]types.TermEntry, key string, now time.Time) string {
	if prev, ok := entries[key]; ok && prev.FirstSeen != "" {
		return prev.FirstSeen
	}
	return types.RunTimestamp(now)
}

// Lookup returns the entry for term. The key comparison is
// case-insensitive; the returned canonical form keeps its stored casing.
func (s *Store) Lookup(term string) (types.TermEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[strings.ToLower(term)]
	return e, ok
}

// Learn records term -> canonical. Learning over a configured entry with a
// different canonical form is rejected with ErrConfiguredConflict; learning
// over a learned entry updates it.
func (s *Store) Learn(term, canonical string, origin types.TermOrigin) error {
	key := strings.ToLower(term)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[key]; ok {
		if prev.Origin == types.OriginConfigured && origin == types.OriginLearned {
			if prev.Canonical != canonical {
				return fmt.Errorf("term %q: %w (configured %q, attempted %q)",
					term, ErrConfiguredConflict, prev.Canonical, canonical)
			}
			return nil
		}
		s.entries[key] = types.TermEntry{Canonical: canonical, FirstSeen: prev.FirstSeen, Origin: origin}
		return nil
	}

	s.entries[key] = types.TermEntry{
		Canonical: canonical,
		FirstSeen: types.RunTimestamp(s.now()),
		Origin:    origin,
	}
	return nil
}

// Entries returns a copy of all entries keyed by lowercased term.
func (s *Store) Entries() map[string]types.TermEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]types.TermEntry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Keys returns all term keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Persist writes the store to disk. The write goes to a temporary file in
// the same directory followed by an atomic rename, so a crash mid-write
// leaves the previous store intact and parsable.
func (s *Store) Persist() error {
	s.mu.RLock()
	f := file{Terms: make(map[string]types.TermEntry, len(s.entries))}
	for k, v := range s.entries {
		f.Terms[k] = v
	}
	path := s.path
	s.mu.RUnlock()

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encoding knowledge base: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating knowledge base directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".knowledge-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temporary knowledge base file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing knowledge base: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing knowledge base file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing knowledge base: %w", err)
	}
	return nil
}
