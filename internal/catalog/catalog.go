// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog maintains a SQLite index of source documents: their
// titles, modification times, and conversion outcomes. The converter's
// cross-reference rule consults it to decide between labeled and
// empty-label xrefs; scans are incremental by modification time.
package catalog

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "catalog.db"

var (
	atxTitleRe         = regexp.MustCompile(`^#[ \t]+(.+)$`)
	frontmatterTitleRe = regexp.MustCompile(`^title:[ \t]*["']?(.+?)["']?[ \t]*$`)
)

// Store is the document catalog database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database under dir, creating the
// schema on first use.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			title TEXT,
			has_title INTEGER NOT NULL DEFAULT 0,
			mod_time TEXT,
			status TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ScanSummary holds counts from one catalog scan.
type ScanSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of documents processed.
func (s ScanSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Scan walks root for source documents with the given extensions and
// indexes their titles. Unchanged files (by modification time) are skipped
// on subsequent scans.
func (s *Store) Scan(ctx context.Context, root string, exts []string, w io.Writer) (ScanSummary, error) {
	var summary ScanSummary

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasExt(path, exts) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		id := DocID(rel)

		info, err := d.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			return nil
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		scanErr := s.db.QueryRowContext(ctx,
			`SELECT mod_time FROM documents WHERE id = ?`, id).Scan(&storedModTime)
		if scanErr == nil && storedModTime == modTime {
			summary.Skipped++
			return nil
		}
		isUpdate := scanErr == nil

		title, err := extractTitle(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			return nil
		}

		hasTitle := 0
		if title != "" {
			hasTitle = 1
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO documents (id, path, title, has_title, mod_time)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				path=excluded.path, title=excluded.title,
				has_title=excluded.has_title, mod_time=excluded.mod_time`,
			id, rel, title, hasTitle, modTime)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			return nil
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", id)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", id)
			summary.Indexed++
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("scanning %s: %w", root, err)
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

// HasTitle reports whether the identified document declares an explicit
// title. Unknown documents report false, keeping link labels intact.
func (s *Store) HasTitle(docID string) (bool, error) {
	var hasTitle int
	err := s.db.QueryRow(`SELECT has_title FROM documents WHERE id = ?`, docID).Scan(&hasTitle)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("title lookup for %q: %w", docID, err)
	}
	return hasTitle == 1, nil
}

// SetStatus records the pipeline outcome for a document.
func (s *Store) SetStatus(docID, status string) error {
	_, err := s.db.Exec(
		`INSERT INTO documents (id, path, status) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status`,
		docID, docID, status)
	if err != nil {
		return fmt.Errorf("recording status for %q: %w", docID, err)
	}
	return nil
}

// DocID derives the catalog identifier from a path relative to the input
// root: forward slashes, no extension.
func DocID(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// extractTitle finds a document's declared title: a frontmatter title field
// or the first level-one heading. An empty result means no explicit title.
func extractTitle(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	inFrontmatter := false
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if first && trimmed == "---" {
			inFrontmatter = true
			first = false
			continue
		}
		first = false

		if inFrontmatter {
			if trimmed == "---" {
				inFrontmatter = false
				continue
			}
			if m := frontmatterTitleRe.FindStringSubmatch(trimmed); m != nil {
				return strings.TrimSpace(m[1]), nil
			}
			continue
		}

		if m := atxTitleRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), nil
		}
	}
	return "", scanner.Err()
}
