// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the stages together: convert each source document,
// lint the result, optionally repair it, and persist the knowledge base
// once at the end of the run. Documents are independent jobs; one bad
// document never aborts the batch.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docpipe/internal/catalog"
	"github.com/pdiddy/docpipe/internal/convert"
	"github.com/pdiddy/docpipe/internal/kb"
	"github.com/pdiddy/docpipe/internal/lint"
	"github.com/pdiddy/docpipe/internal/repair"
	"github.com/pdiddy/docpipe/pkg/types"
)

// Options select which stages a run performs.
type Options struct {
	// LintOnly skips conversion and repair; documents are checked in place.
	LintOnly bool

	// Fix applies repairs to lint findings and rewrites the output.
	Fix bool
}

// DocResult is the outcome for one document.
type DocResult struct {
	DocID      string
	OutputPath string
	Findings   int
	Repairs    int

	// Revision counts the mutating passes applied: one for conversion,
	// one more when a repair pass changed the text.
	Revision int

	Warnings []string
	Err      error
}

// Summary aggregates a batch run.
type Summary struct {
	Processed int
	Repaired  int
	Failed    int
	Findings  int
}

// HasFailures reports whether any document failed.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Pipeline holds the stage engines for one run. Build it once per command
// invocation; the engines are safe for the parallel document jobs.
type Pipeline struct {
	cfg      types.PipelineConfig
	engine   *convert.Engine
	linter   *lint.Runner
	repairer *repair.Engine
	store    *kb.Store
	catalog  *catalog.Store
}

// New assembles a pipeline from its stages. catalog may be nil when no
// title index is wanted; store must be non-nil when opts.Fix is used.
func New(cfg types.PipelineConfig, engine *convert.Engine, linter *lint.Runner, repairer *repair.Engine, store *kb.Store, cat *catalog.Store) *Pipeline {
	return &Pipeline{cfg: cfg, engine: engine, linter: linter, repairer: repairer, store: store, catalog: cat}
}

// RunAll discovers source documents under the input directory and processes
// them with up to cfg.Jobs in flight. Per-document failures are recorded in
// the results and summary, not returned; the error covers discovery and
// final persistence only.
func (p *Pipeline) RunAll(ctx context.Context, opts Options, w io.Writer) (Summary, []DocResult, error) {
	paths, err := p.discover()
	if err != nil {
		return Summary{}, nil, err
	}

	configPath := ""
	if p.linter != nil && p.linter.Available() {
		cp, err := p.linter.WriteConfig(p.cfg.Paths.OutputDir)
		if err != nil {
			return Summary{}, nil, err
		}
		configPath = cp
	}

	var mu sync.Mutex
	results := make([]DocResult, 0, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Jobs)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			res := p.RunOne(gctx, path, configPath, opts)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, results, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].DocID < results[j].DocID })

	var summary Summary
	for _, r := range results {
		report(w, r)
		summary.Findings += r.Findings
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Repairs > 0:
			summary.Repaired++
			summary.Processed++
		default:
			summary.Processed++
		}
	}
	fmt.Fprintf(w, "\nRun summary: %d processed, %d repaired, %d failed, %d finding(s)\n",
		summary.Processed, summary.Repaired, summary.Failed, summary.Findings)

	if opts.Fix && p.store != nil {
		if err := p.store.Persist(); err != nil {
			return summary, results, fmt.Errorf("persisting knowledge base: %w", err)
		}
	}
	return summary, results, nil
}

// RunOne processes a single source document through the selected stages.
func (p *Pipeline) RunOne(ctx context.Context, srcPath, lintConfigPath string, opts Options) DocResult {
	rel, err := filepath.Rel(p.cfg.Paths.InputDir, srcPath)
	if err != nil || rel == "." {
		rel = filepath.Base(srcPath)
	}
	res := DocResult{DocID: catalog.DocID(rel)}
	doc := &types.Document{ID: res.DocID, Path: srcPath}

	target := srcPath
	if !opts.LintOnly {
		target, err = p.convertOne(ctx, doc, rel, &res)
		if err != nil {
			res.Err = err
			p.setStatus(res.DocID, "failed")
			return res
		}
	}
	res.OutputPath = target

	findings, err := p.lintOne(ctx, target, lintConfigPath, &res)
	if err != nil {
		res.Err = err
		p.setStatus(res.DocID, "failed")
		return res
	}

	if opts.Fix && len(findings) > 0 {
		if err := p.repairOne(ctx, doc, target, findings, &res); err != nil {
			res.Err = err
			p.setStatus(res.DocID, "failed")
			return res
		}
	}

	res.Revision = doc.Revision
	p.setStatus(res.DocID, "done")
	return res
}

func (p *Pipeline) convertOne(ctx context.Context, doc *types.Document, rel string, res *DocResult) (string, error) {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", doc.Path, err)
	}
	doc.Content = string(data)

	out, warnings, err := p.engine.ConvertDocument(ctx, doc.Content, 0)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return "", fmt.Errorf("converting %s: %w", doc.Path, err)
	}
	doc.Bump(out)

	ext := filepath.Ext(rel)
	outRel := strings.TrimSuffix(rel, ext) + ".adoc"
	outPath := filepath.Join(p.cfg.Paths.OutputDir, outRel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, nil
}

func (p *Pipeline) lintOne(ctx context.Context, path, configPath string, res *DocResult) ([]types.Finding, error) {
	if p.linter == nil {
		return nil, nil
	}
	findings, warnings, err := p.linter.Run(ctx, path, configPath)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return nil, fmt.Errorf("linting %s: %w", path, err)
	}
	res.Findings = len(findings)
	return findings, nil
}

func (p *Pipeline) repairOne(ctx context.Context, doc *types.Document, path string, findings []types.Finding, res *DocResult) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s for repair: %w", path, err)
	}

	repaired, actions, warnings, err := p.repairer.Repair(ctx, string(data), findings)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return fmt.Errorf("repairing %s: %w", path, err)
	}
	res.Repairs = len(actions)

	if len(actions) > 0 {
		doc.Bump(repaired)
		if err := os.WriteFile(path, []byte(repaired), 0o644); err != nil {
			return fmt.Errorf("writing repaired %s: %w", path, err)
		}
	}
	return nil
}

// discover lists source documents under the input directory, sorted. An
// input path naming a single file yields exactly that file.
func (p *Pipeline) discover() ([]string, error) {
	if info, err := os.Stat(p.cfg.Paths.InputDir); err == nil && !info.IsDir() {
		return []string{p.cfg.Paths.InputDir}, nil
	}

	var paths []string
	err := filepath.WalkDir(p.cfg.Paths.InputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, e := range p.cfg.Conversion.SourceExtensions {
			if ext == strings.ToLower(e) {
				paths = append(paths, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering documents under %s: %w", p.cfg.Paths.InputDir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (p *Pipeline) setStatus(docID, status string) {
	if p.catalog == nil {
		return
	}
	// Status is advisory; a catalog write failure never fails the document.
	_ = p.catalog.SetStatus(docID, status)
}

func report(w io.Writer, r DocResult) {
	switch {
	case r.Err != nil:
		fmt.Fprintf(w, "failed:   %s (%v)\n", r.DocID, r.Err)
	case r.Repairs > 0:
		fmt.Fprintf(w, "repaired: %s (%d finding(s), %d repair(s))\n", r.DocID, r.Findings, r.Repairs)
	case r.Findings > 0:
		fmt.Fprintf(w, "flagged:  %s (%d finding(s))\n", r.DocID, r.Findings)
	default:
		fmt.Fprintf(w, "clean:    %s\n", r.DocID)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}
