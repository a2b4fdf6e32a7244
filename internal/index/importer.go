package index

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/romilly/claude-code-log-tools/internal/logging"
	"github.com/romilly/claude-code-log-tools/internal/parse"
	"github.com/romilly/claude-code-log-tools/internal/scan"
)

type Stats struct {
	Files      int
	Imported   int
	Skipped    int // at or before the checkpoint, or snapshots
	Duplicates int // already stored
	Summaries  int
	Errors     int // malformed lines
	Failed     []string
}

func (s Stats) String() string {
	return fmt.Sprintf("files=%d imported=%d skipped=%d duplicates=%d summaries=%d errors=%d failed=%d",
		s.Files, s.Imported, s.Skipped, s.Duplicates, s.Summaries, s.Errors, len(s.Failed))
}

func (s *Stats) Add(o Stats) {
	s.Files += o.Files
	s.Imported += o.Imported
	s.Skipped += o.Skipped
	s.Duplicates += o.Duplicates
	s.Summaries += o.Summaries
	s.Errors += o.Errors
	s.Failed = append(s.Failed, o.Failed...)
}

type Options struct {
	Root      string // Claude projects root; used to derive project names
	BatchSize int
	Workers   int
}

// Importer loads session logs into the store. Projects are the unit of work:
// one goroutine owns a project, its checkpoint and all of its files.
type Importer struct {
	db   *DB
	opts Options
}

func NewImporter(db *DB, opts Options) *Importer {
	if opts.BatchSize < 1 {
		opts.BatchSize = 100
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Importer{db: db, opts: opts}
}

// ImportAll scans the root and imports every project. Failed files are
// listed in Stats.Failed; the returned error is reserved for scan failures
// and cancellation.
func (im *Importer) ImportAll(ctx context.Context) (Stats, error) {
	var total Stats

	files, err := scan.ScanRoot(im.opts.Root)
	if err != nil {
		return total, fmt.Errorf("scan: %w", err)
	}
	groups := scan.GroupByProject(files)
	projects := make([]string, 0, len(groups))
	for p := range groups {
		projects = append(projects, p)
	}
	sort.Strings(projects)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(im.opts.Workers)
	for _, project := range projects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats, err := im.ImportProject(ctx, project, groups[project])
			if err != nil {
				logging.Warn("project %s: %v", project, err)
			}
			mu.Lock()
			total.Add(stats)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}
	sort.Strings(total.Failed)
	return total, ctx.Err()
}

// ImportFile imports a single log file against its project's checkpoint.
// The checkpoint is never advanced here: sibling files of the project may
// still hold older entries that only a full project pass commits.
func (im *Importer) ImportFile(ctx context.Context, path string) (Stats, error) {
	fi := scan.Describe(im.opts.Root, path)
	cutoff, err := im.db.Cutoff(ctx, fi.Project)
	if err != nil {
		return Stats{}, fmt.Errorf("load checkpoint %s: %w", fi.Project, err)
	}
	res, err := im.importOne(ctx, fi.Project, fi, cutoff)
	if err != nil {
		res.stats.Failed = append(res.stats.Failed, fi.Path)
		return res.stats, err
	}
	if res.partial {
		logging.Debug("%s: trailing line not yet complete", fi.Path)
	}
	return res.stats, nil
}

// ImportProject imports files belonging to one project against that
// project's checkpoint, then advances the checkpoint to the newest timestamp
// seen. The checkpoint is left alone when any file failed or ended in a
// half-written line, so the next run re-reads from the same place.
func (im *Importer) ImportProject(ctx context.Context, project string, files []scan.FileInfo) (Stats, error) {
	var stats Stats

	cutoff, err := im.db.Cutoff(ctx, project)
	if err != nil {
		return stats, fmt.Errorf("load checkpoint %s: %w", project, err)
	}

	var maxSeen time.Time
	var firstErr error
	holdCheckpoint := false
	for _, f := range files {
		res, err := im.importOne(ctx, project, f, cutoff)
		stats.Add(res.stats)
		if err != nil {
			stats.Failed = append(stats.Failed, f.Path)
			logging.Warn("%v", err)
			if firstErr == nil {
				firstErr = err
			}
			holdCheckpoint = true
			continue
		}
		if res.partial {
			logging.Debug("%s: trailing line not yet complete", f.Path)
			holdCheckpoint = true
		}
		if res.maxSeen.After(maxSeen) {
			maxSeen = res.maxSeen
		}
		logging.Debug("%s: %s", f.Path, res.stats)
	}

	if firstErr != nil || holdCheckpoint {
		return stats, firstErr
	}
	if err := im.db.AdvanceCheckpoint(ctx, project, maxSeen); err != nil {
		return stats, fmt.Errorf("advance checkpoint %s: %w", project, err)
	}
	return stats, nil
}

type fileResult struct {
	stats   Stats
	maxSeen time.Time
	partial bool
}

type pendingEntry struct {
	entry    *parse.Entry
	category parse.Category
	line     int
}

func (im *Importer) importOne(ctx context.Context, project string, fi scan.FileInfo, cutoff time.Time) (fileResult, error) {
	res := fileResult{stats: Stats{Files: 1}}

	f, err := os.Open(fi.Path)
	if err != nil {
		return res, &FileError{Path: fi.Path, Op: "open", Err: err}
	}
	defer f.Close()

	b := &batch{db: im.db, project: project, file: fi}
	pending := make([]pendingEntry, 0, im.opts.BatchSize)
	var batchMax time.Time

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		st, err := b.commit(ctx, pending)
		if err != nil {
			return &FileError{Path: fi.Path, Op: "write", Err: err}
		}
		res.stats.Add(st)
		if batchMax.After(res.maxSeen) {
			res.maxSeen = batchMax
		}
		pending = pending[:0]
		return nil
	}

	reader := bufio.NewReaderSize(f, 64*1024)
	lineNum := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			if err := flush(); err != nil {
				return res, err
			}
			return res, &FileError{Path: fi.Path, Op: "read", Err: readErr}
		}
		if len(line) > 0 {
			lineNum++
		}
		atEOF := readErr == io.EOF

		trimmed := bytes.TrimSpace(line)
		switch {
		case len(trimmed) == 0:
		case atEOF && !json.Valid(trimmed):
			// still being written; picked up on the next run
			res.partial = true
		default:
			e, err := parse.DecodeEntry(trimmed)
			if err != nil {
				res.stats.Errors++
				logging.Debug("%s: %v", fi.Path, &parse.LineError{Line: lineNum, Err: err})
				break
			}
			if ShouldSkip(e, cutoff) {
				res.stats.Skipped++
				break
			}
			pending = append(pending, pendingEntry{entry: e, category: parse.Classify(e), line: lineNum})
			if e.Time.After(batchMax) {
				batchMax = e.Time
			}
		}

		if len(pending) >= im.opts.BatchSize || (atEOF && len(pending) > 0) {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if err := flush(); err != nil {
				return res, err
			}
		}
		if atEOF {
			return res, nil
		}
	}
}

// batch writes a run of entries from one file inside one transaction.
type batch struct {
	db      *DB
	project string
	file    scan.FileInfo
}

func (b *batch) commit(ctx context.Context, entries []pendingEntry) (Stats, error) {
	var st Stats

	tx, err := b.db.db.BeginTx(ctx, nil)
	if err != nil {
		return st, err
	}
	defer tx.Rollback()

	blockStmt, err := tx.PrepareContext(ctx, insertBlockSQL)
	if err != nil {
		return st, err
	}
	defer blockStmt.Close()

	touched := make(map[int64]struct{})
	for _, p := range entries {
		e := p.entry
		sessionUUID := e.SessionID
		if sessionUUID == "" {
			sessionUUID = b.file.SessionID
		}
		ref, err := resolveSession(ctx, tx, sessionUUID, b.project, b.file.Path, e.Time)
		if err != nil {
			return st, fmt.Errorf("resolve session %s: %w", sessionUUID, err)
		}

		switch p.category {
		case parse.CategorySummary:
			if e.Summary != "" {
				if err := applySummary(ctx, tx, ref.ID, e.Summary); err != nil {
					return st, fmt.Errorf("apply summary: %w", err)
				}
			}
			st.Summaries++
		case parse.CategorySnapshot:
			st.Skipped++
		default:
			inserted, err := insertMessage(ctx, tx, blockStmt, ref.ID, e, b.file.Path, p.line, parse.Decompose(e.Payload()))
			if err != nil {
				return st, fmt.Errorf("insert message line %d: %w", p.line, err)
			}
			if inserted {
				st.Imported++
				touched[ref.ID] = struct{}{}
			} else {
				st.Duplicates++
			}
		}
	}

	for id := range touched {
		if err := recomputeTokens(ctx, tx, id); err != nil {
			return st, fmt.Errorf("recompute tokens: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return st, err
	}
	return st, nil
}
