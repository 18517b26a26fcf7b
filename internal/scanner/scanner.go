// Package scanner walks a directory tree, applies the pattern catalog and the
// scan whitelist, and produces the ordered artifact list consumed by the nuker.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/quartzclay/reclaim/internal/audit"
	"github.com/quartzclay/reclaim/internal/catalog"
	"github.com/quartzclay/reclaim/internal/model"
)

// maxScanDepth caps traversal depth so that symlink cycles (when following is
// enabled) and pathological trees cannot recurse without bound.
const maxScanDepth = 64

// Options tunes a Scanner.
type Options struct {
	// FollowSymlinks enables descending through symbolic links. Off by
	// default; even when on, maxScanDepth still bounds the walk.
	FollowSymlinks bool
	// Workers bounds the scan pool. Each worker owns one top-level
	// subdirectory's full recursive traversal.
	Workers int
}

// Scanner discovers artifacts under a root directory. The catalog and
// whitelist are read-only after construction, so one Scanner may serve
// concurrent scans.
type Scanner struct {
	catalog   *catalog.Catalog
	whitelist Whitelist
	opts      Options
	log       audit.Logger
}

// New constructs a Scanner.
func New(cat *catalog.Catalog, whitelist Whitelist, opts Options, log audit.Logger) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	if log == nil {
		log = audit.NewNop()
	}

	return &Scanner{catalog: cat, whitelist: whitelist, opts: opts, log: log}
}

// Result is the complete outcome of one scan. Artifacts are ordered by size
// descending (ties broken by path) — downstream "top artifacts" views depend
// on that ordering.
type Result struct {
	Root      model.Path
	Artifacts []model.Artifact
	Errors    []model.ScanError
}

// unitResult collects what one traversal unit found. Units share nothing
// mutable; each writes only its own slot.
type unitResult struct {
	artifacts []model.Artifact
	errs      []model.ScanError
}

// Scan enumerates artifacts under root that are at least minSizeMB large.
// Permission and I/O errors are recorded on the Result and never abort the
// scan; the returned error covers only an unusable root argument.
func (s *Scanner) Scan(root string, minSizeMB float64) (*Result, error) {
	abs, err := filepath.Abs(ExpandHome(root))
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	s.log.ScanStart(model.Path(abs), s.catalog.Categories())

	res := &Result{Root: model.Path(abs)}

	if s.whitelist.Contains(abs) {
		return res, nil
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		res.Errors = append(res.Errors, model.ScanError{Path: model.Path(abs), Err: err})
		return res, nil
	}

	// Partition: one unit per immediate non-matching subdirectory, plus one
	// unit for the entries directly inside root. Matched subdirectories are
	// leaf artifacts and belong to the root unit.
	var units []string

	for _, e := range entries {
		isLink := e.Type()&fs.ModeSymlink != 0
		if isLink && !s.opts.FollowSymlinks {
			continue
		}

		if _, matched := s.catalog.Match(e.Name()); matched {
			continue
		}

		isDir := e.IsDir()
		if isLink {
			info, err := os.Stat(filepath.Join(abs, e.Name()))
			if err != nil {
				res.Errors = append(res.Errors, model.ScanError{
					Path: model.Path(filepath.Join(abs, e.Name())),
					Err:  err,
				})

				continue
			}

			isDir = info.IsDir()
		}

		if isDir {
			units = append(units, filepath.Join(abs, e.Name()))
		}
	}

	results := make([]unitResult, len(units)+1)

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)

	g.Go(func() error {
		results[0] = s.scanRootEntries(abs, entries)
		return nil
	})

	for i, dir := range units {
		i, dir := i, dir
		g.Go(func() error {
			results[i+1] = s.walkUnit(dir, 1)
			return nil
		})
	}

	// Unit errors are carried in the result slots, never through the group.
	_ = g.Wait()

	for _, ur := range results {
		for _, a := range ur.artifacts {
			if a.SizeMB() >= minSizeMB {
				res.Artifacts = append(res.Artifacts, a)
			}
		}

		res.Errors = append(res.Errors, ur.errs...)
	}

	sort.Slice(res.Artifacts, func(i, j int) bool {
		if res.Artifacts[i].SizeBytes != res.Artifacts[j].SizeBytes {
			return res.Artifacts[i].SizeBytes > res.Artifacts[j].SizeBytes
		}

		return res.Artifacts[i].Path < res.Artifacts[j].Path
	})

	return res, nil
}

// scanRootEntries handles the entries directly inside the scan root: files
// and matched directories. Non-matching subdirectories are covered by their
// own traversal units.
func (s *Scanner) scanRootEntries(root string, entries []os.DirEntry) unitResult {
	var out unitResult

	for _, e := range entries {
		isLink := e.Type()&fs.ModeSymlink != 0
		if isLink && !s.opts.FollowSymlinks {
			continue
		}

		match, ok := s.catalog.Match(e.Name())
		if !ok {
			continue
		}

		full := filepath.Join(root, e.Name())
		if (e.IsDir() || isLink) && s.whitelist.Contains(full) {
			continue
		}

		s.record(&out, full, 0, match)
	}

	return out
}

// walkUnit traverses one subdirectory tree with an explicit worklist. The
// depth cap and the whitelist check both happen when a directory is popped,
// keeping the cycle and sanctuary handling in one place.
func (s *Scanner) walkUnit(start string, startDepth int) unitResult {
	var out unitResult

	type frame struct {
		dir   string
		depth int
	}

	stack := []frame{{dir: start, depth: startDepth}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxScanDepth {
			out.errs = append(out.errs, model.ScanError{
				Path: model.Path(f.dir),
				Err:  fmt.Errorf("max scan depth %d exceeded", maxScanDepth),
			})

			continue
		}

		if s.whitelist.Contains(f.dir) {
			continue
		}

		entries, err := os.ReadDir(f.dir)
		if err != nil {
			out.errs = append(out.errs, model.ScanError{Path: model.Path(f.dir), Err: err})
			continue
		}

		for _, e := range entries {
			full := filepath.Join(f.dir, e.Name())

			isLink := e.Type()&fs.ModeSymlink != 0
			if isLink && !s.opts.FollowSymlinks {
				continue
			}

			if match, ok := s.catalog.Match(e.Name()); ok {
				// A matched directory is a leaf artifact, never
				// descended into.
				if (e.IsDir() || isLink) && s.whitelist.Contains(full) {
					continue
				}

				s.record(&out, full, f.depth, match)

				continue
			}

			isDir := e.IsDir()
			if isLink {
				info, err := os.Stat(full)
				if err != nil {
					out.errs = append(out.errs, model.ScanError{Path: model.Path(full), Err: err})
					continue
				}

				isDir = info.IsDir()
			}

			if isDir {
				stack = append(stack, frame{dir: full, depth: f.depth + 1})
			}
		}
	}

	return out
}

// record stats a matched entry, measures it and appends the artifact.
// Stat failures are recorded as scan errors and drop the artifact.
func (s *Scanner) record(out *unitResult, path string, depth int, match catalog.Match) {
	stat := os.Lstat
	if s.opts.FollowSymlinks {
		stat = os.Stat
	}

	info, err := stat(path)
	if err != nil {
		out.errs = append(out.errs, model.ScanError{Path: model.Path(path), Err: err})
		return
	}

	size := info.Size()
	if info.IsDir() {
		var sizeErrs []model.ScanError
		size, sizeErrs = dirSize(path)
		out.errs = append(out.errs, sizeErrs...)
	}

	out.artifacts = append(out.artifacts, model.Artifact{
		Path:      model.Path(path),
		SizeBytes: size,
		Category:  match.Label(),
		Pattern:   match.Pattern,
		Depth:     depth,
		Inode:     inodeOf(info),
	})
}

// dirSize sums the sizes of all regular files under root. Errors along the
// way are collected and the partial sum computed so far is returned.
func dirSize(root string) (int64, []model.ScanError) {
	var (
		total int64
		errs  []model.ScanError
	)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, model.ScanError{Path: model.Path(path), Err: err})
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			errs = append(errs, model.ScanError{Path: model.Path(path), Err: err})
			return nil
		}

		total += info.Size()

		return nil
	})

	return total, errs
}
