package nuker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/quartzclay/reclaim/internal/model"
)

// ErrModifiedDuringDeletion marks a deletion aborted because the target
// changed between size measurement and the destructive step. Callers can
// distinguish it from generic I/O failure with errors.Is and decide whether
// to retry.
var ErrModifiedDuringDeletion = errors.New("modified during deletion")

// executor deletes exactly one path per call, with a best-effort
// modification-detection window around the destructive step.
type executor struct{}

// execute stats, measures and (unless dryRun) deletes path. Any failure is
// captured in the result; execute never panics or returns an error.
func (executor) execute(path model.Path, dryRun bool, mode model.DeletionMode) model.DeletionResult {
	start := time.Now()

	fail := func(err error) model.DeletionResult {
		return model.DeletionResult{
			Path:     path,
			Success:  false,
			FreedMB:  0,
			Err:      err,
			Duration: time.Since(start),
			Mode:     mode,
		}
	}

	info, err := os.Lstat(string(path))
	if err != nil {
		return fail(err)
	}

	var size int64
	if info.IsDir() {
		size, err = measureTree(string(path))
		if err != nil {
			return fail(err)
		}
	} else {
		size = info.Size()
	}

	if !dryRun {
		// Re-stat immediately before the destructive step: a size or
		// mtime divergence means someone touched the target since we
		// measured it, and proceeding could destroy data the user still
		// wants. False positives are acceptable; silence is not.
		current, err := os.Lstat(string(path))
		if err != nil {
			return fail(err)
		}

		if statChanged(info, current) {
			return fail(fmt.Errorf("%w: %s", ErrModifiedDuringDeletion, path))
		}

		if info.IsDir() {
			err = os.RemoveAll(string(path))
		} else {
			err = os.Remove(string(path))
		}

		if err != nil {
			return fail(err)
		}
	}

	return model.DeletionResult{
		Path:     path,
		Success:  true,
		FreedMB:  float64(size) / (1024 * 1024),
		Duration: time.Since(start),
		Mode:     mode,
	}
}

// statChanged reports whether a target diverged between two stats. Size and
// mtime together catch content changes and replacement; inode identity is
// deliberately not compared (advisory only).
func statChanged(before, after os.FileInfo) bool {
	return after.Size() != before.Size() || !after.ModTime().Equal(before.ModTime())
}

// measureTree sums regular file sizes under root. Unlike the scanner's
// tolerant sizing walk, measurement errors here abort the deletion: an
// unreadable subtree means we cannot know what we are about to destroy.
func measureTree(root string) (int64, error) {
	var total int64

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		total += info.Size()

		return nil
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}
