package nuker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzclay/reclaim/internal/model"
)

// newTestNuker returns a nuker whose validator carries no protected paths,
// so temp fixtures pass validation on their own merits.
func newTestNuker(parallel int) *Nuker {
	n := New(nil, Options{ParallelOps: parallel})
	n.validator = newValidatorWithProtected(nil, nil)

	return n
}

// deepFixture creates a file nested deep enough to clear the SAFE-mode
// shallow-path confirmation threshold.
func deepFixture(t *testing.T, name string, sizeMB int) model.Artifact {
	t.Helper()

	path := filepath.Join(t.TempDir(), "workspace", "project", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, make([]byte, sizeMB*1024*1024), 0o600))

	return model.Artifact{
		Path:      model.Path(path),
		SizeBytes: int64(sizeMB) * 1024 * 1024,
		Category:  "build.caches",
		Pattern:   "*.cache",
	}
}

func TestDeleteArtifactsDryRun(t *testing.T) {
	n := newTestNuker(1)

	artifacts := []model.Artifact{
		deepFixture(t, "a.cache", 1),
		deepFixture(t, "b.cache", 2),
	}

	results := n.DeleteArtifacts(artifacts, model.ModeDryRun, nil)

	require.Len(t, results, 2)

	for _, res := range results {
		assert.True(t, res.Success)
		assert.Equal(t, model.ModeDryRun, res.Mode)
	}

	for _, a := range artifacts {
		_, err := os.Lstat(string(a.Path))
		assert.NoError(t, err, "dry run must not delete %s", a.Path)
	}
}

func TestDeleteArtifactsInteractive(t *testing.T) {
	t.Run("no callback skips everything", func(t *testing.T) {
		n := newTestNuker(1)
		a := deepFixture(t, "a.cache", 1)

		results := n.DeleteArtifacts([]model.Artifact{a}, model.ModeInteractive, nil)

		assert.Empty(t, results)

		_, err := os.Lstat(string(a.Path))
		assert.NoError(t, err, "artifact must survive without confirmation")
	})

	t.Run("declined artifacts are skipped without a result", func(t *testing.T) {
		n := newTestNuker(1)
		keep := deepFixture(t, "keep.cache", 1)
		drop := deepFixture(t, "drop.cache", 1)

		confirm := func(a model.Artifact) bool {
			return a.Path == drop.Path
		}

		results := n.DeleteArtifacts([]model.Artifact{keep, drop}, model.ModeInteractive, confirm)

		require.Len(t, results, 1)
		assert.Equal(t, drop.Path, results[0].Path)
		assert.True(t, results[0].Success)

		_, err := os.Lstat(string(keep.Path))
		assert.NoError(t, err)

		_, err = os.Lstat(string(drop.Path))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestDeleteArtifactsForce(t *testing.T) {
	t.Run("pool of two handles ten artifacts exactly once each", func(t *testing.T) {
		n := newTestNuker(2)

		artifacts := make([]model.Artifact, 0, 10)
		for i := 0; i < 10; i++ {
			artifacts = append(artifacts, deepFixture(t, fmt.Sprintf("a%d.cache", i), 1))
		}

		results := n.DeleteArtifacts(artifacts, model.ModeForce, nil)

		require.Len(t, results, 10)

		seen := make(map[model.Path]int)
		for _, res := range results {
			seen[res.Path]++
			assert.True(t, res.Success, "result for %s", res.Path)
			assert.Equal(t, model.ModeForce, res.Mode)
		}

		for _, a := range artifacts {
			assert.Equal(t, 1, seen[a.Path], "exactly one result per artifact")

			_, err := os.Lstat(string(a.Path))
			assert.True(t, os.IsNotExist(err))
		}
	})

	t.Run("one failure does not cancel the rest", func(t *testing.T) {
		n := newTestNuker(2)

		good := deepFixture(t, "good.cache", 1)
		// Points at nothing: passes no validation, so it is rejected up
		// front and produces no result, while the good artifact proceeds.
		ghost := model.Artifact{Path: model.Path(filepath.Join(t.TempDir(), "gone.cache"))}

		results := n.DeleteArtifacts([]model.Artifact{ghost, good}, model.ModeForce, nil)

		require.Len(t, results, 1)
		assert.Equal(t, good.Path, results[0].Path)
	})
}

func TestDeleteArtifactsSafe(t *testing.T) {
	t.Run("small deep artifacts are deleted without confirmation", func(t *testing.T) {
		n := newTestNuker(1)
		a := deepFixture(t, "small.cache", 1)

		results := n.DeleteArtifacts([]model.Artifact{a}, model.ModeSafe, nil)

		require.Len(t, results, 1)
		assert.True(t, results[0].Success)

		_, err := os.Lstat(string(a.Path))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("oversized artifact without callback is skipped silently", func(t *testing.T) {
		n := newTestNuker(1)

		a := deepFixture(t, "big.cache", 1)
		// The recorded size drives the policy, not the bytes on disk.
		a.SizeBytes = 150 * 1024 * 1024

		results := n.DeleteArtifacts([]model.Artifact{a}, model.ModeSafe, nil)

		assert.Empty(t, results)

		_, err := os.Lstat(string(a.Path))
		assert.NoError(t, err, "unconfirmed artifact must survive")
	})

	t.Run("oversized artifact with approval is deleted", func(t *testing.T) {
		n := newTestNuker(1)

		a := deepFixture(t, "big.cache", 1)
		a.SizeBytes = 150 * 1024 * 1024

		asked := 0
		confirm := func(model.Artifact) bool {
			asked++
			return true
		}

		results := n.DeleteArtifacts([]model.Artifact{a}, model.ModeSafe, confirm)

		require.Len(t, results, 1)
		assert.Equal(t, 1, asked)
		assert.True(t, results[0].Success)
	})

	t.Run("shallow artifact requires confirmation", func(t *testing.T) {
		n := newTestNuker(1)

		// t.TempDir paths have five components: shallow by SAFE policy.
		path := filepath.Join(t.TempDir(), "x.cache")
		require.Less(t, PathComponents(path), safeModeMinComponents)
		require.NoError(t, os.WriteFile(path, make([]byte, 1024), 0o600))

		a := model.Artifact{Path: model.Path(path), SizeBytes: 1024}

		results := n.DeleteArtifacts([]model.Artifact{a}, model.ModeSafe, nil)

		assert.Empty(t, results)

		_, err := os.Lstat(path)
		assert.NoError(t, err)
	})
}

func TestDeleteArtifactsValidation(t *testing.T) {
	t.Run("protected artifacts never reach the executor", func(t *testing.T) {
		protected := t.TempDir()
		target := filepath.Join(protected, "a", "b", "c", "node_modules")
		require.NoError(t, os.MkdirAll(target, 0o750))

		n := New(nil, Options{})
		n.validator = newValidatorWithProtected([]string{protected}, nil)

		results := n.DeleteArtifacts([]model.Artifact{
			{Path: model.Path(target), SizeBytes: 1},
		}, model.ModeForce, nil)

		assert.Empty(t, results)

		_, err := os.Lstat(target)
		assert.NoError(t, err, "protected artifact must survive")
	})
}

func TestMetrics(t *testing.T) {
	n := newTestNuker(2)

	artifacts := []model.Artifact{
		deepFixture(t, "a.cache", 2),
		deepFixture(t, "b.cache", 3),
	}

	results := n.DeleteArtifacts(artifacts, model.ModeForce, nil)
	require.Len(t, results, 2)

	metrics := n.Metrics()

	assert.Equal(t, 2, metrics.TotalOperations)
	assert.Equal(t, 2, metrics.Successful)
	assert.Equal(t, 0, metrics.Failed)
	assert.Equal(t, 5.0, metrics.TotalFreedMB)
	assert.Empty(t, metrics.Errors)
}

func TestWriteUndoManifest(t *testing.T) {
	n := newTestNuker(1)

	a := deepFixture(t, "a.cache", 1)
	results := n.DeleteArtifacts([]model.Artifact{a}, model.ModeDryRun, nil)
	require.Len(t, results, 1)

	dir := t.TempDir()

	path, err := n.WriteUndoManifest(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var manifest model.UndoManifest
	require.NoError(t, json.Unmarshal(data, &manifest))

	require.Len(t, manifest.Deletions, 1)
	assert.Equal(t, string(a.Path), manifest.Deletions[0].Path)
	assert.Equal(t, "dry_run", manifest.Deletions[0].Mode)
	assert.True(t, manifest.Deletions[0].Success)
}

func TestForceResultsSortable(t *testing.T) {
	// FORCE makes no ordering promise; callers sort afterwards.
	n := newTestNuker(3)

	artifacts := make([]model.Artifact, 0, 5)
	for i := 0; i < 5; i++ {
		artifacts = append(artifacts, deepFixture(t, fmt.Sprintf("f%d.cache", i), 1))
	}

	results := n.DeleteArtifacts(artifacts, model.ModeForce, nil)
	require.Len(t, results, 5)

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].Path, results[i].Path)
	}
}
