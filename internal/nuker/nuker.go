package nuker

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quartzclay/reclaim/internal/audit"
	"github.com/quartzclay/reclaim/internal/model"
)

const (
	// safeModeSizeLimitMB is the SAFE-mode size above which an artifact
	// needs explicit confirmation.
	safeModeSizeLimitMB = 100
	// safeModeMinComponents is the SAFE-mode depth below which an
	// artifact needs explicit confirmation.
	safeModeMinComponents = 6
)

// ConfirmFunc asks the user to approve deleting one artifact.
type ConfirmFunc func(model.Artifact) bool

// Options tunes a Nuker.
type Options struct {
	// ParallelOps bounds the FORCE-mode deletion pool.
	ParallelOps int
}

// Nuker orchestrates validated deletion of artifact batches under an
// explicit mode. The validator and executor are the only parts that touch
// paths; the Nuker decides what to attempt.
type Nuker struct {
	log       audit.Logger
	validator *Validator
	exec      executor
	parallel  int

	mu      sync.Mutex
	results []model.DeletionResult
}

// New constructs a Nuker. Protected paths resolve once, here.
func New(log audit.Logger, opts Options) *Nuker {
	if log == nil {
		log = audit.NewNop()
	}

	parallel := opts.ParallelOps
	if parallel <= 0 {
		parallel = 2
	}

	return &Nuker{
		log:       log,
		validator: NewValidator(log),
		parallel:  parallel,
	}
}

// Validator exposes the safety validator, mainly for callers that want to
// pre-flight a path without deleting it.
func (n *Nuker) Validator() *Validator {
	return n.validator
}

// DeleteArtifacts runs the batch under the given mode and returns one result
// per attempted artifact. Artifacts rejected by validation or skipped by a
// confirmation decision produce no result. The batch also replaces the state
// behind Metrics and WriteUndoManifest.
func (n *Nuker) DeleteArtifacts(artifacts []model.Artifact, mode model.DeletionMode, confirm ConfirmFunc) []model.DeletionResult {
	// Batch-entry filter: rejected artifacts are reported before any
	// deletion starts. Every artifact is re-validated again immediately
	// before its destructive step.
	safe := make([]model.Artifact, 0, len(artifacts))

	for _, a := range artifacts {
		verdict := n.validator.CheckPath(a.Path)
		if verdict.Safe {
			safe = append(safe, a)
			continue
		}

		n.log.Error(fmt.Errorf("unsafe path rejected (%s): %s", verdict.Reason, a.Path), "pre_deletion_validation")
	}

	var results []model.DeletionResult

	switch mode {
	case model.ModeDryRun:
		results = n.runDryRun(safe)
	case model.ModeInteractive:
		results = n.runInteractive(safe, confirm)
	case model.ModeForce:
		results = n.runForce(safe)
	case model.ModeSafe:
		results = n.runSafe(safe, confirm)
	}

	n.mu.Lock()
	n.results = append([]model.DeletionResult(nil), results...)
	n.mu.Unlock()

	return results
}

func (n *Nuker) runDryRun(artifacts []model.Artifact) []model.DeletionResult {
	results := make([]model.DeletionResult, 0, len(artifacts))

	for _, a := range artifacts {
		results = append(results, n.exec.execute(a.Path, true, model.ModeDryRun))
		n.log.Deletion(a.Path, a.SizeMB(), true)
	}

	return results
}

func (n *Nuker) runInteractive(artifacts []model.Artifact, confirm ConfirmFunc) []model.DeletionResult {
	var results []model.DeletionResult

	for _, a := range artifacts {
		if confirm == nil {
			n.log.Error(errors.New("no confirmation callback provided"), "interactive_mode")
			continue
		}

		if !confirm(a) {
			continue
		}

		if res, ok := n.deleteOne(a, model.ModeInteractive); ok {
			results = append(results, res)
		}
	}

	return results
}

// runForce dispatches all artifacts to a bounded worker pool. One artifact's
// failure never cancels the others; result order is collection order.
func (n *Nuker) runForce(artifacts []model.Artifact) []model.DeletionResult {
	jobs := make(chan model.Artifact, len(artifacts))
	resultsChan := make(chan model.DeletionResult, len(artifacts))

	var wg sync.WaitGroup

	for i := 0; i < n.parallel; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for a := range jobs {
				if res, ok := n.deleteOne(a, model.ModeForce); ok {
					resultsChan <- res
				}
			}
		}()
	}

	for _, a := range artifacts {
		jobs <- a
	}

	close(jobs)
	wg.Wait()
	close(resultsChan)

	results := make([]model.DeletionResult, 0, len(artifacts))
	for res := range resultsChan {
		results = append(results, res)
	}

	return results
}

// runSafe deletes directly except for artifacts that are large or shallow
// enough to demand confirmation. Unconfirmed artifacts are skipped silently;
// a skip is a decision, not a failure.
func (n *Nuker) runSafe(artifacts []model.Artifact, confirm ConfirmFunc) []model.DeletionResult {
	var results []model.DeletionResult

	for _, a := range artifacts {
		if n.needsConfirmation(a) {
			if confirm == nil || !confirm(a) {
				continue
			}
		}

		if res, ok := n.deleteOne(a, model.ModeSafe); ok {
			results = append(results, res)
		}
	}

	return results
}

func (n *Nuker) needsConfirmation(a model.Artifact) bool {
	if a.SizeMB() > safeModeSizeLimitMB {
		return true
	}

	resolved := string(a.Path)
	if verdict := n.validator.CheckPath(a.Path); verdict.Resolved != "" {
		resolved = verdict.Resolved
	}

	return PathComponents(resolved) < safeModeMinComponents
}

// deleteOne re-validates the path immediately before the destructive step,
// then hands it to the executor. A failed re-validation drops the artifact
// (logged, no result) exactly like the batch-entry filter.
func (n *Nuker) deleteOne(a model.Artifact, mode model.DeletionMode) (model.DeletionResult, bool) {
	verdict := n.validator.CheckPath(a.Path)
	if !verdict.Safe {
		n.log.Error(fmt.Errorf("unsafe path rejected before deletion (%s): %s", verdict.Reason, a.Path), "pre_deletion_validation")
		return model.DeletionResult{}, false
	}

	res := n.exec.execute(a.Path, false, mode)
	n.log.Deletion(a.Path, a.SizeMB(), false)

	return res, true
}

// Metrics aggregates the most recent batch.
func (n *Nuker) Metrics() model.DestructionMetrics {
	n.mu.Lock()
	results := append([]model.DeletionResult(nil), n.results...)
	n.mu.Unlock()

	metrics := model.DestructionMetrics{
		TotalOperations: len(results),
		Errors:          []model.ReportError{},
	}

	var (
		freedMB    float64
		durationMS float64
	)

	for _, r := range results {
		if r.Success {
			metrics.Successful++
			freedMB += r.FreedMB
			durationMS += float64(r.Duration.Microseconds()) / 1000

			continue
		}

		metrics.Failed++
		metrics.Errors = append(metrics.Errors, model.ReportError{
			Path:  string(r.Path),
			Error: r.Err.Error(),
		})
	}

	metrics.TotalFreedMB = round2(freedMB)
	metrics.TotalFreedGB = round2(freedMB / 1024)

	if metrics.Successful > 0 {
		metrics.AverageDurationMS = round2(durationMS / float64(metrics.Successful))
	}

	return metrics
}

// WriteUndoManifest writes a best-effort JSON record of the most recent
// batch into dir and returns the manifest path. The manifest documents what
// was attempted; it cannot restore anything.
func (n *Nuker) WriteUndoManifest(dir string) (string, error) {
	n.mu.Lock()
	results := append([]model.DeletionResult(nil), n.results...)
	n.mu.Unlock()

	manifest := model.UndoManifest{
		Timestamp: time.Now().Unix(),
		Deletions: make([]model.UndoEntry, 0, len(results)),
	}

	for _, r := range results {
		manifest.Deletions = append(manifest.Deletions, model.UndoEntry{
			Path:    string(r.Path),
			SizeMB:  round2(r.FreedMB),
			Success: r.Success,
			Mode:    r.Mode.String(),
		})
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create manifest dir: %w", err)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal undo manifest: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("reclaim_undo_%d.json", manifest.Timestamp))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write undo manifest: %w", err)
	}

	return path, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
