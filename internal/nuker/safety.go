// Package nuker validates and deletes the artifacts the scanner discovered.
// Everything destructive funnels through the safety validator and the
// deletion executor; the orchestrator only decides what to attempt and when.
package nuker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quartzclay/reclaim/internal/audit"
	"github.com/quartzclay/reclaim/internal/model"
)

// minDeletableComponents is the depth floor for deletions: resolved paths
// with fewer components ("/", "/usr", "/home/u") are always rejected.
const minDeletableComponents = 4

// Reason classifies why a path failed safety validation.
type Reason int

// Rejection reasons, in check order.
const (
	ReasonNone Reason = iota
	ReasonResolveFailed
	ReasonProtectedPath
	ReasonOwnershipMismatch
	ReasonTooShallow
	ReasonCheckFailed
)

// String returns the log tag for a reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonResolveFailed:
		return "resolve_failed"
	case ReasonProtectedPath:
		return "protected_path"
	case ReasonOwnershipMismatch:
		return "ownership_mismatch"
	case ReasonTooShallow:
		return "path_too_shallow"
	case ReasonCheckFailed:
		return "check_failed"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of one safety check. A rejection always names its
// reason so every refusal is auditable.
type Verdict struct {
	Safe   bool
	Reason Reason
	// Resolved is the symlink-resolved path the checks ran against,
	// empty when resolution failed.
	Resolved string
}

// Validator is the single authority deciding whether a path may ever be
// deleted. It has no side effects besides logging and never deletes anything.
type Validator struct {
	protected []string
	uid       int
	log       audit.Logger
}

// NewValidator resolves the protected-path set once and captures the current
// process identity. The protected set is read-only afterwards.
func NewValidator(log audit.Logger) *Validator {
	if log == nil {
		log = audit.NewNop()
	}

	return &Validator{
		protected: resolveProtectedPaths(protectedPathSeeds()),
		uid:       os.Getuid(),
		log:       log,
	}
}

// newValidatorWithProtected builds a validator over an explicit protected
// set. Used by tests to exercise protection without touching system paths.
func newValidatorWithProtected(protected []string, log audit.Logger) *Validator {
	if log == nil {
		log = audit.NewNop()
	}

	return &Validator{
		protected: resolveProtectedPaths(protected),
		uid:       os.Getuid(),
		log:       log,
	}
}

// protectedPathSeeds lists the system and credential directories that must
// never be deleted, regardless of scan whitelist status.
func protectedPathSeeds() []string {
	seeds := []string{
		"/System",
		"/Library",
		"/Applications",
		"/usr",
		"/bin",
		"/sbin",
		"/etc",
		"/private",
		"/dev",
		"/Volumes",
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return seeds
	}

	return append(seeds,
		filepath.Join(home, ".ssh"),
		filepath.Join(home, ".gnupg"),
		filepath.Join(home, "Library", "Keychains"),
		filepath.Join(home, "Library", "Application Support", "CrashReporter"),
	)
}

// resolveProtectedPaths keeps the seeds that exist on disk, symlink-resolved.
func resolveProtectedPaths(seeds []string) []string {
	resolved := make([]string, 0, len(seeds))

	for _, seed := range seeds {
		if _, err := os.Lstat(seed); err != nil {
			continue
		}

		p := seed
		if r, err := filepath.EvalSymlinks(seed); err == nil {
			p = r
		}

		resolved = append(resolved, p)
	}

	return resolved
}

// CheckPath runs the safety checks in order, short-circuiting on the first
// failure: resolution, protected paths, ownership, depth floor.
func (v *Validator) CheckPath(path model.Path) Verdict {
	resolved, err := resolvePath(string(path))
	if err != nil {
		v.log.Error(fmt.Errorf("cannot resolve %s: %w", path, err), "safety_check")
		return Verdict{Reason: ReasonResolveFailed}
	}

	for _, protected := range v.protected {
		if resolved == protected || pathWithin(protected, resolved) {
			v.log.Error(fmt.Errorf("attempted to delete protected path: %s", path), "safety_check")
			return Verdict{Reason: ReasonProtectedPath, Resolved: resolved}
		}
	}

	owned, err := ownedByUID(resolved, v.uid)
	if err != nil {
		v.log.Error(fmt.Errorf("ownership check for %s: %w", path, err), "safety_check")
		return Verdict{Reason: ReasonCheckFailed, Resolved: resolved}
	}

	if !owned {
		v.log.Error(fmt.Errorf("ownership mismatch: %s", path), "safety_check")
		return Verdict{Reason: ReasonOwnershipMismatch, Resolved: resolved}
	}

	if PathComponents(resolved) < minDeletableComponents {
		v.log.Error(fmt.Errorf("path too shallow: %s", path), "safety_check")
		return Verdict{Reason: ReasonTooShallow, Resolved: resolved}
	}

	return Verdict{Safe: true, Resolved: resolved}
}

func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return filepath.EvalSymlinks(abs)
}

// PathComponents counts path elements the way pathlib does: the root
// separator is one component, so "/" is 1 and "/usr/local" is 3.
func PathComponents(path string) int {
	clean := filepath.Clean(path)
	if clean == string(os.PathSeparator) {
		return 1
	}

	trimmed := strings.Trim(clean, string(os.PathSeparator))
	if trimmed == "" {
		return 1
	}

	n := len(strings.Split(trimmed, string(os.PathSeparator)))
	if filepath.IsAbs(clean) {
		n++
	}

	return n
}

func pathWithin(parent, child string) bool {
	return strings.HasPrefix(child, parent+string(os.PathSeparator))
}
