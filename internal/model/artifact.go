// Package model contains the plain data types shared between the scanner,
// the nuker and the UI layers.
package model

// Path represents an absolute filesystem path.
type Path string

// Artifact is a discovered filesystem entry believed to be reclaimable
// development junk. Artifacts are created by the scanner and are read-only
// afterwards.
type Artifact struct {
	// Path is the absolute path of the matched entry.
	Path Path
	// SizeBytes is the size at discovery time. For directories it is the
	// recursive sum of contained regular files and is not re-verified
	// until deletion.
	SizeBytes int64
	// Category identifies the matching catalog entry as
	// "<category>.<subcategory>".
	Category string
	// Pattern is the literal glob pattern that matched the entry name.
	Pattern string
	// Depth is the traversal depth of the containing directory, counted
	// from the scan root (root = 0).
	Depth int
	// Inode is the platform inode captured at discovery. Advisory only;
	// it is never compared against the live file.
	Inode uint64
}

// SizeMB returns the artifact size in megabytes.
func (a Artifact) SizeMB() float64 {
	return float64(a.SizeBytes) / (1024 * 1024)
}

// ScanError records a directory that could not be listed or measured during
// a scan. Scan errors never abort a scan; they are surfaced in the report.
type ScanError struct {
	Path Path
	Err  error
}
