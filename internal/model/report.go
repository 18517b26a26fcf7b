package model

// ScanSummary holds the grand totals of a scan.
type ScanSummary struct {
	TotalArtifacts   int     `json:"total_artifacts"`
	TotalSizeMB      float64 `json:"total_size_mb"`
	TotalSizeGB      float64 `json:"total_size_gb"`
	UniqueCategories int     `json:"unique_categories"`
	ScanErrors       int     `json:"scan_errors"`
}

// CategoryStat aggregates artifact count and size for one catalog category.
type CategoryStat struct {
	Count  int     `json:"count"`
	SizeMB float64 `json:"size_mb"`
}

// TopArtifact is one of the largest artifacts of a scan.
type TopArtifact struct {
	Path     string  `json:"path"`
	SizeMB   float64 `json:"size_mb"`
	Category string  `json:"category"`
}

// ReportError is the serializable form of a per-path failure.
type ReportError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ScanReport is the structured summary of the most recent scan. The field
// names form an internal contract with the reporting layer and are stable.
type ScanReport struct {
	Summary      ScanSummary             `json:"summary"`
	Categories   map[string]CategoryStat `json:"categories"`
	TopArtifacts []TopArtifact           `json:"top_artifacts"`
	Errors       []ReportError           `json:"errors"`
}
