package scanner

import (
	"math"
	"strconv"

	"github.com/quartzclay/reclaim/internal/model"
)

const (
	reportTopArtifacts = 10
	reportMaxErrors    = 10
)

// BuildReport aggregates a scan result into the structured report handed to
// the rendering layer. It is a pure function of the result.
func BuildReport(res *Result) model.ScanReport {
	categories := make(map[string]model.CategoryStat)

	var totalMB float64

	for _, a := range res.Artifacts {
		stat := categories[a.Category]
		stat.Count++
		stat.SizeMB = round2(stat.SizeMB + a.SizeMB())
		categories[a.Category] = stat

		totalMB += a.SizeMB()
	}

	top := make([]model.TopArtifact, 0, reportTopArtifacts)
	for _, a := range res.Artifacts {
		if len(top) == reportTopArtifacts {
			break
		}

		top = append(top, model.TopArtifact{
			Path:     string(a.Path),
			SizeMB:   round2(a.SizeMB()),
			Category: a.Category,
		})
	}

	reportErrs := make([]model.ReportError, 0, reportMaxErrors)
	for _, e := range res.Errors {
		if len(reportErrs) == reportMaxErrors {
			break
		}

		reportErrs = append(reportErrs, model.ReportError{
			Path:  string(e.Path),
			Error: e.Err.Error(),
		})
	}

	return model.ScanReport{
		Summary: model.ScanSummary{
			TotalArtifacts:   len(res.Artifacts),
			TotalSizeMB:      round2(totalMB),
			TotalSizeGB:      round2(totalMB / 1024),
			UniqueCategories: len(categories),
			ScanErrors:       len(res.Errors),
		},
		Categories:   categories,
		TopArtifacts: top,
		Errors:       reportErrs,
	}
}

// FindDuplicates groups artifacts that share a pattern and an exact size,
// which usually indicates the same dependency tree checked out many times.
// Only groups with more than one member are returned.
func FindDuplicates(artifacts []model.Artifact) map[string][]model.Artifact {
	groups := make(map[string][]model.Artifact)

	for _, a := range artifacts {
		key := duplicateKey(a)
		groups[key] = append(groups[key], a)
	}

	for key, group := range groups {
		if len(group) < 2 {
			delete(groups, key)
		}
	}

	return groups
}

func duplicateKey(a model.Artifact) string {
	return a.Pattern + ":" + strconv.FormatInt(a.SizeBytes, 10)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
