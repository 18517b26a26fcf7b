package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/quartzclay/reclaim/internal/model"
)

func TestBuildReport(t *testing.T) {
	t.Run("aggregates by category", func(t *testing.T) {
		res := &Result{
			Artifacts: []model.Artifact{
				{Path: "/h/a/node_modules", Category: "dependencies.node", SizeBytes: 200 * 1024 * 1024},
				{Path: "/h/b/node_modules", Category: "dependencies.node", SizeBytes: 50 * 1024 * 1024},
				{Path: "/h/c/app.cache", Category: "build.caches", SizeBytes: 10 * 1024 * 1024},
			},
			Errors: []model.ScanError{
				{Path: "/h/locked", Err: errors.New("permission denied")},
			},
		}

		report := BuildReport(res)

		if report.Summary.TotalArtifacts != 3 {
			t.Errorf("TotalArtifacts = %d", report.Summary.TotalArtifacts)
		}

		if report.Summary.TotalSizeMB != 260 {
			t.Errorf("TotalSizeMB = %v", report.Summary.TotalSizeMB)
		}

		if report.Summary.UniqueCategories != 2 {
			t.Errorf("UniqueCategories = %d", report.Summary.UniqueCategories)
		}

		if report.Summary.ScanErrors != 1 {
			t.Errorf("ScanErrors = %d", report.Summary.ScanErrors)
		}

		node := report.Categories["dependencies.node"]
		if node.Count != 2 || node.SizeMB != 250 {
			t.Errorf("dependencies.node = %+v", node)
		}
	})

	t.Run("keeps artifact order in top artifacts", func(t *testing.T) {
		res := &Result{}
		for i := 0; i < 15; i++ {
			res.Artifacts = append(res.Artifacts, model.Artifact{
				Path:      model.Path(fmt.Sprintf("/h/a%02d.cache", i)),
				Category:  "build.caches",
				SizeBytes: int64((15 - i)) * 1024 * 1024,
			})
		}

		report := BuildReport(res)

		if len(report.TopArtifacts) != 10 {
			t.Fatalf("TopArtifacts = %d, want 10", len(report.TopArtifacts))
		}

		if report.TopArtifacts[0].Path != "/h/a00.cache" {
			t.Errorf("first top artifact = %s", report.TopArtifacts[0].Path)
		}
	})

	t.Run("caps reported errors at ten", func(t *testing.T) {
		res := &Result{}
		for i := 0; i < 12; i++ {
			res.Errors = append(res.Errors, model.ScanError{
				Path: model.Path(fmt.Sprintf("/h/e%d", i)),
				Err:  errors.New("io error"),
			})
		}

		report := BuildReport(res)

		if len(report.Errors) != 10 {
			t.Errorf("Errors = %d, want 10", len(report.Errors))
		}

		if report.Summary.ScanErrors != 12 {
			t.Errorf("Summary.ScanErrors = %d, want full count", report.Summary.ScanErrors)
		}
	})

	t.Run("serializes to the report contract", func(t *testing.T) {
		report := BuildReport(&Result{
			Artifacts: []model.Artifact{
				{Path: "/h/x.cache", Category: "build.caches", SizeBytes: 1024 * 1024},
			},
		})

		data, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var decoded map[string]json.RawMessage
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		for _, key := range []string{"summary", "categories", "top_artifacts", "errors"} {
			if _, ok := decoded[key]; !ok {
				t.Errorf("report JSON missing %q", key)
			}
		}
	})
}
