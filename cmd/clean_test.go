package cmd

import (
	"testing"

	"github.com/quartzclay/reclaim/internal/model"
)

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name                      string
		dryRun, interactive, force bool
		want                      model.DeletionMode
	}{
		{"default is safe", false, false, false, model.ModeSafe},
		{"dry run", true, false, false, model.ModeDryRun},
		{"interactive", false, true, false, model.ModeInteractive},
		{"force", false, false, true, model.ModeForce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveMode(tt.dryRun, tt.interactive, tt.force); got != tt.want {
				t.Errorf("resolveMode() = %v, want %v", got, tt.want)
			}
		})
	}
}
