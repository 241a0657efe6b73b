package resolver

import (
	"errors"
	"testing"

	"github.com/frederic-klein/rsbundle/internal/fsys"
)

func TestResolve(t *testing.T) {
	files := fsys.MapFS{
		"src/common.rs":      "",
		"src/game/mod.rs":    "",
		"src/game/round.rs":  "",
		"vendor/extra.rs":    "",
		"vendor/common.rs":   "",
		"vendor/dual.rs":     "",
		"vendor/dual/mod.rs": "",
	}

	tests := []struct {
		name   string
		module string
		relDir string
		roots  []string
		want   string
	}{
		{"plain file", "common", "", []string{"src"}, "src/common.rs"},
		{"directory module", "game", "", []string{"src"}, "src/game/mod.rs"},
		{"relative dir", "round", "game", []string{"src"}, "src/game/round.rs"},
		{"second root", "extra", "", []string{"src", "vendor"}, "vendor/extra.rs"},
		{"first root shadows", "common", "", []string{"src", "vendor"}, "src/common.rs"},
		{"root order reversed", "common", "", []string{"vendor", "src"}, "vendor/common.rs"},
		{"file beats directory module", "dual", "", []string{"vendor"}, "vendor/dual.rs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(files, tt.roots, nil)
			got, err := r.Resolve(tt.module, tt.relDir)
			if err != nil {
				t.Fatalf("Resolve(%q, %q) failed: %v", tt.module, tt.relDir, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.module, tt.relDir, got, tt.want)
			}
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	r := New(fsys.MapFS{}, []string{"src", "vendor"}, nil)

	_, err := r.Resolve("ghost", "")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Resolve = %v, want NotFoundError", err)
	}
	if notFound.Name != "ghost" {
		t.Errorf("Name = %q, want ghost", notFound.Name)
	}
	want := []string{"src/ghost.rs", "src/ghost/mod.rs", "vendor/ghost.rs", "vendor/ghost/mod.rs"}
	if len(notFound.Searched) != len(want) {
		t.Fatalf("Searched = %v, want %v", notFound.Searched, want)
	}
	for i := range want {
		if notFound.Searched[i] != want[i] {
			t.Errorf("Searched[%d] = %q, want %q", i, notFound.Searched[i], want[i])
		}
	}
}

func TestIsDirModule(t *testing.T) {
	if !IsDirModule("src/game/mod.rs") {
		t.Error("src/game/mod.rs should be a directory module")
	}
	if IsDirModule("src/game.rs") {
		t.Error("src/game.rs should not be a directory module")
	}
}
